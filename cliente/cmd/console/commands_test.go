package main

import (
	"errors"
	"strings"
	"testing"

	"CarnageVision/shared/proto/cvnet"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		line    string
		want    cvnet.Command
		wantErr bool
	}{
		{"fullmesh on", cvnet.Command{Kind: cvnet.CmdSetFullMesh, Enabled: true}, false},
		{"FullMesh OFF", cvnet.Command{Kind: cvnet.CmdSetFullMesh}, false},
		{"layer 2 off", cvnet.Command{Kind: cvnet.CmdSetLayerVisible, Layer: 2}, false},
		{"layer 5 1", cvnet.Command{Kind: cvnet.CmdSetLayerVisible, Layer: 5, Enabled: true}, false},
		{"footprints true", cvnet.Command{Kind: cvnet.CmdSetFootprints, Enabled: true}, false},
		{"cacherect on", cvnet.Command{Kind: cvnet.CmdSetCacheRect, Enabled: true}, false},
		{"invalidate", cvnet.Command{Kind: cvnet.CmdInvalidateMesh}, false},
		{"  flags  ", cvnet.Command{Kind: cvnet.CmdRequestFlags}, false},
		{"clearblock 10 20 1", cvnet.Command{Kind: cvnet.CmdClearBlock, X: 10, Y: 20, Layer: 1}, false},
		{"clearblock 10 20", cvnet.Command{}, true},
		{"clearblock 10 -2 1", cvnet.Command{}, true},
		{"", cvnet.Command{}, true},
		{"voar", cvnet.Command{}, true},
		{"layer x on", cvnet.Command{}, true},
		{"layer -1 on", cvnet.Command{}, true},
		{"layer 2", cvnet.Command{}, true},
		{"fullmesh talvez", cvnet.Command{}, true},
		{"invalidate agora", cvnet.Command{}, true},
	}

	for _, tt := range tests {
		got, err := parseLine(tt.line)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseLine(%q) erro = %v, wantErr %v", tt.line, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseLine(%q) = %+v, want %+v", tt.line, got, tt.want)
		}
	}
}

func TestParseLineQuit(t *testing.T) {
	if _, err := parseLine("quit"); !errors.Is(err, errQuit) {
		t.Errorf("quit deveria retornar errQuit, veio %v", err)
	}
}

func TestFormatTelemetry(t *testing.T) {
	out := formatTelemetry(&cvnet.Telemetry{Frame: 3, Sprites: 10, MeshRect: []int32{0, 0, 32, 32}, Skipped: []string{"sprites"}})
	for _, want := range []string{"frame 3", "sprites 10", "malha 0,0 32x32", "pulados [sprites]"} {
		if !strings.Contains(out, want) {
			t.Errorf("saída %q não contém %q", out, want)
		}
	}
}

func TestFormatFlags(t *testing.T) {
	out := formatFlags(&cvnet.RenderFlags{FullMapMesh: true, DrawMapLayers: []bool{true, false}})
	if !strings.Contains(out, "fullmesh on") || !strings.Contains(out, "1:off") {
		t.Errorf("saída inesperada: %q", out)
	}
}
