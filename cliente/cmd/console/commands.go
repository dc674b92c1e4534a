package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"CarnageVision/shared/proto/cvnet"
)

// errQuit sinaliza o comando de saída.
var errQuit = errors.New("sair")

// parseLine converte uma linha digitada num comando do renderizador.
// Formatos: "fullmesh on", "layer 2 off", "footprints on", "cacherect off", "invalidate", "flags",
// "clearblock <x> <y> <camada>".
func parseLine(line string) (cvnet.Command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return cvnet.Command{}, fmt.Errorf("comando vazio")
	}
	if fields[0] == "quit" || fields[0] == "exit" {
		return cvnet.Command{}, errQuit
	}

	kind, ok := cvnet.ParseCommandKind(fields[0])
	if !ok {
		return cvnet.Command{}, fmt.Errorf("comando desconhecido: %q", fields[0])
	}
	cmd := cvnet.Command{Kind: kind}
	args := fields[1:]

	switch kind {
	case cvnet.CmdInvalidateMesh, cvnet.CmdRequestFlags:
		if len(args) != 0 {
			return cmd, fmt.Errorf("%s não aceita argumentos", kind)
		}
		return cmd, nil
	case cvnet.CmdClearBlock:
		if len(args) != 3 {
			return cmd, fmt.Errorf("uso: clearblock <x> <y> <camada>")
		}
		var coords [3]int32
		for i, a := range args {
			n, err := strconv.Atoi(a)
			if err != nil || n < 0 {
				return cmd, fmt.Errorf("coordenada inválida: %q", a)
			}
			coords[i] = int32(n)
		}
		cmd.X, cmd.Y, cmd.Layer = coords[0], coords[1], coords[2]
		return cmd, nil
	case cvnet.CmdSetLayerVisible:
		if len(args) != 2 {
			return cmd, fmt.Errorf("uso: layer <n> on|off")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return cmd, fmt.Errorf("camada inválida: %q", args[0])
		}
		cmd.Layer = int32(n)
		args = args[1:]
	}

	if len(args) != 1 {
		return cmd, fmt.Errorf("uso: %s on|off", kind)
	}
	switch args[0] {
	case "on", "1", "true":
		cmd.Enabled = true
	case "off", "0", "false":
	default:
		return cmd, fmt.Errorf("valor inválido: %q", args[0])
	}
	return cmd, nil
}

func formatTelemetry(t *cvnet.Telemetry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "frame %d  fps %.0f  sprites %d (sem sprite %d)  batches %d  camadas %d",
		t.Frame, t.FPS, t.Sprites, t.Missing, t.Batches, t.MeshDraws)
	if len(t.MeshRect) == 4 {
		fmt.Fprintf(&b, "  malha %d,%d %dx%d", t.MeshRect[0], t.MeshRect[1], t.MeshRect[2], t.MeshRect[3])
	}
	fmt.Fprintf(&b, "  rebuilds %d  cache %dKB/%dKB", t.MeshRebuilds, t.VertexBytes/1024, t.IndexBytes/1024)
	if len(t.Skipped) > 0 {
		fmt.Fprintf(&b, "  pulados %v", t.Skipped)
	}
	return b.String()
}

func formatFlags(f *cvnet.RenderFlags) string {
	onOff := func(v bool) string {
		if v {
			return "on"
		}
		return "off"
	}
	layers := make([]string, len(f.DrawMapLayers))
	for i, v := range f.DrawMapLayers {
		layers[i] = fmt.Sprintf("%d:%s", i, onOff(v))
	}
	return fmt.Sprintf("fullmesh %s  footprints %s  cacherect %s  camadas [%s]",
		onOff(f.FullMapMesh), onOff(f.DebugFootprints), onOff(f.DebugCacheRect), strings.Join(layers, " "))
}
