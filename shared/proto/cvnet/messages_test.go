package cvnet

import (
	"testing"

	"CarnageVision/shared/pkg/protowire"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelemetryRoundTrip(t *testing.T) {
	in := Telemetry{
		Frame:        1 << 40,
		States:       []int32{1, 2, 6, 7, 8},
		Rebuilt:      true,
		MeshRebuilds: 3,
		Sprites:      120,
		Missing:      2,
		Batches:      4,
		MeshDraws:    6,
		Lines:        16,
		VertexPages:  1,
		IndexPages:   1,
		VertexBytes:  1 << 20,
		IndexBytes:   12345,
		Skipped:      []string{"", "layer 3"},
		MeshRect:     []int32{-4, -4, 40, 40},
		CameraX:      12.5,
		CameraZ:      -3,
		FPS:          60,
	}
	data := in.Marshal()

	var out Telemetry
	require.NoError(t, out.Unmarshal(data))
	assert.Equal(t, in, out)
}

func TestUnknownFieldsSkipped(t *testing.T) {
	e := protowire.NewEncoder()
	e.EncodeVarint(1, int64(CmdSetLayerVisible))
	e.EncodeString(50, "campo novo")
	e.EncodeFixed32(51, 2)
	e.EncodeVarint(2, 4)
	e.EncodeBool(3, true)

	var cmd Command
	require.NoError(t, cmd.Unmarshal(e.Bytes()))
	assert.Equal(t, Command{Kind: CmdSetLayerVisible, Layer: 4, Enabled: true}, cmd)
}

func TestTruncatedEnvelope(t *testing.T) {
	status := Status{Message: "CarnageVision debug"}
	data := Wrap(MsgStatus, status.Marshal())

	var env Envelope
	assert.Error(t, env.Unmarshal(data[:len(data)-2]))
}

func TestCommandRoundTrip(t *testing.T) {
	in := Command{Kind: CmdClearBlock, Layer: 2, X: 130, Y: 7}
	var out Command
	require.NoError(t, out.Unmarshal(in.Marshal()))
	assert.Equal(t, in, out)

	// comandos antigos, sem X e Y, continuam válidos
	old := Command{Kind: CmdSetLayerVisible, Layer: 1, Enabled: true}
	out = Command{}
	require.NoError(t, out.Unmarshal(old.Marshal()))
	assert.Equal(t, old, out)
}

func TestEnvelopeAndFlags(t *testing.T) {
	flags := RenderFlags{FullMapMesh: true, DrawMapLayers: []bool{true, false, true, true, false, true}}
	data := Wrap(MsgFlags, flags.Marshal())

	var env Envelope
	require.NoError(t, env.Unmarshal(data))
	assert.Equal(t, MsgFlags, env.Type)

	var got RenderFlags
	require.NoError(t, got.Unmarshal(env.Payload))
	assert.Equal(t, flags, got)
}

func TestParseCommandKind(t *testing.T) {
	for kind, name := range commandNames {
		got, ok := ParseCommandKind(name)
		assert.True(t, ok)
		assert.Equal(t, kind, got)
		assert.Equal(t, name, kind.String())
	}
	_, ok := ParseCommandKind("nada")
	assert.False(t, ok)
	assert.Equal(t, "CommandKind(42)", CommandKind(42).String())
}
