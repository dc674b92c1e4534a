// Package cvnet define as mensagens do canal de debug entre o cliente e o console.
// As mensagens são serializadas à mão no formato protobuf via shared/pkg/protowire.
package cvnet

import (
	"fmt"

	"CarnageVision/shared/pkg/protowire"
)

// MessageType identifica o conteúdo do envelope.
type MessageType int32

const (
	MsgUnknown MessageType = iota
	MsgStatus
	MsgCommand
	MsgTelemetry
	MsgFlags
	MsgPing
	MsgPong
)

// CommandKind é a ação pedida pelo console.
type CommandKind int32

const (
	CmdNone CommandKind = iota
	CmdSetFullMesh
	CmdSetLayerVisible
	CmdSetFootprints
	CmdSetCacheRect
	CmdInvalidateMesh
	CmdRequestFlags
	CmdClearBlock
)

var commandNames = map[CommandKind]string{
	CmdSetFullMesh:     "fullmesh",
	CmdSetLayerVisible: "layer",
	CmdSetFootprints:   "footprints",
	CmdSetCacheRect:    "cacherect",
	CmdInvalidateMesh:  "invalidate",
	CmdRequestFlags:    "flags",
	CmdClearBlock:      "clearblock",
}

func (k CommandKind) String() string {
	if s, ok := commandNames[k]; ok {
		return s
	}
	return fmt.Sprintf("CommandKind(%d)", int32(k))
}

// ParseCommandKind converte o nome usado no console.
func ParseCommandKind(s string) (CommandKind, bool) {
	for k, name := range commandNames {
		if name == s {
			return k, true
		}
	}
	return CmdNone, false
}

// Envelope embrulha qualquer mensagem do canal.
type Envelope struct {
	Type    MessageType
	Payload []byte
}

// Command altera um controle do renderizador.
// X e Y só valem para comandos de edição de bloco.
type Command struct {
	Kind    CommandKind
	Layer   int32
	Enabled bool
	X, Y    int32
}

// RenderFlags é o estado atual dos controles do renderizador.
type RenderFlags struct {
	FullMapMesh     bool
	DrawMapLayers   []bool
	DebugFootprints bool
	DebugCacheRect  bool
}

// Telemetry resume um frame renderizado.
type Telemetry struct {
	Frame        uint64
	States       []int32
	Rebuilt      bool
	MeshRebuilds int64
	Sprites      int32
	Missing      int32
	Batches      int32
	MeshDraws    int32
	Lines        int32
	VertexPages  int32
	IndexPages   int32
	VertexBytes  int64
	IndexBytes   int64
	Skipped      []string
	MeshRect     []int32 // x, y, w, h
	CameraX      float32
	CameraZ      float32
	FPS          float32
}

// Status é uma notificação em texto.
type Status struct {
	Message string
}

// --- Marshal ---

func (m *Envelope) Marshal() []byte {
	e := protowire.NewEncoder()
	e.EncodeVarint(1, int64(m.Type))
	e.EncodeBytes(2, m.Payload)
	return e.Bytes()
}

func (m *Command) Marshal() []byte {
	e := protowire.NewEncoder()
	e.EncodeVarint(1, int64(m.Kind))
	e.EncodeVarint(2, int64(m.Layer))
	e.EncodeBool(3, m.Enabled)
	e.EncodeVarint(4, int64(m.X))
	e.EncodeVarint(5, int64(m.Y))
	return e.Bytes()
}

func (m *RenderFlags) Marshal() []byte {
	e := protowire.NewEncoder()
	e.EncodeBool(1, m.FullMapMesh)
	e.EncodePackedBool(2, m.DrawMapLayers)
	e.EncodeBool(3, m.DebugFootprints)
	e.EncodeBool(4, m.DebugCacheRect)
	return e.Bytes()
}

func (m *Telemetry) Marshal() []byte {
	e := protowire.NewEncoder()
	e.EncodeUvarint(1, m.Frame)
	e.EncodePackedVarint(2, m.States)
	e.EncodeBool(3, m.Rebuilt)
	e.EncodeVarint(4, m.MeshRebuilds)
	e.EncodeVarint(5, int64(m.Sprites))
	e.EncodeVarint(6, int64(m.Missing))
	e.EncodeVarint(7, int64(m.Batches))
	e.EncodeVarint(8, int64(m.MeshDraws))
	e.EncodeVarint(9, int64(m.Lines))
	e.EncodeVarint(10, int64(m.VertexPages))
	e.EncodeVarint(11, int64(m.IndexPages))
	e.EncodeVarint(12, m.VertexBytes)
	e.EncodeVarint(13, m.IndexBytes)
	for _, s := range m.Skipped {
		e.EncodeStringForce(14, s)
	}
	e.EncodePackedVarint(15, m.MeshRect)
	e.EncodeFixed32(16, m.CameraX)
	e.EncodeFixed32(17, m.CameraZ)
	e.EncodeFixed32(18, m.FPS)
	return e.Bytes()
}

func (m *Status) Marshal() []byte {
	e := protowire.NewEncoder()
	e.EncodeString(1, m.Message)
	return e.Bytes()
}

// --- Unmarshal ---

// fieldFunc trata um campo conhecido. Retorna false para campos desconhecidos.
type fieldFunc func(d *protowire.Decoder, fieldNum int) (bool, error)

// decodeFields percorre a mensagem pulando campos desconhecidos.
func decodeFields(data []byte, handle fieldFunc) error {
	d := protowire.NewDecoder(data)
	for !d.Done() {
		fieldNum, wireType, err := d.ReadTag()
		if err != nil {
			return err
		}
		known, err := handle(d, fieldNum)
		if err != nil {
			return fmt.Errorf("campo %d: %w", fieldNum, err)
		}
		if !known {
			if err := d.SkipField(wireType); err != nil {
				return err
			}
		}
	}
	return nil
}

func readInt32(d *protowire.Decoder, dst *int32) error {
	v, err := d.ReadVarint()
	*dst = int32(v)
	return err
}

func readInt64(d *protowire.Decoder, dst *int64) error {
	v, err := d.ReadVarint()
	*dst = v
	return err
}

func readBool(d *protowire.Decoder, dst *bool) error {
	v, err := d.ReadBool()
	*dst = v
	return err
}

func readFloat(d *protowire.Decoder, dst *float32) error {
	v, err := d.ReadFixed32()
	*dst = v
	return err
}

func (m *Envelope) Unmarshal(data []byte) error {
	return decodeFields(data, func(d *protowire.Decoder, n int) (bool, error) {
		switch n {
		case 1:
			var v int32
			err := readInt32(d, &v)
			m.Type = MessageType(v)
			return true, err
		case 2:
			b, err := d.ReadBytes()
			m.Payload = b
			return true, err
		}
		return false, nil
	})
}

func (m *Command) Unmarshal(data []byte) error {
	return decodeFields(data, func(d *protowire.Decoder, n int) (bool, error) {
		switch n {
		case 1:
			var v int32
			err := readInt32(d, &v)
			m.Kind = CommandKind(v)
			return true, err
		case 2:
			return true, readInt32(d, &m.Layer)
		case 3:
			return true, readBool(d, &m.Enabled)
		case 4:
			return true, readInt32(d, &m.X)
		case 5:
			return true, readInt32(d, &m.Y)
		}
		return false, nil
	})
}

func (m *RenderFlags) Unmarshal(data []byte) error {
	return decodeFields(data, func(d *protowire.Decoder, n int) (bool, error) {
		switch n {
		case 1:
			return true, readBool(d, &m.FullMapMesh)
		case 2:
			v, err := d.ReadPackedBool()
			m.DrawMapLayers = append(m.DrawMapLayers, v...)
			return true, err
		case 3:
			return true, readBool(d, &m.DebugFootprints)
		case 4:
			return true, readBool(d, &m.DebugCacheRect)
		}
		return false, nil
	})
}

func (m *Telemetry) Unmarshal(data []byte) error {
	return decodeFields(data, func(d *protowire.Decoder, n int) (bool, error) {
		switch n {
		case 1:
			v, err := d.ReadVarint()
			m.Frame = uint64(v)
			return true, err
		case 2:
			v, err := d.ReadPackedVarint()
			m.States = append(m.States, v...)
			return true, err
		case 3:
			return true, readBool(d, &m.Rebuilt)
		case 4:
			return true, readInt64(d, &m.MeshRebuilds)
		case 5:
			return true, readInt32(d, &m.Sprites)
		case 6:
			return true, readInt32(d, &m.Missing)
		case 7:
			return true, readInt32(d, &m.Batches)
		case 8:
			return true, readInt32(d, &m.MeshDraws)
		case 9:
			return true, readInt32(d, &m.Lines)
		case 10:
			return true, readInt32(d, &m.VertexPages)
		case 11:
			return true, readInt32(d, &m.IndexPages)
		case 12:
			return true, readInt64(d, &m.VertexBytes)
		case 13:
			return true, readInt64(d, &m.IndexBytes)
		case 14:
			s, err := d.ReadString()
			m.Skipped = append(m.Skipped, s)
			return true, err
		case 15:
			v, err := d.ReadPackedVarint()
			m.MeshRect = append(m.MeshRect, v...)
			return true, err
		case 16:
			return true, readFloat(d, &m.CameraX)
		case 17:
			return true, readFloat(d, &m.CameraZ)
		case 18:
			return true, readFloat(d, &m.FPS)
		}
		return false, nil
	})
}

func (m *Status) Unmarshal(data []byte) error {
	return decodeFields(data, func(d *protowire.Decoder, n int) (bool, error) {
		if n == 1 {
			s, err := d.ReadString()
			m.Message = s
			return true, err
		}
		return false, nil
	})
}

// Wrap serializa a mensagem dentro de um envelope.
func Wrap(t MessageType, payload []byte) []byte {
	env := &Envelope{Type: t, Payload: payload}
	return env.Marshal()
}
