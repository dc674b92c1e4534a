// Package protowire encapsula google.golang.org/protobuf/encoding/protowire num
// Encoder/Decoder por campo, usado pelas mensagens escritas à mão de shared/proto.
// Wire types: 0=Varint, 1=64bit, 2=LengthDelimited, 5=32bit
package protowire

import (
	"fmt"
	"math"

	pw "google.golang.org/protobuf/encoding/protowire"
)

// WireType constantes do protobuf
const (
	WireVarint          = int(pw.VarintType)
	Wire64Bit           = int(pw.Fixed64Type)
	WireLengthDelimited = int(pw.BytesType)
	Wire32Bit           = int(pw.Fixed32Type)
)

// ---------- ENCODER ----------

// Encoder acumula bytes no formato protobuf.
type Encoder struct {
	buf []byte
}

// NewEncoder cria um encoder vazio.
func NewEncoder() *Encoder {
	return &Encoder{buf: make([]byte, 0, 256)}
}

// Bytes retorna o buffer serializado.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Reset limpa o buffer.
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

func (e *Encoder) appendTag(fieldNum int, wireType pw.Type) {
	e.buf = pw.AppendTag(e.buf, pw.Number(fieldNum), wireType)
}

// EncodeVarint codifica um campo varint (int32, int64, enum). Zero não é serializado.
func (e *Encoder) EncodeVarint(fieldNum int, v int64) {
	if v == 0 {
		return
	}
	e.EncodeVarintForce(fieldNum, v)
}

// EncodeVarintForce codifica varint mesmo que seja zero.
func (e *Encoder) EncodeVarintForce(fieldNum int, v int64) {
	e.appendTag(fieldNum, pw.VarintType)
	e.buf = pw.AppendVarint(e.buf, uint64(v))
}

// EncodeUvarint codifica uint64.
func (e *Encoder) EncodeUvarint(fieldNum int, v uint64) {
	if v == 0 {
		return
	}
	e.appendTag(fieldNum, pw.VarintType)
	e.buf = pw.AppendVarint(e.buf, v)
}

// EncodeBool codifica um boolean. False não é serializado.
func (e *Encoder) EncodeBool(fieldNum int, v bool) {
	if !v {
		return
	}
	e.EncodeBoolForce(fieldNum, v)
}

// EncodeBoolForce codifica um boolean mesmo que false.
func (e *Encoder) EncodeBoolForce(fieldNum int, v bool) {
	e.appendTag(fieldNum, pw.VarintType)
	e.buf = pw.AppendVarint(e.buf, pw.EncodeBool(v))
}

// EncodeBytes codifica bytes raw (length-delimited).
func (e *Encoder) EncodeBytes(fieldNum int, v []byte) {
	if len(v) == 0 {
		return
	}
	e.appendTag(fieldNum, pw.BytesType)
	e.buf = pw.AppendBytes(e.buf, v)
}

// EncodeString codifica uma string.
func (e *Encoder) EncodeString(fieldNum int, v string) {
	if v == "" {
		return
	}
	e.EncodeStringForce(fieldNum, v)
}

// EncodeStringForce codifica uma string mesmo que vazia (elementos de repeated string).
func (e *Encoder) EncodeStringForce(fieldNum int, v string) {
	e.appendTag(fieldNum, pw.BytesType)
	e.buf = pw.AppendString(e.buf, v)
}

// EncodeSubmessage codifica uma submensagem (length-delimited).
func (e *Encoder) EncodeSubmessage(fieldNum int, sub []byte) {
	if len(sub) == 0 {
		return
	}
	e.EncodeBytes(fieldNum, sub)
}

// EncodeFixed32 codifica um float32 como fixed32.
func (e *Encoder) EncodeFixed32(fieldNum int, v float32) {
	if v == 0 {
		return
	}
	e.appendTag(fieldNum, pw.Fixed32Type)
	e.buf = pw.AppendFixed32(e.buf, math.Float32bits(v))
}

// EncodePackedVarint codifica um repeated field como packed varint.
func (e *Encoder) EncodePackedVarint(fieldNum int, values []int32) {
	if len(values) == 0 {
		return
	}
	var sub []byte
	for _, v := range values {
		sub = pw.AppendVarint(sub, uint64(int64(v)))
	}
	e.EncodeBytes(fieldNum, sub)
}

// EncodePackedBool codifica um repeated bool como packed varint.
func (e *Encoder) EncodePackedBool(fieldNum int, values []bool) {
	if len(values) == 0 {
		return
	}
	sub := make([]byte, 0, len(values))
	for _, v := range values {
		sub = pw.AppendVarint(sub, pw.EncodeBool(v))
	}
	e.EncodeBytes(fieldNum, sub)
}

// ---------- DECODER ----------

// Decoder lê campos protobuf de um buffer.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder cria um decoder sobre um buffer.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Done retorna true se não há mais bytes.
func (d *Decoder) Done() bool {
	return d.pos >= len(d.buf)
}

// Remaining retorna os bytes restantes.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.pos
}

// consumed avança a posição ou converte o código de erro da biblioteca.
func (d *Decoder) consumed(n int, what string) error {
	if n < 0 {
		return fmt.Errorf("protowire: %s na posição %d: %w", what, d.pos, pw.ParseError(n))
	}
	d.pos += n
	return nil
}

// ReadTag lê o número do campo e o tipo de wire do próximo campo.
func (d *Decoder) ReadTag() (fieldNum int, wireType int, err error) {
	num, typ, n := pw.ConsumeTag(d.buf[d.pos:])
	if err := d.consumed(n, "tag"); err != nil {
		return 0, 0, err
	}
	return int(num), int(typ), nil
}

// ReadVarint lê um valor varint (após o tag já ter sido lido).
func (d *Decoder) ReadVarint() (int64, error) {
	v, n := pw.ConsumeVarint(d.buf[d.pos:])
	if err := d.consumed(n, "varint"); err != nil {
		return 0, err
	}
	return int64(v), nil
}

// ReadBool lê um boolean.
func (d *Decoder) ReadBool() (bool, error) {
	v, err := d.ReadVarint()
	return v != 0, err
}

// ReadBytes lê um campo length-delimited. O slice aponta para o buffer original.
func (d *Decoder) ReadBytes() ([]byte, error) {
	v, n := pw.ConsumeBytes(d.buf[d.pos:])
	if err := d.consumed(n, "bytes"); err != nil {
		return nil, err
	}
	return v, nil
}

// ReadString lê uma string.
func (d *Decoder) ReadString() (string, error) {
	b, err := d.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadFixed32 lê um float32 / fixed32.
func (d *Decoder) ReadFixed32() (float32, error) {
	v, n := pw.ConsumeFixed32(d.buf[d.pos:])
	if err := d.consumed(n, "fixed32"); err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadFixed64 lê um fixed64.
func (d *Decoder) ReadFixed64() (uint64, error) {
	v, n := pw.ConsumeFixed64(d.buf[d.pos:])
	if err := d.consumed(n, "fixed64"); err != nil {
		return 0, err
	}
	return v, nil
}

// SkipField pula um campo baseado no wire type.
func (d *Decoder) SkipField(wireType int) error {
	switch wireType {
	case WireVarint, Wire64Bit, WireLengthDelimited, Wire32Bit:
	default:
		return fmt.Errorf("protowire: wire type desconhecido: %d", wireType)
	}
	// o número do campo não importa para pular o valor
	n := pw.ConsumeFieldValue(1, pw.Type(wireType), d.buf[d.pos:])
	return d.consumed(n, "campo")
}

// ReadPackedVarint lê um packed repeated varint field.
func (d *Decoder) ReadPackedVarint() ([]int32, error) {
	data, err := d.ReadBytes()
	if err != nil {
		return nil, err
	}
	sub := NewDecoder(data)
	var result []int32
	for !sub.Done() {
		v, err := sub.ReadVarint()
		if err != nil {
			return result, err
		}
		result = append(result, int32(v))
	}
	return result, nil
}

// ReadPackedBool lê um packed repeated bool field.
func (d *Decoder) ReadPackedBool() ([]bool, error) {
	data, err := d.ReadBytes()
	if err != nil {
		return nil, err
	}
	sub := NewDecoder(data)
	var result []bool
	for !sub.Done() {
		v, err := sub.ReadBool()
		if err != nil {
			return result, err
		}
		result = append(result, v)
	}
	return result, nil
}
