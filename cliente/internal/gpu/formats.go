package gpu

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// DrawIndex é o tipo de índice de todas as malhas (32 bits).
type DrawIndex = uint32

const SizeofDrawIndex = 4

// SpriteVertex3D é o vértice dos sprites (24 bytes).
type SpriteVertex3D struct {
	Position mgl32.Vec3
	Texcoord mgl32.Vec2
	Color    uint32
}

const SizeofSpriteVertex3D = 24

// LineVertex é o vértice das linhas de debug (16 bytes).
type LineVertex struct {
	Position mgl32.Vec3
	Color    uint32
}

const SizeofLineVertex = 16

// Semantic identifica o significado de um atributo de vértice.
type Semantic int

const (
	SemanticPosition Semantic = iota
	SemanticNormal
	SemanticTexcoord
	SemanticColor
)

// AttributeType é o tipo de dado de um atributo.
type AttributeType int

const (
	AttrFloat2 AttributeType = iota
	AttrFloat3
	AttrColorRGBA8 // uint32 empacotado, byte R primeiro
)

// VertexAttribute descreve onde um atributo está dentro do vértice.
type VertexAttribute struct {
	Semantic Semantic
	Type     AttributeType
	Offset   int
}

// VertexFormat descreve o layout dos vértices no buffer ligado.
// BaseOffset é o deslocamento, em bytes, do primeiro vértice dentro do buffer.
type VertexFormat struct {
	Stride     int
	BaseOffset int
	Attributes []VertexAttribute
}

// Attribute procura um atributo pela semântica.
func (f VertexFormat) Attribute(s Semantic) (VertexAttribute, bool) {
	for _, a := range f.Attributes {
		if a.Semantic == s {
			return a, true
		}
	}
	return VertexAttribute{}, false
}

var spriteAttributes = []VertexAttribute{
	{SemanticPosition, AttrFloat3, 0},
	{SemanticTexcoord, AttrFloat2, 12},
	{SemanticColor, AttrColorRGBA8, 20},
}

// SpriteVertexFormat retorna o formato de SpriteVertex3D começando em baseOffset.
func SpriteVertexFormat(baseOffset int) VertexFormat {
	return VertexFormat{Stride: SizeofSpriteVertex3D, BaseOffset: baseOffset, Attributes: spriteAttributes}
}

var lineAttributes = []VertexAttribute{
	{SemanticPosition, AttrFloat3, 0},
	{SemanticColor, AttrColorRGBA8, 12},
}

// LineVertexFormat retorna o formato de LineVertex começando em baseOffset.
func LineVertexFormat(baseOffset int) VertexFormat {
	return VertexFormat{Stride: SizeofLineVertex, BaseOffset: baseOffset, Attributes: lineAttributes}
}

// AsBytes expõe os bytes de um slice de valores sem cópia.
// T deve ser um tipo sem ponteiros e sem padding implícito.
func AsBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(zero)))
}
