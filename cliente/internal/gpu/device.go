package gpu

// BufferID identifica um buffer do dispositivo. Zero é inválido.
type BufferID uint32

// TextureID é um identificador estável de textura, emitido no registro do asset.
// A ordem dos IDs define a ordem de agrupamento dos sprites.
type TextureID uint32

// NoTexture desativa a amostragem de textura.
const NoTexture TextureID = 0

// BufferKind é o conteúdo de um buffer.
type BufferKind int

const (
	BufferVertex BufferKind = iota
	BufferIndex
)

// BufferUsage indica a frequência de atualização.
type BufferUsage int

const (
	UsageStatic BufferUsage = iota
	UsageDynamic
)

// Primitive é o tipo de primitiva desenhada.
type Primitive int

const (
	PrimitiveTriangles Primitive = iota
	PrimitiveLines
)

// Program seleciona o pipeline de shaders.
type Program int

const (
	ProgramCity Program = iota
	ProgramSprites
	ProgramDebug
)

// BlendMode é o modo de mistura de cor.
type BlendMode int

const (
	BlendNone BlendMode = iota
	BlendAlpha
	BlendAdditive
)

// RenderStates agrupa os estados fixos do pipeline.
type RenderStates struct {
	Blend       BlendMode
	FaceCulling bool
	DepthTest   bool
	DepthWrite  bool
}

// DefaultRenderStates retorna estados opacos com culling e profundidade.
func DefaultRenderStates() RenderStates {
	return RenderStates{Blend: BlendNone, FaceCulling: true, DepthTest: true, DepthWrite: true}
}

// TextureUnit é a unidade onde a textura é ligada.
type TextureUnit int

const (
	TextureUnit0 TextureUnit = iota
)

// Device é a interface mínima do dispositivo gráfico usada pelo renderizador da cidade.
// Os offsets são em bytes; baseVertex é somado a cada índice lido.
type Device interface {
	CreateBuffer(kind BufferKind, usage BufferUsage, size int) (BufferID, error)
	DestroyBuffer(id BufferID)

	// SetupBuffer realoca o buffer com o tamanho dado. data nil descarta o conteúdo (orphan).
	SetupBuffer(id BufferID, size int, data []byte) error
	SubData(id BufferID, offset int, data []byte) error

	BindVertexBuffer(id BufferID, format VertexFormat)
	BindIndexBuffer(id BufferID)
	BindTexture(unit TextureUnit, tex TextureID)
	UseProgram(p Program)
	SetRenderStates(rs RenderStates)

	DrawIndexed(prim Primitive, indexOffset, indexCount, baseVertex int) error
	Draw(prim Primitive, firstVertex, vertexCount int) error
}
