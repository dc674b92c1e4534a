package meshing

import (
	"sync"

	"CarnageVision/cliente/internal/gpu"
	"CarnageVision/shared/mapdata"

	"github.com/go-gl/mathgl/mgl32"
)

// MapLayersCount é o número de camadas de malha (uma por nível do mapa).
const MapLayersCount = mapdata.MapLayersCount

// CityVertex3D é o vértice da malha da cidade (40 bytes).
// Texcoord.Z() é a camada da textura de bloco.
type CityVertex3D struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Texcoord mgl32.Vec3
	Color    uint32
}

const SizeofCityVertex3D = 40

var cityAttributes = []gpu.VertexAttribute{
	{Semantic: gpu.SemanticPosition, Type: gpu.AttrFloat3, Offset: 0},
	{Semantic: gpu.SemanticNormal, Type: gpu.AttrFloat3, Offset: 12},
	{Semantic: gpu.SemanticTexcoord, Type: gpu.AttrFloat3, Offset: 24},
	{Semantic: gpu.SemanticColor, Type: gpu.AttrColorRGBA8, Offset: 36},
}

// CityVertexFormat retorna o formato de CityVertex3D começando em baseOffset.
func CityVertexFormat(baseOffset int) gpu.VertexFormat {
	return gpu.VertexFormat{Stride: SizeofCityVertex3D, BaseOffset: baseOffset, Attributes: cityAttributes}
}

// MapMeshData contém a geometria de uma camada.
type MapMeshData struct {
	Vertices []CityVertex3D
	Indices  []gpu.DrawIndex
}

// SetNull esvazia a malha mantendo a memória.
func (m *MapMeshData) SetNull() {
	m.Vertices = m.Vertices[:0]
	m.Indices = m.Indices[:0]
}

// IsNull verifica se não há geometria.
func (m *MapMeshData) IsNull() bool {
	return len(m.Vertices) == 0
}

// addQuad adiciona 4 vértices e os índices (0,1,2),(1,2,3) relativos à camada.
func (m *MapMeshData) addQuad(v [4]CityVertex3D) {
	base := gpu.DrawIndex(len(m.Vertices))
	m.Vertices = append(m.Vertices, v[0], v[1], v[2], v[3])
	m.Indices = append(m.Indices, base, base+1, base+2, base+1, base+2, base+3)
}

// BlockSource é o que o gerador de malha precisa do mapa.
type BlockSource interface {
	Block(x, y, z int) *mapdata.BlockStyle
	Dimensions() (w, h, layers int)
	LidTextureBase() int
}

// commitStaging junta as camadas antes do envio à GPU.
type commitStaging struct {
	vertices []CityVertex3D
	indices  []gpu.DrawIndex
}

// Reciclado entre reconstruções para não pressionar o GC com buffers grandes
var stagingPool = sync.Pool{
	New: func() interface{} {
		return &commitStaging{
			vertices: make([]CityVertex3D, 0, 16384),
			indices:  make([]gpu.DrawIndex, 0, 24576),
		}
	},
}

func getStaging() *commitStaging {
	return stagingPool.Get().(*commitStaging)
}

func putStaging(s *commitStaging) {
	if s == nil {
		return
	}
	s.vertices = s.vertices[:0]
	s.indices = s.indices[:0]
	stagingPool.Put(s)
}
