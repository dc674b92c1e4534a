package mapdata

import (
	"fmt"
	"sync"

	"CarnageVision/shared/util"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"gorm.io/gorm"
)

const (
	MapDimensions    = 256 // tiles por lado
	MapLayersCount   = 6   // níveis verticais
	MapPixelsPerTile = 64
	MapBlockTexDims  = 64
)

// CityMap guarda os blocos da cidade em [nível][y][x].
// As leituras acontecem durante o frame; escritas só fora dele (carga, edição).
type CityMap struct {
	Mu sync.RWMutex

	Name   string
	blocks [MapLayersCount][MapDimensions][MapDimensions]BlockStyle
	Style  *StyleData

	// Revision muda a cada edição para que a malha em cache possa ser invalidada.
	Revision int64

	// DB é a conexão com o banco SQLite (GORM)
	DB *gorm.DB

	air BlockStyle
}

// NewCityMap cria um mapa vazio (todo ar).
func NewCityMap(name string, style *StyleData) *CityMap {
	if style == nil {
		style = NewStyleData()
	}
	return &CityMap{Name: name, Style: style}
}

// Dimensions retorna largura, profundidade e número de níveis.
func (m *CityMap) Dimensions() (w, h, layers int) {
	return MapDimensions, MapDimensions, MapLayersCount
}

// Bounds retorna o retângulo do mapa inteiro.
func (m *CityMap) Bounds() util.MapRectangle {
	return util.NewMapRectangle(0, 0, MapDimensions, MapDimensions)
}

func inside(x, y, z int) bool {
	return x >= 0 && x < MapDimensions && y >= 0 && y < MapDimensions && z >= 0 && z < MapLayersCount
}

// Block retorna o bloco na posição. Fora do mapa retorna um bloco de ar.
func (m *CityMap) Block(x, y, z int) *BlockStyle {
	if !inside(x, y, z) {
		return &m.air
	}
	return &m.blocks[z][y][x]
}

// SetBlock substitui um bloco e avança a revisão do mapa.
func (m *CityMap) SetBlock(x, y, z int, b BlockStyle) error {
	if !inside(x, y, z) {
		return fmt.Errorf("bloco fora do mapa: (%d, %d, %d)", x, y, z)
	}
	m.Mu.Lock()
	m.blocks[z][y][x] = b
	m.Revision++
	m.Mu.Unlock()
	return nil
}

// ClearBlock troca o bloco por ar.
func (m *CityMap) ClearBlock(x, y, z int) error {
	return m.SetBlock(x, y, z, BlockStyle{})
}

// LidTextureBase é o índice da primeira textura de tampa na sequência de texturas de bloco.
func (m *CityMap) LidTextureBase() int {
	return m.Style.SideTexturesCount
}

// HeightAt retorna a altura da superfície sob o ponto.
// A busca começa no nível de pos.Y e desce até achar um bloco sólido;
// rampas usam a altura interpolada dentro do tile. Fora do mapa retorna 0.
func (m *CityMap) HeightAt(pos mgl32.Vec3) float32 {
	tx := math32.Floor(pos.X())
	ty := math32.Floor(pos.Z())
	x, y := int(tx), int(ty)
	if x < 0 || x >= MapDimensions || y < 0 || y >= MapDimensions {
		return 0
	}

	start := int(math32.Floor(pos.Y() / util.BlockLength))
	if start >= MapLayersCount {
		start = MapLayersCount - 1
	}

	for z := start; z >= 0; z-- {
		b := &m.blocks[z][y][x]
		if !b.IsSolid() {
			continue
		}
		if b.SlopeType != 0 {
			return (float32(z) + SlopeHeight(b.SlopeType, pos.X()-tx, pos.Z()-ty)) * util.BlockLength
		}
		return float32(z+1) * util.BlockLength
	}
	return 0
}

// Clear volta todos os blocos para ar.
func (m *CityMap) Clear() {
	m.Mu.Lock()
	m.blocks = [MapLayersCount][MapDimensions][MapDimensions]BlockStyle{}
	m.Revision++
	m.Mu.Unlock()
}

// row expõe uma linha de blocos de um nível.
func (m *CityMap) row(z, y int) []BlockStyle {
	return m.blocks[z][y][:]
}
