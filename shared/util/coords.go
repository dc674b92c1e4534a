package util

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// TileCoord representa a coordenada de um tile no plano do mapa.
// X = leste/oeste, Y = norte/sul (eixo Z do mundo 3D).
type TileCoord struct {
	X, Y int
}

// NewTileCoord cria uma nova coordenada de tile.
func NewTileCoord(x, y int) TileCoord {
	return TileCoord{X: x, Y: y}
}

// Add soma duas coordenadas.
func (c TileCoord) Add(other TileCoord) TileCoord {
	return TileCoord{X: c.X + other.X, Y: c.Y + other.Y}
}

// String retorna a representação em string da coordenada.
func (c TileCoord) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}

// BlockLength é o tamanho de um tile em unidades do mundo.
const BlockLength float32 = 1.0

// WorldToTile converte uma posição 3D para o tile que a contém.
// Usa floor para que posições negativas caiam no tile correto.
func WorldToTile(pos mgl32.Vec3) TileCoord {
	return TileCoord{
		X: int(math32.Floor(pos.X() / BlockLength)),
		Y: int(math32.Floor(pos.Z() / BlockLength)),
	}
}

// TileToWorld retorna o canto de origem do tile no mundo 3D, na altura informada.
func TileToWorld(c TileCoord, height float32) mgl32.Vec3 {
	return mgl32.Vec3{float32(c.X) * BlockLength, height, float32(c.Y) * BlockLength}
}

// MapRectangle é uma janela retangular de tiles.
// Um retângulo de área zero é "nulo": nada está em cache.
type MapRectangle struct {
	X, Y int
	W, H int
}

// NewMapRectangle cria um retângulo.
func NewMapRectangle(x, y, w, h int) MapRectangle {
	return MapRectangle{X: x, Y: y, W: w, H: h}
}

// CenteredRectangle cria um retângulo de lado size centrado no tile.
func CenteredRectangle(center TileCoord, size int) MapRectangle {
	return MapRectangle{
		X: center.X - size/2,
		Y: center.Y - size/2,
		W: size,
		H: size,
	}
}

// SetNull zera o retângulo.
func (r *MapRectangle) SetNull() {
	*r = MapRectangle{}
}

// IsNull verifica se o retângulo não tem área.
func (r MapRectangle) IsNull() bool {
	return r.W <= 0 || r.H <= 0
}

// Contains verifica se other está inteiramente dentro de r.
func (r MapRectangle) Contains(other MapRectangle) bool {
	if r.IsNull() || other.IsNull() {
		return false
	}
	return other.X >= r.X && other.Y >= r.Y &&
		other.X+other.W <= r.X+r.W &&
		other.Y+other.H <= r.Y+r.H
}

// PointInside verifica se o tile está dentro do retângulo.
func (r MapRectangle) PointInside(c TileCoord) bool {
	return c.X >= r.X && c.X < r.X+r.W && c.Y >= r.Y && c.Y < r.Y+r.H
}

// Intersection retorna a interseção de dois retângulos (nulo se não houver).
func (r MapRectangle) Intersection(other MapRectangle) MapRectangle {
	x0 := max(r.X, other.X)
	y0 := max(r.Y, other.Y)
	x1 := min(r.X+r.W, other.X+other.W)
	y1 := min(r.Y+r.H, other.Y+other.H)
	if x1 <= x0 || y1 <= y0 {
		return MapRectangle{}
	}
	return MapRectangle{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Area retorna o número de tiles cobertos.
func (r MapRectangle) Area() int {
	if r.IsNull() {
		return 0
	}
	return r.W * r.H
}

// String retorna a representação em string do retângulo.
func (r MapRectangle) String() string {
	return fmt.Sprintf("[%d,%d %dx%d]", r.X, r.Y, r.W, r.H)
}
