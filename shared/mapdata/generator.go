package mapdata

import (
	"log"
	"math/rand/v2"
)

// Parâmetros da grade de ruas da cidade procedural.
const (
	CityBlockSize = 16 // distância entre ruas
	RoadWidth     = 3
)

// IsRoadTile indica se o tile pertence à grade de ruas.
func IsRoadTile(x, y int) bool {
	return x%CityBlockSize < RoadWidth || y%CityBlockSize < RoadWidth
}

// GenerateCity cria uma cidade determinística para a semente dada:
// grade de ruas com calçadas, prédios de alturas variadas, parques com lagos e rampas.
func GenerateCity(name string, seed int64) *CityMap {
	m := NewCityMap(name, DefaultStyle())
	rng := rand.New(rand.NewPCG(uint64(seed), 0x9e3779b97f4a7c15))

	for y := 0; y < MapDimensions; y++ {
		for x := 0; x < MapDimensions; x++ {
			m.blocks[0][y][x] = groundBlock(x, y)
		}
	}

	buildings, parks := 0, 0
	for by := 0; by < MapDimensions; by += CityBlockSize {
		for bx := 0; bx < MapDimensions; bx += CityBlockSize {
			x0, y0 := bx+RoadWidth+1, by+RoadWidth+1
			size := CityBlockSize - RoadWidth - 2
			if x0+size > MapDimensions || y0+size > MapDimensions {
				continue
			}
			switch r := rng.IntN(10); {
			case r < 7:
				m.placeBuildings(rng, x0, y0, size)
				buildings++
			default:
				m.placePark(rng, x0, y0, size)
				parks++
			}
		}
	}

	m.Revision++
	log.Printf("[CityGen] Cidade %q gerada (seed=%d): %d quarteirões de prédios, %d parques", name, seed, buildings, parks)
	return m
}

// groundBlock retorna o bloco do nível 0: rua, calçada ou grama.
func groundBlock(x, y int) BlockStyle {
	lx, ly := x%CityBlockSize, y%CityBlockSize
	b := BlockStyle{}

	switch {
	case lx < RoadWidth || ly < RoadWidth:
		b.Ground = GroundRoad
		b.Faces[FaceLid] = LidRoad
		if lx < RoadWidth && ly >= RoadWidth {
			// rua vertical
			switch lx {
			case 0:
				b.Directions = DirUp
			case 1:
				b.Faces[FaceLid] = LidRoadLine
				b.Directions = DirUp | DirDown
			default:
				b.Directions = DirDown
			}
		} else if ly < RoadWidth && lx >= RoadWidth {
			// rua horizontal
			b.LidRotation = LidRotation90
			switch ly {
			case 0:
				b.Directions = DirLeft
			case 1:
				b.Faces[FaceLid] = LidRoadLine
				b.Directions = DirLeft | DirRight
			default:
				b.Directions = DirRight
			}
		} else {
			b.Directions = DirUp | DirDown | DirLeft | DirRight
		}
	case lx == RoadWidth || ly == RoadWidth || lx == CityBlockSize-1 || ly == CityBlockSize-1:
		b.Ground = GroundPavement
		b.Faces[FaceLid] = LidPavement
	default:
		b.Ground = GroundField
		b.Faces[FaceLid] = LidGrass
	}
	return b
}

// placeBuildings divide o quarteirão em até quatro prédios.
func (m *CityMap) placeBuildings(rng *rand.Rand, x0, y0, size int) {
	half := size / 2
	for i := 0; i < 4; i++ {
		bx := x0 + (i%2)*half
		by := y0 + (i/2)*half
		height := 1 + rng.IntN(MapLayersCount-2)
		side := SideBrick + uint8(rng.IntN(3))
		for y := by; y < by+half; y++ {
			for x := bx; x < bx+half; x++ {
				for z := 1; z <= height; z++ {
					b := BlockStyle{Ground: GroundBuilding}
					b.Faces[FaceW] = edgeFace(x == bx, side)
					b.Faces[FaceE] = edgeFace(x == bx+half-1, side)
					b.Faces[FaceN] = edgeFace(y == by, side)
					b.Faces[FaceS] = edgeFace(y == by+half-1, side)
					if z == 1 && y == by+half-1 {
						b.Faces[FaceS] = SideShopfront
					}
					if z == height {
						b.Faces[FaceLid] = LidRoof
						if rng.IntN(12) == 0 {
							b.Faces[FaceLid] = LidRoofVent
						}
						b.LidRotation = LidRotation(rng.IntN(4))
					}
					m.blocks[z][y][x] = b
				}
			}
		}
	}
}

func edgeFace(edge bool, face uint8) uint8 {
	if edge {
		return face
	}
	return 0
}

// placePark cria um parque com lago e, às vezes, uma plataforma com rampa de 26 graus.
func (m *CityMap) placePark(rng *rand.Rand, x0, y0, size int) {
	// lago
	if rng.IntN(2) == 0 {
		for y := y0 + 1; y < y0+4; y++ {
			for x := x0 + size - 5; x < x0+size-1; x++ {
				m.blocks[0][y][x] = BlockStyle{Ground: GroundWater, Faces: [BlockFaceCount]uint8{FaceLid: LidWater}}
			}
		}
	}

	// plataforma 3x3 no nível 1 com rampa subindo para o norte
	px, py := x0+1, y0+1
	for y := py; y < py+3; y++ {
		for x := px; x < px+3; x++ {
			b := BlockStyle{Ground: GroundPavement}
			b.Faces[FaceW] = edgeFace(x == px, SideConcrete)
			b.Faces[FaceE] = edgeFace(x == px+2, SideConcrete)
			b.Faces[FaceN] = edgeFace(y == py, SideConcrete)
			b.Faces[FaceS] = edgeFace(y == py+2 && x != px+1, SideConcrete)
			b.Faces[FaceLid] = LidPavement
			m.blocks[1][y][x] = b
		}
	}
	// parte alta e parte baixa da rampa
	for i, slope := range []uint8{2, 1} {
		b := BlockStyle{Ground: GroundPavement, SlopeType: slope}
		b.Faces[FaceW] = SideRamp
		b.Faces[FaceE] = SideRamp
		b.Faces[FaceLid] = LidRamp
		m.blocks[1][py+3+i][px+1] = b
	}
}
