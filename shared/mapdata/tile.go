package mapdata

// GroundType é o tipo de solo de um bloco do mapa.
type GroundType uint8

const (
	GroundAir GroundType = iota
	GroundWater
	GroundRoad
	GroundPavement
	GroundField
	GroundBuilding
	GroundTypeCount
)

var groundTypeNames = [GroundTypeCount]string{"air", "water", "road", "pavement", "field", "building"}

func (g GroundType) String() string {
	if g < GroundTypeCount {
		return groundTypeNames[g]
	}
	return "unknown"
}

// BlockFace identifica uma face do bloco.
type BlockFace int

const (
	FaceW BlockFace = iota // esquerda
	FaceE                  // direita
	FaceN                  // topo do mapa
	FaceS                  // base do mapa
	FaceLid
	BlockFaceCount
)

// LidRotation é a rotação da textura da tampa em passos de 90 graus.
type LidRotation uint8

const (
	LidRotation0 LidRotation = iota
	LidRotation90
	LidRotation180
	LidRotation270
)

// RoadDirections indica para onde o tráfego pode seguir a partir do bloco.
type RoadDirections uint8

const (
	DirUp RoadDirections = 1 << iota
	DirDown
	DirLeft
	DirRight
)

// Has verifica se a direção está ativa.
func (d RoadDirections) Has(dir RoadDirections) bool {
	return d&dir != 0
}

// BlockStyle descreve um bloco do mapa.
type BlockStyle struct {
	Remap       uint8
	Ground      GroundType
	LidRotation LidRotation

	// Índice da textura de cada face. Zero significa "sem face".
	Faces [BlockFaceCount]uint8

	// SlopeType:
	//   0       sem rampa
	//   1-8     26 graus (cima, baixo, esquerda, direita; parte baixa e alta)
	//   9-40    7 graus (cima, baixo, esquerda, direita; 8 partes cada)
	//   41-44   45 graus (cima, baixo, esquerda, direita)
	SlopeType uint8

	Directions    RoadDirections
	Flat          bool
	FlipTopBottom bool
	FlipLeftRight bool
	Railway       bool
}

// HasFace verifica se a face tem textura.
func (b *BlockStyle) HasFace(face BlockFace) bool {
	return b.Faces[face] != 0
}

// IsEmpty é verdadeiro para blocos de ar sem nenhuma face.
func (b *BlockStyle) IsEmpty() bool {
	if b.Ground != GroundAir || b.SlopeType != 0 {
		return false
	}
	for _, f := range b.Faces {
		if f != 0 {
			return false
		}
	}
	return true
}

// IsSolid indica se o bloco tem superfície onde se pisa.
func (b *BlockStyle) IsSolid() bool {
	return b.Ground != GroundAir || b.SlopeType != 0
}

// SlopeDir é o lado para onde a rampa sobe.
type SlopeDir uint8

const (
	SlopeNone  SlopeDir = iota
	SlopeUp             // sobe para o norte (y menor)
	SlopeDown           // sobe para o sul (y maior)
	SlopeLeft           // sobe para o oeste (x menor)
	SlopeRight          // sobe para o leste (x maior)
)

// MaxSlopeType é o último tipo de rampa válido.
const MaxSlopeType = 44

// SlopeProfile retorna a direção e as alturas relativas (0..1) das bordas baixa e alta.
func SlopeProfile(slope uint8) (dir SlopeDir, lo, hi float32) {
	switch {
	case slope == 0 || slope > MaxSlopeType:
		return SlopeNone, 1, 1
	case slope <= 8:
		// 26 graus: dois blocos por rampa
		n := slope - 1
		part := float32(n % 2)
		return SlopeDir(n/2 + 1), part * 0.5, (part + 1) * 0.5
	case slope <= 40:
		// 7 graus: oito blocos por rampa
		n := slope - 9
		part := float32(n % 8)
		return SlopeDir(n/8 + 1), part / 8, (part + 1) / 8
	default:
		return SlopeDir(slope - 41 + 1), 0, 1
	}
}

// SlopeHeight retorna a altura relativa da superfície no ponto local (fx, fy) em [0,1].
func SlopeHeight(slope uint8, fx, fy float32) float32 {
	dir, lo, hi := SlopeProfile(slope)
	var t float32
	switch dir {
	case SlopeUp:
		t = 1 - fy
	case SlopeDown:
		t = fy
	case SlopeLeft:
		t = 1 - fx
	case SlopeRight:
		t = fx
	default:
		return 1
	}
	return lo + (hi-lo)*t
}

// CornerHeights retorna as alturas relativas nos cantos NW, NE, SE, SW.
func CornerHeights(slope uint8) [4]float32 {
	return [4]float32{
		SlopeHeight(slope, 0, 0),
		SlopeHeight(slope, 1, 0),
		SlopeHeight(slope, 1, 1),
		SlopeHeight(slope, 0, 1),
	}
}
