package mapdata

import "fmt"

// SpriteType agrupa os sprites do spritesheet de objetos.
type SpriteType uint16

const (
	SpriteArrow SpriteType = iota
	SpriteDigit
	SpriteBoat
	SpriteBox
	SpriteBus
	SpriteCar
	SpriteObject
	SpritePed
	SpriteSpeedo
	SpriteTank
	SpriteTrafficLight
	SpriteTrain
	SpriteTrDoor
	SpriteBike
	SpriteTram
	SpriteWCar
	SpriteWBus
	SpriteEx
	SpriteTumCar
	SpriteTumTruck
	SpriteFerry
	SpriteTypeCount
)

// CarVType é o tipo de veículo.
type CarVType uint8

const (
	CarBus CarVType = iota
	CarFrontOfJuggernaut
	CarBackOfJuggernaut
	CarMotorcycle
	CarStandard
	CarTrain
	CarTram
	CarBoat
	CarTank
	CarVTypeCount
)

// Convertible descreve o teto do veículo.
type Convertible uint8

const (
	HardTop Convertible = iota
	OpenTop
	HardTopAnimated
	OpenTopAnimated
)

// IsHardTop é verdadeiro para tetos fechados (animados ou não).
func (c Convertible) IsHardTop() bool {
	return c == HardTop || c == HardTopAnimated
}

// SpriteStyle descreve um sprite no spritesheet (dimensões em pixels).
type SpriteStyle struct {
	Width  int
	Height int
	Color  uint32 // cor base usada na geração procedural da textura
}

// CarStyle descreve uma classe de veículo.
type CarStyle struct {
	Name        string
	Width       int // pixels, eixo lateral
	Height      int // pixels, eixo longitudinal
	Depth       int
	SprNum      int // deslocamento do primeiro sprite dentro do tipo
	VType       CarVType
	Model       int
	Convertible Convertible
	MaxSpeed    float32
}

// StyleData reúne as informações de estilo que o renderizador consulta.
type StyleData struct {
	SideTexturesCount int
	LidTexturesCount  int
	AuxTexturesCount  int

	// Sprites em ordem linear: todos do tipo 0, depois do tipo 1, ...
	Sprites       []SpriteStyle
	SpriteNumbers [SpriteTypeCount]int

	Cars []CarStyle
}

// NewStyleData cria um estilo vazio.
func NewStyleData() *StyleData {
	return &StyleData{}
}

// BlockTexturesCount é o total de texturas de bloco (side + lid + aux).
func (s *StyleData) BlockTexturesCount() int {
	return s.SideTexturesCount + s.LidTexturesCount + s.AuxTexturesCount
}

// AddSprites registra count sprites de um tipo. Tipos devem ser adicionados em ordem crescente.
func (s *StyleData) AddSprites(t SpriteType, count int, style SpriteStyle) error {
	for next := t + 1; next < SpriteTypeCount; next++ {
		if s.SpriteNumbers[next] > 0 {
			return fmt.Errorf("sprites do tipo %d adicionados fora de ordem", t)
		}
	}
	for i := 0; i < count; i++ {
		s.Sprites = append(s.Sprites, style)
	}
	s.SpriteNumbers[t] += count
	return nil
}

// SpriteIndex retorna o índice linear do sprite n do tipo t.
func (s *StyleData) SpriteIndex(t SpriteType, n int) int {
	index := n
	for i := SpriteType(0); i < t; i++ {
		index += s.SpriteNumbers[i]
	}
	return index
}

// CarSpriteType mapeia o tipo de veículo para o tipo de sprite.
func CarSpriteType(vtype CarVType) SpriteType {
	switch vtype {
	case CarBus, CarFrontOfJuggernaut, CarBackOfJuggernaut:
		return SpriteBus
	case CarMotorcycle:
		return SpriteBike
	case CarTrain:
		return SpriteTrain
	case CarTram:
		return SpriteTram
	case CarBoat:
		return SpriteBoat
	case CarTank:
		return SpriteTank
	default:
		return SpriteCar
	}
}

// CarSpriteIndex retorna o índice linear do sprite de um veículo.
// O modelo não altera o índice: cada estilo de carro já aponta o seu sprite em sprNum.
func (s *StyleData) CarSpriteIndex(vtype CarVType, model, sprNum int) int {
	return s.SpriteIndex(CarSpriteType(vtype), sprNum)
}

// Sprite retorna o estilo do sprite pelo índice linear.
func (s *StyleData) Sprite(index int) (SpriteStyle, bool) {
	if index < 0 || index >= len(s.Sprites) {
		return SpriteStyle{}, false
	}
	return s.Sprites[index], true
}
