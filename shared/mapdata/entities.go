package mapdata

import "CarnageVision/shared/util"

// Quadros de animação de pedestre no spritesheet (dentro do tipo SpritePed).
const (
	PedWalkFrames       = 8
	PedFrameKnockedDown = PedWalkFrames
)

// Texturas de bloco do estilo padrão. Os índices de face começam em 1 (0 é "sem face").
const (
	SideBrick uint8 = iota + 1
	SideConcrete
	SideGlass
	SideShopfront
	SideCurb
	SideRamp
	defaultSideCount
)

const (
	LidRoad uint8 = iota + 1
	LidRoadLine
	LidPavement
	LidGrass
	LidRoof
	LidRoofVent
	LidWater
	LidRamp
	defaultLidCount
)

var carColors = []uint32{
	util.PackColor(200, 40, 40, 255),
	util.PackColor(40, 90, 200, 255),
	util.PackColor(230, 200, 40, 255),
	util.PackColor(40, 160, 70, 255),
	util.PackColor(220, 220, 220, 255),
	util.PackColor(50, 50, 50, 255),
}

// DefaultStyle cria o estilo usado pela cidade procedural: texturas de bloco,
// spritesheet de objetos e classes de veículos.
func DefaultStyle() *StyleData {
	s := NewStyleData()
	s.SideTexturesCount = int(defaultSideCount)
	s.LidTexturesCount = int(defaultLidCount)

	// Ordem crescente de SpriteType
	add := func(t SpriteType, count int, st SpriteStyle) {
		if err := s.AddSprites(t, count, st); err != nil {
			panic(err)
		}
	}
	add(SpriteBoat, 1, SpriteStyle{Width: 30, Height: 72, Color: util.PackColor(240, 240, 250, 255)})
	add(SpriteBus, 2, SpriteStyle{Width: 34, Height: 110, Color: util.PackColor(230, 140, 30, 255)})
	for _, c := range carColors {
		add(SpriteCar, 1, SpriteStyle{Width: 26, Height: 56, Color: c})
	}
	add(SpritePed, PedWalkFrames+1, SpriteStyle{Width: 16, Height: 24, Color: util.PackColor(250, 210, 170, 255)})
	add(SpriteTank, 1, SpriteStyle{Width: 40, Height: 70, Color: util.PackColor(80, 110, 60, 255)})
	add(SpriteTrain, 1, SpriteStyle{Width: 40, Height: 120, Color: util.PackColor(120, 120, 140, 255)})
	add(SpriteBike, 1, SpriteStyle{Width: 10, Height: 30, Color: util.PackColor(20, 20, 20, 255)})
	add(SpriteTram, 1, SpriteStyle{Width: 34, Height: 100, Color: util.PackColor(60, 170, 170, 255)})

	for i := range carColors {
		s.Cars = append(s.Cars, CarStyle{
			Name: "sedan", Width: 26, Height: 56, Depth: 20,
			SprNum: i, VType: CarStandard, Model: i, Convertible: HardTop, MaxSpeed: 6,
		})
	}
	// conversível
	s.Cars[2].Name = "cabrio"
	s.Cars[2].Convertible = OpenTop

	s.Cars = append(s.Cars,
		CarStyle{Name: "bus", Width: 34, Height: 110, Depth: 30, SprNum: 0, VType: CarBus, Convertible: HardTop, MaxSpeed: 4},
		CarStyle{Name: "bike", Width: 10, Height: 30, Depth: 12, SprNum: 0, VType: CarMotorcycle, Convertible: HardTop, MaxSpeed: 7},
		CarStyle{Name: "tank", Width: 40, Height: 70, Depth: 24, SprNum: 0, VType: CarTank, Convertible: HardTopAnimated, MaxSpeed: 3},
	)
	return s
}
