package render

import (
	"iter"

	"CarnageVision/cliente/internal/gpu"
	"CarnageVision/cliente/internal/meshing"
	"CarnageVision/shared/mapdata"

	"github.com/go-gl/mathgl/mgl32"
)

// PedestrianView é o estado de um pedestre lido a cada frame.
type PedestrianView interface {
	Position() mgl32.Vec3
	RotationDegrees() float32
	AnimFrame() int
	SlidingOnCar() bool
	Unconscious() bool

	// CurrentCar resolve o assento ocupado pelo pedestre, se houver.
	CurrentCar() (VehicleView, bool)
}

// VehicleView é o estado de um veículo lido a cada frame.
type VehicleView interface {
	Position() mgl32.Vec3
	RotationDegrees() float32
	CarStyle() *mapdata.CarStyle
}

// Entities fornece as entidades ativas em ordem estável.
type Entities interface {
	Pedestrians() iter.Seq[PedestrianView]
	Vehicles() iter.Seq[VehicleView]
}

// CityMap é o mapa visto pelo renderizador.
type CityMap interface {
	meshing.BlockSource
	HeightAt(pos mgl32.Vec3) float32
}

// SpriteFrame localiza um sprite dentro de uma textura.
type SpriteFrame struct {
	Texture gpu.TextureID
	UV0     mgl32.Vec2
	UV1     mgl32.Vec2
	Size    mgl32.Vec2 // pixels
}

// SpriteSource resolve o índice linear do spritesheet.
type SpriteSource interface {
	Frame(index int) (SpriteFrame, bool)
}
