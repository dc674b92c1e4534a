package game

import (
	"CarnageVision/cliente/internal/render"
	"CarnageVision/shared/mapdata"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// PedestrianID identifica um pedestre. Zero é "nenhum".
type PedestrianID uint32

// VehicleID identifica um veículo. Zero é "nenhum".
type VehicleID uint32

// MaxCarSeats é o número de assentos de um veículo; o assento 0 é o do motorista.
const MaxCarSeats = 4

// PedState é o estado de movimento do pedestre.
type PedState uint8

const (
	PedWalking PedState = iota
	PedSlidingOnCar
	PedKnockedDown
	PedInCar
)

var pedStateNames = [...]string{"walking", "sliding_on_car", "knocked_down", "in_car"}

func (s PedState) String() string {
	if int(s) < len(pedStateNames) {
		return pedStateNames[s]
	}
	return "unknown"
}

// Pedestrian é um pedestre do mundo. Implementa render.PedestrianView.
type Pedestrian struct {
	ID PedestrianID

	pos     mgl32.Vec3
	heading float32 // graus
	speed   float32
	state   PedState

	car  VehicleID
	seat int

	animTime  float32
	stateTime float32 // tempo restante no estado temporário
	wander    float32 // tempo até a próxima mudança de rumo

	world *World
}

func (p *Pedestrian) Position() mgl32.Vec3       { return p.pos }
func (p *Pedestrian) RotationDegrees() float32   { return p.heading }
func (p *Pedestrian) State() PedState            { return p.state }
func (p *Pedestrian) SlidingOnCar() bool         { return p.state == PedSlidingOnCar }
func (p *Pedestrian) Unconscious() bool          { return p.state == PedKnockedDown }
func (p *Pedestrian) Car() (VehicleID, int)      { return p.car, p.seat }
func (p *Pedestrian) SetPosition(pos mgl32.Vec3) { p.pos = pos }
func (p *Pedestrian) SetSpeed(speed float32)     { p.speed = speed }

// AnimFrame retorna o quadro do spritesheet de pedestres.
func (p *Pedestrian) AnimFrame() int {
	switch p.state {
	case PedKnockedDown:
		return mapdata.PedFrameKnockedDown
	case PedInCar:
		return 0
	}
	if p.speed == 0 {
		return 0
	}
	return int(p.animTime*pedAnimFPS) % mapdata.PedWalkFrames
}

// CurrentCar resolve o veículo em que o pedestre está sentado.
func (p *Pedestrian) CurrentCar() (render.VehicleView, bool) {
	if p.car == 0 || p.world == nil {
		return nil, false
	}
	v := p.world.Vehicle(p.car)
	if v == nil {
		return nil, false
	}
	return v, true
}

// Vehicle é um veículo do mundo. Implementa render.VehicleView.
type Vehicle struct {
	ID    VehicleID
	Seats [MaxCarSeats]PedestrianID

	pos     mgl32.Vec3
	heading float32 // graus
	speed   float32
	style   *mapdata.CarStyle

	// tile da última decisão de rota
	lastTileX, lastTileY int
}

func (v *Vehicle) Position() mgl32.Vec3        { return v.pos }
func (v *Vehicle) RotationDegrees() float32    { return v.heading }
func (v *Vehicle) CarStyle() *mapdata.CarStyle { return v.style }
func (v *Vehicle) Speed() float32              { return v.speed }
func (v *Vehicle) SetPosition(pos mgl32.Vec3)  { v.pos = pos }
func (v *Vehicle) SetHeading(degrees float32)  { v.heading = degrees }
func (v *Vehicle) SetSpeed(speed float32)      { v.speed = speed }

// Driver retorna o pedestre no assento do motorista.
func (v *Vehicle) Driver() PedestrianID {
	return v.Seats[0]
}

// Occupants conta os assentos ocupados.
func (v *Vehicle) Occupants() int {
	n := 0
	for _, id := range v.Seats {
		if id != 0 {
			n++
		}
	}
	return n
}

// Forward é o vetor unitário no plano XZ para o rumo em graus.
// 0 aponta para +X e 90 para +Z, o mesmo giro aplicado aos sprites.
func Forward(degrees float32) mgl32.Vec2 {
	rad := mgl32.DegToRad(degrees)
	return mgl32.Vec2{math32.Cos(rad), math32.Sin(rad)}
}

var (
	_ render.PedestrianView = (*Pedestrian)(nil)
	_ render.VehicleView    = (*Vehicle)(nil)
)
