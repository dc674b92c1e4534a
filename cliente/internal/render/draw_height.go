package render

import (
	"CarnageVision/shared/mapdata"
	"CarnageVision/shared/util"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// SpriteZeroAngle é a rotação, em graus, em que os sprites apontam para cima.
	SpriteZeroAngle = 90.0

	// PedSpriteDrawBoxSize é o lado da área amostrada sob o pedestre.
	PedSpriteDrawBoxSize = 24.0 / mapdata.MapPixelsPerTile

	pedHeightEpsilon         = 0.01
	pedUnconsciousEpsilon    = 0.001
	pedSlideOnCarOffset      = 0.35
	passengerRoofOffset      = 0.01
	vehicleHeightEpsilon     = 0.02
	footprintSampleHeightOff = 0.01
)

var footprintColor = util.PackColor(255, 0, 0, 255)

// HeightSampler retorna a altura do terreno sob um ponto.
type HeightSampler interface {
	HeightAt(pos mgl32.Vec3) float32
}

// DebugSink recebe linhas de diagnóstico. Pode ser nil.
type DebugSink interface {
	DrawLine(from, to mgl32.Vec3, color uint32)
}

// HeightResolver calcula a altura de desenho das entidades.
// O valor só ordena sprites sobrepostos; não é altura física.
type HeightResolver struct {
	Terrain HeightSampler
	Debug   DebugSink
}

// Pedestrian retorna a altura de desenho do pedestre.
func (r HeightResolver) Pedestrian(p PedestrianView) float32 {
	if car, ok := p.CurrentCar(); ok {
		h := r.Vehicle(car)
		st := car.CarStyle()
		if st != nil && st.Convertible.IsHardTop() && st.VType != mapdata.CarMotorcycle {
			return h - passengerRoofOffset
		}
		return h + passengerRoofOffset
	}

	pos := p.Position()
	half := float32(PedSpriteDrawBoxSize * 0.5)
	y := pos.Y() + footprintSampleHeightOff
	points := [4]mgl32.Vec3{
		{pos.X() - half, y, pos.Z() - half},
		{pos.X() + half, y, pos.Z() - half},
		{pos.X() + half, y, pos.Z() + half},
		{pos.X() - half, y, pos.Z() + half},
	}

	maxHeight := pos.Y()
	if r.Terrain != nil {
		for _, pt := range points {
			maxHeight = max(maxHeight, r.Terrain.HeightAt(pt))
		}
	}
	r.outline(points, footprintColor)

	if p.SlidingOnCar() {
		maxHeight += pedSlideOnCarOffset
	}
	if p.Unconscious() {
		return maxHeight + pedUnconsciousEpsilon
	}
	return maxHeight + pedHeightEpsilon
}

// Vehicle retorna a altura de desenho do veículo. O contorno só vai para o DebugSink.
func (r HeightResolver) Vehicle(v VehicleView) float32 {
	pos := v.Position()
	if r.Debug != nil {
		if st := v.CarStyle(); st != nil {
			halfW := float32(st.Width) / mapdata.MapBlockTexDims * 0.5
			halfH := float32(st.Height) / mapdata.MapBlockTexDims * 0.5
			heading := mgl32.DegToRad(v.RotationDegrees() - SpriteZeroAngle)
			center := mgl32.Vec2{pos.X(), pos.Z()}
			corners := [4]mgl32.Vec2{{-halfW, -halfH}, {halfW, -halfH}, {halfW, halfH}, {-halfW, halfH}}

			var points [4]mgl32.Vec3
			y := pos.Y() + footprintSampleHeightOff
			for i, c := range corners {
				p := util.RotateAround(center.Add(c), center, heading)
				points[i] = mgl32.Vec3{p.X(), y, p.Y()}
			}
			r.outline(points, footprintColor)
		}
	}
	return pos.Y() + vehicleHeightEpsilon
}

func (r HeightResolver) outline(points [4]mgl32.Vec3, color uint32) {
	if r.Debug == nil {
		return
	}
	for i := range points {
		r.Debug.DrawLine(points[i], points[(i+1)%4], color)
	}
}
