package render

import (
	"CarnageVision/cliente/internal/gpu"
	"CarnageVision/shared/mapdata"

	"github.com/go-gl/mathgl/mgl32"
)

// SpriteScale converte pixels do spritesheet em unidades do mundo.
const SpriteScale = 1.0 / mapdata.MapPixelsPerTile

// DrawSpriteRec descreve um sprite a desenhar neste frame.
type DrawSpriteRec struct {
	Position     mgl32.Vec3 // Y já é a altura de desenho
	Size         mgl32.Vec2
	CenterOffset mgl32.Vec2
	UV0, UV1     mgl32.Vec2
	Rotation     float32 // radianos
	Texture      gpu.TextureID
}

// NewDrawSpriteRec monta o registro de um sprite centrado na posição.
func NewDrawSpriteRec(frame SpriteFrame, pos mgl32.Vec3, scale, heading float32) DrawSpriteRec {
	size := frame.Size.Mul(scale)
	return DrawSpriteRec{
		Position:     pos,
		Size:         size,
		CenterOffset: size.Mul(-0.5),
		UV0:          frame.UV0,
		UV1:          frame.UV1,
		Rotation:     heading,
		Texture:      frame.Texture,
	}
}

// spriteHeading converte a rotação da entidade no ângulo do sprite.
func spriteHeading(degrees float32) float32 {
	return mgl32.DegToRad(degrees - SpriteZeroAngle)
}

// SpriteCollector percorre as entidades e gera os registros de desenho.
type SpriteCollector struct {
	Style   *mapdata.StyleData
	Sprites SpriteSource
	Heights HeightResolver

	// Missing conta entidades sem sprite resolvido no último Collect.
	Missing int
}

// Collect adiciona a out os sprites do frame: pedestres, objetos do mapa, veículos e projéteis.
func (c *SpriteCollector) Collect(ents Entities, out []DrawSpriteRec) []DrawSpriteRec {
	c.Missing = 0
	if ents == nil || c.Style == nil || c.Sprites == nil {
		return out
	}
	out = c.collectPedestrians(ents, out)
	out = c.collectMapObjects(out)
	out = c.collectVehicles(ents, out)
	out = c.collectProjectiles(out)
	return out
}

func (c *SpriteCollector) collectPedestrians(ents Entities, out []DrawSpriteRec) []DrawSpriteRec {
	for ped := range ents.Pedestrians() {
		index := c.Style.SpriteIndex(mapdata.SpritePed, ped.AnimFrame())
		frame, ok := c.Sprites.Frame(index)
		if !ok {
			c.Missing++
			continue
		}
		pos := ped.Position()
		pos[1] = c.Heights.Pedestrian(ped)
		if car, ok := ped.CurrentCar(); ok {
			// passageiro sob teto rígido fica escondido pelo carro
			roof := HeightResolver{Terrain: c.Heights.Terrain}.Vehicle(car)
			if pos[1] < roof {
				continue
			}
		}
		out = append(out, NewDrawSpriteRec(frame, pos, SpriteScale, spriteHeading(ped.RotationDegrees())))
	}
	return out
}

func (c *SpriteCollector) collectVehicles(ents Entities, out []DrawSpriteRec) []DrawSpriteRec {
	for car := range ents.Vehicles() {
		st := car.CarStyle()
		if st == nil {
			c.Missing++
			continue
		}
		frame, ok := c.Sprites.Frame(c.Style.CarSpriteIndex(st.VType, st.Model, st.SprNum))
		if !ok {
			c.Missing++
			continue
		}
		pos := car.Position()
		pos[1] = c.Heights.Vehicle(car)
		out = append(out, NewDrawSpriteRec(frame, pos, SpriteScale, spriteHeading(car.RotationDegrees())))
	}
	return out
}

// Objetos do mapa ainda não têm sprites.
func (c *SpriteCollector) collectMapObjects(out []DrawSpriteRec) []DrawSpriteRec {
	return out
}

// Projéteis ainda não têm sprites.
func (c *SpriteCollector) collectProjectiles(out []DrawSpriteRec) []DrawSpriteRec {
	return out
}
