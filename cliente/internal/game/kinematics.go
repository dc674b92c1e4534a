package game

import (
	"slices"

	"CarnageVision/shared/mapdata"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Rumos das faixas, em graus (0 aponta para +X).
const (
	HeadingRight float32 = 0
	HeadingDown  float32 = 90
	HeadingLeft  float32 = 180
	HeadingUp    float32 = 270
)

const (
	pedWalkSpeed    = 1.2 // tiles/s
	pedAnimFPS      = 10
	pedRadius       = 0.2
	slideSpeed      = 3.0
	slideTime       = 0.5
	knockedDownTime = 3.0
	wanderInterval  = 4.0
	turnChance      = 0.3 // chance de virar num cruzamento
	groundProbe     = 0.5
	carBrake        = 4.0 // tiles/s² sem motorista
)

var laneSteps = [...]struct {
	heading float32
	dir     mapdata.RoadDirections
	dx, dy  int
}{
	{HeadingRight, mapdata.DirRight, 1, 0},
	{HeadingDown, mapdata.DirDown, 0, 1},
	{HeadingLeft, mapdata.DirLeft, -1, 0},
	{HeadingUp, mapdata.DirUp, 0, -1},
}

// laneStep retorna o passo de faixa mais próximo do rumo.
func laneStep(heading float32) int {
	h := math32.Mod(heading, 360)
	if h < 0 {
		h += 360
	}
	return int(math32.Round(h/90)) % len(laneSteps)
}

// Update avança a simulação em dt segundos.
func (w *World) Update(dt float32) {
	if dt <= 0 {
		return
	}
	for _, v := range w.vehicles {
		w.updateVehicle(v, dt)
	}
	w.resolveHits()
	for _, p := range w.peds {
		w.updatePedestrian(p, dt)
	}
}

func (w *World) updateVehicle(v *Vehicle, dt float32) {
	if v.Driver() == 0 && v.speed > 0 {
		v.speed = math32.Max(0, v.speed-carBrake*dt)
	}
	if v.speed == 0 {
		return
	}

	tx, ty := int(math32.Floor(v.pos.X())), int(math32.Floor(v.pos.Z()))
	if tx != v.lastTileX || ty != v.lastTileY {
		center := tileCenter(tx, ty, v.pos.Y())
		fwd := Forward(v.heading)
		toCenter := mgl32.Vec2{center.X() - v.pos.X(), center.Z() - v.pos.Z()}
		if fwd.Dot(toCenter) <= 0 {
			v.lastTileX, v.lastTileY = tx, ty
			w.route(v, tx, ty)
		}
	}

	step := Forward(v.heading).Mul(v.speed * dt)
	v.pos = w.groundAt(v.pos.Add(mgl32.Vec3{step.X(), 0, step.Y()}))
}

// route decide o rumo no centro do tile: segue reto se a faixa deixar,
// às vezes vira nos cruzamentos e, sem saída, dá meia-volta.
func (w *World) route(v *Vehicle, tx, ty int) {
	cur := w.city.Block(tx, ty, 0)
	here := laneStep(v.heading)
	reverse := (here + 2) % len(laneSteps)

	var options []int
	for i := range laneSteps {
		if i != reverse && w.canDrive(cur, tx, ty, i) {
			options = append(options, i)
		}
	}

	next := reverse
	if len(options) > 0 {
		next = options[w.rng.IntN(len(options))]
		turn := isIntersection(cur) && w.rng.Float32() < turnChance
		if slices.Contains(options, here) && !turn {
			next = here
		}
	}
	if next == here {
		return
	}
	v.heading = laneSteps[next].heading
	v.pos = tileCenter(tx, ty, v.pos.Y())
}

// canDrive verifica se o veículo pode sair do tile atual no passo i.
// Fora da mão certa (depois de uma meia-volta) aceita qualquer rua até achar um cruzamento.
func (w *World) canDrive(cur *mapdata.BlockStyle, tx, ty, i int) bool {
	s := laneSteps[i]
	nb := w.city.Block(tx+s.dx, ty+s.dy, 0)
	if nb == nil || nb.Ground != mapdata.GroundRoad {
		return false
	}
	return nb.Directions.Has(s.dir) || !cur.Directions.Has(s.dir)
}

func isIntersection(b *mapdata.BlockStyle) bool {
	all := mapdata.DirUp | mapdata.DirDown | mapdata.DirLeft | mapdata.DirRight
	return b.Directions&all == all
}

// resolveHits derruba ou faz deslizar pedestres atingidos por veículos em movimento.
func (w *World) resolveHits() {
	for _, v := range w.vehicles {
		if v.speed < 0.5 {
			continue
		}
		reach := float32(max(v.style.Width, v.style.Height))/mapdata.MapPixelsPerTile*0.5 + pedRadius
		for _, p := range w.peds {
			if p.state != PedWalking {
				continue
			}
			d := mgl32.Vec2{p.pos.X() - v.pos.X(), p.pos.Z() - v.pos.Z()}
			if d.LenSqr() > reach*reach || math32.Abs(p.pos.Y()-v.pos.Y()) > 0.5 {
				continue
			}
			if w.rng.IntN(2) == 0 {
				p.heading = v.heading
				_ = w.SlideOnCar(p.ID)
			} else {
				_ = w.KnockDown(p.ID)
			}
		}
	}
}

func (w *World) updatePedestrian(p *Pedestrian, dt float32) {
	switch p.state {
	case PedInCar:
		v := w.carByID[p.car]
		if v == nil {
			p.car, p.seat = 0, 0
			p.state = PedWalking
			return
		}
		p.pos, p.heading = v.pos, v.heading
		return

	case PedKnockedDown:
		p.stateTime -= dt
		if p.stateTime <= 0 {
			p.state = PedWalking
			p.speed = pedWalkSpeed
		}
		return

	case PedSlidingOnCar:
		w.movePedestrian(p, dt, false)
		p.stateTime -= dt
		if p.stateTime <= 0 {
			p.state = PedWalking
			p.speed = pedWalkSpeed
		}
		return
	}

	p.wander -= dt
	if p.wander <= 0 {
		p.wander = wanderInterval * (0.5 + w.rng.Float32())
		p.heading = float32(w.rng.IntN(8)) * 45
	}
	w.movePedestrian(p, dt, true)
	if p.speed > 0 {
		p.animTime += dt
	}
}

// movePedestrian anda no rumo atual. Com checkTiles, não entra em tiles onde não se anda.
func (w *World) movePedestrian(p *Pedestrian, dt float32, checkTiles bool) {
	if p.speed == 0 {
		return
	}
	step := Forward(p.heading).Mul(p.speed * dt)
	next := p.pos.Add(mgl32.Vec3{step.X(), 0, step.Y()})
	if checkTiles {
		tx, ty := int(math32.Floor(next.X())), int(math32.Floor(next.Z()))
		if !w.walkable(tx, ty) {
			p.heading = math32.Mod(p.heading+90+float32(w.rng.IntN(3))*90, 360)
			return
		}
	}
	p.pos = w.groundAt(next)
}

// walkable indica calçadas e gramados livres de construções.
func (w *World) walkable(x, y int) bool {
	width, height, _ := w.city.Dimensions()
	if x < 0 || y < 0 || x >= width || y >= height {
		return false
	}
	g := w.city.Block(x, y, 0)
	if g.Ground != mapdata.GroundPavement && g.Ground != mapdata.GroundField {
		return false
	}
	return !w.city.Block(x, y, 1).IsSolid()
}
