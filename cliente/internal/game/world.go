package game

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"math/rand/v2"

	"CarnageVision/cliente/internal/render"
	"CarnageVision/shared/mapdata"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrUnknownPedestrian = errors.New("pedestre desconhecido")
	ErrUnknownVehicle    = errors.New("veículo desconhecido")
	ErrAlreadyInCar      = errors.New("pedestre já está em um veículo")
	ErrNotInCar          = errors.New("pedestre não está em um veículo")
	ErrSeatTaken         = errors.New("assento ocupado")
	ErrNoFreeSeat        = errors.New("veículo sem assento livre")
)

// Terrain é o mapa visto pela simulação.
type Terrain interface {
	Block(x, y, z int) *mapdata.BlockStyle
	Dimensions() (w, h, layers int)
	HeightAt(pos mgl32.Vec3) float32
}

// World guarda pedestres e veículos em ordem de criação.
// Não é seguro para uso concorrente: a simulação e o renderizador rodam na mesma goroutine.
type World struct {
	city  Terrain
	style *mapdata.StyleData
	rng   *rand.Rand

	peds     []*Pedestrian
	vehicles []*Vehicle
	pedByID  map[PedestrianID]*Pedestrian
	carByID  map[VehicleID]*Vehicle

	nextPed PedestrianID
	nextCar VehicleID
}

// NewWorld cria um mundo vazio sobre o mapa.
func NewWorld(city Terrain, style *mapdata.StyleData, seed int64) *World {
	return &World{
		city:    city,
		style:   style,
		rng:     rand.New(rand.NewPCG(uint64(seed), 0x5851f42d4c957f2d)),
		pedByID: make(map[PedestrianID]*Pedestrian),
		carByID: make(map[VehicleID]*Vehicle),
	}
}

// SpawnPedestrian cria um pedestre apoiado no terreno.
func (w *World) SpawnPedestrian(pos mgl32.Vec3, heading float32) *Pedestrian {
	w.nextPed++
	p := &Pedestrian{
		ID:      w.nextPed,
		pos:     w.groundAt(pos),
		heading: heading,
		world:   w,
	}
	w.peds = append(w.peds, p)
	w.pedByID[p.ID] = p
	return p
}

// SpawnVehicle cria um veículo da classe styleIndex.
func (w *World) SpawnVehicle(styleIndex int, pos mgl32.Vec3, heading float32) (*Vehicle, error) {
	if w.style == nil || styleIndex < 0 || styleIndex >= len(w.style.Cars) {
		return nil, fmt.Errorf("classe de veículo inválida: %d", styleIndex)
	}
	w.nextCar++
	v := &Vehicle{
		ID:        w.nextCar,
		pos:       w.groundAt(pos),
		heading:   heading,
		style:     &w.style.Cars[styleIndex],
		lastTileX: -1,
		lastTileY: -1,
	}
	w.vehicles = append(w.vehicles, v)
	w.carByID[v.ID] = v
	return v, nil
}

// RemovePedestrian tira o pedestre do mundo, liberando o assento se houver.
func (w *World) RemovePedestrian(id PedestrianID) error {
	p := w.pedByID[id]
	if p == nil {
		return fmt.Errorf("%w: %d", ErrUnknownPedestrian, id)
	}
	if p.car != 0 {
		if v := w.carByID[p.car]; v != nil {
			v.Seats[p.seat] = 0
		}
	}
	delete(w.pedByID, id)
	w.peds = removeEntity(w.peds, p)
	p.world = nil
	return nil
}

// RemoveVehicle tira o veículo do mundo e desembarca os ocupantes.
func (w *World) RemoveVehicle(id VehicleID) error {
	v := w.carByID[id]
	if v == nil {
		return fmt.Errorf("%w: %d", ErrUnknownVehicle, id)
	}
	for _, pid := range v.Seats {
		if pid != 0 {
			if err := w.ExitCar(pid); err != nil {
				return err
			}
		}
	}
	delete(w.carByID, id)
	w.vehicles = removeEntity(w.vehicles, v)
	return nil
}

func removeEntity[T comparable](list []T, item T) []T {
	for i, e := range list {
		if e == item {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func (w *World) Pedestrian(id PedestrianID) *Pedestrian { return w.pedByID[id] }
func (w *World) Vehicle(id VehicleID) *Vehicle          { return w.carByID[id] }
func (w *World) PedestrianCount() int                   { return len(w.peds) }
func (w *World) VehicleCount() int                      { return len(w.vehicles) }

// VehicleAt retorna o i-ésimo veículo em ordem de criação, com volta ao início.
func (w *World) VehicleAt(i int) *Vehicle {
	if len(w.vehicles) == 0 {
		return nil
	}
	i %= len(w.vehicles)
	if i < 0 {
		i += len(w.vehicles)
	}
	return w.vehicles[i]
}

// EnterCar senta o pedestre no veículo. seat < 0 escolhe o primeiro assento livre,
// começando pelo do motorista.
func (w *World) EnterCar(pid PedestrianID, vid VehicleID, seat int) (int, error) {
	p := w.pedByID[pid]
	if p == nil {
		return -1, fmt.Errorf("%w: %d", ErrUnknownPedestrian, pid)
	}
	v := w.carByID[vid]
	if v == nil {
		return -1, fmt.Errorf("%w: %d", ErrUnknownVehicle, vid)
	}
	if p.car != 0 {
		return -1, fmt.Errorf("%w: %d no veículo %d", ErrAlreadyInCar, pid, p.car)
	}

	switch {
	case seat < 0:
		seat = -1
		for i, occ := range v.Seats {
			if occ == 0 {
				seat = i
				break
			}
		}
		if seat < 0 {
			return -1, fmt.Errorf("%w: %d", ErrNoFreeSeat, vid)
		}
	case seat >= MaxCarSeats:
		return -1, fmt.Errorf("assento %d inválido", seat)
	case v.Seats[seat] != 0:
		return -1, fmt.Errorf("%w: veículo %d assento %d", ErrSeatTaken, vid, seat)
	}

	v.Seats[seat] = pid
	p.car, p.seat = vid, seat
	p.state = PedInCar
	p.speed = 0
	p.pos = v.pos
	p.heading = v.heading
	return seat, nil
}

// ExitCar desembarca o pedestre ao lado do veículo.
func (w *World) ExitCar(pid PedestrianID) error {
	p := w.pedByID[pid]
	if p == nil {
		return fmt.Errorf("%w: %d", ErrUnknownPedestrian, pid)
	}
	if p.car == 0 {
		return fmt.Errorf("%w: %d", ErrNotInCar, pid)
	}
	if v := w.carByID[p.car]; v != nil {
		v.Seats[p.seat] = 0
		// sai pela lateral esquerda do veículo
		side := Forward(v.heading - 90).Mul(float32(v.style.Width)/mapdata.MapPixelsPerTile*0.5 + pedRadius)
		p.pos = w.groundAt(v.pos.Add(mgl32.Vec3{side.X(), 0, side.Y()}))
	}
	p.car, p.seat = 0, 0
	p.state = PedWalking
	return nil
}

// KnockDown derruba o pedestre. Quem está dentro de um veículo não cai.
func (w *World) KnockDown(pid PedestrianID) error {
	p := w.pedByID[pid]
	if p == nil {
		return fmt.Errorf("%w: %d", ErrUnknownPedestrian, pid)
	}
	if p.state == PedInCar {
		return nil
	}
	p.state = PedKnockedDown
	p.stateTime = knockedDownTime
	p.speed = 0
	return nil
}

// SlideOnCar faz o pedestre deslizar sobre o capô de um veículo.
func (w *World) SlideOnCar(pid PedestrianID) error {
	p := w.pedByID[pid]
	if p == nil {
		return fmt.Errorf("%w: %d", ErrUnknownPedestrian, pid)
	}
	if p.state == PedInCar {
		return nil
	}
	p.state = PedSlidingOnCar
	p.stateTime = slideTime
	p.speed = slideSpeed
	return nil
}

// Pedestrians implementa render.Entities.
func (w *World) Pedestrians() iter.Seq[render.PedestrianView] {
	return func(yield func(render.PedestrianView) bool) {
		for _, p := range w.peds {
			if !yield(p) {
				return
			}
		}
	}
}

// Vehicles implementa render.Entities.
func (w *World) Vehicles() iter.Seq[render.VehicleView] {
	return func(yield func(render.VehicleView) bool) {
		for _, v := range w.vehicles {
			if !yield(v) {
				return
			}
		}
	}
}

// Populate espalha veículos nas ruas (cada um com motorista) e pedestres nas calçadas.
func (w *World) Populate(pedestrians, vehicles int) {
	width, height, _ := w.city.Dimensions()
	if w.style == nil || len(w.style.Cars) == 0 || width == 0 || height == 0 {
		return
	}

	placed := 0
	for tries := 0; placed < vehicles && tries < vehicles*50; tries++ {
		x, y := w.rng.IntN(width), w.rng.IntN(height)
		b := w.city.Block(x, y, 0)
		dir, ok := laneDirection(b)
		if !ok {
			continue
		}
		v, err := w.SpawnVehicle(w.rng.IntN(len(w.style.Cars)), tileCenter(x, y, 0), dir)
		if err != nil {
			log.Printf("[World] Falha ao criar veículo: %v", err)
			continue
		}
		driver := w.SpawnPedestrian(v.pos, v.heading)
		if _, err := w.EnterCar(driver.ID, v.ID, 0); err != nil {
			log.Printf("[World] Falha ao embarcar motorista: %v", err)
		}
		v.speed = v.style.MaxSpeed * (0.5 + 0.5*w.rng.Float32())
		placed++
	}

	walkers := 0
	for tries := 0; walkers < pedestrians && tries < pedestrians*50; tries++ {
		x, y := w.rng.IntN(width), w.rng.IntN(height)
		if !w.walkable(x, y) {
			continue
		}
		p := w.SpawnPedestrian(tileCenter(x, y, 0), float32(w.rng.IntN(4))*90)
		p.speed = pedWalkSpeed
		p.wander = w.rng.Float32() * wanderInterval
		walkers++
	}
	log.Printf("[World] População: %d veículos, %d pedestres a pé", placed, walkers)
}

// laneDirection retorna o rumo de uma faixa de mão única, se o bloco for uma.
func laneDirection(b *mapdata.BlockStyle) (float32, bool) {
	if b == nil || b.Ground != mapdata.GroundRoad {
		return 0, false
	}
	switch b.Directions {
	case mapdata.DirUp:
		return HeadingUp, true
	case mapdata.DirDown:
		return HeadingDown, true
	case mapdata.DirLeft:
		return HeadingLeft, true
	case mapdata.DirRight:
		return HeadingRight, true
	}
	return 0, false
}

func tileCenter(x, y int, height float32) mgl32.Vec3 {
	return mgl32.Vec3{float32(x) + 0.5, height, float32(y) + 0.5}
}

// groundAt apoia a posição no terreno, procurando a partir de meio bloco acima.
func (w *World) groundAt(pos mgl32.Vec3) mgl32.Vec3 {
	if w.city == nil {
		return pos
	}
	probe := pos
	probe[1] = pos.Y() + groundProbe
	pos[1] = w.city.HeightAt(probe)
	return pos
}
