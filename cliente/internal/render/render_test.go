package render

import (
	"iter"
	"math/rand/v2"
	"testing"

	"CarnageVision/cliente/internal/gpu"
	"CarnageVision/cliente/internal/gpu/gputest"
	"CarnageVision/shared/config"
	"CarnageVision/shared/mapdata"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCar struct {
	pos   mgl32.Vec3
	rot   float32
	style *mapdata.CarStyle
}

func (c *fakeCar) Position() mgl32.Vec3        { return c.pos }
func (c *fakeCar) RotationDegrees() float32    { return c.rot }
func (c *fakeCar) CarStyle() *mapdata.CarStyle { return c.style }

type fakePed struct {
	pos         mgl32.Vec3
	rot         float32
	frame       int
	sliding     bool
	unconscious bool
	car         *fakeCar
}

func (p *fakePed) Position() mgl32.Vec3     { return p.pos }
func (p *fakePed) RotationDegrees() float32 { return p.rot }
func (p *fakePed) AnimFrame() int           { return p.frame }
func (p *fakePed) SlidingOnCar() bool       { return p.sliding }
func (p *fakePed) Unconscious() bool        { return p.unconscious }

func (p *fakePed) CurrentCar() (VehicleView, bool) {
	if p.car == nil {
		return nil, false
	}
	return p.car, true
}

type fakeWorld struct {
	peds []*fakePed
	cars []*fakeCar
}

func (w *fakeWorld) Pedestrians() iter.Seq[PedestrianView] {
	return func(yield func(PedestrianView) bool) {
		for _, p := range w.peds {
			if !yield(p) {
				return
			}
		}
	}
}

func (w *fakeWorld) Vehicles() iter.Seq[VehicleView] {
	return func(yield func(VehicleView) bool) {
		for _, c := range w.cars {
			if !yield(c) {
				return
			}
		}
	}
}

// fakeSheet associa índices do spritesheet a texturas.
type fakeSheet map[int]gpu.TextureID

func (s fakeSheet) Frame(index int) (SpriteFrame, bool) {
	tex, ok := s[index]
	if !ok {
		return SpriteFrame{}, false
	}
	return SpriteFrame{Texture: tex, UV0: mgl32.Vec2{0, 0}, UV1: mgl32.Vec2{0.5, 0.25}, Size: mgl32.Vec2{16, 24}}, true
}

type flatTerrain float32

func (h flatTerrain) HeightAt(mgl32.Vec3) float32 { return float32(h) }

// cornerTerrain devolve uma altura por quadrante em volta do centro (NW, NE, SE, SW).
type cornerTerrain struct {
	center  mgl32.Vec3
	heights [4]float32
}

func (t cornerTerrain) HeightAt(p mgl32.Vec3) float32 {
	east := p.X() > t.center.X()
	south := p.Z() > t.center.Z()
	switch {
	case !east && !south:
		return t.heights[0]
	case east && !south:
		return t.heights[1]
	case east && south:
		return t.heights[2]
	default:
		return t.heights[3]
	}
}

type lineCounter struct{ lines int }

func (l *lineCounter) DrawLine(from, to mgl32.Vec3, color uint32) { l.lines++ }

type fixedCamera mgl32.Vec3

func (c fixedCamera) Position() mgl32.Vec3 { return mgl32.Vec3(c) }

func rec(tex gpu.TextureID, x float32) DrawSpriteRec {
	return DrawSpriteRec{
		Position:     mgl32.Vec3{x, 1, 0},
		Size:         mgl32.Vec2{0.25, 0.375},
		CenterOffset: mgl32.Vec2{-0.125, -0.1875},
		UV0:          mgl32.Vec2{0, 0},
		UV1:          mgl32.Vec2{1, 1},
		Texture:      tex,
	}
}

const (
	texA gpu.TextureID = 1
	texB gpu.TextureID = 2
)

func TestSortAndBatchScenario(t *testing.T) {
	list := []DrawSpriteRec{rec(texA, 0), rec(texA, 1), rec(texB, 2), rec(texA, 3), rec(texB, 4)}

	SortDrawSprites(list)
	var order []float32
	for _, r := range list {
		order = append(order, r.Position.X())
	}
	assert.Equal(t, []float32{0, 1, 3, 2, 4}, order, "empates mantêm a ordem de chegada")

	var b SpriteBatchBuilder
	b.Build(list)
	require.Len(t, b.Batches, 2)
	assert.Equal(t, DrawSpriteBatch{FirstVertex: 0, VertexCount: 12, FirstIndex: 0, IndexCount: 18, Texture: texA}, b.Batches[0])
	assert.Equal(t, DrawSpriteBatch{FirstVertex: 12, VertexCount: 8, FirstIndex: 18, IndexCount: 12, Texture: texB}, b.Batches[1])
	assert.Equal(t, []gpu.DrawIndex{12, 13, 14, 13, 14, 15}, b.Indices[18:24])
}

func TestBatchBuilderCounts(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	var b SpriteBatchBuilder

	for n := 0; n < 60; n++ {
		list := make([]DrawSpriteRec, n)
		for i := range list {
			list[i] = rec(gpu.TextureID(1+rng.IntN(4)), float32(i))
			list[i].Rotation = rng.Float32() * 6
		}
		SortDrawSprites(list)
		b.Build(list)

		assert.Len(t, b.Vertices, 4*n)
		assert.Len(t, b.Indices, 6*n)

		vertices, indices := 0, 0
		for i, batch := range b.Batches {
			assert.Equal(t, vertices, batch.FirstVertex)
			assert.Equal(t, indices, batch.FirstIndex)
			vertices += batch.VertexCount
			indices += batch.IndexCount
			if i > 0 {
				assert.NotEqual(t, b.Batches[i-1].Texture, batch.Texture, "lotes vizinhos com a mesma textura")
			}
			for _, idx := range b.Indices[batch.FirstIndex : batch.FirstIndex+batch.IndexCount] {
				assert.GreaterOrEqual(t, int(idx), batch.FirstVertex)
				assert.Less(t, int(idx), batch.FirstVertex+batch.VertexCount)
			}
		}
		assert.Equal(t, 4*n, vertices)
		assert.Equal(t, 6*n, indices)
	}
}

func TestBatchBuilderUnrotatedCornersExact(t *testing.T) {
	for _, rotation := range []float32{0, 0.01, -0.009} {
		r := DrawSpriteRec{
			Position:     mgl32.Vec3{10.3, 2.7, 5.9},
			Size:         mgl32.Vec2{0.4375, 0.8125},
			CenterOffset: mgl32.Vec2{-0.21875, -0.40625},
			UV0:          mgl32.Vec2{0.125, 0.5},
			UV1:          mgl32.Vec2{0.25, 0.75},
			Rotation:     rotation,
			Texture:      texA,
		}
		var b SpriteBatchBuilder
		b.Build([]DrawSpriteRec{r})

		x0 := r.Position.X() + r.CenterOffset.X()
		z0 := r.Position.Z() + r.CenterOffset.Y()
		x1 := r.Position.X() + r.Size.X() + r.CenterOffset.X()
		z1 := r.Position.Z() + r.Size.Y() + r.CenterOffset.Y()
		y := r.Position.Y()

		require.Len(t, b.Vertices, 4)
		assert.Equal(t, mgl32.Vec3{x0, y, z0}, b.Vertices[0].Position)
		assert.Equal(t, mgl32.Vec3{x1, y, z0}, b.Vertices[1].Position)
		assert.Equal(t, mgl32.Vec3{x0, y, z1}, b.Vertices[2].Position)
		assert.Equal(t, mgl32.Vec3{x1, y, z1}, b.Vertices[3].Position)

		assert.Equal(t, mgl32.Vec2{0.125, 0.5}, b.Vertices[0].Texcoord)
		assert.Equal(t, mgl32.Vec2{0.25, 0.5}, b.Vertices[1].Texcoord)
		assert.Equal(t, mgl32.Vec2{0.125, 0.75}, b.Vertices[2].Texcoord)
		assert.Equal(t, mgl32.Vec2{0.25, 0.75}, b.Vertices[3].Texcoord)
	}
}

func TestBatchBuilderRotatesAroundPosition(t *testing.T) {
	r := rec(texA, 4)
	r.Rotation = mgl32.DegToRad(90)
	var b SpriteBatchBuilder
	b.Build([]DrawSpriteRec{r})

	center := mgl32.Vec2{r.Position.X(), r.Position.Z()}
	var sum mgl32.Vec2
	for i, v := range b.Vertices {
		p := mgl32.Vec2{v.Position.X(), v.Position.Z()}
		sum = sum.Add(p)
		assert.Equal(t, r.Position.Y(), v.Position.Y())
		assert.InDelta(t, 0.225, p.Sub(center).Len(), 1e-3, "vértice %d", i)
	}
	avg := sum.Mul(0.25)
	assert.InDelta(t, center.X(), avg.X(), 1e-5)
	assert.InDelta(t, center.Y(), avg.Y(), 1e-5)

	// 90 graus: a largura passa para o eixo Z
	assert.InDelta(t, b.Vertices[0].Position.X(), b.Vertices[1].Position.X(), 1e-5)
}

func TestBatchBuilderEmpty(t *testing.T) {
	var b SpriteBatchBuilder
	b.Build(nil)
	assert.Empty(t, b.Vertices)
	assert.Empty(t, b.Indices)
	assert.Empty(t, b.Batches)
}

func TestPedestrianHeightMonotonic(t *testing.T) {
	pos := mgl32.Vec3{20.5, 1, 30.5}
	levels := []float32{0, 0.5, 1, 1.25, 2, 3}

	for corner := 0; corner < 4; corner++ {
		terrain := cornerTerrain{center: pos, heights: [4]float32{1, 0.5, 1.5, 0}}
		ped := &fakePed{pos: pos}
		prev := float32(-1)
		for _, h := range levels {
			terrain.heights[corner] = h
			got := HeightResolver{Terrain: terrain}.Pedestrian(ped)
			assert.GreaterOrEqual(t, got, prev, "canto %d altura %v", corner, h)
			prev = got
		}
	}
}

func TestPedestrianHeightRules(t *testing.T) {
	pos := mgl32.Vec3{3.5, 1, 3.5}
	tests := []struct {
		name    string
		terrain float32
		ped     fakePed
		want    float32
	}{
		{"terreno abaixo", 0.5, fakePed{pos: pos}, 1.01},
		{"terreno acima", 2, fakePed{pos: pos}, 2.01},
		{"inconsciente", 1, fakePed{pos: pos, unconscious: true}, 1.001},
		{"deslizando no carro", 1, fakePed{pos: pos, sliding: true}, 1.36},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HeightResolver{Terrain: flatTerrain(tt.terrain)}.Pedestrian(&tt.ped)
			assert.InDelta(t, tt.want, got, 1e-5)
		})
	}
}

func TestPassengerHeight(t *testing.T) {
	style := mapdata.DefaultStyle()
	byName := func(name string) *mapdata.CarStyle {
		for i := range style.Cars {
			if style.Cars[i].Name == name {
				return &style.Cars[i]
			}
		}
		t.Fatalf("carro %q ausente", name)
		return nil
	}

	tests := []struct {
		car  string
		want float32
	}{
		{"sedan", 2.02 - 0.01},
		{"cabrio", 2.02 + 0.01},
		{"bike", 2.02 + 0.01}, // moto é sempre aberta
		{"tank", 2.02 - 0.01},
	}
	for _, tt := range tests {
		car := &fakeCar{pos: mgl32.Vec3{1, 2, 1}, style: byName(tt.car)}
		ped := &fakePed{pos: mgl32.Vec3{1, 5, 1}, car: car}
		got := HeightResolver{Terrain: flatTerrain(9)}.Pedestrian(ped)
		assert.InDelta(t, tt.want, got, 1e-5, tt.car)
	}
}

func TestVehicleHeightAndFootprint(t *testing.T) {
	st := &mapdata.CarStyle{Width: 32, Height: 64}
	car := &fakeCar{pos: mgl32.Vec3{5, 1.5, 5}, rot: 30, style: st}

	sink := &lineCounter{}
	got := HeightResolver{Terrain: flatTerrain(8), Debug: sink}.Vehicle(car)
	assert.InDelta(t, 1.52, got, 1e-6, "veículos não amostram o terreno")
	assert.Equal(t, 4, sink.lines)

	assert.InDelta(t, 1.52, HeightResolver{}.Vehicle(car), 1e-6)
}

func TestSpriteCollector(t *testing.T) {
	style := mapdata.DefaultStyle()
	pedBase := style.SpriteIndex(mapdata.SpritePed, 0)
	sedan := &style.Cars[0]
	carIndex := style.CarSpriteIndex(sedan.VType, sedan.Model, sedan.SprNum)

	sheet := fakeSheet{pedBase + 2: texA, carIndex: texB}
	world := &fakeWorld{
		cars: []*fakeCar{{pos: mgl32.Vec3{8, 1, 8}, rot: 180, style: sedan}},
		peds: []*fakePed{
			{pos: mgl32.Vec3{4, 1, 4}, rot: 90, frame: 2},
			{pos: mgl32.Vec3{4, 1, 4}, frame: 7}, // sem sprite
		},
	}

	c := SpriteCollector{Style: style, Sprites: sheet, Heights: HeightResolver{Terrain: flatTerrain(0)}}
	out := c.Collect(world, nil)
	require.Len(t, out, 2)
	assert.Equal(t, 1, c.Missing)

	ped := out[0]
	assert.Equal(t, texA, ped.Texture)
	assert.Equal(t, float32(0), ped.Rotation)
	assert.InDelta(t, 1.01, ped.Position.Y(), 1e-6)
	assert.Equal(t, mgl32.Vec2{16.0 / 64, 24.0 / 64}, ped.Size)
	assert.Equal(t, mgl32.Vec2{-8.0 / 64, -12.0 / 64}, ped.CenterOffset)

	car := out[1]
	assert.Equal(t, texB, car.Texture)
	assert.InDelta(t, mgl32.DegToRad(90), car.Rotation, 1e-6)
	assert.InDelta(t, 1.02, car.Position.Y(), 1e-6)
}

func TestSpriteCollectorHidesHardTopPassengers(t *testing.T) {
	style := mapdata.DefaultStyle()
	pedBase := style.SpriteIndex(mapdata.SpritePed, 0)
	byName := func(name string) *mapdata.CarStyle {
		for i := range style.Cars {
			if style.Cars[i].Name == name {
				return &style.Cars[i]
			}
		}
		t.Fatalf("carro %q ausente", name)
		return nil
	}

	sedan := &fakeCar{pos: mgl32.Vec3{2, 0, 2}, style: byName("sedan")}
	cabrio := &fakeCar{pos: mgl32.Vec3{6, 0, 6}, style: byName("cabrio")}
	world := &fakeWorld{
		peds: []*fakePed{
			{pos: mgl32.Vec3{2, 0, 2}, car: sedan},
			{pos: mgl32.Vec3{6, 0, 6}, car: cabrio},
			{pos: mgl32.Vec3{9, 0, 9}},
		},
	}

	c := SpriteCollector{Style: style, Sprites: fakeSheet{pedBase: texA}, Heights: HeightResolver{Terrain: flatTerrain(0)}}
	out := c.Collect(world, nil)
	require.Len(t, out, 2)
	assert.Equal(t, 0, c.Missing)
	assert.InDelta(t, 6, out[0].Position.X(), 1e-6)
	assert.InDelta(t, 0.03, out[0].Position.Y(), 1e-6)
	assert.InDelta(t, 9, out[1].Position.X(), 1e-6)
}

type rendererFixture struct {
	dev      *gputest.Recorder
	renderer *CityRenderer
	world    *fakeWorld
	camera   *fixedCamera
	pedBase  int
}

func newRendererFixture(t *testing.T, opts Options) *rendererFixture {
	t.Helper()
	city := mapdata.GenerateCity("render", 1)
	style := city.Style
	pedBase := style.SpriteIndex(mapdata.SpritePed, 0)
	sheet := fakeSheet{pedBase: texA, pedBase + 1: texA, pedBase + 2: texB, pedBase + 3: texA, pedBase + 4: texB}

	cam := fixedCamera(mgl32.Vec3{0.5, 10, 0.5})
	f := &rendererFixture{dev: gputest.New(), world: &fakeWorld{}, camera: &cam, pedBase: pedBase}
	f.renderer = NewCityRenderer(f.dev, city, style, sheet, f.world, f.camera, opts)
	f.renderer.SetBlockTexture(99)
	require.NoError(t, f.renderer.Initialize())
	t.Cleanup(f.renderer.Deinit)
	return f
}

func TestRenderFrameEmptyScene(t *testing.T) {
	f := newRendererFixture(t, DefaultOptions())

	stats, err := f.renderer.RenderFrame()
	require.NoError(t, err)

	assert.Equal(t, []FrameState{StateMeshCheck, StateCollecting, StateDrawingStatic, StateOverlay, StateReset}, stats.States)
	assert.True(t, stats.Rebuilt)
	assert.Zero(t, stats.Sprites)
	assert.Zero(t, stats.Batches)
	assert.Empty(t, f.dev.DrawsWith(gpu.ProgramSprites))

	city := f.dev.DrawsWith(gpu.ProgramCity)
	assert.NotEmpty(t, city)
	assert.LessOrEqual(t, len(city), 6)
	assert.Equal(t, stats.MeshDraws, len(city))
	for _, d := range city {
		assert.Equal(t, gpu.TextureID(99), d.Texture)
		assert.False(t, d.States.FaceCulling)
	}

	sprites, vertices, indices, batches := f.renderer.ScratchSizes()
	assert.Zero(t, sprites+vertices+indices+batches)
	assert.Equal(t, StateIdle, f.renderer.State())
	assert.Equal(t, gpu.CacheStats{VertexPages: 1, IndexPages: 1}, stats.Cache)
}

func TestRenderFrameBatchesSprites(t *testing.T) {
	f := newRendererFixture(t, DefaultOptions())
	for frame := 0; frame < 5; frame++ {
		f.world.peds = append(f.world.peds, &fakePed{pos: mgl32.Vec3{2 + float32(frame), 1, 2}, rot: 90, frame: frame})
	}

	stats, err := f.renderer.RenderFrame()
	require.NoError(t, err)
	assert.Equal(t, []FrameState{
		StateMeshCheck, StateCollecting, StateSorting, StateBatching,
		StateDrawingDynamic, StateDrawingStatic, StateOverlay, StateReset,
	}, stats.States)
	assert.Equal(t, 5, stats.Sprites)
	assert.Equal(t, 2, stats.Batches)

	draws := f.dev.DrawsWith(gpu.ProgramSprites)
	require.Len(t, draws, 2)
	assert.Equal(t, texA, draws[0].Texture)
	assert.Equal(t, 18, draws[0].IndexCount)
	assert.Equal(t, texB, draws[1].Texture)
	assert.Equal(t, 12, draws[1].IndexCount)
	assert.Equal(t, draws[0].IndexOffset+18*gpu.SizeofDrawIndex, draws[1].IndexOffset)
	assert.Equal(t, []uint32{12, 13, 14, 13, 14, 15}, draws[1].IndexData[:6])
	assert.Equal(t, gpu.BlendAlpha, draws[0].States.Blend)

	// terceiro sprite de A é o pedestre de frame 3 (x = 5)
	verts := gputest.SpriteVertices(draws[0], 20)
	assert.InDelta(t, 5, (verts[8].Position.X()+verts[11].Position.X())/2, 1e-5)

	sprites, vertices, indices, batches := f.renderer.ScratchSizes()
	assert.Zero(t, sprites+vertices+indices+batches)
}

func TestRenderFrameStaticFirst(t *testing.T) {
	opts := DefaultOptions()
	opts.DrawOrder = config.DrawOrderStaticFirst
	f := newRendererFixture(t, opts)
	f.world.peds = []*fakePed{{pos: mgl32.Vec3{2, 1, 2}, frame: 0}}

	stats, err := f.renderer.RenderFrame()
	require.NoError(t, err)
	assert.Equal(t, []FrameState{
		StateMeshCheck, StateCollecting, StateSorting, StateBatching,
		StateDrawingStatic, StateDrawingDynamic, StateOverlay, StateReset,
	}, stats.States)
	last := f.dev.Draws[len(f.dev.Draws)-1]
	assert.Equal(t, gpu.ProgramSprites, last.Program)
}

func TestRenderFrameInvalidateRebuildsOnce(t *testing.T) {
	f := newRendererFixture(t, DefaultOptions())
	positions := []mgl32.Vec3{{0.5, 10, 0.5}, {40, 10, 90}, {200.2, 10, 17.8}}

	for _, p := range positions {
		*f.camera = fixedCamera(p)
		_, err := f.renderer.RenderFrame()
		require.NoError(t, err)
		before := f.renderer.MeshRebuilds()

		f.renderer.InvalidateMapMesh()
		stats, err := f.renderer.RenderFrame()
		require.NoError(t, err)
		assert.True(t, stats.Rebuilt)
		assert.Equal(t, before+1, f.renderer.MeshRebuilds())

		_, err = f.renderer.RenderFrame()
		require.NoError(t, err)
		assert.Equal(t, before+1, f.renderer.MeshRebuilds())
	}
}

func TestRenderFrameCapacityExceededSkipsSprites(t *testing.T) {
	opts := DefaultOptions()
	opts.VertexCachePage = 64
	opts.VertexCacheMax = 1
	f := newRendererFixture(t, opts)
	f.world.peds = []*fakePed{{pos: mgl32.Vec3{2, 1, 2}}, {pos: mgl32.Vec3{3, 1, 2}}}

	stats, err := f.renderer.RenderFrame()
	require.Error(t, err)
	assert.ErrorIs(t, err, gpu.ErrCapacityExceeded)
	assert.Equal(t, []string{"sprites"}, stats.Skipped)
	assert.Equal(t, StateReset, stats.States[len(stats.States)-1])
	assert.Empty(t, f.dev.DrawsWith(gpu.ProgramSprites))
	assert.NotEmpty(t, f.dev.DrawsWith(gpu.ProgramCity), "a malha estática continua sendo desenhada")

	// o frame seguinte começa do zero
	f.world.peds = nil
	_, err = f.renderer.RenderFrame()
	assert.NoError(t, err)
}

func TestRenderFrameLayerToggles(t *testing.T) {
	f := newRendererFixture(t, DefaultOptions())
	for i := range f.renderer.Flags.DrawMapLayers {
		f.renderer.Flags.DrawMapLayers[i] = false
	}
	stats, err := f.renderer.RenderFrame()
	require.NoError(t, err)
	assert.Zero(t, stats.MeshDraws)
	assert.Empty(t, f.dev.DrawsWith(gpu.ProgramCity))
}

func TestRenderFrameDebugFootprints(t *testing.T) {
	f := newRendererFixture(t, DefaultOptions())
	f.renderer.Flags.DebugFootprints = true
	f.world.peds = []*fakePed{{pos: mgl32.Vec3{2, 1, 2}}, {pos: mgl32.Vec3{3, 1, 2}, frame: 1}}

	stats, err := f.renderer.RenderFrame()
	require.NoError(t, err)
	assert.Equal(t, 8, stats.Lines)

	lines := f.dev.DrawsWith(gpu.ProgramDebug)
	require.Len(t, lines, 1)
	assert.Equal(t, gpu.PrimitiveLines, lines[0].Primitive)
	assert.Equal(t, 16, lines[0].VertexCount)
}

func TestRenderFrameRequiresInitialize(t *testing.T) {
	city := mapdata.NewCityMap("x", nil)
	r := NewCityRenderer(gputest.New(), city, city.Style, fakeSheet{}, &fakeWorld{}, nil, DefaultOptions())
	_, err := r.RenderFrame()
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestInitializeFailure(t *testing.T) {
	dev := gputest.New()
	dev.CreateErr = assert.AnError
	dev.CreateLimit = 2 // os buffers da cidade passam, o cache transitório falha

	city := mapdata.NewCityMap("x", nil)
	r := NewCityRenderer(dev, city, city.Style, fakeSheet{}, &fakeWorld{}, nil, DefaultOptions())
	err := r.Initialize()
	assert.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, dev.Buffers)
}

func TestFrameStateString(t *testing.T) {
	assert.Equal(t, "drawing_dynamic", StateDrawingDynamic.String())
	assert.Equal(t, "FrameState(42)", FrameState(42).String())
}
