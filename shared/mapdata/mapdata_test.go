package mapdata

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlopeProfile(t *testing.T) {
	tests := []struct {
		slope  uint8
		dir    SlopeDir
		lo, hi float32
	}{
		{0, SlopeNone, 1, 1},
		{1, SlopeUp, 0, 0.5},
		{2, SlopeUp, 0.5, 1},
		{3, SlopeDown, 0, 0.5},
		{8, SlopeRight, 0.5, 1},
		{9, SlopeUp, 0, 0.125},
		{16, SlopeUp, 0.875, 1},
		{17, SlopeDown, 0, 0.125},
		{40, SlopeRight, 0.875, 1},
		{41, SlopeUp, 0, 1},
		{44, SlopeRight, 0, 1},
		{45, SlopeNone, 1, 1},
	}
	for _, tt := range tests {
		dir, lo, hi := SlopeProfile(tt.slope)
		if dir != tt.dir || lo != tt.lo || hi != tt.hi {
			t.Errorf("SlopeProfile(%d) = %v %v %v, want %v %v %v", tt.slope, dir, lo, hi, tt.dir, tt.lo, tt.hi)
		}
	}
}

func TestCornerHeights(t *testing.T) {
	// 45 graus subindo para o norte: borda norte alta
	assert.Equal(t, [4]float32{1, 1, 0, 0}, CornerHeights(41))
	// 45 graus subindo para o leste
	assert.Equal(t, [4]float32{0, 1, 1, 0}, CornerHeights(44))
	assert.Equal(t, [4]float32{1, 1, 1, 1}, CornerHeights(0))
}

func TestHeightAt(t *testing.T) {
	m := NewCityMap("test", nil)
	require.NoError(t, m.SetBlock(5, 5, 0, BlockStyle{Ground: GroundRoad}))
	require.NoError(t, m.SetBlock(6, 5, 0, BlockStyle{Ground: GroundRoad}))
	require.NoError(t, m.SetBlock(6, 5, 2, BlockStyle{Ground: GroundBuilding}))
	require.NoError(t, m.SetBlock(7, 5, 1, BlockStyle{Ground: GroundPavement, SlopeType: 44}))

	tests := []struct {
		name string
		pos  mgl32.Vec3
		want float32
	}{
		{"chão", mgl32.Vec3{5.5, 1.01, 5.5}, 1},
		{"ar alto desce até o chão", mgl32.Vec3{5.5, 4.5, 5.5}, 1},
		{"telhado", mgl32.Vec3{6.5, 3.2, 5.5}, 3},
		{"sob o telhado", mgl32.Vec3{6.5, 1.01, 5.5}, 1},
		{"rampa meio", mgl32.Vec3{7.5, 1.01, 5.5}, 1.5},
		{"rampa começo", mgl32.Vec3{7.0, 1.01, 5.5}, 1},
		{"vazio", mgl32.Vec3{100.5, 1.01, 100.5}, 0},
		{"fora do mapa", mgl32.Vec3{-3, 1, 2}, 0},
		{"acima do topo", mgl32.Vec3{6.5, 40, 5.5}, 3},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, m.HeightAt(tt.pos), 1e-5, tt.name)
	}
}

func TestSetBlockBounds(t *testing.T) {
	m := NewCityMap("test", nil)
	rev := m.Revision
	assert.Error(t, m.SetBlock(MapDimensions, 0, 0, BlockStyle{}))
	assert.Error(t, m.SetBlock(0, 0, MapLayersCount, BlockStyle{}))
	assert.Equal(t, rev, m.Revision)
	assert.True(t, m.Block(-1, 0, 0).IsEmpty())
}

func TestClearBlock(t *testing.T) {
	m := NewCityMap("test", nil)
	require.NoError(t, m.SetBlock(2, 3, 1, BlockStyle{Ground: GroundPavement}))
	rev := m.Revision

	require.NoError(t, m.ClearBlock(2, 3, 1))
	assert.True(t, m.Block(2, 3, 1).IsEmpty())
	assert.Equal(t, rev+1, m.Revision)
	assert.Error(t, m.ClearBlock(-1, 0, 0))
}

func TestSpriteIndex(t *testing.T) {
	s := NewStyleData()
	require.NoError(t, s.AddSprites(SpriteBoat, 2, SpriteStyle{}))
	require.NoError(t, s.AddSprites(SpriteCar, 3, SpriteStyle{}))
	require.NoError(t, s.AddSprites(SpritePed, 4, SpriteStyle{}))
	require.NoError(t, s.AddSprites(SpriteBike, 1, SpriteStyle{}))
	assert.Error(t, s.AddSprites(SpriteBus, 1, SpriteStyle{}))

	assert.Equal(t, 0, s.SpriteIndex(SpriteBoat, 0))
	assert.Equal(t, 2, s.SpriteIndex(SpriteCar, 0))
	assert.Equal(t, 7, s.SpriteIndex(SpritePed, 2))
	assert.Equal(t, 9, s.CarSpriteIndex(CarMotorcycle, 3, 0))
	assert.Equal(t, 4, s.CarSpriteIndex(CarStandard, 0, 2))
	assert.Len(t, s.Sprites, 10)
}

func TestCarSpriteType(t *testing.T) {
	tests := []struct {
		vtype CarVType
		want  SpriteType
	}{
		{CarBus, SpriteBus},
		{CarFrontOfJuggernaut, SpriteBus},
		{CarBackOfJuggernaut, SpriteBus},
		{CarMotorcycle, SpriteBike},
		{CarStandard, SpriteCar},
		{CarTrain, SpriteTrain},
		{CarTram, SpriteTram},
		{CarBoat, SpriteBoat},
		{CarTank, SpriteTank},
	}
	for _, tt := range tests {
		if got := CarSpriteType(tt.vtype); got != tt.want {
			t.Errorf("CarSpriteType(%d) = %d, want %d", tt.vtype, got, tt.want)
		}
	}
}

func TestDefaultStyleCarSpritesResolve(t *testing.T) {
	s := DefaultStyle()
	for _, car := range s.Cars {
		idx := s.CarSpriteIndex(car.VType, car.Model, car.SprNum)
		sprite, ok := s.Sprite(idx)
		require.True(t, ok, car.Name)
		assert.Equal(t, car.Width, sprite.Width, car.Name)
		assert.Equal(t, car.Height, sprite.Height, car.Name)
	}
	_, ok := s.Sprite(s.SpriteIndex(SpritePed, PedFrameKnockedDown))
	assert.True(t, ok)
}

func TestGenerateCityDeterministic(t *testing.T) {
	a := GenerateCity("a", 42)
	b := GenerateCity("b", 42)
	c := GenerateCity("c", 7)

	assert.Equal(t, a.blocks, b.blocks)
	assert.NotEqual(t, a.blocks, c.blocks)

	// rua na origem, calçada e chão sólido em todo o nível 0
	assert.Equal(t, GroundRoad, a.Block(0, 0, 0).Ground)
	assert.Equal(t, GroundPavement, a.Block(RoadWidth, RoadWidth+2, 0).Ground)
	for y := 0; y < MapDimensions; y += 13 {
		for x := 0; x < MapDimensions; x += 11 {
			assert.True(t, a.Block(x, y, 0).IsSolid(), "(%d,%d)", x, y)
		}
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	m := GenerateCity("roundtrip", 3)
	require.NoError(t, m.OpenDatabase(dir))
	require.NoError(t, m.SaveCity())
	require.NoError(t, m.Close())

	loaded, err := LoadCity(dir, "roundtrip")
	require.NoError(t, err)
	defer loaded.Close()

	assert.Equal(t, m.blocks, loaded.blocks)
	assert.Equal(t, m.Revision, loaded.Revision)
	assert.Equal(t, m.Style.SpriteNumbers, loaded.Style.SpriteNumbers)
	assert.Len(t, loaded.Style.Cars, len(m.Style.Cars))
}

func TestLoadCityMissing(t *testing.T) {
	_, err := LoadCity(t.TempDir(), "nada")
	assert.True(t, errors.Is(err, ErrNoCity))
}

func TestSaveWithoutDatabase(t *testing.T) {
	m := NewCityMap("x", nil)
	assert.ErrorIs(t, m.SaveCity(), ErrNoDatabase)
}
