package assets

import (
	"fmt"
	"image"
	"testing"

	"CarnageVision/cliente/internal/gpu"
	"CarnageVision/shared/mapdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type uploadLog struct {
	ids []gpu.TextureID
}

func (u *uploadLog) UploadTexture(id gpu.TextureID, img *image.RGBA) {
	u.ids = append(u.ids, id)
}

func TestTextureRegistry(t *testing.T) {
	reg := NewTextureRegistry()
	a, err := reg.Register("a", image.NewRGBA(image.Rect(0, 0, 2, 2)))
	require.NoError(t, err)
	b, err := reg.Register("b", image.NewRGBA(image.Rect(0, 0, 2, 2)))
	require.NoError(t, err)

	assert.Equal(t, gpu.TextureID(1), a)
	assert.Equal(t, gpu.TextureID(2), b)
	assert.NotEqual(t, gpu.NoTexture, a)

	_, err = reg.Register("a", image.NewRGBA(image.Rect(0, 0, 1, 1)))
	assert.Error(t, err, "nome repetido")
	_, err = reg.Register("c", nil)
	assert.Error(t, err, "imagem nula")
	assert.Equal(t, 2, reg.Len())

	id, ok := reg.Lookup("b")
	assert.True(t, ok)
	assert.Equal(t, b, id)

	_, ok = reg.Image(gpu.NoTexture)
	assert.False(t, ok)
	_, ok = reg.Image(3)
	assert.False(t, ok)
	img, ok := reg.Image(a)
	require.True(t, ok)
	assert.Equal(t, 2, img.Bounds().Dx())

	up := &uploadLog{}
	reg.UploadAll(up)
	assert.Equal(t, []gpu.TextureID{1, 2}, up.ids)
}

func TestSpritesheetFrames(t *testing.T) {
	style := mapdata.DefaultStyle()
	reg := NewTextureRegistry()
	sheet, err := BuildSpritesheet(style, reg, DefaultSheetOptions())
	require.NoError(t, err)
	require.Equal(t, len(style.Sprites), sheet.Len())

	for i, st := range style.Sprites {
		f, ok := sheet.Frame(i)
		require.True(t, ok, "sprite %d", i)
		assert.Equal(t, float32(st.Width), f.Size.X())
		assert.Equal(t, float32(st.Height), f.Size.Y())
		assert.Contains(t, sheet.Pages(), f.Texture)
		for _, uv := range []float32{f.UV0.X(), f.UV0.Y(), f.UV1.X(), f.UV1.Y()} {
			assert.True(t, uv >= 0 && uv <= 1, "uv fora de [0,1]: %v", uv)
		}
		assert.Less(t, f.UV0.X(), f.UV1.X())
		assert.Less(t, f.UV0.Y(), f.UV1.Y())
	}

	_, ok := sheet.Frame(-1)
	assert.False(t, ok)
	_, ok = sheet.Frame(len(style.Sprites))
	assert.False(t, ok)
}

func TestSpritesheetNoOverlap(t *testing.T) {
	style := mapdata.DefaultStyle()
	sheet, err := BuildSpritesheet(style, NewTextureRegistry(), SheetOptions{PageSize: 128, Padding: 1})
	require.NoError(t, err)
	assert.Greater(t, len(sheet.Pages()), 1, "página pequena deveria transbordar")

	bounds := image.Rect(0, 0, 128, 128)
	for i, a := range sheet.entries {
		assert.True(t, a.rect.In(bounds), "sprite %d fora da página: %v", i, a.rect)
		for j := i + 1; j < len(sheet.entries); j++ {
			b := sheet.entries[j]
			if a.page == b.page {
				assert.False(t, a.rect.Overlaps(b.rect), "sprites %d e %d se sobrepõem", i, j)
			}
		}
	}
}

func TestSpritesheetPagesRegistered(t *testing.T) {
	reg := NewTextureRegistry()
	sheet, err := BuildSpritesheet(mapdata.DefaultStyle(), reg, SheetOptions{PageSize: 128, Padding: 1})
	require.NoError(t, err)

	for i, id := range sheet.Pages() {
		got, ok := reg.Lookup(fmt.Sprintf("sprites/%d", i))
		require.True(t, ok)
		assert.Equal(t, id, got)
	}
}

func TestSpritesheetPainted(t *testing.T) {
	style := mapdata.DefaultStyle()
	reg := NewTextureRegistry()
	sheet, err := BuildSpritesheet(style, reg, DefaultSheetOptions())
	require.NoError(t, err)

	index := style.SpriteIndex(mapdata.SpriteTank, 0)
	e := sheet.entries[index]
	img, ok := reg.Image(sheet.Pages()[e.page])
	require.True(t, ok)

	body := toRGBA(style.Sprites[index].Color)
	assert.Equal(t, shade(body, 0.55), img.RGBAAt(e.rect.Min.X, e.rect.Min.Y), "borda")
	assert.Equal(t, body, img.RGBAAt(e.rect.Min.X+1, e.rect.Max.Y-2), "corpo")
}

func TestSpritesheetTooLarge(t *testing.T) {
	_, err := BuildSpritesheet(mapdata.DefaultStyle(), NewTextureRegistry(), SheetOptions{PageSize: 64, Padding: 1})
	assert.Error(t, err)
}

func TestBlockAtlas(t *testing.T) {
	style := mapdata.DefaultStyle()
	atlas, err := BuildBlockAtlas(style, 32)
	require.NoError(t, err)

	assert.Equal(t, style.BlockTexturesCount(), atlas.Layers)
	assert.Equal(t, 4, atlas.Columns)
	assert.Equal(t, 4, atlas.Rows)
	assert.Equal(t, image.Rect(0, 0, 128, 128), atlas.Image.Bounds())
	assert.Equal(t, image.Rect(32, 32, 64, 64), atlas.Cell(5))

	// camada 0 e o separador entre laterais e tampas não existem no mapa
	assert.Equal(t, colMissing, atlas.Image.RGBAAt(16, 16))
	sep := atlas.Cell(style.SideTexturesCount)
	assert.Equal(t, colMissing, atlas.Image.RGBAAt(sep.Min.X+5, sep.Min.Y+5))

	water := atlas.Cell(style.SideTexturesCount + int(mapdata.LidWater))
	assert.Equal(t, colWater, atlas.Image.RGBAAt(water.Min.X+16, water.Min.Y+16))

	_, err = BuildBlockAtlas(style, 4)
	assert.Error(t, err)
	_, err = BuildBlockAtlas(mapdata.NewStyleData(), 32)
	assert.Error(t, err)
}
