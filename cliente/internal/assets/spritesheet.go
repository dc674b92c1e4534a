package assets

import (
	"cmp"
	"fmt"
	"image"
	"image/color"
	"log"
	"slices"

	"CarnageVision/cliente/internal/gpu"
	"CarnageVision/cliente/internal/render"
	"CarnageVision/shared/mapdata"
	"CarnageVision/shared/util"

	"github.com/go-gl/mathgl/mgl32"
)

// SheetOptions controla o empacotamento do spritesheet.
type SheetOptions struct {
	PageSize int // lado da página em pixels
	Padding  int // espaço entre sprites
}

// DefaultSheetOptions retorna páginas de 256x256 com 1 pixel de borda.
func DefaultSheetOptions() SheetOptions {
	return SheetOptions{PageSize: 256, Padding: 1}
}

type sheetEntry struct {
	page int
	rect image.Rectangle
	kind mapdata.SpriteType
	n    int // índice dentro do tipo
}

// Spritesheet guarda a posição de cada sprite do estilo nas páginas registradas.
type Spritesheet struct {
	opts    SheetOptions
	entries []sheetEntry
	pages   []gpu.TextureID
}

// BuildSpritesheet empacota os sprites do estilo em prateleiras, desenha cada página
// e registra as páginas no registro de texturas.
func BuildSpritesheet(style *mapdata.StyleData, reg *TextureRegistry, opts SheetOptions) (*Spritesheet, error) {
	if opts.PageSize <= 0 {
		opts = DefaultSheetOptions()
	}
	sheet := &Spritesheet{opts: opts, entries: make([]sheetEntry, len(style.Sprites))}

	var index int
	for t := mapdata.SpriteType(0); t < mapdata.SpriteTypeCount; t++ {
		for n := 0; n < style.SpriteNumbers[t]; n++ {
			sheet.entries[index].kind = t
			sheet.entries[index].n = n
			index++
		}
	}

	pageCount, err := sheet.pack(style.Sprites)
	if err != nil {
		return nil, err
	}

	images := make([]*image.RGBA, pageCount)
	for i := range images {
		images[i] = image.NewRGBA(image.Rect(0, 0, opts.PageSize, opts.PageSize))
	}
	for i, e := range sheet.entries {
		paintSprite(images[e.page], e, style.Sprites[i])
	}

	sheet.pages = make([]gpu.TextureID, pageCount)
	for i, img := range images {
		id, err := reg.Register(fmt.Sprintf("sprites/%d", i), img)
		if err != nil {
			return nil, fmt.Errorf("falha ao registrar página %d do spritesheet: %w", i, err)
		}
		sheet.pages[i] = id
	}

	log.Printf("[Assets] Spritesheet: %d sprites em %d página(s)", len(sheet.entries), pageCount)
	return sheet, nil
}

// pack distribui os sprites em prateleiras, dos mais altos para os mais baixos.
func (s *Spritesheet) pack(sprites []mapdata.SpriteStyle) (int, error) {
	if len(sprites) == 0 {
		return 0, nil
	}
	order := make([]int, len(sprites))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(sprites[b].Height, sprites[a].Height)
	})

	size, pad := s.opts.PageSize, s.opts.Padding
	page, x, y, shelf := 0, pad, pad, 0
	for _, i := range order {
		w, h := sprites[i].Width, sprites[i].Height
		if w <= 0 || h <= 0 || w+2*pad > size || h+2*pad > size {
			return 0, fmt.Errorf("sprite %d (%dx%d) não cabe na página de %d", i, w, h, size)
		}
		if x+w+pad > size {
			x, y = pad, y+shelf+pad
			shelf = 0
		}
		if y+h+pad > size {
			page++
			x, y, shelf = pad, pad, 0
		}
		s.entries[i].page = page
		s.entries[i].rect = image.Rect(x, y, x+w, y+h)
		x += w + pad
		shelf = max(shelf, h)
	}
	return page + 1, nil
}

// Frame implementa render.SpriteSource.
func (s *Spritesheet) Frame(index int) (render.SpriteFrame, bool) {
	if index < 0 || index >= len(s.entries) {
		return render.SpriteFrame{}, false
	}
	e := s.entries[index]
	inv := 1 / float32(s.opts.PageSize)
	r := e.rect
	return render.SpriteFrame{
		Texture: s.pages[e.page],
		UV0:     mgl32.Vec2{float32(r.Min.X) * inv, float32(r.Min.Y) * inv},
		UV1:     mgl32.Vec2{float32(r.Max.X) * inv, float32(r.Max.Y) * inv},
		Size:    mgl32.Vec2{float32(r.Dx()), float32(r.Dy())},
	}, true
}

// Pages retorna os IDs das páginas registradas.
func (s *Spritesheet) Pages() []gpu.TextureID {
	return s.pages
}

// Len retorna o número de sprites empacotados.
func (s *Spritesheet) Len() int {
	return len(s.entries)
}

// paintSprite desenha o sprite procedural: corpo na cor do estilo, borda escura
// e detalhes por tipo.
func paintSprite(img *image.RGBA, e sheetEntry, st mapdata.SpriteStyle) {
	body := toRGBA(st.Color)
	edge := shade(body, 0.55)
	r := e.rect
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if x == r.Min.X || y == r.Min.Y || x == r.Max.X-1 || y == r.Max.Y-1 {
				img.SetRGBA(x, y, edge)
			} else {
				img.SetRGBA(x, y, body)
			}
		}
	}

	switch e.kind {
	case mapdata.SpriteCar, mapdata.SpriteBus, mapdata.SpriteTank, mapdata.SpriteTram, mapdata.SpriteTrain:
		// para-brisa na frente, que fica na base do sprite (+Z sem rotação)
		glass := color.RGBA{R: 40, G: 60, B: 80, A: 255}
		fillRect(img, image.Rect(r.Min.X+2, r.Max.Y-r.Dy()/3, r.Max.X-2, r.Max.Y-r.Dy()/6), glass)
	case mapdata.SpritePed:
		paintPedFrame(img, r, e.n, edge)
	}
}

// paintPedFrame alterna a posição das pernas pelos quadros de caminhada.
// O quadro de nocaute deita o boneco.
func paintPedFrame(img *image.RGBA, r image.Rectangle, frame int, c color.RGBA) {
	head := image.Rect(r.Min.X+r.Dx()/3, r.Min.Y+2, r.Max.X-r.Dx()/3, r.Min.Y+r.Dy()/4)
	if frame == mapdata.PedFrameKnockedDown {
		fillRect(img, image.Rect(r.Min.X+2, r.Min.Y+r.Dy()/2-1, r.Max.X-2, r.Min.Y+r.Dy()/2+1), c)
		return
	}
	fillRect(img, head, c)
	stride := frame % 4
	if frame >= 4 {
		stride = 4 - stride
	}
	legY := r.Max.Y - 2 - stride
	fillRect(img, image.Rect(r.Min.X+2, legY, r.Min.X+r.Dx()/2-1, r.Max.Y-1), c)
	fillRect(img, image.Rect(r.Min.X+r.Dx()/2+1, r.Max.Y-2-(4-stride)/2, r.Max.X-2, r.Max.Y-1), c)
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func toRGBA(c uint32) color.RGBA {
	r, g, b, a := util.UnpackColor(c)
	return color.RGBA{R: r, G: g, B: b, A: a}
}

func shade(c color.RGBA, f float32) color.RGBA {
	return color.RGBA{
		R: uint8(float32(c.R) * f),
		G: uint8(float32(c.G) * f),
		B: uint8(float32(c.B) * f),
		A: c.A,
	}
}
