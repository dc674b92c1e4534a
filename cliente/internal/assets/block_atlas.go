package assets

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"CarnageVision/shared/mapdata"
)

// BlockAtlasImage é a grade de texturas de bloco. A camada n ocupa a célula
// (n % Columns, n / Columns).
type BlockAtlasImage struct {
	Image    *image.RGBA
	Columns  int
	Rows     int
	TileSize int
	Layers   int
}

// Cell retorna o retângulo da camada no atlas.
func (a *BlockAtlasImage) Cell(layer int) image.Rectangle {
	x := (layer % a.Columns) * a.TileSize
	y := (layer / a.Columns) * a.TileSize
	return image.Rect(x, y, x+a.TileSize, y+a.TileSize)
}

// Os padrões dividem o tile em oitavos.
const minTileSize = 8

var (
	colAsphalt  = color.RGBA{R: 60, G: 60, B: 64, A: 255}
	colLine     = color.RGBA{R: 230, G: 210, B: 60, A: 255}
	colPavement = color.RGBA{R: 150, G: 148, B: 140, A: 255}
	colGrass    = color.RGBA{R: 70, G: 140, B: 60, A: 255}
	colRoof     = color.RGBA{R: 110, G: 100, B: 95, A: 255}
	colWater    = color.RGBA{R: 40, G: 90, B: 170, A: 255}
	colBrick    = color.RGBA{R: 150, G: 70, B: 50, A: 255}
	colConcrete = color.RGBA{R: 170, G: 170, B: 165, A: 255}
	colGlass    = color.RGBA{R: 90, G: 140, B: 180, A: 255}
	colMissing  = color.RGBA{R: 255, G: 0, B: 255, A: 255}
)

// BuildBlockAtlas desenha as texturas de bloco do estilo numa grade quadrada.
// Camadas 1..side-1 são laterais; side+1..side+lid-1 são tampas.
func BuildBlockAtlas(style *mapdata.StyleData, tileSize int) (*BlockAtlasImage, error) {
	layers := style.BlockTexturesCount()
	if layers == 0 {
		return nil, fmt.Errorf("estilo sem texturas de bloco")
	}
	if tileSize < minTileSize {
		return nil, fmt.Errorf("tamanho de tile inválido: %d (mínimo %d)", tileSize, minTileSize)
	}
	cols := int(math.Ceil(math.Sqrt(float64(layers))))
	rows := (layers + cols - 1) / cols

	atlas := &BlockAtlasImage{
		Image:    image.NewRGBA(image.Rect(0, 0, cols*tileSize, rows*tileSize)),
		Columns:  cols,
		Rows:     rows,
		TileSize: tileSize,
		Layers:   layers,
	}
	for layer := 0; layer < layers; layer++ {
		cell := atlas.Cell(layer)
		switch {
		case layer > 0 && layer < style.SideTexturesCount:
			paintSide(atlas.Image, cell, uint8(layer))
		case layer > style.SideTexturesCount && layer < style.SideTexturesCount+style.LidTexturesCount:
			paintLid(atlas.Image, cell, uint8(layer-style.SideTexturesCount))
		default:
			fillRect(atlas.Image, cell, colMissing)
		}
	}
	return atlas, nil
}

func paintSide(img *image.RGBA, r image.Rectangle, face uint8) {
	ts := r.Dx()
	switch face {
	case mapdata.SideBrick:
		fillRect(img, r, colBrick)
		mortar := shade(colBrick, 0.6)
		for row := 0; row < ts; row += ts / 8 {
			fillRect(img, image.Rect(r.Min.X, r.Min.Y+row, r.Max.X, r.Min.Y+row+1), mortar)
			off := 0
			if (row/(ts/8))%2 == 1 {
				off = ts / 8
			}
			for col := off; col < ts; col += ts / 4 {
				fillRect(img, image.Rect(r.Min.X+col, r.Min.Y+row, r.Min.X+col+1, r.Min.Y+row+ts/8), mortar)
			}
		}
	case mapdata.SideConcrete, mapdata.SideCurb:
		fillRect(img, r, colConcrete)
		fillRect(img, image.Rect(r.Min.X, r.Max.Y-ts/8, r.Max.X, r.Max.Y), shade(colConcrete, 0.7))
	case mapdata.SideGlass:
		fillRect(img, r, colConcrete)
		windows(img, r, colGlass)
	case mapdata.SideShopfront:
		fillRect(img, r, colBrick)
		fillRect(img, image.Rect(r.Min.X+2, r.Min.Y+ts/3, r.Max.X-2, r.Max.Y-2), colGlass)
	case mapdata.SideRamp:
		fillRect(img, r, shade(colConcrete, 0.8))
	default:
		fillRect(img, r, colMissing)
	}
}

func paintLid(img *image.RGBA, r image.Rectangle, face uint8) {
	ts := r.Dx()
	switch face {
	case mapdata.LidRoad:
		fillRect(img, r, colAsphalt)
	case mapdata.LidRoadLine:
		fillRect(img, r, colAsphalt)
		// faixa tracejada no eixo V, girada pela rotação da tampa
		for y := 0; y < ts; y += ts / 2 {
			fillRect(img, image.Rect(r.Min.X+ts/2-1, r.Min.Y+y, r.Min.X+ts/2+1, r.Min.Y+y+ts/4), colLine)
		}
	case mapdata.LidPavement:
		fillRect(img, r, colPavement)
		grid := shade(colPavement, 0.8)
		fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), grid)
		fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), grid)
	case mapdata.LidGrass:
		fillRect(img, r, colGrass)
		for i := 0; i < ts; i += 3 {
			img.SetRGBA(r.Min.X+(i*7)%ts, r.Min.Y+(i*5)%ts, shade(colGrass, 0.7))
		}
	case mapdata.LidRoof:
		fillRect(img, r, colRoof)
	case mapdata.LidRoofVent:
		fillRect(img, r, colRoof)
		fillRect(img, image.Rect(r.Min.X+ts/4, r.Min.Y+ts/4, r.Max.X-ts/4, r.Max.Y-ts/4), shade(colRoof, 0.5))
	case mapdata.LidWater:
		fillRect(img, r, colWater)
	case mapdata.LidRamp:
		fillRect(img, r, colAsphalt)
		for y := 0; y < ts; y += ts / 4 {
			fillRect(img, image.Rect(r.Min.X, r.Min.Y+y, r.Max.X, r.Min.Y+y+1), shade(colAsphalt, 1.4))
		}
	default:
		fillRect(img, r, colMissing)
	}
}

func windows(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	ts := r.Dx()
	step := ts / 4
	for y := step / 2; y+step/2 <= ts; y += step {
		for x := step / 4; x+step/2 <= ts; x += step {
			fillRect(img, image.Rect(r.Min.X+x, r.Min.Y+y, r.Min.X+x+step/2, r.Min.Y+y+step/2), c)
		}
	}
}
