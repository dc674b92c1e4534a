package render

import (
	"cmp"
	"slices"

	"CarnageVision/cliente/internal/gpu"
	"CarnageVision/shared/util"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	NumVerticesPerSprite = 4
	NumIndicesPerSprite  = 6

	// rotationThreshold evita girar sprites praticamente alinhados aos eixos.
	rotationThreshold = 0.01
)

// DrawSpriteBatch é uma sequência contígua de sprites com a mesma textura.
type DrawSpriteBatch struct {
	FirstVertex int
	VertexCount int
	FirstIndex  int
	IndexCount  int
	Texture     gpu.TextureID
}

// SortDrawSprites ordena por textura preservando a ordem de chegada dos empates.
func SortDrawSprites(list []DrawSpriteRec) {
	slices.SortStableFunc(list, func(a, b DrawSpriteRec) int {
		return cmp.Compare(a.Texture, b.Texture)
	})
}

// SpriteBatchBuilder guarda os buffers de rascunho dos sprites do frame.
type SpriteBatchBuilder struct {
	Vertices []gpu.SpriteVertex3D
	Indices  []gpu.DrawIndex
	Batches  []DrawSpriteBatch
}

// Reset esvazia os buffers mantendo a memória.
func (b *SpriteBatchBuilder) Reset() {
	b.Vertices = b.Vertices[:0]
	b.Indices = b.Indices[:0]
	b.Batches = b.Batches[:0]
}

// Build gera vértices, índices e lotes a partir de uma lista já ordenada.
func (b *SpriteBatchBuilder) Build(list []DrawSpriteRec) {
	b.Reset()
	if len(list) == 0 {
		return
	}
	b.Vertices = slices.Grow(b.Vertices, len(list)*NumVerticesPerSprite)
	b.Indices = slices.Grow(b.Indices, len(list)*NumIndicesPerSprite)

	var current *DrawSpriteBatch
	for i := range list {
		sprite := &list[i]
		if current == nil || sprite.Texture != current.Texture {
			b.Batches = append(b.Batches, DrawSpriteBatch{
				FirstVertex: len(b.Vertices),
				FirstIndex:  len(b.Indices),
				Texture:     sprite.Texture,
			})
			current = &b.Batches[len(b.Batches)-1]
		}
		current.VertexCount += NumVerticesPerSprite
		current.IndexCount += NumIndicesPerSprite

		b.appendQuad(sprite)
	}
}

func (b *SpriteBatchBuilder) appendQuad(sprite *DrawSpriteRec) {
	px, py, pz := sprite.Position.X(), sprite.Position.Y(), sprite.Position.Z()
	x0 := px + sprite.CenterOffset.X()
	z0 := pz + sprite.CenterOffset.Y()
	x1 := px + sprite.Size.X() + sprite.CenterOffset.X()
	z1 := pz + sprite.Size.Y() + sprite.CenterOffset.Y()

	corners := [NumVerticesPerSprite]mgl32.Vec2{{x0, z0}, {x1, z0}, {x0, z1}, {x1, z1}}
	uvs := [NumVerticesPerSprite]mgl32.Vec2{
		sprite.UV0,
		{sprite.UV1.X(), sprite.UV0.Y()},
		{sprite.UV0.X(), sprite.UV1.Y()},
		sprite.UV1,
	}

	if math32.Abs(sprite.Rotation) > rotationThreshold {
		center := mgl32.Vec2{px, pz}
		for i := range corners {
			corners[i] = util.RotateAround(corners[i], center, sprite.Rotation)
		}
	}

	first := gpu.DrawIndex(len(b.Vertices))
	for i, c := range corners {
		b.Vertices = append(b.Vertices, gpu.SpriteVertex3D{
			Position: mgl32.Vec3{c.X(), py, c.Y()},
			Texcoord: uvs[i],
			Color:    util.ColorWhite,
		})
	}
	b.Indices = append(b.Indices, first, first+1, first+2, first+1, first+2, first+3)
}
