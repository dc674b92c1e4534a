package meshing

import (
	"CarnageVision/shared/mapdata"
	"CarnageVision/shared/util"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Cantos locais do tile na ordem de mapdata.CornerHeights: NW, NE, SE, SW.
var cornerOffsets = [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

const (
	cornerNW = 0
	cornerNE = 1
	cornerSE = 2
	cornerSW = 3
)

// sideEdge descreve uma face lateral: os dois cantos da aresta de cima (a à esquerda de
// quem olha a face) e a normal.
type sideEdge struct {
	a, b   int
	normal mgl32.Vec3
}

var sideEdges = [4]sideEdge{
	mapdata.FaceW: {a: cornerNW, b: cornerSW, normal: mgl32.Vec3{-1, 0, 0}},
	mapdata.FaceE: {a: cornerSE, b: cornerNE, normal: mgl32.Vec3{1, 0, 0}},
	mapdata.FaceN: {a: cornerNE, b: cornerNW, normal: mgl32.Vec3{0, 0, -1}},
	mapdata.FaceS: {a: cornerSW, b: cornerSE, normal: mgl32.Vec3{0, 0, 1}},
}

// UVs dos cantos em sentido horário a partir de NW, antes da rotação da tampa.
var lidRing = [4]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// BuildMapMesh gera a malha de uma camada para os tiles do retângulo.
// O retângulo é recortado aos limites do mapa; a saída é sempre reescrita.
func BuildMapMesh(src BlockSource, rect util.MapRectangle, layer int, out *MapMeshData) {
	out.SetNull()

	w, h, layers := src.Dimensions()
	if layer < 0 || layer >= layers {
		return
	}
	area := rect.Intersection(util.NewMapRectangle(0, 0, w, h))
	if area.IsNull() {
		return
	}

	lidBase := src.LidTextureBase()
	for y := area.Y; y < area.Y+area.H; y++ {
		for x := area.X; x < area.X+area.W; x++ {
			b := src.Block(x, y, layer)
			if b.IsEmpty() {
				continue
			}
			putBlock(out, b, x, y, layer, lidBase)
		}
	}
}

func putBlock(out *MapMeshData, b *mapdata.BlockStyle, x, y, z, lidBase int) {
	heights := mapdata.CornerHeights(b.SlopeType)
	origin := mgl32.Vec3{float32(x), float32(z), float32(y)}.Mul(util.BlockLength)

	var corners [4]mgl32.Vec3
	for i, off := range cornerOffsets {
		corners[i] = origin.Add(mgl32.Vec3{off[0], heights[i], off[1]}.Mul(util.BlockLength))
	}

	if b.HasFace(mapdata.FaceLid) {
		putLid(out, b, corners, float32(lidBase+int(b.Faces[mapdata.FaceLid])))
	}

	for face := mapdata.FaceW; face <= mapdata.FaceS; face++ {
		if !b.HasFace(face) {
			continue
		}
		e := sideEdges[face]
		ha, hb := heights[e.a], heights[e.b]
		if ha <= 0 && hb <= 0 {
			continue
		}

		u0, u1 := float32(0), float32(1)
		flip := b.FlipLeftRight
		if face == mapdata.FaceN || face == mapdata.FaceS {
			flip = b.FlipTopBottom
		}
		if flip {
			u0, u1 = u1, u0
		}

		layerTex := float32(b.Faces[face])
		topA, topB := corners[e.a], corners[e.b]
		bottomA := mgl32.Vec3{topA.X(), origin.Y(), topA.Z()}
		bottomB := mgl32.Vec3{topB.X(), origin.Y(), topB.Z()}

		// A textura não estica: o topo de uma parede inclinada corta a imagem
		out.addQuad([4]CityVertex3D{
			cityVertex(topA, e.normal, u0, 1-ha, layerTex),
			cityVertex(topB, e.normal, u1, 1-hb, layerTex),
			cityVertex(bottomA, e.normal, u0, 1, layerTex),
			cityVertex(bottomB, e.normal, u1, 1, layerTex),
		})
	}
}

// putLid emite a tampa com vértices NW, NE, SW, SE.
func putLid(out *MapMeshData, b *mapdata.BlockStyle, c [4]mgl32.Vec3, layerTex float32) {
	normal := mgl32.Vec3{0, 1, 0}
	if b.SlopeType != 0 {
		n := c[cornerSW].Sub(c[cornerNW]).Cross(c[cornerNE].Sub(c[cornerNW]))
		if n.Len() > 0 {
			normal = n.Normalize()
		}
	}

	rot := int(b.LidRotation) & 3
	uv := func(corner int) mgl32.Vec2 {
		return lidRing[(corner+4-rot)%4]
	}

	out.addQuad([4]CityVertex3D{
		cityVertex(c[cornerNW], normal, uv(cornerNW).X(), uv(cornerNW).Y(), layerTex),
		cityVertex(c[cornerNE], normal, uv(cornerNE).X(), uv(cornerNE).Y(), layerTex),
		cityVertex(c[cornerSW], normal, uv(cornerSW).X(), uv(cornerSW).Y(), layerTex),
		cityVertex(c[cornerSE], normal, uv(cornerSE).X(), uv(cornerSE).Y(), layerTex),
	})
}

func cityVertex(p, n mgl32.Vec3, u, v, layer float32) CityVertex3D {
	return CityVertex3D{
		Position: p,
		Normal:   n,
		Texcoord: mgl32.Vec3{u, math32.Max(v, 0), layer},
		Color:    util.ColorWhite,
	}
}
