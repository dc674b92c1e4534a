// Package rldevice implementa gpu.Device sobre a raylib.
//
// A raylib só desenha malhas com índices de 16 bits, então as faixas indexadas são
// expandidas para malhas sem índice. Faixas de buffers estáticos ficam em cache até o
// buffer ser realocado; faixas de buffers dinâmicos são enviadas e liberadas a cada desenho.
package rldevice

/*
#include <stdlib.h>
*/
import "C"

import (
	"encoding/binary"
	"fmt"
	"image"
	"log"
	"math"
	"unsafe"

	"CarnageVision/cliente/internal/gpu"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type buffer struct {
	kind       gpu.BufferKind
	usage      gpu.BufferUsage
	data       []byte
	generation uint64
}

type meshKey struct {
	vb, ib      gpu.BufferID
	vgen, igen  uint64
	baseOffset  int
	indexOffset int
	indexCount  int
	baseVertex  int
	program     gpu.Program
	atlasGen    uint64
}

// BlockAtlas descreve como a camada de textura (texcoord.z) vira uma célula do atlas.
type BlockAtlas struct {
	Texture gpu.TextureID
	Columns int
	Rows    int
}

// Device é o dispositivo raylib. Precisa de uma janela aberta (rl.InitWindow).
type Device struct {
	buffers map[gpu.BufferID]*buffer
	nextID  gpu.BufferID

	textures map[gpu.TextureID]rl.Texture2D
	atlas    BlockAtlas
	atlasGen uint64

	shaders  map[gpu.Program]rl.Shader
	material rl.Material
	white    rl.Texture2D
	static   map[meshKey]rl.Mesh

	program     gpu.Program
	texture     gpu.TextureID
	vb          gpu.BufferID
	format      gpu.VertexFormat
	ib          gpu.BufferID
	blendActive bool
}

// New cria o dispositivo e compila os shaders.
func New() *Device {
	d := &Device{
		buffers:  make(map[gpu.BufferID]*buffer),
		textures: make(map[gpu.TextureID]rl.Texture2D),
		shaders:  make(map[gpu.Program]rl.Shader),
		static:   make(map[meshKey]rl.Mesh),
		material: rl.LoadMaterialDefault(),
	}
	if rl.IsWindowReady() {
		d.shaders[gpu.ProgramCity] = rl.LoadShaderFromMemory(cityVertexShader, cityFragmentShader)
		d.shaders[gpu.ProgramSprites] = rl.LoadShaderFromMemory(spriteVertexShader, spriteFragmentShader)

		img := rl.GenImageColor(1, 1, rl.White)
		d.white = rl.LoadTextureFromImage(img)
		rl.UnloadImage(img)
	}
	log.Printf("[RLDevice] Dispositivo inicializado (%d shaders)", len(d.shaders))
	return d
}

// Close libera malhas, texturas e shaders.
func (d *Device) Close() {
	for k, m := range d.static {
		rl.UnloadMesh(&m)
		delete(d.static, k)
	}
	for id, tex := range d.textures {
		rl.UnloadTexture(tex)
		delete(d.textures, id)
	}
	if d.white.ID != 0 {
		rl.UnloadTexture(d.white)
	}
	for p, s := range d.shaders {
		rl.UnloadShader(s)
		delete(d.shaders, p)
	}
}

// UploadTexture envia uma imagem RGBA e a associa ao ID estável.
func (d *Device) UploadTexture(id gpu.TextureID, img *image.RGBA) {
	if old, ok := d.textures[id]; ok {
		rl.UnloadTexture(old)
	}
	rlImg := rl.NewImageFromImage(img)
	tex := rl.LoadTextureFromImage(rlImg)
	rl.UnloadImage(rlImg)
	rl.SetTextureFilter(tex, rl.FilterPoint)
	d.textures[id] = tex
	log.Printf("[RLDevice] Textura %d enviada (%dx%d)", id, tex.Width, tex.Height)
}

// SetBlockAtlas define o atlas usado pelo programa da cidade.
func (d *Device) SetBlockAtlas(atlas BlockAtlas) {
	d.atlas = atlas
	d.atlasGen++
}

func (d *Device) CreateBuffer(kind gpu.BufferKind, usage gpu.BufferUsage, size int) (gpu.BufferID, error) {
	if size < 0 {
		return 0, fmt.Errorf("tamanho de buffer inválido: %d", size)
	}
	d.nextID++
	d.buffers[d.nextID] = &buffer{kind: kind, usage: usage, data: make([]byte, size)}
	return d.nextID, nil
}

func (d *Device) DestroyBuffer(id gpu.BufferID) {
	d.dropStatic(id)
	delete(d.buffers, id)
}

func (d *Device) SetupBuffer(id gpu.BufferID, size int, data []byte) error {
	b, ok := d.buffers[id]
	if !ok {
		return fmt.Errorf("buffer desconhecido: %d", id)
	}
	if len(data) > size {
		return fmt.Errorf("dados (%d) maiores que o buffer (%d)", len(data), size)
	}
	if cap(b.data) >= size {
		b.data = b.data[:size]
		clear(b.data)
	} else {
		b.data = make([]byte, size)
	}
	copy(b.data, data)
	b.generation++
	d.dropStatic(id)
	return nil
}

func (d *Device) SubData(id gpu.BufferID, offset int, data []byte) error {
	b, ok := d.buffers[id]
	if !ok {
		return fmt.Errorf("buffer desconhecido: %d", id)
	}
	if offset < 0 || offset+len(data) > len(b.data) {
		return fmt.Errorf("SubData fora dos limites: offset=%d len=%d size=%d", offset, len(data), len(b.data))
	}
	copy(b.data[offset:], data)
	b.generation++
	return nil
}

// dropStatic descarta as malhas em cache que leem o buffer.
func (d *Device) dropStatic(id gpu.BufferID) {
	for k, m := range d.static {
		if k.vb == id || k.ib == id {
			rl.UnloadMesh(&m)
			delete(d.static, k)
		}
	}
}

func (d *Device) BindVertexBuffer(id gpu.BufferID, format gpu.VertexFormat) {
	d.vb, d.format = id, format
}

func (d *Device) BindIndexBuffer(id gpu.BufferID) {
	d.ib = id
}

func (d *Device) BindTexture(unit gpu.TextureUnit, tex gpu.TextureID) {
	d.texture = tex
}

func (d *Device) UseProgram(p gpu.Program) {
	d.program = p
}

func (d *Device) SetRenderStates(rs gpu.RenderStates) {
	// Linhas imediatas pendentes precisam sair com os estados antigos
	rl.DrawRenderBatchActive()

	if d.blendActive {
		rl.EndBlendMode()
		d.blendActive = false
	}
	switch rs.Blend {
	case gpu.BlendAlpha:
		rl.BeginBlendMode(rl.BlendAlpha)
		d.blendActive = true
	case gpu.BlendAdditive:
		rl.BeginBlendMode(rl.BlendAdditive)
		d.blendActive = true
	}

	if rs.FaceCulling {
		rl.EnableBackfaceCulling()
	} else {
		rl.DisableBackfaceCulling()
	}
	if rs.DepthTest {
		rl.EnableDepthTest()
	} else {
		rl.DisableDepthTest()
	}
	if rs.DepthWrite {
		rl.EnableDepthMask()
	} else {
		rl.DisableDepthMask()
	}
}

func (d *Device) DrawIndexed(prim gpu.Primitive, indexOffset, indexCount, baseVertex int) error {
	if prim != gpu.PrimitiveTriangles {
		return fmt.Errorf("primitiva indexada não suportada: %d", prim)
	}
	if indexCount == 0 {
		return nil
	}
	vb, ok := d.buffers[d.vb]
	if !ok {
		return fmt.Errorf("nenhum buffer de vértices ligado")
	}
	ib, ok := d.buffers[d.ib]
	if !ok {
		return fmt.Errorf("nenhum buffer de índices ligado")
	}

	key := meshKey{
		vb: d.vb, ib: d.ib, vgen: vb.generation, igen: ib.generation,
		baseOffset: d.format.BaseOffset, indexOffset: indexOffset, indexCount: indexCount,
		baseVertex: baseVertex, program: d.program, atlasGen: d.atlasGen,
	}
	cacheable := vb.usage == gpu.UsageStatic && ib.usage == gpu.UsageStatic

	mesh, cached := d.static[key]
	if !cached {
		var err error
		mesh, err = d.expand(vb.data, ib.data, indexOffset, indexCount, baseVertex)
		if err != nil {
			return err
		}
		rl.UploadMesh(&mesh, false)
		if cacheable {
			d.static[key] = mesh
		}
	}

	d.bindMaterial()
	rl.DrawMesh(mesh, d.material, rl.MatrixIdentity())

	if !cacheable {
		rl.UnloadMesh(&mesh)
	}
	return nil
}

func (d *Device) Draw(prim gpu.Primitive, firstVertex, vertexCount int) error {
	if prim != gpu.PrimitiveLines {
		return fmt.Errorf("desenho sem índices só suporta linhas")
	}
	vb, ok := d.buffers[d.vb]
	if !ok {
		return fmt.Errorf("nenhum buffer de vértices ligado")
	}
	f := d.format
	pos, _ := f.Attribute(gpu.SemanticPosition)
	col, hasColor := f.Attribute(gpu.SemanticColor)
	end := f.BaseOffset + (firstVertex+vertexCount)*f.Stride
	if end > len(vb.data) {
		return fmt.Errorf("vértices fora do buffer: %d > %d", end, len(vb.data))
	}

	for i := firstVertex; i+1 < firstVertex+vertexCount; i += 2 {
		a := f.BaseOffset + i*f.Stride
		b := a + f.Stride
		color := rl.White
		if hasColor {
			c := vb.data[a+col.Offset:]
			color = rl.NewColor(c[0], c[1], c[2], c[3])
		}
		rl.DrawLine3D(readVec3(vb.data[a+pos.Offset:]), readVec3(vb.data[b+pos.Offset:]), color)
	}
	return nil
}

func (d *Device) bindMaterial() {
	if shader, ok := d.shaders[d.program]; ok && shader.ID != 0 {
		d.material.Shader = shader
	}
	tex, ok := d.textures[d.texture]
	if !ok {
		tex = d.white
	}
	rl.SetMaterialTexture(&d.material, rl.MapDiffuse, tex)
}

func readFloat(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func readVec3(b []byte) rl.Vector3 {
	return rl.Vector3{X: readFloat(b), Y: readFloat(b[4:]), Z: readFloat(b[8:])}
}

// expand monta uma malha sem índices a partir de uma faixa indexada.
func (d *Device) expand(vdata, idata []byte, indexOffset, indexCount, baseVertex int) (rl.Mesh, error) {
	f := d.format
	if indexOffset < 0 || indexOffset+indexCount*gpu.SizeofDrawIndex > len(idata) {
		return rl.Mesh{}, fmt.Errorf("índices fora do buffer: offset=%d count=%d", indexOffset, indexCount)
	}
	pos, ok := f.Attribute(gpu.SemanticPosition)
	if !ok {
		return rl.Mesh{}, fmt.Errorf("formato sem posição")
	}
	tc, hasTC := f.Attribute(gpu.SemanticTexcoord)
	nrm, hasNormal := f.Attribute(gpu.SemanticNormal)
	col, hasColor := f.Attribute(gpu.SemanticColor)
	useAtlas := hasTC && tc.Type == gpu.AttrFloat3 && d.atlas.Columns > 0 && d.atlas.Rows > 0

	vertices := make([]float32, 0, indexCount*3)
	texcoords := make([]float32, 0, indexCount*2)
	normals := make([]float32, 0, indexCount*3)
	colors := make([]uint8, 0, indexCount*4)

	maxVertex := (len(vdata) - f.BaseOffset) / f.Stride
	for i := 0; i < indexCount; i++ {
		idx := int(binary.LittleEndian.Uint32(idata[indexOffset+i*gpu.SizeofDrawIndex:])) + baseVertex
		if idx < 0 || idx >= maxVertex {
			return rl.Mesh{}, fmt.Errorf("índice %d fora dos %d vértices", idx, maxVertex)
		}
		v := vdata[f.BaseOffset+idx*f.Stride:]

		p := readVec3(v[pos.Offset:])
		vertices = append(vertices, p.X, p.Y, p.Z)

		if hasTC {
			u, w := readFloat(v[tc.Offset:]), readFloat(v[tc.Offset+4:])
			if useAtlas {
				layer := int(readFloat(v[tc.Offset+8:]))
				colIdx := layer % d.atlas.Columns
				rowIdx := layer / d.atlas.Columns
				u = (float32(colIdx) + u) / float32(d.atlas.Columns)
				w = (float32(rowIdx) + w) / float32(d.atlas.Rows)
			}
			texcoords = append(texcoords, u, w)
		}
		if hasNormal {
			n := readVec3(v[nrm.Offset:])
			normals = append(normals, n.X, n.Y, n.Z)
		}
		if hasColor {
			colors = append(colors, v[col.Offset:col.Offset+4]...)
		} else {
			colors = append(colors, 255, 255, 255, 255)
		}
	}

	var mesh rl.Mesh
	mesh.VertexCount = int32(indexCount)
	mesh.TriangleCount = int32(indexCount / 3)
	mesh.Vertices = (*float32)(copyToC(unsafe.Pointer(&vertices[0]), len(vertices)*4))
	if len(texcoords) > 0 {
		mesh.Texcoords = (*float32)(copyToC(unsafe.Pointer(&texcoords[0]), len(texcoords)*4))
	}
	if len(normals) > 0 {
		mesh.Normals = (*float32)(copyToC(unsafe.Pointer(&normals[0]), len(normals)*4))
	}
	mesh.Colors = (*uint8)(copyToC(unsafe.Pointer(&colors[0]), len(colors)))
	return mesh, nil
}

// copyToC copia para memória C; rl.UnloadMesh libera com free.
func copyToC(data unsafe.Pointer, size int) unsafe.Pointer {
	if size <= 0 || data == nil {
		return nil
	}
	ptr := C.malloc(C.size_t(size))
	if ptr == nil {
		return nil
	}
	copy(unsafe.Slice((*byte)(ptr), size), unsafe.Slice((*byte)(data), size))
	return ptr
}

var _ gpu.Device = (*Device)(nil)
