package render

import (
	"fmt"

	"CarnageVision/cliente/internal/gpu"
	"CarnageVision/shared/util"

	"github.com/go-gl/mathgl/mgl32"
)

// DebugRenderer acumula linhas de diagnóstico durante o frame e as desenha no overlay.
// Usa o mesmo cache transitório dos sprites.
type DebugRenderer struct {
	device gpu.Device
	cache  *gpu.TransientVertexCache
	lines  []gpu.LineVertex
}

// NewDebugRenderer cria o renderizador de linhas.
func NewDebugRenderer(device gpu.Device, cache *gpu.TransientVertexCache) *DebugRenderer {
	return &DebugRenderer{device: device, cache: cache, lines: make([]gpu.LineVertex, 0, 1024)}
}

// DrawLine implementa DebugSink.
func (d *DebugRenderer) DrawLine(from, to mgl32.Vec3, color uint32) {
	d.lines = append(d.lines,
		gpu.LineVertex{Position: from, Color: color},
		gpu.LineVertex{Position: to, Color: color},
	)
}

// DrawRectangle contorna um retângulo de tiles na altura y.
func (d *DebugRenderer) DrawRectangle(rect util.MapRectangle, y float32, color uint32) {
	if rect.IsNull() {
		return
	}
	x0, z0 := float32(rect.X)*util.BlockLength, float32(rect.Y)*util.BlockLength
	x1, z1 := float32(rect.X+rect.W)*util.BlockLength, float32(rect.Y+rect.H)*util.BlockLength
	d.DrawLine(mgl32.Vec3{x0, y, z0}, mgl32.Vec3{x1, y, z0}, color)
	d.DrawLine(mgl32.Vec3{x1, y, z0}, mgl32.Vec3{x1, y, z1}, color)
	d.DrawLine(mgl32.Vec3{x1, y, z1}, mgl32.Vec3{x0, y, z1}, color)
	d.DrawLine(mgl32.Vec3{x0, y, z1}, mgl32.Vec3{x0, y, z0}, color)
}

// LineCount retorna quantas linhas estão pendentes.
func (d *DebugRenderer) LineCount() int {
	return len(d.lines) / 2
}

// Render envia as linhas pendentes. Não limpa a lista; isso é feito em Reset.
func (d *DebugRenderer) Render() error {
	if len(d.lines) == 0 {
		return nil
	}
	buf, err := d.cache.AllocVertex(gpu.AsBytes(d.lines))
	if err != nil {
		return fmt.Errorf("linhas de debug (%d): %w", d.LineCount(), err)
	}

	d.device.UseProgram(gpu.ProgramDebug)
	d.device.SetRenderStates(gpu.RenderStates{Blend: gpu.BlendNone, DepthTest: true})
	d.device.BindTexture(gpu.TextureUnit0, gpu.NoTexture)
	d.device.BindVertexBuffer(buf.Buffer, gpu.LineVertexFormat(buf.Offset))
	return d.device.Draw(gpu.PrimitiveLines, 0, len(d.lines))
}

// Reset descarta as linhas do frame.
func (d *DebugRenderer) Reset() {
	d.lines = d.lines[:0]
}
