// Package gputest fornece um gpu.Device em memória que grava as chamadas de desenho.
package gputest

import (
	"encoding/binary"
	"errors"
	"fmt"

	"CarnageVision/cliente/internal/gpu"
)

// Buffer é a cópia em memória de um buffer do dispositivo.
type Buffer struct {
	Kind   gpu.BufferKind
	Usage  gpu.BufferUsage
	Data   []byte
	Setups int // quantas vezes foi realocado
}

// DrawCall registra o estado ligado no momento de um desenho.
type DrawCall struct {
	Indexed      bool
	Primitive    gpu.Primitive
	Program      gpu.Program
	Texture      gpu.TextureID
	States       gpu.RenderStates
	VertexBuffer gpu.BufferID
	Format       gpu.VertexFormat
	IndexBuffer  gpu.BufferID
	IndexOffset  int
	IndexCount   int
	BaseVertex   int
	FirstVertex  int
	VertexCount  int

	// Cópias tiradas no momento do desenho (o cache transitório é descartado no fim do frame).
	IndexData  []uint32
	VertexData []byte
}

// Recorder implementa gpu.Device.
type Recorder struct {
	Buffers   map[gpu.BufferID]*Buffer
	Destroyed []gpu.BufferID
	Draws     []DrawCall

	// CreateErr, se definido, faz CreateBuffer falhar após CreateLimit buffers.
	CreateErr   error
	CreateLimit int

	nextID  gpu.BufferID
	program gpu.Program
	texture gpu.TextureID
	states  gpu.RenderStates
	vb      gpu.BufferID
	format  gpu.VertexFormat
	ib      gpu.BufferID
}

// New cria um dispositivo vazio.
func New() *Recorder {
	return &Recorder{Buffers: make(map[gpu.BufferID]*Buffer)}
}

// ResetDraws descarta as chamadas gravadas.
func (r *Recorder) ResetDraws() {
	r.Draws = r.Draws[:0]
}

func (r *Recorder) CreateBuffer(kind gpu.BufferKind, usage gpu.BufferUsage, size int) (gpu.BufferID, error) {
	if r.CreateErr != nil && len(r.Buffers) >= r.CreateLimit {
		return 0, r.CreateErr
	}
	r.nextID++
	r.Buffers[r.nextID] = &Buffer{Kind: kind, Usage: usage, Data: make([]byte, size)}
	return r.nextID, nil
}

func (r *Recorder) DestroyBuffer(id gpu.BufferID) {
	if _, ok := r.Buffers[id]; ok {
		delete(r.Buffers, id)
		r.Destroyed = append(r.Destroyed, id)
	}
}

func (r *Recorder) SetupBuffer(id gpu.BufferID, size int, data []byte) error {
	b, ok := r.Buffers[id]
	if !ok {
		return fmt.Errorf("buffer desconhecido: %d", id)
	}
	if data != nil && len(data) > size {
		return errors.New("dados maiores que o buffer")
	}
	b.Data = make([]byte, size)
	copy(b.Data, data)
	b.Setups++
	return nil
}

func (r *Recorder) SubData(id gpu.BufferID, offset int, data []byte) error {
	b, ok := r.Buffers[id]
	if !ok {
		return fmt.Errorf("buffer desconhecido: %d", id)
	}
	if offset < 0 || offset+len(data) > len(b.Data) {
		return fmt.Errorf("SubData fora dos limites: offset=%d len=%d size=%d", offset, len(data), len(b.Data))
	}
	copy(b.Data[offset:], data)
	return nil
}

func (r *Recorder) BindVertexBuffer(id gpu.BufferID, format gpu.VertexFormat) {
	r.vb, r.format = id, format
}

func (r *Recorder) BindIndexBuffer(id gpu.BufferID)                     { r.ib = id }
func (r *Recorder) BindTexture(unit gpu.TextureUnit, tex gpu.TextureID) { r.texture = tex }
func (r *Recorder) UseProgram(p gpu.Program)                            { r.program = p }
func (r *Recorder) SetRenderStates(rs gpu.RenderStates)                 { r.states = rs }

func (r *Recorder) DrawIndexed(prim gpu.Primitive, indexOffset, indexCount, baseVertex int) error {
	ib, ok := r.Buffers[r.ib]
	if !ok {
		return errors.New("nenhum buffer de índices ligado")
	}
	vb, ok := r.Buffers[r.vb]
	if !ok {
		return errors.New("nenhum buffer de vértices ligado")
	}
	if indexOffset < 0 || indexOffset+indexCount*gpu.SizeofDrawIndex > len(ib.Data) {
		return fmt.Errorf("índices fora do buffer: offset=%d count=%d", indexOffset, indexCount)
	}
	indices := make([]uint32, indexCount)
	for i := range indices {
		indices[i] = binary.LittleEndian.Uint32(ib.Data[indexOffset+i*gpu.SizeofDrawIndex:])
	}
	r.Draws = append(r.Draws, DrawCall{
		Indexed: true, Primitive: prim, Program: r.program, Texture: r.texture, States: r.states,
		VertexBuffer: r.vb, Format: r.format, IndexBuffer: r.ib,
		IndexOffset: indexOffset, IndexCount: indexCount, BaseVertex: baseVertex,
		IndexData: indices, VertexData: append([]byte(nil), vb.Data...),
	})
	return nil
}

func (r *Recorder) Draw(prim gpu.Primitive, firstVertex, vertexCount int) error {
	vb, ok := r.Buffers[r.vb]
	if !ok {
		return errors.New("nenhum buffer de vértices ligado")
	}
	r.Draws = append(r.Draws, DrawCall{
		Primitive: prim, Program: r.program, Texture: r.texture, States: r.states,
		VertexBuffer: r.vb, Format: r.format, FirstVertex: firstVertex, VertexCount: vertexCount,
		VertexData: append([]byte(nil), vb.Data...),
	})
	return nil
}

// SpriteVertices decodifica os vértices de sprite de uma chamada, a partir do BaseOffset.
func SpriteVertices(d DrawCall, count int) []gpu.SpriteVertex3D {
	out := make([]gpu.SpriteVertex3D, count)
	raw := gpu.AsBytes(out)
	copy(raw, d.VertexData[d.Format.BaseOffset:])
	return out
}

// DrawsWith filtra as chamadas de um programa.
func (r *Recorder) DrawsWith(p gpu.Program) []DrawCall {
	var out []DrawCall
	for _, d := range r.Draws {
		if d.Program == p {
			out = append(out, d)
		}
	}
	return out
}

var _ gpu.Device = (*Recorder)(nil)
