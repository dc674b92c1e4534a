package meshing

import (
	"fmt"
	"log"

	"CarnageVision/cliente/internal/gpu"
	"CarnageVision/shared/util"

	"golang.org/x/sync/errgroup"
)

// Options configura a janela de malha em cache.
type Options struct {
	ViewBlocks  int // lado da janela visível, em tiles
	CacheBlocks int // lado da janela gerada, em tiles
	Threads     int // camadas geradas em paralelo
}

// DefaultOptions retorna os valores padrão.
func DefaultOptions() Options {
	return Options{ViewBlocks: 14, CacheBlocks: 32, Threads: 4}
}

// LayerRange localiza uma camada dentro dos buffers estáticos.
// IndexOffset é em bytes; os índices são relativos a BaseVertex.
type LayerRange struct {
	BaseVertex  int
	IndexOffset int
	VertexCount int
	IndexCount  int
}

// MeshCache mantém a malha da cidade ao redor da câmera.
// A malha só é refeita quando a janela visível sai do retângulo em cache.
type MeshCache struct {
	device gpu.Device
	source BlockSource
	opts   Options

	rect      util.MapRectangle // sem recorte, para o teste de contenção
	fullBuilt bool
	layers    [MapLayersCount]MapMeshData
	ranges    [MapLayersCount]LayerRange

	vb, ib   gpu.BufferID
	rebuilds int
}

// NewMeshCache cria o cache. Os buffers só existem após Init.
func NewMeshCache(device gpu.Device, source BlockSource, opts Options) *MeshCache {
	if opts.ViewBlocks <= 0 {
		opts.ViewBlocks = DefaultOptions().ViewBlocks
	}
	if opts.CacheBlocks < opts.ViewBlocks {
		opts.CacheBlocks = opts.ViewBlocks
	}
	if opts.Threads <= 0 {
		opts.Threads = 1
	}
	return &MeshCache{device: device, source: source, opts: opts}
}

// Init cria os buffers estáticos de vértices e índices.
func (c *MeshCache) Init() error {
	vb, err := c.device.CreateBuffer(gpu.BufferVertex, gpu.UsageStatic, 0)
	if err != nil {
		return fmt.Errorf("falha ao criar buffer de vértices da cidade: %w", err)
	}
	ib, err := c.device.CreateBuffer(gpu.BufferIndex, gpu.UsageStatic, 0)
	if err != nil {
		c.device.DestroyBuffer(vb)
		return fmt.Errorf("falha ao criar buffer de índices da cidade: %w", err)
	}
	c.vb, c.ib = vb, ib
	return nil
}

// Release destrói os buffers e esquece a malha.
func (c *MeshCache) Release() {
	if c.vb != 0 {
		c.device.DestroyBuffer(c.vb)
	}
	if c.ib != 0 {
		c.device.DestroyBuffer(c.ib)
	}
	c.vb, c.ib = 0, 0
	c.Invalidate()
	for i := range c.layers {
		c.layers[i] = MapMeshData{}
	}
}

// Invalidate força a reconstrução no próximo Update.
func (c *MeshCache) Invalidate() {
	c.rect.SetNull()
	c.fullBuilt = false
	c.ranges = [MapLayersCount]LayerRange{}
}

// Update reconstrói a malha se a câmera saiu da área coberta.
func (c *MeshCache) Update(cameraTile util.TileCoord, fullMesh bool) (bool, error) {
	if fullMesh {
		if c.fullBuilt {
			return false, nil
		}
		w, h, _ := c.source.Dimensions()
		if err := c.rebuild(util.NewMapRectangle(0, 0, w, h)); err != nil {
			return false, err
		}
		c.fullBuilt = true
		return true, nil
	}

	view := util.CenteredRectangle(cameraTile, c.opts.ViewBlocks)
	if c.rect.Contains(view) {
		return false, nil
	}
	c.fullBuilt = false
	if err := c.rebuild(util.CenteredRectangle(cameraTile, c.opts.CacheBlocks)); err != nil {
		return false, err
	}
	return true, nil
}

func (c *MeshCache) rebuild(rect util.MapRectangle) error {
	_, _, layers := c.source.Dimensions()
	layers = min(layers, MapLayersCount)

	var g errgroup.Group
	g.SetLimit(c.opts.Threads)
	for z := 0; z < layers; z++ {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[PANIC] Erro ao gerar camada %d: %v", z, r)
					err = fmt.Errorf("pânico na camada %d: %v", z, r)
				}
			}()
			BuildMapMesh(c.source, rect, z, &c.layers[z])
			return nil
		})
	}
	for z := layers; z < MapLayersCount; z++ {
		c.layers[z].SetNull()
	}
	if err := g.Wait(); err != nil {
		c.Invalidate()
		return fmt.Errorf("falha ao gerar malha %s: %w", rect, err)
	}

	if err := c.commit(); err != nil {
		c.Invalidate()
		return err
	}
	c.rect = rect
	c.rebuilds++
	log.Printf("[MeshCache] Malha refeita em %s (%d vértices)", rect, c.VertexCount())
	return nil
}

// commit junta as camadas e substitui o conteúdo dos buffers estáticos.
func (c *MeshCache) commit() error {
	staging := getStaging()
	defer putStaging(staging)

	for i := range c.layers {
		l := &c.layers[i]
		c.ranges[i] = LayerRange{
			BaseVertex:  len(staging.vertices),
			IndexOffset: len(staging.indices) * gpu.SizeofDrawIndex,
			VertexCount: len(l.Vertices),
			IndexCount:  len(l.Indices),
		}
		staging.vertices = append(staging.vertices, l.Vertices...)
		staging.indices = append(staging.indices, l.Indices...)
	}

	if len(staging.vertices) == 0 || len(staging.indices) == 0 {
		return nil
	}

	vdata := gpu.AsBytes(staging.vertices)
	if err := c.device.SetupBuffer(c.vb, len(vdata), vdata); err != nil {
		return fmt.Errorf("falha ao enviar vértices da cidade: %w", err)
	}
	idata := gpu.AsBytes(staging.indices)
	if err := c.device.SetupBuffer(c.ib, len(idata), idata); err != nil {
		return fmt.Errorf("falha ao enviar índices da cidade: %w", err)
	}
	return nil
}

// Rebuilds retorna quantas vezes a malha foi refeita.
func (c *MeshCache) Rebuilds() int {
	return c.rebuilds
}

// Rect retorna o retângulo em cache (nulo se nada foi gerado).
func (c *MeshCache) Rect() util.MapRectangle {
	return c.rect
}

// Layer retorna a faixa da camada nos buffers estáticos.
func (c *MeshCache) Layer(i int) LayerRange {
	if i < 0 || i >= MapLayersCount {
		return LayerRange{}
	}
	return c.ranges[i]
}

// LayerMesh expõe a geometria da camada em memória.
func (c *MeshCache) LayerMesh(i int) *MapMeshData {
	return &c.layers[i]
}

// Buffers retorna os buffers estáticos de vértices e índices.
func (c *MeshCache) Buffers() (vb, ib gpu.BufferID) {
	return c.vb, c.ib
}

// VertexCount soma os vértices de todas as camadas.
func (c *MeshCache) VertexCount() int {
	n := 0
	for _, r := range c.ranges {
		n += r.VertexCount
	}
	return n
}
