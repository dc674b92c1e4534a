package render

import (
	"errors"
	"fmt"
	"log"

	"CarnageVision/cliente/internal/gpu"
	"CarnageVision/cliente/internal/meshing"
	"CarnageVision/shared/config"
	"CarnageVision/shared/mapdata"
	"CarnageVision/shared/util"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrNotInitialized é retornado por RenderFrame antes de Initialize.
var ErrNotInitialized = errors.New("renderizador da cidade não inicializado")

// FrameState é a etapa atual do frame.
type FrameState int

const (
	StateIdle FrameState = iota
	StateMeshCheck
	StateCollecting
	StateSorting
	StateBatching
	StateDrawingDynamic
	StateDrawingStatic
	StateOverlay
	StateReset
)

var frameStateNames = [...]string{
	"idle", "mesh_check", "collecting", "sorting", "batching",
	"drawing_dynamic", "drawing_static", "overlay", "reset",
}

func (s FrameState) String() string {
	if s >= 0 && int(s) < len(frameStateNames) {
		return frameStateNames[s]
	}
	return fmt.Sprintf("FrameState(%d)", int(s))
}

// FrameStats resume um frame.
type FrameStats struct {
	States    []FrameState
	Rebuilt   bool
	Sprites   int
	Missing   int // entidades sem sprite
	Batches   int
	MeshDraws int // camadas estáticas desenhadas
	Lines     int
	Cache     gpu.CacheStats
	Skipped   []string
}

// Flags são os controles de debug lidos a cada frame.
type Flags struct {
	FullMapMesh     bool
	DrawMapLayers   [meshing.MapLayersCount]bool
	DebugFootprints bool
	DebugCacheRect  bool
}

// DefaultFlags desenha todas as camadas.
func DefaultFlags() Flags {
	f := Flags{}
	for i := range f.DrawMapLayers {
		f.DrawMapLayers[i] = true
	}
	return f
}

// FlagsFromConfig lê os controles iniciais da configuração.
func FlagsFromConfig(cfg *config.Config) Flags {
	return Flags{
		FullMapMesh:     cfg.FullMapMesh,
		DrawMapLayers:   cfg.DrawMapLayers,
		DebugFootprints: cfg.ShowDebugFootprints,
	}
}

// Options configura o renderizador.
type Options struct {
	Mesh            meshing.Options
	DrawOrder       string
	SpriteBlending  bool
	VertexCachePage int
	VertexCacheMax  int
}

// DefaultOptions retorna os valores padrão.
func DefaultOptions() Options {
	return Options{
		Mesh:            meshing.DefaultOptions(),
		DrawOrder:       config.DrawOrderDynamicFirst,
		SpriteBlending:  true,
		VertexCachePage: 1024 * 1024,
		VertexCacheMax:  8,
	}
}

// OptionsFromConfig monta as opções a partir da configuração.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Mesh: meshing.Options{
			ViewBlocks:  cfg.ViewBlocks,
			CacheBlocks: cfg.CacheBlocks,
			Threads:     cfg.MesherThreads,
		},
		DrawOrder:       cfg.DrawOrder,
		SpriteBlending:  cfg.SpriteBlending,
		VertexCachePage: cfg.VertexCachePage,
		VertexCacheMax:  cfg.VertexCacheMax,
	}
}

// CameraSource fornece a posição da câmera no mundo.
type CameraSource interface {
	Position() mgl32.Vec3
}

var cacheRectColor = util.PackColor(0, 255, 255, 255)

// CityRenderer desenha a malha da cidade e os sprites das entidades.
type CityRenderer struct {
	Flags Flags

	device   gpu.Device
	city     CityMap
	entities Entities
	camera   CameraSource
	opts     Options

	meshCache   *meshing.MeshCache
	vertexCache *gpu.TransientVertexCache
	debug       *DebugRenderer

	collector    SpriteCollector
	batcher      SpriteBatchBuilder
	sprites      []DrawSpriteRec
	blockTexture gpu.TextureID

	state       FrameState
	initialized bool
	frames      uint64
}

// NewCityRenderer cria o renderizador. Nenhum recurso de GPU é criado antes de Initialize.
func NewCityRenderer(device gpu.Device, city CityMap, style *mapdata.StyleData, sprites SpriteSource,
	entities Entities, camera CameraSource, opts Options) *CityRenderer {
	r := &CityRenderer{
		Flags:    DefaultFlags(),
		device:   device,
		city:     city,
		entities: entities,
		camera:   camera,
		opts:     opts,
		sprites:  make([]DrawSpriteRec, 0, 2048),
	}
	r.collector = SpriteCollector{
		Style:   style,
		Sprites: sprites,
		Heights: HeightResolver{Terrain: city},
	}
	r.meshCache = meshing.NewMeshCache(device, city, opts.Mesh)
	r.vertexCache = gpu.NewTransientVertexCache(device, opts.VertexCachePage, opts.VertexCacheMax)
	r.debug = NewDebugRenderer(device, r.vertexCache)
	return r
}

// SetBlockTexture define a textura (atlas) da malha da cidade.
func (r *CityRenderer) SetBlockTexture(tex gpu.TextureID) {
	r.blockTexture = tex
}

// Initialize cria os buffers estáticos da cidade e o cache transitório.
func (r *CityRenderer) Initialize() error {
	if r.initialized {
		return nil
	}
	if err := r.meshCache.Init(); err != nil {
		return fmt.Errorf("falha ao inicializar malha da cidade: %w", err)
	}
	if err := r.vertexCache.Init(); err != nil {
		r.meshCache.Release()
		return fmt.Errorf("falha ao inicializar cache de sprites: %w", err)
	}
	r.initialized = true
	r.state = StateIdle
	log.Printf("[CityRenderer] Inicializado (view=%d cache=%d threads=%d ordem=%s)",
		r.opts.Mesh.ViewBlocks, r.opts.Mesh.CacheBlocks, r.opts.Mesh.Threads, r.opts.DrawOrder)
	return nil
}

// Deinit libera todos os recursos. Pode ser chamado mais de uma vez.
func (r *CityRenderer) Deinit() {
	if !r.initialized {
		return
	}
	r.vertexCache.Deinit()
	r.meshCache.Release()
	r.resetFrame()
	r.initialized = false
	log.Printf("[CityRenderer] Recursos liberados após %d frames", r.frames)
}

// InvalidateMapMesh força a reconstrução da malha no próximo frame.
func (r *CityRenderer) InvalidateMapMesh() {
	r.meshCache.Invalidate()
}

// State retorna a etapa atual (Idle fora de RenderFrame).
func (r *CityRenderer) State() FrameState {
	return r.state
}

// MeshRebuilds retorna quantas vezes a malha foi refeita.
func (r *CityRenderer) MeshRebuilds() int {
	return r.meshCache.Rebuilds()
}

// MeshRect retorna o retângulo de tiles em cache.
func (r *CityRenderer) MeshRect() util.MapRectangle {
	return r.meshCache.Rect()
}

// VertexCache expõe o cache transitório para outros caminhos de desenho.
func (r *CityRenderer) VertexCache() *gpu.TransientVertexCache {
	return r.vertexCache
}

// Debug retorna o coletor de linhas de diagnóstico.
func (r *CityRenderer) Debug() *DebugRenderer {
	return r.debug
}

// ScratchSizes retorna o tamanho das listas do frame (zeradas após cada RenderFrame).
func (r *CityRenderer) ScratchSizes() (sprites, vertices, indices, batches int) {
	return len(r.sprites), len(r.batcher.Vertices), len(r.batcher.Indices), len(r.batcher.Batches)
}

// RenderFrame executa o frame inteiro: malha, coleta, ordenação, lotes, desenho e reset.
// Uma etapa com erro é pulada; o frame sempre termina e o erro descreve o que faltou.
func (r *CityRenderer) RenderFrame() (stats FrameStats, err error) {
	if !r.initialized {
		return stats, ErrNotInitialized
	}
	r.frames++

	var errs []error
	enter := func(s FrameState) {
		r.state = s
		stats.States = append(stats.States, s)
	}
	skip := func(step string, e error) {
		stats.Skipped = append(stats.Skipped, step)
		errs = append(errs, fmt.Errorf("%s: %w", step, e))
		log.Printf("[CityRenderer] Etapa %s ignorada: %v", step, e)
	}

	defer func() {
		enter(StateReset)
		stats.Cache = r.vertexCache.Stats()
		r.resetFrame()
		r.state = StateIdle
		err = errors.Join(errs...)
	}()

	enter(StateMeshCheck)
	var cameraPos mgl32.Vec3
	if r.camera != nil {
		cameraPos = r.camera.Position()
	}
	rebuilt, e := r.meshCache.Update(util.WorldToTile(cameraPos), r.Flags.FullMapMesh)
	stats.Rebuilt = rebuilt
	if e != nil {
		skip("mesh", e)
	}

	enter(StateCollecting)
	r.collector.Heights.Debug = nil
	if r.Flags.DebugFootprints {
		r.collector.Heights.Debug = r.debug
	}
	r.sprites = r.collector.Collect(r.entities, r.sprites[:0])
	stats.Sprites = len(r.sprites)
	stats.Missing = r.collector.Missing

	hasSprites := len(r.sprites) > 0
	if hasSprites {
		enter(StateSorting)
		SortDrawSprites(r.sprites)

		enter(StateBatching)
		r.batcher.Build(r.sprites)
		stats.Batches = len(r.batcher.Batches)
	}

	drawDynamic := func() {
		if !hasSprites {
			return
		}
		enter(StateDrawingDynamic)
		if e := r.drawSprites(); e != nil {
			skip("sprites", e)
		}
	}
	drawStatic := func() {
		enter(StateDrawingStatic)
		n, e := r.drawCityMesh()
		stats.MeshDraws = n
		if e != nil {
			skip("city_mesh", e)
		}
	}
	if r.opts.DrawOrder == config.DrawOrderStaticFirst {
		drawStatic()
		drawDynamic()
	} else {
		drawDynamic()
		drawStatic()
	}

	enter(StateOverlay)
	if r.Flags.DebugCacheRect {
		r.debug.DrawRectangle(r.meshCache.Rect(), cameraPos.Y()-1, cacheRectColor)
	}
	stats.Lines = r.debug.LineCount()
	if e := r.debug.Render(); e != nil {
		skip("overlay", e)
	}
	return stats, nil
}

// drawCityMesh desenha as camadas visíveis dos buffers estáticos.
func (r *CityRenderer) drawCityMesh() (int, error) {
	if r.meshCache.VertexCount() == 0 {
		return 0, nil
	}
	vb, ib := r.meshCache.Buffers()

	r.device.UseProgram(gpu.ProgramCity)
	r.device.SetRenderStates(gpu.RenderStates{Blend: gpu.BlendNone, DepthTest: true, DepthWrite: true})
	r.device.BindVertexBuffer(vb, meshing.CityVertexFormat(0))
	r.device.BindIndexBuffer(ib)
	r.device.BindTexture(gpu.TextureUnit0, r.blockTexture)

	draws := 0
	for i := 0; i < meshing.MapLayersCount; i++ {
		if !r.Flags.DrawMapLayers[i] {
			continue
		}
		layer := r.meshCache.Layer(i)
		if layer.IndexCount == 0 {
			continue
		}
		if err := r.device.DrawIndexed(gpu.PrimitiveTriangles, layer.IndexOffset, layer.IndexCount, layer.BaseVertex); err != nil {
			return draws, fmt.Errorf("camada %d: %w", i, err)
		}
		draws++
	}
	return draws, nil
}

// drawSprites envia os lotes pelo cache transitório, um desenho por lote.
func (r *CityRenderer) drawSprites() error {
	vbuf, err := r.vertexCache.AllocVertex(gpu.AsBytes(r.batcher.Vertices))
	if err != nil {
		return err
	}
	ibuf, err := r.vertexCache.AllocIndex(gpu.AsBytes(r.batcher.Indices))
	if err != nil {
		return err
	}

	states := gpu.RenderStates{Blend: gpu.BlendNone, DepthTest: true, DepthWrite: true}
	if r.opts.SpriteBlending {
		states.Blend = gpu.BlendAlpha
	}
	r.device.UseProgram(gpu.ProgramSprites)
	r.device.SetRenderStates(states)
	r.device.BindVertexBuffer(vbuf.Buffer, gpu.SpriteVertexFormat(vbuf.Offset))
	r.device.BindIndexBuffer(ibuf.Buffer)

	for _, batch := range r.batcher.Batches {
		r.device.BindTexture(gpu.TextureUnit0, batch.Texture)
		offset := ibuf.Offset + batch.FirstIndex*gpu.SizeofDrawIndex
		if err := r.device.DrawIndexed(gpu.PrimitiveTriangles, offset, batch.IndexCount, 0); err != nil {
			return fmt.Errorf("lote da textura %d: %w", batch.Texture, err)
		}
	}
	return nil
}

// resetFrame descarta tudo que pertence ao frame.
func (r *CityRenderer) resetFrame() {
	r.vertexCache.FlushCache()
	r.sprites = r.sprites[:0]
	r.batcher.Reset()
	r.debug.Reset()
}
