package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"CarnageVision/cliente/internal/assets"
	"CarnageVision/cliente/internal/camera"
	"CarnageVision/cliente/internal/game"
	"CarnageVision/cliente/internal/gpu/rldevice"
	"CarnageVision/cliente/internal/render"
	"CarnageVision/shared/config"
	"CarnageVision/shared/mapdata"

	"github.com/go-gl/mathgl/mgl32"
)

const blockTileSize = 32

// setup carrega o mapa, gera as texturas e cria o renderizador.
func (a *App) setup(ctx context.Context) error {
	a.setLoading("Carregando a cidade...", 0.1)
	city, err := loadCity(filepath.Join(config.Dir(), "saves"), a.Config.MapDatabase, a.Config.MapSeed)
	if err != nil {
		return err
	}
	a.city = city
	a.lastRevision = city.Revision

	a.setLoading("Aplicando estilo...", 0.3)
	mgr, err := assets.NewManager(config.Dir())
	if err != nil {
		log.Printf("[Assets] Ignorando style.json: %v", err)
	} else if n, err := mgr.Apply(city.Style); err != nil {
		log.Printf("[Assets] Erro ao aplicar style.json: %v", err)
	} else if n > 0 {
		log.Printf("[Assets] %d ajustes de estilo aplicados", n)
	}

	a.setLoading("Gerando texturas...", 0.5)
	a.registry = assets.NewTextureRegistry()
	a.sheet, err = assets.BuildSpritesheet(city.Style, a.registry, assets.DefaultSheetOptions())
	if err != nil {
		return fmt.Errorf("falha ao montar spritesheet: %w", err)
	}
	atlas, err := assets.BuildBlockAtlas(city.Style, blockTileSize)
	if err != nil {
		return fmt.Errorf("falha ao montar atlas de blocos: %w", err)
	}
	blockTex, err := a.registry.Register("blocks", atlas.Image)
	if err != nil {
		return err
	}

	a.device = rldevice.New()
	a.registry.UploadAll(a.device)
	a.device.SetBlockAtlas(rldevice.BlockAtlas{Texture: blockTex, Columns: atlas.Columns, Rows: atlas.Rows})

	a.setLoading("Populando as ruas...", 0.7)
	a.world = game.NewWorld(city, city.Style, a.Config.MapSeed)
	a.world.Populate(a.Config.Pedestrians, a.Config.Vehicles)

	w, h, _ := city.Dimensions()
	a.Cam = camera.New(mgl32.Vec3{float32(w) / 2, 1, float32(h) / 2}, a.Config.CameraHeight, a.Config.CameraSpeed, a.Config.ZoomSpeed)
	if v := a.world.VehicleAt(0); v != nil {
		a.Cam.Follow(v)
	}

	a.setLoading("Construindo a malha...", 0.9)
	a.renderer = render.NewCityRenderer(a.device, city, city.Style, a.sheet, a.world, a.Cam, render.OptionsFromConfig(a.Config))
	a.renderer.Flags = render.FlagsFromConfig(a.Config)
	a.renderer.SetBlockTexture(blockTex)
	if err := a.renderer.Initialize(); err != nil {
		return err
	}

	if a.Config.DebugServerAddr != "" {
		a.startDebugServer(ctx)
	}
	a.setLoading("Pronto", 1)
	return nil
}

// loadCity abre o save da cidade ou gera uma nova e a salva.
func loadCity(dir, name string, seed int64) (*mapdata.CityMap, error) {
	city, err := mapdata.LoadCity(dir, name)
	if err == nil {
		log.Printf("[App] Cidade %q carregada de %s", name, mapdata.DatabasePath(dir, name))
		return city, nil
	}
	if !errors.Is(err, mapdata.ErrNoCity) {
		return nil, fmt.Errorf("falha ao carregar cidade %q: %w", name, err)
	}

	log.Printf("[App] Gerando cidade %q (seed %d)", name, seed)
	city = mapdata.GenerateCity(name, seed)
	if err := city.OpenDatabase(dir); err != nil {
		// a cidade funciona sem save
		log.Printf("[Persistence] Sem banco de dados: %v", err)
		return city, nil
	}
	if err := city.SaveCity(); err != nil {
		log.Printf("[Persistence] Erro ao salvar cidade: %v", err)
	}
	return city, nil
}

// updateWorld avança a simulação.
func (a *App) updateWorld(dt float32) {
	if a.simPaused || a.world == nil {
		return
	}
	// passos grandes (janela arrastada, breakpoint) atravessariam blocos
	const maxStep = 1.0 / 20
	for dt > 0 {
		step := min(dt, maxStep)
		a.world.Update(step)
		dt -= step
	}
}

// checkMapRevision invalida a malha quando o mapa foi editado.
func (a *App) checkMapRevision() {
	if a.city == nil || a.renderer == nil {
		return
	}
	a.city.Mu.RLock()
	rev := a.city.Revision
	a.city.Mu.RUnlock()
	if rev != a.lastRevision {
		a.lastRevision = rev
		a.renderer.InvalidateMapMesh()
		log.Printf("[App] Mapa editado (revisão %d), malha invalidada", rev)
	}
}

// followNext passa a câmera para o próximo veículo.
func (a *App) followNext(delta int) {
	if a.world == nil || a.world.VehicleCount() == 0 {
		return
	}
	a.followIndex += delta
	if v := a.world.VehicleAt(a.followIndex); v != nil {
		a.Cam.Follow(v)
		log.Printf("[Camera] Seguindo veículo %d (%s)", v.ID, v.CarStyle().Name)
	}
}
