package app

import (
	"context"
	"log"

	"CarnageVision/cliente/internal/assets"
	"CarnageVision/cliente/internal/camera"
	"CarnageVision/cliente/internal/debugnet"
	"CarnageVision/cliente/internal/game"
	"CarnageVision/cliente/internal/gpu/rldevice"
	"CarnageVision/cliente/internal/render"
	"CarnageVision/shared/config"
	"CarnageVision/shared/mapdata"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// AppState representa os estados possíveis da aplicação.
type AppState int

const (
	StateLoading AppState = iota // Carregando mapa e assets
	StateViewing                 // Simulação rodando
	StatePaused                  // Menu de pausa
	StateFailed                  // Falha na inicialização
)

// App é a aplicação principal do CarnageVision.
type App struct {
	Config *config.Config
	State  AppState

	Cam *camera.CameraController

	// Informações de debug
	frameCount uint64
	lastStats  render.FrameStats
	lastErr    error
	failure    string

	// Mapa, assets e simulação
	city     *mapdata.CityMap
	registry *assets.TextureRegistry
	sheet    *assets.Spritesheet
	world    *game.World
	device   *rldevice.Device
	renderer *render.CityRenderer

	followIndex  int
	simPaused    bool
	lastRevision int64

	debugSrv *debugnet.Server
	cancel   context.CancelFunc

	LoadingStatus   string
	LoadingProgress float32
}

// New cria uma nova instância da aplicação.
func New(cfg *config.Config) *App {
	return &App{
		Config:        cfg,
		State:         StateLoading,
		LoadingStatus: "Preparando a cidade...",
	}
}

// Run inicia o loop principal da aplicação.
func (a *App) Run() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] Erro fatal recuperado: %v", r)
			panic(r)
		}
	}()

	rl.SetConfigFlags(rl.FlagMsaa4xHint | rl.FlagWindowResizable)
	rl.InitWindow(a.Config.WindowWidth, a.Config.WindowHeight, a.Config.WindowTitle)
	rl.SetTraceLogLevel(rl.LogWarning)
	if a.Config.Fullscreen {
		rl.ToggleFullscreen()
	}
	rl.SetTargetFPS(a.Config.TargetFPS)
	rl.SetExitKey(0)

	log.Println("[CarnageVision] Janela inicializada com sucesso")
	log.Printf("[CarnageVision] Resolução: %dx%d", a.Config.WindowWidth, a.Config.WindowHeight)

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if err := a.setup(ctx); err != nil {
		log.Printf("[App] Falha na inicialização: %v", err)
		a.State = StateFailed
		a.failure = err.Error()
	} else {
		a.State = StateViewing
	}

	for !rl.WindowShouldClose() {
		a.update()
		a.draw()
	}

	a.shutdown()
	rl.CloseWindow()
}

// update atualiza a lógica a cada frame.
func (a *App) update() {
	a.frameCount++
	dt := rl.GetFrameTime()

	switch a.State {
	case StateViewing:
		a.processDebugCommands()
		a.updateCamera(dt)
		a.updateInput()
		a.updateWorld(dt)
		a.checkMapRevision()
	case StatePaused:
		a.processDebugCommands()
		a.updateInput()
		a.checkMapRevision()
	}
}

// shutdown realiza a limpeza de recursos.
func (a *App) shutdown() {
	log.Println("[App] Finalizando aplicação...")

	if a.cancel != nil {
		a.cancel()
	}
	if a.debugSrv != nil {
		if err := a.debugSrv.Close(); err != nil {
			log.Printf("[DebugNet] Erro ao fechar: %v", err)
		}
	}
	if a.renderer != nil {
		a.renderer.Deinit()
	}
	if a.device != nil {
		a.device.Close()
	}
	if a.city != nil {
		if err := a.city.Close(); err != nil {
			log.Printf("[Persistence] Erro ao fechar banco: %v", err)
		}
	}

	// os controles alterados em tempo de execução viram o padrão da próxima sessão
	if a.renderer != nil {
		a.Config.FullMapMesh = a.renderer.Flags.FullMapMesh
		a.Config.DrawMapLayers = a.renderer.Flags.DrawMapLayers
		a.Config.ShowDebugFootprints = a.renderer.Flags.DebugFootprints
	}
	if err := a.Config.Save(); err != nil {
		log.Printf("[CarnageVision] Erro ao salvar configurações: %v", err)
	}
}
