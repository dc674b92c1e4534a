package app

import (
	"context"
	"log"

	"CarnageVision/cliente/internal/debugnet"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// startDebugServer abre o canal de debug. Sem ele a aplicação continua normalmente.
func (a *App) startDebugServer(ctx context.Context) {
	srv := debugnet.NewServer()
	if err := srv.Start(ctx, a.Config.DebugServerAddr); err != nil {
		log.Printf("[DebugNet] Console de debug desativado: %v", err)
		return
	}
	a.debugSrv = srv
}

// processDebugCommands aplica os comandos recebidos desde o último frame.
func (a *App) processDebugCommands() {
	if a.debugSrv == nil || a.renderer == nil {
		return
	}
	cmds := a.debugSrv.Commands()
	if len(cmds) == 0 {
		return
	}
	// edições só sobem a revisão; checkMapRevision invalida a malha em seguida
	changed, requested := debugnet.ApplyCommands(&a.renderer.Flags, cmds, a.renderer.InvalidateMapMesh, a.city)
	if changed {
		log.Printf("[DebugNet] %d comandos aplicados", len(cmds))
	}
	if changed || requested {
		a.publishFlags()
	}
}

// publishFlags envia o estado atual dos controles para os consoles.
func (a *App) publishFlags() {
	if a.debugSrv == nil || a.renderer == nil {
		return
	}
	a.debugSrv.PublishFlags(debugnet.FlagsMessage(a.renderer.Flags))
}

// pushTelemetry entrega o resumo do último frame ao servidor de debug.
func (a *App) pushTelemetry() {
	if a.debugSrv == nil || a.debugSrv.ClientCount() == 0 {
		return
	}
	t := debugnet.TelemetryFromStats(a.frameCount, a.lastStats, a.renderer.MeshRect(),
		a.renderer.MeshRebuilds(), a.Cam.Position(), float32(rl.GetFPS()))
	a.debugSrv.PushTelemetry(t)
}
