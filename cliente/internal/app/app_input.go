package app

import (
	"log"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// updateCamera atualiza a câmera baseado no input.
func (a *App) updateCamera(dt float32) {
	if a.Cam == nil {
		return
	}
	a.Cam.HandleInput(dt)
	a.Cam.Update(dt)
}

// Teclas 1..6 alternam as camadas do mapa.
var layerKeys = [...]int32{rl.KeyOne, rl.KeyTwo, rl.KeyThree, rl.KeyFour, rl.KeyFive, rl.KeySix}

// updateInput processa entradas de teclado gerais.
func (a *App) updateInput() {
	if rl.IsKeyPressed(rl.KeyEscape) {
		if a.State == StateViewing {
			a.State = StatePaused
			log.Println("[App] Pausado")
		} else if a.State == StatePaused {
			a.State = StateViewing
			log.Println("[App] Retomando")
		}
	}
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeyF3) {
		a.Config.ShowDebugInfo = !a.Config.ShowDebugInfo
	}
	if a.State != StateViewing || a.renderer == nil {
		return
	}

	flags := &a.renderer.Flags
	changed := false

	if rl.IsKeyPressed(rl.KeyF1) {
		flags.FullMapMesh = !flags.FullMapMesh
		log.Printf("[App] Malha do mapa inteiro: %v", flags.FullMapMesh)
		changed = true
	}
	if rl.IsKeyPressed(rl.KeyF2) {
		flags.DebugFootprints = !flags.DebugFootprints
		changed = true
	}
	if rl.IsKeyPressed(rl.KeyF4) {
		flags.DebugCacheRect = !flags.DebugCacheRect
		changed = true
	}
	if rl.IsKeyPressed(rl.KeyF5) {
		a.renderer.InvalidateMapMesh()
		log.Println("[App] Malha invalidada manualmente")
	}
	for i, key := range layerKeys {
		if rl.IsKeyPressed(key) {
			flags.DrawMapLayers[i] = !flags.DrawMapLayers[i]
			log.Printf("[App] Camada %d: %v", i, flags.DrawMapLayers[i])
			changed = true
		}
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		a.simPaused = !a.simPaused
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		if rl.IsKeyDown(rl.KeyLeftShift) {
			a.followNext(-1)
		} else {
			a.followNext(1)
		}
	}

	if changed {
		a.publishFlags()
	}
}
