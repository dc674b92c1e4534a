package app

import (
	"fmt"
	"log"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// draw renderiza a cena.
func (a *App) draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(30, 30, 40, 255))

	switch a.State {
	case StateLoading:
		a.drawLoadingScreen()
	case StateFailed:
		a.drawFailure()
	default:
		a.drawScene()
		a.drawHUD()
		if a.State == StatePaused {
			a.drawPauseMenu()
		}
	}

	rl.EndDrawing()
}

// setLoading atualiza a tela de carregamento durante a inicialização síncrona.
func (a *App) setLoading(status string, progress float32) {
	a.LoadingStatus = status
	a.LoadingProgress = progress
	log.Printf("[App] %s", status)
	if !rl.IsWindowReady() {
		return
	}
	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(30, 30, 40, 255))
	a.drawLoadingScreen()
	rl.EndDrawing()
}

// drawScene renderiza a cidade.
func (a *App) drawScene() {
	if a.renderer == nil || a.Cam == nil {
		return
	}
	rl.BeginMode3D(a.Cam.RLCamera)
	stats, err := a.renderer.RenderFrame()
	rl.EndMode3D()

	a.lastStats = stats
	if err != nil && (a.lastErr == nil || err.Error() != a.lastErr.Error()) {
		log.Printf("[App] Frame %d incompleto: %v", a.frameCount, err)
	}
	a.lastErr = err
	a.pushTelemetry()
}

// drawHUD desenha a interface sobreposta.
func (a *App) drawHUD() {
	if !a.Config.ShowDebugInfo || a.renderer == nil {
		return
	}

	width := int32(360)
	height := int32(250)
	x := int32(rl.GetScreenWidth()) - width - 10
	y := int32(10)

	rl.DrawRectangle(x, y, width, height, rl.NewColor(0, 0, 0, 180))
	rl.DrawRectangleLines(x, y, width, height, rl.NewColor(50, 50, 50, 255))

	fps := rl.GetFPS()
	fpsColor := rl.Green
	if fps < 30 {
		fpsColor = rl.Red
	} else if fps < 50 {
		fpsColor = rl.Yellow
	}
	rl.DrawText(fmt.Sprintf("FPS: %d", fps), x+10, y+10, 20, fpsColor)
	if a.simPaused {
		rl.DrawText("SIMULAÇÃO PAUSADA", x+150, y+14, 14, rl.Orange)
	}
	rl.DrawLine(x+10, y+35, x+width-10, y+35, rl.NewColor(100, 100, 100, 100))

	s := a.lastStats
	rl.DrawText("FRAME", x+10, y+45, 12, rl.Gray)
	rl.DrawText(fmt.Sprintf("Sprites: %d (sem sprite: %d)  Lotes: %d", s.Sprites, s.Missing, s.Batches), x+10, y+60, 14, rl.White)
	rl.DrawText(fmt.Sprintf("Camadas desenhadas: %d  Linhas: %d", s.MeshDraws, s.Lines), x+10, y+78, 14, rl.LightGray)
	rl.DrawText(fmt.Sprintf("Cache: %d+%d buffers, %d KB", s.Cache.VertexPages, s.Cache.IndexPages,
		(s.Cache.VertexBytes+s.Cache.IndexBytes)/1024), x+10, y+96, 14, rl.LightGray)

	rect := a.renderer.MeshRect()
	rl.DrawText(fmt.Sprintf("Malha: (%d,%d) %dx%d  Rebuilds: %d", rect.X, rect.Y, rect.W, rect.H, a.renderer.MeshRebuilds()),
		x+10, y+114, 14, rl.LightGray)
	if a.lastErr != nil {
		rl.DrawText(fmt.Sprintf("Pulado: %v", a.lastStats.Skipped), x+10, y+132, 14, rl.Red)
	}
	rl.DrawLine(x+10, y+152, x+width-10, y+152, rl.NewColor(100, 100, 100, 100))

	pos := a.Cam.Position()
	follow := "livre"
	if a.Cam.Following() {
		follow = "seguindo"
	}
	rl.DrawText(fmt.Sprintf("Câmera: (%.1f, %.1f) zoom %.1f [%s]", pos.X(), pos.Z(), a.Cam.CurrentZoom, follow), x+10, y+160, 14, rl.White)
	consoles := 0
	if a.debugSrv != nil {
		consoles = a.debugSrv.ClientCount()
	}
	rl.DrawText(fmt.Sprintf("Veículos: %d  Pedestres: %d  Consoles: %d", a.world.VehicleCount(), a.world.PedestrianCount(), consoles),
		x+10, y+178, 14, rl.LightGray)

	rl.DrawLine(x+10, y+198, x+width-10, y+198, rl.NewColor(100, 100, 100, 100))
	rl.DrawText("F1: Mapa inteiro | F2: Footprints | F4: Cache | F5: Rebuild", x+10, y+206, 12, rl.SkyBlue)
	rl.DrawText("1-6: Camadas | Tab: Seguir | Espaço: Pausar | WASD/Scroll", x+10, y+224, 12, rl.SkyBlue)

	title := "CarnageVision v0.1.0"
	titleWidth := rl.MeasureText(title, 18)
	rl.DrawText(title,
		int32(rl.GetScreenWidth())-titleWidth-20, int32(rl.GetScreenHeight())-30,
		18, rl.NewColor(200, 200, 200, 150))
}

// drawPauseMenu desenha o menu de escape centralizado.
func (a *App) drawPauseMenu() {
	screenWidth := int32(rl.GetScreenWidth())
	screenHeight := int32(rl.GetScreenHeight())

	rl.DrawRectangle(0, 0, screenWidth, screenHeight, rl.NewColor(0, 0, 0, 150))

	panelWidth := int32(400)
	panelHeight := int32(250)
	panelX := (screenWidth - panelWidth) / 2
	panelY := (screenHeight - panelHeight) / 2

	rl.DrawRectangle(panelX, panelY, panelWidth, panelHeight, rl.NewColor(30, 30, 35, 255))
	rl.DrawRectangleLines(panelX, panelY, panelWidth, panelHeight, rl.White)

	menuTitle := "PAUSA"
	titleWidth := rl.MeasureText(menuTitle, 24)
	rl.DrawText(menuTitle, panelX+(panelWidth-titleWidth)/2, panelY+30, 24, rl.Gold)

	buttonX := panelX + 50
	buttonWidth := panelWidth - 100
	buttonHeight := int32(40)

	if a.drawButton(buttonX, panelY+90, buttonWidth, buttonHeight, "RETOMAR (ESC)", rl.Green) {
		a.State = StateViewing
	}
	if a.drawButton(buttonX, panelY+150, buttonWidth, buttonHeight, "RECONSTRUIR MALHA", rl.Gray) && a.renderer != nil {
		a.renderer.InvalidateMapMesh()
		a.State = StateViewing
	}
}

// drawButton desenha um botão genérico com hover e retorna true se clicado.
func (a *App) drawButton(x, y, w, h int32, text string, color rl.Color) bool {
	mousePos := rl.GetMousePosition()
	isHover := mousePos.X >= float32(x) && mousePos.X <= float32(x+w) &&
		mousePos.Y >= float32(y) && mousePos.Y <= float32(y+h)

	drawColor := color
	if isHover {
		drawColor.R = uint8(min(255, int(drawColor.R)+30))
		drawColor.G = uint8(min(255, int(drawColor.G)+30))
		drawColor.B = uint8(min(255, int(drawColor.B)+30))
	}

	rl.DrawRectangle(x, y, w, h, rl.NewColor(50, 50, 50, 255))
	rl.DrawRectangleLines(x, y, w, h, drawColor)

	textWidth := rl.MeasureText(text, 18)
	rl.DrawText(text, x+(w-textWidth)/2, y+(h-18)/2, 18, rl.White)

	return isHover && rl.IsMouseButtonPressed(rl.MouseLeftButton)
}

func (a *App) drawLoadingScreen() {
	screenWidth := int32(rl.GetScreenWidth())
	screenHeight := int32(rl.GetScreenHeight())

	rl.DrawRectangle(0, 0, screenWidth, screenHeight, rl.NewColor(20, 20, 25, 255))

	title := "CARNAGEVISION"
	titleWidth := rl.MeasureText(title, 40)
	rl.DrawText(title, (screenWidth-titleWidth)/2, screenHeight/2-60, 40, rl.Gold)

	barWidth := int32(400)
	barHeight := int32(30)
	barX := (screenWidth - barWidth) / 2
	barY := screenHeight/2 + 20

	rl.DrawRectangle(barX, barY, barWidth, barHeight, rl.DarkGray)
	rl.DrawRectangle(barX, barY, int32(float32(barWidth)*a.LoadingProgress), barHeight, rl.Orange)
	rl.DrawRectangleLines(barX, barY, barWidth, barHeight, rl.White)

	statusWidth := rl.MeasureText(a.LoadingStatus, 18)
	rl.DrawText(a.LoadingStatus, (screenWidth-statusWidth)/2, barY+45, 18, rl.LightGray)
}

func (a *App) drawFailure() {
	screenWidth := int32(rl.GetScreenWidth())
	screenHeight := int32(rl.GetScreenHeight())

	title := "Falha ao iniciar"
	titleWidth := rl.MeasureText(title, 32)
	rl.DrawText(title, (screenWidth-titleWidth)/2, screenHeight/2-50, 32, rl.Red)

	msgWidth := rl.MeasureText(a.failure, 16)
	rl.DrawText(a.failure, (screenWidth-msgWidth)/2, screenHeight/2, 16, rl.LightGray)
	hint := "Veja debug_cv.log para detalhes. Feche a janela para sair."
	hintWidth := rl.MeasureText(hint, 14)
	rl.DrawText(hint, (screenWidth-hintWidth)/2, screenHeight/2+30, 14, rl.Gray)
}
