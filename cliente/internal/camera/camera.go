package camera

import (
	"CarnageVision/shared/util"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// Target é algo que a câmera pode seguir.
type Target interface {
	Position() mgl32.Vec3
}

// CameraController gerencia a câmera de cima para baixo da cidade.
// Segue um alvo com suavização; WASD solta o alvo e move a câmera livremente.
type CameraController struct {
	// Estado interno do Raylib
	RLCamera rl.Camera3D

	// Configurações
	MinZoom      float32
	MaxZoom      float32
	MoveSpeed    float32
	ZoomSpeed    float32
	SmoothFactor float32 // 0.0 a 1.0 (quanto menor, mais suave/lento)

	// Estado alvo (para interpolação suave)
	TargetLookAt mgl32.Vec3 // ponto do chão no centro da tela
	TargetZoom   float32    // altura da câmera acima do ponto

	// Estado atual (interpolado)
	CurrentLookAt mgl32.Vec3
	CurrentZoom   float32

	follow Target
}

// New cria a câmera olhando para lookAt a uma altura zoom.
func New(lookAt mgl32.Vec3, zoom, moveSpeed, zoomSpeed float32) *CameraController {
	c := &CameraController{
		MinZoom:      4.0,
		MaxZoom:      60.0,
		MoveSpeed:    moveSpeed,
		ZoomSpeed:    zoomSpeed,
		SmoothFactor: 0.15,

		TargetLookAt: lookAt,
		TargetZoom:   zoom,
	}
	c.TargetZoom = util.Clamp(c.TargetZoom, c.MinZoom, c.MaxZoom)

	// Inicializa os valores atuais com os alvos para não "saltar" no início
	c.CurrentLookAt = c.TargetLookAt
	c.CurrentZoom = c.TargetZoom

	c.RLCamera = rl.Camera3D{
		// olhando reto para baixo, o "norte" do mapa (-Z) fica no topo da tela
		Up:         rl.Vector3{X: 0, Y: 0, Z: -1},
		Fovy:       60.0,
		Projection: rl.CameraPerspective,
	}
	c.apply()
	return c
}

// Follow passa a seguir o alvo. nil solta a câmera.
func (c *CameraController) Follow(t Target) {
	c.follow = t
}

// Following indica se há um alvo.
func (c *CameraController) Following() bool {
	return c.follow != nil
}

// SetTarget define o ponto observado imediatamente (sem suavização).
func (c *CameraController) SetTarget(pos mgl32.Vec3) {
	c.TargetLookAt = pos
	c.CurrentLookAt = pos
	c.apply()
}

// Position é a posição da câmera no mundo, usada para escolher a janela de tiles.
func (c *CameraController) Position() mgl32.Vec3 {
	return mgl32.Vec3{c.RLCamera.Position.X, c.RLCamera.Position.Y, c.RLCamera.Position.Z}
}

// Update calcula a nova posição da câmera com base no tempo (dt).
// Deve ser chamado a cada frame.
func (c *CameraController) Update(dt float32) {
	if c.follow != nil {
		c.TargetLookAt = c.follow.Position()
	}

	factor := c.SmoothFactor * 60.0 * dt // Normaliza para 60 FPS
	if factor > 1.0 {
		factor = 1.0
	}

	c.CurrentLookAt = c.CurrentLookAt.Add(c.TargetLookAt.Sub(c.CurrentLookAt).Mul(factor))
	c.CurrentZoom = util.Lerp(c.CurrentZoom, c.TargetZoom, factor)
	c.apply()
}

// apply copia o estado interpolado para a câmera do Raylib.
func (c *CameraController) apply() {
	look := c.CurrentLookAt
	c.RLCamera.Target = rl.Vector3{X: look.X(), Y: look.Y(), Z: look.Z()}
	c.RLCamera.Position = rl.Vector3{X: look.X(), Y: look.Y() + c.CurrentZoom, Z: look.Z()}
}

// Zoom aproxima (delta positivo) ou afasta a câmera.
func (c *CameraController) Zoom(delta float32) {
	c.TargetZoom = util.Clamp(c.TargetZoom-delta*c.ZoomSpeed, c.MinZoom, c.MaxZoom)
}

// Pan move o ponto observado no plano XZ e solta o alvo.
// A velocidade cresce com a altura, como no zoom do Armok Vision.
func (c *CameraController) Pan(dir mgl32.Vec2, dt float32) bool {
	if dir.Len() == 0 {
		return false
	}
	c.follow = nil
	step := dir.Normalize().Mul(c.MoveSpeed * (c.CurrentZoom / 15.0) * dt)
	c.TargetLookAt = c.TargetLookAt.Add(mgl32.Vec3{step.X(), 0, step.Y()})
	return true
}

// HandleInput processa entrada do usuário. Retorna true se houve input de movimento.
func (c *CameraController) HandleInput(dt float32) bool {
	moved := false
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		c.Zoom(wheel)
		moved = true
	}

	var dir mgl32.Vec2
	if rl.IsKeyDown(rl.KeyW) {
		dir[1]--
	}
	if rl.IsKeyDown(rl.KeyS) {
		dir[1]++
	}
	if rl.IsKeyDown(rl.KeyD) {
		dir[0]++
	}
	if rl.IsKeyDown(rl.KeyA) {
		dir[0]--
	}
	if c.Pan(dir, dt) {
		moved = true
	}
	return moved
}
