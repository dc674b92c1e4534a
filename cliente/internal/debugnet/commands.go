package debugnet

import (
	"log"

	"CarnageVision/cliente/internal/render"
	"CarnageVision/shared/proto/cvnet"
	"CarnageVision/shared/util"

	"github.com/go-gl/mathgl/mgl32"
)

// BlockEditor altera blocos do mapa entre frames.
type BlockEditor interface {
	ClearBlock(x, y, z int) error
}

// ApplyCommands aplica os comandos recebidos aos controles do renderizador.
// changed indica que algum controle mudou; requested que um console pediu o estado atual.
// Edições de bloco vão para edit, que pode ser nil.
func ApplyCommands(flags *render.Flags, cmds []cvnet.Command, invalidate func(), edit BlockEditor) (changed, requested bool) {
	for _, cmd := range cmds {
		switch cmd.Kind {
		case cvnet.CmdSetFullMesh:
			changed = setFlag(&flags.FullMapMesh, cmd.Enabled) || changed
		case cvnet.CmdSetLayerVisible:
			if cmd.Layer < 0 || int(cmd.Layer) >= len(flags.DrawMapLayers) {
				log.Printf("[DebugNet] Camada inválida: %d", cmd.Layer)
				continue
			}
			changed = setFlag(&flags.DrawMapLayers[cmd.Layer], cmd.Enabled) || changed
		case cvnet.CmdSetFootprints:
			changed = setFlag(&flags.DebugFootprints, cmd.Enabled) || changed
		case cvnet.CmdSetCacheRect:
			changed = setFlag(&flags.DebugCacheRect, cmd.Enabled) || changed
		case cvnet.CmdInvalidateMesh:
			if invalidate != nil {
				invalidate()
			}
		case cvnet.CmdRequestFlags:
			requested = true
		case cvnet.CmdClearBlock:
			if edit == nil {
				log.Printf("[DebugNet] Edição de mapa indisponível")
				continue
			}
			if err := edit.ClearBlock(int(cmd.X), int(cmd.Y), int(cmd.Layer)); err != nil {
				log.Printf("[DebugNet] Erro ao limpar bloco: %v", err)
				continue
			}
			log.Printf("[DebugNet] Bloco (%d, %d, %d) removido", cmd.X, cmd.Y, cmd.Layer)
		default:
			log.Printf("[DebugNet] Comando desconhecido: %v", cmd.Kind)
		}
	}
	return changed, requested
}

func setFlag(dst *bool, v bool) bool {
	if *dst == v {
		return false
	}
	*dst = v
	return true
}

// FlagsMessage converte os controles para o formato do canal.
func FlagsMessage(f render.Flags) cvnet.RenderFlags {
	return cvnet.RenderFlags{
		FullMapMesh:     f.FullMapMesh,
		DrawMapLayers:   append([]bool(nil), f.DrawMapLayers[:]...),
		DebugFootprints: f.DebugFootprints,
		DebugCacheRect:  f.DebugCacheRect,
	}
}

// TelemetryFromStats resume um frame para os consoles.
func TelemetryFromStats(frame uint64, stats render.FrameStats, rect util.MapRectangle, rebuilds int, cam mgl32.Vec3, fps float32) cvnet.Telemetry {
	t := cvnet.Telemetry{
		Frame:        frame,
		States:       make([]int32, len(stats.States)),
		Rebuilt:      stats.Rebuilt,
		MeshRebuilds: int64(rebuilds),
		Sprites:      int32(stats.Sprites),
		Missing:      int32(stats.Missing),
		Batches:      int32(stats.Batches),
		MeshDraws:    int32(stats.MeshDraws),
		Lines:        int32(stats.Lines),
		VertexPages:  int32(stats.Cache.VertexPages),
		IndexPages:   int32(stats.Cache.IndexPages),
		VertexBytes:  int64(stats.Cache.VertexBytes),
		IndexBytes:   int64(stats.Cache.IndexBytes),
		Skipped:      append([]string(nil), stats.Skipped...),
		MeshRect:     []int32{int32(rect.X), int32(rect.Y), int32(rect.W), int32(rect.H)},
		CameraX:      cam.X(),
		CameraZ:      cam.Z(),
		FPS:          fps,
	}
	for i, s := range stats.States {
		t.States[i] = int32(s)
	}
	return t
}
