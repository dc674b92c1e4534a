package main

import (
	"flag"
	"log"
	"os"
	"runtime"

	"CarnageVision/cliente/internal/app"
	"CarnageVision/shared/config"
)

func main() {
	// Raylib/OpenGL exige rodar na thread principal do SO
	runtime.LockOSThread()

	mapName := flag.String("map", "", "Nome do save da cidade (saves/<nome>.cv)")
	seed := flag.Int64("seed", 0, "Semente para gerar a cidade quando não houver save")
	fullscreen := flag.Bool("fullscreen", false, "Iniciar em tela cheia")
	debug := flag.Bool("debug", false, "Mostrar informações de debug")
	fullMesh := flag.Bool("fullmesh", false, "Gerar a malha do mapa inteiro")
	debugAddr := flag.String("debug-addr", "", "Endereço do console de debug (\"off\" desativa)")
	width := flag.Int("width", 0, "Largura da janela")
	height := flag.Int("height", 0, "Altura da janela")
	flag.Parse()

	f, err := os.OpenFile("debug_cv.log", os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err == nil {
		log.SetOutput(f)
		defer f.Close()
		log.Println("--- INICIANDO CARNAGE VISION ---")
	}

	log.SetFlags(log.Ltime | log.Lshortfile)
	log.Println("╔══════════════════════════════════════╗")
	log.Println("║        CarnageVision v0.1.0          ║")
	log.Println("║   Renderizador de cidade top-down    ║")
	log.Println("╚══════════════════════════════════════╝")

	cfg := config.Load()

	// flags de linha de comando sobrescrevem o config salvo
	if *mapName != "" {
		cfg.MapDatabase = *mapName
	}
	if *seed != 0 {
		cfg.MapSeed = *seed
	}
	if *fullscreen {
		cfg.Fullscreen = true
	}
	if *debug {
		cfg.ShowDebugInfo = true
	}
	if *fullMesh {
		cfg.FullMapMesh = true
	}
	switch *debugAddr {
	case "":
	case "off":
		cfg.DebugServerAddr = ""
	default:
		cfg.DebugServerAddr = *debugAddr
	}
	if *width > 0 {
		cfg.WindowWidth = int32(*width)
	}
	if *height > 0 {
		cfg.WindowHeight = int32(*height)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[CarnageVision] Configuração inválida: %v", err)
	}

	application := app.New(cfg)
	application.Run()
}
