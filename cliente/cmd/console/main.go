// Console de debug: conecta ao renderizador em execução, altera os controles e mostra a telemetria.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"CarnageVision/cliente/internal/client"
	"CarnageVision/shared/config"
	"CarnageVision/shared/proto/cvnet"
)

// Cores para o terminal (ANSI)
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func main() {
	addr := flag.String("addr", "", "Endereço do servidor de debug (padrão: o do config)")
	quiet := flag.Bool("quiet", false, "Não mostrar telemetria")
	flag.Parse()

	log.SetFlags(log.Ltime)
	fmt.Println(colorCyan + "╔══════════════════════════════════════╗" + colorReset)
	fmt.Println(colorCyan + "║      CarnageVision Debug Console     ║" + colorReset)
	fmt.Println(colorCyan + "╚══════════════════════════════════════╝" + colorReset)

	if *addr == "" {
		*addr = config.Load().DebugServerAddr
	}

	c := client.NewDebugClient("ws://" + *addr + "/debug")
	c.OnStatus = func(msg string) {
		fmt.Println(colorGreen + "Conectado: " + msg + colorReset)
	}
	c.OnFlags = func(f *cvnet.RenderFlags) {
		fmt.Println(colorYellow + formatFlags(f) + colorReset)
	}
	c.OnPong = func() {
		fmt.Println("pong")
	}
	if !*quiet {
		c.OnTelemetry = func(t *cvnet.Telemetry) {
			fmt.Println(formatTelemetry(t))
		}
	}
	c.OnDisconnect = func(err error) {
		if err != nil {
			fmt.Println(colorRed + "Conexão perdida: " + err.Error() + colorReset)
		}
	}

	if err := c.Connect(); err != nil {
		fmt.Println(colorRed + err.Error() + colorReset)
		os.Exit(1)
	}
	defer c.Close()

	fmt.Println("Comandos: fullmesh on|off, layer <n> on|off, footprints on|off, cacherect on|off, invalidate, clearblock <x> <y> <camada>, flags, ping, quit")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-c.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if line == "ping" {
				if err := c.Ping(); err != nil {
					fmt.Println(colorRed + err.Error() + colorReset)
				}
				continue
			}
			cmd, err := parseLine(line)
			if errors.Is(err, errQuit) {
				return
			}
			if err != nil {
				fmt.Println(colorRed + err.Error() + colorReset)
				continue
			}
			if err := c.SendCommand(cmd); err != nil {
				fmt.Println(colorRed + err.Error() + colorReset)
				continue
			}
			// pede o estado para confirmar a mudança
			if cmd.Kind != cvnet.CmdRequestFlags && cmd.Kind != cvnet.CmdInvalidateMesh && cmd.Kind != cvnet.CmdClearBlock {
				time.Sleep(50 * time.Millisecond)
				_ = c.SendCommand(cvnet.Command{Kind: cvnet.CmdRequestFlags})
			}
		}
	}
}
