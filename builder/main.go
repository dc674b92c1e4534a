package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Cores para o terminal (ANSI)
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
)

type component struct {
	name    string
	pkg     string
	output  string
	cgo     bool
	ldflags string
}

func main() {
	outDir := flag.String("out", "dist", "Pasta de saída dos executáveis")
	runTests := flag.Bool("test", false, "Rodar os testes antes de compilar")
	static := flag.Bool("static", runtime.GOOS == "windows", "Linkar estaticamente o cliente")
	flag.Parse()

	fmt.Println(ColorCyan + "╔══════════════════════════════════════╗" + ColorReset)
	fmt.Println(ColorCyan + "║     CarnageVision Native Builder     ║" + ColorReset)
	fmt.Println(ColorCyan + "╚══════════════════════════════════════╝" + ColorReset)

	start := time.Now()
	setupEnvironment()

	if *runTests {
		if err := goTest(); err != nil {
			fatal(err)
		}
	}

	clientFlags := "-s -w"
	if *static {
		clientFlags = "-extldflags=-static -s -w"
	}
	if runtime.GOOS == "windows" {
		clientFlags += " -H=windowsgui"
	}

	components := []component{
		{"CLIENTE (CGO + raylib)", "./cliente", executable(*outDir, "carnagevision"), true, clientFlags},
		{"CONSOLE DE DEBUG (Pure Go)", "./cliente/cmd/console", executable(*outDir, "cvconsole"), false, "-s -w"},
	}
	for i, c := range components {
		fmt.Printf(ColorYellow+"\n[%d/%d]"+ColorReset, i+1, len(components))
		if err := buildComponent(c); err != nil {
			fatal(err)
		}
	}

	fmt.Printf("\n"+ColorCyan+"Build finalizada com sucesso em %v!"+ColorReset+"\n", time.Since(start).Round(time.Second))
	fmt.Println(ColorYellow + "Dica: rode o cliente e conecte o console com 'cvconsole -addr 127.0.0.1:8090'." + ColorReset)
}

func executable(dir, name string) string {
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(dir, name)
}

func setupEnvironment() {
	fmt.Println(ColorYellow + "\n[0] Configurando ambiente de compilação..." + ColorReset)

	// Adicionar MSYS2 ao PATH se estiver no Windows
	if runtime.GOOS == "windows" {
		msysPath := `C:\msys64\mingw64\bin`
		currentPath := os.Getenv("PATH")
		if !strings.Contains(currentPath, msysPath) {
			os.Setenv("PATH", msysPath+";"+currentPath)
			fmt.Printf("  - PATH atualizado: %s adicionado.\n", msysPath)
		}
		os.Setenv("CC", "gcc")
		fmt.Println("  - Compilador C: gcc (MSYS2)")
	}
}

func goTest() error {
	fmt.Println(ColorYellow + "\n[T] Rodando testes..." + ColorReset)
	cmd := exec.Command("go", "test", "./...")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("testes falharam: %w", err)
	}
	fmt.Println(ColorGreen + "  - Testes OK" + ColorReset)
	return nil
}

func buildComponent(c component) error {
	fmt.Printf(ColorYellow+" Compilando %s..."+ColorReset+"\n", c.name)

	cgoValue := "0"
	if c.cgo {
		cgoValue = "1"
	}

	cmd := exec.Command("go", "build", "-ldflags", c.ldflags, "-o", c.output, c.pkg)
	cmd.Env = append(os.Environ(), "CGO_ENABLED="+cgoValue)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("falha ao compilar %s: %w", c.name, err)
	}

	fmt.Printf(ColorGreen+"  - %s compilado com sucesso -> %s"+ColorReset+"\n", c.name, c.output)
	return nil
}

func fatal(err error) {
	fmt.Printf("\n"+ColorRed+"[ERRO FATAL] %v"+ColorReset+"\n", err)
	os.Exit(1)
}
