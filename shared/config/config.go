package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// MapLayersCount é o número de níveis do mapa (camadas de malha).
const MapLayersCount = 6

// Ordem de desenho entre sprites dinâmicos e a malha estática da cidade.
const (
	DrawOrderDynamicFirst = "dynamic_first"
	DrawOrderStaticFirst  = "static_first"
)

// Config armazena as configurações do CarnageVision.
type Config struct {
	// Janela
	WindowWidth  int32  `json:"window_width"`
	WindowHeight int32  `json:"window_height"`
	WindowTitle  string `json:"window_title"`
	Fullscreen   bool   `json:"fullscreen"`
	TargetFPS    int32  `json:"target_fps"`

	// Mapa
	MapDatabase string `json:"map_database"` // Nome do save em saves/<nome>.cv
	MapSeed     int64  `json:"map_seed"`

	// Renderização da cidade
	ViewBlocks      int                  `json:"view_blocks"`  // Lado da janela visível em tiles
	CacheBlocks     int                  `json:"cache_blocks"` // Lado da janela em cache em tiles
	FullMapMesh     bool                 `json:"full_map_mesh"`
	DrawMapLayers   [MapLayersCount]bool `json:"draw_map_layers"`
	MesherThreads   int                  `json:"mesher_threads"`
	DrawOrder       string               `json:"draw_order"`
	SpriteBlending  bool                 `json:"sprite_blending"`
	VertexCachePage int                  `json:"vertex_cache_page"` // Bytes por buffer transitório
	VertexCacheMax  int                  `json:"vertex_cache_max"`  // Máximo de buffers por tipo

	// Câmera
	CameraSpeed  float32 `json:"camera_speed"`
	ZoomSpeed    float32 `json:"zoom_speed"`
	CameraHeight float32 `json:"camera_height"`

	// Demo
	Pedestrians int `json:"pedestrians"`
	Vehicles    int `json:"vehicles"`

	// Debug
	ShowDebugInfo       bool   `json:"show_debug_info"`
	ShowDebugFootprints bool   `json:"show_debug_footprints"`
	DebugServerAddr     string `json:"debug_server_addr"` // Vazio desativa o servidor
}

// DefaultConfig retorna a configuração padrão.
func DefaultConfig() *Config {
	return &Config{
		WindowWidth:  1280,
		WindowHeight: 720,
		WindowTitle:  "CarnageVision",
		Fullscreen:   false,
		TargetFPS:    60,

		MapDatabase: "demo",
		MapSeed:     1997,

		ViewBlocks:      14,
		CacheBlocks:     32,
		FullMapMesh:     false,
		DrawMapLayers:   [MapLayersCount]bool{true, true, true, true, true, true},
		MesherThreads:   4,
		DrawOrder:       DrawOrderDynamicFirst,
		SpriteBlending:  true,
		VertexCachePage: 1024 * 1024,
		VertexCacheMax:  8,

		CameraSpeed:  12.0,
		ZoomSpeed:    2.0,
		CameraHeight: 14.0,

		Pedestrians: 60,
		Vehicles:    20,

		ShowDebugInfo:       true,
		ShowDebugFootprints: false,
		DebugServerAddr:     "127.0.0.1:8090",
	}
}

// Validate verifica combinações que o renderizador não aceita.
func (c *Config) Validate() error {
	if c.ViewBlocks <= 0 {
		return fmt.Errorf("view_blocks deve ser positivo: %d", c.ViewBlocks)
	}
	if c.CacheBlocks < c.ViewBlocks {
		return fmt.Errorf("cache_blocks (%d) menor que view_blocks (%d)", c.CacheBlocks, c.ViewBlocks)
	}
	if c.DrawOrder != DrawOrderDynamicFirst && c.DrawOrder != DrawOrderStaticFirst {
		return fmt.Errorf("draw_order desconhecido: %q", c.DrawOrder)
	}
	if c.VertexCachePage <= 0 || c.VertexCacheMax <= 0 {
		return fmt.Errorf("cache de vértices inválido: page=%d max=%d", c.VertexCachePage, c.VertexCacheMax)
	}
	return nil
}

// Dir retorna a pasta do executável, onde ficam config.json, style.json e saves/.
func Dir() string {
	execPath, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(execPath)
}

func configPath() string {
	return filepath.Join(Dir(), "config.json")
}

// Load carrega as configurações de config.json ao lado do executável.
// Se o arquivo não existir ou for inválido, retorna as configurações padrão.
func Load() *Config {
	cfg, err := LoadFile(configPath())
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// LoadFile carrega um arquivo específico sobre os valores padrão.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config inválido em %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save salva as configurações em um arquivo JSON.
func (c *Config) Save() error {
	return c.SaveFile(configPath())
}

// SaveFile salva as configurações no caminho informado.
func (c *Config) SaveFile(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
