package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config padrão inválido: %v", err)
	}
	if cfg.ViewBlocks != 14 || cfg.CacheBlocks != 32 {
		t.Errorf("janelas padrão = %d/%d, want 14/32", cfg.ViewBlocks, cfg.CacheBlocks)
	}
	for i, on := range cfg.DrawMapLayers {
		if !on {
			t.Errorf("camada %d desativada por padrão", i)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"padrão", func(*Config) {}, true},
		{"view zero", func(c *Config) { c.ViewBlocks = 0 }, false},
		{"cache menor que view", func(c *Config) { c.CacheBlocks = 10 }, false},
		{"ordem estática", func(c *Config) { c.DrawOrder = DrawOrderStaticFirst }, true},
		{"ordem desconhecida", func(c *Config) { c.DrawOrder = "random" }, false},
		{"cache de vértices vazio", func(c *Config) { c.VertexCacheMax = 0 }, false},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		err := cfg.Validate()
		if (err == nil) != tt.ok {
			t.Errorf("%s: Validate() = %v, want ok=%v", tt.name, err, tt.ok)
		}
	}
}

func TestSaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := DefaultConfig()
	cfg.FullMapMesh = true
	cfg.DrawMapLayers[3] = false
	if err := cfg.SaveFile(path); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !loaded.FullMapMesh || loaded.DrawMapLayers[3] {
		t.Errorf("valores não persistidos: full=%v layer3=%v", loaded.FullMapMesh, loaded.DrawMapLayers[3])
	}
}

func TestLoadFilePartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"view_blocks": 10}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.ViewBlocks != 10 || cfg.CacheBlocks != 32 {
		t.Errorf("janelas = %d/%d, want 10/32", cfg.ViewBlocks, cfg.CacheBlocks)
	}
}
