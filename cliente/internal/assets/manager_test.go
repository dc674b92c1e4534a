package assets

import (
	"os"
	"path/filepath"
	"testing"

	"CarnageVision/shared/mapdata"
	"CarnageVision/shared/util"
)

func TestMatchToken(t *testing.T) {
	tests := []struct {
		pattern string
		query   string
		want    bool
	}{
		{"*", "anything", true},
		{"SPRITE:*:*", "SPRITE:CAR:2", true},
		{"SPRITE:CAR:*", "SPRITE:CAR:2", true},
		{"SPRITE:car:2", "SPRITE:CAR:2", true},
		{"SPRITE:CAR:*", "SPRITE:PED:2", false},
		{"CAR:*:*", "SPRITE:CAR:2", false},
		{"CAR:sedan:*", "CAR:sedan", false},
		{"CAR:*:3", "CAR:sedan:3", true},
	}

	for _, tt := range tests {
		got := matchToken(tt.pattern, tt.query)
		if got != tt.want {
			t.Errorf("matchToken(%q, %q) = %v, want %v", tt.pattern, tt.query, got, tt.want)
		}
	}
}

func TestSpecificityScore(t *testing.T) {
	tests := []struct {
		pattern string
		want    int
	}{
		{"*", 0},
		{"SPRITE:*:*", 1},
		{"SPRITE:CAR:*", 2},
		{"SPRITE:CAR:4", 3},
	}

	for _, tt := range tests {
		got := specificityScore(tt.pattern)
		if got != tt.want {
			t.Errorf("specificityScore(%q) = %d, want %d", tt.pattern, got, tt.want)
		}
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"#102030", util.PackColor(0x10, 0x20, 0x30, 0xFF), false},
		{"FFFFFF80", util.PackColor(0xFF, 0xFF, 0xFF, 0x80), false},
		{"#12345", 0, true},
		{"#GGGGGG", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColor(%q) erro = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %#x, want %#x", tt.in, got, tt.want)
		}
	}
}

func TestNewManagerWithoutFile(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	style := mapdata.DefaultStyle()
	n, err := m.Apply(style)
	if err != nil || n != 0 {
		t.Errorf("Apply sem regras = %d, %v", n, err)
	}
}

func writeStyle(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "style.json"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestManagerApply(t *testing.T) {
	dir := writeStyle(t, `{
		"sprites": [
			{"tokens": ["SPRITE:CAR:*"], "color": "#102030"},
			{"tokens": ["SPRITE:CAR:1"], "color": "#FFFFFF80", "width": 30}
		],
		"cars": [
			{"tokens": ["CAR:sedan:*"], "maxSpeed": 9},
			{"tokens": ["CAR:cabrio:*"], "convertible": "hard"}
		]
	}`)
	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	style := mapdata.DefaultStyle()
	n, err := m.Apply(style)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if n != 12 {
		t.Errorf("Apply alterou %d itens, want 12", n)
	}

	car0 := style.Sprites[style.SpriteIndex(mapdata.SpriteCar, 0)]
	if car0.Color != util.PackColor(0x10, 0x20, 0x30, 0xFF) {
		t.Errorf("cor do carro 0 = %#x", car0.Color)
	}
	car1 := style.Sprites[style.SpriteIndex(mapdata.SpriteCar, 1)]
	if car1.Color != util.PackColor(0xFF, 0xFF, 0xFF, 0x80) || car1.Width != 30 {
		t.Errorf("regra mais específica não venceu: %+v", car1)
	}
	ped := style.Sprites[style.SpriteIndex(mapdata.SpritePed, 0)]
	if ped.Color != mapdata.DefaultStyle().Sprites[style.SpriteIndex(mapdata.SpritePed, 0)].Color {
		t.Errorf("pedestre não deveria mudar")
	}

	if style.Cars[0].MaxSpeed != 9 {
		t.Errorf("MaxSpeed do sedan = %v", style.Cars[0].MaxSpeed)
	}
	if style.Cars[2].Convertible != mapdata.HardTop || style.Cars[2].MaxSpeed != 6 {
		t.Errorf("cabrio = %+v", style.Cars[2])
	}
}

func TestManagerApplyInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"teto", `{"cars": [{"tokens": ["CAR:*:*"], "convertible": "glass"}]}`},
		{"cor", `{"sprites": [{"tokens": ["SPRITE:PED:*"], "color": "red"}]}`},
	}

	for _, tt := range tests {
		m, err := NewManager(writeStyle(t, tt.body))
		if err != nil {
			t.Fatalf("%s: NewManager: %v", tt.name, err)
		}
		if _, err := m.Apply(mapdata.DefaultStyle()); err == nil {
			t.Errorf("%s: Apply deveria falhar", tt.name)
		}
	}
}

func TestNewManagerBadJSON(t *testing.T) {
	if _, err := NewManager(writeStyle(t, `{"sprites": [`)); err == nil {
		t.Errorf("JSON inválido deveria falhar")
	}
}
