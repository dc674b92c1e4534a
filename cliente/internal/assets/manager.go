package assets

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"CarnageVision/shared/mapdata"
	"CarnageVision/shared/util"
)

// --- Estruturas JSON ---

// SpriteOverride altera sprites cujo token casar.
// Formato do token: "SPRITE:TIPO:N" (ex.: "SPRITE:CAR:2", "SPRITE:PED:*").
type SpriteOverride struct {
	Tokens  []string `json:"tokens"`
	Color   string   `json:"color,omitempty"` // "#RRGGBB" ou "#RRGGBBAA"
	Width   *int     `json:"width,omitempty"`
	Height  *int     `json:"height,omitempty"`
	Comment string   `json:"comment,omitempty"`
}

// CarOverride altera classes de veículos.
// Formato do token: "CAR:NOME:MODELO" (ex.: "CAR:sedan:*").
type CarOverride struct {
	Tokens      []string `json:"tokens"`
	Convertible string   `json:"convertible,omitempty"` // hard, open, hard_animated, open_animated
	MaxSpeed    *float32 `json:"maxSpeed,omitempty"`
	Comment     string   `json:"comment,omitempty"`
}

// StyleOverrideConfig é o root do style.json
type StyleOverrideConfig struct {
	Sprites []SpriteOverride `json:"sprites"`
	Cars    []CarOverride    `json:"cars"`
}

var spriteTypeTokens = [mapdata.SpriteTypeCount]string{
	"ARROW", "DIGIT", "BOAT", "BOX", "BUS", "CAR", "OBJECT", "PED", "SPEEDO", "TANK",
	"TRAFFIC_LIGHT", "TRAIN", "TRDOOR", "BIKE", "TRAM", "WCAR", "WBUS", "EX", "TUMCAR",
	"TUMTRUCK", "FERRY",
}

var convertibleTokens = map[string]mapdata.Convertible{
	"hard":          mapdata.HardTop,
	"open":          mapdata.OpenTop,
	"hard_animated": mapdata.HardTopAnimated,
	"open_animated": mapdata.OpenTopAnimated,
}

// --- Manager ---

// Manager guarda as regras de estilo carregadas e as aplica sobre o StyleData.
type Manager struct {
	sprites []SpriteOverride
	cars    []CarOverride
}

// NewManager carrega style.json de configDir. O arquivo é opcional:
// sem ele o manager não altera nada.
func NewManager(configDir string) (*Manager, error) {
	m := &Manager{}

	data, err := os.ReadFile(filepath.Join(configDir, "style.json"))
	if errors.Is(err, fs.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("falha ao ler style.json: %w", err)
	}
	var conf StyleOverrideConfig
	if err := json.Unmarshal(data, &conf); err != nil {
		return nil, fmt.Errorf("falha ao parsear style.json: %w", err)
	}
	m.sprites = conf.Sprites
	m.cars = conf.Cars
	return m, nil
}

// --- Wildcard Matching ---

// matchToken compara um token de consulta contra um padrão com suporte a wildcards (*)
// O wildcard '*' em qualquer segmento aceita qualquer valor
func matchToken(pattern, query string) bool {
	if pattern == "*" {
		return true
	}
	patParts := strings.Split(pattern, ":")
	queryParts := strings.Split(query, ":")
	if len(patParts) != len(queryParts) {
		return false
	}
	for i := range patParts {
		if patParts[i] == "*" {
			continue
		}
		if !strings.EqualFold(patParts[i], queryParts[i]) {
			return false
		}
	}
	return true
}

// specificityScore conta os segmentos que NÃO são wildcard
func specificityScore(pattern string) int {
	if pattern == "*" {
		return 0
	}
	score := 0
	for _, p := range strings.Split(pattern, ":") {
		if p != "*" {
			score++
		}
	}
	return score
}

// bestMatch retorna o índice da regra mais específica para o token, ou -1.
func bestMatch(tokens func(i int) []string, n int, query string) int {
	best, bestScore := -1, -1
	for i := 0; i < n; i++ {
		for _, pat := range tokens(i) {
			if matchToken(pat, query) {
				if score := specificityScore(pat); score > bestScore {
					best, bestScore = i, score
				}
			}
		}
	}
	return best
}

// --- Consultas Públicas ---

// SpriteToken monta o token de consulta de um sprite.
func SpriteToken(t mapdata.SpriteType, n int) string {
	if t >= mapdata.SpriteTypeCount {
		return fmt.Sprintf("SPRITE:%d:%d", t, n)
	}
	return "SPRITE:" + spriteTypeTokens[t] + ":" + strconv.Itoa(n)
}

// CarToken monta o token de consulta de um veículo.
func CarToken(c *mapdata.CarStyle) string {
	return "CAR:" + c.Name + ":" + strconv.Itoa(c.Model)
}

// GetSpriteOverride retorna a regra mais específica para o token, ou nil.
func (m *Manager) GetSpriteOverride(token string) *SpriteOverride {
	i := bestMatch(func(i int) []string { return m.sprites[i].Tokens }, len(m.sprites), token)
	if i < 0 {
		return nil
	}
	return &m.sprites[i]
}

// GetCarOverride retorna a regra mais específica para o token, ou nil.
func (m *Manager) GetCarOverride(token string) *CarOverride {
	i := bestMatch(func(i int) []string { return m.cars[i].Tokens }, len(m.cars), token)
	if i < 0 {
		return nil
	}
	return &m.cars[i]
}

// Apply altera o estilo conforme as regras. Retorna quantos itens mudaram.
func (m *Manager) Apply(style *mapdata.StyleData) (int, error) {
	changed := 0

	index := 0
	for t := mapdata.SpriteType(0); t < mapdata.SpriteTypeCount; t++ {
		for n := 0; n < style.SpriteNumbers[t]; n++ {
			if index >= len(style.Sprites) {
				return changed, fmt.Errorf("contagem de sprites inconsistente no tipo %s", spriteTypeTokens[t])
			}
			if o := m.GetSpriteOverride(SpriteToken(t, n)); o != nil {
				if err := o.apply(&style.Sprites[index]); err != nil {
					return changed, fmt.Errorf("sprite %s: %w", SpriteToken(t, n), err)
				}
				changed++
			}
			index++
		}
	}

	for i := range style.Cars {
		car := &style.Cars[i]
		if o := m.GetCarOverride(CarToken(car)); o != nil {
			if err := o.apply(car); err != nil {
				return changed, fmt.Errorf("veículo %s: %w", CarToken(car), err)
			}
			changed++
		}
	}
	return changed, nil
}

func (o *SpriteOverride) apply(s *mapdata.SpriteStyle) error {
	if o.Color != "" {
		c, err := ParseColor(o.Color)
		if err != nil {
			return err
		}
		s.Color = c
	}
	if o.Width != nil {
		s.Width = *o.Width
	}
	if o.Height != nil {
		s.Height = *o.Height
	}
	return nil
}

func (o *CarOverride) apply(c *mapdata.CarStyle) error {
	if o.Convertible != "" {
		conv, ok := convertibleTokens[o.Convertible]
		if !ok {
			return fmt.Errorf("teto desconhecido: %q", o.Convertible)
		}
		c.Convertible = conv
	}
	if o.MaxSpeed != nil {
		c.MaxSpeed = *o.MaxSpeed
	}
	return nil
}

// ParseColor converte "#RRGGBB" ou "#RRGGBBAA" em cor empacotada.
func ParseColor(s string) (uint32, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return 0, fmt.Errorf("cor inválida: %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("cor inválida: %q: %w", s, err)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xFF
	}
	return util.PackColor(uint8(v>>24), uint8(v>>16), uint8(v>>8), uint8(v)), nil
}
