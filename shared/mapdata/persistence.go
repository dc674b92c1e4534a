package mapdata

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	ErrNoDatabase = errors.New("banco de dados não inicializado")
	ErrNoCity     = errors.New("cidade não encontrada no banco")
)

// ChunkSize é o lado, em tiles, de um chunk persistido.
const ChunkSize = 16

// ChunkModel representa o esquema do banco de dados para um chunk 16x16 de um nível.
type ChunkModel struct {
	ID        string `gorm:"primaryKey"` // "X_Y_Z"
	X, Y, Z   int    `gorm:"index:idx_pos"`
	Data      []byte // blocos serializados em GOB
	UpdatedAt time.Time
}

// CityMetadata armazena informações globais da cidade.
type CityMetadata struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

// StyleModel guarda o StyleData serializado.
type StyleModel struct {
	Name string `gorm:"primaryKey"`
	Data []byte
}

const CurrentFormatVersion = 1

// DatabasePath retorna o caminho do save de uma cidade.
func DatabasePath(dir, name string) string {
	return filepath.Join(dir, fmt.Sprintf("%s.cv", name))
}

// OpenDatabase abre (ou cria) o banco SQLite da cidade e roda as migrações.
func (m *CityMap) OpenDatabase(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	dbPath := DatabasePath(dir, m.Name)

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("falha ao conectar no SQLite: %w", err)
	}
	if err := db.AutoMigrate(&ChunkModel{}, &CityMetadata{}, &StyleModel{}); err != nil {
		return fmt.Errorf("falha na migração do banco: %w", err)
	}

	m.DB = db
	log.Printf("[Persistence] Banco de dados SQLite aberto: %s", dbPath)
	return nil
}

// Close fecha a conexão com o banco.
func (m *CityMap) Close() error {
	if m.DB == nil {
		return nil
	}
	sqlDB, err := m.DB.DB()
	if err != nil {
		return err
	}
	m.DB = nil
	return sqlDB.Close()
}

func chunkID(x, y, z int) string {
	return fmt.Sprintf("%d_%d_%d", x, y, z)
}

// SaveCity grava todos os chunks não vazios, o estilo e os metadados numa única transação.
func (m *CityMap) SaveCity() error {
	if m.DB == nil {
		return ErrNoDatabase
	}

	m.Mu.RLock()
	defer m.Mu.RUnlock()

	var styleBuf bytes.Buffer
	if err := gob.NewEncoder(&styleBuf).Encode(m.Style); err != nil {
		return fmt.Errorf("falha ao serializar estilo: %w", err)
	}

	saved := 0
	err := m.DB.Transaction(func(tx *gorm.DB) error {
		// Chunks vazios de saves anteriores não podem sobreviver
		if err := tx.Where("1 = 1").Delete(&ChunkModel{}).Error; err != nil {
			return err
		}
		for z := 0; z < MapLayersCount; z++ {
			for cy := 0; cy < MapDimensions; cy += ChunkSize {
				for cx := 0; cx < MapDimensions; cx += ChunkSize {
					data, empty, err := m.encodeChunk(cx, cy, z)
					if err != nil {
						return err
					}
					if empty {
						continue
					}
					model := ChunkModel{ID: chunkID(cx, cy, z), X: cx, Y: cy, Z: z, Data: data}
					if err := tx.Save(&model).Error; err != nil {
						return fmt.Errorf("falha ao salvar chunk %s: %w", model.ID, err)
					}
					saved++
				}
			}
		}
		if err := tx.Save(&StyleModel{Name: m.Name, Data: styleBuf.Bytes()}).Error; err != nil {
			return err
		}
		meta := []CityMetadata{
			{Key: "FormatVersion", Value: fmt.Sprint(CurrentFormatVersion)},
			{Key: "CityName", Value: m.Name},
			{Key: "Revision", Value: fmt.Sprint(m.Revision)},
		}
		for i := range meta {
			if err := tx.Save(&meta[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("[Persistence] ERRO ao salvar cidade %s: %v", m.Name, err)
		return err
	}
	log.Printf("[Persistence] Cidade %s salva: %d chunks persistidos.", m.Name, saved)
	return nil
}

func (m *CityMap) encodeChunk(cx, cy, z int) ([]byte, bool, error) {
	var tiles [ChunkSize][ChunkSize]BlockStyle
	empty := true
	for y := 0; y < ChunkSize; y++ {
		copy(tiles[y][:], m.row(z, cy+y)[cx:cx+ChunkSize])
		for x := 0; x < ChunkSize; x++ {
			if !tiles[y][x].IsEmpty() {
				empty = false
			}
		}
	}
	if empty {
		return nil, true, nil
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&tiles); err != nil {
		return nil, false, fmt.Errorf("falha GOB no chunk %s: %w", chunkID(cx, cy, z), err)
	}
	return buf.Bytes(), false, nil
}

// LoadCity abre saves/<nome>.cv e carrega o mapa inteiro para a memória.
func LoadCity(dir, name string) (*CityMap, error) {
	if _, err := os.Stat(DatabasePath(dir, name)); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoCity, name)
	}

	m := NewCityMap(name, nil)
	if err := m.OpenDatabase(dir); err != nil {
		return nil, err
	}

	var style StyleModel
	if err := m.DB.First(&style, "name = ?", name).Error; err != nil {
		m.Close()
		return nil, fmt.Errorf("%w: %s", ErrNoCity, name)
	}
	sd := NewStyleData()
	if err := gob.NewDecoder(bytes.NewReader(style.Data)).Decode(sd); err != nil {
		m.Close()
		return nil, fmt.Errorf("estilo corrompido: %w", err)
	}
	m.Style = sd

	var chunks []ChunkModel
	if err := m.DB.Find(&chunks).Error; err != nil {
		m.Close()
		return nil, err
	}
	for _, c := range chunks {
		if err := m.decodeChunk(c); err != nil {
			m.Close()
			return nil, err
		}
	}

	var rev CityMetadata
	if err := m.DB.First(&rev, "key = ?", "Revision").Error; err == nil {
		fmt.Sscan(rev.Value, &m.Revision)
	}
	log.Printf("[Persistence] Cidade %s carregada: %d chunks.", name, len(chunks))
	return m, nil
}

func (m *CityMap) decodeChunk(c ChunkModel) error {
	if c.X < 0 || c.Y < 0 || c.X+ChunkSize > MapDimensions || c.Y+ChunkSize > MapDimensions || c.Z < 0 || c.Z >= MapLayersCount {
		return fmt.Errorf("chunk fora do mapa: %s", c.ID)
	}
	var tiles [ChunkSize][ChunkSize]BlockStyle
	if err := gob.NewDecoder(bytes.NewReader(c.Data)).Decode(&tiles); err != nil {
		return fmt.Errorf("chunk %s corrompido: %w", c.ID, err)
	}
	for y := 0; y < ChunkSize; y++ {
		copy(m.row(c.Z, c.Y+y)[c.X:c.X+ChunkSize], tiles[y][:])
	}
	return nil
}
