package assets

import (
	"fmt"
	"image"
	"log"
	"sync"

	"CarnageVision/cliente/internal/gpu"
)

// TextureUploader envia imagens registradas para a GPU.
type TextureUploader interface {
	UploadTexture(id gpu.TextureID, img *image.RGBA)
}

// TextureRegistry emite IDs estáveis para texturas. O ID é decidido no registro
// e nunca muda, mesmo que a imagem seja reenviada.
type TextureRegistry struct {
	mu     sync.RWMutex
	byName map[string]gpu.TextureID
	names  []string
	images []*image.RGBA // índice = id-1
}

// NewTextureRegistry cria um registro vazio.
func NewTextureRegistry() *TextureRegistry {
	return &TextureRegistry{byName: make(map[string]gpu.TextureID)}
}

// Register adiciona uma imagem com nome único e retorna seu ID.
func (r *TextureRegistry) Register(name string, img *image.RGBA) (gpu.TextureID, error) {
	if img == nil {
		return gpu.NoTexture, fmt.Errorf("textura %q sem imagem", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[name]; ok {
		return gpu.NoTexture, fmt.Errorf("textura %q já registrada", name)
	}
	r.images = append(r.images, img)
	r.names = append(r.names, name)
	id := gpu.TextureID(len(r.images))
	r.byName[name] = id
	return id, nil
}

// Lookup busca o ID pelo nome.
func (r *TextureRegistry) Lookup(name string) (gpu.TextureID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[name]
	return id, ok
}

// Image retorna a imagem de um ID.
func (r *TextureRegistry) Image(id gpu.TextureID) (*image.RGBA, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id == gpu.NoTexture || int(id) > len(r.images) {
		return nil, false
	}
	return r.images[id-1], true
}

func (r *TextureRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.images)
}

// UploadAll envia todas as texturas em ordem de ID.
func (r *TextureRegistry) UploadAll(u TextureUploader) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i, img := range r.images {
		u.UploadTexture(gpu.TextureID(i+1), img)
	}
	log.Printf("[Assets] %d texturas enviadas para a GPU", len(r.images))
}
