package gpu

import (
	"errors"
	"fmt"
	"log"
)

var (
	// ErrCapacityExceeded indica que todos os buffers permitidos estão cheios neste frame.
	ErrCapacityExceeded = errors.New("cache de vértices transitórios sem capacidade")
	ErrEmptyAllocation  = errors.New("alocação transitória vazia")
)

// allocAlignment é o alinhamento do início de cada alocação dentro do buffer.
const allocAlignment = 16

// TransientBuffer é uma região alocada no cache. Vale até o próximo FlushCache.
type TransientBuffer struct {
	Buffer BufferID
	Offset int
}

type cachePage struct {
	id   BufferID
	size int
	used int
}

// CacheStats resume o uso do cache no frame atual.
type CacheStats struct {
	VertexPages, IndexPages int
	VertexBytes, IndexBytes int
}

// TransientVertexCache distribui regiões de buffers dinâmicos para geometria de um único frame.
// Cada tipo de conteúdo tem sua lista de buffers; quando o atual enche, passa ao próximo
// (criando até maxPages). FlushCache volta todos para o início e descarta o conteúdo antigo.
type TransientVertexCache struct {
	device   Device
	pageSize int
	maxPages int

	pages   [2][]cachePage
	current [2]int
}

// NewTransientVertexCache cria o cache. Nenhum buffer é criado antes de Init.
func NewTransientVertexCache(device Device, pageSize, maxPages int) *TransientVertexCache {
	return &TransientVertexCache{
		device:   device,
		pageSize: pageSize,
		maxPages: maxPages,
	}
}

// Init cria o primeiro buffer de vértices e de índices.
func (c *TransientVertexCache) Init() error {
	if c.pageSize <= 0 || c.maxPages <= 0 {
		return fmt.Errorf("cache transitório inválido: page=%d max=%d", c.pageSize, c.maxPages)
	}
	for _, kind := range []BufferKind{BufferVertex, BufferIndex} {
		if _, err := c.addPage(kind, c.pageSize); err != nil {
			c.Deinit()
			return err
		}
	}
	return nil
}

// Deinit destrói todos os buffers.
func (c *TransientVertexCache) Deinit() {
	for kind := range c.pages {
		for _, p := range c.pages[kind] {
			c.device.DestroyBuffer(p.id)
		}
		c.pages[kind] = nil
		c.current[kind] = 0
	}
}

// AllocVertex copia os dados para um buffer de vértices transitório.
func (c *TransientVertexCache) AllocVertex(data []byte) (TransientBuffer, error) {
	return c.alloc(BufferVertex, data)
}

// AllocIndex copia os dados para um buffer de índices transitório.
func (c *TransientVertexCache) AllocIndex(data []byte) (TransientBuffer, error) {
	return c.alloc(BufferIndex, data)
}

func alignUp(n int) int {
	return (n + allocAlignment - 1) &^ (allocAlignment - 1)
}

func (c *TransientVertexCache) alloc(kind BufferKind, data []byte) (TransientBuffer, error) {
	size := len(data)
	if size == 0 {
		return TransientBuffer{}, ErrEmptyAllocation
	}

	pages := c.pages[kind]
	for i := c.current[kind]; i < len(pages); i++ {
		p := &pages[i]
		offset := alignUp(p.used)
		if offset+size > p.size {
			continue
		}
		if err := c.device.SubData(p.id, offset, data); err != nil {
			return TransientBuffer{}, err
		}
		p.used = offset + size
		c.current[kind] = i
		return TransientBuffer{Buffer: p.id, Offset: offset}, nil
	}

	if len(pages) >= c.maxPages {
		// No limite, um buffer ainda vazio neste frame é realocado com o tamanho pedido
		for i := c.current[kind]; i < len(pages); i++ {
			p := &pages[i]
			if p.used != 0 {
				continue
			}
			if err := c.device.SetupBuffer(p.id, size, nil); err != nil {
				return TransientBuffer{}, fmt.Errorf("falha ao aumentar buffer transitório %d: %w", p.id, err)
			}
			log.Printf("[VertexCache] Buffer %d aumentado: %d -> %d bytes", p.id, p.size, size)
			p.size = size
			if err := c.device.SubData(p.id, 0, data); err != nil {
				return TransientBuffer{}, err
			}
			p.used = size
			c.current[kind] = i
			return TransientBuffer{Buffer: p.id, Offset: 0}, nil
		}
		return TransientBuffer{}, fmt.Errorf("%w: %d bytes (%d buffers em uso)", ErrCapacityExceeded, size, len(pages))
	}

	// Alocações maiores que a página recebem um buffer do tamanho exato
	p, err := c.addPage(kind, max(c.pageSize, size))
	if err != nil {
		return TransientBuffer{}, err
	}
	if err := c.device.SubData(p.id, 0, data); err != nil {
		return TransientBuffer{}, err
	}
	last := len(c.pages[kind]) - 1
	c.pages[kind][last].used = size
	c.current[kind] = last
	return TransientBuffer{Buffer: p.id, Offset: 0}, nil
}

func (c *TransientVertexCache) addPage(kind BufferKind, size int) (cachePage, error) {
	id, err := c.device.CreateBuffer(kind, UsageDynamic, size)
	if err != nil {
		return cachePage{}, fmt.Errorf("falha ao criar buffer transitório (%d bytes): %w", size, err)
	}
	p := cachePage{id: id, size: size}
	c.pages[kind] = append(c.pages[kind], p)
	if len(c.pages[kind]) > 1 {
		log.Printf("[VertexCache] Novo buffer transitório: tipo=%d tamanho=%d total=%d", kind, size, len(c.pages[kind]))
	}
	return p, nil
}

// FlushCache volta todos os buffers para o início. Os buffers usados no frame são
// realocados sem dados, de modo que a GPU nunca lê memória sendo sobrescrita.
func (c *TransientVertexCache) FlushCache() {
	for kind := range c.pages {
		for i := range c.pages[kind] {
			p := &c.pages[kind][i]
			if p.used == 0 {
				continue
			}
			if err := c.device.SetupBuffer(p.id, p.size, nil); err != nil {
				log.Printf("[VertexCache] ERRO ao descartar buffer %d: %v", p.id, err)
			}
			p.used = 0
		}
		c.current[kind] = 0
	}
}

// Stats retorna o uso atual.
func (c *TransientVertexCache) Stats() CacheStats {
	var s CacheStats
	s.VertexPages = len(c.pages[BufferVertex])
	s.IndexPages = len(c.pages[BufferIndex])
	for _, p := range c.pages[BufferVertex] {
		s.VertexBytes += p.used
	}
	for _, p := range c.pages[BufferIndex] {
		s.IndexBytes += p.used
	}
	return s
}
