package util

import (
	"errors"
	"sync/atomic"
)

var (
	ErrRingFull  = errors.New("buffer circular cheio")
	ErrRingEmpty = errors.New("buffer circular vazio")
)

// RingBuffer é um buffer circular de um produtor e um consumidor, sem locks.
// Usado para entregar a telemetria dos frames ao servidor de debug sem travar o loop de render.
type RingBuffer[T any] struct {
	entries    []T
	mask       uint64
	producerID atomic.Uint64
	consumerID atomic.Uint64
}

// NewRingBuffer cria um buffer com a capacidade dada (arredondada para potência de 2).
func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	size := nextPowerOfTwo(capacity)
	return &RingBuffer[T]{
		entries: make([]T, size),
		mask:    uint64(size - 1),
	}
}

// Enqueue adiciona um item. Retorna ErrRingFull se não houver espaço.
func (r *RingBuffer[T]) Enqueue(item T) error {
	next := r.producerID.Load()
	if next-r.consumerID.Load() >= uint64(len(r.entries)) {
		return ErrRingFull
	}
	r.entries[next&r.mask] = item
	r.producerID.Store(next + 1)
	return nil
}

// Dequeue remove o item mais antigo. Retorna ErrRingEmpty se vazio.
func (r *RingBuffer[T]) Dequeue() (T, error) {
	var zero T
	consumer := r.consumerID.Load()
	if consumer >= r.producerID.Load() {
		return zero, ErrRingEmpty
	}
	item := r.entries[consumer&r.mask]
	r.entries[consumer&r.mask] = zero
	r.consumerID.Store(consumer + 1)
	return item, nil
}

// Len retorna quantos itens estão pendentes.
func (r *RingBuffer[T]) Len() int {
	return int(r.producerID.Load() - r.consumerID.Load())
}

// Cap retorna a capacidade real.
func (r *RingBuffer[T]) Cap() int {
	return len(r.entries)
}

func nextPowerOfTwo(x int) int {
	res := 2
	for res < x {
		res <<= 1
	}
	return res
}
