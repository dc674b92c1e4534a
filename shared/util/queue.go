package util

import "sync"

// CoalescingQueue é uma fila thread-safe em que cada chave aparece uma única vez.
// Um novo Push para uma chave já enfileirada substitui o valor e mantém a posição,
// então o consumidor vê apenas o último estado pedido para cada chave.
type CoalescingQueue[K comparable, V any] struct {
	mu    sync.Mutex
	keys  []K
	items map[K]V
}

// NewCoalescingQueue cria uma fila vazia.
func NewCoalescingQueue[K comparable, V any]() *CoalescingQueue[K, V] {
	return &CoalescingQueue[K, V]{
		keys:  make([]K, 0, 16),
		items: make(map[K]V),
	}
}

// Push enfileira o valor. Retorna true se a chave era nova.
func (q *CoalescingQueue[K, V]) Push(key K, value V) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	_, exists := q.items[key]
	q.items[key] = value
	if !exists {
		q.keys = append(q.keys, key)
	}
	return !exists
}

// Drain remove todos os itens, na ordem em que as chaves entraram.
func (q *CoalescingQueue[K, V]) Drain() []V {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.keys) == 0 {
		return nil
	}
	out := make([]V, 0, len(q.keys))
	for _, k := range q.keys {
		out = append(out, q.items[k])
	}
	q.keys = q.keys[:0]
	clear(q.items)
	return out
}

// Len retorna o número de chaves pendentes.
func (q *CoalescingQueue[K, V]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.keys)
}
