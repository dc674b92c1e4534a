package debugnet

import (
	"fmt"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub gerencia as conexões WebSocket ativas dos consoles.
type Hub struct {
	clients    map[*websocket.Conn]*sync.Mutex
	broadcast  chan []byte
	unregister chan *websocket.Conn
	done       chan struct{}
	mu         sync.Mutex
	closed     bool // protegido por mu
}

func newHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]*sync.Mutex),
		broadcast:  make(chan []byte, 256),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
	}
}

func (h *Hub) run() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] [Hub] Recuperado de pânico fatal: %v", r)
		}
	}()

	for {
		select {
		case <-h.done:
			h.closeAll()
			return
		case client := <-h.unregister:
			h.mu.Lock()
			if lock, ok := h.clients[client]; ok {
				lock.Lock()
				delete(h.clients, client)
				client.Close()
				lock.Unlock()
				log.Printf("[Hub] Console desregistrado: %s", client.RemoteAddr())
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			// lista de clientes para escrever fora do lock do hub
			type clientEntry struct {
				conn *websocket.Conn
				lock *sync.Mutex
			}
			targets := make([]clientEntry, 0, len(h.clients))
			for c, l := range h.clients {
				targets = append(targets, clientEntry{c, l})
			}
			h.mu.Unlock()

			for _, target := range targets {
				target.lock.Lock()
				err := target.conn.WriteMessage(websocket.BinaryMessage, message)
				target.lock.Unlock()
				if err != nil {
					log.Printf("[Hub] Erro ao enviar para %s: %v", target.conn.RemoteAddr(), err)
					h.mu.Lock()
					delete(h.clients, target.conn)
					h.mu.Unlock()
					target.conn.Close()
				}
			}
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c, lock := range h.clients {
		lock.Lock()
		c.Close()
		lock.Unlock()
		delete(h.clients, c)
	}
}

// Register adiciona a conexão. Falso se o hub já parou.
// O registro é síncrono para que WriteSafe funcione logo em seguida.
func (h *Hub) Register(conn *websocket.Conn) bool {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return false
	}
	select {
	case <-h.done:
		h.mu.Unlock()
		return false
	default:
	}
	h.clients[conn] = &sync.Mutex{}
	h.mu.Unlock()
	log.Printf("[Hub] Console registrado: %s", conn.RemoteAddr())
	return true
}

// Unregister remove e fecha a conexão.
func (h *Hub) Unregister(conn *websocket.Conn) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// WriteSafe garante que apenas uma goroutine escreva no WebSocket por vez
func (h *Hub) WriteSafe(conn *websocket.Conn, messageType int, data []byte) error {
	h.mu.Lock()
	lock, ok := h.clients[conn]
	h.mu.Unlock()

	if !ok {
		return fmt.Errorf("console não encontrado no hub")
	}

	lock.Lock()
	defer lock.Unlock()
	return conn.WriteMessage(messageType, data)
}

// Broadcast envia para todos os consoles. Descarta a mensagem se o buffer estiver cheio.
func (h *Hub) Broadcast(data []byte) bool {
	select {
	case h.broadcast <- data:
		return true
	default:
		return false
	}
}

// ClientCount retorna o número de consoles conectados.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) stop() {
	close(h.done)
}
