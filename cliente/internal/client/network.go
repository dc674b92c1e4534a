// Package client conecta ao canal de debug de um cliente CarnageVision em execução.
package client

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"CarnageVision/shared/proto/cvnet"

	"github.com/gorilla/websocket"
)

// ErrNotConnected é retornado ao enviar sem conexão ativa.
var ErrNotConnected = errors.New("console não conectado")

// DebugClient lida com a comunicação com o servidor de debug do renderizador.
type DebugClient struct {
	conn      *websocket.Conn
	url       string
	connected bool
	mu        sync.RWMutex
	writeMu   sync.Mutex
	done      chan struct{}

	// Tentativas de conexão e intervalo entre elas
	MaxRetries int
	RetryDelay time.Duration

	// Callbacks
	OnStatus     func(msg string)
	OnTelemetry  func(t *cvnet.Telemetry)
	OnFlags      func(f *cvnet.RenderFlags)
	OnPong       func()
	OnDisconnect func(err error)
}

func NewDebugClient(url string) *DebugClient {
	return &DebugClient{
		url:        url,
		MaxRetries: 10,
		RetryDelay: 2 * time.Second,
		done:       make(chan struct{}),
	}
}

func (c *DebugClient) Connect() error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	var conn *websocket.Conn
	var err error
	for i := 0; i < c.MaxRetries; i++ {
		log.Printf("[Console] Tentativa de conexão %d/%d em %s...", i+1, c.MaxRetries, c.url)
		conn, _, err = dialer.Dial(c.url, nil)
		if err == nil {
			break
		}
		log.Printf("[Console] Renderizador ainda não está pronto: %v. Aguardando...", err)
		if i < c.MaxRetries-1 {
			time.Sleep(c.RetryDelay)
		}
	}
	if err != nil {
		return fmt.Errorf("falha ao conectar em %s após %d tentativas: %w", c.url, c.MaxRetries, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readLoop()
	return nil
}

func (c *DebugClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Done fecha quando a conexão termina.
func (c *DebugClient) Done() <-chan struct{} {
	return c.done
}

// SendCommand envia um comando ao renderizador.
func (c *DebugClient) SendCommand(cmd cvnet.Command) error {
	return c.send(cvnet.MsgCommand, cmd.Marshal())
}

func (c *DebugClient) Ping() error {
	return c.send(cvnet.MsgPing, nil)
}

func (c *DebugClient) Close() error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		return nil
	}
	c.writeMu.Lock()
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	return conn.Close()
}

func (c *DebugClient) send(t cvnet.MessageType, payload []byte) error {
	c.mu.RLock()
	conn, ok := c.conn, c.connected
	c.mu.RUnlock()
	if !ok {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	err := conn.WriteMessage(websocket.BinaryMessage, cvnet.Wrap(t, payload))
	c.writeMu.Unlock()
	if err != nil {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		return fmt.Errorf("erro ao enviar mensagem: %w", err)
	}
	return nil
}

func (c *DebugClient) readLoop() {
	var readErr error
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		c.conn.Close()
		close(c.done)
		if c.OnDisconnect != nil {
			c.OnDisconnect(readErr)
		}
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				readErr = err
			}
			return
		}

		var env cvnet.Envelope
		if err := env.Unmarshal(message); err != nil {
			log.Printf("[Console] Erro ao desempacotar envelope: %v", err)
			continue
		}
		c.handleMessage(&env)
	}
}

func (c *DebugClient) handleMessage(env *cvnet.Envelope) {
	switch env.Type {
	case cvnet.MsgStatus:
		var status cvnet.Status
		if err := status.Unmarshal(env.Payload); err == nil && c.OnStatus != nil {
			c.OnStatus(status.Message)
		}
	case cvnet.MsgTelemetry:
		var t cvnet.Telemetry
		if err := t.Unmarshal(env.Payload); err != nil {
			log.Printf("[Console] Telemetria inválida: %v", err)
			return
		}
		if c.OnTelemetry != nil {
			c.OnTelemetry(&t)
		}
	case cvnet.MsgFlags:
		var f cvnet.RenderFlags
		if err := f.Unmarshal(env.Payload); err != nil {
			log.Printf("[Console] Flags inválidas: %v", err)
			return
		}
		if c.OnFlags != nil {
			c.OnFlags(&f)
		}
	case cvnet.MsgPong:
		if c.OnPong != nil {
			c.OnPong()
		}
	}
}
