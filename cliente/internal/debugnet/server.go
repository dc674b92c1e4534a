// Package debugnet expõe os controles do renderizador para consoles remotos via WebSocket
// e publica a telemetria dos frames.
package debugnet

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"CarnageVision/shared/proto/cvnet"
	"CarnageVision/shared/util"

	"github.com/gorilla/websocket"
)

// Path é a rota do WebSocket de debug.
const Path = "/debug"

const (
	telemetryBuffer   = 64
	defaultPublishGap = 250 * time.Millisecond
	readLimit         = 64 * 1024
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type commandKey struct {
	kind  cvnet.CommandKind
	layer int32
	x, y  int32
}

// Server recebe comandos dos consoles e distribui a telemetria.
// Comandos repetidos entre dois frames são fundidos: vale o último.
type Server struct {
	// Intervalo entre publicações de telemetria.
	PublishInterval time.Duration

	hub       *Hub
	commands  *util.CoalescingQueue[commandKey, cvnet.Command]
	telemetry *util.RingBuffer[cvnet.Telemetry]
	dropped   atomic.Int64

	ln   net.Listener
	http *http.Server
	wg   sync.WaitGroup
	stop context.CancelFunc
}

// NewServer cria o servidor sem abrir a porta.
func NewServer() *Server {
	return &Server{
		PublishInterval: defaultPublishGap,
		hub:             newHub(),
		commands:        util.NewCoalescingQueue[commandKey, cvnet.Command](),
		telemetry:       util.NewRingBuffer[cvnet.Telemetry](telemetryBuffer),
	}
}

// Start abre a porta e inicia o hub e o publicador de telemetria.
func (s *Server) Start(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("falha ao abrir %s para o console de debug: %w", addr, err)
	}
	s.ln = ln

	mux := http.NewServeMux()
	mux.HandleFunc(Path, s.serveWs)
	s.http = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	ctx, s.stop = context.WithCancel(ctx)
	s.wg.Add(3)
	go func() {
		defer s.wg.Done()
		s.hub.run()
	}()
	go func() {
		defer s.wg.Done()
		s.publishLoop(ctx)
	}()
	go func() {
		defer s.wg.Done()
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[DebugNet] Servidor parou: %v", err)
		}
	}()

	log.Printf("[DebugNet] Console de debug em ws://%s%s", ln.Addr(), Path)
	return nil
}

// Addr retorna o endereço efetivo (útil com porta 0).
func (s *Server) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Close derruba as conexões e espera as goroutines.
func (s *Server) Close() error {
	if s.http == nil {
		return nil
	}
	s.stop()
	s.hub.stop()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := s.http.Shutdown(ctx)
	s.wg.Wait()
	s.http = nil
	return err
}

// Commands retira os comandos pendentes, na ordem em que chegaram.
func (s *Server) Commands() []cvnet.Command {
	return s.commands.Drain()
}

// PushTelemetry entrega o resumo de um frame. Nunca bloqueia; com o buffer cheio
// o frame é descartado.
func (s *Server) PushTelemetry(t cvnet.Telemetry) {
	if err := s.telemetry.Enqueue(t); err != nil {
		s.dropped.Add(1)
	}
}

// Dropped conta frames de telemetria descartados.
func (s *Server) Dropped() int64 {
	return s.dropped.Load()
}

// PublishFlags envia o estado dos controles para todos os consoles.
func (s *Server) PublishFlags(f cvnet.RenderFlags) {
	s.hub.Broadcast(cvnet.Wrap(cvnet.MsgFlags, f.Marshal()))
}

// ClientCount retorna o número de consoles conectados.
func (s *Server) ClientCount() int {
	return s.hub.ClientCount()
}

// publishLoop envia periodicamente o frame mais recente.
func (s *Server) publishLoop(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] [DebugNet] Publicador de telemetria: %v", r)
		}
	}()

	ticker := time.NewTicker(s.PublishInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var latest cvnet.Telemetry
			found := false
			for {
				t, err := s.telemetry.Dequeue()
				if err != nil {
					break
				}
				latest, found = t, true
			}
			if found && s.hub.ClientCount() > 0 {
				s.hub.Broadcast(cvnet.Wrap(cvnet.MsgTelemetry, latest.Marshal()))
			}
		}
	}
}

func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[DebugNet] Erro no upgrade do WebSocket: %v", err)
		return
	}
	defer conn.Close()
	if !s.hub.Register(conn) {
		return
	}
	defer s.hub.Unregister(conn)

	conn.SetReadLimit(readLimit)
	status := cvnet.Status{Message: "CarnageVision debug"}
	if err := s.hub.WriteSafe(conn, websocket.BinaryMessage, cvnet.Wrap(cvnet.MsgStatus, status.Marshal())); err != nil {
		log.Printf("[DebugNet] Erro ao enviar status: %v", err)
		return
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[DebugNet] Erro ao ler mensagem: %v", err)
			}
			return
		}
		var env cvnet.Envelope
		if err := env.Unmarshal(message); err != nil {
			log.Printf("[DebugNet] Erro ao desempacotar envelope: %v", err)
			continue
		}
		s.handleMessage(conn, &env)
	}
}

func (s *Server) handleMessage(conn *websocket.Conn, env *cvnet.Envelope) {
	switch env.Type {
	case cvnet.MsgCommand:
		var cmd cvnet.Command
		if err := cmd.Unmarshal(env.Payload); err != nil {
			log.Printf("[DebugNet] Comando inválido: %v", err)
			return
		}
		s.commands.Push(commandKey{cmd.Kind, cmd.Layer, cmd.X, cmd.Y}, cmd)
	case cvnet.MsgPing:
		if err := s.hub.WriteSafe(conn, websocket.BinaryMessage, cvnet.Wrap(cvnet.MsgPong, nil)); err != nil {
			log.Printf("[DebugNet] Erro ao responder ping: %v", err)
		}
	default:
		log.Printf("[DebugNet] Mensagem ignorada: tipo %d", env.Type)
	}
}
