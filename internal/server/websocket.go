package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/zeusync/portals/internal/core/events/bus"
	"github.com/zeusync/portals/internal/core/observability/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Message is what telemetry clients receive for every bus event.
type Message struct {
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Config holds telemetry server settings.
type Config struct {
	// Token, when set, must be passed as the token query parameter.
	Token        string
	MaxClients   int
	SendBuffer   int
	WriteTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxClients:   64,
		SendBuffer:   256,
		WriteTimeout: 5 * time.Second,
	}
}

type client struct {
	conn   *websocket.Conn
	send   chan Message
	types  map[string]bool
	closed sync.Once
	done   chan struct{}
}

func (c *client) wants(typ string) bool {
	return len(c.types) == 0 || c.types[typ]
}

func (c *client) close() {
	c.closed.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// WebSocketServer streams portal events to websocket clients on /events.
// Delivery is best effort: a client whose buffer is full misses events.
type WebSocketServer struct {
	events bus.EventBus
	config Config
	logger log.Log

	mu      sync.Mutex
	clients map[*client]struct{}
	subs    []bus.Subscription

	dropped atomic.Uint64
	running atomic.Bool
}

func NewWebSocketServer(events bus.EventBus, config Config, logger log.Log) *WebSocketServer {
	if logger == nil {
		logger = log.NewNop()
	}
	if config.SendBuffer <= 0 {
		config.SendBuffer = DefaultConfig().SendBuffer
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = DefaultConfig().WriteTimeout
	}
	return &WebSocketServer{
		events:  events,
		config:  config,
		logger:  logger.With(log.String("component", "telemetry")),
		clients: make(map[*client]struct{}),
	}
}

// Subscribe attaches the server to the given event types on the bus.
func (s *WebSocketServer) Subscribe(eventTypes ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, typ := range eventTypes {
		sub, err := s.events.Subscribe(typ, s.broadcast)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", typ, err)
		}
		s.subs = append(s.subs, sub)
	}
	return nil
}

// Handler exposes /events and /healthz.
func (s *WebSocketServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/events", s.handleWebSocket)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *WebSocketServer) Serve(ctx context.Context, addr string) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}
	defer s.running.Store(false)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrListenerFailed, err)
	}
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("Telemetry server listening", log.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		s.closeClients()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.WriteTimeout)
	defer cancel()
	s.closeClients()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("Telemetry server stopped", log.Uint64("dropped", s.dropped.Load()))
	return nil
}

// Close detaches from the bus and disconnects every client.
func (s *WebSocketServer) Close() error {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	var errs []error
	for _, sub := range subs {
		if err := s.events.Unsubscribe(sub); err != nil {
			errs = append(errs, err)
		}
	}
	s.closeClients()
	return errors.Join(errs...)
}

// Clients is the number of connected clients.
func (s *WebSocketServer) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Dropped counts events not delivered because a client buffer was full.
func (s *WebSocketServer) Dropped() uint64 { return s.dropped.Load() }

func (s *WebSocketServer) broadcast(ev bus.Event) error {
	msg := Message{Type: ev.Type(), Source: ev.Source(), Timestamp: ev.Timestamp(), Data: ev.Data()}

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		if !c.wants(msg.Type) {
			continue
		}
		select {
		case c.send <- msg:
		default:
			s.dropped.Add(1)
		}
	}
	return nil
}

func (s *WebSocketServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.config.Token != "" && r.URL.Query().Get("token") != s.config.Token {
		http.Error(w, ErrUnauthorized.Error(), http.StatusUnauthorized)
		return
	}
	if s.config.MaxClients > 0 && s.Clients() >= s.config.MaxClients {
		http.Error(w, ErrMaxClientsReached.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", log.Error(err))
		return
	}

	c := &client{
		conn:  conn,
		send:  make(chan Message, s.config.SendBuffer),
		types: parseTypes(r.URL.Query().Get("types")),
		done:  make(chan struct{}),
	}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.logger.Debug("Telemetry client connected", log.String("remote", conn.RemoteAddr().String()))

	go s.writeLoop(c)
	s.readLoop(c)
}

// readLoop discards client input and notices disconnects.
func (s *WebSocketServer) readLoop(c *client) {
	defer s.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *WebSocketServer) writeLoop(c *client) {
	defer s.remove(c)
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := c.conn.WriteJSON(msg); err != nil {
				s.logger.Debug("Telemetry write failed", log.Error(err))
				return
			}
		}
	}
}

func (s *WebSocketServer) remove(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	c.close()
}

func (s *WebSocketServer) closeClients() {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.clients = make(map[*client]struct{})
	s.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

func parseTypes(raw string) map[string]bool {
	if raw == "" {
		return nil
	}
	out := make(map[string]bool)
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out[t] = true
		}
	}
	return out
}
