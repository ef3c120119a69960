// Package server serves the commit graph over HTTP and pushes updates to
// websocket clients whenever the repository changes.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rybkr/gitgraph/internal/config"
	"github.com/rybkr/gitgraph/internal/domain"
	"github.com/rybkr/gitgraph/internal/metrics"
	"github.com/rybkr/gitgraph/internal/workspace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	broadcastBuffer = 256
	writeTimeout    = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

type MessageType string

const (
	MessageTypeInfo    MessageType = "info"
	MessageTypeGraph   MessageType = "graph"
	MessageTypeSummary MessageType = "summary"
	MessageTypeError   MessageType = "error"
)

type UpdateMessage struct {
	Type MessageType `json:"type"`
	Data any         `json:"data"`
}

// ErrorPayload is the data of error messages and HTTP error bodies.
type ErrorPayload struct {
	Error string `json:"error"`
}

// Collector builds a graph; domain.GraphCollector satisfies it.
type Collector interface {
	Collect(ctx context.Context, limit int) (domain.GitGraph, error)
}

type client struct {
	id      string
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *client) send(msg UpdateMessage) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(msg)
}

type Server struct {
	addr         string
	info         workspace.Info
	collector    Collector
	limit        int
	pollInterval time.Duration
	watch        bool
	debounce     time.Duration
	origins      []string
	metrics      *metrics.Collector
	logger       *zap.Logger
	upgrader     websocket.Upgrader

	cacheMu sync.RWMutex
	cached  struct {
		graph   *domain.GitGraph
		summary domain.Summary
		err     string
	}

	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]*client
	broadcast chan UpdateMessage
	refresh   chan struct{}
}

// NewServer builds a server for the workspace described by info. A nil
// metrics collector gets a fresh one; a nil logger discards output.
func NewServer(collector Collector, info workspace.Info, cfg config.AppConfig, m *metrics.Collector, logger *zap.Logger) *Server {
	if m == nil {
		m = metrics.NewCollector("gitgraph")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		addr:         cfg.Addr(),
		info:         info,
		collector:    collector,
		limit:        cfg.DefaultLimit(),
		pollInterval: cfg.PollInterval(),
		watch:        cfg.Watch(),
		debounce:     cfg.WatchDebounce(),
		origins:      cfg.AllowedOrigins(),
		metrics:      m,
		logger:       logger,
		clients:      make(map[*websocket.Conn]*client),
		broadcast:    make(chan UpdateMessage, broadcastBuffer),
		refresh:      make(chan struct{}, 1),
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	return s
}

// Run serves HTTP and keeps clients up to date until ctx is cancelled or
// one of the background loops fails.
func (s *Server) Run(ctx context.Context) error {
	var watcher *fsnotify.Watcher
	if s.watch {
		w, err := s.newWatcher()
		if err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		watcher = w
	}

	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.handleBroadcast(ctx)
		return nil
	})
	g.Go(func() error {
		s.pollRepo(ctx)
		return nil
	})
	if watcher != nil {
		g.Go(func() error {
			s.watchLoop(ctx, watcher)
			return nil
		})
	}
	g.Go(func() error {
		s.logger.Info("listening", zap.String("addr", s.addr), zap.String("repo", s.info.Root))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.closeClients()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.origins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// handleWebSocket registers a client, sends it the current state and
// keeps reading until it disconnects.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	c := &client{id: uuid.New().String(), conn: conn}
	total := s.addClient(c)
	s.logger.Info("websocket client connected", zap.String("client", c.id), zap.Int("clients", total))

	s.sendInitialState(c)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	total = s.removeClient(conn)
	s.logger.Info("websocket client disconnected", zap.String("client", c.id), zap.Int("clients", total))
}

func (s *Server) addClient(c *client) int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[c.conn] = c
	s.metrics.WebsocketClients.Set(float64(len(s.clients)))
	return len(s.clients)
}

func (s *Server) removeClient(conn *websocket.Conn) int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	delete(s.clients, conn)
	s.metrics.WebsocketClients.Set(float64(len(s.clients)))
	return len(s.clients)
}

func (s *Server) closeClients() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for conn := range s.clients {
		conn.Close()
	}
}

func (s *Server) snapshot() []UpdateMessage {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()

	messages := []UpdateMessage{{Type: MessageTypeInfo, Data: s.info}}
	if s.cached.graph != nil {
		messages = append(messages,
			UpdateMessage{Type: MessageTypeGraph, Data: *s.cached.graph},
			UpdateMessage{Type: MessageTypeSummary, Data: s.cached.summary},
		)
	}
	if s.cached.err != "" {
		messages = append(messages, UpdateMessage{Type: MessageTypeError, Data: ErrorPayload{Error: s.cached.err}})
	}
	return messages
}

func (s *Server) sendInitialState(c *client) {
	for _, msg := range s.snapshot() {
		if err := c.send(msg); err != nil {
			s.logger.Warn("sending initial state failed", zap.String("client", c.id), zap.Error(err))
			return
		}
	}
}

// handleBroadcast delivers queued messages to every client, dropping
// clients whose writes fail.
func (s *Server) handleBroadcast(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-s.broadcast:
			s.clientsMu.RLock()
			targets := make([]*client, 0, len(s.clients))
			for _, c := range s.clients {
				targets = append(targets, c)
			}
			s.clientsMu.RUnlock()

			for _, c := range targets {
				if err := c.send(msg); err != nil {
					s.logger.Warn("broadcast failed", zap.String("client", c.id), zap.Error(err))
					s.removeClient(c.conn)
					c.conn.Close()
				}
			}
		}
	}
}

// broadcastUpdate queues a message without blocking.
func (s *Server) broadcastUpdate(msgType MessageType, data any) {
	msg := UpdateMessage{
		Type: msgType,
		Data: data,
	}

	select {
	case s.broadcast <- msg:
		s.metrics.Broadcasts.WithLabelValues(string(msgType)).Inc()
	default:
		s.metrics.DroppedBroadcasts.Inc()
		s.logger.Warn("broadcast channel full, dropping message", zap.String("type", string(msgType)))
	}
}
