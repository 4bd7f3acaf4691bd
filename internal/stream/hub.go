// Package stream serves scene frames to browser renderers over WebSocket.
package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/globe-viz/globe/internal/scene"
	"github.com/globe-viz/globe/pkg/streaming"
	ws "github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Hub fans frames out to every connected client. Slow clients lose frames
// rather than slowing the frame loop down.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	hello   []byte
	closed  bool

	interval time.Duration
	lastSent float64
	sentAny  bool

	upgrader ws.Upgrader
	logger   *slog.Logger
}

// NewHub creates a hub that forwards at most one frame per interval of
// simulated time. A zero interval forwards every frame.
func NewHub(interval time.Duration, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:  make(map[*client]struct{}),
		interval: interval,
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// SetHello sets the message sent to each client right after it connects.
func (h *Hub) SetHello(p streaming.HelloPayload) error {
	data, err := streaming.Marshal(streaming.TypeHello, p)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.hello = data
	h.mu.Unlock()
	return nil
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Handler returns the HTTP routes of the stream server.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.serveWS)
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "ok clients=%d\n", h.Clients())
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	c := newClient(conn, h.logger)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	// hello must be queued before broadcast can see the client
	if h.hello != nil {
		c.send(h.hello)
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	activeConnections.Inc()
	h.logger.Info("stream client connected", "remote", r.RemoteAddr)

	go c.writeLoop()
	go func() {
		c.readLoop()
		h.remove(c)
		h.logger.Info("stream client disconnected", "remote", r.RemoteAddr)
	}()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		activeConnections.Dec()
	}
	c.close()
}

// Publish encodes f and queues it for every client. It must be called from
// the frame loop, before the next frame is produced. Frames closer than the
// hub interval to the last one sent are skipped.
func (h *Hub) Publish(f *scene.Frame) error {
	if h.sentAny && h.interval > 0 && f.Time-h.lastSent < h.interval.Seconds() {
		return nil
	}
	if h.Clients() == 0 {
		return nil
	}

	data, err := streaming.Marshal(streaming.TypeFrame, f)
	if err != nil {
		return err
	}
	h.lastSent, h.sentAny = f.Time, true
	frameBytes.Observe(float64(len(data)))
	h.broadcast(data)
	return nil
}

func (h *Hub) broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.send(data) {
			framesSent.Inc()
		} else {
			framesDropped.Inc()
		}
	}
}

// Close says goodbye to every client and disconnects them.
func (h *Hub) Close(reason string) {
	if bye, err := streaming.Marshal(streaming.TypeBye, streaming.ByePayload{Reason: reason}); err == nil {
		h.broadcast(bye)
	}

	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	// give write loops a moment to flush the goodbye
	time.Sleep(50 * time.Millisecond)
	for _, c := range clients {
		h.remove(c)
	}
}

// Serve runs the stream server on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, h *Hub) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		h.logger.Info("stream server listening", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		h.Close("shutdown")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
