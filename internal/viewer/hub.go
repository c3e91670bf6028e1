// Package viewer serves the rendering surface: a websocket hub that pushes
// animation signals to every connected browser view.
package viewer

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/soyeahso/lively/internal/animation"
	"github.com/soyeahso/lively/internal/logging"
)

//go:embed index.html
var indexHTML []byte

// Hub upgrades /ws requests and fans signals out to the connected viewers.
type Hub struct {
	upgrader websocket.Upgrader
	viewers  *registry
	log      *logging.Logger
	mux      *http.ServeMux
}

// NewHub creates a hub. allowedOrigins restricts browser origins; "*"
// allows any, and requests without an Origin header are always allowed.
func NewHub(allowedOrigins []string, log *logging.Logger) *Hub {
	h := &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
		viewers: newRegistry(log.Sub("viewers")),
		log:     log.Sub("viewer"),
		mux:     http.NewServeMux(),
	}
	h.mux.HandleFunc("GET /ws", h.handleWebSocket)
	h.mux.HandleFunc("GET /{$}", h.handleIndex)
	return h
}

func checkOrigin(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// ServeHTTP implements http.Handler.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// Count returns the number of connected viewers.
func (h *Hub) Count() int { return h.viewers.count() }

// Deliver implements animation.Surface. With no viewer connected the signal
// is lost; per-viewer write failures drop that viewer.
func (h *Hub) Deliver(_ context.Context, sig animation.Signal) error {
	conns := h.viewers.snapshot()
	if len(conns) == 0 {
		h.log.Debug().Str("signal", string(sig)).Msg("no viewer connected, signal dropped")
		return nil
	}

	var errs []error
	for _, c := range conns {
		if err := c.WriteText(string(sig)); err != nil {
			errs = append(errs, fmt.Errorf("viewer %s: %w", c.ID, err))
			h.viewers.remove(c.ID)
			c.Close()
		}
	}
	return errors.Join(errs...)
}

func (h *Hub) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}
	ws.SetReadLimit(4096)

	c := newConn(ws)
	h.viewers.add(c)
	defer func() {
		h.viewers.remove(c.ID)
		c.Close()
	}()

	// Viewers never talk back; reading only notices when they leave.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug().Err(err).Str("connId", c.ID).Msg("viewer read error")
			}
			return
		}
	}
}

// Serve listens on addr until ctx is cancelled. ready, if non-nil, receives
// the bound address once listening.
func (h *Hub) Serve(ctx context.Context, addr string, ready chan<- string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		h.viewers.closeAll()
		srv.Shutdown(shutdownCtx)
	}()

	h.log.Info().Str("addr", ln.Addr().String()).Msg("viewer hub listening")
	if ready != nil {
		ready <- ln.Addr().String()
	}

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
