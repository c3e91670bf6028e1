package viewer

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/soyeahso/lively/internal/logging"
)

// ErrConnClosed is returned when writing to a closed viewer connection.
var ErrConnClosed = errors.New("viewer connection closed")

const writeWait = 5 * time.Second

// Conn is one connected rendering surface.
type Conn struct {
	ID          string
	Socket      *websocket.Conn
	ConnectedAt time.Time

	mu     sync.Mutex
	closed bool
}

func newConn(ws *websocket.Conn) *Conn {
	return &Conn{
		ID:          uuid.New().String(),
		Socket:      ws,
		ConnectedAt: time.Now(),
	}
}

// WriteText sends a single text frame. Safe for concurrent use.
func (c *Conn) WriteText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnClosed
	}
	if err := c.Socket.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.Socket.WriteMessage(websocket.TextMessage, []byte(text))
}

// Close closes the socket once.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.Socket.Close()
}

// registry tracks connected viewers by ID.
type registry struct {
	mu    sync.RWMutex
	conns map[string]*Conn
	log   *logging.Logger
}

func newRegistry(log *logging.Logger) *registry {
	return &registry{conns: make(map[string]*Conn), log: log}
}

func (r *registry) add(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c.ID] = c
	r.log.Info().Str("connId", c.ID).Msg("viewer connected")
}

func (r *registry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
	r.log.Info().Str("connId", id).Msg("viewer disconnected")
}

func (r *registry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

func (r *registry) snapshot() []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Conn, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	return out
}

func (r *registry) closeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.conns {
		c.Close()
		delete(r.conns, id)
	}
}
