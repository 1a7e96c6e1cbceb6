package ws

import (
	"sync"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

// ChangedFrame is the only message the hub ever pushes to clients
var ChangedFrame = []byte(`{"type":"data_changed"}`)

// Client is the part of a websocket connection the hub needs
type Client interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Hub fans the "data changed" signal out to websocket clients and in-process subscribers.
// It implements repository.Notifier.
type Hub struct {
	clients    map[Client]bool
	Register   chan Client
	Unregister chan Client
	Broadcast  chan []byte
	quit       chan struct{}
	stopOnce   sync.Once
	mutex      sync.Mutex

	subMu  sync.RWMutex
	subs   map[uint64]func()
	nextID uint64

	log *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[Client]bool),
		Register:   make(chan Client),
		Unregister: make(chan Client),
		// buffered: pending frames are identical, so a full buffer already carries the signal
		Broadcast: make(chan []byte, 16),
		quit:      make(chan struct{}),
		subs:      make(map[uint64]func()),
		log:       log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.mutex.Lock()
			for conn := range h.clients {
				conn.Close()
				delete(h.clients, conn)
			}
			h.mutex.Unlock()
			return

		case conn := <-h.Register:
			h.mutex.Lock()
			h.clients[conn] = true
			count := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("WS client connected", zap.Int("clients", count))

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					h.log.Debug("Dropping WS client", zap.Error(err))
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Stop ends Run and closes every client
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Subscribe registers fn to run on every change. The returned func removes it and is safe to call twice.
func (h *Hub) Subscribe(fn func()) func() {
	h.subMu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	h.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.subMu.Lock()
			delete(h.subs, id)
			h.subMu.Unlock()
		})
	}
}

// NotifyChanged never blocks the writer that triggered it
func (h *Hub) NotifyChanged() {
	h.subMu.RLock()
	fns := make([]func(), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.subMu.RUnlock()

	// subscribers may subscribe or unsubscribe from inside the callback
	for _, fn := range fns {
		fn()
	}

	select {
	case h.Broadcast <- ChangedFrame:
	default:
	}
}

// Serve registers conn with the hub and blocks until the peer goes away
func (h *Hub) Serve(conn *websocket.Conn) {
	h.serve(conn, conn)
}

type reader interface {
	ReadMessage() (int, []byte, error)
}

func (h *Hub) serve(client Client, r reader) {
	select {
	case h.Register <- client:
	case <-h.quit:
		return
	}
	defer func() {
		select {
		case h.Unregister <- client:
		case <-h.quit:
		}
	}()

	for {
		// keep alive loop; clients never send anything meaningful
		if _, _, err := r.ReadMessage(); err != nil {
			return
		}
	}
}
