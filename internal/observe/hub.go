package observe

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/chanlab/chanx"
)

// client is one connected stats-stream subscriber, adapted from
// go-server/pkg/websocket/hub.go's Client/Hub split: a buffered send
// queue drained by its own writer goroutine, so one slow reader never
// blocks the broadcast loop.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub fans a periodic stats snapshot out to every connected client.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]bool
	logger  zerolog.Logger

	register   chan *client
	unregister chan *client
	broadcast  chan []byte
}

// NewHub constructs an idle Hub; call Run to start its dispatch loop.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		logger:     logger,
		register:   make(chan *client, 16),
		unregister: make(chan *client, 16),
		broadcast:  make(chan []byte, 256),
	}
}

// Run drives the hub's register/unregister/broadcast loop until ctx
// is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
			}
			h.clients = make(map[*client]bool)
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			h.logger.Info().Str("client", c.id).Int("total", len(h.clients)).Msg("observe: stream client connected")

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// snapshot is the wire shape pushed to every subscriber.
type snapshot struct {
	Channel     string    `json:"channel"`
	Capacity    int       `json:"capacity"`
	Items       int       `json:"items"`
	Slots       int       `json:"slots"`
	Subscribers int       `json:"subscribers"`
	Closed      bool      `json:"closed"`
	At          time.Time `json:"at"`
}

// Watched pairs a name with the channel whose Stats get reported.
type Watched struct {
	Name string
	Ch   interface{ Stats() chanx.Stats }
}

// PublishLoop reports every watched channel's stats on each tick,
// until ctx is done.
func (h *Hub) PublishLoop(ctx context.Context, watched []Watched, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for _, w := range watched {
				st := w.Ch.Stats()
				data, err := json.Marshal(snapshot{
					Channel:     w.Name,
					Capacity:    st.Capacity,
					Items:       st.ItemCount,
					Slots:       st.SlotCount,
					Subscribers: st.Subscribers,
					Closed:      st.Closed,
					At:          now,
				})
				if err != nil {
					continue
				}
				select {
				case h.broadcast <- data:
				default:
					h.logger.Warn().Str("channel", w.Name).Msg("observe: broadcast queue full, dropping snapshot")
				}
			}
		}
	}
}

func (c *client) writePump(unregister chan<- *client) {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			select {
			case unregister <- c:
			default:
			}
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump discards inbound frames but is required so gorilla's
// control-frame (ping/pong/close) handling keeps running; it exits,
// and triggers unregistration, as soon as the client disconnects.
func (c *client) readPump(unregister chan<- *client) {
	defer func() {
		select {
		case unregister <- c:
		default:
		}
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
