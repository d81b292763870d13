package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hcpdash/domain/figure"
)

// Event types sent to browsers
const (
	EventFigure = "figure"
	EventPing   = "ping"
)

// DefaultPingInterval keeps idle connections open through proxies
const DefaultPingInterval = 30 * time.Second

// SSEClient represents a connected SSE client. An empty PanelID receives every event.
type SSEClient struct {
	ID      string
	PanelID string
	Channel chan Event
}

// Event is one server-sent event
type Event struct {
	Type      string      `json:"type"`
	PanelID   string      `json:"panel_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// SSEHub fans dashboard events out to connected browsers
type SSEHub struct {
	clients      map[chan Event]SSEClient
	clientsMu    sync.RWMutex
	register     chan SSEClient
	unregister   chan SSEClient
	broadcast    chan Event
	done         chan struct{}
	closeOnce    sync.Once
	pingInterval time.Duration
}

// NewSSEHub creates a new SSE hub and starts its loop
func NewSSEHub() *SSEHub {
	hub := &SSEHub{
		clients:      make(map[chan Event]SSEClient),
		register:     make(chan SSEClient, 10),
		unregister:   make(chan SSEClient, 10),
		broadcast:    make(chan Event, 100),
		done:         make(chan struct{}),
		pingInterval: DefaultPingInterval,
	}

	go hub.run()
	return hub
}

// run processes SSE hub operations
func (h *SSEHub) run() {
	for {
		select {
		case client := <-h.register:
			h.clientsMu.Lock()
			h.clients[client.Channel] = client
			log.Printf("[SSE] Client %s registered (panel: %q, total clients: %d)",
				client.ID, client.PanelID, len(h.clients))
			h.clientsMu.Unlock()

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if _, exists := h.clients[client.Channel]; exists {
				delete(h.clients, client.Channel)
				close(client.Channel)
				log.Printf("[SSE] Client %s unregistered (remaining clients: %d)", client.ID, len(h.clients))
			}
			h.clientsMu.Unlock()

		case event := <-h.broadcast:
			h.clientsMu.RLock()
			for ch, client := range h.clients {
				if client.PanelID != "" && event.PanelID != "" && client.PanelID != event.PanelID {
					continue
				}
				select {
				case ch <- event:
				default:
					log.Printf("[SSE] Client %s channel full, skipping %s event", client.ID, event.Type)
				}
			}
			h.clientsMu.RUnlock()

		case <-h.done:
			h.clientsMu.Lock()
			for ch := range h.clients {
				delete(h.clients, ch)
				close(ch)
			}
			h.clientsMu.Unlock()
			return
		}
	}
}

// Broadcast queues an event for every interested client
func (h *SSEHub) Broadcast(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case <-h.done:
		return
	default:
	}
	select {
	case h.broadcast <- event:
	default:
		log.Printf("[SSE] Broadcast channel full, dropping event: %s", event.Type)
	}
}

// Redraw pushes a figure to browsers, making the hub a plotting surface
func (h *SSEHub) Redraw(fig figure.Figure) error {
	h.Broadcast(Event{Type: EventFigure, PanelID: fig.PanelID, Data: fig})
	return nil
}

// Close disconnects every client and stops the loop
func (h *SSEHub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// HandleSSE streams events. The optional panel query parameter limits the stream to
// one panel's events plus dashboard-wide ones.
func (h *SSEHub) HandleSSE(c *gin.Context) {
	client := SSEClient{
		ID:      uuid.New().String(),
		PanelID: c.Query("panel"),
		Channel: make(chan Event, 10),
	}

	select {
	case h.register <- client:
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "SSE hub registration failed"})
		return
	}

	defer func() {
		select {
		case h.unregister <- client:
		default:
			// Hub might be overloaded or closed
		}
	}()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Headers", "Cache-Control")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-client.Channel:
			if !ok {
				return false
			}
			eventJSON, err := json.Marshal(event)
			if err != nil {
				log.Printf("[SSE] Failed to marshal event: %v", err)
				return true
			}
			c.SSEvent(event.Type, string(eventJSON))
			return true

		case <-ticker.C:
			c.SSEvent(EventPing, `{"status": "alive", "timestamp": "`+time.Now().Format(time.RFC3339)+`"}`)
			return true

		case <-h.done:
			return false

		case <-ctx.Done():
			return false
		}
	})
}

// GetClientCount returns the number of connected clients
func (h *SSEHub) GetClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}
