package websocket

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

const broadcastBuffer = 64

type directMessage struct {
	client  *Client
	message []byte
}

// Hub maintains the set of active clients and broadcasts messages to them.
// All client bookkeeping happens on the Run goroutine.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Outbound messages for every client.
	broadcast chan []byte

	register   chan *Client
	unregister chan *Client
	direct     chan directMessage

	done     chan struct{}
	stopOnce sync.Once
	count    atomic.Int64
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		direct:     make(chan directMessage, broadcastBuffer),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
	}
}

// Run starts the Hub's message processing loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for client := range h.clients {
				h.drop(client)
			}
			log.Info().Msg("Catalog feed hub stopped")
			return
		case client := <-h.register:
			h.clients[client] = true
			h.count.Store(int64(len(h.clients)))
			log.Info().Int("total_clients", len(h.clients)).Msg("Client connected")
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case dm := <-h.direct:
			if _, ok := h.clients[dm.client]; ok {
				select {
				case dm.client.Send <- dm.message:
				default:
				}
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// Slow consumer.
					h.drop(client)
					log.Warn().Msg("Dropped slow websocket client")
				}
			}
		}
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.Send)
	h.count.Store(int64(len(h.clients)))
}

// Register adds a client. It reports false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client. It is a no-op after Stop.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish broadcasts an action to every connected client. When the broadcast
// queue is full the message is dropped rather than blocking the caller.
func (h *Hub) Publish(action string, payload any) {
	msg, err := NewMessage(action, payload)
	if err != nil {
		log.Error().Err(err).Str("action", action).Msg("Failed to encode catalog event")
		return
	}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	default:
		log.Warn().Str("action", action).Msg("Catalog feed queue full, event dropped")
	}
}

func (h *Hub) sendTo(client *Client, message []byte) {
	select {
	case h.direct <- directMessage{client: client, message: message}:
	case <-h.done:
	default:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// Stop ends Run and disconnects every client. Safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}
