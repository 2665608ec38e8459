// Package realtime implements the websocket feed consumed by monitoring
// dashboards. Subscribers join channel paths (e.g.
// customers/{id}/alerts); publishers fan a payload out to every subscriber
// of one channel. Delivery is best-effort: slow subscribers are dropped.
package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Publisher is the interface the application layer publishes through.
type Publisher interface {
	Publish(channel string, payload interface{})
}

type message struct {
	channel string
	data    []byte
}

// Hub tracks channel subscriptions and broadcasts published payloads.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan message
}

func NewHub() *Hub {
	return &Hub{
		channels:   make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 64),
	}
}

// Run processes subscription changes and broadcasts. Call once, in its own
// goroutine, before serving connections.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			subs := h.channels[c.channel]
			if subs == nil {
				subs = make(map[*Client]bool)
				h.channels[c.channel] = subs
			}
			subs[c] = true
			h.mu.Unlock()
			slog.Info("realtime subscriber joined", "channel", c.channel)

		case c := <-h.unregister:
			h.mu.Lock()
			if subs, ok := h.channels[c.channel]; ok && subs[c] {
				delete(subs, c)
				close(c.send)
				if len(subs) == 0 {
					delete(h.channels, c.channel)
				}
			}
			h.mu.Unlock()

		case m := <-h.broadcast:
			h.mu.Lock()
			for c := range h.channels[m.channel] {
				select {
				case c.send <- m.data:
				default:
					// send buffer full: the subscriber is stalled, drop it
					delete(h.channels[m.channel], c)
					close(c.send)
					slog.Warn("realtime subscriber dropped", "channel", m.channel)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish marshals payload and queues it for every subscriber of channel.
// Marshalling failures are logged and the event is discarded; realtime
// delivery never fails a caller.
func (h *Hub) Publish(channel string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("realtime payload marshal failed", "channel", channel, "err", err)
		return
	}
	select {
	case h.broadcast <- message{channel: channel, data: data}:
	default:
		slog.Warn("realtime broadcast queue full, event dropped", "channel", channel)
	}
}
