// Package events broadcasts platform activity (plays, likes, uploads) to
// websocket subscribers.
package events

import (
	"encoding/json"
	"time"

	"EchoWave/logger"
)

// EventType labels an activity event.
type EventType string

const (
	EventTrackPlayed   EventType = "track_played"
	EventTrackUploaded EventType = "track_uploaded"
	EventTrackLiked    EventType = "track_liked"
	EventUserFollowed  EventType = "user_followed"
	EventCommentAdded  EventType = "comment_added"
)

// Event is one activity notification pushed to subscribers.
type Event struct {
	Type      EventType       `json:"type"`
	UserID    int64           `json:"userId,omitempty"`
	TrackID   int64           `json:"trackId,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// Hub fans activity events out to connected websocket clients. Slow clients
// are dropped rather than allowed to block the broadcast loop.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan Event
	done       chan struct{}
}

// NewHub creates a Hub. Call Run in its own goroutine before publishing.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, 64),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until Close is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			logger.Debug("Events client connected", logger.Int("clients", len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}

		case event := <-h.broadcast:
			payload, err := json.Marshal(event)
			if err != nil {
				logger.Warn("Failed to marshal event", logger.ErrorField(err))
				continue
			}
			for client := range h.clients {
				select {
				case client.send <- payload:
				default:
					delete(h.clients, client)
					close(client.send)
				}
			}

		case <-h.done:
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return
		}
	}
}

// Publish queues an event for broadcast. The timestamp is stamped here; a
// full broadcast buffer drops the event instead of blocking the caller.
func (h *Hub) Publish(event Event) {
	event.Timestamp = time.Now().UnixMilli()
	select {
	case h.broadcast <- event:
	default:
		logger.Warn("Event dropped, broadcast buffer full", logger.String("type", string(event.Type)))
	}
}

// Close shuts the hub down and disconnects every client.
func (h *Hub) Close() {
	close(h.done)
}
