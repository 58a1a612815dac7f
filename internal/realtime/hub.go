// Package realtime pushes ledger and goal events to connected browsers over
// WebSocket.
package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventType string

const (
	// EventMessageReceived goes only to the recipient of a new message.
	EventMessageReceived EventType = "message_received"
	// EventProgressUpdated is broadcast whenever the point counts change.
	EventProgressUpdated EventType = "progress_updated"
	// EventGoalChanged is broadcast when a goal is created or achieved.
	EventGoalChanged EventType = "goal_changed"
	// EventGoalReached is broadcast once when the active goal's points
	// first reach its requirement.
	EventGoalReached EventType = "goal_reached"
)

// Event is the frame written to clients.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

const sendBuffer = 16

type userFrame struct {
	userID uuid.UUID
	data   []byte
}

// Hub tracks connected clients. A user may hold several connections (one
// per open tab) and every one of them receives the user's events.
type Hub struct {
	clients map[uuid.UUID]map[*Client]struct{}
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	sendToUser chan userFrame
	done       chan struct{}

	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		sendToUser: make(chan userFrame, 64),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run owns the client set until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for _, conns := range h.clients {
				for c := range conns {
					close(c.send)
				}
			}
			h.clients = make(map[uuid.UUID]map[*Client]struct{})
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			conns, ok := h.clients[c.userID]
			if !ok {
				conns = make(map[*Client]struct{})
				h.clients[c.userID] = conns
			}
			conns[c] = struct{}{}
			h.mu.Unlock()
			h.logger.Debug("websocket client connected", zap.Stringer("user_id", c.userID))

		case c := <-h.unregister:
			h.mu.Lock()
			h.dropLocked(c)
			h.mu.Unlock()

		case data := <-h.broadcast:
			h.mu.Lock()
			for _, conns := range h.clients {
				for c := range conns {
					h.deliverLocked(c, data)
				}
			}
			h.mu.Unlock()

		case frame := <-h.sendToUser:
			h.mu.Lock()
			for c := range h.clients[frame.userID] {
				h.deliverLocked(c, frame.data)
			}
			h.mu.Unlock()
		}
	}
}

// deliverLocked drops clients whose buffer is full rather than stalling
// every other client behind one slow reader.
func (h *Hub) deliverLocked(c *Client, data []byte) {
	select {
	case c.send <- data:
	default:
		h.logger.Warn("websocket client too slow, dropping", zap.Stringer("user_id", c.userID))
		h.dropLocked(c)
	}
}

func (h *Hub) dropLocked(c *Client) {
	conns, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := conns[c]; !ok {
		return
	}
	delete(conns, c)
	close(c.send)
	if len(conns) == 0 {
		delete(h.clients, c.userID)
	}
	h.logger.Debug("websocket client disconnected", zap.Stringer("user_id", c.userID))
}

// Broadcast queues ev for every connected client. It never blocks; when the
// queue is full the event is dropped and logged.
func (h *Hub) Broadcast(ev Event) {
	data, ok := h.encode(ev)
	if !ok {
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("websocket broadcast queue full, event dropped", zap.String("type", string(ev.Type)))
	}
}

// SendToUser queues ev for every connection of userID.
func (h *Hub) SendToUser(userID uuid.UUID, ev Event) {
	data, ok := h.encode(ev)
	if !ok {
		return
	}
	select {
	case h.sendToUser <- userFrame{userID: userID, data: data}:
	default:
		h.logger.Warn("websocket user queue full, event dropped", zap.String("type", string(ev.Type)))
	}
}

func (h *Hub) encode(ev Event) ([]byte, bool) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("encode websocket event", zap.String("type", string(ev.Type)), zap.Error(err))
		return nil, false
	}
	return data, true
}

// ConnectedUsers returns how many distinct users have an open connection.
func (h *Hub) ConnectedUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) IsUserConnected(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}
