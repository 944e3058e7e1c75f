package ws

import (
	"encoding/json"
	"log"
	"sync"

	"bloodalert/internal/domain"
)

// Client represents a single WebSocket connection with user context.
type Client struct {
	UserID string
	Role   domain.Role
	Send   chan []byte
	Hub    *Hub // set by Register so Close() can unregister
	mu     sync.Mutex
	closed bool
}

func NewClient(userID string, role domain.Role) *Client {
	return &Client{UserID: userID, Role: role, Send: make(chan []byte, 256)}
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.Hub != nil {
		c.Hub.unregister(c)
	}
	close(c.Send)
}

// trySend drops the message when the client is gone or its buffer is full.
func (c *Client) trySend(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.Send <- data:
	default:
		log.Printf("[WS] dropping message for slow client %s", c.UserID)
	}
}

// Hub maintains the set of active clients, their rooms, and broadcasts to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	// userID -> clients (one user can have multiple connections)
	byUser map[string]map[*Client]struct{}
	rooms  map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		byUser:  make(map[string]map[*Client]struct{}),
		rooms:   make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.Hub = h
	h.clients[c] = struct{}{}
	if h.byUser[c.UserID] == nil {
		h.byUser[c.UserID] = make(map[*Client]struct{})
	}
	h.byUser[c.UserID][c] = struct{}{}
}

// JoinRoom adds a registered client to room.
func (h *Hub) JoinRoom(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
	if m := h.byUser[c.UserID]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(h.byUser, c.UserID)
		}
	}
	for name, m := range h.rooms {
		delete(m, c)
		if len(m) == 0 {
			delete(h.rooms, name)
		}
	}
}

func (h *Hub) snapshot(set map[*Client]struct{}) []*Client {
	clients := make([]*Client, 0, len(set))
	for c := range set {
		clients = append(clients, c)
	}
	return clients
}

func (h *Hub) send(clients []*Client, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[WS] encode broadcast: %v", err)
		return
	}
	for _, c := range clients {
		c.trySend(data)
	}
}

func (h *Hub) BroadcastRoom(room string, payload interface{}) {
	h.mu.RLock()
	clients := h.snapshot(h.rooms[room])
	h.mu.RUnlock()
	h.send(clients, payload)
}

func (h *Hub) BroadcastToUser(userID string, payload interface{}) {
	h.mu.RLock()
	clients := h.snapshot(h.byUser[userID])
	h.mu.RUnlock()
	h.send(clients, payload)
}

func (h *Hub) BroadcastAll(payload interface{}) {
	h.mu.RLock()
	clients := h.snapshot(h.clients)
	h.mu.RUnlock()
	h.send(clients, payload)
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
