package ws

import (
	"encoding/json"
	"sync"

	"feeportal/internal/models"
)

const EventTransactionUpdated = "transaction.updated"

// Event is the frame pushed to dashboards.
type Event struct {
	Type        string              `json:"type"`
	Transaction *models.OrderStatus `json:"transaction"`
}

// Client is one dashboard connection bound to a school.
type Client struct {
	UserID   uint
	SchoolID uint
	Send     chan []byte
	Hub      *Hub
	mu       sync.Mutex
	closed   bool
}

func NewClient(userID, schoolID uint) *Client {
	return &Client{UserID: userID, SchoolID: schoolID, Send: make(chan []byte, 256)}
}

func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.Send)
	c.mu.Unlock()
	if c.Hub != nil {
		c.Hub.unregister(c)
	}
}

// deliver drops the frame when the client is closed or its buffer is full.
func (c *Client) deliver(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// Hub fans transaction events out to the connections of each school.
type Hub struct {
	mu       sync.RWMutex
	bySchool map[uint]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{bySchool: make(map[uint]map[*Client]struct{})}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.Hub = h
	if h.bySchool[c.SchoolID] == nil {
		h.bySchool[c.SchoolID] = make(map[*Client]struct{})
	}
	h.bySchool[c.SchoolID][c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m := h.bySchool[c.SchoolID]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(h.bySchool, c.SchoolID)
		}
	}
}

// BroadcastToSchool sends payload to every client of the school. Returns frames delivered.
func (h *Hub) BroadcastToSchool(schoolID uint, payload any) int {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0
	}
	h.mu.RLock()
	m := h.bySchool[schoolID]
	clients := make([]*Client, 0, len(m))
	for c := range m {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range clients {
		if c.deliver(data) {
			sent++
		}
	}
	return sent
}

// PublishTransaction pushes a transaction.updated event to the school's dashboards.
func (h *Hub) PublishTransaction(schoolID uint, s *models.OrderStatus) {
	cp := *s
	h.BroadcastToSchool(schoolID, Event{Type: EventTransactionUpdated, Transaction: &cp})
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, m := range h.bySchool {
		n += len(m)
	}
	return n
}
