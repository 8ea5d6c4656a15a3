package chat

import (
	"context"
	"sync"

	"fxacademy/internal/logging"
	"fxacademy/internal/model"
)

// Client is one websocket connection as seen by the hub.
type Client struct {
	User  model.UserSummary
	Admin bool

	send  chan []byte
	rooms map[string]bool
}

func NewClient(user model.UserSummary, admin bool, buffer int) *Client {
	if buffer <= 0 {
		buffer = 64
	}
	return &Client{User: user, Admin: admin, send: make(chan []byte, buffer), rooms: make(map[string]bool)}
}

// Outbound yields frames to write; it is closed when the hub lets go of the client.
func (c *Client) Outbound() <-chan []byte { return c.send }

// Hub indexes this instance's connections by room and user and delivers frames to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}
	users   map[string]map[*Client]struct{}

	broker  Broker
	metrics *Metrics
	log     *logging.Logger
}

func NewHub(broker Broker, metrics *Metrics, log *logging.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		rooms:   make(map[string]map[*Client]struct{}),
		users:   make(map[string]map[*Client]struct{}),
		broker:  broker,
		metrics: metrics,
		log:     log,
	}
}

// Start subscribes the hub to its broker.
func (h *Hub) Start(ctx context.Context) error {
	return h.broker.Subscribe(ctx, h.Deliver)
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	addMember(h.users, c.User.ID, c)
	h.metrics.connected()
}

// Unregister removes the client everywhere and closes its outbound channel. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unregisterLocked(c)
}

func (h *Hub) unregisterLocked(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	removeMember(h.users, c.User.ID, c)
	for room := range c.rooms {
		removeMember(h.rooms, room, c)
	}
	c.rooms = nil
	close(c.send)
	h.metrics.disconnected()
}

func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	c.rooms[room] = true
	addMember(h.rooms, room, c)
}

func (h *Hub) Leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(c.rooms, room)
	removeMember(h.rooms, room, c)
}

func (h *Hub) Joined(c *Client, room string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return c.rooms[room]
}

// Connections is the number of registered clients.
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish hands a delivery to the broker so every instance sees it.
func (h *Hub) Publish(ctx context.Context, d Delivery) error {
	return h.broker.Publish(ctx, d)
}

// Deliver writes a delivery to the matching local clients. Clients whose buffer is full are dropped.
func (h *Hub) Deliver(d Delivery) {
	var slow []*Client

	h.mu.RLock()
	switch {
	case d.Broadcast:
		for c := range h.clients {
			if !offer(c, d.Payload) {
				slow = append(slow, c)
			}
		}
	case d.Room != "":
		for c := range h.rooms[d.Room] {
			if d.ExceptUser != "" && c.User.ID == d.ExceptUser {
				continue
			}
			if !offer(c, d.Payload) {
				slow = append(slow, c)
			}
		}
	case d.UserID != "":
		for c := range h.users[d.UserID] {
			if d.SkipRoom != "" && c.rooms[d.SkipRoom] {
				continue
			}
			if !offer(c, d.Payload) {
				slow = append(slow, c)
			}
		}
	}
	h.mu.RUnlock()

	h.dropSlow(slow)
}

// SendTo queues a frame for one client.
func (h *Hub) SendTo(c *Client, payload []byte) {
	h.mu.RLock()
	_, ok := h.clients[c]
	delivered := ok && offer(c, payload)
	h.mu.RUnlock()

	if ok && !delivered {
		h.dropSlow([]*Client{c})
	}
}

func (h *Hub) dropSlow(slow []*Client) {
	if len(slow) == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range slow {
		if _, ok := h.clients[c]; !ok {
			continue
		}
		h.log.Warn("chat_client_dropped", map[string]any{"component": "chat", "user_id": c.User.ID, "reason": "send buffer full"})
		h.metrics.drop()
		h.unregisterLocked(c)
	}
}

// offer is a non-blocking send; callers hold the hub lock so the channel cannot be closed meanwhile.
func offer(c *Client, payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func addMember(index map[string]map[*Client]struct{}, key string, c *Client) {
	set, ok := index[key]
	if !ok {
		set = make(map[*Client]struct{})
		index[key] = set
	}
	set[c] = struct{}{}
}

func removeMember(index map[string]map[*Client]struct{}, key string, c *Client) {
	set, ok := index[key]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(index, key)
	}
}
