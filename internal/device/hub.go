package device

import (
	"context"
	"log/slog"
	"sort"
	"sync"
)

// Hub tracks connected devices by sketch session ID. Every device owns its
// own session; nothing is shared between connections.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]*Client // sessionID -> client
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			n := len(h.clients)
			h.clients = make(map[string]*Client)
			h.mu.Unlock()
			slog.Info("hub stopped", "clients", n)
			return
		}
	}
}

// Register adds client to the hub. It is a no-op once the hub has stopped.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Lookup returns the client driving the given session.
func (h *Hub) Lookup(sessionID string) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[sessionID]
	return c, ok
}

// SessionIDs returns the IDs of all connected sessions, sorted.
func (h *Hub) SessionIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client.SessionID()] = client
	h.mu.Unlock()

	client.welcome()

	slog.Info("device connected", "client", client.ClientID, "session", client.SessionID())
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.SessionID()]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.SessionID())
	h.mu.Unlock()

	slog.Info("device disconnected", "client", client.ClientID, "session", client.SessionID())
}
