package sse

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
)

// Event is a named payload pushed to a connected client.
type Event struct {
	Name string
	Data interface{}
}

type client struct {
	userID string
	send   chan Event
}

// Manager fans events out to connected clients, keyed by user ID.
// A user may hold several connections (multiple tabs/devices).
type Manager struct {
	mu      sync.RWMutex
	clients map[string]map[*client]struct{}
}

func NewManager() *Manager {
	return &Manager{
		clients: make(map[string]map[*client]struct{}),
	}
}

// SendToUser delivers an event to every open connection of the user.
// Slow connections are skipped rather than blocking the caller.
func (m *Manager) SendToUser(userID, name string, data interface{}) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for c := range m.clients[userID] {
		select {
		case c.send <- Event{Name: name, Data: data}:
		default:
		}
	}
}

// ConnectedUsers returns the number of users with at least one connection.
func (m *Manager) ConnectedUsers() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

func (m *Manager) register(c *client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clients[c.userID] == nil {
		m.clients[c.userID] = make(map[*client]struct{})
	}
	m.clients[c.userID][c] = struct{}{}
}

func (m *Manager) unregister(c *client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if conns, ok := m.clients[c.userID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(m.clients, c.userID)
		}
	}
}

// ServeHTTP streams events to the client until the connection closes.
func (m *Manager) ServeHTTP(c *gin.Context, userID string) {
	cl := &client{
		userID: userID,
		send:   make(chan Event, 16),
	}
	m.register(cl)
	defer m.unregister(cl)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Flush()

	notify := c.Request.Context().Done()
	for {
		select {
		case <-notify:
			return
		case ev := <-cl.send:
			payload, err := json.Marshal(ev.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", ev.Name, payload)
			c.Writer.Flush()
		}
	}
}
