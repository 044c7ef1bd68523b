package outbox

import (
	"sync"

	"github.com/gorilla/websocket"

	"autochase/internal/logging"
)

type wsMessage struct {
	Type      string `json:"type"`
	Workspace string `json:"workspace"`
	EventID   string `json:"event_id,omitempty"`
	Count     int    `json:"count,omitempty"`
}

// WSManager fans outbox activity out to connected dashboard clients.
type WSManager struct {
	connections map[*websocket.Conn]bool
	mutex       sync.Mutex
	logger      *logging.Logger
}

func NewWSManager(logger *logging.Logger) *WSManager {
	return &WSManager{
		connections: make(map[*websocket.Conn]bool),
		logger:      logger,
	}
}

func (m *WSManager) Register(conn *websocket.Conn) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.connections[conn] = true
	m.logger.Infof("WebSocket client connected (%d active)", len(m.connections))
}

func (m *WSManager) Unregister(conn *websocket.Conn) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.connections[conn] {
		delete(m.connections, conn)
		conn.Close()
	}
}

// Broadcast sends a message to every connected client, dropping clients
// whose connection fails.
func (m *WSManager) Broadcast(msg interface{}) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for conn := range m.connections {
		if err := conn.WriteJSON(msg); err != nil {
			m.logger.Warnf("WebSocket write failed, dropping client: %v", err)
			delete(m.connections, conn)
			conn.Close()
		}
	}
}
