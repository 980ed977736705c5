package server

import (
	"context"
	"log"
	"sync"

	"github.com/coder/websocket"
)

// sendBufferSize bounds the per-connection outbound queue. A client that
// cannot drain this many events loses the excess.
const sendBufferSize = 32

type connection struct {
	sock *websocket.Conn
	send chan []byte
}

// writeLoop drains the outbound queue onto the socket, serializing all
// writes for the connection.
func (c *connection) writeLoop() {
	for data := range c.send {
		if err := c.sock.Write(context.Background(), websocket.MessageText, data); err != nil {
			log.Printf("Write failed, abandoning connection: %v", err)
			return
		}
	}
}

// ConnectionManager is the registry of live sockets, keyed by
// connection id. Each registered connection gets a writer goroutine so
// callers never block on a slow client.
type ConnectionManager struct {
	connections map[string]*connection
	mu          sync.RWMutex
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]*connection),
	}
}

func (cm *ConnectionManager) Add(id string, sock *websocket.Conn) {
	c := &connection{
		sock: sock,
		send: make(chan []byte, sendBufferSize),
	}

	cm.mu.Lock()
	cm.connections[id] = c
	cm.mu.Unlock()

	go c.writeLoop()
}

func (cm *ConnectionManager) Remove(id string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if c, ok := cm.connections[id]; ok {
		delete(cm.connections, id)
		close(c.send)
	}
}

// Enqueue hands a frame to the connection's writer. Returns false if
// the connection is unknown or its queue is full; never blocks.
// The write lock held by Remove excludes the close of the send channel,
// so enqueuing under the read lock is safe.
func (cm *ConnectionManager) Enqueue(id string, data []byte) bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	c, ok := cm.connections[id]
	if !ok {
		return false
	}

	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (cm *ConnectionManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.connections)
}

// CloseAll closes every live socket. Used during shutdown; the per-
// connection read loops observe the closure and run their cleanup.
func (cm *ConnectionManager) CloseAll() {
	cm.mu.RLock()
	socks := make([]*websocket.Conn, 0, len(cm.connections))
	for _, c := range cm.connections {
		socks = append(socks, c.sock)
	}
	cm.mu.RUnlock()

	for _, sock := range socks {
		sock.Close(websocket.StatusGoingAway, "Server shutting down")
	}
}
