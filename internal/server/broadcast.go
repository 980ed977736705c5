package server

import (
	"encoding/json"
	"log"
)

// Sender delivers a typed event to a single connection. Delivery is
// fire-and-forget: no acknowledgement is awaited and failures are
// logged, never surfaced to game logic.
type Sender interface {
	SendTo(connID, msgType string, payload interface{})
}

// Broadcaster is the transport adapter the rooms and the router send
// through. It marshals the envelope synchronously (so payloads may
// reference state guarded by the caller's lock) and enqueues the frame
// onto the connection's writer queue without blocking.
type Broadcaster struct {
	connections *ConnectionManager
}

func NewBroadcaster(cm *ConnectionManager) *Broadcaster {
	return &Broadcaster{connections: cm}
}

func (b *Broadcaster) SendTo(connID, msgType string, payload interface{}) {
	data, err := json.Marshal(ServerMessage{Type: msgType, Payload: payload})
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", msgType, err)
		return
	}

	if !b.connections.Enqueue(connID, data) {
		log.Printf("Dropped %s event for connection %s", msgType, connID)
	}
}
