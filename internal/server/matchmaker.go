package server

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"arcade-server/internal/game"
	"arcade-server/internal/ledger"
)

// Matchmaker assigns join requests to an existing waiting room of the
// requested kind, or creates a new one. Waiting rooms are reused
// first-in-first-out by creation time.
type Matchmaker struct {
	tables map[game.Kind]*kindTable
	sender Sender
	ledger ledger.Service
}

// kindTable holds one game kind's rooms. Its mutex serializes the
// find-or-create sequence so two simultaneous requests can neither
// both create new rooms nor both claim the same waiting one.
type kindTable struct {
	mu      sync.Mutex
	rooms   map[string]*Room
	waiting []string // room ids, oldest first
}

func NewMatchmaker(sender Sender, svc ledger.Service) *Matchmaker {
	tables := make(map[game.Kind]*kindTable)
	for _, kind := range []game.Kind{game.TicTacToe, game.Connect4} {
		tables[kind] = &kindTable{rooms: make(map[string]*Room)}
	}
	return &Matchmaker{
		tables: tables,
		sender: sender,
		ledger: svc,
	}
}

// RequestMatch seats the player in the oldest joinable waiting room of
// the kind, creating a fresh room (seat 0) when none is waiting.
func (m *Matchmaker) RequestMatch(kind game.Kind, identity, displayName, connID string) (*Room, int, error) {
	table, ok := m.tables[kind]
	if !ok {
		return nil, -1, fmt.Errorf("UNKNOWN_GAME_KIND: unknown game kind '%s'", kind)
	}

	table.mu.Lock()
	defer table.mu.Unlock()

	for len(table.waiting) > 0 {
		id := table.waiting[0]
		table.waiting = table.waiting[1:]

		room, exists := table.rooms[id]
		if !exists {
			continue
		}

		seat, err := room.JoinAsOpponent(identity, displayName, connID)
		if err != nil {
			// Stale entry: the waiting player left or the room filled
			// before we could seat the newcomer. Try the next one.
			continue
		}
		return room, seat, nil
	}

	room := NewRoom(uuid.New().String(), kind, m.sender, m.ledger)
	seat, err := room.Join(identity, displayName, connID)
	if err != nil {
		return nil, -1, err
	}

	table.rooms[room.ID] = room
	table.waiting = append(table.waiting, room.ID)

	return room, seat, nil
}

// Remove drops a room from its kind's table. Called when the last
// participant has left.
func (m *Matchmaker) Remove(room *Room) {
	table, ok := m.tables[room.Kind]
	if !ok {
		return
	}

	table.mu.Lock()
	defer table.mu.Unlock()
	delete(table.rooms, room.ID)
}

// RoomCount reports the number of live rooms across all kinds.
func (m *Matchmaker) RoomCount() int {
	count := 0
	for _, table := range m.tables {
		table.mu.Lock()
		count += len(table.rooms)
		table.mu.Unlock()
	}
	return count
}
