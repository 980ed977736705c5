package server

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"arcade-server/internal/game"
	"arcade-server/internal/ledger"
)

func newTestMatchmaker() (*Matchmaker, *recordingSender) {
	sender := &recordingSender{}
	return NewMatchmaker(sender, ledger.Noop{}), sender
}

func TestRequestMatchPairsSequentialRequests(t *testing.T) {
	mm, _ := newTestMatchmaker()

	roomA, seatA, err := mm.RequestMatch(game.TicTacToe, "user-a", "Alice", "conn-a")
	assert.NoError(t, err)
	assert.Equal(t, 0, seatA)

	roomB, seatB, err := mm.RequestMatch(game.TicTacToe, "user-b", "Bob", "conn-b")
	assert.NoError(t, err)
	assert.Equal(t, 1, seatB)
	assert.Equal(t, roomA.ID, roomB.ID)

	// A third request starts a fresh room.
	roomC, seatC, err := mm.RequestMatch(game.TicTacToe, "user-c", "Carol", "conn-c")
	assert.NoError(t, err)
	assert.Equal(t, 0, seatC)
	assert.NotEqual(t, roomA.ID, roomC.ID)

	assert.Equal(t, 2, mm.RoomCount())
}

func TestRequestMatchWaitingRoomsServedFIFO(t *testing.T) {
	mm, _ := newTestMatchmaker()

	first, _, err := mm.RequestMatch(game.TicTacToe, "user-a", "Alice", "conn-a")
	assert.NoError(t, err)
	second, _, err := mm.RequestMatch(game.TicTacToe, "user-b", "Bob", "conn-b")
	assert.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	third, _, err := mm.RequestMatch(game.TicTacToe, "user-c", "Carol", "conn-c")
	assert.NoError(t, err)
	fourth, _, err := mm.RequestMatch(game.TicTacToe, "user-d", "Dave", "conn-d")
	assert.NoError(t, err)
	fifth, _, err := mm.RequestMatch(game.TicTacToe, "user-e", "Eve", "conn-e")
	assert.NoError(t, err)

	// The oldest waiting room (third's) is filled before fifth's own.
	assert.Equal(t, third.ID, fourth.ID)
	assert.NotEqual(t, third.ID, fifth.ID)
}

func TestRequestMatchKindsAreIsolated(t *testing.T) {
	mm, _ := newTestMatchmaker()

	ttt, seatT, err := mm.RequestMatch(game.TicTacToe, "user-a", "Alice", "conn-a")
	assert.NoError(t, err)
	c4, seatC, err := mm.RequestMatch(game.Connect4, "user-b", "Bob", "conn-b")
	assert.NoError(t, err)

	assert.Equal(t, 0, seatT)
	assert.Equal(t, 0, seatC)
	assert.NotEqual(t, ttt.ID, c4.ID)
	assert.Equal(t, game.TicTacToe, ttt.Kind)
	assert.Equal(t, game.Connect4, c4.Kind)
}

func TestRequestMatchSkipsAbandonedWaitingRoom(t *testing.T) {
	mm, _ := newTestMatchmaker()

	room, _, err := mm.RequestMatch(game.TicTacToe, "user-a", "Alice", "conn-a")
	assert.NoError(t, err)

	// The waiting player disconnects; the room empties and is removed.
	assert.True(t, room.Leave("user-a"))
	mm.Remove(room)

	fresh, seat, err := mm.RequestMatch(game.TicTacToe, "user-b", "Bob", "conn-b")
	assert.NoError(t, err)
	assert.Equal(t, 0, seat)
	assert.NotEqual(t, room.ID, fresh.ID)
	assert.Equal(t, 1, mm.RoomCount())
}

func TestRequestMatchEmptiedRoomNotReused(t *testing.T) {
	mm, _ := newTestMatchmaker()

	room, _, err := mm.RequestMatch(game.TicTacToe, "user-a", "Alice", "conn-a")
	assert.NoError(t, err)

	// The waiting player's Leave has run but the table has not been
	// told yet, mirroring the window between a connection's room
	// cleanup and its matchmaker removal.
	assert.True(t, room.Leave("user-a"))

	fresh, seat, err := mm.RequestMatch(game.TicTacToe, "user-b", "Bob", "conn-b")
	assert.NoError(t, err)
	assert.Equal(t, 0, seat)
	assert.NotEqual(t, room.ID, fresh.ID)

	// Bob waits in the fresh room, not the emptied one.
	fresh.mu.Lock()
	assert.Equal(t, StatusWaiting, fresh.status)
	assert.Len(t, fresh.participants, 1)
	fresh.mu.Unlock()
}

func TestRemoveUnknownRoomIsNoOp(t *testing.T) {
	mm, sender := newTestMatchmaker()

	ghost := NewRoom("ghost", game.TicTacToe, sender, ledger.Noop{})
	mm.Remove(ghost)
	assert.Equal(t, 0, mm.RoomCount())
}

func TestRequestMatchConcurrentRequestsPairCleanly(t *testing.T) {
	mm, _ := newTestMatchmaker()

	const players = 100
	var wg sync.WaitGroup
	wg.Add(players)

	for i := 0; i < players; i++ {
		go func(id int) {
			defer wg.Done()
			identity := fmt.Sprintf("user-%d", id)
			_, _, err := mm.RequestMatch(game.TicTacToe, identity, identity, fmt.Sprintf("conn-%d", id))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// An even number of players must pair into exactly full rooms.
	assert.Equal(t, players/2, mm.RoomCount())

	table := mm.tables[game.TicTacToe]
	table.mu.Lock()
	defer table.mu.Unlock()
	for _, room := range table.rooms {
		room.mu.Lock()
		assert.Len(t, room.participants, 2)
		assert.Equal(t, StatusActive, room.status)
		room.mu.Unlock()
	}
}
