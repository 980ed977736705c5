package server

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"arcade-server/internal/game"
	"arcade-server/internal/ledger"
)

var (
	ErrRoomFull        = errors.New("ROOM_FULL: room already has two players")
	ErrRoomUnavailable = errors.New("ROOM_UNAVAILABLE: room is no longer waiting for an opponent")
)

// maxChatLength caps relayed chat text; longer messages are truncated,
// not rejected.
const maxChatLength = 300

type RoomStatus string

const (
	StatusWaiting  RoomStatus = "waiting"
	StatusActive   RoomStatus = "active"
	StatusFinished RoomStatus = "finished"
)

// Participant is one occupant of a room. ConnID is a non-owning
// reference into the connection registry.
type Participant struct {
	Identity    string
	DisplayName string
	Seat        int
	ConnID      string
}

// Room is one match instance between at most two participants. All
// state mutation happens under mu, held tightly around the
// read-validate-mutate-broadcast sequence and never across the ledger
// call.
type Room struct {
	ID        string
	Kind      game.Kind
	CreatedAt time.Time

	mu           sync.Mutex
	board        game.Board
	turn         int
	winner       string
	draw         bool
	status       RoomStatus
	participants []Participant

	sender Sender
	ledger ledger.Service
}

func NewRoom(id string, kind game.Kind, sender Sender, svc ledger.Service) *Room {
	return &Room{
		ID:        id,
		Kind:      kind,
		CreatedAt: time.Now(),
		board:     game.NewBoard(kind),
		status:    StatusWaiting,
		sender:    sender,
		ledger:    svc,
	}
}

// Join seats a participant. The new seat receives a joined ack with the
// current board; the join that fills the room flips it to active and
// triggers exactly one room_active broadcast.
func (r *Room) Join(identity, displayName, connID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.participants) >= 2 {
		return -1, ErrRoomFull
	}
	return r.joinLocked(identity, displayName, connID), nil
}

// JoinAsOpponent seats the second participant, but only while the room
// is still waiting with its first participant present. The check and
// the seat assignment happen under one lock acquisition, so a leave
// racing the matchmaker cannot strand the newcomer in a room that has
// already emptied.
func (r *Room) JoinAsOpponent(identity, displayName, connID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusWaiting || len(r.participants) != 1 {
		return -1, ErrRoomUnavailable
	}
	return r.joinLocked(identity, displayName, connID), nil
}

func (r *Room) joinLocked(identity, displayName, connID string) int {
	seat := len(r.participants)
	r.participants = append(r.participants, Participant{
		Identity:    identity,
		DisplayName: displayName,
		Seat:        seat,
		ConnID:      connID,
	})

	r.sender.SendTo(connID, "joined", JoinedPayload{
		RoomID: r.ID,
		Seat:   seat,
		Marker: r.Kind.Markers()[seat],
		Board:  r.board,
		Turn:   r.turn,
	})

	if len(r.participants) == 2 {
		r.status = StatusActive
		r.turn = 0

		infos := make([]ParticipantInfo, len(r.participants))
		for i, p := range r.participants {
			infos[i] = ParticipantInfo{
				Identity:    p.Identity,
				DisplayName: p.DisplayName,
				Seat:        p.Seat,
			}
		}
		r.broadcastLocked("room_active", RoomActivePayload{Participants: infos}, -1)
	}

	return seat
}

// SubmitMove applies a move for a seat. Rejections (room not active,
// not the seat's turn, illegal move) are silent: no state change, no
// broadcast. An accepted move produces exactly one update broadcast,
// and the move that finishes the game credits both participants outside
// the room's critical section.
func (r *Room) SubmitMove(seat int, mv game.Move) {
	r.mu.Lock()

	if r.status != StatusActive || seat != r.turn {
		r.mu.Unlock()
		return
	}

	if _, err := game.Apply(r.board, r.Kind, seat, mv); err != nil {
		r.mu.Unlock()
		return
	}

	winner := game.Winner(r.board, r.Kind)
	draw := winner == "" && r.board.Full()

	if winner != "" || draw {
		r.status = StatusFinished
		r.winner = winner
		r.draw = draw
		// Turn pointer is frozen at the last mover and ignored from
		// here on.
	} else {
		r.turn = 1 - r.turn
	}

	r.broadcastLocked("update", UpdatePayload{
		Board:  r.board,
		Turn:   r.turn,
		Winner: winner,
		Draw:   draw,
	}, -1)

	if r.status == StatusFinished {
		credits := r.outcomeCreditsLocked()
		r.mu.Unlock()
		go r.creditAll(credits)
		return
	}

	r.mu.Unlock()
}

// Chat relays text from a participant to every participant in the
// room, truncated to maxChatLength runes. Allowed in any room state.
func (r *Room) Chat(identity, text string) {
	if runes := []rune(text); len(runes) > maxChatLength {
		text = string(runes[:maxChatLength])
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sender, ok := r.findLocked(identity)
	if !ok {
		return
	}

	r.broadcastLocked("chat_relayed", ChatRelayedPayload{
		Identity:    sender.Identity,
		DisplayName: sender.DisplayName,
		Text:        text,
	}, -1)
}

// Leave removes a participant and notifies a remaining opponent. It is
// idempotent: leaving twice has no observable effect. Returns true when
// the room is empty and should be destroyed.
func (r *Room) Leave(identity string) (empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, p := range r.participants {
		if p.Identity == identity {
			idx = i
			break
		}
	}
	if idx == -1 {
		return len(r.participants) == 0
	}

	r.participants = append(r.participants[:idx], r.participants[idx+1:]...)

	if len(r.participants) == 1 {
		r.sender.SendTo(r.participants[0].ConnID, "opponent_left", OpponentLeftPayload{})
	}

	return len(r.participants) == 0
}

func (r *Room) findLocked(identity string) (Participant, bool) {
	for _, p := range r.participants {
		if p.Identity == identity {
			return p, true
		}
	}
	return Participant{}, false
}

// broadcastLocked fans an event out to the room's participants,
// skipping excludeSeat (-1 sends to everyone). Callers hold r.mu; the
// sends are non-blocking enqueues, so no I/O happens inside the
// critical section.
func (r *Room) broadcastLocked(msgType string, payload interface{}, excludeSeat int) {
	for _, p := range r.participants {
		if p.Seat == excludeSeat {
			continue
		}
		r.sender.SendTo(p.ConnID, msgType, payload)
	}
}

type participantCredit struct {
	identity string
	amount   int
}

// outcomeCreditsLocked computes each participant's coin award from
// their own outcome.
func (r *Room) outcomeCreditsLocked() []participantCredit {
	credits := make([]participantCredit, 0, len(r.participants))
	for _, p := range r.participants {
		amount := ledger.CoinsLoss
		switch {
		case r.draw:
			amount = ledger.CoinsDraw
		case r.winner == r.Kind.Markers()[p.Seat]:
			amount = ledger.CoinsWin
		}
		credits = append(credits, participantCredit{identity: p.Identity, amount: amount})
	}
	return credits
}

// creditAll issues the ledger calls for a finished game. Advisory:
// failures are logged and never retried.
func (r *Room) creditAll(credits []participantCredit) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, c := range credits {
		balance, err := r.ledger.CreditCoins(ctx, c.identity, c.amount)
		if err != nil {
			log.Printf("Ledger credit failed for %s in room %s: %v", c.identity, r.ID, err)
			continue
		}
		log.Printf("Credited %d coins to %s (balance %d)", c.amount, c.identity, balance)
	}
}
