package server

import "arcade-server/internal/game"

// ============================================================================
// ERROR RESPONSES
// ============================================================================
type ErrorMessage struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ============================================================================
// JOIN (join_request -> joined, room_active)
// ============================================================================
type JoinRequest struct {
	GameKind    string `json:"gameKind"`
	Identity    string `json:"identity"`
	DisplayName string `json:"displayName"`
}

type JoinedPayload struct {
	RoomID string     `json:"roomId"`
	Seat   int        `json:"seat"`
	Marker string     `json:"marker"`
	Board  game.Board `json:"board"`
	Turn   int        `json:"turn"`
}

type ParticipantInfo struct {
	Identity    string `json:"identity"`
	DisplayName string `json:"displayName"`
	Seat        int    `json:"seat"`
}

type RoomActivePayload struct {
	Participants []ParticipantInfo `json:"participants"`
}

// ============================================================================
// MOVES (move -> update broadcast)
// ============================================================================
type MoveRequest struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type UpdatePayload struct {
	Board  game.Board `json:"board"`
	Turn   int        `json:"turn"`
	Winner string     `json:"winner"`
	Draw   bool       `json:"draw"`
}

// ============================================================================
// CHAT (chat -> chat_relayed broadcast)
// ============================================================================
type ChatRequest struct {
	Text string `json:"text"`
}

type ChatRelayedPayload struct {
	Identity    string `json:"identity"`
	DisplayName string `json:"displayName"`
	Text        string `json:"text"`
}

// ============================================================================
// OPPONENT LEFT (opponent_left)
// ============================================================================
type OpponentLeftPayload struct {
	// No fields - the event itself is the signal
}
