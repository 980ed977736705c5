package game

import "fmt"

// Kind identifies which ruleset and board shape a room uses.
type Kind string

const (
	TicTacToe Kind = "tictactoe"
	Connect4  Kind = "connect4"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case TicTacToe, Connect4:
		return Kind(s), nil
	}
	return "", fmt.Errorf("UNKNOWN_GAME_KIND: unknown game kind '%s'", s)
}

// Dimensions returns the fixed board size for the kind.
func (k Kind) Dimensions() (rows, cols int) {
	switch k {
	case Connect4:
		return 6, 7
	default:
		return 3, 3
	}
}

// Markers returns the two marker symbols, indexed by seat.
func (k Kind) Markers() [2]string {
	switch k {
	case Connect4:
		return [2]string{"R", "Y"}
	default:
		return [2]string{"X", "O"}
	}
}
