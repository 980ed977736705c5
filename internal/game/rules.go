// Package game implements the rules for the supported board games:
// move legality, board mutation, and win/draw detection. Everything in
// this package is deterministic and free of transport concerns.
package game

import (
	"errors"
	"fmt"
)

// ErrInvalidMove marks any move rejected by the rules. Callers match it
// with errors.Is; the wrapped detail is for logs only.
var ErrInvalidMove = errors.New("INVALID_MOVE")

// Move is a player's raw move input. TicTacToe uses Row and Col;
// Connect4 uses Col as the drop column and ignores Row.
type Move struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Placement is the coordinate actually written by an accepted move. For
// Connect4 the row is computed by gravity, not taken from the input.
type Placement struct {
	Row int
	Col int
}

// Apply validates the move for the given seat and writes the seat's
// marker into the board. The board is modified only on success.
func Apply(b Board, kind Kind, seat int, mv Move) (Placement, error) {
	marker := kind.Markers()[seat]

	switch kind {
	case Connect4:
		return applyDrop(b, marker, mv.Col)
	default:
		return applyPlace(b, marker, mv.Row, mv.Col)
	}
}

func applyPlace(b Board, marker string, row, col int) (Placement, error) {
	if row < 0 || row >= len(b) || col < 0 || col >= len(b[0]) {
		return Placement{}, fmt.Errorf("%w: cell (%d,%d) out of bounds", ErrInvalidMove, row, col)
	}
	if b[row][col] != "" {
		return Placement{}, fmt.Errorf("%w: cell (%d,%d) already occupied", ErrInvalidMove, row, col)
	}
	b[row][col] = marker
	return Placement{Row: row, Col: col}, nil
}

func applyDrop(b Board, marker string, col int) (Placement, error) {
	if col < 0 || col >= len(b[0]) {
		return Placement{}, fmt.Errorf("%w: column %d out of range", ErrInvalidMove, col)
	}
	// Lowest unoccupied row in the column.
	for row := len(b) - 1; row >= 0; row-- {
		if b[row][col] == "" {
			b[row][col] = marker
			return Placement{Row: row, Col: col}, nil
		}
	}
	return Placement{}, fmt.Errorf("%w: column %d is full", ErrInvalidMove, col)
}

// Winner returns the winning marker, or "" when no line is complete.
// It never mutates the board.
func Winner(b Board, kind Kind) string {
	if kind == Connect4 {
		return runWinner(b, 4)
	}
	return lineWinner(b)
}

// lineWinner checks the 3 rows, 3 columns, and 2 diagonals of a 3x3
// board for three equal non-empty markers.
func lineWinner(b Board) string {
	lines := [][3][2]int{
		{{0, 0}, {0, 1}, {0, 2}},
		{{1, 0}, {1, 1}, {1, 2}},
		{{2, 0}, {2, 1}, {2, 2}},
		{{0, 0}, {1, 0}, {2, 0}},
		{{0, 1}, {1, 1}, {2, 1}},
		{{0, 2}, {1, 2}, {2, 2}},
		{{0, 0}, {1, 1}, {2, 2}},
		{{0, 2}, {1, 1}, {2, 0}},
	}

	for _, line := range lines {
		first := b[line[0][0]][line[0][1]]
		if first == "" {
			continue
		}
		if b[line[1][0]][line[1][1]] == first && b[line[2][0]][line[2][1]] == first {
			return first
		}
	}
	return ""
}

// runWinner scans every occupied cell in four directions and reports
// the marker of the first run of at least target length.
func runWinner(b Board, target int) string {
	rows := len(b)
	cols := len(b[0])
	directions := [4][2]int{
		{0, 1},  // horizontal
		{1, 0},  // vertical
		{1, 1},  // diagonal down-right
		{1, -1}, // diagonal down-left
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			cell := b[r][c]
			if cell == "" {
				continue
			}
			for _, d := range directions {
				count := 1
				for k := 1; k < target; k++ {
					nr := r + d[0]*k
					nc := c + d[1]*k
					if nr < 0 || nr >= rows || nc < 0 || nc >= cols {
						break
					}
					if b[nr][nc] != cell {
						break
					}
					count++
				}
				if count >= target {
					return cell
				}
			}
		}
	}
	return ""
}

// IsDraw reports whether the board is completely filled with no winner.
func IsDraw(b Board, kind Kind) bool {
	return b.Full() && Winner(b, kind) == ""
}
