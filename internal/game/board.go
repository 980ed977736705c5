package game

// Board is a rectangular grid of cells. An empty string means the cell
// is unoccupied; otherwise the cell holds one of the kind's two markers.
type Board [][]string

func NewBoard(kind Kind) Board {
	rows, cols := kind.Dimensions()
	b := make(Board, rows)
	for r := range b {
		b[r] = make([]string, cols)
	}
	return b
}

func (b Board) Clone() Board {
	out := make(Board, len(b))
	for r, row := range b {
		out[r] = make([]string, len(row))
		copy(out[r], row)
	}
	return out
}

// Full reports whether every cell is occupied.
func (b Board) Full() bool {
	for _, row := range b {
		for _, cell := range row {
			if cell == "" {
				return false
			}
		}
	}
	return true
}
