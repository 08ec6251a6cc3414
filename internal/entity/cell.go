package entity

import (
	"errors"
	"fmt"
)

var ErrUnknownCell = errors.New("unknown cell mark")

// Cell is the content of one board square.
type Cell uint8

const (
	Empty Cell = iota
	PlayerA
	PlayerB
)

// Opponent - returns the other player's mark. Empty has no opponent.
func (that Cell) Opponent() Cell {
	switch that {
	case PlayerA:
		return PlayerB
	case PlayerB:
		return PlayerA
	default:
		return Empty
	}
}

func (that Cell) String() string {
	switch that {
	case PlayerA:
		return "X"
	case PlayerB:
		return "O"
	default:
		return "-"
	}
}

// Board is a row-major sequence of cells, size*size long.
type Board []Cell

func NewBoard(size int) Board {
	return make(Board, size*size)
}

func (that Board) Clone() Board {
	board := make(Board, len(that))
	copy(board, that)

	return board
}

// EmptyCount - number of unoccupied cells.
func (that Board) EmptyCount() int {
	count := 0
	for _, cell := range that {
		if cell == Empty {
			count++
		}
	}

	return count
}

func (that Board) String() string {
	buf := make([]byte, len(that))
	for i, cell := range that {
		buf[i] = cell.String()[0]
	}

	return string(buf)
}

func (that Cell) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Cell) UnmarshalText(text []byte) error {
	switch string(text) {
	case "X":
		*that = PlayerA
	case "O":
		*that = PlayerB
	case "-", "":
		*that = Empty
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCell, text)
	}

	return nil
}
