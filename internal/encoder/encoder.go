// Package encoder maps boards to Q-table keys.
//
// An encoder may fold equivalent boards onto one key. It then also returns
// the index maps between the board's frame and the key's frame, and callers
// must translate action indices through them: values stored under a key are
// indexed in the key's frame.
package encoder

import (
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-rl/internal/entity"
)

// Key identifies a board in the value table.
type Key string

// IndexMap translates a cell index from one frame to another.
type IndexMap func(int) int

// Frame is the result of encoding one board.
type Frame struct {
	Key Key
	// ToKey maps an index on the original board into the key's frame.
	ToKey IndexMap
	// FromKey maps an index in the key's frame back onto the original board.
	FromKey IndexMap
}

type Encoder interface {
	Encode(board entity.Board, size int) Frame
}

func identity(i int) int { return i }

// Direct encodes every cell as one symbol, no folding.
type Direct struct{}

func (Direct) Encode(board entity.Board, size int) Frame {
	return Frame{
		Key:     key(board, size),
		ToKey:   identity,
		FromKey: identity,
	}
}

func key(board entity.Board, size int) Key {
	var sb strings.Builder
	sb.Grow(len(board) + 3)
	sb.WriteString(strconv.Itoa(size))
	sb.WriteByte(':')
	for _, cell := range board {
		sb.WriteString(cell.String())
	}

	return Key(sb.String())
}
