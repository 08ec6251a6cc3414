package encoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-rl/internal/entity"
)

const (
	A = entity.PlayerA
	B = entity.PlayerB
	E = entity.Empty
)

func TestDirect_Encode(t *testing.T) {
	t.Run("Identical boards share a key", func(t *testing.T) {
		// Given: two separately built but equal boards
		first := entity.Board{A, E, E, E, B, E, E, E, E}
		second := first.Clone()

		// When: encoding both
		k1 := Direct{}.Encode(first, 3).Key
		k2 := Direct{}.Encode(second, 3).Key

		// Then: the keys are equal
		assert.Equal(t, k1, k2)
		assert.Equal(t, Key("3:X---O----"), k1)
	})

	t.Run("Different contents give different keys", func(t *testing.T) {
		k1 := Direct{}.Encode(entity.Board{A, E, E, E, E, E, E, E, E}, 3).Key
		k2 := Direct{}.Encode(entity.Board{E, A, E, E, E, E, E, E, E}, 3).Key

		assert.NotEqual(t, k1, k2)
	})

	t.Run("Board size is part of the key", func(t *testing.T) {
		k1 := Direct{}.Encode(entity.NewBoard(2), 2).Key
		k2 := Direct{}.Encode(entity.NewBoard(4), 4).Key

		assert.NotEqual(t, k1, k2)
	})

	t.Run("Index maps are identity", func(t *testing.T) {
		frame := Direct{}.Encode(entity.NewBoard(3), 3)

		for i := 0; i < 9; i++ {
			assert.Equal(t, i, frame.ToKey(i))
			assert.Equal(t, i, frame.FromKey(i))
		}
	})
}

func TestSymmetric_Encode(t *testing.T) {
	sym := &Symmetric{}

	t.Run("All eight symmetries of a board fold to one key", func(t *testing.T) {
		// Given: an asymmetric board and all of its images
		board := entity.Board{
			A, B, E,
			E, E, E,
			E, E, A,
		}
		images := allImages(board, 3)
		require.Len(t, images, 8)

		// When: encoding each image
		expected := sym.Encode(board, 3).Key
		for _, image := range images {
			// Then: the canonical key is the same
			assert.Equal(t, expected, sym.Encode(image, 3).Key)
		}
	})

	t.Run("Index maps are inverse of each other", func(t *testing.T) {
		board := entity.Board{E, A, E, E, E, B, E, E, E}
		frame := sym.Encode(board, 3)

		for i := 0; i < 9; i++ {
			assert.Equal(t, i, frame.FromKey(frame.ToKey(i)))
			assert.Equal(t, i, frame.ToKey(frame.FromKey(i)))
		}
	})

	t.Run("Mapped board reproduces the canonical key", func(t *testing.T) {
		// Given: a board and its frame
		board := entity.Board{E, A, E, E, E, B, E, E, A}
		frame := sym.Encode(board, 3)

		// When: moving every cell through ToKey
		canonical := make(entity.Board, len(board))
		for i, cell := range board {
			canonical[frame.ToKey(i)] = cell
		}

		// Then: the direct key of the moved board is the canonical key
		assert.Equal(t, frame.Key, key(canonical, 3))
	})

	t.Run("Canonical action round-trips onto the original board", func(t *testing.T) {
		// Given: a board and a legal move on it
		board := entity.Board{A, E, E, E, B, E, E, E, E}
		frame := sym.Encode(board, 3)

		for move := range board {
			if board[move] != E {
				continue
			}

			// When: the move is taken into the canonical frame and back
			back := frame.FromKey(frame.ToKey(move))

			direct := board.Clone()
			direct[move] = A
			viaCanonical := board.Clone()
			viaCanonical[back] = A

			// Then: applying it gives exactly the board of the direct move
			assert.Equal(t, direct, viaCanonical)

			// Then: the canonical image of the move lands on an empty cell of the canonical board
			canonical := make(entity.Board, len(board))
			for i, cell := range board {
				canonical[frame.ToKey(i)] = cell
			}
			assert.Equal(t, E, canonical[frame.ToKey(move)])
		}
	})

	t.Run("Empty board keys match the direct encoder", func(t *testing.T) {
		assert.Equal(t, Direct{}.Encode(entity.NewBoard(3), 3).Key, sym.Encode(entity.NewBoard(3), 3).Key)
	})

	t.Run("Irregular board falls back to direct encoding", func(t *testing.T) {
		board := entity.Board{A, E, E, E, E, E}

		assert.Equal(t, Direct{}.Encode(board, 3).Key, sym.Encode(board, 3).Key)
	})
}

func allImages(board entity.Board, size int) []entity.Board {
	images := make([]entity.Board, 0, 8)
	for _, t := range (&Symmetric{}).transforms(size) {
		image := make(entity.Board, len(board))
		for i, cell := range board {
			image[t.forward[i]] = cell
		}
		images = append(images, image)
	}

	return images
}
