package tictactoe

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-rl/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rl/internal/entity"
)

const (
	A = entity.PlayerA
	B = entity.PlayerB
	E = entity.Empty
)

func TestLines(t *testing.T) {
	t.Run("3x3 board has rows, columns and two diagonals", func(t *testing.T) {
		// When: enumerating lines of a 3x3 board
		lines := Lines(3)

		// Then: 8 lines in rows, columns, diagonals order
		expected := []Line{
			{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
			{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
			{0, 4, 8}, {2, 4, 6},
		}
		require.Equal(t, expected, lines)
	})

	t.Run("4x4 board has 10 lines of length 4", func(t *testing.T) {
		lines := Lines(4)

		require.Len(t, lines, 10)
		for _, line := range lines {
			assert.Len(t, line, 4)
		}
	})

	t.Run("non-square grid omits diagonals", func(t *testing.T) {
		lines := gridLines(2, 3)

		assert.Len(t, lines, 5)
	})
}

func TestEvaluateTerminal(t *testing.T) {
	t.Run("Empty board is neither won nor drawn", func(t *testing.T) {
		// Given: an empty 3x3 board
		board := entity.NewBoard(3)

		// When: evaluating it in standard mode
		winner, isDraw := EvaluateTerminal(board, 3, entity.ModeStandard)

		// Then: no winner and no draw
		assert.Equal(t, entity.Empty, winner)
		assert.False(t, isDraw)
	})

	t.Run("Top row of PlayerA wins in standard mode", func(t *testing.T) {
		// Given: PlayerA holds 0,1,2 and PlayerB holds two cells elsewhere
		board := entity.Board{
			A, A, A,
			B, B, E,
			E, E, E,
		}

		// When: evaluating it
		winner, isDraw := EvaluateTerminal(board, 3, entity.ModeStandard)

		// Then: PlayerA wins
		assert.Equal(t, A, winner)
		assert.False(t, isDraw)
	})

	t.Run("XOX pattern wins in xox mode only", func(t *testing.T) {
		// Given: the top row reads A,B,A
		board := entity.Board{
			A, B, A,
			E, E, E,
			E, E, E,
		}

		// When: evaluating it in both modes
		xoxWinner, _ := EvaluateTerminal(board, 3, entity.ModeXOX)
		standardWinner, _ := EvaluateTerminal(board, 3, entity.ModeStandard)

		// Then: A wins xox, nobody wins standard
		assert.Equal(t, A, xoxWinner)
		assert.Equal(t, entity.Empty, standardWinner)
	})

	t.Run("OXO pattern on a diagonal wins for PlayerB", func(t *testing.T) {
		board := entity.Board{
			E, E, B,
			E, A, E,
			B, E, E,
		}

		winner, _ := EvaluateTerminal(board, 3, entity.ModeXOX)

		assert.Equal(t, B, winner)
	})

	t.Run("Uniform line does not win in xox mode", func(t *testing.T) {
		board := entity.Board{
			A, A, A,
			E, E, E,
			E, E, E,
		}

		winner, _ := EvaluateTerminal(board, 3, entity.ModeXOX)

		assert.Equal(t, entity.Empty, winner)
	})

	t.Run("Full board without a line is a draw", func(t *testing.T) {
		// Given: a finished board with no winning line
		board := entity.Board{
			A, B, A,
			A, B, B,
			B, A, A,
		}

		// When: evaluating it
		winner, isDraw := EvaluateTerminal(board, 3, entity.ModeStandard)

		// Then: it is a draw
		assert.Equal(t, entity.Empty, winner)
		assert.True(t, isDraw)
	})

	t.Run("First line in enumeration order breaks ties", func(t *testing.T) {
		// Given: row 0 reads B,A,B and row 2 reads A,B,A
		board := entity.Board{
			B, A, B,
			E, E, E,
			A, B, A,
		}

		// When: evaluating it in xox mode
		winner, _ := EvaluateTerminal(board, 3, entity.ModeXOX)

		// Then: row 0 decides
		assert.Equal(t, B, winner)
	})

	t.Run("4x4 column win", func(t *testing.T) {
		board := entity.NewBoard(4)
		for r := 0; r < 4; r++ {
			board[r*4+1] = B
		}

		winner, isDraw := EvaluateTerminal(board, 4, entity.ModeStandard)

		assert.Equal(t, B, winner)
		assert.False(t, isDraw)
	})
}

func TestApplyMove(t *testing.T) {
	t.Run("Places the mark and passes the turn", func(t *testing.T) {
		// Given: a fresh game
		state := entity.NewGameState(entity.ModeStandard, 3)

		// When: PlayerA plays cell 4
		next, err := ApplyMove(state, 4)
		require.NoError(t, err)

		// Then: the new snapshot has the mark and PlayerB to move
		assert.Equal(t, A, next.Board[4])
		assert.Equal(t, B, next.CurrentPlayer)
		assert.False(t, next.IsGameOver)

		// Then: the original snapshot is untouched
		assert.Equal(t, E, state.Board[4])
		assert.Equal(t, A, state.CurrentPlayer)
	})

	t.Run("Rejects an occupied cell", func(t *testing.T) {
		state := entity.NewGameState(entity.ModeStandard, 3)
		state, err := ApplyMove(state, 0)
		require.NoError(t, err)

		_, err = ApplyMove(state, 0)

		require.ErrorIs(t, err, apperror.ErrIllegalMove)
		assert.ErrorIs(t, err, apperror.ErrCellOccupied)
	})

	t.Run("Rejects out of range indices", func(t *testing.T) {
		state := entity.NewGameState(entity.ModeStandard, 3)

		for _, index := range []int{-1, 9, 100} {
			_, err := ApplyMove(state, index)

			require.ErrorIs(t, err, apperror.ErrIllegalMove)
			assert.ErrorIs(t, err, apperror.ErrInvalidCell)
		}
	})

	t.Run("Rejects moves after the game is over", func(t *testing.T) {
		// Given: PlayerA completed the top row
		state := playMoves(t, entity.ModeStandard, 0, 3, 1, 4, 2)
		require.True(t, state.IsGameOver)
		require.Equal(t, A, state.Winner)

		// When: playing on
		_, err := ApplyMove(state, 8)

		// Then: the move is illegal
		require.ErrorIs(t, err, apperror.ErrIllegalMove)
		assert.ErrorIs(t, err, apperror.ErrGameFinished)
	})

	t.Run("Last move fills the board into a draw", func(t *testing.T) {
		state := playMoves(t, entity.ModeStandard, 0, 1, 2, 4, 3, 5, 7, 6, 8)

		assert.True(t, state.IsDraw)
		assert.True(t, state.IsGameOver)
		assert.Equal(t, entity.Empty, state.Winner)
	})
}

func TestLegalMoves(t *testing.T) {
	t.Run("Fresh board lists every cell ascending", func(t *testing.T) {
		state := entity.NewGameState(entity.ModeStandard, 3)

		assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, LegalMoves(state))
	})

	t.Run("Occupied cells are skipped", func(t *testing.T) {
		state := playMoves(t, entity.ModeStandard, 4, 0)

		assert.Equal(t, []int{1, 2, 3, 5, 6, 7, 8}, LegalMoves(state))
	})

	t.Run("Game over leaves no moves", func(t *testing.T) {
		state := playMoves(t, entity.ModeStandard, 0, 3, 1, 4, 2)

		assert.Empty(t, LegalMoves(state))
	})
}

func TestRandomGamesKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for _, mode := range []entity.Mode{entity.ModeStandard, entity.ModeXOX} {
		for game := 0; game < 500; game++ {
			state := entity.NewGameState(mode, 3)

			for !state.IsGameOver {
				moves := LegalMoves(state)
				require.NotEmpty(t, moves)

				move := moves[rng.IntN(len(moves))]
				next, err := ApplyMove(state, move)
				require.NoError(t, err)

				// exactly one cell changed, from empty to the mover's mark
				assert.Equal(t, state.Board.EmptyCount()-1, next.Board.EmptyCount())
				for i := range state.Board {
					if i == move {
						assert.Equal(t, state.CurrentPlayer, next.Board[i])
						continue
					}
					assert.Equal(t, state.Board[i], next.Board[i])
				}

				assert.Equal(t, next.IsGameOver, next.HasWinner() || next.IsDraw)
				if next.IsDraw {
					assert.False(t, next.HasWinner())
					assert.Zero(t, next.Board.EmptyCount())
				}

				// evaluation is deterministic
				winner, isDraw := EvaluateTerminal(next.Board, 3, mode)
				assert.Equal(t, next.Winner, winner)
				assert.Equal(t, next.IsDraw, isDraw)

				assert.Equal(t, next.IsGameOver, len(LegalMoves(next)) == 0)

				state = next
			}
		}
	}
}

func TestValidateSetup(t *testing.T) {
	require.NoError(t, ValidateSetup(entity.ModeStandard, 3))
	require.NoError(t, ValidateSetup(entity.ModeStandard, 5))
	require.NoError(t, ValidateSetup(entity.ModeXOX, 3))

	require.ErrorIs(t, ValidateSetup(entity.ModeStandard, 1), apperror.ErrInvalidBoardSize)
	require.ErrorIs(t, ValidateSetup(entity.ModeXOX, 4), apperror.ErrInvalidBoardSize)
}

func playMoves(t *testing.T, mode entity.Mode, moves ...int) entity.GameState {
	t.Helper()

	state := entity.NewGameState(mode, 3)
	for _, move := range moves {
		var err error
		state, err = ApplyMove(state, move)
		require.NoError(t, err)
	}

	return state
}

func TestEvaluateTerminal_IncompleteBoard(t *testing.T) {
	t.Run("Board shorter than one row has no result", func(t *testing.T) {
		winner, isDraw := EvaluateTerminal(entity.Board{A, A}, 3, entity.ModeStandard)

		assert.Equal(t, entity.Empty, winner)
		assert.False(t, isDraw)
	})

	t.Run("Zero size has no result", func(t *testing.T) {
		winner, isDraw := EvaluateTerminal(entity.Board{A}, 0, entity.ModeXOX)

		assert.Equal(t, entity.Empty, winner)
		assert.False(t, isDraw)
	})

	t.Run("Empty board with zero size", func(t *testing.T) {
		assert.NotPanics(t, func() {
			EvaluateTerminal(nil, 0, entity.ModeStandard)
		})
	})
}
