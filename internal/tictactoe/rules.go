package tictactoe

import (
	"fmt"
	"sync"

	"github.com/rocketscienceinc/tictactoe-rl/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rl/internal/entity"
)

const (
	MinBoardSize = 2
	xoxLineSize  = 3
)

// Line is an ordered run of cell indices: a row, a column or a diagonal.
type Line []int

var linesCache sync.Map // int -> []Line

// Lines - returns every line of a size x size board: rows first, then
// columns, then the main and anti diagonal. The result is shared, do not modify it.
func Lines(size int) []Line {
	if cached, ok := linesCache.Load(size); ok {
		return cached.([]Line) //nolint: forcetypeassert // only []Line is stored
	}

	lines := gridLines(size, size)
	linesCache.Store(size, lines)

	return lines
}

// gridLines enumerates lines of a rows x cols grid. Diagonals exist only
// when the grid is square.
func gridLines(rows, cols int) []Line {
	lines := make([]Line, 0, rows+cols+2)

	for r := 0; r < rows; r++ {
		line := make(Line, cols)
		for c := 0; c < cols; c++ {
			line[c] = r*cols + c
		}
		lines = append(lines, line)
	}

	for c := 0; c < cols; c++ {
		line := make(Line, rows)
		for r := 0; r < rows; r++ {
			line[r] = r*cols + c
		}
		lines = append(lines, line)
	}

	if rows != cols {
		return lines
	}

	mainDiag := make(Line, rows)
	antiDiag := make(Line, rows)
	for i := 0; i < rows; i++ {
		mainDiag[i] = i*cols + i
		antiDiag[i] = i*cols + (cols - 1 - i)
	}

	return append(lines, mainDiag, antiDiag)
}

// ValidateSetup - checks that a board size can be played in the given mode.
func ValidateSetup(mode entity.Mode, size int) error {
	if size < MinBoardSize {
		return fmt.Errorf("%w: %d is below %d", apperror.ErrInvalidBoardSize, size, MinBoardSize)
	}

	if mode == entity.ModeXOX && size != xoxLineSize {
		return fmt.Errorf("%w: xox mode needs a %dx%d board, got %d", apperror.ErrInvalidBoardSize, xoxLineSize, xoxLineSize, size)
	}

	return nil
}

// ApplyMove - places the current player's mark at index and returns the next snapshot.
func ApplyMove(state entity.GameState, index int) (entity.GameState, error) {
	if err := validateMove(state, index); err != nil {
		return state, fmt.Errorf("%w: %w", apperror.ErrIllegalMove, err)
	}

	board := state.Board.Clone()
	board[index] = state.CurrentPlayer

	winner, isDraw := EvaluateTerminal(board, state.BoardSize, state.Mode)

	return entity.GameState{
		Board:         board,
		BoardSize:     state.BoardSize,
		CurrentPlayer: state.CurrentPlayer.Opponent(),
		Winner:        winner,
		IsDraw:        isDraw,
		IsGameOver:    winner != entity.Empty || isDraw,
		Mode:          state.Mode,
	}, nil
}

// validateMove - checks if the move is valid.
func validateMove(state entity.GameState, index int) error {
	if state.IsGameOver {
		return apperror.ErrGameFinished
	}

	if index < 0 || index >= len(state.Board) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, index)
	}

	if state.Board[index] != entity.Empty {
		return fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, index)
	}

	return nil
}

// LegalMoves - empty cell indices in ascending order, none once the game is over.
func LegalMoves(state entity.GameState) []int {
	if state.IsGameOver {
		return nil
	}

	moves := make([]int, 0, len(state.Board))
	for i, cell := range state.Board {
		if cell == entity.Empty {
			moves = append(moves, i)
		}
	}

	return moves
}

// EvaluateTerminal - returns the winner (Empty if none) and whether the board is drawn.
// With several completed lines the first one in Lines order decides. Cells
// past the last complete row are ignored; a board without one has no result.
func EvaluateTerminal(board entity.Board, size int, mode entity.Mode) (entity.Cell, bool) {
	if size <= 0 || len(board) < size {
		return entity.Empty, false
	}

	var lines []Line
	if len(board) == size*size {
		lines = Lines(size)
	} else {
		lines = gridLines(len(board)/size, size)
	}

	for _, line := range lines {
		var winner entity.Cell
		if mode == entity.ModeXOX {
			winner = patternWinner(board, line)
		} else {
			winner = uniformWinner(board, line)
		}

		if winner != entity.Empty {
			return winner, false
		}
	}

	return entity.Empty, board.EmptyCount() == 0
}

func uniformWinner(board entity.Board, line Line) entity.Cell {
	first := board[line[0]]
	if first == entity.Empty {
		return entity.Empty
	}

	for _, idx := range line[1:] {
		if board[idx] != first {
			return entity.Empty
		}
	}

	return first
}

// patternWinner matches X-O-X or O-X-O. Reading a line backwards gives the
// same pattern, so each line is checked once.
func patternWinner(board entity.Board, line Line) entity.Cell {
	if len(line) != xoxLineSize {
		return entity.Empty
	}

	end, mid := board[line[0]], board[line[1]]
	if end == entity.Empty || mid != end.Opponent() || board[line[2]] != end {
		return entity.Empty
	}

	return end
}

// CountMarks - how many cells of a line hold mark, and how many are empty.
func CountMarks(board entity.Board, line Line, mark entity.Cell) (int, int) {
	marks, empty := 0, 0
	for _, idx := range line {
		switch board[idx] {
		case mark:
			marks++
		case entity.Empty:
			empty++
		}
	}

	return marks, empty
}
