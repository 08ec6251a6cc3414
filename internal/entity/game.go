package entity

// GameState is an immutable snapshot of one game. Moves produce a new
// snapshot with a cloned board; a snapshot is never changed in place.
type GameState struct {
	Board         Board `json:"board"`
	BoardSize     int   `json:"board_size"`
	CurrentPlayer Cell  `json:"current_player"`
	Winner        Cell  `json:"winner"`
	IsDraw        bool  `json:"is_draw"`
	IsGameOver    bool  `json:"is_game_over"`
	Mode          Mode  `json:"mode"`
}

// NewGameState - returns an empty board of the given size with PlayerA to move.
func NewGameState(mode Mode, size int) GameState {
	return GameState{
		Board:         NewBoard(size),
		BoardSize:     size,
		CurrentPlayer: PlayerA,
		Mode:          mode,
	}
}

// HasWinner - reports whether a winner is set.
func (that GameState) HasWinner() bool {
	return that.Winner != Empty
}

// IsFresh - true when no move has been played yet.
func (that GameState) IsFresh() bool {
	return that.Board.EmptyCount() == len(that.Board)
}

// Equal compares size and board contents. Turn and status are derived from
// the contents, so they are not compared.
func (that GameState) Equal(other GameState) bool {
	if that.BoardSize != other.BoardSize || len(that.Board) != len(other.Board) {
		return false
	}

	for i := range that.Board {
		if that.Board[i] != other.Board[i] {
			return false
		}
	}

	return true
}
