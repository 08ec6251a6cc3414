package apperror

import "errors"

var (
	ErrIllegalMove          = errors.New("illegal move")
	ErrCellOccupied         = errors.New("cell is already occupied")
	ErrInvalidCell          = errors.New("invalid cell index")
	ErrGameFinished         = errors.New("game is already finished")
	ErrInvalidBoardSize     = errors.New("invalid board size")
	ErrInvalidMode          = errors.New("invalid game mode")
	ErrInvalidEpisodeCount  = errors.New("episode count must be positive")
	ErrOperationInProgress  = errors.New("another operation is in progress")
	ErrNoTrainingInProgress = errors.New("no training in progress")
	ErrReportNotFound       = errors.New("report not found")
)
