package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-rl/internal/apperror"
)

// Mode selects the win condition.
type Mode uint8

const (
	// ModeStandard - a full line of one mark wins.
	ModeStandard Mode = iota
	// ModeXOX - a 3-cell line reading X-O-X or O-X-O wins for the end mark.
	ModeXOX
)

const (
	standardName = "standard"
	xoxName      = "xox"
)

func ParseMode(name string) (Mode, error) {
	switch name {
	case standardName, "":
		return ModeStandard, nil
	case xoxName:
		return ModeXOX, nil
	default:
		return ModeStandard, fmt.Errorf("%w: %q", apperror.ErrInvalidMode, name)
	}
}

func (that Mode) String() string {
	if that == ModeXOX {
		return xoxName
	}

	return standardName
}

func (that Mode) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Mode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}

	*that = mode

	return nil
}
