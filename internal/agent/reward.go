package agent

import (
	"github.com/rocketscienceinc/tictactoe-rl/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rl/internal/tictactoe"
)

const (
	RewardWin          = 10.0
	RewardLoss         = -10.0
	RewardDrawStandard = 2.0
	RewardDrawXOX      = 0.5
	RewardThreat       = 0.2
)

// Reward - value of stateAfter for actor. Only standard mode shapes
// non-terminal positions; xox learns from terminal rewards alone.
func (that *Agent) Reward(stateAfter entity.GameState, actor entity.Cell) float64 {
	switch {
	case stateAfter.Winner == actor:
		return RewardWin
	case stateAfter.HasWinner():
		return RewardLoss
	case stateAfter.IsDraw:
		if stateAfter.Mode == entity.ModeXOX {
			return RewardDrawXOX
		}
		return RewardDrawStandard
	}

	if stateAfter.Mode == entity.ModeXOX {
		return 0
	}

	if hasThreat(stateAfter, actor) {
		return RewardThreat
	}

	return -that.stepCost
}

// hasThreat reports a line with size-1 marks of player and one empty cell.
func hasThreat(state entity.GameState, player entity.Cell) bool {
	for _, line := range tictactoe.Lines(state.BoardSize) {
		marks, empty := tictactoe.CountMarks(state.Board, line, player)
		if marks == state.BoardSize-1 && empty == 1 {
			return true
		}
	}

	return false
}
