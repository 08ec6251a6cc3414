// Package simulator drives games one ply at a time.
package simulator

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-rl/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rl/internal/tictactoe"
)

// NoMove is what a Chooser returns when it cannot move.
const NoMove = -1

var ErrNoChooser = errors.New("no chooser for player")

// Transition is one applied ply.
type Transition struct {
	State  entity.GameState
	Action int
	Mover  entity.Cell
	Next   entity.GameState
}

// Chooser picks the move for the player to act in state.
type Chooser func(state entity.GameState) int

// Ply - applies action for the player to move. Mover is recorded before the turn passes.
func Ply(state entity.GameState, action int) (Transition, error) {
	next, err := tictactoe.ApplyMove(state, action)
	if err != nil {
		return Transition{}, fmt.Errorf("failed to apply ply: %w", err)
	}

	return Transition{
		State:  state,
		Action: action,
		Mover:  state.CurrentPlayer,
		Next:   next,
	}, nil
}

// Players assigns a chooser to each mark.
type Players map[entity.Cell]Chooser

// Play - runs state to the end with the given choosers, calling observe after
// every ply. It stops early when a chooser returns NoMove and returns the
// last state reached.
func Play(state entity.GameState, players Players, observe func(Transition)) (entity.GameState, error) {
	for !state.IsGameOver {
		choose, ok := players[state.CurrentPlayer]
		if !ok {
			return state, fmt.Errorf("%w: %s", ErrNoChooser, state.CurrentPlayer)
		}

		action := choose(state)
		if action == NoMove {
			return state, nil
		}

		transition, err := Ply(state, action)
		if err != nil {
			return state, err
		}

		if observe != nil {
			observe(transition)
		}

		state = transition.Next
	}

	return state, nil
}
