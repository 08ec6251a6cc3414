package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-rl/internal/agent"
	"github.com/rocketscienceinc/tictactoe-rl/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rl/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rl/internal/simulator"
	"github.com/rocketscienceinc/tictactoe-rl/internal/tictactoe"
)

// Evaluator pits the greedy agent, playing PlayerA, against a uniformly
// random PlayerB. It only reads the agent's table.
type Evaluator struct {
	logger *slog.Logger
	agent  *agent.Agent
	rng    *rand.Rand
	mode   entity.Mode
	size   int
}

func NewEvaluator(logger *slog.Logger, player *agent.Agent, rng *rand.Rand, mode entity.Mode, size int) *Evaluator {
	return &Evaluator{
		logger: logger.With("component", "evaluator"),
		agent:  player,
		rng:    rng,
		mode:   mode,
		size:   size,
	}
}

// Evaluate - plays episodes and tallies them from the agent's side.
// Cancelling ctx stops early; the report then covers the games played.
func (that *Evaluator) Evaluate(ctx context.Context, episodes int) (entity.EvaluationReport, error) {
	if episodes <= 0 {
		return entity.EvaluationReport{}, fmt.Errorf("%w: got %d", apperror.ErrInvalidEpisodeCount, episodes)
	}

	if err := tictactoe.ValidateSetup(that.mode, that.size); err != nil {
		return entity.EvaluationReport{}, fmt.Errorf("invalid evaluation setup: %w", err)
	}

	report := entity.EvaluationReport{
		ID:        uuid.New().String(),
		Mode:      that.mode,
		BoardSize: that.size,
		States:    that.agent.Size(),
		CreatedAt: time.Now(),
	}

	players := simulator.Players{
		entity.PlayerA: func(state entity.GameState) int {
			return that.agent.SelectAction(state, 0)
		},
		entity.PlayerB: that.randomMove,
	}

	for i := 0; i < episodes; i++ {
		if ctx.Err() != nil {
			break
		}

		final, err := simulator.Play(entity.NewGameState(that.mode, that.size), players, nil)
		if err != nil {
			panic(fmt.Errorf("evaluation episode broke the rules: %w", err))
		}

		switch final.Winner {
		case entity.PlayerA:
			report.Wins++
		case entity.PlayerB:
			report.Losses++
		default:
			report.Draws++
		}
		report.Episodes++
	}

	report.Finalize()
	report.Duration = time.Since(report.CreatedAt)

	that.logger.Info("evaluation finished",
		"report", report.ID, "episodes", report.Episodes,
		"wins", report.Wins, "losses", report.Losses, "draws", report.Draws, "win_rate", report.WinRate)

	return report, nil
}

func (that *Evaluator) randomMove(state entity.GameState) int {
	moves := tictactoe.LegalMoves(state)
	if len(moves) == 0 {
		return simulator.NoMove
	}

	return moves[that.rng.IntN(len(moves))]
}
