package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-rl/internal/agent"
	"github.com/rocketscienceinc/tictactoe-rl/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rl/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rl/internal/simulator"
	"github.com/rocketscienceinc/tictactoe-rl/internal/tictactoe"
)

const (
	DefaultProgressInterval = 500

	minEpsilon = 0.05
	// exploration reaches minEpsilon after this share of the run
	decayShare = 0.8
)

// ProgressFunc receives training progress. It is called from the training
// goroutine and must return quickly.
type ProgressFunc func(entity.Progress)

// Epsilon - exploration rate of episode i (1-based) out of n.
func Epsilon(i, n int) float64 {
	return max(minEpsilon, 1-float64(i)/(float64(n)*decayShare))
}

// Trainer runs self-play episodes against one agent.
type Trainer struct {
	logger   *slog.Logger
	agent    *agent.Agent
	mode     entity.Mode
	size     int
	interval int
}

func NewTrainer(logger *slog.Logger, learner *agent.Agent, mode entity.Mode, size, progressInterval int) *Trainer {
	if progressInterval <= 0 {
		progressInterval = DefaultProgressInterval
	}

	return &Trainer{
		logger:   logger.With("component", "trainer"),
		agent:    learner,
		mode:     mode,
		size:     size,
		interval: progressInterval,
	}
}

// Train - plays episodes of self-play, updating the agent after every ply.
// Cancelling ctx stops the run between episodes.
func (that *Trainer) Train(ctx context.Context, episodes int, onProgress ProgressFunc) (entity.TrainingRun, error) {
	if episodes <= 0 {
		return entity.TrainingRun{}, fmt.Errorf("%w: got %d", apperror.ErrInvalidEpisodeCount, episodes)
	}

	if err := tictactoe.ValidateSetup(that.mode, that.size); err != nil {
		return entity.TrainingRun{}, fmt.Errorf("invalid training setup: %w", err)
	}

	log := that.logger.With("method", "Train")

	run := entity.TrainingRun{
		ID:        uuid.New().String(),
		Mode:      that.mode,
		BoardSize: that.size,
		Episodes:  episodes,
		CreatedAt: time.Now(),
	}

	log.Info("training started", "run", run.ID, "episodes", episodes, "mode", that.mode, "board_size", that.size)

	for i := 1; i <= episodes; i++ {
		if ctx.Err() != nil {
			run.Cancelled = true
			break
		}

		epsilon := Epsilon(i, episodes)
		that.runEpisode(epsilon)
		run.Completed = i

		if i%that.interval == 0 && i != episodes {
			progress := entity.Progress{Fraction: float64(i) / float64(episodes), Episode: i, Epsilon: epsilon}
			log.Debug("training progress", "episode", i, "epsilon", epsilon, "states", that.agent.Size())
			notify(onProgress, progress)
		}
	}

	if !run.Cancelled {
		notify(onProgress, entity.Progress{Fraction: 1, Episode: episodes, Epsilon: Epsilon(episodes, episodes)})
	}

	run.States = that.agent.Size()
	run.Duration = time.Since(run.CreatedAt)

	log.Info("training finished",
		"run", run.ID, "completed", run.Completed, "cancelled", run.Cancelled,
		"states", run.States, "duration", run.Duration)

	return run, nil
}

func notify(onProgress ProgressFunc, progress entity.Progress) {
	if onProgress != nil {
		onProgress(progress)
	}
}

// pendingMove is a ply whose successor, the mover's next decision point, is not known yet.
type pendingMove struct {
	state  entity.GameState
	action int
	reward float64
	set    bool
}

// runEpisode plays one self-play game. Each player's move is valued against
// the position that player faces next, after the opponent's reply; a terminal
// position closes both players' open moves. A non-terminal update therefore
// bootstraps from the position after the reply, not the one right after the move.
func (that *Trainer) runEpisode(epsilon float64) {
	var open [3]pendingMove // indexed by entity.Cell

	state := entity.NewGameState(that.mode, that.size)
	for !state.IsGameOver {
		action := that.agent.SelectAction(state, epsilon)
		if action == agent.NoLegalMove {
			return
		}

		tr, err := simulator.Ply(state, action)
		if err != nil {
			panic(fmt.Errorf("rules engine rejected a legal move: %w", err))
		}

		mover, opponent := tr.Mover, tr.Mover.Opponent()
		reward := that.agent.Reward(tr.Next, mover)

		if prev := open[opponent]; prev.set {
			if tr.Next.IsGameOver {
				that.agent.Update(prev.state, prev.action, that.agent.Reward(tr.Next, opponent), tr.Next)
			} else {
				that.agent.Update(prev.state, prev.action, prev.reward, tr.Next)
			}
			open[opponent] = pendingMove{}
		}

		if tr.Next.IsGameOver {
			that.agent.Update(tr.State, tr.Action, reward, tr.Next)
		} else {
			open[mover] = pendingMove{state: tr.State, action: tr.Action, reward: reward, set: true}
		}

		state = tr.Next
	}
}
