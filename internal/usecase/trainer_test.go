package usecase

import (
	"context"
	"io"
	"log/slog"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-rl/internal/agent"
	"github.com/rocketscienceinc/tictactoe-rl/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rl/internal/entity"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed*31+7))
}

func TestEpsilon(t *testing.T) {
	t.Run("Decays linearly", func(t *testing.T) {
		assert.InDelta(t, 1-1.0/80, Epsilon(1, 100), 1e-9)
		assert.InDelta(t, 0.5, Epsilon(40, 100), 1e-9)
	})

	t.Run("Reaches the floor at 80 percent of the run", func(t *testing.T) {
		assert.InDelta(t, 0.05, Epsilon(80, 100), 1e-9)
		assert.InDelta(t, 0.05, Epsilon(100, 100), 1e-9)
		assert.Greater(t, Epsilon(75, 100), 0.05)
	})
}

func TestTrainer_Train(t *testing.T) {
	ctx := context.Background()

	t.Run("Rejects a non-positive episode count", func(t *testing.T) {
		trainer := NewTrainer(discardLogger(), agent.New(), entity.ModeStandard, 3, 10)

		for _, n := range []int{0, -5} {
			_, err := trainer.Train(ctx, n, nil)
			require.ErrorIs(t, err, apperror.ErrInvalidEpisodeCount)
		}
	})

	t.Run("Rejects an invalid board", func(t *testing.T) {
		trainer := NewTrainer(discardLogger(), agent.New(), entity.ModeXOX, 4, 10)

		_, err := trainer.Train(ctx, 10, nil)

		require.ErrorIs(t, err, apperror.ErrInvalidBoardSize)
	})

	t.Run("Reports progress at a fixed cadence and on completion", func(t *testing.T) {
		// Given: a trainer reporting every 100 episodes
		learner := agent.New(agent.WithRand(seeded(1)))
		trainer := NewTrainer(discardLogger(), learner, entity.ModeStandard, 3, 100)

		// When: training 450 episodes
		var got []entity.Progress
		run, err := trainer.Train(ctx, 450, func(p entity.Progress) {
			got = append(got, p)
		})
		require.NoError(t, err)

		// Then: four periodic notifications and a final one
		require.Len(t, got, 5)
		for i, p := range got[:4] {
			assert.Equal(t, (i+1)*100, p.Episode)
			assert.InDelta(t, float64((i+1)*100)/450, p.Fraction, 1e-9)
			assert.InDelta(t, Epsilon(p.Episode, 450), p.Epsilon, 1e-9)
		}
		assert.InDelta(t, 1.0, got[4].Fraction, 1e-9)
		assert.Equal(t, 450, got[4].Episode)

		// Then: the run is complete and the table learned something
		assert.Equal(t, 450, run.Completed)
		assert.False(t, run.Cancelled)
		assert.NotEmpty(t, run.ID)
		assert.Positive(t, run.States)
		assert.Equal(t, learner.Size(), run.States)
	})

	t.Run("Cancelled context stops before the next episode", func(t *testing.T) {
		// Given: an already cancelled context
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		trainer := NewTrainer(discardLogger(), agent.New(), entity.ModeStandard, 3, 10)

		// When: training
		var calls int
		run, err := trainer.Train(cancelled, 1000, func(entity.Progress) { calls++ })

		// Then: nothing was played and no completion was reported
		require.NoError(t, err)
		assert.True(t, run.Cancelled)
		assert.Zero(t, run.Completed)
		assert.Zero(t, calls)
	})

	t.Run("Recorded values stay within the terminal reward bounds", func(t *testing.T) {
		// Given: a briefly trained agent
		learner := agent.New(agent.WithRand(seeded(2)))
		trainer := NewTrainer(discardLogger(), learner, entity.ModeStandard, 3, 10)

		// When: training a few hundred episodes
		_, err := trainer.Train(ctx, 300, nil)
		require.NoError(t, err)

		// Then: no recorded value exceeds the win reward or falls under the loss reward
		for _, actions := range learner.Snapshot() {
			for _, value := range actions {
				assert.LessOrEqual(t, value, agent.RewardWin+1e-9)
				assert.GreaterOrEqual(t, value, agent.RewardLoss-1e-9)
			}
		}
	})

	t.Run("Each move is credited after the reply and the loser's last move on the final ply", func(t *testing.T) {
		// Given: a 2x2 board, where PlayerA always wins with its second mark
		learner := agent.New(agent.WithRand(seeded(4)))
		trainer := NewTrainer(discardLogger(), learner, entity.ModeStandard, 2, 10)

		// When: training a single episode
		_, err := trainer.Train(ctx, 1, nil)
		require.NoError(t, err)

		// Then: A's opening holds half the threat reward, bootstrapped from the
		// unrecorded post-reply position; B's reply and A's win are closed by the end
		var values []float64
		for _, actions := range learner.Snapshot() {
			for _, value := range actions {
				values = append(values, value)
			}
		}
		assert.ElementsMatch(t, []float64{0.5 * agent.RewardThreat, 0.5 * agent.RewardLoss, 0.5 * agent.RewardWin}, values)
	})

	t.Run("Xox mode trains", func(t *testing.T) {
		learner := agent.New(agent.WithRand(seeded(3)))
		trainer := NewTrainer(discardLogger(), learner, entity.ModeXOX, 3, 1000)

		run, err := trainer.Train(ctx, 2000, nil)

		require.NoError(t, err)
		assert.Equal(t, 2000, run.Completed)
		assert.Positive(t, learner.Size())
	})
}

func TestTrainThenEvaluate_Standard(t *testing.T) {
	if testing.Short() {
		t.Skip("long self-play run")
	}

	// Given: an agent trained for 20000 standard episodes
	learner := agent.New(agent.WithRand(seeded(42)))
	trainer := NewTrainer(discardLogger(), learner, entity.ModeStandard, 3, DefaultProgressInterval)
	_, err := trainer.Train(context.Background(), 20000, nil)
	require.NoError(t, err)

	// When: evaluating 2000 games against a random opponent
	evaluator := NewEvaluator(discardLogger(), learner, seeded(43), entity.ModeStandard, 3)
	report, err := evaluator.Evaluate(context.Background(), 2000)
	require.NoError(t, err)

	// Then: the trained side dominates
	assert.Greater(t, report.WinRate, 0.8)
	assert.Less(t, report.LossRate, 0.05)
}
