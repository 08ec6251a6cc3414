package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/rocketscienceinc/tictactoe-rl/internal/agent"
	"github.com/rocketscienceinc/tictactoe-rl/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rl/internal/encoder"
	"github.com/rocketscienceinc/tictactoe-rl/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rl/internal/tictactoe"
)

// Status is the session's operation state: Idle, or one long-running job.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusTraining   Status = "training"
	StatusEvaluating Status = "evaluating"
)

const (
	openingEpsilon     = 0.9
	interactiveEpsilon = 0.05
)

// InteractiveEpsilon - exploration used for the AI's move in a live game:
// a varied opening on an empty board, near-greedy afterwards.
func InteractiveEpsilon(state entity.GameState) float64 {
	if state.IsFresh() {
		return openingEpsilon
	}

	return interactiveEpsilon
}

type reportRepo interface {
	Save(ctx context.Context, report *entity.Report) error
}

// Settings tune the agent and the jobs of a session.
type Settings struct {
	Mode             entity.Mode
	BoardSize        int
	ProgressInterval int
	LearningRate     float64
	Discount         float64
	StepCost         float64
	Symmetry         bool
	// Seed makes a session reproducible; 0 draws a random seed.
	Seed uint64
}

// SessionStatus is a point-in-time view of a session.
type SessionStatus struct {
	Status   Status           `json:"status"`
	Progress entity.Progress  `json:"progress"`
	Game     entity.GameState `json:"game"`
	States   int              `json:"states"`
}

// GameManager is one player's session: a live game and the agent behind it.
// Training and evaluation run one at a time and exclude interactive play.
type GameManager struct {
	logger   *slog.Logger
	reports  reportRepo
	settings Settings
	rng      *rand.Rand

	mu       sync.Mutex
	agent    *agent.Agent
	game     entity.GameState
	status   Status
	progress entity.Progress
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewGameManager - reports may be nil when results are not stored.
func NewGameManager(logger *slog.Logger, reports reportRepo, settings Settings) (*GameManager, error) {
	if err := tictactoe.ValidateSetup(settings.Mode, settings.BoardSize); err != nil {
		return nil, fmt.Errorf("invalid session settings: %w", err)
	}

	seed := settings.Seed
	if seed == 0 {
		seed = rand.Uint64() //nolint: gosec // simulation randomness
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint: gosec // simulation randomness

	manager := &GameManager{
		logger:   logger.With("component", "game_manager"),
		reports:  reports,
		settings: settings,
		rng:      rng,
		game:     entity.NewGameState(settings.Mode, settings.BoardSize),
		status:   StatusIdle,
	}
	manager.agent = manager.newAgent()

	return manager, nil
}

func (that *GameManager) newAgent() *agent.Agent {
	opts := []agent.Option{
		agent.WithRand(rand.New(rand.NewPCG(that.rng.Uint64(), that.rng.Uint64()))), //nolint: gosec // simulation randomness
		agent.WithStepCost(that.settings.StepCost),
	}

	if that.settings.LearningRate > 0 {
		opts = append(opts, agent.WithLearningRate(that.settings.LearningRate))
	}

	if that.settings.Discount > 0 {
		opts = append(opts, agent.WithDiscount(that.settings.Discount))
	}

	if that.settings.Symmetry {
		opts = append(opts, agent.WithEncoder(&encoder.Symmetric{}))
	}

	return agent.New(opts...)
}

// NewGame - starts a fresh game. Switching mode or board size clears the
// agent, values learned for another setup are not reused.
func (that *GameManager) NewGame(mode entity.Mode, size int) (entity.GameState, error) {
	if err := tictactoe.ValidateSetup(mode, size); err != nil {
		return entity.GameState{}, fmt.Errorf("failed to start game: %w", err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.ensureIdle(); err != nil {
		return entity.GameState{}, err
	}

	if mode != that.settings.Mode || size != that.settings.BoardSize {
		that.agent.Reset()
		that.settings.Mode, that.settings.BoardSize = mode, size
		that.logger.Info("setup changed, agent reset", "mode", mode, "board_size", size)
	}

	that.game = entity.NewGameState(mode, size)

	return that.game, nil
}

// Game - the live game snapshot.
func (that *GameManager) Game() entity.GameState {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.game
}

// ApplyHumanMove - plays index for the side to move in the live game.
func (that *GameManager) ApplyHumanMove(index int) (entity.GameState, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.ensureIdle(); err != nil {
		return that.game, err
	}

	next, err := tictactoe.ApplyMove(that.game, index)
	if err != nil {
		return that.game, fmt.Errorf("failed to apply human move: %w", err)
	}

	that.game = next

	return next, nil
}

// RequestAIMove - the agent's choice for the live game, or agent.NoLegalMove.
func (that *GameManager) RequestAIMove(epsilon float64) (int, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.ensureIdle(); err != nil {
		return agent.NoLegalMove, err
	}

	return that.agent.SelectAction(that.game, epsilon), nil
}

// PlayAIMove - lets the agent move in the live game with InteractiveEpsilon.
// The returned index is agent.NoLegalMove when the game is already over.
func (that *GameManager) PlayAIMove() (entity.GameState, int, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.ensureIdle(); err != nil {
		return that.game, agent.NoLegalMove, err
	}

	move := that.agent.SelectAction(that.game, InteractiveEpsilon(that.game))
	if move == agent.NoLegalMove {
		return that.game, move, nil
	}

	next, err := tictactoe.ApplyMove(that.game, move)
	if err != nil {
		panic(fmt.Errorf("agent chose an illegal move: %w", err))
	}

	that.game = next

	return next, move, nil
}

// StartTraining - clears the agent and trains it in the background. The
// returned channel yields the run summary once training ends, after the
// last progress notification; the live game is then reset.
func (that *GameManager) StartTraining(episodes int, onProgress ProgressFunc) (<-chan entity.TrainingRun, error) {
	if episodes <= 0 {
		return nil, fmt.Errorf("%w: got %d", apperror.ErrInvalidEpisodeCount, episodes)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.ensureIdle(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	that.status = StatusTraining
	that.progress = entity.Progress{}
	that.cancel = cancel
	that.done = make(chan struct{})
	that.agent.Reset()

	trainer := NewTrainer(that.logger, that.agent, that.settings.Mode, that.settings.BoardSize, that.settings.ProgressInterval)
	result := make(chan entity.TrainingRun, 1)
	done := that.done

	relay := newProgressRelay(func(p entity.Progress) {
		that.mu.Lock()
		that.progress = p
		that.mu.Unlock()

		notify(onProgress, p)
	})

	go func() {
		defer close(done)
		defer cancel()

		run, err := trainer.Train(ctx, episodes, relay.Publish)
		relay.Close()
		if err != nil {
			panic(fmt.Errorf("validated training failed: %w", err))
		}

		that.mu.Lock()
		that.status = StatusIdle
		that.cancel = nil
		that.game = entity.NewGameState(that.settings.Mode, that.settings.BoardSize)
		that.mu.Unlock()

		that.saveReport(&entity.Report{ID: run.ID, Type: entity.ReportTypeTraining, Training: &run})

		result <- run
	}()

	return result, nil
}

// CancelTraining - asks the running training to stop after its current episode.
func (that *GameManager) CancelTraining() error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.status != StatusTraining || that.cancel == nil {
		return apperror.ErrNoTrainingInProgress
	}

	that.cancel()
	that.logger.Info("training cancellation requested")

	return nil
}

// RunEvaluation - plays episodes of greedy agent versus random opponent.
// It blocks until done; the agent's table is not modified.
func (that *GameManager) RunEvaluation(ctx context.Context, episodes int) (entity.EvaluationReport, error) {
	if episodes <= 0 {
		return entity.EvaluationReport{}, fmt.Errorf("%w: got %d", apperror.ErrInvalidEpisodeCount, episodes)
	}

	that.mu.Lock()
	if err := that.ensureIdle(); err != nil {
		that.mu.Unlock()
		return entity.EvaluationReport{}, err
	}
	that.status = StatusEvaluating
	opponentRng := rand.New(rand.NewPCG(that.rng.Uint64(), that.rng.Uint64())) //nolint: gosec // simulation randomness
	evaluator := NewEvaluator(that.logger, that.agent, opponentRng, that.settings.Mode, that.settings.BoardSize)
	that.mu.Unlock()

	defer func() {
		that.mu.Lock()
		that.status = StatusIdle
		that.mu.Unlock()
	}()

	report, err := evaluator.Evaluate(ctx, episodes)
	if err != nil {
		return entity.EvaluationReport{}, fmt.Errorf("failed to evaluate: %w", err)
	}

	that.saveReport(&entity.Report{ID: report.ID, Type: entity.ReportTypeEvaluation, Evaluation: &report})

	return report, nil
}

// Status - the current operation, last training progress and live game.
func (that *GameManager) Status() SessionStatus {
	that.mu.Lock()
	defer that.mu.Unlock()

	return SessionStatus{
		Status:   that.status,
		Progress: that.progress,
		Game:     that.game,
		States:   that.statesLocked(),
	}
}

// statesLocked reads the table size; during training the trainer owns the table.
func (that *GameManager) statesLocked() int {
	if that.status == StatusTraining {
		return 0
	}

	return that.agent.Size()
}

// Close - cancels a running training and waits for it to stop.
func (that *GameManager) Close() {
	that.mu.Lock()
	cancel, done := that.cancel, that.done
	that.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	if done != nil {
		<-done
	}
}

func (that *GameManager) ensureIdle() error {
	if that.status != StatusIdle {
		return fmt.Errorf("%w: %s", apperror.ErrOperationInProgress, that.status)
	}

	return nil
}

func (that *GameManager) saveReport(report *entity.Report) {
	if that.reports == nil {
		return
	}

	log := that.logger.With("method", "saveReport")

	if err := that.reports.Save(context.Background(), report); err != nil {
		log.Error("failed to save report", "report", report.ID, "error", err)
		return
	}

	log.Debug("report saved", "report", report.ID, "type", report.Type)
}
