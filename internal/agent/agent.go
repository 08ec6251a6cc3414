// Package agent implements a tabular Q-learning player.
package agent

import (
	"maps"
	"math/rand/v2"

	"github.com/rocketscienceinc/tictactoe-rl/internal/encoder"
	"github.com/rocketscienceinc/tictactoe-rl/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rl/internal/tictactoe"
)

// NoLegalMove is returned by SelectAction when the position has no empty cell.
const NoLegalMove = -1

const (
	DefaultLearningRate = 0.5
	DefaultDiscount     = 0.95
)

// QTable maps a state key to action values. Actions are indexed in the
// key's frame, see encoder.Frame.
type QTable map[encoder.Key]map[int]float64

// Agent owns one value table. It is not safe for concurrent use: a single
// caller drives it at a time.
type Agent struct {
	table    QTable
	alpha    float64
	gamma    float64
	stepCost float64
	encoder  encoder.Encoder
	rng      *rand.Rand
}

type Option func(*Agent)

func WithEncoder(enc encoder.Encoder) Option {
	return func(a *Agent) {
		a.encoder = enc
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(a *Agent) {
		a.rng = rng
	}
}

func WithLearningRate(alpha float64) Option {
	return func(a *Agent) {
		a.alpha = alpha
	}
}

func WithDiscount(gamma float64) Option {
	return func(a *Agent) {
		a.gamma = gamma
	}
}

// WithStepCost charges ordinary standard-mode moves that neither end the
// game nor create a threat.
func WithStepCost(cost float64) Option {
	return func(a *Agent) {
		a.stepCost = cost
	}
}

func New(opts ...Option) *Agent {
	a := &Agent{
		table:   make(QTable),
		alpha:   DefaultLearningRate,
		gamma:   DefaultDiscount,
		encoder: encoder.Direct{},
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.rng == nil {
		a.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint: gosec // simulation randomness
	}

	return a
}

// SelectAction - epsilon-greedy choice over the legal moves of state.
// Ties between maximal values are broken uniformly at random.
func (that *Agent) SelectAction(state entity.GameState, epsilon float64) int {
	moves := tictactoe.LegalMoves(state)
	if len(moves) == 0 {
		return NoLegalMove
	}

	if that.rng.Float64() < epsilon {
		return moves[that.rng.IntN(len(moves))]
	}

	frame := that.encoder.Encode(state.Board, state.BoardSize)
	actions := that.table[frame.Key]
	if len(actions) == 0 {
		return moves[that.rng.IntN(len(moves))]
	}

	that.rng.Shuffle(len(moves), func(i, j int) {
		moves[i], moves[j] = moves[j], moves[i]
	})

	best := moves[0]
	bestValue := actions[frame.ToKey(best)]
	for _, move := range moves[1:] {
		if value := actions[frame.ToKey(move)]; value > bestValue {
			best, bestValue = move, value
		}
	}

	return best
}

// Update - one-step Q-learning toward reward + gamma*max Q(next). Returns the new value.
func (that *Agent) Update(state entity.GameState, action int, reward float64, next entity.GameState) float64 {
	frame := that.encoder.Encode(state.Board, state.BoardSize)

	actions, ok := that.table[frame.Key]
	if !ok {
		actions = make(map[int]float64)
		that.table[frame.Key] = actions
	}

	maxNext := 0.0
	if !next.IsGameOver {
		maxNext = that.maxValue(next)
	}

	idx := frame.ToKey(action)
	current := actions[idx]
	updated := current + that.alpha*(reward+that.gamma*maxNext-current)
	actions[idx] = updated

	return updated
}

// maxValue - highest recorded value at state, 0 when nothing is recorded.
func (that *Agent) maxValue(state entity.GameState) float64 {
	actions := that.table[that.encoder.Encode(state.Board, state.BoardSize).Key]
	if len(actions) == 0 {
		return 0
	}

	first := true
	best := 0.0
	for _, value := range actions {
		if first || value > best {
			best, first = value, false
		}
	}

	return best
}

// Value - recorded value of action at state, in the state's own frame.
func (that *Agent) Value(state entity.GameState, action int) (float64, bool) {
	frame := that.encoder.Encode(state.Board, state.BoardSize)
	value, ok := that.table[frame.Key][frame.ToKey(action)]

	return value, ok
}

// Size - number of states with recorded values.
func (that *Agent) Size() int {
	return len(that.table)
}

// Reset - forgets every learned value.
func (that *Agent) Reset() {
	clear(that.table)
}

// Snapshot - deep copy of the table.
func (that *Agent) Snapshot() QTable {
	table := make(QTable, len(that.table))
	for key, actions := range that.table {
		table[key] = maps.Clone(actions)
	}

	return table
}
