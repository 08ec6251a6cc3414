package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-rl/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rl/internal/usecase"
)

const (
	actionGameNew          = "game:new"
	actionGameTurn         = "game:turn"
	actionGameAI           = "game:ai"
	actionGameHint         = "game:hint"
	actionGameStatus       = "game:status"
	actionTrainingStart    = "training:start"
	actionTrainingCancel   = "training:cancel"
	actionTrainingProgress = "training:progress"
	actionTrainingDone     = "training:done"
	actionEvaluationRun    = "evaluation:run"
	actionEvaluationDone   = "evaluation:done"
	actionError            = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload is what a client sends with an action.
type Payload struct {
	Mode      string   `json:"mode,omitempty"`
	BoardSize int      `json:"board_size,omitempty"`
	Cell      *int     `json:"cell,omitempty"`
	Epsilon   *float64 `json:"epsilon,omitempty"`
	Episodes  int      `json:"episodes,omitempty"`
}

type ResponsePayload struct {
	Game       *entity.GameState        `json:"game,omitempty"`
	Move       *int                     `json:"move,omitempty"`
	Status     *usecase.SessionStatus   `json:"status,omitempty"`
	Progress   *entity.Progress         `json:"progress,omitempty"`
	Training   *entity.TrainingRun      `json:"training,omitempty"`
	Evaluation *entity.EvaluationReport `json:"evaluation,omitempty"`
	Error      string                   `json:"error,omitempty"`
}

func encodeMessage(action string, payload ResponsePayload) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Message{Action: action, Payload: body})
}
