package entity

import "time"

const (
	ReportTypeEvaluation = "evaluation"
	ReportTypeTraining   = "training"
)

// Progress is one training progress notification.
type Progress struct {
	Fraction float64 `json:"fraction"`
	Episode  int     `json:"episode"`
	Epsilon  float64 `json:"epsilon"`
}

// EvaluationReport aggregates a greedy-agent versus random-opponent run,
// counted from the agent's side. Episodes is the number of games played,
// which is below the requested count when the run was cancelled; the rates
// are relative to it.
type EvaluationReport struct {
	ID        string        `json:"id"`
	Mode      Mode          `json:"mode"`
	BoardSize int           `json:"board_size"`
	Episodes  int           `json:"episodes"`
	Wins      int           `json:"wins"`
	Losses    int           `json:"losses"`
	Draws     int           `json:"draws"`
	WinRate   float64       `json:"win_rate"`
	LossRate  float64       `json:"loss_rate"`
	DrawRate  float64       `json:"draw_rate"`
	States    int           `json:"states"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}

// Finalize - computes the rates from the counts.
func (that *EvaluationReport) Finalize() {
	if that.Episodes == 0 {
		return
	}

	total := float64(that.Episodes)
	that.WinRate = float64(that.Wins) / total
	that.LossRate = float64(that.Losses) / total
	that.DrawRate = float64(that.Draws) / total
}

// TrainingRun summarizes one self-play training session.
type TrainingRun struct {
	ID        string        `json:"id"`
	Mode      Mode          `json:"mode"`
	BoardSize int           `json:"board_size"`
	Episodes  int           `json:"episodes"`
	Completed int           `json:"completed"`
	Cancelled bool          `json:"cancelled"`
	States    int           `json:"states"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}

// Report is the stored envelope for either run kind.
type Report struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Evaluation *EvaluationReport `json:"evaluation,omitempty"`
	Training   *TrainingRun      `json:"training,omitempty"`
}
