package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-rl/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rl/internal/entity"
)

var (
	errCellRequired    = errors.New("cell is required")
	errEpsilonRequired = errors.New("epsilon is required")
)

func decodePayload(msg *Message) (Payload, error) {
	var payload Payload
	if len(msg.Payload) == 0 {
		return payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return payload, nil
}

func (that *Server) handleNewGame(_ context.Context, conn *connection, msg *Message) error {
	log := that.logger.With("method", "handleNewGame")

	payload, err := decodePayload(msg)
	if err != nil {
		conn.replyError(msg.Action, err)
		return err
	}

	mode := that.options.Settings.Mode
	if payload.Mode != "" {
		if mode, err = entity.ParseMode(payload.Mode); err != nil {
			conn.replyError(msg.Action, err)
			return nil
		}
	}

	size := payload.BoardSize
	if size == 0 {
		size = that.options.Settings.BoardSize
	}

	game, err := conn.session.NewGame(mode, size)
	if err != nil {
		conn.replyError(msg.Action, err)
		return nil
	}

	conn.reply(msg.Action, ResponsePayload{Game: &game})
	log.Debug("new game started", "mode", mode, "board_size", size)

	return nil
}

// handleGameTurn - plays the human move and answers with the AI's reply.
func (that *Server) handleGameTurn(_ context.Context, conn *connection, msg *Message) error {
	payload, err := decodePayload(msg)
	if err != nil {
		conn.replyError(msg.Action, err)
		return err
	}

	if payload.Cell == nil {
		conn.replyError(msg.Action, errCellRequired)
		return nil
	}

	game, err := conn.session.ApplyHumanMove(*payload.Cell)
	if err != nil {
		conn.replyError(msg.Action, err)
		return nil
	}

	response := ResponsePayload{Game: &game}

	if !game.IsGameOver {
		replyGame, move, err := conn.session.PlayAIMove()
		if err != nil {
			conn.replyError(msg.Action, err)
			return nil
		}

		response.Game = &replyGame
		response.Move = &move
	}

	conn.reply(msg.Action, response)

	return nil
}

// handleGameAI - the agent moves for the side to move, e.g. to open the game.
func (that *Server) handleGameAI(_ context.Context, conn *connection, msg *Message) error {
	game, move, err := conn.session.PlayAIMove()
	if err != nil {
		conn.replyError(msg.Action, err)
		return nil
	}

	conn.reply(msg.Action, ResponsePayload{Game: &game, Move: &move})

	return nil
}

// handleGameHint - the agent's choice at the given epsilon, not played.
func (that *Server) handleGameHint(_ context.Context, conn *connection, msg *Message) error {
	payload, err := decodePayload(msg)
	if err != nil {
		conn.replyError(msg.Action, err)
		return err
	}

	if payload.Epsilon == nil {
		conn.replyError(msg.Action, errEpsilonRequired)
		return nil
	}

	move, err := conn.session.RequestAIMove(*payload.Epsilon)
	if err != nil {
		conn.replyError(msg.Action, err)
		return nil
	}

	conn.reply(msg.Action, ResponsePayload{Move: &move})

	return nil
}

func (that *Server) handleGameStatus(_ context.Context, conn *connection, msg *Message) error {
	status := conn.session.Status()
	conn.reply(msg.Action, ResponsePayload{Status: &status})

	return nil
}

func (that *Server) handleTrainingStart(ctx context.Context, conn *connection, msg *Message) error {
	log := that.logger.With("method", "handleTrainingStart")

	payload, err := decodePayload(msg)
	if err != nil {
		conn.replyError(msg.Action, err)
		return err
	}

	episodes := payload.Episodes
	if episodes == 0 {
		episodes = that.options.TrainingEpisodes
	}

	result, err := conn.session.StartTraining(episodes, func(progress entity.Progress) {
		conn.notify(actionTrainingProgress, ResponsePayload{Progress: &progress})
	})
	if err != nil {
		conn.replyError(msg.Action, err)
		return nil
	}

	status := conn.session.Status()
	conn.reply(msg.Action, ResponsePayload{Status: &status})

	go func() {
		select {
		case run := <-result:
			game := conn.session.Game()
			conn.reply(actionTrainingDone, ResponsePayload{Training: &run, Game: &game})
			log.Info("training finished", "run", run.ID, "completed", run.Completed, "cancelled", run.Cancelled)
		case <-ctx.Done():
		}
	}()

	return nil
}

func (that *Server) handleTrainingCancel(_ context.Context, conn *connection, msg *Message) error {
	if err := conn.session.CancelTraining(); err != nil {
		conn.replyError(msg.Action, err)
		return nil
	}

	status := conn.session.Status()
	conn.reply(msg.Action, ResponsePayload{Status: &status})

	return nil
}

// handleEvaluationRun - evaluates in the background; the report arrives as
// evaluation:done.
func (that *Server) handleEvaluationRun(ctx context.Context, conn *connection, msg *Message) error {
	log := that.logger.With("method", "handleEvaluationRun")

	payload, err := decodePayload(msg)
	if err != nil {
		conn.replyError(msg.Action, err)
		return err
	}

	episodes := payload.Episodes
	if episodes == 0 {
		episodes = that.options.EvaluationEpisodes
	}

	if episodes <= 0 {
		conn.replyError(msg.Action, apperror.ErrInvalidEpisodeCount)
		return nil
	}

	go func() {
		report, err := conn.session.RunEvaluation(ctx, episodes)
		if err != nil {
			conn.replyError(actionEvaluationDone, err)
			return
		}

		conn.reply(actionEvaluationDone, ResponsePayload{Evaluation: &report})
		log.Info("evaluation finished", "report", report.ID, "win_rate", report.WinRate)
	}()

	return nil
}
