package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-rl/internal/config"
	"github.com/rocketscienceinc/tictactoe-rl/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rl/internal/repository"
	"github.com/rocketscienceinc/tictactoe-rl/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-rl/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-rl/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-rl/transport/rest"
	"github.com/rocketscienceinc/tictactoe-rl/transport/websocket"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	settings, err := sessionSettings(conf)
	if err != nil {
		return err
	}

	var reports repository.ReportRepository

	if conf.Redis.Disabled {
		log.Warn("Redis disabled, reports will not be stored")
	} else {
		redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err := redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		reports = repository.NewReportRepository(redisStorage, conf.Reports.TTL, conf.Reports.Recent)
	}

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, conf.HTTPPort, rest.NewRouter(logger, reports)); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, reports, websocket.Options{
			Settings:           settings,
			TrainingEpisodes:   conf.Training.Episodes,
			EvaluationEpisodes: conf.Evaluation.Episodes,
		})
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

// sessionSettings - the setup every new session starts from.
func sessionSettings(conf *config.Config) (usecase.Settings, error) {
	mode, err := entity.ParseMode(conf.Game.Mode)
	if err != nil {
		return usecase.Settings{}, fmt.Errorf("invalid game config: %w", err)
	}

	if err = tictactoe.ValidateSetup(mode, conf.Game.BoardSize); err != nil {
		return usecase.Settings{}, fmt.Errorf("invalid game config: %w", err)
	}

	return usecase.Settings{
		Mode:             mode,
		BoardSize:        conf.Game.BoardSize,
		ProgressInterval: conf.Training.ProgressInterval,
		LearningRate:     conf.Training.LearningRate,
		Discount:         conf.Training.Discount,
		StepCost:         conf.Training.StepCost,
		Symmetry:         conf.Training.Symmetry,
	}, nil
}
