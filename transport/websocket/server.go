package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-rl/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rl/internal/usecase"
)

const (
	sendBuffer      = 16
	writeWait       = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

type reportRepo interface {
	Save(ctx context.Context, report *entity.Report) error
}

// Options configure the sessions the server opens.
type Options struct {
	Settings           usecase.Settings
	TrainingEpisodes   int
	EvaluationEpisodes int
}

type handlerFunc func(ctx context.Context, conn *connection, msg *Message) error

type Server struct {
	logger   *slog.Logger
	reports  reportRepo
	options  Options
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc
}

// New - reports may be nil.
func New(logger *slog.Logger, reports reportRepo, options Options) *Server {
	server := &Server{
		logger:  logger.With("component", "websocket"),
		reports: reports,
		options: options,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionGameNew] = server.handleNewGame
	server.handlers[actionGameTurn] = server.handleGameTurn
	server.handlers[actionGameAI] = server.handleGameAI
	server.handlers[actionGameHint] = server.handleGameHint
	server.handlers[actionGameStatus] = server.handleGameStatus
	server.handlers[actionTrainingStart] = server.handleTrainingStart
	server.handlers[actionTrainingCancel] = server.handleTrainingCancel
	server.handlers[actionEvaluationRun] = server.handleEvaluationRun

	return server
}

// Handler - routes /ws to the upgrader.
func (that *Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Get("/ws", that.serveWS)

	return router
}

// Start - serves WebSocket connections until ctx is cancelled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveWS(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveWS")

	ws, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	defer ws.Close()

	session, err := usecase.NewGameManager(that.logger, that.reports, that.options.Settings)
	if err != nil {
		log.Error("failed to open session", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(req.Context())
	conn := &connection{
		ctx:     ctx,
		ws:      ws,
		session: session,
		send:    make(chan []byte, sendBuffer),
		logger:  log,
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		conn.writeLoop()
	}()

	log.Info("WebSocket connection established")

	if err = that.handleMessages(ctx, conn); err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		log.Error("error handling messages", "error", err)
	}

	cancel()
	session.Close()
	<-writerDone

	log.Info("WebSocket connection closed")
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, conn *connection) error {
	log := that.logger.With("method", "handleMessages")

	for {
		_, reqBody, err := conn.ws.ReadMessage()
		if err != nil {
			return err
		}

		var message Message
		if err = json.Unmarshal(reqBody, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			conn.reply(actionError, ResponsePayload{Error: "invalid message"})
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			conn.reply(actionError, ResponsePayload{Error: "unknown action " + message.Action})
			continue
		}

		if err = handler(ctx, conn, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// connection is one client and the session it drives.
type connection struct {
	ctx     context.Context
	ws      *websocket.Conn
	session *usecase.GameManager
	send    chan []byte
	logger  *slog.Logger
}

// writeLoop owns all writes to the socket.
func (that *connection) writeLoop() {
	for {
		select {
		case <-that.ctx.Done():
			_ = that.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case msg := <-that.send:
			_ = that.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				that.logger.Error("failed to write message", "error", err)
				_ = that.ws.Close()
				return
			}
		}
	}
}

// reply - queues a message, waiting while the client is connected.
func (that *connection) reply(action string, payload ResponsePayload) {
	msg, err := encodeMessage(action, payload)
	if err != nil {
		that.logger.Error("failed to marshal response", "action", action, "error", err)
		return
	}

	select {
	case that.send <- msg:
	case <-that.ctx.Done():
	}
}

// notify - queues a message unless the client is behind, then it is dropped.
func (that *connection) notify(action string, payload ResponsePayload) {
	msg, err := encodeMessage(action, payload)
	if err != nil {
		that.logger.Error("failed to marshal notification", "action", action, "error", err)
		return
	}

	select {
	case that.send <- msg:
	default:
		that.logger.Debug("notification dropped", "action", action)
	}
}

func (that *connection) replyError(action string, err error) {
	that.reply(action, ResponsePayload{Error: err.Error()})
}
