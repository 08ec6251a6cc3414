package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/tictactoe-rl/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rl/internal/entity"
)

type reportStore interface {
	GetByID(ctx context.Context, id string) (*entity.Report, error)
	ListRecent(ctx context.Context) ([]string, error)
}

type reportHandlers struct {
	logger  *slog.Logger
	reports reportStore
}

type reportList struct {
	Reports []string `json:"reports"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *reportHandlers) getReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	report, err := that.reports.GetByID(r.Context(), id)
	if errors.Is(err, apperror.ErrReportNotFound) {
		that.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}

	if err != nil {
		that.logger.Error("failed to get report", "report", id, "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to get report"})
		return
	}

	that.writeJSON(w, http.StatusOK, report)
}

func (that *reportHandlers) listReports(w http.ResponseWriter, r *http.Request) {
	ids, err := that.reports.ListRecent(r.Context())
	if err != nil {
		that.logger.Error("failed to list reports", "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to list reports"})
		return
	}

	if ids == nil {
		ids = []string{}
	}

	that.writeJSON(w, http.StatusOK, reportList{Reports: ids})
}

func (that *reportHandlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

func reportsUnavailable(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, "report storage is disabled", http.StatusServiceUnavailable)
}
