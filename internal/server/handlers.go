package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/oklog/ulid/v2"

	agendumErrors "agendum/internal/errors"
	"agendum/internal/logger"
	"agendum/internal/schedule"
)

// SaveHandler is the schedule assembler surface the server depends on.
type SaveHandler interface {
	Save(ctx context.Context, req schedule.SaveRequest) (*schedule.SaveResult, error)
}

// QueryHandler is the query service surface the server depends on.
type QueryHandler interface {
	Query(ctx context.Context, req schedule.QueryRequest) (*schedule.QueryResult, error)
}

type saveResponse struct {
	Status    string `json:"status"`
	ID        int64  `json:"id,omitempty"`
	Total     int64  `json:"total,omitempty"`
	Date      string `json:"date,omitempty"`
	DayOfWeek string `json:"day_of_week,omitempty"`
	Time      string `json:"time,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	Key       string `json:"key,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := logger.WithTraceID(r.Context(), ulid.Make().String())

	var req schedule.SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, saveResponse{Status: "invalid", Reason: "invalid request body"})
		return
	}

	result, err := s.assembler.Save(ctx, req)
	if err != nil {
		var dup *schedule.DuplicateError
		switch {
		case errors.As(err, &dup):
			// Idempotency: duplicates answer 200 so retrying callers settle.
			writeJSON(w, http.StatusOK, saveResponse{
				Status: "duplicate",
				Key:    schedule.ShortKey(dup.Key),
				Date:   dup.Date,
				Time:   dup.Time,
			})
		case errors.Is(err, agendumErrors.ErrInvalidInput):
			writeJSON(w, http.StatusBadRequest, saveResponse{Status: "invalid", Reason: err.Error()})
		default:
			slog.Error("Schedule save failed", "trace_id", logger.GetTraceID(ctx), "error", err)
			writeJSON(w, http.StatusInternalServerError, saveResponse{Status: "error", Reason: "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, saveResponse{
		Status:    "accepted",
		ID:        result.Record.ID,
		Total:     result.Total,
		Date:      result.Record.Date,
		DayOfWeek: result.Record.DayOfWeek,
		Time:      result.Record.Time,
		CreatedAt: result.Record.CreatedAt,
	})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := logger.WithTraceID(r.Context(), ulid.Make().String())

	var req schedule.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, saveResponse{Status: "invalid", Reason: "invalid request body"})
		return
	}

	result, err := s.queries.Query(ctx, req)
	if err != nil {
		if errors.Is(err, agendumErrors.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, saveResponse{Status: "invalid", Reason: err.Error()})
			return
		}
		slog.Error("Schedule query failed", "trace_id", logger.GetTraceID(ctx), "error", err)
		writeJSON(w, http.StatusInternalServerError, saveResponse{Status: "error", Reason: "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		if err := s.pinger.PingContext(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "reason": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
