// Package api serves the daemon's HTTP interface.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"sleepat/internal/host"
	"sleepat/internal/status"
	"sleepat/internal/timelog"
	"sleepat/internal/timer"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
	keepAliveInterval   = 15 * time.Second
)

// TimerService is the part of host.Service the API drives.
type TimerService interface {
	Status(ctx context.Context) host.Status
	Watch(ctx context.Context) (<-chan timer.State, error)
	Dispatch(ctx context.Context, cmd host.Command) error
	Trigger(ctx context.Context, action status.Action) error
}

type NoticeBoard interface {
	Current() (status.Notice, bool)
	HasAction(action status.Action) bool
}

type LockManager interface {
	Granted(ctx context.Context) bool
	IsActive(ctx context.Context) bool
	RequestPermission(ctx context.Context) error
	Revoke(ctx context.Context) error
}

type History interface {
	ListLogs(ctx context.Context, limit int) ([]timelog.TimeLog, error)
}

// LockStatus is the body of the /v1/lock routes.
type LockStatus struct {
	Granted bool `json:"granted"`
	Active  bool `json:"active"`
}

type MinutesRequest struct {
	Minutes int `json:"minutes"`
}

type LanguageRequest struct {
	Language string `json:"language"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type Handler struct {
	timer   TimerService
	board   NoticeBoard
	lock    LockManager
	history History
	logger  *slog.Logger
}

func NewHandler(timer TimerService, board NoticeBoard, lock LockManager, history History, logger *slog.Logger) *Handler {
	return &Handler{
		timer:   timer,
		board:   board,
		lock:    lock,
		history: history,
		logger:  logger,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetTimer handles GET /v1/timer.
func (h *Handler) GetTimer(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.timer.Status(r.Context()))
}

// Events streams every snapshot as a server-sent "state" event.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	states, err := h.timer.Watch(ctx)
	if err != nil {
		h.handleError(w, err)
		return
	}

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		h.logger.Warn("event stream cannot flush", "error", err)
		return
	}

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-keepAlive.C:
			if _, err := w.Write([]byte(": ping\n\n")); err != nil {
				return
			}
		case st, ok := <-states:
			if !ok {
				return
			}
			data, err := json.Marshal(st)
			if err != nil {
				h.logger.Error("failed to marshal state", "error", err)
				return
			}
			if _, err := w.Write([]byte("event: state\ndata: " + string(data) + "\n\n")); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

// Start handles POST /v1/timer/start. An empty body or zero minutes starts
// the selected duration.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req MinutesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Minutes < 0 {
		h.handleError(w, timer.ErrInvalidDuration)
		return
	}
	h.dispatch(w, r, host.Command{Action: host.ActionStart, Minutes: req.Minutes})
}

func (h *Handler) Stop(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, host.Command{Action: host.ActionStop})
}

func (h *Handler) Extend(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, host.Command{Action: host.ActionExtend})
}

// SetDuration handles PUT /v1/timer/duration.
func (h *Handler) SetDuration(w http.ResponseWriter, r *http.Request) {
	var req MinutesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.dispatch(w, r, host.Command{Action: host.ActionDuration, Minutes: req.Minutes})
}

// SetLanguage handles PUT /v1/language.
func (h *Handler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	var req LanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.dispatch(w, r, host.Command{Action: host.ActionLanguage, Language: req.Language})
}

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, cmd host.Command) {
	cmd.Source = "http"
	if err := h.timer.Dispatch(r.Context(), cmd); err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.timer.Status(r.Context()))
}

// GetNotice handles GET /v1/status.
func (h *Handler) GetNotice(w http.ResponseWriter, r *http.Request) {
	n, ok := h.board.Current()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// TriggerAction handles POST /v1/status/actions/{action}. Only actions offered
// by the notice on display are accepted.
func (h *Handler) TriggerAction(w http.ResponseWriter, r *http.Request) {
	action := status.Action(chi.URLParam(r, "action"))
	if action != status.ActionStop && action != status.ActionExtend {
		writeError(w, http.StatusNotFound, "unknown action")
		return
	}
	if !h.board.HasAction(action) {
		writeError(w, http.StatusConflict, "action not offered by the current notice")
		return
	}
	if err := h.timer.Trigger(r.Context(), action); err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.timer.Status(r.Context()))
}

func (h *Handler) GetLock(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.lockStatus(r.Context()))
}

func (h *Handler) GrantLock(w http.ResponseWriter, r *http.Request) {
	if err := h.lock.RequestPermission(r.Context()); err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.lockStatus(r.Context()))
}

func (h *Handler) RevokeLock(w http.ResponseWriter, r *http.Request) {
	if err := h.lock.Revoke(r.Context()); err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.lockStatus(r.Context()))
}

func (h *Handler) lockStatus(ctx context.Context) LockStatus {
	return LockStatus{
		Granted: h.lock.Granted(ctx),
		Active:  h.lock.IsActive(ctx),
	}
}

// ListHistory handles GET /v1/history?limit=N.
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	logs, err := h.history.ListLogs(r.Context(), limit)
	if err != nil {
		h.handleError(w, err)
		return
	}
	if logs == nil {
		logs = []timelog.TimeLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, timer.ErrInvalidDuration),
		errors.Is(err, host.ErrUnsupportedLanguage):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, host.ErrUnknownAction):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, statusCode int, msg string) {
	writeJSON(w, statusCode, ErrorResponse{Error: msg})
}
