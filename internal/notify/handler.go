package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mizan-erp/mizan/internal/platform/httpx"
	"github.com/mizan-erp/mizan/internal/shared"
)

// Feed is the read/acknowledge surface of the notification store.
type Feed interface {
	Recent(ctx context.Context, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context) error
}

// Handler serves the notification feed and the activity trail.
type Handler struct {
	logger   *slog.Logger
	store    Feed
	activity *shared.ActivityLogger
}

// NewHandler constructs the notifications handler. activity may be nil, in
// which case the activity route is not mounted.
func NewHandler(logger *slog.Logger, store Feed, activity *shared.ActivityLogger) *Handler {
	return &Handler{logger: logger, store: store, activity: activity}
}

// MountRoutes registers feed routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/notifications", h.list)
	r.Post("/notifications/{id}/read", h.markRead)
	r.Post("/notifications/read-all", h.markAllRead)
	if h.activity != nil {
		r.Get("/activity", h.listActivity)
	}
}

func (h *Handler) listActivity(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.activity.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("list activity", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entries)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	feed, err := h.store.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("list notifications", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, feed)
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed id", shared.ErrValidation))
		return
	}
	if err := h.store.MarkRead(r.Context(), id); err != nil {
		h.logger.Error("mark notification read", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) markAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.store.MarkAllRead(r.Context()); err != nil {
		h.logger.Error("mark all notifications read", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
