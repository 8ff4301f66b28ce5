// Package handlers contains the HTTP handler implementations for the
// riverWatch API. Handlers define local collaborator interfaces so tests can
// mock their dependencies without importing the concrete packages.
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/k-devoe/riverWatch/internal/core"
	"github.com/k-devoe/riverWatch/internal/scheduler"
)

// RefreshRunner is the slice of the scheduler this handler needs.
type RefreshRunner interface {
	Refresh(ctx context.Context) (*scheduler.RefreshSummary, error)
}

// RefreshHandler serves POST /refresh, which triggers one full refresh cycle
// synchronously and reports its outcome.
type RefreshHandler struct {
	runner RefreshRunner
	logger *slog.Logger
}

// NewRefreshHandler creates a RefreshHandler.
func NewRefreshHandler(runner RefreshRunner, logger *slog.Logger) *RefreshHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RefreshHandler{runner: runner, logger: logger}
}

// HandleRefresh runs the refresh cycle and returns 201 with a summary on
// success. Upstream and storage failures map through the standard error
// envelope.
func (h *RefreshHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	summary, err := h.runner.Refresh(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "refresh cycle failed", "error", err)
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: summary})
}
