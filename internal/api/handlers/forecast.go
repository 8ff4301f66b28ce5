package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/k-devoe/riverWatch/internal/core"
	"github.com/k-devoe/riverWatch/internal/types"
)

// ForecastReader is the slice of the forecast store this handler needs.
type ForecastReader interface {
	List(ctx context.Context) ([]types.ForecastPoint, error)
	MaxHeightPoint(ctx context.Context) (*types.ForecastPoint, error)
}

// ForecastResponse is the body of GET /forecast.
type ForecastResponse struct {
	Points []types.ForecastPoint `json:"points"`
	Peak   *types.ForecastPoint  `json:"peak,omitempty"`
	AsOf   time.Time             `json:"as_of"`
}

// ForecastHandler serves read access to the stored forecast.
type ForecastHandler struct {
	forecasts ForecastReader
	clock     types.Clock
}

// NewForecastHandler creates a ForecastHandler.
func NewForecastHandler(forecasts ForecastReader, clock types.Clock) *ForecastHandler {
	if clock == nil {
		clock = types.SystemClock{}
	}
	return &ForecastHandler{forecasts: forecasts, clock: clock}
}

// HandleGetForecast returns the stored forecast points and the current peak.
// Returns 404 when no forecast has been stored yet.
func (h *ForecastHandler) HandleGetForecast(w http.ResponseWriter, r *http.Request) {
	points, err := h.forecasts.List(r.Context())
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if len(points) == 0 {
		core.Error(w, r, types.NewAppError(types.ErrCodeNotFoundForecast,
			"no forecast has been stored yet", nil))
		return
	}

	peak, err := h.forecasts.MaxHeightPoint(r.Context())
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: ForecastResponse{
		Points: points,
		Peak:   peak,
		AsOf:   h.clock.Now(),
	}})
}
