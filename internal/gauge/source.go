package gauge

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/k-devoe/riverWatch/internal/external"
	"github.com/k-devoe/riverWatch/internal/types"
)

// maxPageBytes bounds how much of the gauge page we buffer. The real page is
// tens of kilobytes; anything past this is a broken upstream, not a forecast.
const maxPageBytes = 4 << 20

// Source fetches the gauge forecast page over HTTP and parses it into a
// snapshot. It implements types.GaugeSource.
type Source struct {
	base   *external.BaseClient
	url    string
	clock  types.Clock
	logger *slog.Logger
}

// SourceConfig holds the dependencies for a Source.
type SourceConfig struct {
	Base   *external.BaseClient
	URL    string
	Clock  types.Clock
	Logger *slog.Logger
}

// NewSource creates a Source for the configured gauge page URL.
func NewSource(cfg SourceConfig) *Source {
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{base: cfg.Base, url: cfg.URL, clock: clock, logger: logger}
}

// Fetch downloads the gauge page and parses its prediction table. The raw
// page bytes ride along in the snapshot so the caller can archive them.
func (s *Source) Fetch(ctx context.Context) (*types.GaugeSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "building gauge request", err)
	}

	resp, err := s.base.Do(req)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamGauge, "gauge page fetch failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, types.NewAppError(types.ErrCodeUpstreamGauge,
			fmt.Sprintf("gauge page returned status %d", resp.StatusCode), nil)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamGauge, "reading gauge page body", err)
	}

	now := s.clock.Now()
	points, err := ParseForecastTable(bytes.NewReader(raw), now)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "fetched gauge forecast",
		"url", s.url,
		"points", len(points),
		"page_bytes", len(raw),
	)

	return &types.GaugeSnapshot{
		Points:    points,
		RawPage:   raw,
		FetchedAt: now,
	}, nil
}
