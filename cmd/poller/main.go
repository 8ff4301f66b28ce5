// Package main is the entrypoint for the one-shot riverWatch poller.
//
// The poller runs one refresh cycle and exits: fetch the gauge page, swap the
// stored forecast, evaluate alert conditions, and dispatch SMS messages. It
// is intended to be driven by cron or an equivalent external scheduler.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/k-devoe/riverWatch/internal/alert"
	"github.com/k-devoe/riverWatch/internal/config"
	"github.com/k-devoe/riverWatch/internal/db"
	"github.com/k-devoe/riverWatch/internal/external"
	"github.com/k-devoe/riverWatch/internal/gauge"
	"github.com/k-devoe/riverWatch/internal/notify"
	"github.com/k-devoe/riverWatch/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	// A stuck cycle should not outlive the cron interval.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx, timeoutCancel := context.WithTimeout(ctx, 5*time.Minute)
	defer timeoutCancel()

	pool, err := pgxpool.New(ctx, cfg.Database.URL.Reveal())
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	forecastRepo := db.NewForecastRepository(pool)
	userRepo := db.NewUserRepository(pool, logger)
	alertRepo := db.NewAlertRepository(pool, nil)
	runRepo := db.NewRunRepository(pool)

	source := gauge.NewSource(gauge.SourceConfig{
		Base: external.NewBaseClient(
			&http.Client{Timeout: cfg.Gauge.FetchTimeout},
			"gauge",
			external.DefaultRetryPolicy(),
			cfg.Gauge.UserAgent,
		),
		URL:    cfg.Gauge.URL,
		Logger: logger,
	})

	twilioClient := external.NewTwilioClient(
		external.NewBaseClient(
			&http.Client{Timeout: 30 * time.Second},
			"twilio",
			external.DefaultRetryPolicy(),
			cfg.Gauge.UserAgent,
		),
		external.TwilioClientConfig{
			AccountSID: cfg.Twilio.AccountSID,
			AuthToken:  cfg.Twilio.AuthToken,
			FromNumber: cfg.Twilio.FromNumber,
			BaseURL:    cfg.Twilio.BaseURL,
		},
	)

	orchestrator := alert.NewOrchestrator(alert.OrchestratorConfig{
		Forecasts: forecastRepo,
		Users:     userRepo,
		Alerts:    alertRepo,
		Notifier:  notify.NewSMSNotifier(twilioClient, cfg.Gauge.GraphURL, logger),
		Logger:    logger,
	})

	refresher := scheduler.NewRefresher(scheduler.RefresherConfig{
		Source:    source,
		Forecasts: forecastRepo,
		Evaluator: orchestrator,
		Runs:      runRepo,
		Logger:    logger,
	})

	summary, err := refresher.Refresh(ctx)
	if err != nil {
		logger.Error("refresh cycle failed", "error", err)
		os.Exit(1)
	}

	logger.Info("refresh cycle complete",
		"points", summary.Points,
		"alerts_dispatched", summary.AlertsDispatched,
		"ran_at", summary.RanAt,
	)
}
