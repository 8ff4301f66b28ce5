// Package main is the entrypoint for the riverWatch API server.
//
// The server exposes the refresh trigger (POST /refresh), read access to the
// stored forecast (GET /forecast), and a health endpoint. This file handles
// dependency wiring only; business logic lives under internal/.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/k-devoe/riverWatch/internal/alert"
	"github.com/k-devoe/riverWatch/internal/api/handlers"
	"github.com/k-devoe/riverWatch/internal/config"
	"github.com/k-devoe/riverWatch/internal/core"
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

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx := context.Background()

	pool, err := newPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	refresher := buildRefresher(cfg, pool, logger)
	forecastRepo := db.NewForecastRepository(pool)

	server, err := core.NewServer(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize server", "error", err)
		os.Exit(1)
	}
	server.HealthProbes = []core.HealthProbe{
		core.Probe{ProbeName: "database", CheckFn: pool.Ping},
	}

	refreshHandler := handlers.NewRefreshHandler(refresher, logger)
	forecastHandler := handlers.NewForecastHandler(forecastRepo, nil)

	server.Router().Post("/refresh", refreshHandler.HandleRefresh)
	server.Router().Get("/forecast", forecastHandler.HandleGetForecast)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("api server listening", "port", cfg.Server.Port, "environment", cfg.Environment)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server cleanup failed", "error", err)
	}
}

// newLogger builds the process-wide JSON logger at the configured level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// newPool creates the pgx connection pool with the configured tuning.
func newPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL.Reveal())
	if err != nil {
		return nil, err
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.HealthCheckPeriod = cfg.HealthCheckPeriod

	return pgxpool.NewWithConfig(ctx, poolCfg)
}

// buildRefresher wires the full refresh pipeline: gauge fetch, forecast
// storage, alert evaluation, and SMS dispatch.
func buildRefresher(cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) *scheduler.Refresher {
	forecastRepo := db.NewForecastRepository(pool)
	userRepo := db.NewUserRepository(pool, logger)
	alertRepo := db.NewAlertRepository(pool, nil)
	runRepo := db.NewRunRepository(pool)

	gaugeClient := external.NewBaseClient(
		&http.Client{Timeout: cfg.Gauge.FetchTimeout},
		"gauge",
		external.DefaultRetryPolicy(),
		cfg.Gauge.UserAgent,
	)
	source := gauge.NewSource(gauge.SourceConfig{
		Base:   gaugeClient,
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
	notifier := notify.NewSMSNotifier(twilioClient, cfg.Gauge.GraphURL, logger)

	orchestrator := alert.NewOrchestrator(alert.OrchestratorConfig{
		Forecasts: forecastRepo,
		Users:     userRepo,
		Alerts:    alertRepo,
		Notifier:  notifier,
		Logger:    logger,
	})

	return scheduler.NewRefresher(scheduler.RefresherConfig{
		Source:    source,
		Forecasts: forecastRepo,
		Evaluator: orchestrator,
		Runs:      runRepo,
		Logger:    logger,
	})
}
