package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nutriguide"
	"nutriguide/httpapi"
	"nutriguide/setup"
	"nutriguide/slack"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := nutriguide.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	otelShutdown, err := nutriguide.InitOtel(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize OpenTelemetry: %s", err)
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
		}
	}()

	logger, closeAudit, err := setup.AuditLogger(ctx, cfg.Storage, nil)
	if err != nil {
		log.Fatalf("Failed to open audit store: %s", err)
	}
	defer closeAudit() // nolint: errcheck

	state, err := setup.CatalogState(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to configure catalog storage: %s", err)
	}
	cat, err := setup.LoadCatalog(ctx, state)
	if err != nil {
		log.Fatalf("Failed to load catalog: %s", err)
	}

	reasoner, err := setup.NewReasoner(ctx, cfg.Reasoning, http.DefaultClient)
	if err != nil {
		log.Fatalf("Failed to create reasoner: %s", err)
	}

	planner, err := setup.NewPlanner(cfg, cat, reasoner, logger, nil)
	if err != nil {
		log.Fatalf("Failed to create planner: %s", err)
	}

	var notify httpapi.Notifier
	if cfg.Server.SlackWebhookURL != "" {
		client := slack.NewClient(cfg.Server.SlackWebhookURL, http.DefaultClient)
		notify = func(ctx context.Context, out nutriguide.PlanOutcome) error {
			return slack.PostOutcome(ctx, client, cfg.Server.SlackChannel, out)
		}
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           httpapi.NewRouter(planner.Orchestrator, notify),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	go func() {
		slog.Info("SETUP: Listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("SETUP: Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Failed to shut down server", "error", err)
	}
}
