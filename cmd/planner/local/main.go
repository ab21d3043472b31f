package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"nutriguide"
	"nutriguide/setup"
	"nutriguide/slack"
)

func main() {
	ctx := context.Background()

	cfg, err := nutriguide.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	profile, err := loadProfile(argOr(1, "cmd/planner/local/profile.json"))
	if err != nil {
		slog.Error("SETUP: Failed to read profile", "error", err)
		return
	}

	otelShutdown, err := nutriguide.InitOtel(ctx)
	if err != nil {
		slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
		return
	}
	defer func() {
		if err := otelShutdown(ctx); err != nil {
			slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
		}
	}()

	fileLogger, cleanup, err := newCycleLogger(profile.ID, cfg.Reasoning.Provider)
	if err != nil {
		slog.Error("SETUP: Failed to create cycle logger", "error", err)
		return
	}
	defer func() {
		if err := cleanup(); err != nil {
			slog.Error("Failed to flush cycle log", "error", err)
		}
	}()

	logger, closeAudit, err := setup.AuditLogger(ctx, cfg.Storage, fileLogger)
	if err != nil {
		slog.Error("SETUP: Failed to open audit store", "error", err)
		return
	}
	defer closeAudit() // nolint: errcheck

	state, err := setup.CatalogState(ctx, cfg.Storage)
	if err != nil {
		slog.Error("SETUP: Failed to configure catalog storage", "error", err)
		return
	}
	cat, err := setup.LoadCatalog(ctx, state)
	if err != nil {
		slog.Error("SETUP: Failed to load catalog", "error", err)
		return
	}

	reasoner, err := setup.NewReasoner(ctx, cfg.Reasoning, http.DefaultClient)
	if err != nil {
		slog.Error("SETUP: Failed to create reasoner", "error", err)
		return
	}

	planner, err := setup.NewPlanner(cfg, cat, reasoner, logger, nil)
	if err != nil {
		slog.Error("SETUP: Failed to create planner", "error", err)
		return
	}

	ctx, span := otel.Tracer(nutriguide.TracerNameOrchestrator).Start(ctx, "planner.local", trace.WithAttributes(
		attribute.String("reasoning.provider", cfg.Reasoning.Provider),
		attribute.String("model.id", cfg.Reasoning.ModelID),
		attribute.String("profile.id", profile.ID),
	))
	defer span.End()

	out, err := planner.Orchestrator.GeneratePlan(ctx, profile)
	if err != nil {
		slog.Error("RESULT: Error generating plan", "error", err)
		return
	}
	slog.Info("RESULT: Cycle finished", "correlation_id", out.CorrelationID, "status", out.Status)
	if os.Getenv("DUMP") != "" {
		nutriguide.Dump(out)
	}

	webhookURL := cfg.Server.SlackWebhookURL
	if webhookURL == "" {
		testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body := new(bytes.Buffer)
			body.ReadFrom(r.Body) // nolint: errcheck
			slog.Info("FINAL: Received request",
				"method", r.Method,
				"path", r.URL.Path,
				"body", body.String(),
			)
			w.WriteHeader(http.StatusOK)
		}))
		defer testServer.Close()
		webhookURL = testServer.URL
	}

	slackClient := slack.NewClient(webhookURL, http.DefaultClient)
	if err := slack.PostOutcome(ctx, slackClient, cfg.Server.SlackChannel, out); err != nil {
		slog.Error("Failed to post result to Slack", "error", err)
	}
}

func argOr(i int, def string) string {
	if len(os.Args) > i {
		return os.Args[i]
	}
	return def
}

func loadProfile(path string) (nutriguide.UserProfile, error) {
	var p nutriguide.UserProfile
	data, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to decode profile %s: %w", path, err)
	}
	return p, nil
}

func newCycleLogger(profileID, provider string) (*nutriguide.FileCycleLogger, func() error, error) {
	logFilePath := nutriguide.NewCycleLogFilePath(profileID, provider)
	if err := os.MkdirAll(filepath.Dir(logFilePath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := nutriguide.NewFileCycleLogger(logFile)
	cleanup := func() error {
		return errors.Join(logger.Flush(), logFile.Close())
	}
	return logger, cleanup, nil
}
