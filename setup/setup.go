// Package setup builds the planner's collaborators from configuration. It is shared by the
// binaries under cmd/planner.
package setup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"nutriguide"
	"nutriguide/agents"
	"nutriguide/aggregate"
	"nutriguide/audit/sqlite"
	"nutriguide/catalog"
	"nutriguide/catalog/storage"
	"nutriguide/orchestrator"
	"nutriguide/reasoning"
	"nutriguide/reasoning/anthropic"
	"nutriguide/reasoning/bedrock"
	"nutriguide/reasoning/mock"
	"nutriguide/reasoning/ollama"
	"nutriguide/registry"
	"nutriguide/session"
)

// Reasoning providers understood by NewReasoner.
const (
	ProviderNone      = "none"
	ProviderMock      = "mock"
	ProviderBedrock   = "bedrock"
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
)

// NewReasoner returns the configured backend wrapped in a retrying client, or nil for
// ProviderNone or an empty provider, in which case the agents plan from the catalog alone.
// ProviderMock serves canned replies and is only for demos and tests.
func NewReasoner(ctx context.Context, cfg nutriguide.ReasoningConfig, httpClient nutriguide.HTTPClient) (reasoning.Reasoner, error) {
	provider := cfg.Provider
	if provider == "" {
		provider = ProviderNone
	}

	var backend reasoning.Reasoner
	switch provider {
	case ProviderNone:
		return nil, nil
	case ProviderMock:
		backend = mock.New(nil)
	case ProviderBedrock:
		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		backend = bedrock.New(bedrockruntime.NewFromConfig(awsCfg), bedrock.Options{
			ModelID:     cfg.ModelID,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			TopP:        cfg.TopP,
		})
	case ProviderOllama:
		r, err := ollama.New(ollama.Options{
			BaseEndpoint: cfg.BaseOllamaEndpoint,
			ModelID:      cfg.ModelID,
			HTTPClient:   httpClient,
		})
		if err != nil {
			return nil, err
		}
		backend = r
	case ProviderAnthropic:
		backend = anthropic.New(anthropic.Options{
			Model:       cfg.ModelID,
			APIKey:      cfg.APIKey,
			MaxTokens:   int64(cfg.MaxTokens),
			Temperature: float64(cfg.Temperature),
		})
	default:
		return nil, fmt.Errorf("unknown reasoning provider %q", provider)
	}

	slog.Info("SETUP: Reasoning backend ready", "provider", provider, "model", cfg.ModelID)
	return reasoning.NewClient(provider, backend, reasoning.RetryPolicy{
		MaxAttempts:     cfg.MaxAttempts,
		InitialInterval: cfg.RetryBackoff,
	}), nil
}

// CatalogState picks the catalog source: S3 when a bucket is configured, a file when a path is,
// and nil for the built-in catalog.
func CatalogState(ctx context.Context, cfg nutriguide.StorageConfig) (storage.CatalogState, error) {
	switch {
	case cfg.CatalogS3Bucket != "":
		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return storage.NewS3CatalogState(s3.NewFromConfig(awsCfg), cfg.CatalogS3Bucket, cfg.CatalogS3Key), nil
	case cfg.CatalogPath != "":
		return storage.NewFileCatalogState(cfg.CatalogPath), nil
	}
	return nil, nil
}

// LoadCatalog reads the catalog overlay from state, or returns the built-in catalog when state is nil.
func LoadCatalog(ctx context.Context, state storage.CatalogState) (*catalog.Catalog, error) {
	if state == nil {
		slog.Info("SETUP: Using built-in catalog")
		return catalog.Default(), nil
	}
	c, err := catalog.Load(ctx, state)
	if err != nil {
		return nil, err
	}
	slog.Info("SETUP: Catalog overlay loaded")
	return c, nil
}

// AuditLogger adds the sqlite audit store to base when AUDIT_DB_PATH is set. The returned close
// function is always safe to call.
func AuditLogger(ctx context.Context, cfg nutriguide.StorageConfig, base nutriguide.CycleLogger) (nutriguide.CycleLogger, func() error, error) {
	if cfg.AuditDBPath == "" {
		return base, func() error { return nil }, nil
	}
	store, err := sqlite.Open(cfg.AuditDBPath)
	if err != nil {
		return nil, nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close() // nolint: errcheck
		return nil, nil, err
	}
	slog.Info("SETUP: Audit store opened", "path", cfg.AuditDBPath)
	if base == nil {
		return store, store.Close, nil
	}
	return nutriguide.MultiCycleLogger{base, store}, store.Close, nil
}

// SafetyLimits maps the orchestrator config onto the emergency-risk thresholds. Zero values keep
// the agent defaults.
func SafetyLimits(cfg nutriguide.OrchestratorConfig) agents.SafetyLimits {
	limits := agents.DefaultSafetyLimits()
	if cfg.MaxDeficitFraction > 0 {
		limits.MaxDeficitFraction = cfg.MaxDeficitFraction
	}
	if cfg.MaxWeeklyLossKG > 0 {
		limits.MaxWeeklyLossKG = cfg.MaxWeeklyLossKG
	}
	return limits
}

// Planner is everything a binary needs to serve requests.
type Planner struct {
	Orchestrator *orchestrator.Orchestrator
	Registry     *registry.Registry
}

// NewPlanner registers the default agents and builds the orchestrator over them.
func NewPlanner(cfg nutriguide.Config, cat *catalog.Catalog, reasoner reasoning.Reasoner, logger nutriguide.CycleLogger, store session.Store) (*Planner, error) {
	reg := registry.New()
	deps := agents.Deps{
		Catalog:  cat,
		Reasoner: reasoner,
		Limits:   SafetyLimits(cfg.Orchestrator),
	}
	if err := agents.RegisterDefaults(reg, deps); err != nil {
		return nil, err
	}

	o, err := orchestrator.New(reg, orchestrator.Options{
		Store:        store,
		Logger:       logger,
		Agents:       cfg.Agents,
		AgentTimeout: cfg.Orchestrator.AgentTimeout,
		Tolerance: aggregate.Tolerance{
			Calories: cfg.Orchestrator.CalorieTolerance,
			Macros:   cfg.Orchestrator.MacroTolerance,
		},
	})
	if err != nil {
		return nil, err
	}
	slog.Info("SETUP: Planner ready", "agents", reg.Len())
	return &Planner{Orchestrator: o, Registry: reg}, nil
}
