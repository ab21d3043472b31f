package nutriguide

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joeshaw/envdecode"
)

type ReasoningConfig struct {
	Provider           string        `env:"REASONING_PROVIDER,default=none"`
	ModelID            string        `env:"MODEL_ID,default=us.anthropic.claude-3-7-sonnet-20250219-v1:0"`
	APIKey             string        `env:"ANTHROPIC_API_KEY"`
	BaseOllamaEndpoint string        `env:"BASE_OLLAMA_ENDPOINT,default=http://localhost:11434"`
	MaxTokens          int32         `env:"MAX_TOKENS,default=1024"`
	Temperature        float32       `env:"TEMPERATURE,default=0.2"`
	TopP               float32       `env:"TOP_P,default=0.9"`
	MaxAttempts        uint          `env:"REASONING_MAX_ATTEMPTS,default=2"`
	RetryBackoff       time.Duration `env:"REASONING_RETRY_BACKOFF,default=250ms"`
}

type OrchestratorConfig struct {
	AgentTimeout       time.Duration `env:"AGENT_TIMEOUT,default=15s"`
	CalorieTolerance   float64       `env:"CALORIE_TOLERANCE,default=0.05"`
	MacroTolerance     float64       `env:"MACRO_TOLERANCE,default=0"`
	MaxDeficitFraction float64       `env:"MAX_DEFICIT_FRACTION,default=0.25"`
	MaxWeeklyLossKG    float64       `env:"MAX_WEEKLY_LOSS_KG,default=1.0"`
	DisabledAgents     []string      `env:"DISABLED_AGENTS"`
	AgentsConfigPath   string        `env:"AGENTS_CONFIG_PATH"`
}

type StorageConfig struct {
	CatalogPath     string `env:"CATALOG_PATH"`
	CatalogS3Bucket string `env:"CATALOG_S3_BUCKET"`
	CatalogS3Key    string `env:"CATALOG_S3_KEY,default=catalog.json"`
	AuditDBPath     string `env:"AUDIT_DB_PATH"`
}

type ServerConfig struct {
	Addr              string        `env:"SERVER_ADDR,default=:8080"`
	ReadHeaderTimeout time.Duration `env:"SERVER_READ_HEADER_TIMEOUT,default=5s"`
	SlackWebhookURL   string        `env:"SLACK_WEBHOOK_URL"`
	SlackChannel      string        `env:"SLACK_CHANNEL,default=#nutrition-plans"`
}

// Config groups everything a planner binary needs.
type Config struct {
	Reasoning    ReasoningConfig
	Orchestrator OrchestratorConfig
	Storage      StorageConfig
	Server       ServerConfig
	Agents       AgentOverrides
}

// LoadConfig decodes the environment and, when AGENTS_CONFIG_PATH is set, the per-agent TOML file.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg.Reasoning); err != nil {
		return cfg, fmt.Errorf("failed to decode reasoning config: %w", err)
	}
	if err := envdecode.Decode(&cfg.Orchestrator); err != nil {
		return cfg, fmt.Errorf("failed to decode orchestrator config: %w", err)
	}
	if err := envdecode.Decode(&cfg.Storage); err != nil {
		return cfg, fmt.Errorf("failed to decode storage config: %w", err)
	}
	if err := envdecode.Decode(&cfg.Server); err != nil {
		return cfg, fmt.Errorf("failed to decode server config: %w", err)
	}
	if cfg.Orchestrator.AgentsConfigPath != "" {
		overrides, err := LoadAgentOverrides(cfg.Orchestrator.AgentsConfigPath)
		if err != nil {
			return cfg, err
		}
		cfg.Agents = overrides
	}
	for _, id := range cfg.Orchestrator.DisabledAgents {
		cfg.Agents.Disable(id)
	}
	return cfg, nil
}

// AgentOverride adjusts a single agent. Nil fields keep the orchestrator defaults.
type AgentOverride struct {
	Enabled *bool    `toml:"enabled"`
	Timeout Duration `toml:"timeout"`
}

// AgentOverrides is keyed by agent id.
type AgentOverrides struct {
	Agents map[string]AgentOverride `toml:"agents"`
}

// Duration decodes TOML strings such as "5s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

// LoadAgentOverrides reads a TOML file of the form:
//
//	[agents.food-knowledge]
//	enabled = false
//	timeout = "5s"
func LoadAgentOverrides(path string) (AgentOverrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return AgentOverrides{}, fmt.Errorf("failed to read agents config %s: %w", path, err)
	}
	return ParseAgentOverrides(data)
}

func ParseAgentOverrides(data []byte) (AgentOverrides, error) {
	var out AgentOverrides
	if _, err := toml.Decode(string(data), &out); err != nil {
		return AgentOverrides{}, fmt.Errorf("failed to parse agents config: %w", err)
	}
	return out, nil
}

// Disable marks the agent as disabled.
func (ao *AgentOverrides) Disable(id string) {
	if ao.Agents == nil {
		ao.Agents = make(map[string]AgentOverride)
	}
	o := ao.Agents[id]
	off := false
	o.Enabled = &off
	ao.Agents[id] = o
}

// Enabled reports whether the agent should be dispatched. Unlisted agents are enabled.
func (ao AgentOverrides) Enabled(id string) bool {
	o, ok := ao.Agents[id]
	if !ok || o.Enabled == nil {
		return true
	}
	return *o.Enabled
}

// Timeout returns the configured timeout for the agent or fallback.
func (ao AgentOverrides) Timeout(id string, fallback time.Duration) time.Duration {
	if o, ok := ao.Agents[id]; ok && o.Timeout.Duration > 0 {
		return o.Timeout.Duration
	}
	return fallback
}
