// Package anthropic is a reasoning backend on the Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"nutriguide/reasoning"
)

const (
	defaultModel       = anthropic.ModelClaude3_5Sonnet20241022
	defaultMaxTokens   = 1024
	defaultTemperature = 0.2
)

type Options struct {
	Model       string
	APIKey      string
	BaseURL     string
	MaxTokens   int64
	Temperature float64
}

type Reasoner struct {
	client anthropic.Client
	opts   Options
}

func New(opts Options) *Reasoner {
	if opts.Model == "" {
		opts.Model = string(defaultModel)
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.Temperature == 0 {
		opts.Temperature = defaultTemperature
	}

	// Retries are owned by reasoning.Client.
	clientOpts := []option.RequestOption{option.WithMaxRetries(0)}
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}

	return &Reasoner{client: anthropic.NewClient(clientOpts...), opts: opts}
}

func (r *Reasoner) Invoke(ctx context.Context, prompt reasoning.Prompt) (reasoning.Result, error) {
	system, user, err := prompt.Render()
	if err != nil {
		return reasoning.Result{}, err
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(r.opts.Model),
		MaxTokens:   r.opts.MaxTokens,
		Temperature: anthropic.Float(r.opts.Temperature),
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(user))},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := r.client.Messages.New(ctx, params)
	if err != nil {
		slog.Error("LLM_CLIENT: Anthropic messages call failed", "agent", prompt.Agent, "error", err)
		return reasoning.Result{}, fmt.Errorf("anthropic api error: %w", err)
	}

	if resp.StopReason == anthropic.StopReasonMaxTokens {
		return reasoning.Result{}, fmt.Errorf("model hit MaxTokens limit (%d)", r.opts.MaxTokens)
	}

	var texts []string
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != "" {
			texts = append(texts, block.Text)
		}
	}
	if len(texts) == 0 {
		return reasoning.Result{}, fmt.Errorf("model returned no text")
	}

	res := reasoning.Result{
		Text:         strings.Join(texts, "\n"),
		Model:        string(resp.Model),
		InputTokens:  int(resp.Usage.InputTokens),
		OutputTokens: int(resp.Usage.OutputTokens),
	}
	slog.Info("LLM_CLIENT: Anthropic messages call succeeded",
		"agent", prompt.Agent,
		"stop_reason", resp.StopReason,
		"input_tokens", res.InputTokens,
		"output_tokens", res.OutputTokens,
	)
	return res, nil
}
