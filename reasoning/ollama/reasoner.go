// Package ollama is a reasoning backend on a local Ollama chat endpoint.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"nutriguide"
	"nutriguide/reasoning"
)

type options struct {
	Temperature   float64 `json:"temperature,omitempty"`
	TopP          float64 `json:"top_p,omitempty"`
	RepeatPenalty float64 `json:"repeat_penalty,omitempty"`
	NumCtx        int     `json:"num_ctx,omitempty"`
}

type Reasoner struct {
	endpoint   string
	model      string
	httpClient nutriguide.HTTPClient
	options    options
}

type Options struct {
	BaseEndpoint string
	ModelID      string
	HTTPClient   nutriguide.HTTPClient
}

func New(opts Options) (*Reasoner, error) {
	if opts.BaseEndpoint == "" {
		return nil, fmt.Errorf("ollama base endpoint is required")
	}
	if opts.ModelID == "" {
		return nil, fmt.Errorf("ollama model id is required")
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	return &Reasoner{
		model:      opts.ModelID,
		httpClient: opts.HTTPClient,
		endpoint:   opts.BaseEndpoint + "/api/chat",
		options: options{
			Temperature:   0.2,
			TopP:          0.9,
			RepeatPenalty: 1.05,
			NumCtx:        16384,
		},
	}, nil
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
	Format   string        `json:"format,omitempty"`
	Stream   bool          `json:"stream"`
	Options  options       `json:"options,omitempty"`
}

type wireResponse struct {
	Model           string      `json:"model"`
	Message         wireMessage `json:"message"`
	PromptEvalCount int         `json:"prompt_eval_count"`
	EvalCount       int         `json:"eval_count"`
}

func (r *Reasoner) Invoke(ctx context.Context, prompt reasoning.Prompt) (reasoning.Result, error) {
	system, user, err := prompt.Render()
	if err != nil {
		return reasoning.Result{}, err
	}

	body := wireRequest{
		Model:   r.model,
		Stream:  false,
		Options: r.options,
	}
	if system != "" {
		body.Messages = append(body.Messages, wireMessage{Role: "system", Content: system})
	}
	body.Messages = append(body.Messages, wireMessage{Role: "user", Content: user})
	if prompt.Schema != nil {
		body.Format = "json"
	}

	reqBytes, err := json.Marshal(body)
	if err != nil {
		return reasoning.Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewBuffer(reqBytes))
	if err != nil {
		return reasoning.Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return reasoning.Result{}, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return reasoning.Result{}, fmt.Errorf("ollama: %s: %s", resp.Status, string(respBody))
	}

	var wr wireResponse
	if err := json.Unmarshal(respBody, &wr); err != nil {
		return reasoning.Result{}, fmt.Errorf("ollama: failed to decode response: %w", err)
	}

	slog.Info("LLM_CLIENT: Ollama chat succeeded", "agent", prompt.Agent, "model", wr.Model, "eval_count", wr.EvalCount)
	return reasoning.Result{
		Text:         wr.Message.Content,
		Model:        r.model,
		InputTokens:  wr.PromptEvalCount,
		OutputTokens: wr.EvalCount,
	}, nil
}
