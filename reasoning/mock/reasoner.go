// Package mock is a deterministic reasoning backend for tests and offline runs.
package mock

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"nutriguide/reasoning"
)

// ErrScripted is returned by responses scripted to fail.
var ErrScripted = errors.New("mock reasoning failure")

// Response scripts the answer for one agent. The first FailTimes calls fail with Err
// (or ErrScripted); Delay is honoured before answering and aborts when ctx is done.
type Response struct {
	Text       string
	Structured map[string]any
	Err        error
	FailTimes  int
	Delay      time.Duration
}

// Reasoner answers from scripted responses keyed by agent id, falling back to canned answers.
type Reasoner struct {
	mu        sync.Mutex
	responses map[string]Response
	calls     map[string]int
}

func New(responses map[string]Response) *Reasoner {
	if responses == nil {
		responses = map[string]Response{}
	}
	return &Reasoner{responses: responses, calls: make(map[string]int)}
}

// Calls returns how often an agent invoked the mock.
func (r *Reasoner) Calls(agent string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[agent]
}

func (r *Reasoner) Invoke(ctx context.Context, prompt reasoning.Prompt) (reasoning.Result, error) {
	r.mu.Lock()
	r.calls[prompt.Agent]++
	n := r.calls[prompt.Agent]
	resp, scripted := r.responses[prompt.Agent]
	r.mu.Unlock()

	if !scripted {
		resp = canned(prompt.Agent)
	}
	slog.Info("LLM_CLIENT: Invoked", "agent", prompt.Agent, "call", n, "scripted", scripted)

	if resp.Delay > 0 {
		select {
		case <-ctx.Done():
			return reasoning.Result{}, ctx.Err()
		case <-time.After(resp.Delay):
		}
	}

	if n <= resp.FailTimes || (resp.Err != nil && resp.FailTimes == 0) {
		if resp.Err != nil {
			return reasoning.Result{}, resp.Err
		}
		return reasoning.Result{}, ErrScripted
	}

	text := resp.Text
	if text == "" && resp.Structured != nil {
		b, err := json.Marshal(resp.Structured)
		if err != nil {
			return reasoning.Result{}, err
		}
		text = string(b)
	}
	return reasoning.Result{
		Text:       text,
		Structured: resp.Structured,
		Model:      "mock",
	}, nil
}

// canned returns deterministic answers for offline runs.
func canned(agent string) Response {
	switch agent {
	case "goal":
		return Response{Structured: map[string]any{
			"meals": map[string]any{
				"breakfast": map[string]any{
					"name":    "Overnight Oats with Berries",
					"cuisine": "american",
					"ingredients": []any{
						map[string]any{"name": "oats", "grams": 60},
						map[string]any{"name": "greek yogurt", "grams": 150},
						map[string]any{"name": "berries", "grams": 100},
					},
				},
				"lunch": map[string]any{
					"name":    "Lentil Vegetable Curry with Brown Rice",
					"cuisine": "indian",
					"ingredients": []any{
						map[string]any{"name": "lentils", "grams": 150},
						map[string]any{"name": "mixed vegetables", "grams": 100},
						map[string]any{"name": "brown rice", "grams": 150},
					},
				},
				"dinner": map[string]any{
					"name":    "Grilled Chicken Quinoa Bowl",
					"cuisine": "mediterranean",
					"ingredients": []any{
						map[string]any{"name": "chicken breast", "grams": 150},
						map[string]any{"name": "quinoa", "grams": 150},
						map[string]any{"name": "broccoli", "grams": 100},
					},
				},
				"snack": map[string]any{
					"name":    "Greek Yogurt with Berries",
					"cuisine": "mediterranean",
					"ingredients": []any{
						map[string]any{"name": "greek yogurt", "grams": 170},
						map[string]any{"name": "berries", "grams": 80},
					},
				},
			},
		}}
	case "food-knowledge":
		return Response{Structured: map[string]any{
			"recipes": map[string]any{
				"breakfast": "Combine the base ingredients the night before and keep chilled.",
				"lunch":     "Simmer the legumes with the vegetables and serve over the grain.",
				"dinner":    "Cook the protein through, then plate with the grain and greens.",
				"snack":     "Assemble just before eating.",
			},
			"notes": []any{"Spreading protein across meals supports satiety."},
		}}
	case "motivation":
		return Response{Structured: map[string]any{
			"message":   "Small consistent choices add up. You are building a routine that lasts.",
			"education": "Fiber from whole grains and legumes slows digestion and keeps energy steady.",
		}}
	default:
		return Response{Text: "{}"}
	}
}
