// Package reasoning wraps the external language-model service the agents consult.
package reasoning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

// Reasoner is a structured prompt/response service.
type Reasoner interface {
	Invoke(ctx context.Context, prompt Prompt) (Result, error)
}

// Prompt is a single structured request. Schema, when set, asks for a JSON object of that shape.
type Prompt struct {
	Agent   string
	System  string
	Input   string
	Context map[string]any
	Schema  *jsonschema.Schema
}

// Result is the service answer. Structured is populated when the prompt carried a schema.
type Result struct {
	Text         string
	Structured   map[string]any
	Model        string
	InputTokens  int
	OutputTokens int
}

// ServiceError is returned once retries are exhausted.
type ServiceError struct {
	Backend  string
	Agent    string
	Attempts int
	Err      error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("reasoning service %s failed for %s after %d attempt(s): %v", e.Backend, e.Agent, e.Attempts, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// ErrNoStructuredOutput is returned when a schema was requested but no JSON object came back.
var ErrNoStructuredOutput = errors.New("response did not contain a JSON object")

// Render builds the system and user text sent to text-only backends.
func (p Prompt) Render() (system, user string, err error) {
	system = p.System
	if p.Schema != nil {
		schema, err := json.Marshal(p.Schema)
		if err != nil {
			return "", "", fmt.Errorf("failed to marshal output schema: %w", err)
		}
		system = strings.TrimSpace(system + "\n\nRespond only with a single JSON object matching this JSON schema:\n" + string(schema))
	}

	user = p.Input
	if len(p.Context) > 0 {
		ctxJSON, err := json.Marshal(p.Context)
		if err != nil {
			return "", "", fmt.Errorf("failed to marshal prompt context: %w", err)
		}
		user = user + "\n\nContext:\n" + string(ctxJSON)
	}
	return system, user, nil
}

// ParseStructured extracts the outermost JSON object from model text, tolerating code fences.
func ParseStructured(text string) (map[string]any, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, ErrNoStructuredOutput
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(s[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoStructuredOutput, err)
	}
	return out, nil
}

// Decode converts the structured part of a result into v.
func Decode(res Result, v any) error {
	if res.Structured == nil {
		return ErrNoStructuredOutput
	}
	data, err := json.Marshal(res.Structured)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
