package reasoning

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"nutriguide"
)

// RetryPolicy bounds retries of a failed call.
type RetryPolicy struct {
	MaxAttempts     uint
	InitialInterval time.Duration
}

// DefaultRetryPolicy retries once after a short backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 2, InitialInterval: 250 * time.Millisecond}
}

// Client adds retries, structured-output parsing and tracing to a backend.
type Client struct {
	backend Reasoner
	name    string
	policy  RetryPolicy
	tracer  trace.Tracer
}

func NewClient(name string, backend Reasoner, policy RetryPolicy) *Client {
	if policy.MaxAttempts == 0 {
		policy.MaxAttempts = DefaultRetryPolicy().MaxAttempts
	}
	if policy.InitialInterval <= 0 {
		policy.InitialInterval = DefaultRetryPolicy().InitialInterval
	}
	return &Client{
		backend: backend,
		name:    name,
		policy:  policy,
		tracer:  otel.Tracer(nutriguide.TracerNameReasoning),
	}
}

func (c *Client) Name() string { return c.name }

func (c *Client) Invoke(ctx context.Context, prompt Prompt) (Result, error) {
	ctx, span := c.tracer.Start(ctx, "reasoning.invoke",
		trace.WithAttributes(
			attribute.String("reasoning.backend", c.name),
			attribute.String("agent.id", prompt.Agent),
		),
	)
	defer span.End()

	attempts := 0
	op := func() (Result, error) {
		attempts++
		res, err := c.backend.Invoke(ctx, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return Result{}, backoff.Permanent(err)
			}
			slog.Warn("REASONER: attempt failed", "backend", c.name, "agent", prompt.Agent, "attempt", attempts, "error", err)
			return Result{}, err
		}
		if prompt.Schema != nil && res.Structured == nil {
			structured, err := ParseStructured(res.Text)
			if err != nil {
				slog.Warn("REASONER: unstructured response", "backend", c.name, "agent", prompt.Agent, "attempt", attempts)
				return Result{}, err
			}
			res.Structured = structured
		}
		return res, nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.policy.InitialInterval

	res, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.policy.MaxAttempts),
	)
	span.SetAttributes(attribute.Int("reasoning.attempts", attempts))
	if err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Unwrap()
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, &ServiceError{Backend: c.name, Agent: prompt.Agent, Attempts: attempts, Err: err}
	}

	slog.Info("REASONER: invoke succeeded",
		"backend", c.name,
		"agent", prompt.Agent,
		"attempts", attempts,
		"input_tokens", res.InputTokens,
		"output_tokens", res.OutputTokens,
	)
	return res, nil
}
