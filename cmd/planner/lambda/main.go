package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/lambda"

	"nutriguide"
	"nutriguide/orchestrator"
	"nutriguide/setup"
)

// Params is the invocation payload. Action is generate_plan, safety_review or submit_feedback.
type Params struct {
	Action    string                    `json:"action"`
	Profile   nutriguide.UserProfile    `json:"profile"`
	Candidate *nutriguide.NutritionPlan `json:"candidate,omitempty"`
	ProfileID string                    `json:"profile_id,omitempty"`
	Feedback  nutriguide.Feedback       `json:"feedback"`
}

type Results struct {
	Outcome  *nutriguide.PlanOutcome `json:"outcome,omitempty"`
	Feedback *nutriguide.FeedbackAck `json:"feedback,omitempty"`
}

const actionSubmitFeedback = "submit_feedback"

func main() {
	ctx := context.Background()

	cfg, err := nutriguide.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	otelShutdown, err := nutriguide.InitOtel(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize OpenTelemetry: %s", err)
	}
	defer otelShutdown(ctx) // nolint: errcheck

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

	// The planner lives as long as the execution environment so feedback submitted in one
	// invocation is seen by the next cycle on the same instance.
	planner, err := setup.NewPlanner(cfg, cat, reasoner, nutriguide.NewStdoutCycleLogger(), nil)
	if err != nil {
		log.Fatalf("Failed to create planner: %s", err)
	}

	fn := func(ctx context.Context, params Params) (Results, error) {
		switch params.Action {
		case actionSubmitFeedback:
			profileID := params.ProfileID
			if profileID == "" {
				profileID = params.Feedback.ProfileID
			}
			ack, err := planner.Orchestrator.SubmitFeedback(ctx, profileID, params.Feedback)
			if err != nil {
				slog.Error("RESULT: Error storing feedback", "error", err)
				return Results{}, err
			}
			return Results{Feedback: &ack}, nil
		case "", orchestrator.KindGeneratePlan, orchestrator.KindSafetyReview:
			kind := params.Action
			if kind == "" {
				kind = orchestrator.KindGeneratePlan
			}
			out, err := planner.Orchestrator.Handle(ctx, orchestrator.Request{
				Kind:      kind,
				Profile:   params.Profile,
				Candidate: params.Candidate,
			})
			if err != nil {
				slog.Error("RESULT: Error handling request", "error", err)
				return Results{}, err
			}
			return Results{Outcome: &out}, nil
		default:
			return Results{}, fmt.Errorf("unknown action %q", params.Action)
		}
	}

	lambda.Start(fn)
}
