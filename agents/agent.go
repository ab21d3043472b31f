// Package agents implements the specialist agents that contribute to a nutrition plan.
package agents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"nutriguide"
	"nutriguide/protocol"
	"nutriguide/reasoning"
)

// Agent ids in declared registration order.
const (
	RestrictionSafetyID = "restriction-safety"
	MedicalID           = "medical"
	EmergencyRiskID     = "emergency-risk"
	PreferenceID        = "preference"
	FeedbackID          = "feedback"
	GoalID              = "goal"
	FoodKnowledgeID     = "food-knowledge"
	CulturalID          = "cultural"
	BudgetID            = "budget"
	TimingID            = "timing"
	SustainabilityID    = "sustainability"
	AdaptationID        = "adaptation"
	MotivationID        = "motivation"
)

// Tiers. Lower tiers run first and win conflicts.
const (
	TierSafety     = 0
	TierProfile    = 1
	TierPlanning   = 2
	TierEnrichment = 3
)

// Agent is a capability-bearing participant in a planning cycle.
type Agent interface {
	Spec() Spec
	Handle(ctx context.Context, req protocol.Envelope) protocol.Contribution
}

// Spec is the capability metadata the registry and orchestrator dispatch on.
type Spec struct {
	ID              string
	Name            string
	Tier            int
	CanVeto         bool
	MayPatchProfile bool
	UsesReasoning   bool
	Required        []string
}

// Critical reports whether the agent is safety-critical.
func (s Spec) Critical() bool { return s.Tier == TierSafety }

// MissingInputError reports a required profile field the agent could not find.
type MissingInputError struct {
	AgentID string
	Field   string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("agent %s requires %s", e.AgentID, e.Field)
}

// work is the agent-specific body run by handle.
type work func(ctx context.Context, req protocol.Envelope, profile nutriguide.UserProfile) (protocol.Contribution, error)

// handle runs the checks shared by every agent around fn.
func handle(ctx context.Context, spec Spec, req protocol.Envelope, fn work) (c protocol.Contribution) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("AGENT: panic", "agent", spec.ID, "panic", r)
			c = protocol.Failed(fmt.Errorf("agent %s panicked: %v", spec.ID, r))
		}
		c.AgentID = spec.ID
		if c.Status == protocol.StatusVeto && !spec.CanVeto {
			c = protocol.Failed(fmt.Errorf("agent %s is not allowed to veto: %s", spec.ID, c.Rationale))
			c.AgentID = spec.ID
		}
	}()

	if req.Intent() != protocol.IntentRequest {
		return protocol.Failed(fmt.Errorf("agent %s cannot handle intent %s", spec.ID, req.Intent()))
	}
	profile, ok := req.Profile()
	if !ok {
		return missing(spec, "profile", &MissingInputError{AgentID: spec.ID, Field: "profile"})
	}
	for _, field := range spec.Required {
		if !profile.Has(field) {
			return missing(spec, field, &MissingInputError{AgentID: spec.ID, Field: field})
		}
	}

	out, err := fn(ctx, req, profile)
	if err == nil {
		return out
	}

	var mie *MissingInputError
	var rse *reasoning.ServiceError
	switch {
	case errors.As(err, &mie):
		return missing(spec, mie.Field, mie)
	case errors.As(err, &rse):
		slog.Warn("AGENT: reasoning service unavailable", "agent", spec.ID, "error", err)
		return protocol.Failed(err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return protocol.Failed(fmt.Errorf("agent %s: %w", spec.ID, err))
	default:
		slog.Error("AGENT: failed", "agent", spec.ID, "error", err)
		return protocol.Failed(err)
	}
}

// missing converts a missing input into a veto for critical agents and a skip otherwise.
func missing(spec Spec, field string, err error) protocol.Contribution {
	if spec.CanVeto {
		return protocol.Veto(fmt.Sprintf("cannot verify safety without %s: %v", field, err))
	}
	return protocol.Skipped(err.Error())
}

// contribute wraps fields into a successful contribution, dropping empty values.
func contribute(fields protocol.Fields, rationale string) protocol.Contribution {
	for k, v := range fields {
		switch tv := v.(type) {
		case []string:
			if len(tv) == 0 {
				delete(fields, k)
			}
		case map[string]string:
			if len(tv) == 0 {
				delete(fields, k)
			}
		case string:
			if tv == "" {
				delete(fields, k)
			}
		case nutriguide.ProfilePatch:
			if tv.IsEmpty() {
				delete(fields, k)
			}
		}
	}
	return protocol.OK(fields, rationale)
}
