// Package protocol defines the messages exchanged between the orchestrator and the agents.
package protocol

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"nutriguide"
)

// OrchestratorID is the sender id used for requests issued by the orchestrator.
const OrchestratorID = "orchestrator"

type Intent string

const (
	IntentRequest      Intent = "REQUEST"
	IntentContribution Intent = "CONTRIBUTION"
	IntentVeto         Intent = "VETO"
	IntentError        Intent = "ERROR"
)

// Priority is ordered: a lower value is more urgent.
type Priority int

const (
	PriorityCritical Priority = iota
	PriorityHigh
	PriorityNormal
	PriorityLow
)

func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityNormal:
		return "normal"
	default:
		return "low"
	}
}

// PriorityForTier maps an agent tier onto an envelope priority.
func PriorityForTier(tier int) Priority {
	switch {
	case tier <= 0:
		return PriorityCritical
	case tier == 1:
		return PriorityHigh
	case tier == 2:
		return PriorityNormal
	default:
		return PriorityLow
	}
}

// Request phases carried under KeyPhase.
const (
	PhasePreflight = "preflight"
	PhaseEnrich    = "enrich"
	PhaseGate      = "gate"
)

// Well-known payload keys.
const (
	KeyProfile      = "profile"
	KeyPhase        = "phase"
	KeyDraft        = "draft"
	KeyCandidate    = "candidate"
	KeyPlanDate     = "plan_date"
	KeyContribution = "contribution"
)

// Envelope is an immutable message. Construct it with NewRequest or Reply; accessors return copies.
type Envelope struct {
	id            string
	correlationID string
	inReplyTo     string
	sender        string
	recipients    []string
	intent        Intent
	priority      Priority
	createdAt     time.Time
	payload       Payload
}

// NewRequest builds an orchestrator-to-agent request. The payload is deep-copied.
func NewRequest(id, correlationID, sender string, recipients []string, priority Priority, payload Payload) (Envelope, error) {
	if id == "" || correlationID == "" {
		return Envelope{}, fmt.Errorf("envelope requires an id and a correlation id")
	}
	if sender == "" {
		return Envelope{}, fmt.Errorf("envelope %s has no sender", id)
	}
	if len(recipients) == 0 {
		return Envelope{}, fmt.Errorf("envelope %s has no recipients", id)
	}
	return Envelope{
		id:            id,
		correlationID: correlationID,
		sender:        sender,
		recipients:    slices.Clone(recipients),
		intent:        IntentRequest,
		priority:      priority,
		createdAt:     time.Now().UTC(),
		payload:       payload.Clone(),
	}, nil
}

// Reply wraps a contribution into the response for req. The intent follows the contribution status.
func Reply(req Envelope, id, sender string, c Contribution) Envelope {
	intent := IntentContribution
	switch c.Status {
	case StatusVeto:
		intent = IntentVeto
	case StatusFailed:
		intent = IntentError
	}
	c.AgentID = sender
	return Envelope{
		id:            id,
		correlationID: req.correlationID,
		inReplyTo:     req.id,
		sender:        sender,
		recipients:    []string{req.sender},
		intent:        intent,
		priority:      req.priority,
		createdAt:     time.Now().UTC(),
		payload:       Payload{KeyContribution: c.Clone()},
	}
}

func (e Envelope) ID() string { return e.id }
func (e Envelope) CorrelationID() string { return e.correlationID }
func (e Envelope) InReplyTo() string { return e.inReplyTo }
func (e Envelope) Sender() string { return e.sender }
func (e Envelope) Recipients() []string { return slices.Clone(e.recipients) }
func (e Envelope) Intent() Intent { return e.intent }
func (e Envelope) Priority() Priority { return e.priority }
func (e Envelope) CreatedAt() time.Time { return e.createdAt }
func (e Envelope) Payload() Payload { return e.payload.Clone() }
func (e Envelope) Value(key string) any { return cloneValue(e.payload[key]) }

func (e Envelope) Has(key string) bool {
	_, ok := e.payload[key]
	return ok
}

func (e Envelope) IsZero() bool { return e.id == "" }
func (e Envelope) AddressedTo(id string) bool { return slices.Contains(e.recipients, id) }

// Profile returns the profile snapshot carried by a request.
func (e Envelope) Profile() (nutriguide.UserProfile, bool) {
	p, ok := e.payload[KeyProfile].(nutriguide.UserProfile)
	if !ok {
		return nutriguide.UserProfile{}, false
	}
	return p.Clone(), true
}

// Phase returns the request phase, defaulting to PhaseEnrich.
func (e Envelope) Phase() string {
	if p, ok := e.payload[KeyPhase].(string); ok && p != "" {
		return p
	}
	return PhaseEnrich
}

// Draft returns the read-only view of fields merged from earlier tiers.
func (e Envelope) Draft() Fields {
	d, _ := e.payload[KeyDraft].(Fields)
	return d.Clone()
}

// Candidate returns the merged candidate plan carried by a gate request.
func (e Envelope) Candidate() (nutriguide.NutritionPlan, bool) {
	p, ok := e.payload[KeyCandidate].(nutriguide.NutritionPlan)
	if !ok {
		return nutriguide.NutritionPlan{}, false
	}
	return p.Clone(), true
}

// PlanDate returns the date the plan is generated for.
func (e Envelope) PlanDate() time.Time {
	t, _ := e.payload[KeyPlanDate].(time.Time)
	return t
}

// Contribution returns the contribution carried by a reply.
func (e Envelope) Contribution() (Contribution, bool) {
	c, ok := e.payload[KeyContribution].(Contribution)
	if !ok {
		return Contribution{}, false
	}
	return c.Clone(), true
}

// Flatten returns a flat key/value view suitable for structured logs and audit sinks.
func (e Envelope) Flatten() map[string]any {
	out := map[string]any{
		"id":             e.id,
		"correlation_id": e.correlationID,
		"sender_id":      e.sender,
		"recipient_ids":  slices.Clone(e.recipients),
		"intent":         string(e.intent),
		"priority":       e.priority.String(),
		"created_at":     e.createdAt.Format(time.RFC3339Nano),
	}
	if e.inReplyTo != "" {
		out["in_reply_to"] = e.inReplyTo
	}
	for k, v := range e.payload {
		out["payload."+k] = flatValue(v)
	}
	return out
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Flatten())
}

func flatValue(v any) any {
	switch tv := v.(type) {
	case nutriguide.UserProfile:
		return map[string]any{"id": tv.ID}
	case nutriguide.NutritionPlan:
		return map[string]any{"profile_id": tv.ProfileID, "slots": len(tv.Meals), "calories": tv.Totals.Calories}
	case Fields:
		return tv.Keys()
	case Contribution:
		return map[string]any{
			"agent_id":  tv.AgentID,
			"status":    string(tv.Status),
			"fields":    tv.Fields.Keys(),
			"rationale": tv.Rationale,
		}
	case time.Time:
		return tv.Format(time.DateOnly)
	default:
		return v
	}
}
