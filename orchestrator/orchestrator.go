// Package orchestrator drives a planning cycle: the safety check, the enrichment tiers, the merge
// and the safety gate over the merged candidate.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"nutriguide"
	"nutriguide/agents"
	"nutriguide/aggregate"
	"nutriguide/protocol"
	"nutriguide/registry"
	"nutriguide/session"
)

// Request kinds.
const (
	KindGeneratePlan = "generate_plan"
	KindSafetyReview = "safety_review"
)

// Stages a rejection can come from.
const (
	StageSafetyCheck = "safety_check"
	StageAggregation = "aggregation"
	StageValidation  = "validation"
	StageSafetyGate  = "safety_gate"
)

// AggregatorID is reported as the rejecting party when a merged plan fails validation.
const AggregatorID = "aggregator"

const defaultAgentTimeout = 15 * time.Second

var errSafetyStop = errors.New("safety tier returned a blocking verdict")

var _ nutriguide.Planner = (*Orchestrator)(nil)

type Request struct {
	Kind    string
	Profile nutriguide.UserProfile
	// Candidate is the plan checked by a safety_review.
	Candidate *nutriguide.NutritionPlan
	// PlanDate defaults to today.
	PlanDate time.Time
}

type Options struct {
	Store        session.Store
	Logger       nutriguide.CycleLogger
	Agents       nutriguide.AgentOverrides
	AgentTimeout time.Duration
	Tolerance    aggregate.Tolerance
	Tracer       trace.Tracer
	Meter        metric.Meter
	Now          func() time.Time
}

type Orchestrator struct {
	registry  *registry.Registry
	store     session.Store
	logger    nutriguide.CycleLogger
	agents    nutriguide.AgentOverrides
	timeout   time.Duration
	tolerance aggregate.Tolerance
	tracker   *protocol.Tracker
	tracer    trace.Tracer
	now       func() time.Time
	metrics   metrics
}

type metrics struct {
	cycles      metric.Int64Counter
	completed   metric.Int64Counter
	rejected    metric.Int64Counter
	agentCalls  metric.Int64Counter
	agentFailed metric.Int64Counter
	dropped     metric.Int64Counter
	cycleTime   metric.Float64Histogram
	agentTime   metric.Float64Histogram
}

// New freezes the registry and checks the per-agent overrides against it. Disabling a
// safety-critical agent is an error.
func New(reg *registry.Registry, opts Options) (*Orchestrator, error) {
	if reg == nil {
		return nil, fmt.Errorf("orchestrator requires a registry")
	}
	for id := range opts.Agents.Agents {
		spec, err := reg.Spec(id)
		if err != nil {
			return nil, fmt.Errorf("invalid agent override: %w", err)
		}
		if spec.Critical() && !opts.Agents.Enabled(id) {
			return nil, fmt.Errorf("safety-critical agent %s cannot be disabled", id)
		}
	}
	reg.Freeze()

	if opts.Store == nil {
		opts.Store = session.NewMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = nutriguide.NewNoOpCycleLogger()
	}
	if opts.AgentTimeout <= 0 {
		opts.AgentTimeout = defaultAgentTimeout
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(nutriguide.TracerNameOrchestrator)
	}
	if opts.Meter == nil {
		opts.Meter = otel.Meter(nutriguide.MeterNameOrchestrator)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Orchestrator{
		registry:  reg,
		store:     opts.Store,
		logger:    opts.Logger,
		agents:    opts.Agents,
		timeout:   opts.AgentTimeout,
		tolerance: opts.Tolerance,
		tracker:   protocol.NewTracker(),
		tracer:    opts.Tracer,
		now:       opts.Now,
		metrics:   newMetrics(opts.Meter),
	}, nil
}

func newMetrics(meter metric.Meter) metrics {
	var m metrics
	m.cycles, _ = meter.Int64Counter("planning_cycles_total",
		metric.WithDescription("Total number of planning cycles started"))
	m.completed, _ = meter.Int64Counter("planning_cycles_completed_total",
		metric.WithDescription("Total number of planning cycles that produced a plan"))
	m.rejected, _ = meter.Int64Counter("planning_cycles_rejected_total",
		metric.WithDescription("Total number of planning cycles that ended in a rejection"))
	m.agentCalls, _ = meter.Int64Counter("agent_requests_total",
		metric.WithDescription("Total number of requests dispatched to agents"))
	m.agentFailed, _ = meter.Int64Counter("agent_failures_total",
		metric.WithDescription("Total number of agent requests that failed or timed out"))
	m.dropped, _ = meter.Int64Counter("agent_replies_dropped_total",
		metric.WithDescription("Total number of late or unexpected agent replies dropped"))
	m.cycleTime, _ = meter.Float64Histogram("planning_cycle_duration_seconds",
		metric.WithDescription("Duration of a planning cycle in seconds"))
	m.agentTime, _ = meter.Float64Histogram("agent_response_time_seconds",
		metric.WithDescription("Time taken by an agent to answer a request in seconds"))
	return m
}

// cycle is the per-request state. mu guards the machine and the event sequence, which
// late replies touch from their own goroutines, and keeps events in sequence order.
type cycle struct {
	id      string
	profile nutriguide.UserProfile
	date    time.Time
	pending int

	mu      sync.Mutex
	machine *machine
	seq     int
}

// GeneratePlan runs a full cycle for the profile.
func (o *Orchestrator) GeneratePlan(ctx context.Context, profile nutriguide.UserProfile) (nutriguide.PlanOutcome, error) {
	return o.Handle(ctx, Request{Kind: KindGeneratePlan, Profile: profile})
}

// Handle runs one cycle. Vetoes and validation failures are returned as rejected outcomes; the
// error is reserved for malformed requests and session store failures.
func (o *Orchestrator) Handle(ctx context.Context, req Request) (nutriguide.PlanOutcome, error) {
	switch req.Kind {
	case KindGeneratePlan:
	case KindSafetyReview:
		if req.Candidate == nil {
			return nutriguide.PlanOutcome{}, fmt.Errorf("safety review requires a candidate plan")
		}
	default:
		return nutriguide.PlanOutcome{}, fmt.Errorf("unknown request kind %q", req.Kind)
	}
	if req.Profile.ID == "" {
		return nutriguide.PlanOutcome{}, fmt.Errorf("profile has no id")
	}

	cy := &cycle{
		id:      uuid.NewString(),
		date:    planDay(req.PlanDate, o.now),
		machine: newMachine(),
	}

	ctx, span := o.tracer.Start(ctx, "Orchestrator.Handle", trace.WithAttributes(
		attribute.String("correlation_id", cy.id),
		attribute.String("kind", req.Kind),
		attribute.String("profile_id", req.Profile.ID),
	))
	defer span.End()

	start := time.Now()
	o.metrics.cycles.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", req.Kind)))

	snap, err := o.store.Snapshot(ctx, req.Profile)
	if err != nil {
		span.SetStatus(codes.Error, "snapshot failed")
		span.RecordError(err)
		return nutriguide.PlanOutcome{}, fmt.Errorf("failed to snapshot profile %s: %w", req.Profile.ID, err)
	}
	cy.profile = snap.Profile
	cy.pending = snap.PendingFeedback

	o.tracker.Open(cy.id)
	defer o.tracker.Close(cy.id)

	slog.Info("ORCHESTRATOR: Starting cycle",
		"correlation_id", cy.id,
		"kind", req.Kind,
		"profile_id", cy.profile.ID,
		"pending_feedback", cy.pending,
		"plan_date", cy.date.Format(time.DateOnly),
	)
	o.emit(cy, nutriguide.EventTransition, protocol.Envelope{}, nil)

	var out nutriguide.PlanOutcome
	if req.Kind == KindSafetyReview {
		out, err = o.review(ctx, cy, req.Candidate.Clone())
	} else {
		out, err = o.generate(ctx, cy)
	}
	o.metrics.cycleTime.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attribute.String("kind", req.Kind)))
	if err != nil {
		span.SetStatus(codes.Error, "cycle failed")
		span.RecordError(err)
		return nutriguide.PlanOutcome{}, err
	}

	cy.mu.Lock()
	out.Transitions = cy.machine.log()
	cy.mu.Unlock()
	out.CorrelationID = cy.id

	switch out.Status {
	case nutriguide.StatusComplete:
		o.metrics.completed.Add(ctx, 1)
		span.SetAttributes(attribute.Bool("degraded", out.Plan.Degraded))
	case nutriguide.StatusRejected:
		o.metrics.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", out.Rejection.Stage)))
		span.SetAttributes(
			attribute.String("rejection.agent", out.Rejection.AgentID),
			attribute.String("rejection.stage", out.Rejection.Stage),
		)
	}

	slog.Info("ORCHESTRATOR: Cycle finished",
		"correlation_id", cy.id,
		"status", out.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

func (o *Orchestrator) generate(ctx context.Context, cy *cycle) (nutriguide.PlanOutcome, error) {
	safety, rest := o.tiers()
	opts := o.mergeOptions()

	if err := o.transition(cy, StateSafetyCheck); err != nil {
		return nutriguide.PlanOutcome{}, err
	}
	pre := o.dispatch(ctx, cy, safety, protocol.Payload{protocol.KeyPhase: protocol.PhasePreflight})
	if r := verdict(pre, StageSafetyCheck); r != nil {
		return o.reject(cy, *r)
	}

	if err := o.transition(cy, StateEnriching); err != nil {
		return nutriguide.PlanOutcome{}, err
	}
	groups := []aggregate.Group{{Tier: safety.Level, Contributions: pre}}
	for _, t := range rest {
		draft := aggregate.Resolve(groups, opts).Fields
		cs := o.dispatch(ctx, cy, t, protocol.Payload{
			protocol.KeyPhase: protocol.PhaseEnrich,
			protocol.KeyDraft: draft,
		})
		groups = append(groups, aggregate.Group{Tier: t.Level, Contributions: cs})
	}
	missing := failedAgents(groups[1:])

	if err := o.transition(cy, StateAggregating); err != nil {
		return nutriguide.PlanOutcome{}, err
	}
	candidate, _, err := aggregate.Merge(groups, opts, cy.profile.ID)
	if err != nil {
		return o.rejectMerge(cy, err)
	}
	candidate.Degraded = len(missing) > 0
	candidate.MissingAgents = missing
	if err := aggregate.Validate(candidate, o.tolerance); err != nil {
		return o.reject(cy, nutriguide.Rejection{AgentID: AggregatorID, Stage: StageValidation, Reason: err.Error()})
	}

	gate := o.dispatch(ctx, cy, safety, protocol.Payload{
		protocol.KeyPhase:     protocol.PhaseGate,
		protocol.KeyCandidate: candidate,
	})
	if r := verdict(gate, StageSafetyGate); r != nil {
		return o.reject(cy, *r)
	}

	groups[0] = aggregate.Group{Tier: safety.Level, Contributions: gate}
	plan, patches, err := aggregate.Merge(groups, opts, cy.profile.ID)
	if err != nil {
		return o.rejectMerge(cy, err)
	}
	plan.Degraded = len(missing) > 0
	plan.MissingAgents = missing

	if err := o.store.Commit(ctx, cy.profile.ID, patches, cy.pending); err != nil {
		return nutriguide.PlanOutcome{}, fmt.Errorf("failed to commit session for %s: %w", cy.profile.ID, err)
	}
	if len(patches) > 0 {
		slog.Info("ORCHESTRATOR: Staged profile patches for next cycle", "correlation_id", cy.id, "patches", len(patches))
	}
	if plan.Degraded {
		slog.Warn("ORCHESTRATOR: Plan is degraded", "correlation_id", cy.id, "missing_agents", missing)
	}

	if err := o.transition(cy, StateComplete); err != nil {
		return nutriguide.PlanOutcome{}, err
	}
	return nutriguide.PlanOutcome{Status: nutriguide.StatusComplete, Plan: &plan}, nil
}

// review runs the safety tier against a caller-supplied plan. Enrichment is skipped and the
// candidate is returned with the gate's annotations.
func (o *Orchestrator) review(ctx context.Context, cy *cycle, candidate nutriguide.NutritionPlan) (nutriguide.PlanOutcome, error) {
	safety, _ := o.tiers()
	if candidate.ProfileID == "" {
		candidate.ProfileID = cy.profile.ID
	}

	if err := o.transition(cy, StateSafetyCheck); err != nil {
		return nutriguide.PlanOutcome{}, err
	}
	pre := o.dispatch(ctx, cy, safety, protocol.Payload{protocol.KeyPhase: protocol.PhasePreflight})
	if r := verdict(pre, StageSafetyCheck); r != nil {
		return o.reject(cy, *r)
	}
	if err := o.transition(cy, StateEnriching); err != nil {
		return nutriguide.PlanOutcome{}, err
	}
	if err := o.transition(cy, StateAggregating); err != nil {
		return nutriguide.PlanOutcome{}, err
	}

	gate := o.dispatch(ctx, cy, safety, protocol.Payload{
		protocol.KeyPhase:     protocol.PhaseGate,
		protocol.KeyCandidate: candidate,
	})
	if r := verdict(gate, StageSafetyGate); r != nil {
		return o.reject(cy, *r)
	}
	annotated, _, err := aggregate.Merge([]aggregate.Group{{Tier: safety.Level, Contributions: gate}}, o.mergeOptions(), cy.profile.ID)
	if err != nil {
		return o.rejectMerge(cy, err)
	}

	plan := candidate.Clone()
	plan.SafetyAnnotations = annotated.SafetyAnnotations
	if plan.Provenance == nil {
		plan.Provenance = map[string]string{}
	}
	for field, agent := range annotated.Provenance {
		plan.Provenance[field] = agent
	}

	if err := o.transition(cy, StateComplete); err != nil {
		return nutriguide.PlanOutcome{}, err
	}
	return nutriguide.PlanOutcome{Status: nutriguide.StatusComplete, Plan: &plan}, nil
}

// SubmitFeedback queues feedback for the next cycle of a profile that has been planned before.
func (o *Orchestrator) SubmitFeedback(ctx context.Context, profileID string, feedback nutriguide.Feedback) (nutriguide.FeedbackAck, error) {
	ack := nutriguide.FeedbackAck{ProfileID: profileID}
	switch {
	case profileID == "":
		ack.Reason = "profile id is required"
		return ack, nil
	case feedback.Rating < 0 || feedback.Rating > 5:
		ack.Reason = fmt.Sprintf("rating %d is outside 0-5", feedback.Rating)
		return ack, nil
	case !o.store.Known(ctx, profileID):
		ack.Reason = fmt.Sprintf("no plan has been generated for profile %s", profileID)
		return ack, nil
	}

	if feedback.SubmittedAt.IsZero() {
		feedback.SubmittedAt = o.now().UTC()
	}
	pending, err := o.store.AddFeedback(ctx, profileID, feedback)
	if err != nil {
		return nutriguide.FeedbackAck{}, fmt.Errorf("failed to store feedback for %s: %w", profileID, err)
	}
	slog.Info("ORCHESTRATOR: Feedback queued", "profile_id", profileID, "pending", pending)
	ack.Accepted = true
	ack.Pending = pending
	return ack, nil
}

// dispatch fans a request out to every agent of a tier and returns the contributions in
// registration order. In the safety tier the first blocking verdict cancels the agents still
// running.
func (o *Orchestrator) dispatch(ctx context.Context, cy *cycle, tier registry.Tier, payload protocol.Payload) []protocol.Contribution {
	out := make([]protocol.Contribution, len(tier.IDs))
	if len(tier.IDs) == 0 {
		return out
	}
	phase, _ := payload[protocol.KeyPhase].(string)

	ctx, span := o.tracer.Start(ctx, fmt.Sprintf("Orchestrator.Tier.%d", tier.Level), trace.WithAttributes(
		attribute.String("phase", phase),
		attribute.StringSlice("agents", tier.IDs),
	))
	defer span.End()

	payload[protocol.KeyProfile] = cy.profile
	payload[protocol.KeyPlanDate] = cy.date

	slog.Info("ORCHESTRATOR: Dispatching tier",
		"correlation_id", cy.id,
		"tier", tier.Level,
		"phase", phase,
		"agents", tier.IDs,
	)

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range tier.IDs {
		g.Go(func() error {
			c := o.invoke(gctx, cy, id, tier.Level, payload)
			out[i] = c
			if tier.Level == agents.TierSafety && c.Status != protocol.StatusOK {
				return errSafetyStop
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.AddEvent("Safety tier stopped early")
		slog.Warn("ORCHESTRATOR: Safety tier stopped early", "correlation_id", cy.id, "phase", phase)
	}
	return out
}

// invoke sends one request and waits for its reply or the agent's timeout. A timeout is
// answered with a synthesized FAILED reply; the real reply, if it ever comes, is dropped.
func (o *Orchestrator) invoke(ctx context.Context, cy *cycle, id string, tier int, payload protocol.Payload) protocol.Contribution {
	failed := func(err error) protocol.Contribution {
		c := protocol.Failed(err)
		c.AgentID = id
		return c
	}

	agent, err := o.registry.Resolve(id)
	if err != nil {
		return failed(err)
	}
	spec := agent.Spec()

	req, err := protocol.NewRequest(uuid.NewString(), cy.id, protocol.OrchestratorID, []string{id}, protocol.PriorityForTier(tier), payload)
	if err != nil {
		return failed(err)
	}
	if err := o.tracker.Expect(req); err != nil {
		return failed(err)
	}
	o.emit(cy, nutriguide.EventEnvelope, req, nil)
	o.metrics.agentCalls.Add(ctx, 1, metric.WithAttributes(attribute.String("agent", id)))

	timeout := o.agents.Timeout(id, o.timeout)
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	replies := make(chan protocol.Envelope, 1)
	go func() {
		replies <- protocol.Reply(req, uuid.NewString(), id, agent.Handle(actx, req))
	}()

	var resp protocol.Envelope
	select {
	case resp = <-replies:
	case <-actx.Done():
		err := fmt.Errorf("agent %s did not answer within %s: %w", id, timeout, actx.Err())
		resp = protocol.Reply(req, uuid.NewString(), id, protocol.Failed(err))
		go o.drain(cy, replies)
	}
	elapsed := time.Since(start)
	o.metrics.agentTime.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("agent", id)))

	if err := o.tracker.Accept(resp); err != nil {
		o.drop(cy, resp, err)
		return failed(err)
	}
	o.emit(cy, nutriguide.EventEnvelope, resp, nil)

	c, ok := resp.Contribution()
	if !ok {
		return failed(fmt.Errorf("reply from %s carries no contribution", id))
	}
	if c.Status == protocol.StatusVeto && !spec.CanVeto {
		c = failed(fmt.Errorf("agent %s is not allowed to veto: %s", id, c.Rationale))
	}

	switch c.Status {
	case protocol.StatusFailed:
		o.metrics.agentFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("agent", id)))
		slog.Warn("AGENT: Failed", "correlation_id", cy.id, "agent", id, "critical", spec.Critical(), "reason", c.Rationale)
	case protocol.StatusVeto:
		slog.Warn("AGENT: Veto", "correlation_id", cy.id, "agent", id, "reason", c.Rationale)
	default:
		slog.Info("AGENT: Replied",
			"correlation_id", cy.id,
			"agent", id,
			"status", c.Status,
			"fields", c.Fields.Keys(),
			"response_time_ms", elapsed.Milliseconds(),
		)
	}
	return c
}

// drain waits for a reply that lost the race against its timeout and drops it.
func (o *Orchestrator) drain(cy *cycle, replies <-chan protocol.Envelope) {
	late := <-replies
	if err := o.tracker.Accept(late); err != nil {
		o.drop(cy, late, err)
	}
}

func (o *Orchestrator) drop(cy *cycle, env protocol.Envelope, err error) {
	o.metrics.dropped.Add(context.Background(), 1, metric.WithAttributes(attribute.String("agent", env.Sender())))
	slog.Warn("ORCHESTRATOR: Dropping reply", "correlation_id", cy.id, "agent", env.Sender(), "error", err)
	o.emit(cy, nutriguide.EventDropped, env, err)
}

func (o *Orchestrator) transition(cy *cycle, next State) error {
	cy.mu.Lock()
	from := cy.machine.state
	err := cy.machine.to(next)
	cy.mu.Unlock()
	if err != nil {
		return fmt.Errorf("cycle %s: %w", cy.id, err)
	}
	slog.Info("ORCHESTRATOR: Transition", "correlation_id", cy.id, "from", from, "to", next)
	o.emit(cy, nutriguide.EventTransition, protocol.Envelope{}, nil)
	return nil
}

func (o *Orchestrator) reject(cy *cycle, r nutriguide.Rejection) (nutriguide.PlanOutcome, error) {
	if err := o.transition(cy, StateRejected); err != nil {
		return nutriguide.PlanOutcome{}, err
	}
	slog.Warn("ORCHESTRATOR: Plan rejected",
		"correlation_id", cy.id,
		"agent", r.AgentID,
		"stage", r.Stage,
		"reason", r.Reason,
	)
	return nutriguide.PlanOutcome{Status: nutriguide.StatusRejected, Rejection: &r}, nil
}

func (o *Orchestrator) rejectMerge(cy *cycle, err error) (nutriguide.PlanOutcome, error) {
	agent := AggregatorID
	var ce *aggregate.ConflictError
	if errors.As(err, &ce) {
		agent = ce.Agent
	}
	return o.reject(cy, nutriguide.Rejection{AgentID: agent, Stage: StageAggregation, Reason: err.Error()})
}

func (o *Orchestrator) emit(cy *cycle, kind string, env protocol.Envelope, err error) {
	ev := nutriguide.CycleEvent{
		CorrelationID: cy.id,
		Timestamp:     time.Now().UTC(),
		Kind:          kind,
	}
	if !env.IsZero() {
		ev.Envelope = env.Flatten()
	}
	if err != nil {
		ev.Error = err.Error()
	}

	cy.mu.Lock()
	defer cy.mu.Unlock()
	cy.seq++
	ev.Sequence = cy.seq
	ev.State = string(cy.machine.state)
	if lerr := o.logger.LogEvent(ev); lerr != nil {
		slog.Warn("ORCHESTRATOR: Failed to log cycle event", "correlation_id", cy.id, "kind", kind, "error", lerr)
	}
}

// tiers splits the enabled agents into the safety tier and the tiers that follow it.
func (o *Orchestrator) tiers() (registry.Tier, []registry.Tier) {
	safety := registry.Tier{Level: agents.TierSafety}
	var rest []registry.Tier
	for _, t := range o.registry.AllByTier() {
		ids := slices.DeleteFunc(slices.Clone(t.IDs), func(id string) bool { return !o.agents.Enabled(id) })
		if len(ids) == 0 {
			continue
		}
		if t.Level == agents.TierSafety {
			safety.IDs = ids
			continue
		}
		rest = append(rest, registry.Tier{Level: t.Level, IDs: ids})
	}
	return safety, rest
}

func (o *Orchestrator) mergeOptions() aggregate.Options {
	return aggregate.Options{
		Order: o.registry.Order,
		MayPatch: func(id string) bool {
			spec, err := o.registry.Spec(id)
			return err == nil && spec.MayPatchProfile
		},
	}
}

// verdict returns the rejection for a safety tier: the first veto, otherwise the first agent
// that gave no verdict at all.
func verdict(cs []protocol.Contribution, stage string) *nutriguide.Rejection {
	for _, c := range cs {
		if c.Status == protocol.StatusVeto {
			return &nutriguide.Rejection{AgentID: c.AgentID, Stage: stage, Reason: c.Rationale}
		}
	}
	for _, c := range cs {
		if c.Status != protocol.StatusOK {
			return &nutriguide.Rejection{AgentID: c.AgentID, Stage: stage, Reason: "no safety verdict: " + c.Rationale}
		}
	}
	return nil
}

func failedAgents(groups []aggregate.Group) []string {
	var out []string
	for _, g := range groups {
		for _, c := range g.Contributions {
			if c.Status == protocol.StatusFailed {
				out = append(out, c.AgentID)
			}
		}
	}
	return out
}

func planDay(t time.Time, now func() time.Time) time.Time {
	if t.IsZero() {
		t = now()
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
