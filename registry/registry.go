// Package registry maps agent ids to agent instances and their declared tier.
package registry

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"nutriguide/agents"
)

// DuplicateAgentError is returned when an id is registered twice.
type DuplicateAgentError struct {
	ID string
}

func (e *DuplicateAgentError) Error() string {
	return fmt.Sprintf("agent %q is already registered", e.ID)
}

// UnknownAgentError is returned when resolving an id that was never registered.
type UnknownAgentError struct {
	ID string
}

func (e *UnknownAgentError) Error() string {
	return fmt.Sprintf("agent %q is not registered", e.ID)
}

// ErrFrozen is returned by Register after Freeze.
var ErrFrozen = errors.New("registry is frozen")

type entry struct {
	agent agents.Agent
	spec  agents.Spec
	order int
}

// Registry is populated at startup and read-only once frozen.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
	ids     []string
	frozen  bool
}

func New() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds an agent under its declared id and tier. Registration order is the
// tie-break between agents of the same tier.
func (r *Registry) Register(a agents.Agent) error {
	spec := a.Spec()
	if spec.ID == "" {
		return fmt.Errorf("agent %q has no id", spec.Name)
	}
	if spec.Tier < 0 {
		return fmt.Errorf("agent %q has negative tier %d", spec.ID, spec.Tier)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("register %s: %w", spec.ID, ErrFrozen)
	}
	if _, ok := r.entries[spec.ID]; ok {
		return &DuplicateAgentError{ID: spec.ID}
	}
	r.entries[spec.ID] = entry{agent: a, spec: spec, order: len(r.ids)}
	r.ids = append(r.ids, spec.ID)
	return nil
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

func (r *Registry) Resolve(id string) (agents.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, &UnknownAgentError{ID: id}
	}
	return e.agent, nil
}

// Spec returns the declared capabilities of a registered agent.
func (r *Registry) Spec(id string) (agents.Spec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return agents.Spec{}, &UnknownAgentError{ID: id}
	}
	return e.spec, nil
}

// Order returns the registration index of id, or -1 when unknown.
func (r *Registry) Order(id string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return -1
	}
	return e.order
}

// Tier is one priority class of agents, in registration order.
type Tier struct {
	Level int
	IDs   []string
}

// AllByTier returns the tiers in ascending order. Within a tier ids keep registration order.
func (r *Registry) AllByTier() []Tier {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var levels []int
	byLevel := map[int][]string{}
	for _, id := range r.ids {
		t := r.entries[id].spec.Tier
		if _, ok := byLevel[t]; !ok {
			levels = append(levels, t)
		}
		byLevel[t] = append(byLevel[t], id)
	}
	slices.Sort(levels)

	out := make([]Tier, 0, len(levels))
	for _, l := range levels {
		out = append(out, Tier{Level: l, IDs: byLevel[l]})
	}
	return out
}

// Specs returns every registered spec in registration order.
func (r *Registry) Specs() []agents.Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]agents.Spec, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.entries[id].spec)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ids)
}
