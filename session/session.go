// Package session keeps the per-profile state that outlives a planning cycle: staged profile
// patches and feedback waiting for the next cycle. The orchestrator is its only writer.
package session

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"nutriguide"
)

// Snapshot is the profile a cycle runs against.
type Snapshot struct {
	Profile nutriguide.UserProfile
	// PendingFeedback is the number of stored feedback entries attached to Profile.
	PendingFeedback int
}

type Store interface {
	// Snapshot applies committed patches to profile and attaches pending feedback.
	Snapshot(ctx context.Context, profile nutriguide.UserProfile) (Snapshot, error)
	// Commit stages patches for later cycles, drops the first consumed pending feedback entries
	// and marks the cycle as completed.
	Commit(ctx context.Context, profileID string, patches []nutriguide.ProfilePatch, consumed int) error
	// AddFeedback queues feedback for the next cycle and returns the number pending.
	AddFeedback(ctx context.Context, profileID string, feedback nutriguide.Feedback) (int, error)
	// Known reports whether a cycle has been committed for the profile id.
	Known(ctx context.Context, profileID string) bool
}

type record struct {
	patches  []nutriguide.ProfilePatch
	feedback []nutriguide.Feedback
	cycles   int
}

// MemoryStore is an in-memory Store safe for concurrent use.
type MemoryStore struct {
	mu       sync.Mutex
	profiles map[string]*record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]*record)}
}

func (s *MemoryStore) get(id string) *record {
	r, ok := s.profiles[id]
	if !ok {
		r = &record{}
		s.profiles[id] = r
	}
	return r
}

func (s *MemoryStore) Snapshot(ctx context.Context, profile nutriguide.UserProfile) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	if profile.ID == "" {
		return Snapshot{}, fmt.Errorf("profile has no id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.get(profile.ID)

	out := profile.Clone()
	for _, p := range r.patches {
		out = out.Apply(p)
	}
	for _, f := range r.feedback {
		f.Disliked = slices.Clone(f.Disliked)
		out.Feedback = append(out.Feedback, f)
	}
	return Snapshot{Profile: out, PendingFeedback: len(r.feedback)}, nil
}

func (s *MemoryStore) Commit(ctx context.Context, profileID string, patches []nutriguide.ProfilePatch, consumed int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.profiles[profileID]
	if !ok {
		return fmt.Errorf("unknown profile %s", profileID)
	}
	for _, p := range patches {
		if p.IsEmpty() {
			continue
		}
		i := slices.IndexFunc(r.patches, func(c nutriguide.ProfilePatch) bool { return c.AgentID == p.AgentID })
		if i < 0 {
			r.patches = append(r.patches, p)
			continue
		}
		r.patches[i] = r.patches[i].Then(p)
	}
	r.cycles++
	consumed = min(max(consumed, 0), len(r.feedback))
	r.feedback = slices.Delete(r.feedback, 0, consumed)
	return nil
}

func (s *MemoryStore) AddFeedback(ctx context.Context, profileID string, feedback nutriguide.Feedback) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.profiles[profileID]
	if !ok {
		return 0, fmt.Errorf("unknown profile %s", profileID)
	}
	feedback.ProfileID = profileID
	feedback.Disliked = slices.Clone(feedback.Disliked)
	r.feedback = append(r.feedback, feedback)
	return len(r.feedback), nil
}

func (s *MemoryStore) Known(ctx context.Context, profileID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.profiles[profileID]
	return ok && r.cycles > 0
}

// Patches returns the patches committed for a profile, one per agent in the order the agents
// first staged one.
func (s *MemoryStore) Patches(profileID string) []nutriguide.ProfilePatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.profiles[profileID]; ok {
		return slices.Clone(r.patches)
	}
	return nil
}
