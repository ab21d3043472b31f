package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutriguide/agents"
	"nutriguide/protocol"
)

type stubAgent struct {
	spec agents.Spec
}

func (s stubAgent) Spec() agents.Spec { return s.spec }

func (s stubAgent) Handle(ctx context.Context, req protocol.Envelope) protocol.Contribution {
	return protocol.OK(nil, "stub")
}

func stub(id string, tier int) stubAgent {
	return stubAgent{spec: agents.Spec{ID: id, Tier: tier}}
}

func TestRegisterAndResolve(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(stub("medical", 0)))
	require.NoError(t, r.Register(stub("goal", 2)))

	a, err := r.Resolve("goal")
	require.NoError(t, err)
	assert.Equal(t, "goal", a.Spec().ID)

	_, err = r.Resolve("astrology")
	var unknown *UnknownAgentError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "astrology", unknown.ID)

	assert.Equal(t, 0, r.Order("medical"))
	assert.Equal(t, 1, r.Order("goal"))
	assert.Equal(t, -1, r.Order("astrology"))
}

func TestRegisterErrors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(r *Registry)
		agent   agents.Agent
		checkFn func(t *testing.T, err error)
	}{
		{
			name:  "duplicate id",
			setup: func(r *Registry) { _ = r.Register(stub("goal", 2)) },
			agent: stub("goal", 3),
			checkFn: func(t *testing.T, err error) {
				var dup *DuplicateAgentError
				require.ErrorAs(t, err, &dup)
				assert.Equal(t, "goal", dup.ID)
			},
		},
		{
			name:  "frozen",
			setup: func(r *Registry) { r.Freeze() },
			agent: stub("goal", 2),
			checkFn: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrFrozen)
			},
		},
		{
			name:  "missing id",
			setup: func(r *Registry) {},
			agent: stub("", 2),
			checkFn: func(t *testing.T, err error) {
				assert.Error(t, err)
			},
		},
		{
			name:  "negative tier",
			setup: func(r *Registry) {},
			agent: stub("odd", -1),
			checkFn: func(t *testing.T, err error) {
				assert.Error(t, err)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			tt.setup(r)
			tt.checkFn(t, r.Register(tt.agent))
		})
	}
}

func TestAllByTier(t *testing.T) {
	r := New()
	for _, a := range []stubAgent{
		stub("restriction-safety", 0),
		stub("medical", 0),
		stub("preference", 1),
		stub("goal", 2),
		stub("food-knowledge", 3),
		stub("budget", 3),
		stub("emergency-risk", 0),
	} {
		require.NoError(t, r.Register(a))
	}

	tiers := r.AllByTier()
	require.Len(t, tiers, 4)
	assert.Equal(t, Tier{Level: 0, IDs: []string{"restriction-safety", "medical", "emergency-risk"}}, tiers[0])
	assert.Equal(t, Tier{Level: 1, IDs: []string{"preference"}}, tiers[1])
	assert.Equal(t, Tier{Level: 2, IDs: []string{"goal"}}, tiers[2])
	assert.Equal(t, Tier{Level: 3, IDs: []string{"food-knowledge", "budget"}}, tiers[3])

	specs := r.Specs()
	require.Len(t, specs, 7)
	assert.Equal(t, "emergency-risk", specs[6].ID)
	assert.Equal(t, 7, r.Len())
}
