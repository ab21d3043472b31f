package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutriguide"
	"nutriguide/protocol"
	"nutriguide/reasoning"
)

func TestHandle(t *testing.T) {
	critical := Spec{ID: "critical", Tier: TierSafety, CanVeto: true, Required: []string{nutriguide.FieldAllergies}}
	plain := Spec{ID: "plain", Tier: TierEnrichment, Required: []string{nutriguide.FieldBudget}}

	okWork := func(ctx context.Context, req protocol.Envelope, p nutriguide.UserProfile) (protocol.Contribution, error) {
		return protocol.OK(protocol.Fields{"x": "y"}, "done"), nil
	}

	tests := []struct {
		name       string
		spec       Spec
		profile    nutriguide.UserProfile
		opts       reqOpts
		reply      bool
		fn         work
		wantStatus protocol.Status
		wantReason string
	}{
		{
			name:       "success stamps agent id",
			spec:       critical,
			profile:    baseProfile(),
			fn:         okWork,
			wantStatus: protocol.StatusOK,
		},
		{
			name:       "critical agent vetoes on missing profile",
			spec:       critical,
			opts:       reqOpts{noProfile: true},
			fn:         okWork,
			wantStatus: protocol.StatusVeto,
			wantReason: "profile",
		},
		{
			name:       "critical agent vetoes on missing required field",
			spec:       critical,
			profile:    nutriguide.UserProfile{ID: "p-1"},
			fn:         okWork,
			wantStatus: protocol.StatusVeto,
			wantReason: "allergies",
		},
		{
			name:       "non-critical agent skips on missing required field",
			spec:       plain,
			profile:    baseProfile(),
			fn:         okWork,
			wantStatus: protocol.StatusSkipped,
			wantReason: "budget",
		},
		{
			name:       "reply envelopes are rejected",
			spec:       plain,
			profile:    baseProfile(),
			reply:      true,
			fn:         okWork,
			wantStatus: protocol.StatusFailed,
		},
		{
			name:    "panic becomes failure",
			spec:    critical,
			profile: baseProfile(),
			fn: func(ctx context.Context, req protocol.Envelope, p nutriguide.UserProfile) (protocol.Contribution, error) {
				panic("boom")
			},
			wantStatus: protocol.StatusFailed,
			wantReason: "boom",
		},
		{
			name:    "veto from ineligible agent becomes failure",
			spec:    Spec{ID: "plain", Tier: TierEnrichment},
			profile: baseProfile(),
			fn: func(ctx context.Context, req protocol.Envelope, p nutriguide.UserProfile) (protocol.Contribution, error) {
				return protocol.Veto("I object"), nil
			},
			wantStatus: protocol.StatusFailed,
			wantReason: "not allowed to veto",
		},
		{
			name:    "reasoning service error becomes failure",
			spec:    Spec{ID: "plain", Tier: TierEnrichment},
			profile: baseProfile(),
			fn: func(ctx context.Context, req protocol.Envelope, p nutriguide.UserProfile) (protocol.Contribution, error) {
				return protocol.Contribution{}, &reasoning.ServiceError{Backend: "mock", Agent: "plain", Attempts: 2, Err: errors.New("quota")}
			},
			wantStatus: protocol.StatusFailed,
			wantReason: "quota",
		},
		{
			name:    "missing input error from work is a skip",
			spec:    Spec{ID: "plain", Tier: TierEnrichment},
			profile: baseProfile(),
			fn: func(ctx context.Context, req protocol.Envelope, p nutriguide.UserProfile) (protocol.Contribution, error) {
				return protocol.Contribution{}, &MissingInputError{AgentID: "plain", Field: "candidate"}
			},
			wantStatus: protocol.StatusSkipped,
			wantReason: "candidate",
		},
		{
			name:    "deadline becomes failure",
			spec:    critical,
			profile: baseProfile(),
			fn: func(ctx context.Context, req protocol.Envelope, p nutriguide.UserProfile) (protocol.Contribution, error) {
				return protocol.Contribution{}, context.DeadlineExceeded
			},
			wantStatus: protocol.StatusFailed,
			wantReason: "deadline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := request(t, tt.profile, tt.opts)
			if tt.reply {
				req = protocol.Reply(req, "resp-1", "other", protocol.OK(nil, ""))
			}
			c := handle(context.Background(), tt.spec, req, tt.fn)
			assert.Equal(t, tt.wantStatus, c.Status)
			assert.Equal(t, tt.spec.ID, c.AgentID)
			if tt.wantReason != "" {
				assert.Contains(t, c.Rationale, tt.wantReason)
			}
		})
	}
}

func TestContributeDropsEmptyValues(t *testing.T) {
	c := contribute(protocol.Fields{
		"empty_list":  []string{},
		"empty_map":   map[string]string{},
		"empty_text":  "",
		"empty_patch": nutriguide.ProfilePatch{AgentID: "x"},
		"kept":        []string{"a"},
	}, "r")
	assert.Equal(t, []string{"kept"}, c.Fields.Keys())
}

func TestDefaults(t *testing.T) {
	all := Defaults(Deps{})
	require.Len(t, all, 13)

	var ids, vetoes []string
	for _, a := range all {
		s := a.Spec()
		ids = append(ids, s.ID)
		if s.CanVeto {
			vetoes = append(vetoes, s.ID)
		}
		if s.CanVeto {
			assert.Equal(t, TierSafety, s.Tier, s.ID)
		}
	}
	assert.Equal(t, []string{
		RestrictionSafetyID, MedicalID, EmergencyRiskID, PreferenceID, FeedbackID, GoalID,
		FoodKnowledgeID, CulturalID, BudgetID, TimingID, SustainabilityID, AdaptationID, MotivationID,
	}, ids)
	assert.Equal(t, []string{RestrictionSafetyID, MedicalID, EmergencyRiskID}, vetoes)

	var reg fakeRegistrar
	require.NoError(t, RegisterDefaults(&reg, Deps{}))
	assert.Len(t, reg.agents, 13)

	reg.err = errors.New("frozen")
	assert.ErrorContains(t, RegisterDefaults(&reg, Deps{}), "restriction-safety")
}

type fakeRegistrar struct {
	agents []Agent
	err    error
}

func (f *fakeRegistrar) Register(a Agent) error {
	if f.err != nil {
		return f.err
	}
	f.agents = append(f.agents, a)
	return nil
}
