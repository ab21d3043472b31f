package protocol

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutriguide"
)

func testProfile() nutriguide.UserProfile {
	return nutriguide.UserProfile{
		ID:        "p-1",
		Allergies: []string{"peanut"},
		Preferences: nutriguide.Preferences{
			Cuisines: []string{"indian"},
		},
		Biomarkers: map[string]float64{"vitamin_d": 22},
	}
}

func TestNewRequest(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		corr       string
		sender     string
		recipients []string
		wantErr    bool
	}{
		{name: "valid", id: "e1", corr: "c1", sender: OrchestratorID, recipients: []string{"goal"}},
		{name: "missing id", corr: "c1", sender: OrchestratorID, recipients: []string{"goal"}, wantErr: true},
		{name: "missing correlation", id: "e1", sender: OrchestratorID, recipients: []string{"goal"}, wantErr: true},
		{name: "missing sender", id: "e1", corr: "c1", recipients: []string{"goal"}, wantErr: true},
		{name: "no recipients", id: "e1", corr: "c1", sender: OrchestratorID, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := NewRequest(tt.id, tt.corr, tt.sender, tt.recipients, PriorityNormal, Payload{})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, IntentRequest, env.Intent())
			assert.Equal(t, tt.corr, env.CorrelationID())
			assert.True(t, env.AddressedTo("goal"))
		})
	}
}

func TestEnvelopeIsImmutable(t *testing.T) {
	profile := testProfile()
	draft := Fields{nutriguide.FieldRecipes: map[string]string{"breakfast": "stir"}}
	env, err := NewRequest("e1", "c1", OrchestratorID, []string{"goal"}, PriorityHigh, Payload{
		KeyProfile: profile,
		KeyDraft:   draft,
	})
	require.NoError(t, err)

	// Mutating the caller's values after construction must not leak into the envelope.
	profile.Allergies[0] = "shellfish"
	profile.Biomarkers["vitamin_d"] = 50
	draft[nutriguide.FieldRecipes].(map[string]string)["breakfast"] = "boil"

	got, ok := env.Profile()
	require.True(t, ok)
	assert.Equal(t, []string{"peanut"}, got.Allergies)
	assert.Equal(t, 22.0, got.Biomarkers["vitamin_d"])
	assert.Equal(t, "stir", env.Draft()[nutriguide.FieldRecipes].(map[string]string)["breakfast"])

	// Mutating an accessor result must not leak either.
	got.Allergies[0] = "soy"
	again, _ := env.Profile()
	assert.Equal(t, "peanut", again.Allergies[0])
}

func TestReplyIntent(t *testing.T) {
	req, err := NewRequest("e1", "c1", OrchestratorID, []string{"medical"}, PriorityCritical, Payload{})
	require.NoError(t, err)

	tests := []struct {
		name string
		c    Contribution
		want Intent
	}{
		{name: "ok", c: OK(Fields{"x": "y"}, ""), want: IntentContribution},
		{name: "skipped", c: Skipped("nothing to do"), want: IntentContribution},
		{name: "veto", c: Veto("unsafe"), want: IntentVeto},
		{name: "failed", c: Failed(errors.New("boom")), want: IntentError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := Reply(req, "r1", "medical", tt.c)
			assert.Equal(t, tt.want, resp.Intent())
			assert.Equal(t, "e1", resp.InReplyTo())
			assert.Equal(t, "c1", resp.CorrelationID())
			assert.Equal(t, []string{OrchestratorID}, resp.Recipients())
			c, ok := resp.Contribution()
			require.True(t, ok)
			assert.Equal(t, "medical", c.AgentID)
			assert.Equal(t, tt.c.Status, c.Status)
		})
	}
}

func TestFlatten(t *testing.T) {
	env, err := NewRequest("e1", "c1", OrchestratorID, []string{"goal"}, PriorityLow, Payload{
		KeyProfile: testProfile(),
		KeyPhase:   PhasePreflight,
	})
	require.NoError(t, err)

	flat := env.Flatten()
	assert.Equal(t, "e1", flat["id"])
	assert.Equal(t, "c1", flat["correlation_id"])
	assert.Equal(t, "low", flat["priority"])
	assert.Equal(t, PhasePreflight, flat["payload.phase"])
	assert.Equal(t, map[string]any{"id": "p-1"}, flat["payload.profile"])

	data, err := json.Marshal(env)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"sender_id":"orchestrator"`)
}

func TestPriorityForTier(t *testing.T) {
	assert.Equal(t, PriorityCritical, PriorityForTier(0))
	assert.Equal(t, PriorityHigh, PriorityForTier(1))
	assert.Equal(t, PriorityNormal, PriorityForTier(2))
	assert.Equal(t, PriorityLow, PriorityForTier(3))
	assert.Less(t, int(PriorityCritical), int(PriorityLow))
}
