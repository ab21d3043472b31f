package mock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutriguide/reasoning"
)

func TestInvoke(t *testing.T) {
	tests := []struct {
		name                string
		responses           map[string]Response
		agent               string
		expectedResultCheck func(t *testing.T, r *Reasoner, res reasoning.Result, err error)
	}{
		{
			name:  "canned goal proposal",
			agent: "goal",
			expectedResultCheck: func(t *testing.T, r *Reasoner, res reasoning.Result, err error) {
				require.NoError(t, err)
				assert.Contains(t, res.Text, "Overnight Oats with Berries")
				assert.Contains(t, res.Structured, "meals")
				assert.Equal(t, 1, r.Calls("goal"))
			},
		},
		{
			name:  "unknown agents get an empty object",
			agent: "timing",
			expectedResultCheck: func(t *testing.T, r *Reasoner, res reasoning.Result, err error) {
				require.NoError(t, err)
				assert.Equal(t, "{}", res.Text)
			},
		},
		{
			name:      "scripted text",
			responses: map[string]Response{"motivation": {Text: `{"message":"hi"}`}},
			agent:     "motivation",
			expectedResultCheck: func(t *testing.T, r *Reasoner, res reasoning.Result, err error) {
				require.NoError(t, err)
				assert.Equal(t, `{"message":"hi"}`, res.Text)
				assert.Equal(t, "mock", res.Model)
			},
		},
		{
			name:      "scripted failure",
			responses: map[string]Response{"goal": {FailTimes: 1}},
			agent:     "goal",
			expectedResultCheck: func(t *testing.T, r *Reasoner, res reasoning.Result, err error) {
				assert.ErrorIs(t, err, ErrScripted)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.responses)
			res, err := r.Invoke(context.Background(), reasoning.Prompt{Agent: tt.agent, Input: "x"})
			tt.expectedResultCheck(t, r, res, err)
		})
	}
}

func TestInvokeDelayHonoursContext(t *testing.T) {
	r := New(map[string]Response{"goal": {Text: "{}", Delay: time.Second}})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := r.Invoke(ctx, reasoning.Prompt{Agent: "goal"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
