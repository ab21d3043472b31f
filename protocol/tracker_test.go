package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker(t *testing.T) {
	tr := NewTracker()
	tr.Open("c1")

	req, err := NewRequest("e1", "c1", OrchestratorID, []string{"goal"}, PriorityNormal, Payload{})
	require.NoError(t, err)
	require.NoError(t, tr.Expect(req))
	assert.Equal(t, 1, tr.Outstanding("c1"))

	resp := Reply(req, "r1", "goal", OK(nil, ""))
	require.NoError(t, tr.Accept(resp))
	assert.Equal(t, 0, tr.Outstanding("c1"))

	t.Run("duplicate", func(t *testing.T) {
		err := tr.Accept(Reply(req, "r2", "goal", OK(nil, "")))
		assert.ErrorIs(t, err, ErrDuplicateResponse)
	})

	t.Run("unexpected sender", func(t *testing.T) {
		err := tr.Accept(Reply(req, "r3", "budget", OK(nil, "")))
		assert.ErrorIs(t, err, ErrUnexpectedResponse)
	})

	t.Run("stale after close", func(t *testing.T) {
		late, err := NewRequest("e2", "c1", OrchestratorID, []string{"timing"}, PriorityLow, Payload{})
		require.NoError(t, err)
		require.NoError(t, tr.Expect(late))
		tr.Close("c1")
		err = tr.Accept(Reply(late, "r4", "timing", OK(nil, "")))
		assert.ErrorIs(t, err, ErrStaleResponse)
	})

	t.Run("unknown cycle", func(t *testing.T) {
		other, err := NewRequest("e3", "c9", OrchestratorID, []string{"goal"}, PriorityLow, Payload{})
		require.NoError(t, err)
		assert.ErrorIs(t, tr.Expect(other), ErrStaleResponse)
	})
}
