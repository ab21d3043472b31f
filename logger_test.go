package nutriguide

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingLogger struct{}

func (failingLogger) LogEvent(CycleEvent) error { return errors.New("disk full") }

func TestFileCycleLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewFileCycleLogger(&buf)

	at := time.Date(2025, time.January, 6, 8, 0, 0, 0, time.UTC)
	require.NoError(t, logger.LogEvent(CycleEvent{CorrelationID: "c-1", Sequence: 1, Timestamp: at, Kind: EventTransition, State: "PENDING"}))
	require.NoError(t, logger.LogEvent(CycleEvent{
		CorrelationID: "c-1",
		Sequence:      2,
		Timestamp:     at,
		Kind:          EventEnvelope,
		State:         "SAFETY_CHECK",
		Envelope:      map[string]any{"sender_id": "orchestrator"},
	}))
	assert.Zero(t, buf.Len(), "events are buffered until Flush")

	require.NoError(t, logger.Flush())

	var doc struct {
		Session struct {
			Events []CycleEvent `json:"events"`
		} `json:"planning_session"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Session.Events, 2)
	assert.Equal(t, 2, doc.Session.Events[1].Sequence)
	assert.Equal(t, "orchestrator", doc.Session.Events[1].Envelope["sender_id"])

	buf.Reset()
	require.NoError(t, logger.Flush())
	assert.Contains(t, buf.String(), `"events": []`)
}

func TestStdoutCycleLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := &StdoutCycleLogger{out: &buf}
	require.NoError(t, logger.LogEvent(CycleEvent{CorrelationID: "c-1", Sequence: 1, Kind: EventDropped, Error: "late reply"}))
	require.NoError(t, logger.LogEvent(CycleEvent{CorrelationID: "c-1", Sequence: 2, Kind: EventTransition}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var ev CycleEvent
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &ev))
	assert.Equal(t, "late reply", ev.Error)
}

func TestMultiCycleLogger(t *testing.T) {
	var buf bytes.Buffer
	file := NewFileCycleLogger(&buf)

	err := MultiCycleLogger{file, failingLogger{}, NewNoOpCycleLogger()}.LogEvent(CycleEvent{CorrelationID: "c-1", Sequence: 1})
	assert.ErrorContains(t, err, "disk full")

	require.NoError(t, file.Flush())
	assert.Contains(t, buf.String(), `"correlation_id": "c-1"`)
}

func TestNewCycleLogFilePath(t *testing.T) {
	path := NewCycleLogFilePath("Team/P-1", "bedrock:claude")
	assert.True(t, strings.HasPrefix(path, "./logs/"))
	assert.True(t, strings.HasSuffix(path, ".team_p-1.bedrock_claude.json"))
}
