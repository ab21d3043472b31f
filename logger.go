package nutriguide

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// CycleLogger records the audit trail of a planning cycle: state transitions and every envelope exchanged.
type CycleLogger interface {
	LogEvent(event CycleEvent) error
}

// NewCycleLogFilePath returns a file path that identifies the profile and reasoning provider of a run.
func NewCycleLogFilePath(profileID, provider string) string {
	return fmt.Sprintf(
		"./logs/%d.%s.%s.json",
		time.Now().Unix(),
		strings.ReplaceAll(strings.ToLower(profileID), "/", "_"),
		strings.ReplaceAll(strings.ToLower(provider), ":", "_"),
	)
}

// Event kinds.
const (
	EventTransition = "transition"
	EventEnvelope   = "envelope"
	EventDropped    = "dropped"
)

// CycleEvent is a single entry in a cycle's audit trail.
type CycleEvent struct {
	CorrelationID string         `json:"correlation_id"`
	Sequence      int            `json:"sequence"`
	Timestamp     time.Time      `json:"timestamp"`
	Kind          string         `json:"kind"`
	State         string         `json:"state"`
	Envelope      map[string]any `json:"envelope,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// FileCycleLogger accumulates events and writes them as one JSON document on Flush.
type FileCycleLogger struct {
	mu     sync.Mutex
	events []CycleEvent
	writer io.Writer
}

func NewFileCycleLogger(writer io.Writer) *FileCycleLogger {
	return &FileCycleLogger{
		events: make([]CycleEvent, 0),
		writer: writer,
	}
}

// LogEvent buffers the event.
func (l *FileCycleLogger) LogEvent(event CycleEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	return nil
}

// Flush writes all buffered events to the writer and clears the buffer.
func (l *FileCycleLogger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.writer == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"planning_session": map[string]any{
			"timestamp": time.Now(),
			"events":    l.events,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cycle log: %w", err)
	}

	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write cycle log: %w", err)
	}

	l.events = l.events[:0]
	return nil
}

// NoOpCycleLogger discards all events.
type NoOpCycleLogger struct{}

func NewNoOpCycleLogger() *NoOpCycleLogger {
	return &NoOpCycleLogger{}
}

func (nop *NoOpCycleLogger) LogEvent(event CycleEvent) error {
	return nil
}

// StdoutCycleLogger writes each event as a JSON line (for Lambda/CloudWatch).
type StdoutCycleLogger struct {
	mu  sync.Mutex
	out io.Writer
}

func NewStdoutCycleLogger() *StdoutCycleLogger {
	return &StdoutCycleLogger{out: os.Stdout}
}

func (l *StdoutCycleLogger) LogEvent(event CycleEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err = fmt.Fprintln(l.out, string(data))
	return err
}

// MultiCycleLogger fans an event out to several loggers and joins their errors.
type MultiCycleLogger []CycleLogger

func (m MultiCycleLogger) LogEvent(event CycleEvent) error {
	var errs []string
	for _, l := range m {
		if err := l.LogEvent(event); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("cycle logger: %s", strings.Join(errs, "; "))
	}
	return nil
}
