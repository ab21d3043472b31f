package protocol

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrStaleResponse      = errors.New("response for a closed or unknown cycle")
	ErrUnexpectedResponse = errors.New("response does not answer an outstanding request")
	ErrDuplicateResponse  = errors.New("request already answered")
)

// Tracker matches responses to outstanding requests by correlation id so late and
// duplicate replies can be dropped.
type Tracker struct {
	mu     sync.Mutex
	cycles map[string]*pending
}

type pending struct {
	expected map[string]string // request id -> recipient
	answered map[string]bool
}

func NewTracker() *Tracker {
	return &Tracker{cycles: make(map[string]*pending)}
}

// Open starts tracking a cycle.
func (t *Tracker) Open(correlationID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cycles[correlationID] = &pending{
		expected: make(map[string]string),
		answered: make(map[string]bool),
	}
}

// Close stops tracking a cycle; later responses are stale.
func (t *Tracker) Close(correlationID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.cycles, correlationID)
}

// Expect registers a request whose responses should be accepted.
func (t *Tracker) Expect(req Envelope) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.cycles[req.CorrelationID()]
	if !ok {
		return fmt.Errorf("expect %s: %w", req.ID(), ErrStaleResponse)
	}
	for _, r := range req.recipients {
		p.expected[req.ID()+"/"+r] = r
	}
	return nil
}

// Accept checks a response against the outstanding requests of its cycle.
func (t *Tracker) Accept(resp Envelope) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.cycles[resp.CorrelationID()]
	if !ok {
		return fmt.Errorf("%s from %s: %w", resp.ID(), resp.Sender(), ErrStaleResponse)
	}
	key := resp.InReplyTo() + "/" + resp.Sender()
	if _, ok := p.expected[key]; !ok {
		return fmt.Errorf("%s from %s: %w", resp.ID(), resp.Sender(), ErrUnexpectedResponse)
	}
	if p.answered[key] {
		return fmt.Errorf("%s from %s: %w", resp.ID(), resp.Sender(), ErrDuplicateResponse)
	}
	p.answered[key] = true
	return nil
}

// Outstanding returns how many expected responses a cycle is still waiting for.
func (t *Tracker) Outstanding(correlationID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.cycles[correlationID]
	if !ok {
		return 0
	}
	return len(p.expected) - len(p.answered)
}
