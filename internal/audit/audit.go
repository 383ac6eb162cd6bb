// Package audit emits complaint lifecycle events for downstream consumers
// (dashboards, escalation workers). Events are keyed by ticket ID so a single
// complaint's history stays ordered within a partition.
package audit

import (
	"context"
	"sync"
	"time"
)

type Action string

const (
	ActionComplaintSubmitted Action = "complaint_submitted"
	ActionStatusChanged      Action = "status_changed"
	ActionAccountRegistered  Action = "account_registered"
)

// Event captures one domain action. Keep it transport-agnostic so sinks can
// fan out. Never put raw PNR digits or password material in here.
type Event struct {
	Timestamp  time.Time `json:"timestamp"`
	Action     Action    `json:"action"`
	TicketID   string    `json:"ticketId,omitempty"`
	ActorID    string    `json:"actorId,omitempty"`
	ActorRole  string    `json:"actorRole,omitempty"`
	FromStatus string    `json:"fromStatus,omitempty"`
	ToStatus   string    `json:"toStatus,omitempty"`
	RequestID  string    `json:"requestId,omitempty"`
}

// Publisher delivers events to a sink. Publish must not block the request
// path on broker availability; implementations buffer or drop instead.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher discards all events. Used when Kafka is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// MemoryPublisher records events in memory for tests.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Publish(_ context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	p.events = append(p.events, event)
	return nil
}

func (p *MemoryPublisher) Close() error { return nil }

// Events returns a copy of everything published so far.
func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}
