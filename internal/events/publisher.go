package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"agentcred/internal/platform/metrics"
)

// timeNow is swapped in tests that pin timestamps.
var timeNow = time.Now

// Store is the append-only persistence for the event log. Appends are
// fail-closed: a ledger mutation is not reported successful until its event
// is durable in the configured store.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListRecent(ctx context.Context, limit int) ([]Event, error)
	ListByAgent(ctx context.Context, agentID int64) ([]Event, error)
}

// Sink receives events after they are persisted, best-effort. Kafka delivery
// lives behind this interface so the ledgers never block on a broker.
type Sink interface {
	Deliver(ctx context.Context, event Event) error
}

// Publisher persists ledger events and hands them to the background worker
// for sink fan-out. It assigns the event ID, which callers surface as the
// operation's transaction identifier.
type Publisher struct {
	store   Store
	inbox   chan Event
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Publisher) { p.metrics = m }
}

// WithInboxSize overrides the sink fan-out buffer size.
func WithInboxSize(n int) Option {
	return func(p *Publisher) { p.inbox = make(chan Event, n) }
}

func NewPublisher(store Store, logger *slog.Logger, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		inbox:  make(chan Event, 256),
		logger: logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit persists the event and returns its ID. Sink delivery is asynchronous;
// a full inbox drops the sink copy rather than blocking the ledger, the
// durable store copy is already written at that point.
func (p *Publisher) Emit(ctx context.Context, event Event) (string, error) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = timeNow()
	}
	if err := p.store.Append(ctx, event); err != nil {
		return "", err
	}
	if p.metrics != nil {
		p.metrics.EventsPublished.WithLabelValues(string(event.Type)).Inc()
	}

	select {
	case p.inbox <- event:
	default:
		p.logger.Warn("event inbox full, sink copy dropped",
			"event_id", event.ID,
			"type", event.Type,
		)
	}
	return event.ID, nil
}

// Inbox exposes the fan-out channel for the worker.
func (p *Publisher) Inbox() <-chan Event { return p.inbox }

// ListRecent returns the most recent events, newest last.
func (p *Publisher) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	return p.store.ListRecent(ctx, limit)
}

// ListByAgent returns all events touching the given agent.
func (p *Publisher) ListByAgent(ctx context.Context, agentID int64) ([]Event, error) {
	return p.store.ListByAgent(ctx, agentID)
}
