package events

import (
	"context"
	"log/slog"

	"agentcred/internal/platform/metrics"
)

// Worker consumes persisted events from the publisher's inbox and delivers
// them to external sinks. Sink failures are logged and counted but never
// propagate back to ledger operations.
type Worker struct {
	inbox   <-chan Event
	sinks   []Sink
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewWorker(inbox <-chan Event, sinks []Sink, logger *slog.Logger, m *metrics.Metrics) *Worker {
	return &Worker{inbox: inbox, sinks: sinks, logger: logger, metrics: m}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			for _, sink := range w.sinks {
				if err := sink.Deliver(ctx, event); err != nil {
					if w.metrics != nil {
						w.metrics.EventSinkFailures.Inc()
					}
					w.logger.ErrorContext(ctx, "event sink delivery failed",
						"event_id", event.ID,
						"type", event.Type,
						"error", err,
					)
				}
			}
		}
	}
}
