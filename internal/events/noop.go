package events

import (
	"context"

	"go.uber.org/zap"
)

// NoopPublisher drops events. Used when no brokers are configured.
type NoopPublisher struct {
	log *zap.Logger
}

func NewNoopPublisher(log *zap.Logger) *NoopPublisher {
	return &NoopPublisher{log: log.Named("events.noop")}
}

func (p *NoopPublisher) Publish(_ context.Context, event Event) error {
	p.log.Debug("event dropped",
		zap.String("event_type", string(event.Type)),
		zap.String("work_order_id", event.WorkOrderID),
	)
	return nil
}

func (p *NoopPublisher) Close() error { return nil }
