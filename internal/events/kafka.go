package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const publishRetries = 3

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer     messageWriter
	log        *zap.Logger
	newBackOff func() backoff.BackOff
}

func NewKafkaPublisher(brokers []string, topic string, log *zap.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}
	return newKafkaPublisher(writer, log, func() backoff.BackOff {
		return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), publishRetries)
	})
}

func newKafkaPublisher(w messageWriter, log *zap.Logger, newBackOff func() backoff.BackOff) *KafkaPublisher {
	return &KafkaPublisher{
		writer:     w,
		log:        log.Named("events.kafka"),
		newBackOff: newBackOff,
	}
}

// Publish writes event keyed by work order, so events of one order stay on
// one partition in order.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.WorkOrderID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	policy := backoff.WithContext(p.newBackOff(), ctx)
	err = backoff.RetryNotify(func() error {
		return p.writer.WriteMessages(ctx, msg)
	}, policy, func(err error, next time.Duration) {
		p.log.Warn("publish retry",
			zap.String("event_type", string(event.Type)),
			zap.Duration("next", next),
			zap.Error(err),
		)
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}

	p.log.Debug("event published",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("work_order_id", event.WorkOrderID),
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
