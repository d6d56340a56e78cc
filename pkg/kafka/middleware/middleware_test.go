package kafka_middleware

import (
	"context"
	"errors"
	"testing"

	"rentabike/pkg/kafka"
	"rentabike/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
}

func TestMetrics_CountsOutcomes(t *testing.T) {
	m := NewMetrics()
	publish := m.ProducerMiddleware()
	consume := m.ConsumerMiddleware()
	msg := kafka.Message{Key: "bk-1", Headers: map[string]string{}}

	ok := func(ctx context.Context, msg kafka.Message) error { return nil }
	fail := func(ctx context.Context, msg kafka.Message) error { return errors.New("broker down") }

	_ = publish(context.Background(), msg, ok)
	_ = publish(context.Background(), msg, ok)
	_ = publish(context.Background(), msg, fail)
	_ = consume(context.Background(), msg, ok)
	_ = consume(context.Background(), msg, fail)

	s := m.Snapshot()
	if s.Published != 2 || s.PublishFailed != 1 {
		t.Errorf("publish counts = %d/%d, want 2/1", s.Published, s.PublishFailed)
	}
	if s.Consumed != 1 || s.ConsumeFailed != 1 {
		t.Errorf("consume counts = %d/%d, want 1/1", s.Consumed, s.ConsumeFailed)
	}
}

func TestLoggingMiddleware_PassesErrorThrough(t *testing.T) {
	want := errors.New("smtp unavailable")
	mw := LoggingConsumerMiddleware(testLogger())

	err := mw(context.Background(), kafka.Message{Headers: map[string]string{}}, func(ctx context.Context, msg kafka.Message) error {
		return want
	})
	if !errors.Is(err, want) {
		t.Errorf("expected handler error to be returned, got %v", err)
	}

	pmw := LoggingProducerMiddleware(testLogger())
	if err := pmw(context.Background(), kafka.Message{Headers: map[string]string{}}, func(ctx context.Context, msg kafka.Message) error {
		return nil
	}); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}
