// Package kafka publishes article events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/mcpress/mcpress/pkg/eventstream"
)

// Publisher implements eventstream.Publisher on a kafka-go writer.
// Messages are keyed by article URL so updates to the same article land on
// the same partition in order.
type Publisher struct {
	writer *kafka.Writer
	logger *zap.Logger

	mu     sync.Mutex
	closed bool
}

// Config holds configuration for the Kafka publisher.
type Config struct {
	// Brokers is the list of broker addresses.
	Brokers []string

	// Topic is the destination topic.
	Topic string
}

// NewPublisher creates a Kafka-backed article event publisher.
func NewPublisher(c Config, logger *zap.Logger) (*Publisher, error) {
	if len(c.Brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}
	if c.Topic == "" {
		return nil, fmt.Errorf("kafka topic cannot be empty")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(c.Brokers...),
		Topic:        c.Topic,
		Compression:  kafka.Gzip,
		RequiredAcks: kafka.RequireAll,
	}

	logger.Info("kafka event publisher initialized",
		zap.Strings("brokers", c.Brokers),
		zap.String("topic", c.Topic),
	)

	return &Publisher{
		writer: writer,
		logger: logger,
	}, nil
}

// PublishArticleSaved sends the event to the configured topic.
func (p *Publisher) PublishArticleSaved(ctx context.Context, event *eventstream.ArticleSavedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return fmt.Errorf("publisher is closed")
	}
	p.mu.Unlock()

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Article.URL),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}

	p.logger.Debug("published article event",
		zap.String("event_id", event.EventID),
		zap.String("url", event.Article.URL),
	)

	return nil
}

// Close closes the underlying writer.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.writer.Close()
}

var _ eventstream.Publisher = (*Publisher)(nil)
