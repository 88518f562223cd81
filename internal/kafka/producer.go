package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/denizk/portfolio-analytics/internal/models"
)

// Writer abstracts the Kafka writer for testing.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes fetch-request events for missing market data. The
// analytics engine never publishes; callers do after an unavailable
// result.
type Producer struct {
	writer Writer
	topic  string
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// NewProducerWithWriter creates a producer over an existing writer.
func NewProducerWithWriter(writer Writer, topic string) *Producer {
	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishPriceFetchRequested asks the external fetcher to backfill a
// price bar.
func (p *Producer) PublishPriceFetchRequested(ctx context.Context, symbol, exchange string, date time.Time) error {
	event := models.FetchRequestEvent{
		EventType: models.EventTypePriceFetchRequested,
		Symbol:    symbol,
		Exchange:  exchange,
		Date:      date.Format("2006-01-02"),
		Timestamp: time.Now(),
	}
	return p.publish(ctx, symbol, event)
}

// PublishRateFetchRequested asks the external fetcher to backfill an
// exchange rate.
func (p *Producer) PublishRateFetchRequested(ctx context.Context, from, to string, date time.Time) error {
	event := models.FetchRequestEvent{
		EventType:    models.EventTypeRateFetchRequested,
		FromCurrency: from,
		ToCurrency:   to,
		Date:         date.Format("2006-01-02"),
		Timestamp:    time.Now(),
	}
	return p.publish(ctx, from+to, event)
}

func (p *Producer) publish(ctx context.Context, key string, event models.FetchRequestEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}
