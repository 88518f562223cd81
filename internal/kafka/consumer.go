package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/denizk/portfolio-analytics/internal/models"
)

// MarketDataRepository defines the database operations the consumer
// needs to persist incoming market data.
type MarketDataRepository interface {
	GetAssetBySymbol(ctx context.Context, symbol, exchange string) (*models.Asset, error)
	CreatePriceBar(ctx context.Context, b *models.PriceBar) error
	CreateFxRate(ctx context.Context, r *models.FxRate) error
}

// Reader abstracts the Kafka reader for testing.
type Reader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer persists price bars and exchange rates published by the
// external market-data fetcher. Duplicate deliveries are absorbed by
// the (asset, date) and (pair, date) upserts.
type Consumer struct {
	reader Reader
	repo   MarketDataRepository
	topic  string
}

// NewConsumer creates a Kafka consumer for market data events.
func NewConsumer(brokers []string, topic, groupID string, repo MarketDataRepository) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	return &Consumer{
		reader: reader,
		repo:   repo,
		topic:  topic,
	}
}

// NewConsumerWithReader creates a consumer over a custom reader. Used
// in tests.
func NewConsumerWithReader(reader Reader, topic string, repo MarketDataRepository) *Consumer {
	return &Consumer{reader: reader, repo: repo, topic: topic}
}

// Start begins consuming messages from Kafka
func (c *Consumer) Start(ctx context.Context) error {
	log.Printf("Starting market data consumer for topic: %s", c.topic)

	for {
		select {
		case <-ctx.Done():
			log.Println("Market data consumer shutting down...")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil // Context cancelled, normal shutdown
				}
				log.Printf("Error reading message: %v", err)
				continue
			}

			if err := c.processMessage(ctx, msg); err != nil {
				log.Printf("Error processing message: %v", err)
				// Continue processing other messages
			}
		}
	}
}

// processMessage handles a single Kafka message
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var event models.MarketDataEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal market data event: %w", err)
	}

	switch event.EventType {
	case models.EventTypePriceRecorded:
		return c.handlePrice(ctx, event)
	case models.EventTypeRateRecorded:
		return c.handleRate(ctx, event)
	default:
		log.Printf("Ignoring event type: %s", event.EventType)
		return nil
	}
}

func (c *Consumer) handlePrice(ctx context.Context, event models.MarketDataEvent) error {
	payload := event.Price
	if payload == nil {
		return fmt.Errorf("price event without price payload")
	}

	date, err := time.Parse("2006-01-02", payload.Date)
	if err != nil {
		return fmt.Errorf("invalid price date %s: %w", payload.Date, err)
	}
	close, err := decimal.NewFromString(payload.Close)
	if err != nil {
		return fmt.Errorf("invalid close %s: %w", payload.Close, err)
	}

	asset, err := c.repo.GetAssetBySymbol(ctx, payload.Symbol, payload.Exchange)
	if err != nil {
		return fmt.Errorf("failed to look up asset %s: %w", payload.Symbol, err)
	}
	if asset == nil {
		return fmt.Errorf("unknown asset %s on %s", payload.Symbol, payload.Exchange)
	}

	bar := &models.PriceBar{
		AssetID:  asset.ID,
		Date:     date,
		Close:    close,
		Currency: payload.Currency,
	}
	if err := c.repo.CreatePriceBar(ctx, bar); err != nil {
		return fmt.Errorf("failed to save price bar: %w", err)
	}

	log.Printf("Saved price bar: %s %s @ %s %s",
		payload.Symbol, payload.Date, close, payload.Currency)
	return nil
}

func (c *Consumer) handleRate(ctx context.Context, event models.MarketDataEvent) error {
	payload := event.Rate
	if payload == nil {
		return fmt.Errorf("rate event without rate payload")
	}

	date, err := time.Parse("2006-01-02", payload.Date)
	if err != nil {
		return fmt.Errorf("invalid rate date %s: %w", payload.Date, err)
	}
	rate, err := decimal.NewFromString(payload.Rate)
	if err != nil {
		return fmt.Errorf("invalid rate %s: %w", payload.Rate, err)
	}
	if rate.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("rate must be positive, got %s", payload.Rate)
	}

	fxRate := &models.FxRate{
		FromCurrency: payload.FromCurrency,
		ToCurrency:   payload.ToCurrency,
		Date:         date,
		Rate:         rate,
	}
	if err := c.repo.CreateFxRate(ctx, fxRate); err != nil {
		return fmt.Errorf("failed to save fx rate: %w", err)
	}

	log.Printf("Saved fx rate: %s/%s %s @ %s",
		payload.FromCurrency, payload.ToCurrency, payload.Date, rate)
	return nil
}

// Close closes the Kafka consumer
func (c *Consumer) Close() error {
	return c.reader.Close()
}
