// Package cache provides an explicit read-through Redis cache in front
// of the rate store. The engine itself never caches; callers opt in by
// wrapping the store before constructing the engine.
package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/denizk/portfolio-analytics/internal/engine"
	"github.com/denizk/portfolio-analytics/internal/models"
)

// Rates decorates an engine.RateStore with a Redis cache for exact
// date lookups. Window lookups pass through uncached since their
// result changes as new rates arrive.
type Rates struct {
	store  engine.RateStore
	client *redis.Client
	ttl    time.Duration
}

// NewRates creates a caching rate store with the given TTL.
func NewRates(store engine.RateStore, client *redis.Client, ttl time.Duration) *Rates {
	return &Rates{store: store, client: client, ttl: ttl}
}

// RateOn returns the cached rate for (from, to, on) or falls through
// to the underlying store. Cache failures degrade to store lookups;
// absent rates are never cached.
func (c *Rates) RateOn(ctx context.Context, from, to string, on time.Time) (*models.FxRate, error) {
	key := rateKey(from, to, on)

	if cached, err := c.client.Get(ctx, key).Result(); err == nil {
		rate, perr := decimal.NewFromString(cached)
		if perr == nil {
			return &models.FxRate{
				FromCurrency: from,
				ToCurrency:   to,
				Date:         on,
				Rate:         rate,
			}, nil
		}
		log.Printf("Dropping unparseable cached rate %s: %v", key, perr)
	} else if err != redis.Nil {
		log.Printf("Rate cache read failed for %s: %v", key, err)
	}

	rate, err := c.store.RateOn(ctx, from, to, on)
	if err != nil || rate == nil {
		return rate, err
	}

	if err := c.client.Set(ctx, key, rate.Rate.String(), c.ttl).Err(); err != nil {
		log.Printf("Rate cache write failed for %s: %v", key, err)
	}
	return rate, nil
}

// LatestRateWithin delegates to the underlying store.
func (c *Rates) LatestRateWithin(ctx context.Context, from, to string, on time.Time, windowDays int) (*models.FxRate, error) {
	return c.store.LatestRateWithin(ctx, from, to, on, windowDays)
}

func rateKey(from, to string, on time.Time) string {
	return fmt.Sprintf("fx:%s:%s:%s", from, to, on.Format("2006-01-02"))
}
