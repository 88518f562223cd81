package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/denizk/portfolio-analytics/internal/models"
)

// CreateFxRate upserts an exchange rate for (from, to, date).
func (db *DB) CreateFxRate(ctx context.Context, r *models.FxRate) error {
	query := `
		INSERT INTO fx_rates (from_currency, to_currency, date, rate, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (from_currency, to_currency, date) DO UPDATE SET
			rate = EXCLUDED.rate
		RETURNING id
	`
	err := db.conn.QueryRowContext(ctx, query,
		r.FromCurrency, r.ToCurrency, r.Date, r.Rate, time.Now(),
	).Scan(&r.ID)

	if err != nil {
		return fmt.Errorf("failed to create fx rate: %w", err)
	}
	return nil
}

// RateOn retrieves the rate for (from, to) on exactly that date.
// Returns (nil, nil) when no rate exists.
func (db *DB) RateOn(ctx context.Context, from, to string, on time.Time) (*models.FxRate, error) {
	query := `
		SELECT id, from_currency, to_currency, date, rate, created_at
		FROM fx_rates
		WHERE from_currency = $1 AND to_currency = $2 AND date = $3
	`
	var r models.FxRate
	err := db.conn.QueryRowContext(ctx, query, from, to, on).Scan(
		&r.ID, &r.FromCurrency, &r.ToCurrency, &r.Date, &r.Rate, &r.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fx rate: %w", err)
	}
	return &r, nil
}

// LatestRateWithin retrieves the most recent rate for (from, to) with
// date in [on - windowDays, on]. Returns (nil, nil) when none exists.
func (db *DB) LatestRateWithin(ctx context.Context, from, to string, on time.Time, windowDays int) (*models.FxRate, error) {
	query := `
		SELECT id, from_currency, to_currency, date, rate, created_at
		FROM fx_rates
		WHERE from_currency = $1 AND to_currency = $2
			AND date <= $3 AND date >= $4
		ORDER BY date DESC
		LIMIT 1
	`
	floor := on.AddDate(0, 0, -windowDays)
	var r models.FxRate
	err := db.conn.QueryRowContext(ctx, query, from, to, on, floor).Scan(
		&r.ID, &r.FromCurrency, &r.ToCurrency, &r.Date, &r.Rate, &r.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fx rate within window: %w", err)
	}
	return &r, nil
}

// DeleteFxRatesOlderThan removes rates older than the given date.
func (db *DB) DeleteFxRatesOlderThan(ctx context.Context, date time.Time) (int64, error) {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM fx_rates WHERE date < $1`, date)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old fx rates: %w", err)
	}
	return result.RowsAffected()
}
