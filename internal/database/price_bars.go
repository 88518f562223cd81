package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/denizk/portfolio-analytics/internal/models"
)

// CreatePriceBar upserts a closing price for (asset, date).
func (db *DB) CreatePriceBar(ctx context.Context, b *models.PriceBar) error {
	query := `
		INSERT INTO price_bars (asset_id, date, close, currency, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (asset_id, date) DO UPDATE SET
			close = EXCLUDED.close,
			currency = EXCLUDED.currency
		RETURNING id
	`
	err := db.conn.QueryRowContext(ctx, query,
		b.AssetID, b.Date, b.Close, b.Currency, time.Now(),
	).Scan(&b.ID)

	if err != nil {
		return fmt.Errorf("failed to create price bar: %w", err)
	}
	return nil
}

// CreatePriceBarBatch upserts multiple price bars in one transaction.
func (db *DB) CreatePriceBarBatch(ctx context.Context, bars []*models.PriceBar) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO price_bars (asset_id, date, close, currency, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (asset_id, date) DO UPDATE SET
			close = EXCLUDED.close,
			currency = EXCLUDED.currency
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, b.AssetID, b.Date, b.Close, b.Currency, now); err != nil {
			return fmt.Errorf("failed to insert price bar for asset %d: %w", b.AssetID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// PriceBarOn retrieves the bar for an asset on exactly that date.
// Returns (nil, nil) when no bar exists.
func (db *DB) PriceBarOn(ctx context.Context, assetID int, on time.Time) (*models.PriceBar, error) {
	query := `
		SELECT id, asset_id, date, close, currency, created_at
		FROM price_bars
		WHERE asset_id = $1 AND date = $2
	`
	var b models.PriceBar
	err := db.conn.QueryRowContext(ctx, query, assetID, on).Scan(
		&b.ID, &b.AssetID, &b.Date, &b.Close, &b.Currency, &b.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get price bar: %w", err)
	}
	return &b, nil
}

// LatestPriceBarOnOrBefore retrieves the most recent bar with
// date <= on. Returns (nil, nil) when the asset has no bars yet.
func (db *DB) LatestPriceBarOnOrBefore(ctx context.Context, assetID int, on time.Time) (*models.PriceBar, error) {
	query := `
		SELECT id, asset_id, date, close, currency, created_at
		FROM price_bars
		WHERE asset_id = $1 AND date <= $2
		ORDER BY date DESC
		LIMIT 1
	`
	var b models.PriceBar
	err := db.conn.QueryRowContext(ctx, query, assetID, on).Scan(
		&b.ID, &b.AssetID, &b.Date, &b.Close, &b.Currency, &b.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest price bar: %w", err)
	}
	return &b, nil
}

// PriceBarRange retrieves an asset's bars within [start, end], ordered
// by date ascending.
func (db *DB) PriceBarRange(ctx context.Context, assetID int, start, end time.Time) ([]*models.PriceBar, error) {
	query := `
		SELECT id, asset_id, date, close, currency, created_at
		FROM price_bars
		WHERE asset_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`
	rows, err := db.conn.QueryContext(ctx, query, assetID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get price bar range: %w", err)
	}
	defer rows.Close()

	var bars []*models.PriceBar
	for rows.Next() {
		var b models.PriceBar
		if err := rows.Scan(&b.ID, &b.AssetID, &b.Date, &b.Close, &b.Currency, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price bar: %w", err)
		}
		bars = append(bars, &b)
	}
	return bars, rows.Err()
}

// DeletePriceBarsOlderThan removes bars older than the given date.
func (db *DB) DeletePriceBarsOlderThan(ctx context.Context, date time.Time) (int64, error) {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM price_bars WHERE date < $1`, date)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old price bars: %w", err)
	}
	return result.RowsAffected()
}
