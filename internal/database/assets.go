package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/denizk/portfolio-analytics/internal/models"
)

// CreateAsset upserts an asset keyed by (symbol, exchange).
func (db *DB) CreateAsset(ctx context.Context, a *models.Asset) error {
	query := `
		INSERT INTO assets (symbol, name, asset_class, currency, exchange, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (symbol, exchange) DO UPDATE SET
			name = EXCLUDED.name,
			asset_class = EXCLUDED.asset_class,
			currency = EXCLUDED.currency
		RETURNING id
	`
	err := db.conn.QueryRowContext(ctx, query,
		a.Symbol, a.Name, a.Class, a.Currency, a.Exchange, time.Now(),
	).Scan(&a.ID)

	if err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}
	return nil
}

// GetAsset retrieves an asset by ID. Returns (nil, nil) when it does
// not exist.
func (db *DB) GetAsset(ctx context.Context, id int) (*models.Asset, error) {
	query := `
		SELECT id, symbol, name, asset_class, currency, exchange, created_at
		FROM assets
		WHERE id = $1
	`
	var a models.Asset
	err := db.conn.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.Symbol, &a.Name, &a.Class, &a.Currency, &a.Exchange, &a.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	return &a, nil
}

// GetAssetBySymbol retrieves an asset by its symbol within an exchange.
// Returns (nil, nil) when it does not exist.
func (db *DB) GetAssetBySymbol(ctx context.Context, symbol, exchange string) (*models.Asset, error) {
	query := `
		SELECT id, symbol, name, asset_class, currency, exchange, created_at
		FROM assets
		WHERE symbol = $1 AND exchange = $2
	`
	var a models.Asset
	err := db.conn.QueryRowContext(ctx, query, symbol, exchange).Scan(
		&a.ID, &a.Symbol, &a.Name, &a.Class, &a.Currency, &a.Exchange, &a.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset by symbol: %w", err)
	}
	return &a, nil
}

// GetAllAssets retrieves all assets ordered by symbol.
func (db *DB) GetAllAssets(ctx context.Context) ([]*models.Asset, error) {
	query := `
		SELECT id, symbol, name, asset_class, currency, exchange, created_at
		FROM assets
		ORDER BY symbol ASC
	`
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get assets: %w", err)
	}
	defer rows.Close()

	var assets []*models.Asset
	for rows.Next() {
		var a models.Asset
		if err := rows.Scan(&a.ID, &a.Symbol, &a.Name, &a.Class, &a.Currency, &a.Exchange, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, &a)
	}
	return assets, rows.Err()
}
