package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/denizk/portfolio-analytics/internal/models"
)

const positionColumns = `
	p.id, p.portfolio_id, p.quantity, p.average_cost, p.purchase_currency,
	p.purchase_date, p.status, p.created_at, p.updated_at,
	a.id, a.symbol, a.name, a.asset_class, a.currency, a.exchange, a.created_at
`

// CreatePosition inserts a new position after validating the
// data-entry invariants.
func (db *DB) CreatePosition(ctx context.Context, p *models.Position) error {
	if err := p.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO positions (portfolio_id, asset_id, quantity, average_cost,
			purchase_currency, purchase_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING id
	`
	err := db.conn.QueryRowContext(ctx, query,
		p.PortfolioID, p.Asset.ID, p.Quantity, p.AverageCost,
		p.PurchaseCurrency, p.PurchaseDate, p.Status, time.Now(),
	).Scan(&p.ID)

	if err != nil {
		return fmt.Errorf("failed to create position: %w", err)
	}
	return nil
}

// GetPosition retrieves a position with its asset. Returns (nil, nil)
// when it does not exist.
func (db *DB) GetPosition(ctx context.Context, id int) (*models.Position, error) {
	query := `
		SELECT ` + positionColumns + `
		FROM positions p
		JOIN assets a ON a.id = p.asset_id
		WHERE p.id = $1
	`
	p, err := scanPosition(db.conn.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position: %w", err)
	}
	return p, nil
}

// GetPositionsByPortfolio retrieves all of a portfolio's positions with
// their assets, ordered by ID.
func (db *DB) GetPositionsByPortfolio(ctx context.Context, portfolioID int) ([]*models.Position, error) {
	query := `
		SELECT ` + positionColumns + `
		FROM positions p
		JOIN assets a ON a.id = p.asset_id
		WHERE p.portfolio_id = $1
		ORDER BY p.id ASC
	`
	return db.queryPositions(ctx, query, portfolioID)
}

// GetOpenPositionsByPortfolio retrieves the portfolio's open positions
// with their assets, ordered by ID.
func (db *DB) GetOpenPositionsByPortfolio(ctx context.Context, portfolioID int) ([]*models.Position, error) {
	query := `
		SELECT ` + positionColumns + `
		FROM positions p
		JOIN assets a ON a.id = p.asset_id
		WHERE p.portfolio_id = $1 AND p.status = 'open'
		ORDER BY p.id ASC
	`
	return db.queryPositions(ctx, query, portfolioID)
}

// ClosePosition marks a position closed.
func (db *DB) ClosePosition(ctx context.Context, id int) error {
	query := `UPDATE positions SET status = 'closed', updated_at = $2 WHERE id = $1`
	result, err := db.conn.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to close position: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("position not found: %d", id)
	}
	return nil
}

func (db *DB) queryPositions(ctx context.Context, query string, args ...interface{}) ([]*models.Position, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get positions: %w", err)
	}
	defer rows.Close()

	var positions []*models.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPosition(row rowScanner) (*models.Position, error) {
	var p models.Position
	err := row.Scan(
		&p.ID, &p.PortfolioID, &p.Quantity, &p.AverageCost, &p.PurchaseCurrency,
		&p.PurchaseDate, &p.Status, &p.CreatedAt, &p.UpdatedAt,
		&p.Asset.ID, &p.Asset.Symbol, &p.Asset.Name, &p.Asset.Class,
		&p.Asset.Currency, &p.Asset.Exchange, &p.Asset.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
