package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/denizk/portfolio-analytics/internal/models"
)

// CreatePortfolio inserts a new portfolio.
func (db *DB) CreatePortfolio(ctx context.Context, p *models.Portfolio) error {
	query := `
		INSERT INTO portfolios (owner, name, base_currency, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := db.conn.QueryRowContext(ctx, query,
		p.Owner, p.Name, p.BaseCurrency, time.Now(),
	).Scan(&p.ID)

	if err != nil {
		return fmt.Errorf("failed to create portfolio: %w", err)
	}
	return nil
}

// GetPortfolio retrieves a portfolio by ID. Returns (nil, nil) when it
// does not exist.
func (db *DB) GetPortfolio(ctx context.Context, id int) (*models.Portfolio, error) {
	query := `
		SELECT id, owner, name, base_currency, created_at
		FROM portfolios
		WHERE id = $1
	`
	var p models.Portfolio
	err := db.conn.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Owner, &p.Name, &p.BaseCurrency, &p.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}
	return &p, nil
}

// GetPortfoliosByOwner retrieves all portfolios for an owner.
func (db *DB) GetPortfoliosByOwner(ctx context.Context, owner string) ([]*models.Portfolio, error) {
	query := `
		SELECT id, owner, name, base_currency, created_at
		FROM portfolios
		WHERE owner = $1
		ORDER BY id ASC
	`
	rows, err := db.conn.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolios: %w", err)
	}
	defer rows.Close()

	var portfolios []*models.Portfolio
	for rows.Next() {
		var p models.Portfolio
		if err := rows.Scan(&p.ID, &p.Owner, &p.Name, &p.BaseCurrency, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio: %w", err)
		}
		portfolios = append(portfolios, &p)
	}
	return portfolios, rows.Err()
}
