package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/poolside-labs/darksave/internal/domain"
)

// EstimateStore implements domain.EstimateStore using PostgreSQL.
type EstimateStore struct {
	pool *pgxpool.Pool
}

// NewEstimateStore creates an EstimateStore backed by the given pool.
func NewEstimateStore(pool *pgxpool.Pool) *EstimateStore {
	return &EstimateStore{pool: pool}
}

// Insert records a completed simulation.
func (s *EstimateStore) Insert(ctx context.Context, rec domain.SavingsRecord) error {
	const query = `
		INSERT INTO savings_estimates (
			id, base_mint, base_ticker, quote_ticker, exchange, direction,
			requested_amount, normalized_amount, base_filled, quote_filled,
			midpoint_price, venue_fee_rate, midpoint_fee_rate,
			savings, savings_bps, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := s.pool.Exec(ctx, query,
		rec.ID, rec.BaseMint, rec.BaseTicker, rec.QuoteTicker, rec.Exchange,
		string(rec.Direction), rec.RequestedAmount, rec.NormalizedAmount,
		rec.BaseFilled, rec.QuoteFilled, rec.MidpointPrice,
		rec.VenueFeeRate, rec.MidpointFeeRate,
		rec.Savings, rec.SavingsBps, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert estimate %s: %w", rec.ID, err)
	}
	return nil
}

// ListRecent returns the most recent estimates, newest first.
func (s *EstimateStore) ListRecent(ctx context.Context, limit int) ([]domain.SavingsRecord, error) {
	const query = `
		SELECT id, base_mint, base_ticker, quote_ticker, exchange, direction,
		       requested_amount, normalized_amount, base_filled, quote_filled,
		       midpoint_price, venue_fee_rate, midpoint_fee_rate,
		       savings, savings_bps, created_at
		FROM savings_estimates
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent estimates: %w", err)
	}
	defer rows.Close()

	var records []domain.SavingsRecord
	for rows.Next() {
		var rec domain.SavingsRecord
		var direction string
		if err := rows.Scan(
			&rec.ID, &rec.BaseMint, &rec.BaseTicker, &rec.QuoteTicker,
			&rec.Exchange, &direction, &rec.RequestedAmount,
			&rec.NormalizedAmount, &rec.BaseFilled, &rec.QuoteFilled,
			&rec.MidpointPrice, &rec.VenueFeeRate, &rec.MidpointFeeRate,
			&rec.Savings, &rec.SavingsBps, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan estimate: %w", err)
		}
		rec.Direction = domain.Direction(direction)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate estimates: %w", err)
	}
	return records, nil
}

// Compile-time interface check.
var _ domain.EstimateStore = (*EstimateStore)(nil)
