package repository

import (
	"context"
	"errors"
	"fmt"

	"coinflip/database"

	"github.com/jackc/pgx/v5"
)

// EpochRepository implements the EpochRepository interface
type EpochRepository struct {
	q          Queryable
	treasuryID int64
}

// NewEpochRepository creates a new epoch repository
func NewEpochRepository(db *database.DB, treasuryID int64) *EpochRepository {
	return &EpochRepository{q: db.Pool, treasuryID: treasuryID}
}

// NewEpochRepositoryScoped creates a new epoch repository with a transaction and treasury scope
func NewEpochRepositoryScoped(tx Queryable, treasuryID int64) *EpochRepository {
	return &EpochRepository{
		q:          tx,
		treasuryID: treasuryID,
	}
}

// CurrentEpoch returns the current epoch, zero before the first advance
func (r *EpochRepository) CurrentEpoch(ctx context.Context) (int64, error) {
	query := `SELECT current_epoch FROM epochs WHERE treasury_id = $1`

	var epoch int64
	err := r.q.QueryRow(ctx, query, r.treasuryID).Scan(&epoch)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get epoch for treasury %d: %w", r.treasuryID, err)
	}
	return epoch, nil
}

// Advance moves the clock forward by steps and returns the new epoch
func (r *EpochRepository) Advance(ctx context.Context, steps int64) (int64, error) {
	if steps <= 0 {
		return 0, fmt.Errorf("steps must be positive")
	}

	query := `
		INSERT INTO epochs (treasury_id, current_epoch, advanced_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (treasury_id)
		DO UPDATE SET current_epoch = epochs.current_epoch + EXCLUDED.current_epoch, advanced_at = NOW()
		RETURNING current_epoch
	`

	var epoch int64
	if err := r.q.QueryRow(ctx, query, r.treasuryID, steps).Scan(&epoch); err != nil {
		return 0, fmt.Errorf("failed to advance epoch for treasury %d: %w", r.treasuryID, err)
	}
	return epoch, nil
}
