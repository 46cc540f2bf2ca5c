package repository

import (
	"context"
	"errors"
	"fmt"

	"coinflip/database"
	"coinflip/domain/entities"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WagerRepository implements the WagerRepository interface
type WagerRepository struct {
	q          Queryable
	treasuryID int64
}

// NewWagerRepository creates a new wager repository
func NewWagerRepository(db *database.DB, treasuryID int64) *WagerRepository {
	return &WagerRepository{q: db.Pool, treasuryID: treasuryID}
}

// NewWagerRepositoryScoped creates a new wager repository with a transaction and treasury scope
func NewWagerRepositoryScoped(tx Queryable, treasuryID int64) *WagerRepository {
	return &WagerRepository{
		q:          tx,
		treasuryID: treasuryID,
	}
}

const wagerColumns = `
	id, treasury_id, player_identity, guess, player_seed, player_stake, total_stake,
	fee_rate_bp, fee_basis, discounted, verification_key, created_epoch, status,
	created_at, settled_at`

// Create inserts a new open wager
func (r *WagerRepository) Create(ctx context.Context, wager *entities.Wager) error {
	query := `
		INSERT INTO wagers (
			id, treasury_id, player_identity, guess, player_seed, player_stake, total_stake,
			fee_rate_bp, fee_basis, discounted, verification_key, created_epoch, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at
	`

	seed := wager.PlayerSeed
	if seed == nil {
		seed = []byte{}
	}

	err := r.q.QueryRow(ctx, query,
		wager.ID,
		r.treasuryID,
		wager.PlayerIdentity,
		int16(wager.Guess),
		seed,
		wager.PlayerStake,
		wager.TotalStake,
		wager.FeeRateBP,
		wager.FeeBasis,
		wager.Discounted,
		wager.VerificationKey,
		wager.CreatedEpoch,
		wager.Status,
	).Scan(&wager.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create wager %s: %w", wager.ID, err)
	}

	wager.TreasuryID = r.treasuryID
	return nil
}

// GetByID retrieves a wager, returning nil if not found
func (r *WagerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Wager, error) {
	query := `SELECT` + wagerColumns + ` FROM wagers WHERE id = $1 AND treasury_id = $2`
	return r.getOne(ctx, query, id)
}

// GetByIDForUpdate retrieves a wager and locks its row until the transaction ends
func (r *WagerRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.Wager, error) {
	query := `SELECT` + wagerColumns + ` FROM wagers WHERE id = $1 AND treasury_id = $2 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

func (r *WagerRepository) getOne(ctx context.Context, query string, id uuid.UUID) (*entities.Wager, error) {
	wager, err := scanWager(r.q.QueryRow(ctx, query, id, r.treasuryID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wager %s: %w", id, err)
	}
	return wager, nil
}

// Settle performs the compare-and-swap that ends a wager. The row must still be
// open and still hold expectedStake; otherwise nothing changes.
func (r *WagerRepository) Settle(ctx context.Context, id uuid.UUID, status entities.WagerStatus, expectedStake int64) error {
	if !status.IsTerminal() {
		return fmt.Errorf("cannot settle wager %s into non-terminal status %s", id, status)
	}

	query := `
		UPDATE wagers
		SET status = $1, total_stake = 0, settled_at = NOW()
		WHERE id = $2 AND treasury_id = $3 AND status = 'open' AND total_stake = $4
	`

	result, err := r.q.Exec(ctx, query, status, id, r.treasuryID, expectedStake)
	if err != nil {
		return fmt.Errorf("failed to settle wager %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return entities.ErrAlreadySettled
	}
	return nil
}

// ListOpenForKey returns open wagers snapshotted under verificationKey, oldest first
func (r *WagerRepository) ListOpenForKey(ctx context.Context, verificationKey []byte, limit int) ([]*entities.Wager, error) {
	query := `SELECT` + wagerColumns + `
		FROM wagers
		WHERE treasury_id = $1 AND status = 'open' AND verification_key = $2
		ORDER BY created_at ASC
		LIMIT $3`
	return r.list(ctx, query, r.treasuryID, verificationKey, limit)
}

// ListOpenByPlayer returns a player's open wagers, newest first
func (r *WagerRepository) ListOpenByPlayer(ctx context.Context, player string) ([]*entities.Wager, error) {
	query := `SELECT` + wagerColumns + `
		FROM wagers
		WHERE treasury_id = $1 AND player_identity = $2 AND status = 'open'
		ORDER BY created_at DESC`
	return r.list(ctx, query, r.treasuryID, player)
}

// ListForfeitable returns open wagers created at or before maxCreatedEpoch
func (r *WagerRepository) ListForfeitable(ctx context.Context, maxCreatedEpoch int64, limit int) ([]*entities.Wager, error) {
	query := `SELECT` + wagerColumns + `
		FROM wagers
		WHERE treasury_id = $1 AND status = 'open' AND created_epoch <= $2
		ORDER BY created_epoch ASC
		LIMIT $3`
	return r.list(ctx, query, r.treasuryID, maxCreatedEpoch, limit)
}

// SumOpenEscrow returns the stake currently held by open wagers
func (r *WagerRepository) SumOpenEscrow(ctx context.Context) (int64, error) {
	query := `SELECT COALESCE(SUM(total_stake), 0) FROM wagers WHERE treasury_id = $1 AND status = 'open'`

	var total int64
	if err := r.q.QueryRow(ctx, query, r.treasuryID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum open escrow: %w", err)
	}
	return total, nil
}

func (r *WagerRepository) list(ctx context.Context, query string, args ...any) ([]*entities.Wager, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query wagers: %w", err)
	}
	defer rows.Close()

	wagers := make([]*entities.Wager, 0)
	for rows.Next() {
		wager, err := scanWager(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wager: %w", err)
		}
		wagers = append(wagers, wager)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wagers: %w", err)
	}
	return wagers, nil
}

func scanWager(row pgx.Row) (*entities.Wager, error) {
	var w entities.Wager
	var guess int16
	err := row.Scan(
		&w.ID,
		&w.TreasuryID,
		&w.PlayerIdentity,
		&guess,
		&w.PlayerSeed,
		&w.PlayerStake,
		&w.TotalStake,
		&w.FeeRateBP,
		&w.FeeBasis,
		&w.Discounted,
		&w.VerificationKey,
		&w.CreatedEpoch,
		&w.Status,
		&w.CreatedAt,
		&w.SettledAt,
	)
	if err != nil {
		return nil, err
	}
	w.Guess = uint8(guess)
	return &w, nil
}
