package repository

import (
	"context"
	"errors"
	"fmt"

	"coinflip/database"
	"coinflip/domain/entities"

	"github.com/jackc/pgx/v5"
)

// TreasuryRepository implements the TreasuryRepository interface
type TreasuryRepository struct {
	q          Queryable
	treasuryID int64
}

// NewTreasuryRepository creates a new treasury repository
func NewTreasuryRepository(db *database.DB, treasuryID int64) *TreasuryRepository {
	return &TreasuryRepository{q: db.Pool, treasuryID: treasuryID}
}

// NewTreasuryRepositoryScoped creates a new treasury repository with a transaction and treasury scope
func NewTreasuryRepositoryScoped(tx Queryable, treasuryID int64) *TreasuryRepository {
	return &TreasuryRepository{
		q:          tx,
		treasuryID: treasuryID,
	}
}

const treasuryColumns = `
	id, house_identity, verification_key, available_balance, accumulated_fees,
	min_stake, max_stake, base_fee_rate_bp, discount_fee_rate_bp, fee_basis,
	created_at, updated_at`

// Get retrieves the treasury, returning nil if it has not been initialized
func (r *TreasuryRepository) Get(ctx context.Context) (*entities.HouseTreasury, error) {
	query := `SELECT` + treasuryColumns + ` FROM house_treasuries WHERE id = $1`
	return r.scanTreasury(r.q.QueryRow(ctx, query, r.treasuryID))
}

// GetForUpdate retrieves the treasury and locks its row until the transaction ends
func (r *TreasuryRepository) GetForUpdate(ctx context.Context) (*entities.HouseTreasury, error) {
	query := `SELECT` + treasuryColumns + ` FROM house_treasuries WHERE id = $1 FOR UPDATE`
	return r.scanTreasury(r.q.QueryRow(ctx, query, r.treasuryID))
}

func (r *TreasuryRepository) scanTreasury(row pgx.Row) (*entities.HouseTreasury, error) {
	var t entities.HouseTreasury
	err := row.Scan(
		&t.ID,
		&t.HouseIdentity,
		&t.VerificationKey,
		&t.AvailableBalance,
		&t.AccumulatedFees,
		&t.MinStake,
		&t.MaxStake,
		&t.BaseFeeRateBP,
		&t.DiscountFeeRateBP,
		&t.FeeBasis,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get treasury %d: %w", r.treasuryID, err)
	}
	return &t, nil
}

// Create inserts the treasury row. A second call fails with ErrTreasuryAlreadyInitialized.
func (r *TreasuryRepository) Create(ctx context.Context, treasury *entities.HouseTreasury) error {
	query := `
		INSERT INTO house_treasuries (
			id, house_identity, verification_key, min_stake, max_stake,
			base_fee_rate_bp, discount_fee_rate_bp, fee_basis
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
		RETURNING available_balance, accumulated_fees, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		r.treasuryID,
		treasury.HouseIdentity,
		treasury.VerificationKey,
		treasury.MinStake,
		treasury.MaxStake,
		treasury.BaseFeeRateBP,
		treasury.DiscountFeeRateBP,
		treasury.FeeBasis,
	).Scan(
		&treasury.AvailableBalance,
		&treasury.AccumulatedFees,
		&treasury.CreatedAt,
		&treasury.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return entities.ErrTreasuryAlreadyInitialized
	}
	if err != nil {
		return fmt.Errorf("failed to create treasury %d: %w", r.treasuryID, err)
	}

	treasury.ID = r.treasuryID
	return nil
}

// Reserve debits the available pool only if it covers amount
func (r *TreasuryRepository) Reserve(ctx context.Context, amount int64) (int64, error) {
	query := `
		UPDATE house_treasuries
		SET available_balance = available_balance - $1, updated_at = NOW()
		WHERE id = $2 AND available_balance >= $1
		RETURNING available_balance
	`

	var balance int64
	err := r.q.QueryRow(ctx, query, amount, r.treasuryID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, entities.ErrInsufficientHouseBalance
	}
	if err != nil {
		return 0, fmt.Errorf("failed to reserve %d from treasury %d: %w", amount, r.treasuryID, err)
	}
	return balance, nil
}

// CreditAvailable adds amount to the available pool
func (r *TreasuryRepository) CreditAvailable(ctx context.Context, amount int64) (int64, error) {
	query := `
		UPDATE house_treasuries
		SET available_balance = available_balance + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING available_balance
	`
	return r.credit(ctx, query, amount)
}

// CreditFees adds amount to the fee pool
func (r *TreasuryRepository) CreditFees(ctx context.Context, amount int64) (int64, error) {
	query := `
		UPDATE house_treasuries
		SET accumulated_fees = accumulated_fees + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING accumulated_fees
	`
	return r.credit(ctx, query, amount)
}

func (r *TreasuryRepository) credit(ctx context.Context, query string, amount int64) (int64, error) {
	var balance int64
	err := r.q.QueryRow(ctx, query, amount, r.treasuryID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, entities.ErrTreasuryNotInitialized
	}
	if err != nil {
		return 0, fmt.Errorf("failed to credit treasury %d: %w", r.treasuryID, err)
	}
	return balance, nil
}

// DrainAvailable zeroes the available pool and returns what it held
func (r *TreasuryRepository) DrainAvailable(ctx context.Context) (int64, error) {
	query := `
		UPDATE house_treasuries t
		SET available_balance = 0, updated_at = NOW()
		FROM (SELECT id, available_balance FROM house_treasuries WHERE id = $1 FOR UPDATE) old
		WHERE t.id = old.id
		RETURNING old.available_balance
	`
	return r.drain(ctx, query)
}

// DrainFees zeroes the fee pool and returns what it held
func (r *TreasuryRepository) DrainFees(ctx context.Context) (int64, error) {
	query := `
		UPDATE house_treasuries t
		SET accumulated_fees = 0, updated_at = NOW()
		FROM (SELECT id, accumulated_fees FROM house_treasuries WHERE id = $1 FOR UPDATE) old
		WHERE t.id = old.id
		RETURNING old.accumulated_fees
	`
	return r.drain(ctx, query)
}

func (r *TreasuryRepository) drain(ctx context.Context, query string) (int64, error) {
	var drained int64
	err := r.q.QueryRow(ctx, query, r.treasuryID).Scan(&drained)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, entities.ErrTreasuryNotInitialized
	}
	if err != nil {
		return 0, fmt.Errorf("failed to drain treasury %d: %w", r.treasuryID, err)
	}
	return drained, nil
}

// UpdateStakeBounds replaces the stake range
func (r *TreasuryRepository) UpdateStakeBounds(ctx context.Context, minStake, maxStake int64) error {
	query := `
		UPDATE house_treasuries
		SET min_stake = $1, max_stake = $2, updated_at = NOW()
		WHERE id = $3
	`
	return r.update(ctx, "stake bounds", query, minStake, maxStake, r.treasuryID)
}

// UpdateFeeRates replaces both fee tiers
func (r *TreasuryRepository) UpdateFeeRates(ctx context.Context, baseRateBP, discountRateBP int64) error {
	query := `
		UPDATE house_treasuries
		SET base_fee_rate_bp = $1, discount_fee_rate_bp = $2, updated_at = NOW()
		WHERE id = $3
	`
	return r.update(ctx, "fee rates", query, baseRateBP, discountRateBP, r.treasuryID)
}

// UpdateVerificationKey replaces the key new wagers snapshot
func (r *TreasuryRepository) UpdateVerificationKey(ctx context.Context, key []byte) error {
	query := `
		UPDATE house_treasuries
		SET verification_key = $1, updated_at = NOW()
		WHERE id = $2
	`
	return r.update(ctx, "verification key", query, key, r.treasuryID)
}

func (r *TreasuryRepository) update(ctx context.Context, what, query string, args ...any) error {
	result, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s for treasury %d: %w", what, r.treasuryID, err)
	}
	if result.RowsAffected() == 0 {
		return entities.ErrTreasuryNotInitialized
	}
	return nil
}
