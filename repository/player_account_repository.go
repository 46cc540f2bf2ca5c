package repository

import (
	"context"
	"errors"
	"fmt"

	"coinflip/database"
	"coinflip/domain/entities"

	"github.com/jackc/pgx/v5"
)

// PlayerAccountRepository implements the PlayerAccountRepository interface
type PlayerAccountRepository struct {
	q          Queryable
	treasuryID int64
}

// NewPlayerAccountRepository creates a new player account repository
func NewPlayerAccountRepository(db *database.DB, treasuryID int64) *PlayerAccountRepository {
	return &PlayerAccountRepository{q: db.Pool, treasuryID: treasuryID}
}

// NewPlayerAccountRepositoryScoped creates a new player account repository with a transaction and treasury scope
func NewPlayerAccountRepositoryScoped(tx Queryable, treasuryID int64) *PlayerAccountRepository {
	return &PlayerAccountRepository{
		q:          tx,
		treasuryID: treasuryID,
	}
}

// GetByIdentity retrieves a player account, returning nil if the player never deposited
func (r *PlayerAccountRepository) GetByIdentity(ctx context.Context, identity string) (*entities.PlayerAccount, error) {
	query := `
		SELECT identity, treasury_id, balance, created_at, updated_at
		FROM player_accounts
		WHERE treasury_id = $1 AND identity = $2
	`

	var account entities.PlayerAccount
	err := r.q.QueryRow(ctx, query, r.treasuryID, identity).Scan(
		&account.Identity,
		&account.TreasuryID,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s in treasury %d: %w", identity, r.treasuryID, err)
	}
	return &account, nil
}

// Credit adds amount to the account, opening it if needed
func (r *PlayerAccountRepository) Credit(ctx context.Context, identity string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}

	query := `
		INSERT INTO player_accounts (treasury_id, identity, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (treasury_id, identity)
		DO UPDATE SET balance = player_accounts.balance + EXCLUDED.balance, updated_at = NOW()
		RETURNING balance
	`

	var balance int64
	if err := r.q.QueryRow(ctx, query, r.treasuryID, identity, amount).Scan(&balance); err != nil {
		return 0, fmt.Errorf("failed to credit account %s: %w", identity, err)
	}
	return balance, nil
}

// Debit removes amount only if the account holds at least that much
func (r *PlayerAccountRepository) Debit(ctx context.Context, identity string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE player_accounts
		SET balance = balance - $1, updated_at = NOW()
		WHERE treasury_id = $2 AND identity = $3 AND balance >= $1
		RETURNING balance
	`

	var balance int64
	err := r.q.QueryRow(ctx, query, amount, r.treasuryID, identity).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, entities.ErrInsufficientPlayerBalance
	}
	if err != nil {
		return 0, fmt.Errorf("failed to debit account %s: %w", identity, err)
	}
	return balance, nil
}

// SumBalances returns the total held in player accounts
func (r *PlayerAccountRepository) SumBalances(ctx context.Context) (int64, error) {
	query := `SELECT COALESCE(SUM(balance), 0) FROM player_accounts WHERE treasury_id = $1`

	var total int64
	if err := r.q.QueryRow(ctx, query, r.treasuryID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum player balances: %w", err)
	}
	return total, nil
}
