package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"coinflip/database"
	"coinflip/domain/entities"
)

// BalanceHistoryRepository implements the BalanceHistoryRepository interface
type BalanceHistoryRepository struct {
	q          Queryable
	treasuryID int64
}

// NewBalanceHistoryRepository creates a new balance history repository
func NewBalanceHistoryRepository(db *database.DB, treasuryID int64) *BalanceHistoryRepository {
	return &BalanceHistoryRepository{q: db.Pool, treasuryID: treasuryID}
}

// NewBalanceHistoryRepositoryScoped creates a new balance history repository with a transaction and treasury scope
func NewBalanceHistoryRepositoryScoped(tx Queryable, treasuryID int64) *BalanceHistoryRepository {
	return &BalanceHistoryRepository{
		q:          tx,
		treasuryID: treasuryID,
	}
}

// Record creates a new balance history entry
func (r *BalanceHistoryRepository) Record(ctx context.Context, history *entities.BalanceHistory) error {
	// Convert metadata to JSON
	var metadataJSON []byte
	if history.TransactionMetadata != nil {
		var err error
		metadataJSON, err = json.Marshal(history.TransactionMetadata)
		if err != nil {
			return fmt.Errorf("failed to marshal transaction metadata: %w", err)
		}
	}

	query := `
		INSERT INTO balance_history
		(treasury_id, account, balance_before, balance_after, change_amount, transaction_type, transaction_metadata, wager_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		r.treasuryID,
		history.Account,
		history.BalanceBefore,
		history.BalanceAfter,
		history.ChangeAmount,
		history.TransactionType,
		metadataJSON,
		history.WagerID,
	).Scan(&history.ID, &history.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record balance history for %s: %w", history.Account, err)
	}

	history.TreasuryID = r.treasuryID
	return nil
}

// GetByAccount returns the most recent movements on one account
func (r *BalanceHistoryRepository) GetByAccount(ctx context.Context, account string, limit int) ([]*entities.BalanceHistory, error) {
	query := `
		SELECT id, treasury_id, account, balance_before, balance_after, change_amount,
		       transaction_type, transaction_metadata, wager_id, created_at
		FROM balance_history
		WHERE treasury_id = $1 AND account = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`

	rows, err := r.q.Query(ctx, query, r.treasuryID, account, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance history for %s: %w", account, err)
	}
	defer rows.Close()

	histories := make([]*entities.BalanceHistory, 0)
	for rows.Next() {
		var history entities.BalanceHistory
		var metadataJSON []byte

		err := rows.Scan(
			&history.ID,
			&history.TreasuryID,
			&history.Account,
			&history.BalanceBefore,
			&history.BalanceAfter,
			&history.ChangeAmount,
			&history.TransactionType,
			&metadataJSON,
			&history.WagerID,
			&history.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance history: %w", err)
		}

		// Unmarshal metadata
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &history.TransactionMetadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal transaction metadata: %w", err)
			}
		}

		histories = append(histories, &history)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate balance history: %w", err)
	}

	return histories, nil
}

// SumByTransactionTypes returns the net change across the given transaction types
func (r *BalanceHistoryRepository) SumByTransactionTypes(ctx context.Context, types []entities.TransactionType) (int64, error) {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}

	query := `
		SELECT COALESCE(SUM(change_amount), 0)
		FROM balance_history
		WHERE treasury_id = $1 AND transaction_type = ANY($2)
	`

	var total int64
	if err := r.q.QueryRow(ctx, query, r.treasuryID, names).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum balance history: %w", err)
	}
	return total, nil
}
