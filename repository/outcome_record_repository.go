package repository

import (
	"context"
	"errors"
	"fmt"

	"coinflip/database"
	"coinflip/domain/entities"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// OutcomeRecordRepository implements the OutcomeRecordRepository interface.
// The table rejects updates and deletes, so this type only appends and reads.
type OutcomeRecordRepository struct {
	q          Queryable
	treasuryID int64
}

// NewOutcomeRecordRepository creates a new outcome record repository
func NewOutcomeRecordRepository(db *database.DB, treasuryID int64) *OutcomeRecordRepository {
	return &OutcomeRecordRepository{q: db.Pool, treasuryID: treasuryID}
}

// NewOutcomeRecordRepositoryScoped creates a new outcome record repository with a transaction and treasury scope
func NewOutcomeRecordRepositoryScoped(tx Queryable, treasuryID int64) *OutcomeRecordRepository {
	return &OutcomeRecordRepository{
		q:          tx,
		treasuryID: treasuryID,
	}
}

const outcomeColumns = `
	id, wager_id, treasury_id, player_identity, won, forfeited, stake_at_settlement,
	fee_amount, player_payout, house_release, outcome_bit, proof, settled_epoch, created_at`

// Append inserts the single outcome of a wager. A second outcome for the same
// wager violates the unique constraint and is reported as ErrAlreadySettled.
func (r *OutcomeRecordRepository) Append(ctx context.Context, record *entities.OutcomeRecord) error {
	query := `
		INSERT INTO outcome_records (
			wager_id, treasury_id, player_identity, won, forfeited, stake_at_settlement,
			fee_amount, player_payout, house_release, outcome_bit, proof, settled_epoch
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		record.WagerID,
		r.treasuryID,
		record.PlayerIdentity,
		record.Won,
		record.Forfeited,
		record.StakeAtSettlement,
		record.FeeAmount,
		record.PlayerPayout,
		record.HouseRelease,
		record.OutcomeBit,
		record.Proof,
		record.SettledEpoch,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return entities.ErrAlreadySettled
		}
		return fmt.Errorf("failed to append outcome for wager %s: %w", record.WagerID, err)
	}

	record.TreasuryID = r.treasuryID
	return nil
}

// GetByWager returns the outcome of a wager, or nil if it has not settled
func (r *OutcomeRecordRepository) GetByWager(ctx context.Context, wagerID uuid.UUID) (*entities.OutcomeRecord, error) {
	query := `SELECT` + outcomeColumns + ` FROM outcome_records WHERE wager_id = $1 AND treasury_id = $2`

	record, err := scanOutcome(r.q.QueryRow(ctx, query, wagerID, r.treasuryID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get outcome for wager %s: %w", wagerID, err)
	}
	return record, nil
}

// ListByPlayer returns a player's most recent outcomes
func (r *OutcomeRecordRepository) ListByPlayer(ctx context.Context, player string, limit int) ([]*entities.OutcomeRecord, error) {
	query := `SELECT` + outcomeColumns + `
		FROM outcome_records
		WHERE treasury_id = $1 AND player_identity = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3`

	rows, err := r.q.Query(ctx, query, r.treasuryID, player, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list outcomes for %s: %w", player, err)
	}
	defer rows.Close()

	records := make([]*entities.OutcomeRecord, 0)
	for rows.Next() {
		record, err := scanOutcome(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outcome record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outcome records: %w", err)
	}
	return records, nil
}

func scanOutcome(row pgx.Row) (*entities.OutcomeRecord, error) {
	var rec entities.OutcomeRecord
	err := row.Scan(
		&rec.ID,
		&rec.WagerID,
		&rec.TreasuryID,
		&rec.PlayerIdentity,
		&rec.Won,
		&rec.Forfeited,
		&rec.StakeAtSettlement,
		&rec.FeeAmount,
		&rec.PlayerPayout,
		&rec.HouseRelease,
		&rec.OutcomeBit,
		&rec.Proof,
		&rec.SettledEpoch,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
