package interfaces

import (
	"context"

	"coinflip/domain/entities"
	"coinflip/domain/events"

	"github.com/google/uuid"
)

// TreasuryRepository defines data access for the house treasury.
// Every balance mutation is a single conditional statement.
type TreasuryRepository interface {
	// Get returns the treasury, or nil if it has not been initialized
	Get(ctx context.Context) (*entities.HouseTreasury, error)

	// GetForUpdate returns the treasury with its row locked for the transaction
	GetForUpdate(ctx context.Context) (*entities.HouseTreasury, error)

	// Create inserts the treasury row; fails with ErrTreasuryAlreadyInitialized if it exists
	Create(ctx context.Context, treasury *entities.HouseTreasury) error

	// Reserve debits available_balance if it covers amount and returns the new balance.
	// Fails with ErrInsufficientHouseBalance without changing anything otherwise.
	Reserve(ctx context.Context, amount int64) (int64, error)

	// CreditAvailable adds amount to available_balance and returns the new balance
	CreditAvailable(ctx context.Context, amount int64) (int64, error)

	// CreditFees adds amount to accumulated_fees and returns the new balance
	CreditFees(ctx context.Context, amount int64) (int64, error)

	// DrainAvailable zeroes available_balance and returns the amount removed
	DrainAvailable(ctx context.Context) (int64, error)

	// DrainFees zeroes accumulated_fees and returns the amount removed
	DrainFees(ctx context.Context) (int64, error)

	UpdateStakeBounds(ctx context.Context, minStake, maxStake int64) error
	UpdateFeeRates(ctx context.Context, baseRateBP, discountRateBP int64) error
	UpdateVerificationKey(ctx context.Context, key []byte) error
}

// PlayerAccountRepository defines data access for player funds
type PlayerAccountRepository interface {
	// GetByIdentity returns the account, or nil if the player never deposited
	GetByIdentity(ctx context.Context, identity string) (*entities.PlayerAccount, error)

	// Credit adds amount to the account, creating it if needed, and returns the new balance
	Credit(ctx context.Context, identity string, amount int64) (int64, error)

	// Debit removes amount if the balance covers it and returns the new balance.
	// Fails with ErrInsufficientPlayerBalance otherwise.
	Debit(ctx context.Context, identity string, amount int64) (int64, error)

	// SumBalances returns the total held in all player accounts
	SumBalances(ctx context.Context) (int64, error)
}

// WagerRepository defines data access for wagers
type WagerRepository interface {
	Create(ctx context.Context, wager *entities.Wager) error

	// GetByID returns the wager, or nil if not found
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Wager, error)

	// GetByIDForUpdate returns the wager with its row locked for the transaction
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.Wager, error)

	// Settle moves an open wager holding expectedStake to a terminal status and zeroes
	// its escrow. Fails with ErrAlreadySettled if the wager is no longer in that state.
	Settle(ctx context.Context, id uuid.UUID, status entities.WagerStatus, expectedStake int64) error

	// ListOpenForKey returns open wagers snapshotted under verificationKey, oldest first
	ListOpenForKey(ctx context.Context, verificationKey []byte, limit int) ([]*entities.Wager, error)

	// ListOpenByPlayer returns a player's open wagers, newest first
	ListOpenByPlayer(ctx context.Context, player string) ([]*entities.Wager, error)

	// ListForfeitable returns open wagers created at or before maxCreatedEpoch
	ListForfeitable(ctx context.Context, maxCreatedEpoch int64, limit int) ([]*entities.Wager, error)

	// SumOpenEscrow returns the total stake held by open wagers
	SumOpenEscrow(ctx context.Context) (int64, error)
}

// OutcomeRecordRepository defines data access for the append-only outcome log
type OutcomeRecordRepository interface {
	Append(ctx context.Context, record *entities.OutcomeRecord) error

	// GetByWager returns the outcome of a settled wager, or nil if it is still open
	GetByWager(ctx context.Context, wagerID uuid.UUID) (*entities.OutcomeRecord, error)

	ListByPlayer(ctx context.Context, player string, limit int) ([]*entities.OutcomeRecord, error)
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record records a balance change
	Record(ctx context.Context, history *entities.BalanceHistory) error

	// GetByAccount returns the most recent movements on one account
	GetByAccount(ctx context.Context, account string, limit int) ([]*entities.BalanceHistory, error)

	// SumByTransactionTypes returns the net change across the given transaction types
	SumByTransactionTypes(ctx context.Context, types []entities.TransactionType) (int64, error)
}

// QualifyingItemRepository defines data access for ownership proofs
type QualifyingItemRepository interface {
	HasItem(ctx context.Context, owner, collectionID string) (bool, error)
	Register(ctx context.Context, item *entities.QualifyingItem) error
}

// EpochRepository defines data access for the logical clock
type EpochRepository interface {
	// CurrentEpoch returns the current epoch, zero before the first advance
	CurrentEpoch(ctx context.Context) (int64, error)

	// Advance moves the clock forward by steps and returns the new epoch
	Advance(ctx context.Context, steps int64) (int64, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher buffers events until the surrounding transaction commits
type TransactionalEventPublisher interface {
	EventPublisher
	Flush(ctx context.Context) error
	Discard()
}
