package application

import (
	"context"

	"coinflip/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	TreasuryRepository() interfaces.TreasuryRepository
	PlayerAccountRepository() interfaces.PlayerAccountRepository
	WagerRepository() interfaces.WagerRepository
	OutcomeRecordRepository() interfaces.OutcomeRecordRepository
	BalanceHistoryRepository() interfaces.BalanceHistoryRepository
	QualifyingItemRepository() interfaces.QualifyingItemRepository
	EpochRepository() interfaces.EpochRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// CreateForTreasury creates a new UnitOfWork instance scoped to a specific treasury
	CreateForTreasury(treasuryID int64) UnitOfWork
}
