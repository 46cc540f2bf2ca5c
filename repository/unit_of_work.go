package repository

import (
	"context"
	"errors"
	"fmt"

	"coinflip/application"
	"coinflip/database"
	"coinflip/domain/interfaces"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db                     *database.DB
	tx                     pgx.Tx
	ctx                    context.Context
	treasuryID             int64
	transactionalPublisher interfaces.TransactionalEventPublisher
	treasuryRepo           interfaces.TreasuryRepository
	playerAccountRepo      interfaces.PlayerAccountRepository
	wagerRepo              interfaces.WagerRepository
	outcomeRecordRepo      interfaces.OutcomeRecordRepository
	balanceHistoryRepo     interfaces.BalanceHistoryRepository
	qualifyingItemRepo     interfaces.QualifyingItemRepository
	epochRepo              interfaces.EpochRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB) *unitOfWorkFactory {
	return &unitOfWorkFactory{
		db: db,
	}
}

type unitOfWorkFactory struct {
	db *database.DB
}

// CreateForTreasuryWithPublisher creates a new UnitOfWork with a specific transactional publisher
func (f *unitOfWorkFactory) CreateForTreasuryWithPublisher(treasuryID int64, transactionalPublisher interfaces.TransactionalEventPublisher) application.UnitOfWork {
	return &unitOfWork{
		db:                     f.db,
		treasuryID:             treasuryID,
		transactionalPublisher: transactionalPublisher,
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create treasury-scoped repositories with the transaction
	u.treasuryRepo = NewTreasuryRepositoryScoped(tx, u.treasuryID)
	u.playerAccountRepo = NewPlayerAccountRepositoryScoped(tx, u.treasuryID)
	u.wagerRepo = NewWagerRepositoryScoped(tx, u.treasuryID)
	u.outcomeRecordRepo = NewOutcomeRecordRepositoryScoped(tx, u.treasuryID)
	u.balanceHistoryRepo = NewBalanceHistoryRepositoryScoped(tx, u.treasuryID)
	u.qualifyingItemRepo = NewQualifyingItemRepositoryScoped(tx) // Items are not treasury scoped
	u.epochRepo = NewEpochRepositoryScoped(tx, u.treasuryID)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Flush pending events after successful commit
	if u.transactionalPublisher != nil {
		if err := u.transactionalPublisher.Flush(u.ctx); err != nil {
			log.WithError(err).Error("Failed to flush events after commit")
		}
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	// Discard pending events on rollback
	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Discard()
	}

	return nil
}

// TreasuryRepository returns the treasury repository for this unit of work
func (u *unitOfWork) TreasuryRepository() interfaces.TreasuryRepository {
	if u.treasuryRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.treasuryRepo
}

// PlayerAccountRepository returns the player account repository for this unit of work
func (u *unitOfWork) PlayerAccountRepository() interfaces.PlayerAccountRepository {
	if u.playerAccountRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.playerAccountRepo
}

// WagerRepository returns the wager repository for this unit of work
func (u *unitOfWork) WagerRepository() interfaces.WagerRepository {
	if u.wagerRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.wagerRepo
}

// OutcomeRecordRepository returns the outcome record repository for this unit of work
func (u *unitOfWork) OutcomeRecordRepository() interfaces.OutcomeRecordRepository {
	if u.outcomeRecordRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.outcomeRecordRepo
}

// BalanceHistoryRepository returns the balance history repository for this unit of work
func (u *unitOfWork) BalanceHistoryRepository() interfaces.BalanceHistoryRepository {
	if u.balanceHistoryRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.balanceHistoryRepo
}

// QualifyingItemRepository returns the qualifying item repository for this unit of work
func (u *unitOfWork) QualifyingItemRepository() interfaces.QualifyingItemRepository {
	if u.qualifyingItemRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.qualifyingItemRepo
}

// EpochRepository returns the epoch repository for this unit of work
func (u *unitOfWork) EpochRepository() interfaces.EpochRepository {
	if u.epochRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.epochRepo
}

// EventBus returns the transactional event publisher for this unit of work
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	if u.transactionalPublisher == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalPublisher
}
