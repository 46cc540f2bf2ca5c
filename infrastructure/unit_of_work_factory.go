package infrastructure

import (
	"context"

	"coinflip/application"
	"coinflip/database"
	"coinflip/domain/events"
	"coinflip/domain/interfaces"
	"coinflip/repository"
)

// UnitOfWorkFactory implements application.UnitOfWorkFactory.
// Each unit of work gets its own transactional publisher over the shared real publisher.
type UnitOfWorkFactory struct {
	repoFactory interface {
		CreateForTreasuryWithPublisher(treasuryID int64, transactionalPublisher interfaces.TransactionalEventPublisher) application.UnitOfWork
	}
	eventPublisher interfaces.EventPublisher
	localHandlers  *LocalHandlerRegistry
}

// NewUnitOfWorkFactory creates a new UnitOfWorkFactory
func NewUnitOfWorkFactory(db *database.DB, eventPublisher interfaces.EventPublisher) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{
		repoFactory:    repository.NewUnitOfWorkFactory(db),
		eventPublisher: eventPublisher,
		localHandlers:  NewLocalHandlerRegistry(),
	}
}

// RegisterLocalHandler registers a handler invoked in-process for every committed event of the type
func (f *UnitOfWorkFactory) RegisterLocalHandler(eventType events.EventType, handler func(context.Context, events.Event) error) {
	f.localHandlers.Register(eventType, handler)
}

// CreateForTreasury creates a new UnitOfWork with a transactional event publisher
func (f *UnitOfWorkFactory) CreateForTreasury(treasuryID int64) application.UnitOfWork {
	return f.repoFactory.CreateForTreasuryWithPublisher(treasuryID, NewTransactionalPublisher(f.eventPublisher, f.localHandlers))
}
