package application

import (
	"context"

	"coinflip/domain/interfaces"
	"coinflip/domain/services"
)

// Dependencies are the process-wide collaborators every handler shares
type Dependencies struct {
	TreasuryID         int64
	DisputeDelayEpochs int64
	CollectionID       string
	Oracle             *services.RandomnessOracle
	OwnershipChecker   interfaces.OwnershipChecker // nil reads the qualifying item table in-transaction
	OwnershipCache     OwnershipCacheInvalidator // optional
	ValidKey           KeyValidator              // optional
}

// serviceSet is the domain services bound to one unit of work
type serviceSet struct {
	treasury interfaces.TreasuryService
	accounts interfaces.AccountService
	epochs   interfaces.EpochService
	wagers   interfaces.WagerService
	audit    interfaces.AuditService
	items    interfaces.QualifyingItemRepository
	wagerLog interfaces.WagerRepository
}

// newServiceSet wires the domain services over the repositories of a started unit of work
func newServiceSet(uow UnitOfWork, deps Dependencies) *serviceSet {
	bus := uow.EventBus()

	treasury := services.NewTreasuryService(deps.TreasuryID, uow.TreasuryRepository(), uow.BalanceHistoryRepository(), bus)
	accounts := services.NewAccountService(deps.TreasuryID, uow.PlayerAccountRepository(), uow.BalanceHistoryRepository(), bus)
	epochs := services.NewEpochService(deps.TreasuryID, uow.EpochRepository(), uow.TreasuryRepository(), bus)
	ownership := deps.OwnershipChecker
	if ownership == nil {
		ownership = repositoryOwnership{items: uow.QualifyingItemRepository()}
	}
	discount := services.NewDiscountService(ownership, deps.CollectionID)

	wagers := services.NewWagerService(
		deps.TreasuryID,
		deps.DisputeDelayEpochs,
		uow.WagerRepository(),
		uow.TreasuryRepository(),
		uow.OutcomeRecordRepository(),
		treasury,
		accounts,
		discount,
		epochs,
		deps.Oracle,
		bus,
	)

	audit := services.NewAuditService(
		uow.TreasuryRepository(),
		uow.PlayerAccountRepository(),
		uow.WagerRepository(),
		uow.BalanceHistoryRepository(),
	)

	return &serviceSet{
		treasury: treasury,
		accounts: accounts,
		epochs:   epochs,
		wagers:   wagers,
		audit:    audit,
		items:    uow.QualifyingItemRepository(),
		wagerLog: uow.WagerRepository(),
	}
}

// repositoryOwnership reads ownership inside the unit of work when no external checker is configured
type repositoryOwnership struct {
	items interfaces.QualifyingItemRepository
}

func (o repositoryOwnership) HasQualifyingItem(ctx context.Context, account, collectionID string) (bool, error) {
	return o.items.HasItem(ctx, account, collectionID)
}
