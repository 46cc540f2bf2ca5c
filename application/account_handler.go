package application

import (
	"context"
	"fmt"

	"coinflip/domain/entities"

	log "github.com/sirupsen/logrus"
)

// AccountHandlerImpl implements the AccountHandler interface
type AccountHandlerImpl struct {
	uowFactory UnitOfWorkFactory
	deps       Dependencies
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(uowFactory UnitOfWorkFactory, deps Dependencies) *AccountHandlerImpl {
	return &AccountHandlerImpl{
		uowFactory: uowFactory,
		deps:       deps,
	}
}

func (h *AccountHandlerImpl) Deposit(ctx context.Context, player string, amount int64) (*entities.PlayerAccount, error) {
	var account *entities.PlayerAccount
	err := runInTransaction(ctx, h.uowFactory, h.deps, true, func(svc *serviceSet) error {
		var err error
		account, err = svc.accounts.Deposit(ctx, player, amount)
		return err
	})
	return account, err
}

func (h *AccountHandlerImpl) Withdraw(ctx context.Context, player string, amount int64) (*entities.PlayerAccount, error) {
	var account *entities.PlayerAccount
	err := runInTransaction(ctx, h.uowFactory, h.deps, true, func(svc *serviceSet) error {
		var err error
		account, err = svc.accounts.Withdraw(ctx, player, amount)
		return err
	})
	return account, err
}

func (h *AccountHandlerImpl) GetAccount(ctx context.Context, player string) (*entities.PlayerAccount, error) {
	var account *entities.PlayerAccount
	err := runInTransaction(ctx, h.uowFactory, h.deps, false, func(svc *serviceSet) error {
		var err error
		account, err = svc.accounts.GetAccount(ctx, player)
		return err
	})
	return account, err
}

func (h *AccountHandlerImpl) History(ctx context.Context, player string, limit int) ([]*entities.BalanceHistory, error) {
	var history []*entities.BalanceHistory
	err := runInTransaction(ctx, h.uowFactory, h.deps, false, func(svc *serviceSet) error {
		var err error
		history, err = svc.accounts.History(ctx, player, limit)
		return err
	})
	return history, err
}

// RegisterQualifyingItem records that an account holds an item
func (h *AccountHandlerImpl) RegisterQualifyingItem(ctx context.Context, caller string, item *entities.QualifyingItem) error {
	if item.Owner == "" || item.CollectionID == "" || item.ItemID == "" {
		return entities.ErrInvalidIdentity
	}

	err := runInTransaction(ctx, h.uowFactory, h.deps, true, func(svc *serviceSet) error {
		treasury, err := svc.treasury.GetTreasury(ctx)
		if err != nil {
			return err
		}
		if !treasury.IsHouse(caller) {
			return entities.ErrUnauthorized
		}
		if err := svc.items.Register(ctx, item); err != nil {
			return fmt.Errorf("failed to register qualifying item: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if h.deps.OwnershipCache != nil {
		if err := h.deps.OwnershipCache.Invalidate(ctx, item.Owner, item.CollectionID); err != nil {
			log.WithFields(log.Fields{
				"owner":        item.Owner,
				"collectionID": item.CollectionID,
				"error":        err,
			}).Warn("Failed to invalidate ownership cache")
		}
	}

	log.WithFields(log.Fields{
		"owner":        item.Owner,
		"collectionID": item.CollectionID,
		"itemID":       item.ItemID,
	}).Info("Qualifying item registered")
	return nil
}
