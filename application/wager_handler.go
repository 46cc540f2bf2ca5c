package application

import (
	"context"
	"errors"
	"fmt"

	"coinflip/domain/entities"
	"coinflip/domain/interfaces"
	"coinflip/domain/services"
	"coinflip/infrastructure/observability"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// WagerHandlerImpl implements the WagerHandler interface
type WagerHandlerImpl struct {
	uowFactory UnitOfWorkFactory
	deps       Dependencies
}

// NewWagerHandler creates a new wager handler
func NewWagerHandler(uowFactory UnitOfWorkFactory, deps Dependencies) *WagerHandlerImpl {
	return &WagerHandlerImpl{
		uowFactory: uowFactory,
		deps:       deps,
	}
}

// CreateWager opens a wager and escrows both stakes
func (h *WagerHandlerImpl) CreateWager(ctx context.Context, req interfaces.CreateWagerRequest) (*entities.Wager, error) {
	var wager *entities.Wager
	err := h.inTransaction(ctx, func(svc *serviceSet) error {
		var err error
		wager, err = svc.wagers.CreateWager(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"wagerID":    wager.ID,
		"player":     wager.PlayerIdentity,
		"totalStake": wager.TotalStake,
	}).Info("Wager opened")
	return wager, nil
}

// ResolveWager settles a wager with the house proof
func (h *WagerHandlerImpl) ResolveWager(ctx context.Context, wagerID uuid.UUID, proof []byte) (*entities.OutcomeRecord, error) {
	var record *entities.OutcomeRecord
	err := h.inTransaction(ctx, func(svc *serviceSet) error {
		var err error
		record, err = svc.wagers.ResolveWager(ctx, wagerID, proof)
		return err
	})
	if err != nil {
		if errors.Is(err, entities.ErrInvalidProof) {
			observability.GetMetrics().RecordProofRejected()
		}
		return nil, err
	}

	log.WithFields(log.Fields{
		"wagerID": wagerID,
		"won":     record.Won,
		"fee":     record.FeeAmount,
		"payout":  record.PlayerPayout,
	}).Info("Wager resolved")
	return record, nil
}

// ForfeitWager refunds an overdue wager to its player
func (h *WagerHandlerImpl) ForfeitWager(ctx context.Context, wagerID uuid.UUID) (*entities.OutcomeRecord, error) {
	var record *entities.OutcomeRecord
	err := h.inTransaction(ctx, func(svc *serviceSet) error {
		var err error
		record, err = svc.wagers.ForfeitWager(ctx, wagerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"wagerID": wagerID,
		"refund":  record.PlayerPayout,
	}).Info("Wager forfeited")
	return record, nil
}

// GetWager returns one wager by id
func (h *WagerHandlerImpl) GetWager(ctx context.Context, wagerID uuid.UUID) (*entities.Wager, error) {
	var wager *entities.Wager
	err := h.readOnly(ctx, func(svc *serviceSet) error {
		var err error
		wager, err = svc.wagers.GetWager(ctx, wagerID)
		return err
	})
	return wager, err
}

// ListOpenWagers returns a player's open wagers, newest first
func (h *WagerHandlerImpl) ListOpenWagers(ctx context.Context, player string) ([]*entities.Wager, error) {
	var wagers []*entities.Wager
	err := h.readOnly(ctx, func(svc *serviceSet) error {
		var err error
		wagers, err = svc.wagers.ListOpenWagers(ctx, player)
		return err
	})
	return wagers, err
}

// GetOutcome returns the outcome record of a settled wager
func (h *WagerHandlerImpl) GetOutcome(ctx context.Context, wagerID uuid.UUID) (*entities.OutcomeRecord, error) {
	var record *entities.OutcomeRecord
	err := h.readOnly(ctx, func(svc *serviceSet) error {
		var err error
		record, err = svc.wagers.GetOutcome(ctx, wagerID)
		return err
	})
	return record, err
}

// ListOutcomes returns up to limit of a player's outcome records
func (h *WagerHandlerImpl) ListOutcomes(ctx context.Context, player string, limit int) ([]*entities.OutcomeRecord, error) {
	var records []*entities.OutcomeRecord
	err := h.readOnly(ctx, func(svc *serviceSet) error {
		var err error
		records, err = svc.wagers.ListOutcomes(ctx, player, limit)
		return err
	})
	return records, err
}

// VerifyOutcome recomputes an outcome from raw inputs
func (h *WagerHandlerImpl) VerifyOutcome(req VerifyOutcomeRequest) services.VerificationResult {
	return h.deps.Oracle.Verify(req.WagerID, req.Seed, req.Proof, req.VerificationKey, req.Guess)
}

// inTransaction runs fn in a fresh unit of work and commits only if it succeeds
func (h *WagerHandlerImpl) inTransaction(ctx context.Context, fn func(svc *serviceSet) error) error {
	return runInTransaction(ctx, h.uowFactory, h.deps, true, fn)
}

// readOnly runs fn in a unit of work that is always rolled back
func (h *WagerHandlerImpl) readOnly(ctx context.Context, fn func(svc *serviceSet) error) error {
	return runInTransaction(ctx, h.uowFactory, h.deps, false, fn)
}

// runInTransaction is shared by every handler. Any error rolls the unit of work
// back, so a failed operation leaves no partial state and publishes no events.
func runInTransaction(ctx context.Context, factory UnitOfWorkFactory, deps Dependencies, commit bool, fn func(svc *serviceSet) error) error {
	uow := factory.CreateForTreasury(deps.TreasuryID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := fn(newServiceSet(uow, deps)); err != nil {
		return err
	}

	if !commit {
		return nil
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
