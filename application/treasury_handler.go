package application

import (
	"context"

	"coinflip/domain/entities"
	"coinflip/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// TreasuryHandlerImpl implements the TreasuryHandler interface
type TreasuryHandlerImpl struct {
	uowFactory UnitOfWorkFactory
	deps       Dependencies
}

// NewTreasuryHandler creates a new treasury handler
func NewTreasuryHandler(uowFactory UnitOfWorkFactory, deps Dependencies) *TreasuryHandlerImpl {
	return &TreasuryHandlerImpl{
		uowFactory: uowFactory,
		deps:       deps,
	}
}

func (h *TreasuryHandlerImpl) InitializeTreasury(ctx context.Context, params interfaces.InitializeTreasuryParams) (*entities.HouseTreasury, error) {
	if err := h.checkKey(params.VerificationKey); err != nil {
		return nil, err
	}

	var treasury *entities.HouseTreasury
	err := runInTransaction(ctx, h.uowFactory, h.deps, true, func(svc *serviceSet) error {
		var err error
		treasury, err = svc.treasury.InitializeTreasury(ctx, params)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"treasuryID":    treasury.ID,
		"houseIdentity": treasury.HouseIdentity,
	}).Info("Treasury initialized")
	return treasury, nil
}

func (h *TreasuryHandlerImpl) GetTreasury(ctx context.Context) (*entities.HouseTreasury, error) {
	var treasury *entities.HouseTreasury
	err := runInTransaction(ctx, h.uowFactory, h.deps, false, func(svc *serviceSet) error {
		var err error
		treasury, err = svc.treasury.GetTreasury(ctx)
		return err
	})
	return treasury, err
}

func (h *TreasuryHandlerImpl) TopUp(ctx context.Context, caller string, amount int64) (*entities.HouseTreasury, error) {
	var treasury *entities.HouseTreasury
	err := runInTransaction(ctx, h.uowFactory, h.deps, true, func(svc *serviceSet) error {
		var err error
		treasury, err = svc.treasury.TopUp(ctx, caller, amount)
		return err
	})
	return treasury, err
}

func (h *TreasuryHandlerImpl) WithdrawBalance(ctx context.Context, caller string) (int64, error) {
	var amount int64
	err := runInTransaction(ctx, h.uowFactory, h.deps, true, func(svc *serviceSet) error {
		var err error
		amount, err = svc.treasury.WithdrawBalance(ctx, caller)
		return err
	})
	return amount, err
}

func (h *TreasuryHandlerImpl) ClaimFees(ctx context.Context, caller string) (int64, error) {
	var amount int64
	err := runInTransaction(ctx, h.uowFactory, h.deps, true, func(svc *serviceSet) error {
		var err error
		amount, err = svc.treasury.ClaimFees(ctx, caller)
		return err
	})
	return amount, err
}

func (h *TreasuryHandlerImpl) SetStakeBounds(ctx context.Context, caller string, minStake, maxStake int64) error {
	return runInTransaction(ctx, h.uowFactory, h.deps, true, func(svc *serviceSet) error {
		return svc.treasury.SetStakeBounds(ctx, caller, minStake, maxStake)
	})
}

func (h *TreasuryHandlerImpl) SetFeeRates(ctx context.Context, caller string, baseRateBP, discountRateBP int64) error {
	return runInTransaction(ctx, h.uowFactory, h.deps, true, func(svc *serviceSet) error {
		return svc.treasury.SetFeeRates(ctx, caller, baseRateBP, discountRateBP)
	})
}

// RotateVerificationKey replaces the key used by future wagers; open wagers keep their snapshot
func (h *TreasuryHandlerImpl) RotateVerificationKey(ctx context.Context, caller string, key []byte) error {
	return runInTransaction(ctx, h.uowFactory, h.deps, true, func(svc *serviceSet) error {
		// Authorization is decided before the key is inspected
		treasury, err := svc.treasury.GetTreasury(ctx)
		if err != nil {
			return err
		}
		if !treasury.IsHouse(caller) {
			return entities.ErrUnauthorized
		}
		if err := h.checkKey(key); err != nil {
			return err
		}
		return svc.treasury.RotateVerificationKey(ctx, caller, key)
	})
}

func (h *TreasuryHandlerImpl) CurrentEpoch(ctx context.Context) (int64, error) {
	var epoch int64
	err := runInTransaction(ctx, h.uowFactory, h.deps, false, func(svc *serviceSet) error {
		var err error
		epoch, err = svc.epochs.CurrentEpoch(ctx)
		return err
	})
	return epoch, err
}

func (h *TreasuryHandlerImpl) AdvanceEpoch(ctx context.Context, caller string, steps int64) (int64, error) {
	var epoch int64
	err := runInTransaction(ctx, h.uowFactory, h.deps, true, func(svc *serviceSet) error {
		var err error
		epoch, err = svc.epochs.AdvanceEpoch(ctx, caller, steps)
		return err
	})
	return epoch, err
}

// ConservationReport audits the ledger; house only
func (h *TreasuryHandlerImpl) ConservationReport(ctx context.Context, caller string) (*entities.ConservationReport, error) {
	var report *entities.ConservationReport
	err := runInTransaction(ctx, h.uowFactory, h.deps, false, func(svc *serviceSet) error {
		treasury, err := svc.treasury.GetTreasury(ctx)
		if err != nil {
			return err
		}
		if !treasury.IsHouse(caller) {
			return entities.ErrUnauthorized
		}
		report, err = svc.audit.ConservationReport(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if !report.IsBalanced() {
		log.WithFields(log.Fields{
			"treasuryID":  h.deps.TreasuryID,
			"discrepancy": report.Discrepancy(),
		}).Error("Conservation check failed")
	}
	return report, nil
}

func (h *TreasuryHandlerImpl) checkKey(key []byte) error {
	if len(key) == 0 {
		return entities.ErrInvalidVerificationKey
	}
	if h.deps.ValidKey != nil && !h.deps.ValidKey(key) {
		return entities.ErrInvalidVerificationKey
	}
	return nil
}
