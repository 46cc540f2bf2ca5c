package services

import (
	"context"
	"fmt"

	"coinflip/domain/entities"
	"coinflip/domain/events"
	"coinflip/domain/interfaces"
	"coinflip/domain/utils"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// treasuryService implements the house treasury
type treasuryService struct {
	treasuryID         int64
	treasuryRepo       interfaces.TreasuryRepository
	balanceHistoryRepo interfaces.BalanceHistoryRepository
	eventPublisher     interfaces.EventPublisher
}

// NewTreasuryService creates a treasury service scoped to one treasury
func NewTreasuryService(
	treasuryID int64,
	treasuryRepo interfaces.TreasuryRepository,
	balanceHistoryRepo interfaces.BalanceHistoryRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.TreasuryService {
	return &treasuryService{
		treasuryID:         treasuryID,
		treasuryRepo:       treasuryRepo,
		balanceHistoryRepo: balanceHistoryRepo,
		eventPublisher:     eventPublisher,
	}
}

// InitializeTreasury creates the treasury exactly once
func (s *treasuryService) InitializeTreasury(ctx context.Context, params interfaces.InitializeTreasuryParams) (*entities.HouseTreasury, error) {
	if params.HouseIdentity == "" {
		return nil, entities.ErrInvalidIdentity
	}
	if len(params.VerificationKey) == 0 {
		return nil, entities.ErrInvalidVerificationKey
	}
	if err := entities.ValidateStakeBounds(params.MinStake, params.MaxStake); err != nil {
		return nil, err
	}
	if err := entities.ValidateFeeRate(params.BaseFeeRateBP); err != nil {
		return nil, err
	}
	if err := entities.ValidateFeeRate(params.DiscountFeeRateBP); err != nil {
		return nil, err
	}
	if params.FeeBasis == "" {
		params.FeeBasis = entities.FeeBasisPlayerStake
	}
	if !params.FeeBasis.IsValid() {
		return nil, fmt.Errorf("unknown fee basis %q", params.FeeBasis)
	}

	treasury := &entities.HouseTreasury{
		ID:                s.treasuryID,
		HouseIdentity:     params.HouseIdentity,
		VerificationKey:   params.VerificationKey,
		MinStake:          params.MinStake,
		MaxStake:          params.MaxStake,
		BaseFeeRateBP:     params.BaseFeeRateBP,
		DiscountFeeRateBP: params.DiscountFeeRateBP,
		FeeBasis:          params.FeeBasis,
	}
	if err := s.treasuryRepo.Create(ctx, treasury); err != nil {
		return nil, fmt.Errorf("failed to create treasury: %w", err)
	}

	log.WithFields(log.Fields{
		"treasuryID":    s.treasuryID,
		"houseIdentity": treasury.HouseIdentity,
		"minStake":      treasury.MinStake,
		"maxStake":      treasury.MaxStake,
		"feeBasis":      treasury.FeeBasis,
	}).Info("Treasury initialized")

	s.publishUpdate(treasury, events.TreasuryChangeInitialized)
	return treasury, nil
}

// GetTreasury returns the treasury or ErrTreasuryNotInitialized
func (s *treasuryService) GetTreasury(ctx context.Context) (*entities.HouseTreasury, error) {
	treasury, err := s.treasuryRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get treasury: %w", err)
	}
	if treasury == nil {
		return nil, entities.ErrTreasuryNotInitialized
	}
	return treasury, nil
}

// TopUp credits an external deposit to the available pool
func (s *treasuryService) TopUp(ctx context.Context, caller string, amount int64) (*entities.HouseTreasury, error) {
	treasury, err := s.authorize(ctx, caller)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, entities.ErrInvalidAmount
	}

	newBalance, err := s.treasuryRepo.CreditAvailable(ctx, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to top up treasury: %w", err)
	}
	if err := s.record(ctx, entities.AccountHouseAvailable, newBalance, amount, entities.TransactionTypeHouseTopUp, nil); err != nil {
		return nil, err
	}

	treasury.AvailableBalance = newBalance
	return treasury, nil
}

// WithdrawBalance drains the available pool to the house
func (s *treasuryService) WithdrawBalance(ctx context.Context, caller string) (int64, error) {
	if _, err := s.authorize(ctx, caller); err != nil {
		return 0, err
	}

	drained, err := s.treasuryRepo.DrainAvailable(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to withdraw house balance: %w", err)
	}
	if drained > 0 {
		if err := s.record(ctx, entities.AccountHouseAvailable, 0, -drained, entities.TransactionTypeHouseWithdrawal, nil); err != nil {
			return 0, err
		}
	}

	log.WithFields(log.Fields{
		"treasuryID": s.treasuryID,
		"amount":     drained,
	}).Info("House balance withdrawn")
	return drained, nil
}

// ClaimFees drains the fee pool to the house
func (s *treasuryService) ClaimFees(ctx context.Context, caller string) (int64, error) {
	if _, err := s.authorize(ctx, caller); err != nil {
		return 0, err
	}

	drained, err := s.treasuryRepo.DrainFees(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to claim fees: %w", err)
	}
	if drained > 0 {
		if err := s.record(ctx, entities.AccountHouseFees, 0, -drained, entities.TransactionTypeFeeClaim, nil); err != nil {
			return 0, err
		}
	}

	log.WithFields(log.Fields{
		"treasuryID": s.treasuryID,
		"amount":     drained,
	}).Info("Fees claimed")
	return drained, nil
}

// SetStakeBounds replaces the inclusive stake range for new wagers
func (s *treasuryService) SetStakeBounds(ctx context.Context, caller string, minStake, maxStake int64) error {
	treasury, err := s.authorize(ctx, caller)
	if err != nil {
		return err
	}
	if err := entities.ValidateStakeBounds(minStake, maxStake); err != nil {
		return err
	}

	if err := s.treasuryRepo.UpdateStakeBounds(ctx, minStake, maxStake); err != nil {
		return fmt.Errorf("failed to update stake bounds: %w", err)
	}

	treasury.MinStake = minStake
	treasury.MaxStake = maxStake
	s.publishUpdate(treasury, events.TreasuryChangeStakeBounds)
	return nil
}

// SetFeeRates replaces both fee tiers. Open wagers keep their snapshotted rate.
func (s *treasuryService) SetFeeRates(ctx context.Context, caller string, baseRateBP, discountRateBP int64) error {
	treasury, err := s.authorize(ctx, caller)
	if err != nil {
		return err
	}
	if err := entities.ValidateFeeRate(baseRateBP); err != nil {
		return err
	}
	if err := entities.ValidateFeeRate(discountRateBP); err != nil {
		return err
	}

	if err := s.treasuryRepo.UpdateFeeRates(ctx, baseRateBP, discountRateBP); err != nil {
		return fmt.Errorf("failed to update fee rates: %w", err)
	}

	treasury.BaseFeeRateBP = baseRateBP
	treasury.DiscountFeeRateBP = discountRateBP
	s.publishUpdate(treasury, events.TreasuryChangeFeeRates)
	return nil
}

// RotateVerificationKey changes the key new wagers snapshot
func (s *treasuryService) RotateVerificationKey(ctx context.Context, caller string, key []byte) error {
	treasury, err := s.authorize(ctx, caller)
	if err != nil {
		return err
	}
	if len(key) == 0 {
		return entities.ErrInvalidVerificationKey
	}

	if err := s.treasuryRepo.UpdateVerificationKey(ctx, key); err != nil {
		return fmt.Errorf("failed to update verification key: %w", err)
	}

	treasury.VerificationKey = key
	s.publishUpdate(treasury, events.TreasuryChangeVerificationKey)
	return nil
}

// Reserve moves a house stake out of the available pool into a wager
func (s *treasuryService) Reserve(ctx context.Context, amount int64, wagerID uuid.UUID) error {
	if amount <= 0 {
		return entities.ErrInvalidAmount
	}

	newBalance, err := s.treasuryRepo.Reserve(ctx, amount)
	if err != nil {
		return fmt.Errorf("failed to reserve house stake: %w", err)
	}
	return s.record(ctx, entities.AccountHouseAvailable, newBalance, -amount, entities.TransactionTypeHouseReserve, &wagerID)
}

// ReleaseToHouse returns escrow won by the house to the available pool
func (s *treasuryService) ReleaseToHouse(ctx context.Context, amount int64, wagerID uuid.UUID) error {
	if amount < 0 {
		return entities.ErrInvalidAmount
	}
	if amount == 0 {
		return nil
	}

	newBalance, err := s.treasuryRepo.CreditAvailable(ctx, amount)
	if err != nil {
		return fmt.Errorf("failed to release stake to house: %w", err)
	}
	return s.record(ctx, entities.AccountHouseAvailable, newBalance, amount, entities.TransactionTypeHouseRelease, &wagerID)
}

// CreditFee adds a settlement fee to the fee pool
func (s *treasuryService) CreditFee(ctx context.Context, amount int64, wagerID uuid.UUID) error {
	if amount < 0 {
		return entities.ErrInvalidAmount
	}
	if amount == 0 {
		return nil
	}

	newBalance, err := s.treasuryRepo.CreditFees(ctx, amount)
	if err != nil {
		return fmt.Errorf("failed to credit fee: %w", err)
	}
	return s.record(ctx, entities.AccountHouseFees, newBalance, amount, entities.TransactionTypeFeeCredit, &wagerID)
}

// authorize locks the treasury row and checks the caller is the house
func (s *treasuryService) authorize(ctx context.Context, caller string) (*entities.HouseTreasury, error) {
	treasury, err := s.treasuryRepo.GetForUpdate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get treasury: %w", err)
	}
	if treasury == nil {
		return nil, entities.ErrTreasuryNotInitialized
	}
	if !treasury.IsHouse(caller) {
		log.WithFields(log.Fields{
			"treasuryID": s.treasuryID,
			"caller":     caller,
		}).Warn("Rejected administrative call from non-house caller")
		return nil, entities.ErrUnauthorized
	}
	return treasury, nil
}

func (s *treasuryService) record(ctx context.Context, account string, balanceAfter, change int64, txType entities.TransactionType, wagerID *uuid.UUID) error {
	history := utils.NewBalanceChange(s.treasuryID, account, balanceAfter, change, txType, wagerID)
	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
		return fmt.Errorf("failed to record %s: %w", txType, err)
	}
	return nil
}

func (s *treasuryService) publishUpdate(treasury *entities.HouseTreasury, change string) {
	event := events.TreasuryUpdatedEvent{
		TreasuryID:        s.treasuryID,
		Change:            change,
		MinStake:          treasury.MinStake,
		MaxStake:          treasury.MaxStake,
		BaseFeeRateBP:     treasury.BaseFeeRateBP,
		DiscountFeeRateBP: treasury.DiscountFeeRateBP,
		FeeBasis:          treasury.FeeBasis,
	}
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish treasury updated event")
	}
}
