package services

import (
	"context"
	"fmt"

	"coinflip/domain/entities"
	"coinflip/domain/events"
	"coinflip/domain/interfaces"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// wagerService implements the wager state machine: open -> resolved | forfeited
type wagerService struct {
	treasuryID         int64
	disputeDelayEpochs int64
	wagerRepo          interfaces.WagerRepository
	treasuryRepo       interfaces.TreasuryRepository
	outcomeRepo        interfaces.OutcomeRecordRepository
	treasuryService    interfaces.TreasuryService
	accountService     interfaces.AccountService
	discountService    interfaces.DiscountService
	epochClock         interfaces.EpochClock
	oracle             *RandomnessOracle
	recorder           *OutcomeRecorder
	eventPublisher     interfaces.EventPublisher
}

// NewWagerService creates a wager service
func NewWagerService(
	treasuryID int64,
	disputeDelayEpochs int64,
	wagerRepo interfaces.WagerRepository,
	treasuryRepo interfaces.TreasuryRepository,
	outcomeRepo interfaces.OutcomeRecordRepository,
	treasuryService interfaces.TreasuryService,
	accountService interfaces.AccountService,
	discountService interfaces.DiscountService,
	epochClock interfaces.EpochClock,
	oracle *RandomnessOracle,
	eventPublisher interfaces.EventPublisher,
) interfaces.WagerService {
	return &wagerService{
		treasuryID:         treasuryID,
		disputeDelayEpochs: disputeDelayEpochs,
		wagerRepo:          wagerRepo,
		treasuryRepo:       treasuryRepo,
		outcomeRepo:        outcomeRepo,
		treasuryService:    treasuryService,
		accountService:     accountService,
		discountService:    discountService,
		epochClock:         epochClock,
		oracle:             oracle,
		recorder:           NewOutcomeRecorder(outcomeRepo, eventPublisher),
		eventPublisher:     eventPublisher,
	}
}

// CreateWager opens a wager. The escrow is the player stake plus an equal house
// stake, and the fee rate, fee basis and verification key are frozen for its life.
func (s *wagerService) CreateWager(ctx context.Context, req interfaces.CreateWagerRequest) (*entities.Wager, error) {
	if err := entities.ValidateGuess(req.Guess); err != nil {
		return nil, err
	}
	if req.Player == "" {
		return nil, entities.ErrInvalidIdentity
	}

	treasury, err := s.treasuryRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get treasury: %w", err)
	}
	if treasury == nil {
		return nil, entities.ErrTreasuryNotInitialized
	}
	if !treasury.StakeInRange(req.Stake) {
		return nil, entities.ErrStakeOutOfRange
	}
	if !treasury.CanMatch(req.Stake) {
		return nil, entities.ErrInsufficientHouseBalance
	}

	feeRate, discounted, err := s.discountService.SelectFeeRate(ctx, treasury, req.Player, req.ClaimDiscount)
	if err != nil {
		return nil, err
	}

	epoch, err := s.epochClock.CurrentEpoch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read epoch: %w", err)
	}

	wager := &entities.Wager{
		ID:              uuid.New(),
		TreasuryID:      s.treasuryID,
		PlayerIdentity:  req.Player,
		Guess:           uint8(req.Guess),
		PlayerSeed:      req.Seed,
		PlayerStake:     req.Stake,
		TotalStake:      req.Stake * 2,
		FeeRateBP:       feeRate,
		FeeBasis:        treasury.FeeBasis,
		Discounted:      discounted,
		VerificationKey: treasury.VerificationKey,
		CreatedEpoch:    epoch,
		Status:          entities.WagerStatusOpen,
	}

	// The wager row exists first so ledger entries can reference it
	if err := s.wagerRepo.Create(ctx, wager); err != nil {
		return nil, fmt.Errorf("failed to create wager: %w", err)
	}
	if err := s.treasuryService.Reserve(ctx, req.Stake, wager.ID); err != nil {
		return nil, err
	}
	if err := s.accountService.DebitStake(ctx, req.Player, req.Stake, wager.ID); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"wagerID":    wager.ID,
		"player":     wager.PlayerIdentity,
		"stake":      wager.PlayerStake,
		"feeRateBP":  wager.FeeRateBP,
		"discounted": wager.Discounted,
		"epoch":      wager.CreatedEpoch,
	}).Debug("Wager created")

	event := events.WagerCreatedEvent{
		WagerID:        wager.ID.String(),
		TreasuryID:     wager.TreasuryID,
		PlayerIdentity: wager.PlayerIdentity,
		Guess:          wager.Guess,
		PlayerStake:    wager.PlayerStake,
		TotalStake:     wager.TotalStake,
		FeeRateBP:      wager.FeeRateBP,
		Discounted:     wager.Discounted,
		CreatedEpoch:   wager.CreatedEpoch,
	}
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish wager created event")
	}

	return wager, nil
}

// ResolveWager settles an open wager from the house's proof. Anyone may call it;
// where the escrow goes depends only on the wager and the proof.
func (s *wagerService) ResolveWager(ctx context.Context, wagerID uuid.UUID, proof []byte) (*entities.OutcomeRecord, error) {
	wager, err := s.lockOpenWager(ctx, wagerID)
	if err != nil {
		return nil, err
	}

	bit, err := s.oracle.OutcomeBit(wager.ID, wager.PlayerSeed, proof, wager.VerificationKey)
	if err != nil {
		log.WithFields(log.Fields{
			"wagerID": wager.ID,
		}).Warn("Rejected resolve with invalid proof")
		return nil, err
	}

	epoch, err := s.epochClock.CurrentEpoch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read epoch: %w", err)
	}

	won := PlayerWins(wager.Guess, bit)
	settlement := CalculateResolution(wager, won)

	if err := s.wagerRepo.Settle(ctx, wager.ID, entities.WagerStatusResolved, wager.TotalStake); err != nil {
		return nil, fmt.Errorf("failed to settle wager %s: %w", wager.ID, err)
	}

	if settlement.PlayerWon {
		if err := s.treasuryService.CreditFee(ctx, settlement.Fee, wager.ID); err != nil {
			return nil, err
		}
		if err := s.accountService.CreditFromWager(ctx, wager.PlayerIdentity, settlement.PlayerPayout, wager.ID, entities.TransactionTypeWagerPayout); err != nil {
			return nil, err
		}
	} else {
		if err := s.treasuryService.ReleaseToHouse(ctx, settlement.HouseRelease, wager.ID); err != nil {
			return nil, err
		}
	}

	outcomeBit := int16(bit)
	record := &entities.OutcomeRecord{
		WagerID:           wager.ID,
		TreasuryID:        wager.TreasuryID,
		PlayerIdentity:    wager.PlayerIdentity,
		Won:               settlement.PlayerWon,
		Forfeited:         false,
		StakeAtSettlement: wager.TotalStake,
		FeeAmount:         settlement.Fee,
		PlayerPayout:      settlement.PlayerPayout,
		HouseRelease:      settlement.HouseRelease,
		OutcomeBit:        &outcomeBit,
		Proof:             proof,
		SettledEpoch:      epoch,
	}
	if err := s.recorder.Record(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

// ForfeitWager refunds the full escrow once the dispute delay has elapsed
func (s *wagerService) ForfeitWager(ctx context.Context, wagerID uuid.UUID) (*entities.OutcomeRecord, error) {
	wager, err := s.wagerRepo.GetByIDForUpdate(ctx, wagerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wager: %w", err)
	}
	if wager == nil {
		return nil, entities.ErrWagerNotFound
	}
	if !wager.IsOpen() {
		return nil, entities.ErrAlreadySettled
	}

	epoch, err := s.epochClock.CurrentEpoch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read epoch: %w", err)
	}
	if !wager.CanForfeitAt(epoch, s.disputeDelayEpochs) {
		return nil, entities.ErrDisputeTooEarly
	}
	if wager.TotalStake <= 0 {
		return nil, entities.ErrAlreadySettled
	}

	settlement := CalculateForfeit(wager)

	if err := s.wagerRepo.Settle(ctx, wager.ID, entities.WagerStatusForfeited, wager.TotalStake); err != nil {
		return nil, fmt.Errorf("failed to forfeit wager %s: %w", wager.ID, err)
	}
	if err := s.accountService.CreditFromWager(ctx, wager.PlayerIdentity, settlement.PlayerPayout, wager.ID, entities.TransactionTypeWagerRefund); err != nil {
		return nil, err
	}

	record := &entities.OutcomeRecord{
		WagerID:           wager.ID,
		TreasuryID:        wager.TreasuryID,
		PlayerIdentity:    wager.PlayerIdentity,
		Won:               true,
		Forfeited:         true,
		StakeAtSettlement: wager.TotalStake,
		PlayerPayout:      settlement.PlayerPayout,
		SettledEpoch:      epoch,
	}
	if err := s.recorder.Record(ctx, record); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"wagerID":      wager.ID,
		"player":       wager.PlayerIdentity,
		"refund":       settlement.PlayerPayout,
		"createdEpoch": wager.CreatedEpoch,
		"epoch":        epoch,
	}).Info("Wager forfeited")

	return record, nil
}

// GetWager returns a wager or ErrWagerNotFound
func (s *wagerService) GetWager(ctx context.Context, wagerID uuid.UUID) (*entities.Wager, error) {
	wager, err := s.wagerRepo.GetByID(ctx, wagerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wager: %w", err)
	}
	if wager == nil {
		return nil, entities.ErrWagerNotFound
	}
	return wager, nil
}

// ListOpenWagers returns a player's open wagers
func (s *wagerService) ListOpenWagers(ctx context.Context, player string) ([]*entities.Wager, error) {
	wagers, err := s.wagerRepo.ListOpenByPlayer(ctx, player)
	if err != nil {
		return nil, fmt.Errorf("failed to list open wagers: %w", err)
	}
	return wagers, nil
}

// GetOutcome returns the outcome of a settled wager. An open wager has none
// and yields ErrWagerNotFound.
func (s *wagerService) GetOutcome(ctx context.Context, wagerID uuid.UUID) (*entities.OutcomeRecord, error) {
	record, err := s.outcomeRepo.GetByWager(ctx, wagerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get outcome: %w", err)
	}
	if record == nil {
		return nil, entities.ErrWagerNotFound
	}
	return record, nil
}

// ListOutcomes returns a player's most recent outcomes
func (s *wagerService) ListOutcomes(ctx context.Context, player string, limit int) ([]*entities.OutcomeRecord, error) {
	records, err := s.outcomeRepo.ListByPlayer(ctx, player, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list outcomes: %w", err)
	}
	return records, nil
}

// lockOpenWager loads a wager with its row locked and rejects anything not open
func (s *wagerService) lockOpenWager(ctx context.Context, wagerID uuid.UUID) (*entities.Wager, error) {
	wager, err := s.wagerRepo.GetByIDForUpdate(ctx, wagerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wager: %w", err)
	}
	if wager == nil {
		return nil, entities.ErrWagerNotFound
	}
	if !wager.IsOpen() || wager.TotalStake <= 0 {
		return nil, entities.ErrAlreadySettled
	}
	return wager, nil
}
