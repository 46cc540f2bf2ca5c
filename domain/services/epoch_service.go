package services

import (
	"context"
	"fmt"

	"coinflip/domain/entities"
	"coinflip/domain/events"
	"coinflip/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// epochService implements the logical clock used by the dispute gate
type epochService struct {
	treasuryID     int64
	epochRepo      interfaces.EpochRepository
	treasuryRepo   interfaces.TreasuryRepository
	eventPublisher interfaces.EventPublisher
}

// NewEpochService creates an epoch service scoped to one treasury
func NewEpochService(
	treasuryID int64,
	epochRepo interfaces.EpochRepository,
	treasuryRepo interfaces.TreasuryRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.EpochService {
	return &epochService{
		treasuryID:     treasuryID,
		epochRepo:      epochRepo,
		treasuryRepo:   treasuryRepo,
		eventPublisher: eventPublisher,
	}
}

// CurrentEpoch returns the current logical epoch
func (s *epochService) CurrentEpoch(ctx context.Context) (int64, error) {
	epoch, err := s.epochRepo.CurrentEpoch(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get current epoch: %w", err)
	}
	return epoch, nil
}

// AdvanceEpoch moves the clock forward on the house's request
func (s *epochService) AdvanceEpoch(ctx context.Context, caller string, steps int64) (int64, error) {
	treasury, err := s.treasuryRepo.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get treasury: %w", err)
	}
	if treasury == nil {
		return 0, entities.ErrTreasuryNotInitialized
	}
	if !treasury.IsHouse(caller) {
		return 0, entities.ErrUnauthorized
	}
	if steps <= 0 {
		return 0, entities.ErrInvalidAmount
	}

	return s.advance(ctx, steps)
}

// Tick advances the clock by one epoch
func (s *epochService) Tick(ctx context.Context) (int64, error) {
	return s.advance(ctx, 1)
}

func (s *epochService) advance(ctx context.Context, steps int64) (int64, error) {
	epoch, err := s.epochRepo.Advance(ctx, steps)
	if err != nil {
		return 0, fmt.Errorf("failed to advance epoch: %w", err)
	}

	log.WithFields(log.Fields{
		"treasuryID": s.treasuryID,
		"epoch":      epoch,
		"steps":      steps,
	}).Info("Epoch advanced")

	if err := s.eventPublisher.Publish(events.EpochAdvancedEvent{TreasuryID: s.treasuryID, Epoch: epoch}); err != nil {
		log.WithError(err).Error("Failed to publish epoch advanced event")
	}
	return epoch, nil
}
