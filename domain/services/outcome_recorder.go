package services

import (
	"context"
	"fmt"

	"coinflip/domain/entities"
	"coinflip/domain/events"
	"coinflip/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// OutcomeRecorder appends terminal outcomes to the log and announces them
type OutcomeRecorder struct {
	outcomeRepo    interfaces.OutcomeRecordRepository
	eventPublisher interfaces.EventPublisher
}

// NewOutcomeRecorder creates an outcome recorder
func NewOutcomeRecorder(outcomeRepo interfaces.OutcomeRecordRepository, eventPublisher interfaces.EventPublisher) *OutcomeRecorder {
	return &OutcomeRecorder{
		outcomeRepo:    outcomeRepo,
		eventPublisher: eventPublisher,
	}
}

// Record appends the outcome and emits a WagerSettledEvent
func (r *OutcomeRecorder) Record(ctx context.Context, record *entities.OutcomeRecord) error {
	if !record.IsBalanced() {
		return fmt.Errorf("outcome for wager %s does not distribute its stake: fee %d + payout %d + release %d != %d",
			record.WagerID, record.FeeAmount, record.PlayerPayout, record.HouseRelease, record.StakeAtSettlement)
	}

	if err := r.outcomeRepo.Append(ctx, record); err != nil {
		return fmt.Errorf("failed to append outcome record: %w", err)
	}

	event := events.WagerSettledEvent{
		WagerID:           record.WagerID.String(),
		TreasuryID:        record.TreasuryID,
		PlayerIdentity:    record.PlayerIdentity,
		Status:            record.Status(),
		Won:               record.Won,
		Forfeited:         record.Forfeited,
		StakeAtSettlement: record.StakeAtSettlement,
		FeeAmount:         record.FeeAmount,
		PlayerPayout:      record.PlayerPayout,
		HouseRelease:      record.HouseRelease,
		SettledEpoch:      record.SettledEpoch,
	}
	log.WithFields(log.Fields{
		"wagerID":   event.WagerID,
		"status":    event.Status,
		"won":       event.Won,
		"stake":     event.StakeAtSettlement,
		"fee":       event.FeeAmount,
		"forfeited": event.Forfeited,
	}).Debug("Publishing WagerSettledEvent")
	if err := r.eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish wager settled event")
	}

	return nil
}
