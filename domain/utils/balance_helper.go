package utils

import (
	"context"
	"fmt"

	"coinflip/domain/entities"
	"coinflip/domain/events"
	"coinflip/domain/interfaces"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// RecordBalanceChange records a balance history entry and emits a BalanceChangeEvent.
// Every movement on a player account or treasury pool goes through here.
func RecordBalanceChange(ctx context.Context, balanceHistoryRepo interfaces.BalanceHistoryRepository, eventPublisher interfaces.EventPublisher, history *entities.BalanceHistory) error {
	if err := history.ValidateTransaction(); err != nil {
		return fmt.Errorf("invalid balance change on %s: %w", history.Account, err)
	}

	if err := balanceHistoryRepo.Record(ctx, history); err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}

	event := events.BalanceChangeEvent{
		TreasuryID:      history.TreasuryID,
		Account:         history.Account,
		OldBalance:      history.BalanceBefore,
		NewBalance:      history.BalanceAfter,
		TransactionType: history.TransactionType,
		ChangeAmount:    history.ChangeAmount,
	}
	log.WithFields(log.Fields{
		"treasuryID":      event.TreasuryID,
		"account":         event.Account,
		"oldBalance":      event.OldBalance,
		"newBalance":      event.NewBalance,
		"transactionType": event.TransactionType,
		"changeAmount":    event.ChangeAmount,
	}).Debug("Publishing BalanceChangeEvent")
	if err := eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish balance change event")
	}

	return nil
}

// NewBalanceChange builds a history entry from the balance after a change.
// The repositories return post-update balances, so the before value is derived.
func NewBalanceChange(treasuryID int64, account string, balanceAfter, change int64, txType entities.TransactionType, wagerID *uuid.UUID) *entities.BalanceHistory {
	history := &entities.BalanceHistory{
		TreasuryID:          treasuryID,
		Account:             account,
		BalanceBefore:       balanceAfter - change,
		BalanceAfter:        balanceAfter,
		ChangeAmount:        change,
		TransactionType:     txType,
		TransactionMetadata: map[string]any{},
		WagerID:             wagerID,
	}
	if wagerID != nil {
		history.TransactionMetadata["wager_id"] = wagerID.String()
	}
	return history
}
