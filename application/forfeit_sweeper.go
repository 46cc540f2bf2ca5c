package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coinflip/domain/entities"
	"coinflip/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

const sweepBatchSize = 100

// ForfeitSweeper forfeits open wagers whose dispute epoch has passed.
// Any caller may forfeit an overdue wager; the sweeper only automates it.
type ForfeitSweeper struct {
	uowFactory UnitOfWorkFactory
	wagers     WagerHandler
	deps       Dependencies
}

// NewForfeitSweeper creates a new forfeit sweeper
func NewForfeitSweeper(uowFactory UnitOfWorkFactory, wagers WagerHandler, deps Dependencies) *ForfeitSweeper {
	return &ForfeitSweeper{
		uowFactory: uowFactory,
		wagers:     wagers,
		deps:       deps,
	}
}

// Start begins sweeping every interval and returns a stop function
func (w *ForfeitSweeper) Start(ctx context.Context, interval time.Duration) func() {
	return runPeriodically(ctx, observability.WorkerForfeitSweeper, interval, w.Sweep)
}

// Sweep forfeits one batch of overdue wagers and returns how many it settled
func (w *ForfeitSweeper) Sweep(ctx context.Context) (int, error) {
	var overdue []*entities.Wager
	err := runInTransaction(ctx, w.uowFactory, w.deps, false, func(svc *serviceSet) error {
		current, err := svc.epochs.CurrentEpoch(ctx)
		if err != nil {
			return err
		}
		overdue, err = svc.wagerLog.ListForfeitable(ctx, current-w.deps.DisputeDelayEpochs, sweepBatchSize)
		if err != nil {
			return fmt.Errorf("failed to list forfeitable wagers: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	settled := 0
	for _, wager := range overdue {
		_, err := w.wagers.ForfeitWager(ctx, wager.ID)
		switch {
		case err == nil:
			settled++
		case errors.Is(err, entities.ErrAlreadySettled), errors.Is(err, entities.ErrDisputeTooEarly):
			// Lost a race with the resolver or the clock; nothing to do
			log.WithFields(log.Fields{
				"wagerID": wager.ID,
				"reason":  err,
			}).Debug("Skipping wager during forfeit sweep")
		default:
			log.WithFields(log.Fields{
				"wagerID": wager.ID,
				"error":   err,
			}).Error("Failed to forfeit wager")
		}
	}

	if len(overdue) > 0 {
		log.WithFields(log.Fields{
			"candidates": len(overdue),
			"forfeited":  settled,
		}).Info("Forfeit sweep completed")
	}
	return settled, nil
}
