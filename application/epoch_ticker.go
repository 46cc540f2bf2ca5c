package application

import (
	"context"
	"time"

	"coinflip/infrastructure/observability"
)

// EpochTicker advances the logical clock once per epoch duration
type EpochTicker struct {
	uowFactory UnitOfWorkFactory
	deps       Dependencies
}

// NewEpochTicker creates a new epoch ticker
func NewEpochTicker(uowFactory UnitOfWorkFactory, deps Dependencies) *EpochTicker {
	return &EpochTicker{
		uowFactory: uowFactory,
		deps:       deps,
	}
}

// Start begins ticking every epochDuration and returns a stop function
func (t *EpochTicker) Start(ctx context.Context, epochDuration time.Duration) func() {
	return runPeriodically(ctx, observability.WorkerEpochTicker, epochDuration, func(ctx context.Context) (int, error) {
		if _, err := t.Tick(ctx); err != nil {
			return 0, err
		}
		return 1, nil
	})
}

// Tick advances the clock by one epoch
func (t *EpochTicker) Tick(ctx context.Context) (int64, error) {
	var epoch int64
	err := runInTransaction(ctx, t.uowFactory, t.deps, true, func(svc *serviceSet) error {
		var err error
		epoch, err = svc.epochs.Tick(ctx)
		return err
	})
	return epoch, err
}
