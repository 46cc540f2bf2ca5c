package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coinflip/domain/entities"
	"coinflip/domain/interfaces"
	"coinflip/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

const resolveBatchSize = 100

// HouseResolverWorker signs and resolves open wagers on behalf of the house
type HouseResolverWorker struct {
	uowFactory UnitOfWorkFactory
	wagers     WagerHandler
	signer     interfaces.Signer
	deps       Dependencies
}

// NewHouseResolverWorker creates a resolver signing with the house key
func NewHouseResolverWorker(uowFactory UnitOfWorkFactory, wagers WagerHandler, signer interfaces.Signer, deps Dependencies) *HouseResolverWorker {
	return &HouseResolverWorker{
		uowFactory: uowFactory,
		wagers:     wagers,
		signer:     signer,
		deps:       deps,
	}
}

// Start begins resolving every interval and returns a stop function
func (w *HouseResolverWorker) Start(ctx context.Context, interval time.Duration) func() {
	return runPeriodically(ctx, observability.WorkerHouseResolver, interval, w.ResolvePending)
}

// ResolvePending resolves one batch of open wagers snapshotted under the signer's key
// and returns how many it settled. Wagers under any other key are left for the forfeit path.
func (w *HouseResolverWorker) ResolvePending(ctx context.Context) (int, error) {
	publicKey := w.signer.PublicKey()
	var open []*entities.Wager
	err := runInTransaction(ctx, w.uowFactory, w.deps, false, func(svc *serviceSet) error {
		var err error
		open, err = svc.wagerLog.ListOpenForKey(ctx, publicKey, resolveBatchSize)
		if err != nil {
			return fmt.Errorf("failed to list open wagers: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	resolved := 0
	for _, wager := range open {
		proof, err := w.signer.Sign(wager.RandomnessMessage())
		if err != nil {
			return resolved, fmt.Errorf("failed to sign wager %s: %w", wager.ID, err)
		}

		_, err = w.wagers.ResolveWager(ctx, wager.ID, proof)
		switch {
		case err == nil:
			resolved++
		case errors.Is(err, entities.ErrAlreadySettled):
			log.WithField("wagerID", wager.ID).Debug("Wager settled before the resolver reached it")
		default:
			log.WithFields(log.Fields{
				"wagerID": wager.ID,
				"error":   err,
			}).Error("Failed to resolve wager")
		}
	}
	return resolved, nil
}
