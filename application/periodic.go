package application

import (
	"context"
	"time"

	"coinflip/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// Worker outcomes reported to metrics
const (
	workerOutcomeOK    = "ok"
	workerOutcomeError = "error"
	workerOutcomeIdle  = "idle"
)

// runPeriodically calls run every interval until ctx is cancelled or the returned stop is called.
// run reports how many items it processed.
func runPeriodically(ctx context.Context, name string, interval time.Duration, run func(ctx context.Context) (int, error)) func() {
	stopChan := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		log.WithFields(log.Fields{
			"worker":   name,
			"interval": interval,
		}).Info("Worker started")

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.WithField("worker", name).Info("Worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.WithField("worker", name).Info("Worker shutting down (stop requested)...")
				return
			case <-ticker.C:
				processed, err := run(ctx)
				outcome := workerOutcomeOK
				switch {
				case err != nil:
					outcome = workerOutcomeError
					log.WithFields(log.Fields{
						"worker": name,
						"error":  err,
					}).Error("Worker run failed")
				case processed == 0:
					outcome = workerOutcomeIdle
				}
				observability.GetMetrics().RecordWorkerRun(name, outcome)
			}
		}
	}()

	return func() {
		close(stopChan)
		<-done
	}
}
