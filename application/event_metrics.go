package application

import (
	"context"

	"coinflip/domain/events"
	"coinflip/infrastructure/observability"
)

// LocalHandlerRegistrar accepts in-process handlers for committed events
type LocalHandlerRegistrar interface {
	RegisterLocalHandler(eventType events.EventType, handler func(context.Context, events.Event) error)
}

// RegisterMetricsHandlers feeds committed events into the metrics provider.
// Handlers run after commit, so rolled back work is never counted.
func RegisterMetricsHandlers(registrar LocalHandlerRegistrar, metrics *observability.MetricsProvider) {
	registrar.RegisterLocalHandler(events.EventTypeWagerCreated, func(ctx context.Context, event events.Event) error {
		if e, ok := event.(events.WagerCreatedEvent); ok {
			metrics.RecordWagerCreated(e.TotalStake, e.Discounted)
		}
		return nil
	})

	registrar.RegisterLocalHandler(events.EventTypeWagerSettled, func(ctx context.Context, event events.Event) error {
		if e, ok := event.(events.WagerSettledEvent); ok {
			metrics.RecordWagerSettled(string(e.Status), e.Won, e.StakeAtSettlement, e.FeeAmount)
		}
		return nil
	})

	registrar.RegisterLocalHandler(events.EventTypeBalanceChange, func(ctx context.Context, event events.Event) error {
		if e, ok := event.(events.BalanceChangeEvent); ok {
			metrics.RecordBalanceTransaction(string(e.TransactionType))
		}
		return nil
	})
}
