package application

import (
	"context"
	"strings"
	"testing"

	"coinflip/config"
	"coinflip/domain/entities"
	"coinflip/domain/events"
	"coinflip/infrastructure/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRegistrar struct {
	handlers map[events.EventType][]func(context.Context, events.Event) error
}

func (r *recordingRegistrar) RegisterLocalHandler(eventType events.EventType, handler func(context.Context, events.Event) error) {
	if r.handlers == nil {
		r.handlers = map[events.EventType][]func(context.Context, events.Event) error{}
	}
	r.handlers[eventType] = append(r.handlers[eventType], handler)
}

func (r *recordingRegistrar) fire(t *testing.T, event events.Event) {
	t.Helper()
	for _, h := range r.handlers[event.Type()] {
		require.NoError(t, h(context.Background(), event))
	}
}

func TestRegisterMetricsHandlers(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true
	cfg.OTelExporterType = "prometheus"
	metrics := observability.NewMetricsProvider(cfg)
	require.NoError(t, metrics.Initialize(context.Background()))
	t.Cleanup(func() { _ = metrics.Shutdown(context.Background()) })

	registrar := &recordingRegistrar{}
	RegisterMetricsHandlers(registrar, metrics)

	assert.Len(t, registrar.handlers[events.EventTypeWagerCreated], 1)
	assert.Len(t, registrar.handlers[events.EventTypeWagerSettled], 1)
	assert.Len(t, registrar.handlers[events.EventTypeBalanceChange], 1)

	registrar.fire(t, events.WagerCreatedEvent{TotalStake: 20000})
	registrar.fire(t, events.WagerSettledEvent{Status: entities.WagerStatusResolved, Won: true, StakeAtSettlement: 20000, FeeAmount: 100})
	registrar.fire(t, events.BalanceChangeEvent{TransactionType: entities.TransactionTypeDeposit})

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)

	var names []string
	for _, family := range families {
		names = append(names, family.GetName())
	}
	joined := strings.Join(names, " ")
	assert.Contains(t, joined, "coinflip_wagers_created")
	assert.Contains(t, joined, "coinflip_wagers_settled")
	assert.Contains(t, joined, "coinflip_treasury_fees_collected")
	assert.Contains(t, joined, "coinflip_balance_transactions")
}

func TestRegisterMetricsHandlers_NilProvider(t *testing.T) {
	registrar := &recordingRegistrar{}
	RegisterMetricsHandlers(registrar, nil)

	assert.NotPanics(t, func() {
		registrar.fire(t, events.WagerCreatedEvent{TotalStake: 1})
		registrar.fire(t, events.WagerSettledEvent{Status: entities.WagerStatusForfeited})
	})
}
