package services

import (
	"context"
	"testing"

	"coinflip/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditService_ConservationReport(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	service := NewAuditService(mocks.TreasuryRepo, mocks.PlayerRepo, mocks.WagerRepo, mocks.BalanceHistoryRepo)

	treasury := NewTestTreasury()
	treasury.AvailableBalance = 90000
	treasury.AccumulatedFees = 100

	mocks.TreasuryRepo.On("Get", ctx).Return(treasury, nil)
	mocks.PlayerRepo.On("SumBalances", ctx).Return(int64(29900), nil)
	mocks.WagerRepo.On("SumOpenEscrow", ctx).Return(int64(20000), nil)
	mocks.BalanceHistoryRepo.On("SumByTransactionTypes", ctx, entities.InflowTypes()).Return(int64(150000), nil)
	mocks.BalanceHistoryRepo.On("SumByTransactionTypes", ctx, entities.OutflowTypes()).Return(int64(-10000), nil)

	report, err := service.ConservationReport(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(150000), report.TotalDeposited)
	assert.Equal(t, int64(10000), report.TotalWithdrawn)
	assert.Equal(t, int64(140000), report.Held())
	assert.True(t, report.IsBalanced())
	assert.Zero(t, report.Discrepancy())
}

func TestAuditService_ConservationReport_NotInitialized(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	service := NewAuditService(mocks.TreasuryRepo, mocks.PlayerRepo, mocks.WagerRepo, mocks.BalanceHistoryRepo)
	mocks.TreasuryRepo.On("Get", ctx).Return(nil, nil)

	_, err := service.ConservationReport(ctx)
	assert.ErrorIs(t, err, entities.ErrTreasuryNotInitialized)
}
