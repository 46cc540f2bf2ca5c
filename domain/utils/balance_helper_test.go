package utils

import (
	"context"
	"errors"
	"testing"

	"coinflip/domain/entities"
	"coinflip/domain/events"
	"coinflip/domain/testhelpers"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRecordBalanceChange(t *testing.T) {
	ctx := context.Background()

	mockBalanceHistoryRepo := new(testhelpers.MockBalanceHistoryRepository)
	mockEventPublisher := new(testhelpers.MockEventPublisher)

	mockBalanceHistoryRepo.On("Record", ctx, mock.Anything).Return(nil)
	mockEventPublisher.On("Publish", mock.MatchedBy(func(event interface{}) bool {
		e, ok := event.(events.BalanceChangeEvent)
		return ok && e.Account == "alice" && e.ChangeAmount == 500
	})).Return(nil)

	history := &entities.BalanceHistory{
		TreasuryID:      1,
		Account:         "alice",
		BalanceBefore:   1000,
		BalanceAfter:    1500,
		ChangeAmount:    500,
		TransactionType: entities.TransactionTypeDeposit,
	}

	err := RecordBalanceChange(ctx, mockBalanceHistoryRepo, mockEventPublisher, history)
	assert.NoError(t, err)

	mockBalanceHistoryRepo.AssertExpectations(t)
	mockEventPublisher.AssertExpectations(t)
}

func TestRecordBalanceChange_RejectsInconsistentEntry(t *testing.T) {
	mockBalanceHistoryRepo := new(testhelpers.MockBalanceHistoryRepository)
	mockEventPublisher := new(testhelpers.MockEventPublisher)

	history := &entities.BalanceHistory{
		Account:         "alice",
		BalanceBefore:   1000,
		BalanceAfter:    1400,
		ChangeAmount:    500,
		TransactionType: entities.TransactionTypeDeposit,
	}

	err := RecordBalanceChange(context.Background(), mockBalanceHistoryRepo, mockEventPublisher, history)
	assert.Error(t, err)
	mockBalanceHistoryRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	mockEventPublisher.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestRecordBalanceChange_RepositoryError(t *testing.T) {
	ctx := context.Background()
	mockBalanceHistoryRepo := new(testhelpers.MockBalanceHistoryRepository)
	mockEventPublisher := new(testhelpers.MockEventPublisher)

	mockBalanceHistoryRepo.On("Record", ctx, mock.Anything).Return(errors.New("database error"))

	history := NewBalanceChange(1, "alice", 1500, 500, entities.TransactionTypeDeposit, nil)
	err := RecordBalanceChange(ctx, mockBalanceHistoryRepo, mockEventPublisher, history)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to record balance history")
	mockEventPublisher.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestRecordBalanceChange_PublishErrorIsSwallowed(t *testing.T) {
	ctx := context.Background()
	mockBalanceHistoryRepo := new(testhelpers.MockBalanceHistoryRepository)
	mockEventPublisher := new(testhelpers.MockEventPublisher)

	mockBalanceHistoryRepo.On("Record", ctx, mock.Anything).Return(nil)
	mockEventPublisher.On("Publish", mock.Anything).Return(errors.New("nats down"))

	history := NewBalanceChange(1, entities.AccountHouseFees, 100, 100, entities.TransactionTypeFeeCredit, nil)
	assert.NoError(t, RecordBalanceChange(ctx, mockBalanceHistoryRepo, mockEventPublisher, history))
}

func TestNewBalanceChange(t *testing.T) {
	wagerID := uuid.New()

	history := NewBalanceChange(7, entities.AccountHouseAvailable, 90000, -10000, entities.TransactionTypeHouseReserve, &wagerID)

	assert.Equal(t, int64(7), history.TreasuryID)
	assert.Equal(t, int64(100000), history.BalanceBefore)
	assert.Equal(t, int64(90000), history.BalanceAfter)
	assert.Equal(t, int64(-10000), history.ChangeAmount)
	assert.Equal(t, wagerID.String(), history.TransactionMetadata["wager_id"])
	assert.True(t, history.IsHouseAccount())
	assert.NoError(t, history.ValidateTransaction())
}
