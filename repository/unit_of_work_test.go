package repository

import (
	"context"
	"testing"

	"coinflip/domain/testhelpers"
	"coinflip/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_CommitFlushesEvents(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	publisher := &testhelpers.MockTransactionalEventPublisher{}
	publisher.On("Flush", mock.Anything).Return(nil).Once()

	uow := CreateTestUnitOfWork(testDB.DB, testutil.TestTreasuryID, publisher)
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.TreasuryRepository().Create(ctx, testutil.CreateTestTreasury()))
	require.NoError(t, uow.Commit())

	treasury, err := NewTreasuryRepository(testDB.DB, testutil.TestTreasuryID).Get(ctx)
	require.NoError(t, err)
	assert.NotNil(t, treasury)
	publisher.AssertExpectations(t)
	publisher.AssertNotCalled(t, "Discard")
}

func TestUnitOfWork_RollbackDiscardsEvents(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	publisher := &testhelpers.MockTransactionalEventPublisher{}
	publisher.On("Discard").Return().Once()

	uow := CreateTestUnitOfWork(testDB.DB, testutil.TestTreasuryID, publisher)
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.TreasuryRepository().Create(ctx, testutil.CreateTestTreasury()))
	require.NoError(t, uow.Rollback())

	treasury, err := NewTreasuryRepository(testDB.DB, testutil.TestTreasuryID).Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, treasury)
	publisher.AssertExpectations(t)

	// A second rollback is a no-op
	require.NoError(t, uow.Rollback())
}

func TestUnitOfWork_Lifecycle(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	publisher := &testhelpers.MockTransactionalEventPublisher{}
	publisher.On("Discard").Return().Maybe()

	uow := CreateTestUnitOfWork(testDB.DB, testutil.TestTreasuryID, publisher)

	assert.Panics(t, func() { uow.WagerRepository() })
	assert.Error(t, uow.Commit())

	require.NoError(t, uow.Begin(ctx))
	assert.Error(t, uow.Begin(ctx))
	assert.NotPanics(t, func() {
		uow.PlayerAccountRepository()
		uow.OutcomeRecordRepository()
		uow.BalanceHistoryRepository()
		uow.QualifyingItemRepository()
		uow.EpochRepository()
		uow.EventBus()
	})
	require.NoError(t, uow.Rollback())
}
