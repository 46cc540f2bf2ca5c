package repository

import (
	"context"
	"testing"

	"coinflip/domain/entities"
	"coinflip/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceHistoryRepository_Record(t *testing.T) {
	testDB, wagerRepo := setupWagerRepository(t)
	repo := NewBalanceHistoryRepository(testDB.DB, testutil.TestTreasuryID)
	ctx := context.Background()

	t.Run("successful record creation", func(t *testing.T) {
		history := testutil.CreateTestBalanceHistory("alice", entities.TransactionTypeWithdrawal)

		require.NoError(t, repo.Record(ctx, history))
		assert.NotZero(t, history.ID)
		assert.False(t, history.CreatedAt.IsZero())
	})

	t.Run("record with nil metadata", func(t *testing.T) {
		history := testutil.CreateTestBalanceHistory("alice", entities.TransactionTypeWithdrawal)
		history.TransactionMetadata = nil

		require.NoError(t, repo.Record(ctx, history))
		assert.NotZero(t, history.ID)
	})

	t.Run("record linked to a wager", func(t *testing.T) {
		wager := testutil.CreateTestWager("alice", 5000, 0)
		require.NoError(t, wagerRepo.Create(ctx, wager))

		history := testutil.CreateTestBalanceHistoryWithAmounts("alice", 10000, 5000, -5000, entities.TransactionTypeStakeReserve)
		history.WagerID = &wager.ID
		require.NoError(t, repo.Record(ctx, history))

		entries, err := repo.GetByAccount(ctx, "alice", 1)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.NotNil(t, entries[0].WagerID)
		assert.Equal(t, wager.ID, *entries[0].WagerID)
		assert.Equal(t, "test", entries[0].TransactionMetadata["source"])
	})

	t.Run("inconsistent amounts rejected by schema", func(t *testing.T) {
		history := testutil.CreateTestBalanceHistoryWithAmounts("alice", 100, 50, -10, entities.TransactionTypeWithdrawal)
		assert.Error(t, repo.Record(ctx, history))
	})
}

func TestBalanceHistoryRepository_SumByTransactionTypes(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	createTestTreasury(t, NewTreasuryRepository(testDB.DB, testutil.TestTreasuryID), 0)
	repo := NewBalanceHistoryRepository(testDB.DB, testutil.TestTreasuryID)
	ctx := context.Background()

	entries := []*entities.BalanceHistory{
		testutil.CreateTestBalanceHistoryWithAmounts("alice", 0, 5000, 5000, entities.TransactionTypeDeposit),
		testutil.CreateTestBalanceHistoryWithAmounts(entities.AccountHouseAvailable, 0, 9000, 9000, entities.TransactionTypeHouseTopUp),
		testutil.CreateTestBalanceHistoryWithAmounts("alice", 5000, 3000, -2000, entities.TransactionTypeWithdrawal),
		testutil.CreateTestBalanceHistoryWithAmounts(entities.AccountHouseFees, 100, 0, -100, entities.TransactionTypeFeeClaim),
	}
	for _, e := range entries {
		require.NoError(t, repo.Record(ctx, e))
	}

	inflow, err := repo.SumByTransactionTypes(ctx, entities.InflowTypes())
	require.NoError(t, err)
	assert.Equal(t, int64(14000), inflow)

	outflow, err := repo.SumByTransactionTypes(ctx, entities.OutflowTypes())
	require.NoError(t, err)
	assert.Equal(t, int64(-2100), outflow)

	none, err := repo.SumByTransactionTypes(ctx, []entities.TransactionType{entities.TransactionTypeWagerPayout})
	require.NoError(t, err)
	assert.Zero(t, none)
}
