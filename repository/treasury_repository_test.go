package repository

import (
	"context"
	"sync"
	"testing"

	"coinflip/domain/entities"
	"coinflip/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestTreasury(t *testing.T, repo *TreasuryRepository, available int64) {
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, testutil.CreateTestTreasury()))
	if available > 0 {
		_, err := repo.CreditAvailable(ctx, available)
		require.NoError(t, err)
	}
}

func TestTreasuryRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewTreasuryRepository(testDB.DB, testutil.TestTreasuryID)
	ctx := context.Background()

	t.Run("not initialized", func(t *testing.T) {
		treasury, err := repo.Get(ctx)
		require.NoError(t, err)
		assert.Nil(t, treasury)
	})

	t.Run("create once", func(t *testing.T) {
		treasury := testutil.CreateTestTreasury()
		require.NoError(t, repo.Create(ctx, treasury))
		assert.Zero(t, treasury.AvailableBalance)
		assert.False(t, treasury.CreatedAt.IsZero())

		got, err := repo.Get(ctx)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, testutil.TestHouse, got.HouseIdentity)
		assert.Equal(t, entities.FeeBasisPlayerStake, got.FeeBasis)
		assert.Equal(t, []byte("test-verification-key"), got.VerificationKey)
	})

	t.Run("second create rejected", func(t *testing.T) {
		err := repo.Create(ctx, testutil.CreateTestTreasury())
		assert.ErrorIs(t, err, entities.ErrTreasuryAlreadyInitialized)
	})
}

func TestTreasuryRepository_Reserve(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewTreasuryRepository(testDB.DB, testutil.TestTreasuryID)
	ctx := context.Background()
	createTestTreasury(t, repo, 100000)

	balance, err := repo.Reserve(ctx, 60000)
	require.NoError(t, err)
	assert.Equal(t, int64(40000), balance)

	_, err = repo.Reserve(ctx, 40001)
	assert.ErrorIs(t, err, entities.ErrInsufficientHouseBalance)

	treasury, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(40000), treasury.AvailableBalance)
}

func TestTreasuryRepository_ConcurrentReserveNeverOverdraws(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewTreasuryRepository(testDB.DB, testutil.TestTreasuryID)
	ctx := context.Background()
	createTestTreasury(t, repo, 10000)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Reserve(ctx, 3000); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	treasury, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), treasury.AvailableBalance)
}

func TestTreasuryRepository_PoolsAreDisjoint(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewTreasuryRepository(testDB.DB, testutil.TestTreasuryID)
	ctx := context.Background()
	createTestTreasury(t, repo, 5000)

	fees, err := repo.CreditFees(ctx, 300)
	require.NoError(t, err)
	assert.Equal(t, int64(300), fees)

	drained, err := repo.DrainAvailable(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), drained)

	treasury, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Zero(t, treasury.AvailableBalance)
	assert.Equal(t, int64(300), treasury.AccumulatedFees)

	claimed, err := repo.DrainFees(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(300), claimed)

	claimed, err = repo.DrainFees(ctx)
	require.NoError(t, err)
	assert.Zero(t, claimed)
}

func TestTreasuryRepository_Updates(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewTreasuryRepository(testDB.DB, testutil.TestTreasuryID)
	ctx := context.Background()

	t.Run("before initialization", func(t *testing.T) {
		err := repo.UpdateFeeRates(ctx, 10, 5)
		assert.ErrorIs(t, err, entities.ErrTreasuryNotInitialized)
	})

	createTestTreasury(t, repo, 0)

	require.NoError(t, repo.UpdateFeeRates(ctx, 250, 125))
	require.NoError(t, repo.UpdateStakeBounds(ctx, 10, 20))
	require.NoError(t, repo.UpdateVerificationKey(ctx, []byte("rotated")))

	treasury, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(250), treasury.BaseFeeRateBP)
	assert.Equal(t, int64(125), treasury.DiscountFeeRateBP)
	assert.Equal(t, int64(10), treasury.MinStake)
	assert.Equal(t, int64(20), treasury.MaxStake)
	assert.Equal(t, []byte("rotated"), treasury.VerificationKey)

	t.Run("schema rejects rates above 10000", func(t *testing.T) {
		err := repo.UpdateFeeRates(ctx, 10001, 0)
		assert.Error(t, err)
	})
}
