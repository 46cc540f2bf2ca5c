package repository

import (
	"context"
	"sync"
	"testing"

	"coinflip/domain/entities"
	"coinflip/repository/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupWagerRepository(t *testing.T) (*testutil.TestDatabase, *WagerRepository) {
	testDB := testutil.SetupTestDatabase(t)
	createTestTreasury(t, NewTreasuryRepository(testDB.DB, testutil.TestTreasuryID), 0)
	return testDB, NewWagerRepository(testDB.DB, testutil.TestTreasuryID)
}

func TestWagerRepository_CreateAndGet(t *testing.T) {
	_, repo := setupWagerRepository(t)
	ctx := context.Background()

	wager := testutil.CreateTestWager("alice", 10000, 3)
	wager.Discounted = true
	require.NoError(t, repo.Create(ctx, wager))
	assert.False(t, wager.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, wager.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, wager.ID, got.ID)
	assert.Equal(t, uint8(1), got.Guess)
	assert.Equal(t, int64(20000), got.TotalStake)
	assert.Equal(t, wager.PlayerSeed, got.PlayerSeed)
	assert.Equal(t, entities.WagerStatusOpen, got.Status)
	assert.True(t, got.Discounted)
	assert.Nil(t, got.SettledAt)

	missing, err := repo.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestWagerRepository_Settle(t *testing.T) {
	_, repo := setupWagerRepository(t)
	ctx := context.Background()

	wager := testutil.CreateTestWager("alice", 10000, 0)
	require.NoError(t, repo.Create(ctx, wager))

	t.Run("stale expected stake", func(t *testing.T) {
		err := repo.Settle(ctx, wager.ID, entities.WagerStatusResolved, 19999)
		assert.ErrorIs(t, err, entities.ErrAlreadySettled)
	})

	t.Run("non-terminal status", func(t *testing.T) {
		err := repo.Settle(ctx, wager.ID, entities.WagerStatusOpen, 20000)
		assert.Error(t, err)
	})

	t.Run("settles once", func(t *testing.T) {
		require.NoError(t, repo.Settle(ctx, wager.ID, entities.WagerStatusResolved, 20000))

		got, err := repo.GetByID(ctx, wager.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.WagerStatusResolved, got.Status)
		assert.Zero(t, got.TotalStake)
		assert.NotNil(t, got.SettledAt)

		err = repo.Settle(ctx, wager.ID, entities.WagerStatusForfeited, 20000)
		assert.ErrorIs(t, err, entities.ErrAlreadySettled)
	})
}

func TestWagerRepository_ConcurrentSettleHasOneWinner(t *testing.T) {
	_, repo := setupWagerRepository(t)
	ctx := context.Background()

	wager := testutil.CreateTestWager("alice", 10000, 0)
	require.NoError(t, repo.Create(ctx, wager))

	var wg sync.WaitGroup
	results := make(chan error, 8)
	for i := 0; i < 8; i++ {
		status := entities.WagerStatusResolved
		if i%2 == 1 {
			status = entities.WagerStatusForfeited
		}
		wg.Add(1)
		go func(status entities.WagerStatus) {
			defer wg.Done()
			results <- repo.Settle(ctx, wager.ID, status, 20000)
		}(status)
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, entities.ErrAlreadySettled)
	}
	assert.Equal(t, 1, wins)
}

func TestWagerRepository_Listings(t *testing.T) {
	_, repo := setupWagerRepository(t)
	ctx := context.Background()

	early := testutil.CreateTestWager("alice", 1000, 2)
	late := testutil.CreateTestWager("alice", 2000, 9)
	other := testutil.CreateTestWager("bob", 3000, 5)
	settled := testutil.CreateTestWager("alice", 4000, 1)
	for _, w := range []*entities.Wager{early, late, other, settled} {
		require.NoError(t, repo.Create(ctx, w))
	}
	require.NoError(t, repo.Settle(ctx, settled.ID, entities.WagerStatusForfeited, settled.TotalStake))

	open, err := repo.ListOpenForKey(ctx, []byte("test-verification-key"), 10)
	require.NoError(t, err)
	require.Len(t, open, 3)
	assert.Equal(t, early.ID, open[0].ID)

	mine, err := repo.ListOpenByPlayer(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	forfeitable, err := repo.ListForfeitable(ctx, 5, 10)
	require.NoError(t, err)
	require.Len(t, forfeitable, 2)
	assert.Equal(t, early.ID, forfeitable[0].ID)
	assert.Equal(t, other.ID, forfeitable[1].ID)

	escrow, err := repo.SumOpenEscrow(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(12000), escrow)

	// Wagers snapshotted under another key are listed apart
	rotated := testutil.CreateTestWager("carol", 1000, 3)
	rotated.VerificationKey = []byte("rotated-key")
	require.NoError(t, repo.Create(ctx, rotated))

	open, err = repo.ListOpenForKey(ctx, []byte("rotated-key"), 10)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, rotated.ID, open[0].ID)

	open, err = repo.ListOpenForKey(ctx, []byte("test-verification-key"), 1)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, early.ID, open[0].ID)
}
