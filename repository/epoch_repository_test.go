package repository

import (
	"context"
	"testing"

	"coinflip/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEpochRepository_Advance(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewEpochRepository(testDB.DB, testutil.TestTreasuryID)
	ctx := context.Background()

	epoch, err := repo.CurrentEpoch(ctx)
	require.NoError(t, err)
	assert.Zero(t, epoch)

	epoch, err = repo.Advance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), epoch)

	epoch, err = repo.Advance(ctx, 16)
	require.NoError(t, err)
	assert.Equal(t, int64(17), epoch)

	current, err := repo.CurrentEpoch(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(17), current)

	_, err = repo.Advance(ctx, 0)
	assert.Error(t, err)
}
