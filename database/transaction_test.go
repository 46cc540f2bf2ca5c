package database_test

import (
	"context"
	"errors"
	"testing"

	"coinflip/repository/testutil"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTransaction(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	countTreasuries := func() int {
		var n int
		require.NoError(t, testDB.DB.QueryRow(ctx, `SELECT COUNT(*) FROM house_treasuries`).Scan(&n))
		return n
	}

	t.Run("commits on success", func(t *testing.T) {
		err := testDB.DB.WithTransaction(ctx, func(tx pgx.Tx) error {
			_, err := tx.Exec(ctx, `INSERT INTO house_treasuries (id, house_identity, verification_key, min_stake, max_stake, base_fee_rate_bp, discount_fee_rate_bp) VALUES (1, 'house', '\x01', 1, 10, 100, 50)`)
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, 1, countTreasuries())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := testDB.DB.WithTransaction(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, `INSERT INTO house_treasuries (id, house_identity, verification_key, min_stake, max_stake, base_fee_rate_bp, discount_fee_rate_bp) VALUES (2, 'house', '\x01', 1, 10, 100, 50)`); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, countTreasuries())
	})
}
