package services

import (
	"math"
	"testing"

	"coinflip/domain/entities"

	"github.com/stretchr/testify/assert"
)

func TestFeeAmount(t *testing.T) {
	tests := []struct {
		name     string
		stake    int64
		rateBP   int64
		expected int64
	}{
		{"one percent of ten thousand", 10000, 100, 100},
		{"floors fractional fees", 999, 100, 9},
		{"zero rate", 10000, 0, 0},
		{"zero stake", 0, 100, 0},
		{"negative stake", -10, 100, 0},
		{"full rate takes the stake", 12345, 10000, 12345},
		{"rate above maximum is capped", 12345, 20000, 12345},
		{"large stake does not overflow", math.MaxInt64, 10000, math.MaxInt64},
		{"large stake small rate", math.MaxInt64, 1, math.MaxInt64 / 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FeeAmount(tt.stake, tt.rateBP))
		})
	}
}

func TestFeeAmount_Monotonic(t *testing.T) {
	stakes := []int64{0, 1, 99, 100, 101, 5000, 10000, 123456789, math.MaxInt64 / 3}
	rates := []int64{0, 1, 50, 99, 100, 250, 9999, 10000}

	for _, rate := range rates {
		prev := int64(0)
		for _, stake := range stakes {
			fee := FeeAmount(stake, rate)
			assert.GreaterOrEqual(t, fee, prev, "fee must not decrease with stake (rate=%d stake=%d)", rate, stake)
			assert.LessOrEqual(t, fee, stake)
			prev = fee
		}
	}

	for _, stake := range stakes {
		prev := int64(0)
		for _, rate := range rates {
			fee := FeeAmount(stake, rate)
			assert.GreaterOrEqual(t, fee, prev, "fee must not decrease with rate (rate=%d stake=%d)", rate, stake)
			prev = fee
		}
	}
}

func TestCalculateResolution(t *testing.T) {
	wager := &entities.Wager{
		PlayerStake: 10000,
		TotalStake:  20000,
		FeeRateBP:   100,
		FeeBasis:    entities.FeeBasisPlayerStake,
	}

	t.Run("player win pays stake minus fee", func(t *testing.T) {
		s := CalculateResolution(wager, true)
		assert.True(t, s.PlayerWon)
		assert.Equal(t, int64(100), s.Fee)
		assert.Equal(t, int64(19900), s.PlayerPayout)
		assert.Zero(t, s.HouseRelease)
	})

	t.Run("house win releases everything without fee", func(t *testing.T) {
		s := CalculateResolution(wager, false)
		assert.False(t, s.PlayerWon)
		assert.Zero(t, s.Fee)
		assert.Zero(t, s.PlayerPayout)
		assert.Equal(t, int64(20000), s.HouseRelease)
	})

	t.Run("total stake basis", func(t *testing.T) {
		totalBasis := *wager
		totalBasis.FeeBasis = entities.FeeBasisTotalStake
		s := CalculateResolution(&totalBasis, true)
		assert.Equal(t, int64(200), s.Fee)
		assert.Equal(t, int64(19800), s.PlayerPayout)
	})

	t.Run("distribution always sums to escrow", func(t *testing.T) {
		for _, rate := range []int64{0, 1, 333, 10000} {
			w := *wager
			w.FeeRateBP = rate
			for _, won := range []bool{true, false} {
				s := CalculateResolution(&w, won)
				assert.Equal(t, w.TotalStake, s.Fee+s.PlayerPayout+s.HouseRelease)
			}
		}
	})
}

func TestCalculateForfeit(t *testing.T) {
	s := CalculateForfeit(&entities.Wager{PlayerStake: 10000, TotalStake: 20000, FeeRateBP: 100})
	assert.True(t, s.PlayerWon)
	assert.Zero(t, s.Fee)
	assert.Equal(t, int64(20000), s.PlayerPayout)
}
