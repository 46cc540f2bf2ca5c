package services

import (
	"math/bits"

	"coinflip/domain/entities"
)

// FeeAmount returns floor(stake * rateBP / 10000). The product is taken in
// 128 bits so large stakes cannot overflow before the division.
func FeeAmount(stake, rateBP int64) int64 {
	if stake <= 0 || rateBP <= 0 {
		return 0
	}
	if rateBP > entities.MaxFeeRateBP {
		rateBP = entities.MaxFeeRateBP
	}

	hi, lo := bits.Mul64(uint64(stake), uint64(rateBP))
	quo, _ := bits.Div64(hi, lo, uint64(entities.MaxFeeRateBP))
	return int64(quo)
}

// Settlement describes where a wager's escrow goes.
// Fee + PlayerPayout + HouseRelease always equals the escrow settled.
type Settlement struct {
	PlayerWon    bool
	Fee          int64
	PlayerPayout int64
	HouseRelease int64
}

// CalculateResolution splits the escrow of a resolved wager. The fee is only
// taken when the player wins; a house win releases the whole escrow.
func CalculateResolution(wager *entities.Wager, playerWon bool) Settlement {
	if !playerWon {
		return Settlement{HouseRelease: wager.TotalStake}
	}

	fee := FeeAmount(wager.FeeBase(), wager.FeeRateBP)
	return Settlement{
		PlayerWon:    true,
		Fee:          fee,
		PlayerPayout: wager.TotalStake - fee,
	}
}

// CalculateForfeit refunds the whole escrow to the player
func CalculateForfeit(wager *entities.Wager) Settlement {
	return Settlement{
		PlayerWon:    true,
		PlayerPayout: wager.TotalStake,
	}
}
