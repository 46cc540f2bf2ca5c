package entities

import (
	"math"
	"time"
)

// MaxFeeRateBP is 100% expressed in basis points.
const MaxFeeRateBP int64 = 10000

// MaxStakeLimit is the largest player stake whose doubled escrow still fits in an int64.
const MaxStakeLimit int64 = math.MaxInt64 / 2

// FeeBasis selects which stake the fee rate is applied to.
type FeeBasis string

const (
	// FeeBasisPlayerStake charges the rate on the player's half of the escrow.
	FeeBasisPlayerStake FeeBasis = "player_stake"
	// FeeBasisTotalStake charges the rate on the whole escrow.
	FeeBasisTotalStake FeeBasis = "total_stake"
)

// IsValid reports whether the basis is one of the known values
func (b FeeBasis) IsValid() bool {
	return b == FeeBasisPlayerStake || b == FeeBasisTotalStake
}

// HouseTreasury is the single configuration and funding record of a deployment.
// AvailableBalance backs new wagers; AccumulatedFees is a disjoint pool only
// the house can claim.
type HouseTreasury struct {
	ID                int64     `db:"id"`
	HouseIdentity     string    `db:"house_identity"`
	VerificationKey   []byte    `db:"verification_key"`
	AvailableBalance  int64     `db:"available_balance"`
	AccumulatedFees   int64     `db:"accumulated_fees"`
	MinStake          int64     `db:"min_stake"`
	MaxStake          int64     `db:"max_stake"`
	BaseFeeRateBP     int64     `db:"base_fee_rate_bp"`
	DiscountFeeRateBP int64     `db:"discount_fee_rate_bp"`
	FeeBasis          FeeBasis  `db:"fee_basis"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

// IsHouse checks whether the caller is the administrative principal
func (t *HouseTreasury) IsHouse(caller string) bool {
	return caller != "" && caller == t.HouseIdentity
}

// StakeInRange checks the inclusive stake bounds
func (t *HouseTreasury) StakeInRange(stake int64) bool {
	return stake >= t.MinStake && stake <= t.MaxStake && stake <= MaxStakeLimit
}

// CanMatch reports whether the available pool can back a house stake of amount
func (t *HouseTreasury) CanMatch(amount int64) bool {
	return amount <= t.AvailableBalance
}

// FeeRateFor returns the rate a new wager snapshots
func (t *HouseTreasury) FeeRateFor(discounted bool) int64 {
	if discounted {
		return t.DiscountFeeRateBP
	}
	return t.BaseFeeRateBP
}

// ValidateFeeRate checks a basis-point rate
func ValidateFeeRate(rateBP int64) error {
	if rateBP < 0 || rateBP > MaxFeeRateBP {
		return ErrRateTooHigh
	}
	return nil
}

// ValidateStakeBounds checks a min/max stake pair
func ValidateStakeBounds(minStake, maxStake int64) error {
	if minStake <= 0 || minStake > maxStake || maxStake > MaxStakeLimit {
		return ErrInvalidStakeBounds
	}
	return nil
}
