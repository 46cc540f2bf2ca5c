package entities

import (
	"time"

	"github.com/google/uuid"
)

// OutcomeRecord is the immutable record of a terminal wager transition.
// Forfeits are recorded as won=true, forfeited=true.
type OutcomeRecord struct {
	ID                int64     `db:"id"`
	WagerID           uuid.UUID `db:"wager_id"`
	TreasuryID        int64     `db:"treasury_id"`
	PlayerIdentity    string    `db:"player_identity"`
	Won               bool      `db:"won"`
	Forfeited         bool      `db:"forfeited"`
	StakeAtSettlement int64     `db:"stake_at_settlement"`
	FeeAmount         int64     `db:"fee_amount"`
	PlayerPayout      int64     `db:"player_payout"`
	HouseRelease      int64     `db:"house_release"`
	OutcomeBit        *int16    `db:"outcome_bit"`
	Proof             []byte    `db:"proof"`
	SettledEpoch      int64     `db:"settled_epoch"`
	CreatedAt         time.Time `db:"created_at"`
}

// Status returns the wager status this record represents
func (r *OutcomeRecord) Status() WagerStatus {
	if r.Forfeited {
		return WagerStatusForfeited
	}
	return WagerStatusResolved
}

// IsBalanced checks that the settled stake was fully distributed
func (r *OutcomeRecord) IsBalanced() bool {
	return r.FeeAmount+r.PlayerPayout+r.HouseRelease == r.StakeAtSettlement
}
