package entities

import (
	"time"

	"github.com/google/uuid"
)

// WagerStatus represents the lifecycle state of a wager
type WagerStatus string

const (
	WagerStatusOpen      WagerStatus = "open"
	WagerStatusResolved  WagerStatus = "resolved"
	WagerStatusForfeited WagerStatus = "forfeited"
)

// IsTerminal returns true for states that can never be left
func (s WagerStatus) IsTerminal() bool {
	return s == WagerStatusResolved || s == WagerStatusForfeited
}

// Wager is a single coin-flip bet between a player and the house.
// TotalStake is held in escrow by the wager itself while it is open.
type Wager struct {
	ID              uuid.UUID   `db:"id"`
	TreasuryID      int64       `db:"treasury_id"`
	PlayerIdentity  string      `db:"player_identity"`
	Guess           uint8       `db:"guess"`
	PlayerSeed      []byte      `db:"player_seed"`
	PlayerStake     int64       `db:"player_stake"`
	TotalStake      int64       `db:"total_stake"`
	FeeRateBP       int64       `db:"fee_rate_bp"`
	FeeBasis        FeeBasis    `db:"fee_basis"`
	Discounted      bool        `db:"discounted"`
	VerificationKey []byte      `db:"verification_key"`
	CreatedEpoch    int64       `db:"created_epoch"`
	Status          WagerStatus `db:"status"`
	CreatedAt       time.Time   `db:"created_at"`
	SettledAt       *time.Time  `db:"settled_at"`
}

// ValidateGuess checks that a guess is a single bit
func ValidateGuess(guess int) error {
	if guess != 0 && guess != 1 {
		return ErrInvalidGuess
	}
	return nil
}

// IsOpen checks if the wager still holds escrow
func (w *Wager) IsOpen() bool {
	return w.Status == WagerStatusOpen
}

// HouseStake is the matched amount reserved from the treasury
func (w *Wager) HouseStake() int64 {
	return w.TotalStake - w.PlayerStake
}

// FeeBase returns the stake the snapshotted fee rate applies to
func (w *Wager) FeeBase() int64 {
	if w.FeeBasis == FeeBasisTotalStake {
		return w.TotalStake
	}
	return w.PlayerStake
}

// DisputeEpoch is the first epoch at which the wager may be forfeited
func (w *Wager) DisputeEpoch(disputeDelay int64) int64 {
	return w.CreatedEpoch + disputeDelay
}

// CanForfeitAt checks the dispute timeout gate
func (w *Wager) CanForfeitAt(currentEpoch, disputeDelay int64) bool {
	return currentEpoch >= w.DisputeEpoch(disputeDelay)
}

// RandomnessMessage is the byte string the house signs for this wager
func (w *Wager) RandomnessMessage() []byte {
	return RandomnessMessage(w.ID, w.PlayerSeed)
}

// RandomnessMessage concatenates the 16 raw identity bytes with the player seed
func RandomnessMessage(wagerID uuid.UUID, seed []byte) []byte {
	msg := make([]byte, 0, len(wagerID)+len(seed))
	msg = append(msg, wagerID[:]...)
	return append(msg, seed...)
}
