package entities

import (
	"time"
)

// PlayerAccount holds a player's spendable funds under one treasury
type PlayerAccount struct {
	Identity   string    `db:"identity"`
	TreasuryID int64     `db:"treasury_id"`
	Balance    int64     `db:"balance"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// CanAfford checks if the account can cover an amount
func (a *PlayerAccount) CanAfford(amount int64) bool {
	return a.Balance >= amount
}

// ValidateAmount checks if an amount is valid (positive and affordable)
func (a *PlayerAccount) ValidateAmount(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if !a.CanAfford(amount) {
		return ErrInsufficientPlayerBalance
	}
	return nil
}
