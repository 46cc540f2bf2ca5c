package entities

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Ledger accounts owned by the treasury. Player accounts use the player identity.
const (
	AccountHouseAvailable = "house:available"
	AccountHouseFees      = "house:fees"
)

// BalanceHistory represents a single movement on one ledger account
type BalanceHistory struct {
	ID                  int64           `db:"id"`
	TreasuryID          int64           `db:"treasury_id"`
	Account             string          `db:"account"`
	BalanceBefore       int64           `db:"balance_before"`
	BalanceAfter        int64           `db:"balance_after"`
	ChangeAmount        int64           `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	WagerID             *uuid.UUID      `db:"wager_id"`
	CreatedAt           time.Time       `db:"created_at"`
}

// IsHouseAccount returns true if the entry touches a treasury pool
func (bh *BalanceHistory) IsHouseAccount() bool {
	return bh.Account == AccountHouseAvailable || bh.Account == AccountHouseFees
}

// IsPositiveChange returns true if the change amount is positive
func (bh *BalanceHistory) IsPositiveChange() bool {
	return bh.ChangeAmount > 0
}

// GetTransactionDescription returns a human-readable description of the transaction
func (bh *BalanceHistory) GetTransactionDescription() string {
	switch bh.TransactionType {
	case TransactionTypeDeposit:
		return "Deposit"
	case TransactionTypeWithdrawal:
		return "Withdrawal"
	case TransactionTypeHouseTopUp:
		return "House top-up"
	case TransactionTypeHouseWithdrawal:
		return "House withdrawal"
	case TransactionTypeFeeClaim:
		return "Fee claim"
	case TransactionTypeStakeReserve:
		return "Stake placed"
	case TransactionTypeHouseReserve:
		return "House stake matched"
	case TransactionTypeWagerPayout:
		return "Wager payout"
	case TransactionTypeWagerRefund:
		return "Wager refund"
	case TransactionTypeHouseRelease:
		return "House win"
	case TransactionTypeFeeCredit:
		return "Fee collected"
	default:
		return string(bh.TransactionType)
	}
}

// ValidateTransaction performs basic validation on the transaction
func (bh *BalanceHistory) ValidateTransaction() error {
	if bh.ChangeAmount == 0 {
		return errors.New("change amount cannot be zero")
	}

	if bh.BalanceAfter != bh.BalanceBefore+bh.ChangeAmount {
		return errors.New("balance calculation is inconsistent")
	}

	if bh.BalanceAfter < 0 {
		return errors.New("balance cannot go negative")
	}

	return nil
}
