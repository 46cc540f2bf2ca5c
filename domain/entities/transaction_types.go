package entities

// TransactionType represents the type of balance change
type TransactionType string

// All transaction types supported by the ledger
const (
	// External flows: value entering or leaving the system
	TransactionTypeDeposit         TransactionType = "deposit"
	TransactionTypeWithdrawal      TransactionType = "withdrawal"
	TransactionTypeHouseTopUp      TransactionType = "house_top_up"
	TransactionTypeHouseWithdrawal TransactionType = "house_withdrawal"
	TransactionTypeFeeClaim        TransactionType = "fee_claim"

	// Escrow flows: value moving into a wager
	TransactionTypeStakeReserve TransactionType = "stake_reserve"
	TransactionTypeHouseReserve TransactionType = "house_reserve"

	// Settlement flows: value leaving a wager
	TransactionTypeWagerPayout  TransactionType = "wager_payout"
	TransactionTypeWagerRefund  TransactionType = "wager_refund"
	TransactionTypeHouseRelease TransactionType = "house_release"
	TransactionTypeFeeCredit    TransactionType = "fee_credit"
)

// IsInflow returns true if the transaction brings value into the system
func (tt TransactionType) IsInflow() bool {
	return tt == TransactionTypeDeposit ||
		tt == TransactionTypeHouseTopUp
}

// IsOutflow returns true if the transaction takes value out of the system
func (tt TransactionType) IsOutflow() bool {
	return tt == TransactionTypeWithdrawal ||
		tt == TransactionTypeHouseWithdrawal ||
		tt == TransactionTypeFeeClaim
}

// IsEscrow returns true if the transaction moves value into a wager
func (tt TransactionType) IsEscrow() bool {
	return tt == TransactionTypeStakeReserve ||
		tt == TransactionTypeHouseReserve
}

// IsSettlement returns true if the transaction moves value out of a wager
func (tt TransactionType) IsSettlement() bool {
	return tt == TransactionTypeWagerPayout ||
		tt == TransactionTypeWagerRefund ||
		tt == TransactionTypeHouseRelease ||
		tt == TransactionTypeFeeCredit
}

// InflowTypes lists every transaction type that brings value in
func InflowTypes() []TransactionType {
	return []TransactionType{TransactionTypeDeposit, TransactionTypeHouseTopUp}
}

// OutflowTypes lists every transaction type that takes value out
func OutflowTypes() []TransactionType {
	return []TransactionType{TransactionTypeWithdrawal, TransactionTypeHouseWithdrawal, TransactionTypeFeeClaim}
}

// String returns the string representation of the transaction type
func (tt TransactionType) String() string {
	return string(tt)
}
