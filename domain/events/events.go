package events

import (
	"coinflip/domain/entities"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeWagerCreated    EventType = "wager_created"
	EventTypeWagerSettled    EventType = "wager_settled"
	EventTypeBalanceChange   EventType = "balance_change"
	EventTypeTreasuryUpdated EventType = "treasury_updated"
	EventTypeEpochAdvanced   EventType = "epoch_advanced"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// WagerCreatedEvent is emitted when a wager opens. It is informational and
// never stands in for an outcome record.
type WagerCreatedEvent struct {
	WagerID        string `json:"wager_id"`
	TreasuryID     int64  `json:"treasury_id"`
	PlayerIdentity string `json:"player_identity"`
	Guess          uint8  `json:"guess"`
	PlayerStake    int64  `json:"player_stake"`
	TotalStake     int64  `json:"total_stake"`
	FeeRateBP      int64  `json:"fee_rate_bp"`
	Discounted     bool   `json:"discounted"`
	CreatedEpoch   int64  `json:"created_epoch"`
}

func (e WagerCreatedEvent) Type() EventType {
	return EventTypeWagerCreated
}

// WagerSettledEvent mirrors an appended outcome record
type WagerSettledEvent struct {
	WagerID           string               `json:"wager_id"`
	TreasuryID        int64                `json:"treasury_id"`
	PlayerIdentity    string               `json:"player_identity"`
	Status            entities.WagerStatus `json:"status"`
	Won               bool                 `json:"won"`
	Forfeited         bool                 `json:"forfeited"`
	StakeAtSettlement int64                `json:"stake_at_settlement"`
	FeeAmount         int64                `json:"fee_amount"`
	PlayerPayout      int64                `json:"player_payout"`
	HouseRelease      int64                `json:"house_release"`
	SettledEpoch      int64                `json:"settled_epoch"`
}

func (e WagerSettledEvent) Type() EventType {
	return EventTypeWagerSettled
}

// BalanceChangeEvent represents a balance change on any ledger account
type BalanceChangeEvent struct {
	TreasuryID      int64                    `json:"treasury_id"`
	Account         string                   `json:"account"`
	OldBalance      int64                    `json:"old_balance"`
	NewBalance      int64                    `json:"new_balance"`
	TransactionType entities.TransactionType `json:"transaction_type"`
	ChangeAmount    int64                    `json:"change_amount"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// TreasuryUpdatedEvent is emitted when the house changes treasury configuration
type TreasuryUpdatedEvent struct {
	TreasuryID        int64             `json:"treasury_id"`
	Change            string            `json:"change"`
	MinStake          int64             `json:"min_stake"`
	MaxStake          int64             `json:"max_stake"`
	BaseFeeRateBP     int64             `json:"base_fee_rate_bp"`
	DiscountFeeRateBP int64             `json:"discount_fee_rate_bp"`
	FeeBasis          entities.FeeBasis `json:"fee_basis"`
}

func (e TreasuryUpdatedEvent) Type() EventType {
	return EventTypeTreasuryUpdated
}

// Treasury change kinds carried by TreasuryUpdatedEvent
const (
	TreasuryChangeInitialized     = "initialized"
	TreasuryChangeStakeBounds     = "stake_bounds"
	TreasuryChangeFeeRates        = "fee_rates"
	TreasuryChangeVerificationKey = "verification_key"
)

// EpochAdvancedEvent is emitted whenever the logical clock moves forward
type EpochAdvancedEvent struct {
	TreasuryID int64 `json:"treasury_id"`
	Epoch      int64 `json:"epoch"`
}

func (e EpochAdvancedEvent) Type() EventType {
	return EventTypeEpochAdvanced
}
