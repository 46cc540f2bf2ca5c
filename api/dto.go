package api

import (
	"encoding/hex"
	"strings"
	"time"

	"coinflip/domain/entities"

	"github.com/gofiber/fiber/v2"
)

// HexBytes is a byte string carried as hex in JSON
type HexBytes []byte

func (h HexBytes) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(h)), nil
}

func (h *HexBytes) UnmarshalText(text []byte) error {
	decoded, err := hex.DecodeString(strings.TrimPrefix(string(text), "0x"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid hex encoding")
	}
	*h = decoded
	return nil
}

type CreateWagerRequest struct {
	Guess         int      `json:"guess"`
	Seed          HexBytes `json:"seed"`
	Stake         int64    `json:"stake"`
	ClaimDiscount bool     `json:"claim_discount"`
}

type ResolveWagerRequest struct {
	Proof HexBytes `json:"proof"`
}

type VerifyRequest struct {
	WagerID         string   `json:"wager_id"`
	Seed            HexBytes `json:"seed"`
	Proof           HexBytes `json:"proof"`
	VerificationKey HexBytes `json:"verification_key"`
	Guess           uint8    `json:"guess"`
}

type AmountRequest struct {
	Amount int64 `json:"amount"`
}

type InitTreasuryRequest struct {
	VerificationKey   HexBytes `json:"verification_key"`
	MinStake          int64    `json:"min_stake"`
	MaxStake          int64    `json:"max_stake"`
	BaseFeeRateBP     int64    `json:"base_fee_rate_bp"`
	DiscountFeeRateBP int64    `json:"discount_fee_rate_bp"`
	FeeBasis          string   `json:"fee_basis"`
}

type FeeRatesRequest struct {
	BaseFeeRateBP     int64 `json:"base_fee_rate_bp"`
	DiscountFeeRateBP int64 `json:"discount_fee_rate_bp"`
}

type StakeBoundsRequest struct {
	MinStake int64 `json:"min_stake"`
	MaxStake int64 `json:"max_stake"`
}

type VerificationKeyRequest struct {
	VerificationKey HexBytes `json:"verification_key"`
}

type AdvanceEpochRequest struct {
	Steps int64 `json:"steps"`
}

type QualifyingItemRequest struct {
	Owner        string `json:"owner"`
	CollectionID string `json:"collection_id"`
	ItemID       string `json:"item_id"`
}

type WagerResponse struct {
	ID                string     `json:"id"`
	Player            string     `json:"player"`
	Guess             uint8      `json:"guess"`
	Seed              HexBytes   `json:"seed"`
	PlayerStake       int64      `json:"player_stake"`
	TotalStake        int64      `json:"total_stake"`
	FeeRateBP         int64      `json:"fee_rate_bp"`
	FeeBasis          string     `json:"fee_basis"`
	Discounted        bool       `json:"discounted"`
	VerificationKey   HexBytes   `json:"verification_key"`
	RandomnessMessage HexBytes   `json:"randomness_message"`
	CreatedEpoch      int64      `json:"created_epoch"`
	DisputeEpoch      int64      `json:"dispute_epoch"`
	Status            string     `json:"status"`
	CreatedAt         time.Time  `json:"created_at"`
	SettledAt         *time.Time `json:"settled_at,omitempty"`
}

func newWagerResponse(w *entities.Wager, disputeDelay int64) WagerResponse {
	return WagerResponse{
		ID:                w.ID.String(),
		Player:            w.PlayerIdentity,
		Guess:             w.Guess,
		Seed:              w.PlayerSeed,
		PlayerStake:       w.PlayerStake,
		TotalStake:        w.TotalStake,
		FeeRateBP:         w.FeeRateBP,
		FeeBasis:          string(w.FeeBasis),
		Discounted:        w.Discounted,
		VerificationKey:   w.VerificationKey,
		RandomnessMessage: w.RandomnessMessage(),
		CreatedEpoch:      w.CreatedEpoch,
		DisputeEpoch:      w.DisputeEpoch(disputeDelay),
		Status:            string(w.Status),
		CreatedAt:         w.CreatedAt,
		SettledAt:         w.SettledAt,
	}
}

type OutcomeResponse struct {
	WagerID           string    `json:"wager_id"`
	Player            string    `json:"player"`
	Status            string    `json:"status"`
	Won               bool      `json:"won"`
	Forfeited         bool      `json:"forfeited"`
	StakeAtSettlement int64     `json:"stake_at_settlement"`
	FeeAmount         int64     `json:"fee_amount"`
	PlayerPayout      int64     `json:"player_payout"`
	HouseRelease      int64     `json:"house_release"`
	OutcomeBit        *int16    `json:"outcome_bit,omitempty"`
	Proof             HexBytes  `json:"proof,omitempty"`
	SettledEpoch      int64     `json:"settled_epoch"`
	CreatedAt         time.Time `json:"created_at"`
}

func newOutcomeResponse(r *entities.OutcomeRecord) OutcomeResponse {
	return OutcomeResponse{
		WagerID:           r.WagerID.String(),
		Player:            r.PlayerIdentity,
		Status:            string(r.Status()),
		Won:               r.Won,
		Forfeited:         r.Forfeited,
		StakeAtSettlement: r.StakeAtSettlement,
		FeeAmount:         r.FeeAmount,
		PlayerPayout:      r.PlayerPayout,
		HouseRelease:      r.HouseRelease,
		OutcomeBit:        r.OutcomeBit,
		Proof:             r.Proof,
		SettledEpoch:      r.SettledEpoch,
		CreatedAt:         r.CreatedAt,
	}
}

type TreasuryResponse struct {
	ID                int64     `json:"id"`
	HouseIdentity     string    `json:"house_identity"`
	VerificationKey   HexBytes  `json:"verification_key"`
	AvailableBalance  int64     `json:"available_balance"`
	AccumulatedFees   int64     `json:"accumulated_fees"`
	MinStake          int64     `json:"min_stake"`
	MaxStake          int64     `json:"max_stake"`
	BaseFeeRateBP     int64     `json:"base_fee_rate_bp"`
	DiscountFeeRateBP int64     `json:"discount_fee_rate_bp"`
	FeeBasis          string    `json:"fee_basis"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func newTreasuryResponse(t *entities.HouseTreasury) TreasuryResponse {
	return TreasuryResponse{
		ID:                t.ID,
		HouseIdentity:     t.HouseIdentity,
		VerificationKey:   t.VerificationKey,
		AvailableBalance:  t.AvailableBalance,
		AccumulatedFees:   t.AccumulatedFees,
		MinStake:          t.MinStake,
		MaxStake:          t.MaxStake,
		BaseFeeRateBP:     t.BaseFeeRateBP,
		DiscountFeeRateBP: t.DiscountFeeRateBP,
		FeeBasis:          string(t.FeeBasis),
		UpdatedAt:         t.UpdatedAt,
	}
}

type AccountResponse struct {
	Identity string `json:"identity"`
	Balance  int64  `json:"balance"`
}

type AmountResponse struct {
	Amount int64 `json:"amount"`
}

type EpochResponse struct {
	Epoch int64 `json:"epoch"`
}

type HistoryEntryResponse struct {
	Account       string    `json:"account"`
	Type          string    `json:"type"`
	Description   string    `json:"description"`
	BalanceBefore int64     `json:"balance_before"`
	BalanceAfter  int64     `json:"balance_after"`
	ChangeAmount  int64     `json:"change_amount"`
	WagerID       *string   `json:"wager_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func newHistoryEntryResponse(h *entities.BalanceHistory) HistoryEntryResponse {
	var wagerID *string
	if h.WagerID != nil {
		id := h.WagerID.String()
		wagerID = &id
	}
	return HistoryEntryResponse{
		Account:       h.Account,
		Type:          string(h.TransactionType),
		Description:   h.GetTransactionDescription(),
		BalanceBefore: h.BalanceBefore,
		BalanceAfter:  h.BalanceAfter,
		ChangeAmount:  h.ChangeAmount,
		WagerID:       wagerID,
		CreatedAt:     h.CreatedAt,
	}
}
