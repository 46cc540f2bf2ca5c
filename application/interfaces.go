package application

import (
	"context"

	"coinflip/domain/entities"
	"coinflip/domain/interfaces"
	"coinflip/domain/services"

	"github.com/google/uuid"
)

// WagerHandler runs the wager lifecycle, one transaction per call
type WagerHandler interface {
	CreateWager(ctx context.Context, req interfaces.CreateWagerRequest) (*entities.Wager, error)
	ResolveWager(ctx context.Context, wagerID uuid.UUID, proof []byte) (*entities.OutcomeRecord, error)
	ForfeitWager(ctx context.Context, wagerID uuid.UUID) (*entities.OutcomeRecord, error)

	GetWager(ctx context.Context, wagerID uuid.UUID) (*entities.Wager, error)
	ListOpenWagers(ctx context.Context, player string) ([]*entities.Wager, error)
	GetOutcome(ctx context.Context, wagerID uuid.UUID) (*entities.OutcomeRecord, error)
	ListOutcomes(ctx context.Context, player string, limit int) ([]*entities.OutcomeRecord, error)

	// VerifyOutcome recomputes an outcome from raw inputs without touching state
	VerifyOutcome(req VerifyOutcomeRequest) services.VerificationResult
}

// VerifyOutcomeRequest carries everything an auditor needs to recompute a flip
type VerifyOutcomeRequest struct {
	WagerID         uuid.UUID
	Seed            []byte
	Proof           []byte
	VerificationKey []byte
	Guess           uint8
}

// TreasuryHandler exposes the house treasury and the logical clock
type TreasuryHandler interface {
	InitializeTreasury(ctx context.Context, params interfaces.InitializeTreasuryParams) (*entities.HouseTreasury, error)
	GetTreasury(ctx context.Context) (*entities.HouseTreasury, error)
	TopUp(ctx context.Context, caller string, amount int64) (*entities.HouseTreasury, error)
	WithdrawBalance(ctx context.Context, caller string) (int64, error)
	ClaimFees(ctx context.Context, caller string) (int64, error)
	SetStakeBounds(ctx context.Context, caller string, minStake, maxStake int64) error
	SetFeeRates(ctx context.Context, caller string, baseRateBP, discountRateBP int64) error
	RotateVerificationKey(ctx context.Context, caller string, key []byte) error

	CurrentEpoch(ctx context.Context) (int64, error)
	AdvanceEpoch(ctx context.Context, caller string, steps int64) (int64, error)
	ConservationReport(ctx context.Context, caller string) (*entities.ConservationReport, error)
}

// AccountHandler exposes the player ledger and ownership registry
type AccountHandler interface {
	Deposit(ctx context.Context, player string, amount int64) (*entities.PlayerAccount, error)
	Withdraw(ctx context.Context, player string, amount int64) (*entities.PlayerAccount, error)
	GetAccount(ctx context.Context, player string) (*entities.PlayerAccount, error)
	History(ctx context.Context, player string, limit int) ([]*entities.BalanceHistory, error)

	// RegisterQualifyingItem records item ownership; house only
	RegisterQualifyingItem(ctx context.Context, caller string, item *entities.QualifyingItem) error
}

// OwnershipCacheInvalidator drops cached ownership answers after a change
type OwnershipCacheInvalidator interface {
	Invalidate(ctx context.Context, account, collectionID string) error
}

// KeyValidator rejects verification keys that can never verify a proof
type KeyValidator func(key []byte) bool
