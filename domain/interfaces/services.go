package interfaces

import (
	"context"

	"coinflip/domain/entities"

	"github.com/google/uuid"
)

// CreateWagerRequest carries a player's bet
type CreateWagerRequest struct {
	Player        string
	Guess         int
	Seed          []byte
	Stake         int64
	ClaimDiscount bool
}

// WagerService defines the wager lifecycle operations
type WagerService interface {
	// CreateWager escrows the player stake plus a matching house stake and opens a wager
	CreateWager(ctx context.Context, req CreateWagerRequest) (*entities.Wager, error)

	// ResolveWager settles an open wager with the house's randomness proof
	ResolveWager(ctx context.Context, wagerID uuid.UUID, proof []byte) (*entities.OutcomeRecord, error)

	// ForfeitWager refunds the whole escrow to the player once the dispute delay has passed
	ForfeitWager(ctx context.Context, wagerID uuid.UUID) (*entities.OutcomeRecord, error)

	GetWager(ctx context.Context, wagerID uuid.UUID) (*entities.Wager, error)
	ListOpenWagers(ctx context.Context, player string) ([]*entities.Wager, error)
	GetOutcome(ctx context.Context, wagerID uuid.UUID) (*entities.OutcomeRecord, error)
	ListOutcomes(ctx context.Context, player string, limit int) ([]*entities.OutcomeRecord, error)
}

// InitializeTreasuryParams configures a fresh treasury
type InitializeTreasuryParams struct {
	HouseIdentity     string
	VerificationKey   []byte
	MinStake          int64
	MaxStake          int64
	BaseFeeRateBP     int64
	DiscountFeeRateBP int64
	FeeBasis          entities.FeeBasis
}

// TreasuryService defines the house treasury operations.
// Administrative calls take the caller identity and fail with ErrUnauthorized for anyone but the house.
type TreasuryService interface {
	InitializeTreasury(ctx context.Context, params InitializeTreasuryParams) (*entities.HouseTreasury, error)
	GetTreasury(ctx context.Context) (*entities.HouseTreasury, error)

	TopUp(ctx context.Context, caller string, amount int64) (*entities.HouseTreasury, error)
	WithdrawBalance(ctx context.Context, caller string) (int64, error)
	ClaimFees(ctx context.Context, caller string) (int64, error)
	SetStakeBounds(ctx context.Context, caller string, minStake, maxStake int64) error
	SetFeeRates(ctx context.Context, caller string, baseRateBP, discountRateBP int64) error
	RotateVerificationKey(ctx context.Context, caller string, key []byte) error

	// Settlement primitives used by the wager lifecycle
	Reserve(ctx context.Context, amount int64, wagerID uuid.UUID) error
	ReleaseToHouse(ctx context.Context, amount int64, wagerID uuid.UUID) error
	CreditFee(ctx context.Context, amount int64, wagerID uuid.UUID) error
}

// AccountService defines the player ledger operations
type AccountService interface {
	Deposit(ctx context.Context, player string, amount int64) (*entities.PlayerAccount, error)
	Withdraw(ctx context.Context, player string, amount int64) (*entities.PlayerAccount, error)
	GetAccount(ctx context.Context, player string) (*entities.PlayerAccount, error)
	History(ctx context.Context, player string, limit int) ([]*entities.BalanceHistory, error)

	// Settlement primitives used by the wager lifecycle
	DebitStake(ctx context.Context, player string, amount int64, wagerID uuid.UUID) error
	CreditFromWager(ctx context.Context, player string, amount int64, wagerID uuid.UUID, txType entities.TransactionType) error
}

// EpochService defines the logical clock operations
type EpochService interface {
	EpochClock
	// AdvanceEpoch is the house-only manual advance
	AdvanceEpoch(ctx context.Context, caller string, steps int64) (int64, error)
	// Tick advances by one epoch on behalf of the scheduler
	Tick(ctx context.Context) (int64, error)
}

// DiscountService decides the fee tier of a new wager
type DiscountService interface {
	// SelectFeeRate returns the snapshot rate and whether the discount tier applied
	SelectFeeRate(ctx context.Context, treasury *entities.HouseTreasury, player string, claimDiscount bool) (int64, bool, error)
}

// AuditService defines read-only integrity checks
type AuditService interface {
	ConservationReport(ctx context.Context) (*entities.ConservationReport, error)
}
