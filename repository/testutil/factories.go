package testutil

import (
	"time"

	"coinflip/domain/entities"

	"github.com/google/uuid"
)

// Defaults shared by repository tests
const (
	TestTreasuryID = int64(1)
	TestHouse      = "house"
)

// CreateTestTreasury creates a treasury with default configuration
func CreateTestTreasury() *entities.HouseTreasury {
	return &entities.HouseTreasury{
		ID:                TestTreasuryID,
		HouseIdentity:     TestHouse,
		VerificationKey:   []byte("test-verification-key"),
		MinStake:          1000,
		MaxStake:          50000,
		BaseFeeRateBP:     100,
		DiscountFeeRateBP: 50,
		FeeBasis:          entities.FeeBasisPlayerStake,
	}
}

// CreateTestWager creates an open wager for player with a matched stake
func CreateTestWager(player string, stake int64, createdEpoch int64) *entities.Wager {
	return &entities.Wager{
		ID:              uuid.New(),
		TreasuryID:      TestTreasuryID,
		PlayerIdentity:  player,
		Guess:           1,
		PlayerSeed:      []byte("seed-" + player),
		PlayerStake:     stake,
		TotalStake:      stake * 2,
		FeeRateBP:       100,
		FeeBasis:        entities.FeeBasisPlayerStake,
		VerificationKey: []byte("test-verification-key"),
		CreatedEpoch:    createdEpoch,
		Status:          entities.WagerStatusOpen,
	}
}

// CreateTestOutcome creates a winning outcome record for wager
func CreateTestOutcome(wager *entities.Wager) *entities.OutcomeRecord {
	bit := int16(wager.Guess)
	fee := wager.PlayerStake * wager.FeeRateBP / entities.MaxFeeRateBP
	return &entities.OutcomeRecord{
		WagerID:           wager.ID,
		TreasuryID:        wager.TreasuryID,
		PlayerIdentity:    wager.PlayerIdentity,
		Won:               true,
		StakeAtSettlement: wager.TotalStake,
		FeeAmount:         fee,
		PlayerPayout:      wager.TotalStake - fee,
		OutcomeBit:        &bit,
		Proof:             []byte("proof"),
		SettledEpoch:      wager.CreatedEpoch + 1,
	}
}

// CreateTestBalanceHistory creates a test balance history entry
func CreateTestBalanceHistory(account string, transactionType entities.TransactionType) *entities.BalanceHistory {
	return CreateTestBalanceHistoryWithAmounts(account, 100000, 95000, -5000, transactionType)
}

// CreateTestBalanceHistoryWithAmounts creates a balance history entry with specific amounts
func CreateTestBalanceHistoryWithAmounts(account string, before, after, change int64, transactionType entities.TransactionType) *entities.BalanceHistory {
	return &entities.BalanceHistory{
		TreasuryID:          TestTreasuryID,
		Account:             account,
		BalanceBefore:       before,
		BalanceAfter:        after,
		ChangeAmount:        change,
		TransactionType:     transactionType,
		TransactionMetadata: map[string]any{"source": "test"},
		CreatedAt:           time.Now(),
	}
}
