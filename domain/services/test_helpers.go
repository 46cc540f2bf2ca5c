package services

import (
	"context"
	"testing"

	"coinflip/domain/entities"
	"coinflip/domain/interfaces"
	"coinflip/domain/testhelpers"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Test constants for consistent test data
const (
	TestTreasuryID   = int64(1)
	TestHouse        = "house"
	TestPlayer       = "alice"
	TestCollectionID = "founders"
	TestDisputeDelay = int64(7)
)

// TestVerificationKey is the key every test treasury snapshots
var TestVerificationKey = []byte("house-public-key")

// TestMocks aggregates all repository and collaborator mocks
type TestMocks struct {
	TreasuryRepo       *testhelpers.MockTreasuryRepository
	PlayerRepo         *testhelpers.MockPlayerAccountRepository
	WagerRepo          *testhelpers.MockWagerRepository
	OutcomeRepo        *testhelpers.MockOutcomeRecordRepository
	BalanceHistoryRepo *testhelpers.MockBalanceHistoryRepository
	EpochRepo          *testhelpers.MockEpochRepository
	OwnershipChecker   *testhelpers.MockOwnershipChecker
	Verifier           *testhelpers.MockSignatureVerifier
	Digester           *testhelpers.MockDigester
	EventPublisher     *testhelpers.MockEventPublisher
}

// NewTestMocks creates a new set of mocks
func NewTestMocks() *TestMocks {
	return &TestMocks{
		TreasuryRepo:       &testhelpers.MockTreasuryRepository{},
		PlayerRepo:         &testhelpers.MockPlayerAccountRepository{},
		WagerRepo:          &testhelpers.MockWagerRepository{},
		OutcomeRepo:        &testhelpers.MockOutcomeRecordRepository{},
		BalanceHistoryRepo: &testhelpers.MockBalanceHistoryRepository{},
		EpochRepo:          &testhelpers.MockEpochRepository{},
		OwnershipChecker:   &testhelpers.MockOwnershipChecker{},
		Verifier:           &testhelpers.MockSignatureVerifier{},
		Digester:           &testhelpers.MockDigester{},
		EventPublisher:     &testhelpers.MockEventPublisher{},
	}
}

// AssertAllExpectations verifies all mock expectations were met
func (m *TestMocks) AssertAllExpectations(t *testing.T) {
	m.TreasuryRepo.AssertExpectations(t)
	m.PlayerRepo.AssertExpectations(t)
	m.WagerRepo.AssertExpectations(t)
	m.OutcomeRepo.AssertExpectations(t)
	m.BalanceHistoryRepo.AssertExpectations(t)
	m.EpochRepo.AssertExpectations(t)
	m.OwnershipChecker.AssertExpectations(t)
	m.Verifier.AssertExpectations(t)
	m.Digester.AssertExpectations(t)
}

// AllowLedgerWrites lets balance history and events through without pinning each one
func (m *TestMocks) AllowLedgerWrites() {
	m.BalanceHistoryRepo.On("Record", mock.Anything, mock.Anything).Return(nil).Maybe()
	m.EventPublisher.On("Publish", mock.Anything).Return(nil).Maybe()
}

// WagerTestFixture wires real domain services over mocked repositories
type WagerTestFixture struct {
	T        *testing.T
	Ctx      context.Context
	Mocks    *TestMocks
	Service  interfaces.WagerService
	Treasury interfaces.TreasuryService
	Accounts interfaces.AccountService
}

// NewWagerTestFixture creates a fixture with hashed outcome derivation
func NewWagerTestFixture(t *testing.T) *WagerTestFixture {
	mocks := NewTestMocks()
	mocks.AllowLedgerWrites()

	treasury := NewTreasuryService(TestTreasuryID, mocks.TreasuryRepo, mocks.BalanceHistoryRepo, mocks.EventPublisher)
	accounts := NewAccountService(TestTreasuryID, mocks.PlayerRepo, mocks.BalanceHistoryRepo, mocks.EventPublisher)
	discount := NewDiscountService(mocks.OwnershipChecker, TestCollectionID)
	oracle := NewRandomnessOracle(mocks.Verifier, mocks.Digester, OutcomeDerivationHashed)

	service := NewWagerService(
		TestTreasuryID,
		TestDisputeDelay,
		mocks.WagerRepo,
		mocks.TreasuryRepo,
		mocks.OutcomeRepo,
		treasury,
		accounts,
		discount,
		mocks.EpochRepo,
		oracle,
		mocks.EventPublisher,
	)

	return &WagerTestFixture{
		T:        t,
		Ctx:      context.Background(),
		Mocks:    mocks,
		Service:  service,
		Treasury: treasury,
		Accounts: accounts,
	}
}

// NewTestTreasury returns the treasury used across scenarios
func NewTestTreasury() *entities.HouseTreasury {
	return &entities.HouseTreasury{
		ID:                TestTreasuryID,
		HouseIdentity:     TestHouse,
		VerificationKey:   TestVerificationKey,
		AvailableBalance:  100000,
		MinStake:          1000,
		MaxStake:          50000,
		BaseFeeRateBP:     100,
		DiscountFeeRateBP: 50,
		FeeBasis:          entities.FeeBasisPlayerStake,
	}
}

// NewOpenTestWager returns an open 10000 vs 10000 wager on guess 1
func NewOpenTestWager(createdEpoch int64) *entities.Wager {
	return &entities.Wager{
		ID:              uuid.New(),
		TreasuryID:      TestTreasuryID,
		PlayerIdentity:  TestPlayer,
		Guess:           1,
		PlayerSeed:      []byte("seed"),
		PlayerStake:     10000,
		TotalStake:      20000,
		FeeRateBP:       100,
		FeeBasis:        entities.FeeBasisPlayerStake,
		VerificationKey: TestVerificationKey,
		CreatedEpoch:    createdEpoch,
		Status:          entities.WagerStatusOpen,
	}
}

// ExpectValidProof makes proof verify for wager and steers its digest's first byte
func (f *WagerTestFixture) ExpectValidProof(wager *entities.Wager, proof []byte, firstDigestByte byte) {
	f.Mocks.Verifier.On("Verify", wager.VerificationKey, wager.RandomnessMessage(), proof).Return(true)
	f.Mocks.Digester.On("Digest", proof).Return(testhelpers.DigestWithFirstByte(firstDigestByte))
}

// historyFor matches a balance history entry on one account and transaction type
func historyFor(account string, txType entities.TransactionType, balanceAfter int64) interface{} {
	return mock.MatchedBy(func(h *entities.BalanceHistory) bool {
		return h.Account == account && h.TransactionType == txType && h.BalanceAfter == balanceAfter
	})
}
