package testhelpers

import (
	"context"

	"coinflip/domain/entities"
	"coinflip/domain/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockTreasuryRepository is a mock implementation of TreasuryRepository
type MockTreasuryRepository struct {
	mock.Mock
}

func (m *MockTreasuryRepository) Get(ctx context.Context) (*entities.HouseTreasury, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.HouseTreasury), args.Error(1)
}

func (m *MockTreasuryRepository) GetForUpdate(ctx context.Context) (*entities.HouseTreasury, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.HouseTreasury), args.Error(1)
}

func (m *MockTreasuryRepository) Create(ctx context.Context, treasury *entities.HouseTreasury) error {
	args := m.Called(ctx, treasury)
	return args.Error(0)
}

func (m *MockTreasuryRepository) Reserve(ctx context.Context, amount int64) (int64, error) {
	args := m.Called(ctx, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTreasuryRepository) CreditAvailable(ctx context.Context, amount int64) (int64, error) {
	args := m.Called(ctx, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTreasuryRepository) CreditFees(ctx context.Context, amount int64) (int64, error) {
	args := m.Called(ctx, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTreasuryRepository) DrainAvailable(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTreasuryRepository) DrainFees(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTreasuryRepository) UpdateStakeBounds(ctx context.Context, minStake, maxStake int64) error {
	args := m.Called(ctx, minStake, maxStake)
	return args.Error(0)
}

func (m *MockTreasuryRepository) UpdateFeeRates(ctx context.Context, baseRateBP, discountRateBP int64) error {
	args := m.Called(ctx, baseRateBP, discountRateBP)
	return args.Error(0)
}

func (m *MockTreasuryRepository) UpdateVerificationKey(ctx context.Context, key []byte) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockPlayerAccountRepository is a mock implementation of PlayerAccountRepository
type MockPlayerAccountRepository struct {
	mock.Mock
}

func (m *MockPlayerAccountRepository) GetByIdentity(ctx context.Context, identity string) (*entities.PlayerAccount, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PlayerAccount), args.Error(1)
}

func (m *MockPlayerAccountRepository) Credit(ctx context.Context, identity string, amount int64) (int64, error) {
	args := m.Called(ctx, identity, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPlayerAccountRepository) Debit(ctx context.Context, identity string, amount int64) (int64, error) {
	args := m.Called(ctx, identity, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPlayerAccountRepository) SumBalances(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockWagerRepository is a mock implementation of WagerRepository
type MockWagerRepository struct {
	mock.Mock
}

func (m *MockWagerRepository) Create(ctx context.Context, wager *entities.Wager) error {
	args := m.Called(ctx, wager)
	return args.Error(0)
}

func (m *MockWagerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Wager, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wager), args.Error(1)
}

func (m *MockWagerRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.Wager, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wager), args.Error(1)
}

func (m *MockWagerRepository) Settle(ctx context.Context, id uuid.UUID, status entities.WagerStatus, expectedStake int64) error {
	args := m.Called(ctx, id, status, expectedStake)
	return args.Error(0)
}

func (m *MockWagerRepository) ListOpenForKey(ctx context.Context, verificationKey []byte, limit int) ([]*entities.Wager, error) {
	args := m.Called(ctx, verificationKey, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Wager), args.Error(1)
}

func (m *MockWagerRepository) ListOpenByPlayer(ctx context.Context, player string) ([]*entities.Wager, error) {
	args := m.Called(ctx, player)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Wager), args.Error(1)
}

func (m *MockWagerRepository) ListForfeitable(ctx context.Context, maxCreatedEpoch int64, limit int) ([]*entities.Wager, error) {
	args := m.Called(ctx, maxCreatedEpoch, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Wager), args.Error(1)
}

func (m *MockWagerRepository) SumOpenEscrow(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockOutcomeRecordRepository is a mock implementation of OutcomeRecordRepository
type MockOutcomeRecordRepository struct {
	mock.Mock
}

func (m *MockOutcomeRecordRepository) Append(ctx context.Context, record *entities.OutcomeRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockOutcomeRecordRepository) GetByWager(ctx context.Context, wagerID uuid.UUID) (*entities.OutcomeRecord, error) {
	args := m.Called(ctx, wagerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.OutcomeRecord), args.Error(1)
}

func (m *MockOutcomeRecordRepository) ListByPlayer(ctx context.Context, player string, limit int) ([]*entities.OutcomeRecord, error) {
	args := m.Called(ctx, player, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.OutcomeRecord), args.Error(1)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *entities.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByAccount(ctx context.Context, account string, limit int) ([]*entities.BalanceHistory, error) {
	args := m.Called(ctx, account, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.BalanceHistory), args.Error(1)
}

func (m *MockBalanceHistoryRepository) SumByTransactionTypes(ctx context.Context, types []entities.TransactionType) (int64, error) {
	args := m.Called(ctx, types)
	return args.Get(0).(int64), args.Error(1)
}

// MockQualifyingItemRepository is a mock implementation of QualifyingItemRepository
type MockQualifyingItemRepository struct {
	mock.Mock
}

func (m *MockQualifyingItemRepository) HasItem(ctx context.Context, owner, collectionID string) (bool, error) {
	args := m.Called(ctx, owner, collectionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockQualifyingItemRepository) Register(ctx context.Context, item *entities.QualifyingItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// MockEpochRepository is a mock implementation of EpochRepository
type MockEpochRepository struct {
	mock.Mock
}

func (m *MockEpochRepository) CurrentEpoch(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEpochRepository) Advance(ctx context.Context, steps int64) (int64, error) {
	args := m.Called(ctx, steps)
	return args.Get(0).(int64), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockTransactionalEventPublisher is a mock implementation of TransactionalEventPublisher
type MockTransactionalEventPublisher struct {
	mock.Mock
}

func (m *MockTransactionalEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

func (m *MockTransactionalEventPublisher) Flush(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTransactionalEventPublisher) Discard() {
	m.Called()
}
