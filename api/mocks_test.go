package api

import (
	"context"

	"coinflip/application"
	"coinflip/domain/entities"
	"coinflip/domain/interfaces"
	"coinflip/domain/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockWagerHandler struct {
	mock.Mock
}

func (m *MockWagerHandler) CreateWager(ctx context.Context, req interfaces.CreateWagerRequest) (*entities.Wager, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wager), args.Error(1)
}

func (m *MockWagerHandler) ResolveWager(ctx context.Context, wagerID uuid.UUID, proof []byte) (*entities.OutcomeRecord, error) {
	args := m.Called(ctx, wagerID, proof)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.OutcomeRecord), args.Error(1)
}

func (m *MockWagerHandler) ForfeitWager(ctx context.Context, wagerID uuid.UUID) (*entities.OutcomeRecord, error) {
	args := m.Called(ctx, wagerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.OutcomeRecord), args.Error(1)
}

func (m *MockWagerHandler) GetWager(ctx context.Context, wagerID uuid.UUID) (*entities.Wager, error) {
	args := m.Called(ctx, wagerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wager), args.Error(1)
}

func (m *MockWagerHandler) ListOpenWagers(ctx context.Context, player string) ([]*entities.Wager, error) {
	args := m.Called(ctx, player)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Wager), args.Error(1)
}

func (m *MockWagerHandler) GetOutcome(ctx context.Context, wagerID uuid.UUID) (*entities.OutcomeRecord, error) {
	args := m.Called(ctx, wagerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.OutcomeRecord), args.Error(1)
}

func (m *MockWagerHandler) ListOutcomes(ctx context.Context, player string, limit int) ([]*entities.OutcomeRecord, error) {
	args := m.Called(ctx, player, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.OutcomeRecord), args.Error(1)
}

func (m *MockWagerHandler) VerifyOutcome(req application.VerifyOutcomeRequest) services.VerificationResult {
	args := m.Called(req)
	return args.Get(0).(services.VerificationResult)
}

type MockTreasuryHandler struct {
	mock.Mock
}

func (m *MockTreasuryHandler) InitializeTreasury(ctx context.Context, params interfaces.InitializeTreasuryParams) (*entities.HouseTreasury, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.HouseTreasury), args.Error(1)
}

func (m *MockTreasuryHandler) GetTreasury(ctx context.Context) (*entities.HouseTreasury, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.HouseTreasury), args.Error(1)
}

func (m *MockTreasuryHandler) TopUp(ctx context.Context, caller string, amount int64) (*entities.HouseTreasury, error) {
	args := m.Called(ctx, caller, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.HouseTreasury), args.Error(1)
}

func (m *MockTreasuryHandler) WithdrawBalance(ctx context.Context, caller string) (int64, error) {
	args := m.Called(ctx, caller)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTreasuryHandler) ClaimFees(ctx context.Context, caller string) (int64, error) {
	args := m.Called(ctx, caller)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTreasuryHandler) SetStakeBounds(ctx context.Context, caller string, minStake, maxStake int64) error {
	args := m.Called(ctx, caller, minStake, maxStake)
	return args.Error(0)
}

func (m *MockTreasuryHandler) SetFeeRates(ctx context.Context, caller string, baseRateBP, discountRateBP int64) error {
	args := m.Called(ctx, caller, baseRateBP, discountRateBP)
	return args.Error(0)
}

func (m *MockTreasuryHandler) RotateVerificationKey(ctx context.Context, caller string, key []byte) error {
	args := m.Called(ctx, caller, key)
	return args.Error(0)
}

func (m *MockTreasuryHandler) CurrentEpoch(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTreasuryHandler) AdvanceEpoch(ctx context.Context, caller string, steps int64) (int64, error) {
	args := m.Called(ctx, caller, steps)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTreasuryHandler) ConservationReport(ctx context.Context, caller string) (*entities.ConservationReport, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ConservationReport), args.Error(1)
}

type MockAccountHandler struct {
	mock.Mock
}

func (m *MockAccountHandler) Deposit(ctx context.Context, player string, amount int64) (*entities.PlayerAccount, error) {
	args := m.Called(ctx, player, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PlayerAccount), args.Error(1)
}

func (m *MockAccountHandler) Withdraw(ctx context.Context, player string, amount int64) (*entities.PlayerAccount, error) {
	args := m.Called(ctx, player, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PlayerAccount), args.Error(1)
}

func (m *MockAccountHandler) GetAccount(ctx context.Context, player string) (*entities.PlayerAccount, error) {
	args := m.Called(ctx, player)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PlayerAccount), args.Error(1)
}

func (m *MockAccountHandler) History(ctx context.Context, player string, limit int) ([]*entities.BalanceHistory, error) {
	args := m.Called(ctx, player, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.BalanceHistory), args.Error(1)
}

func (m *MockAccountHandler) RegisterQualifyingItem(ctx context.Context, caller string, item *entities.QualifyingItem) error {
	args := m.Called(ctx, caller, item)
	return args.Error(0)
}
