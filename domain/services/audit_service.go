package services

import (
	"context"
	"fmt"

	"coinflip/domain/entities"
	"coinflip/domain/interfaces"
)

// auditService cross-checks the ledger against held balances
type auditService struct {
	treasuryRepo       interfaces.TreasuryRepository
	playerRepo         interfaces.PlayerAccountRepository
	wagerRepo          interfaces.WagerRepository
	balanceHistoryRepo interfaces.BalanceHistoryRepository
}

// NewAuditService creates an audit service
func NewAuditService(
	treasuryRepo interfaces.TreasuryRepository,
	playerRepo interfaces.PlayerAccountRepository,
	wagerRepo interfaces.WagerRepository,
	balanceHistoryRepo interfaces.BalanceHistoryRepository,
) interfaces.AuditService {
	return &auditService{
		treasuryRepo:       treasuryRepo,
		playerRepo:         playerRepo,
		wagerRepo:          wagerRepo,
		balanceHistoryRepo: balanceHistoryRepo,
	}
}

// ConservationReport sums external inflows and outflows and compares them with
// everything currently held by players, treasury pools and open wagers.
func (s *auditService) ConservationReport(ctx context.Context) (*entities.ConservationReport, error) {
	treasury, err := s.treasuryRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get treasury: %w", err)
	}
	if treasury == nil {
		return nil, entities.ErrTreasuryNotInitialized
	}

	playerBalances, err := s.playerRepo.SumBalances(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum player balances: %w", err)
	}

	openEscrow, err := s.wagerRepo.SumOpenEscrow(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum open escrow: %w", err)
	}

	deposited, err := s.balanceHistoryRepo.SumByTransactionTypes(ctx, entities.InflowTypes())
	if err != nil {
		return nil, fmt.Errorf("failed to sum inflows: %w", err)
	}

	// outflow entries are negative changes
	withdrawn, err := s.balanceHistoryRepo.SumByTransactionTypes(ctx, entities.OutflowTypes())
	if err != nil {
		return nil, fmt.Errorf("failed to sum outflows: %w", err)
	}

	return &entities.ConservationReport{
		TotalDeposited: deposited,
		TotalWithdrawn: -withdrawn,
		PlayerBalances: playerBalances,
		HouseAvailable: treasury.AvailableBalance,
		HouseFees:      treasury.AccumulatedFees,
		OpenEscrow:     openEscrow,
	}, nil
}
