package services

import (
	"context"
	"fmt"

	"coinflip/domain/entities"
	"coinflip/domain/interfaces"
	"coinflip/domain/utils"

	"github.com/google/uuid"
)

// accountService implements the player ledger
type accountService struct {
	treasuryID         int64
	playerRepo         interfaces.PlayerAccountRepository
	balanceHistoryRepo interfaces.BalanceHistoryRepository
	eventPublisher     interfaces.EventPublisher
}

// NewAccountService creates a player ledger scoped to one treasury
func NewAccountService(
	treasuryID int64,
	playerRepo interfaces.PlayerAccountRepository,
	balanceHistoryRepo interfaces.BalanceHistoryRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.AccountService {
	return &accountService{
		treasuryID:         treasuryID,
		playerRepo:         playerRepo,
		balanceHistoryRepo: balanceHistoryRepo,
		eventPublisher:     eventPublisher,
	}
}

// Deposit credits external funds to a player, opening the account on first use
func (s *accountService) Deposit(ctx context.Context, player string, amount int64) (*entities.PlayerAccount, error) {
	if player == "" {
		return nil, entities.ErrInvalidIdentity
	}
	if amount <= 0 {
		return nil, entities.ErrInvalidAmount
	}

	newBalance, err := s.playerRepo.Credit(ctx, player, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to deposit for %s: %w", player, err)
	}
	if err := s.record(ctx, player, newBalance, amount, entities.TransactionTypeDeposit, nil); err != nil {
		return nil, err
	}

	return &entities.PlayerAccount{Identity: player, TreasuryID: s.treasuryID, Balance: newBalance}, nil
}

// Withdraw pays funds out of a player account
func (s *accountService) Withdraw(ctx context.Context, player string, amount int64) (*entities.PlayerAccount, error) {
	if player == "" {
		return nil, entities.ErrInvalidIdentity
	}
	if amount <= 0 {
		return nil, entities.ErrInvalidAmount
	}

	newBalance, err := s.playerRepo.Debit(ctx, player, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to withdraw for %s: %w", player, err)
	}
	if err := s.record(ctx, player, newBalance, -amount, entities.TransactionTypeWithdrawal, nil); err != nil {
		return nil, err
	}

	return &entities.PlayerAccount{Identity: player, TreasuryID: s.treasuryID, Balance: newBalance}, nil
}

// GetAccount returns a player account or ErrAccountNotFound
func (s *accountService) GetAccount(ctx context.Context, player string) (*entities.PlayerAccount, error) {
	account, err := s.playerRepo.GetByIdentity(ctx, player)
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", player, err)
	}
	if account == nil {
		return nil, entities.ErrAccountNotFound
	}
	return account, nil
}

// History returns recent ledger movements for a player
func (s *accountService) History(ctx context.Context, player string, limit int) ([]*entities.BalanceHistory, error) {
	history, err := s.balanceHistoryRepo.GetByAccount(ctx, player, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get history for %s: %w", player, err)
	}
	return history, nil
}

// DebitStake moves a player's stake into a wager
func (s *accountService) DebitStake(ctx context.Context, player string, amount int64, wagerID uuid.UUID) error {
	if amount <= 0 {
		return entities.ErrInvalidAmount
	}

	newBalance, err := s.playerRepo.Debit(ctx, player, amount)
	if err != nil {
		return fmt.Errorf("failed to debit stake from %s: %w", player, err)
	}
	return s.record(ctx, player, newBalance, -amount, entities.TransactionTypeStakeReserve, &wagerID)
}

// CreditFromWager pays escrow out of a wager to the player
func (s *accountService) CreditFromWager(ctx context.Context, player string, amount int64, wagerID uuid.UUID, txType entities.TransactionType) error {
	if amount < 0 {
		return entities.ErrInvalidAmount
	}
	if amount == 0 {
		return nil
	}

	newBalance, err := s.playerRepo.Credit(ctx, player, amount)
	if err != nil {
		return fmt.Errorf("failed to credit %s to %s: %w", txType, player, err)
	}
	return s.record(ctx, player, newBalance, amount, txType, &wagerID)
}

func (s *accountService) record(ctx context.Context, player string, balanceAfter, change int64, txType entities.TransactionType, wagerID *uuid.UUID) error {
	history := utils.NewBalanceChange(s.treasuryID, player, balanceAfter, change, txType, wagerID)
	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
		return fmt.Errorf("failed to record %s: %w", txType, err)
	}
	return nil
}
