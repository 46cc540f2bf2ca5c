package api

import (
	"coinflip/application"
	"coinflip/domain/entities"
	"coinflip/domain/interfaces"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return nil
}

func wagerID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid wager id")
	}
	return id, nil
}

func (s *Server) listLimit(c *fiber.Ctx) int {
	limit := c.QueryInt("limit", s.cfg.DefaultListLimit)
	if limit <= 0 || limit > 500 {
		return s.cfg.DefaultListLimit
	}
	return limit
}

// Wagers

func (s *Server) createWager(c *fiber.Ctx) error {
	var req CreateWagerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	wager, err := s.handlers.Wagers.CreateWager(c.UserContext(), interfaces.CreateWagerRequest{
		Player:        caller(c),
		Guess:         req.Guess,
		Seed:          req.Seed,
		Stake:         req.Stake,
		ClaimDiscount: req.ClaimDiscount,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(newWagerResponse(wager, s.cfg.DisputeDelayEpochs))
}

func (s *Server) getWager(c *fiber.Ctx) error {
	id, err := wagerID(c)
	if err != nil {
		return err
	}
	wager, err := s.handlers.Wagers.GetWager(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(newWagerResponse(wager, s.cfg.DisputeDelayEpochs))
}

func (s *Server) resolveWager(c *fiber.Ctx) error {
	id, err := wagerID(c)
	if err != nil {
		return err
	}
	var req ResolveWagerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	record, err := s.handlers.Wagers.ResolveWager(c.UserContext(), id, req.Proof)
	if err != nil {
		return err
	}
	return c.JSON(newOutcomeResponse(record))
}

func (s *Server) forfeitWager(c *fiber.Ctx) error {
	id, err := wagerID(c)
	if err != nil {
		return err
	}
	record, err := s.handlers.Wagers.ForfeitWager(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(newOutcomeResponse(record))
}

func (s *Server) getOutcome(c *fiber.Ctx) error {
	id, err := wagerID(c)
	if err != nil {
		return err
	}
	record, err := s.handlers.Wagers.GetOutcome(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(newOutcomeResponse(record))
}

func (s *Server) verifyOutcome(c *fiber.Ctx) error {
	var req VerifyRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	id, err := uuid.Parse(req.WagerID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid wager id")
	}

	result := s.handlers.Wagers.VerifyOutcome(application.VerifyOutcomeRequest{
		WagerID:         id,
		Seed:            req.Seed,
		Proof:           req.Proof,
		VerificationKey: req.VerificationKey,
		Guess:           req.Guess,
	})
	return c.JSON(result)
}

// Accounts

func (s *Server) getAccount(c *fiber.Ctx) error {
	account, err := s.handlers.Accounts.GetAccount(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(AccountResponse{Identity: account.Identity, Balance: account.Balance})
}

func (s *Server) deposit(c *fiber.Ctx) error {
	var req AmountRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	account, err := s.handlers.Accounts.Deposit(c.UserContext(), c.Params("id"), req.Amount)
	if err != nil {
		return err
	}
	return c.JSON(AccountResponse{Identity: account.Identity, Balance: account.Balance})
}

func (s *Server) withdraw(c *fiber.Ctx) error {
	player := c.Params("id")
	if caller(c) != player {
		return entities.ErrUnauthorized
	}
	var req AmountRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	account, err := s.handlers.Accounts.Withdraw(c.UserContext(), player, req.Amount)
	if err != nil {
		return err
	}
	return c.JSON(AccountResponse{Identity: account.Identity, Balance: account.Balance})
}

func (s *Server) accountHistory(c *fiber.Ctx) error {
	history, err := s.handlers.Accounts.History(c.UserContext(), c.Params("id"), s.listLimit(c))
	if err != nil {
		return err
	}
	out := make([]HistoryEntryResponse, 0, len(history))
	for _, h := range history {
		out = append(out, newHistoryEntryResponse(h))
	}
	return c.JSON(out)
}

func (s *Server) openWagers(c *fiber.Ctx) error {
	wagers, err := s.handlers.Wagers.ListOpenWagers(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	out := make([]WagerResponse, 0, len(wagers))
	for _, w := range wagers {
		out = append(out, newWagerResponse(w, s.cfg.DisputeDelayEpochs))
	}
	return c.JSON(out)
}

func (s *Server) outcomes(c *fiber.Ctx) error {
	records, err := s.handlers.Wagers.ListOutcomes(c.UserContext(), c.Params("id"), s.listLimit(c))
	if err != nil {
		return err
	}
	out := make([]OutcomeResponse, 0, len(records))
	for _, r := range records {
		out = append(out, newOutcomeResponse(r))
	}
	return c.JSON(out)
}

// Treasury

func (s *Server) getTreasury(c *fiber.Ctx) error {
	treasury, err := s.handlers.Treasury.GetTreasury(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(newTreasuryResponse(treasury))
}

func (s *Server) currentEpoch(c *fiber.Ctx) error {
	epoch, err := s.handlers.Treasury.CurrentEpoch(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(EpochResponse{Epoch: epoch})
}

func (s *Server) initTreasury(c *fiber.Ctx) error {
	var req InitTreasuryRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	treasury, err := s.handlers.Treasury.InitializeTreasury(c.UserContext(), interfaces.InitializeTreasuryParams{
		HouseIdentity:     caller(c),
		VerificationKey:   req.VerificationKey,
		MinStake:          req.MinStake,
		MaxStake:          req.MaxStake,
		BaseFeeRateBP:     req.BaseFeeRateBP,
		DiscountFeeRateBP: req.DiscountFeeRateBP,
		FeeBasis:          entities.FeeBasis(req.FeeBasis),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(newTreasuryResponse(treasury))
}

func (s *Server) topUp(c *fiber.Ctx) error {
	var req AmountRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	treasury, err := s.handlers.Treasury.TopUp(c.UserContext(), caller(c), req.Amount)
	if err != nil {
		return err
	}
	return c.JSON(newTreasuryResponse(treasury))
}

func (s *Server) withdrawTreasury(c *fiber.Ctx) error {
	amount, err := s.handlers.Treasury.WithdrawBalance(c.UserContext(), caller(c))
	if err != nil {
		return err
	}
	return c.JSON(AmountResponse{Amount: amount})
}

func (s *Server) claimFees(c *fiber.Ctx) error {
	amount, err := s.handlers.Treasury.ClaimFees(c.UserContext(), caller(c))
	if err != nil {
		return err
	}
	return c.JSON(AmountResponse{Amount: amount})
}

func (s *Server) setFeeRates(c *fiber.Ctx) error {
	var req FeeRatesRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := s.handlers.Treasury.SetFeeRates(c.UserContext(), caller(c), req.BaseFeeRateBP, req.DiscountFeeRateBP); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) setStakeBounds(c *fiber.Ctx) error {
	var req StakeBoundsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := s.handlers.Treasury.SetStakeBounds(c.UserContext(), caller(c), req.MinStake, req.MaxStake); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) rotateKey(c *fiber.Ctx) error {
	var req VerificationKeyRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := s.handlers.Treasury.RotateVerificationKey(c.UserContext(), caller(c), req.VerificationKey); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) advanceEpoch(c *fiber.Ctx) error {
	req := AdvanceEpochRequest{Steps: 1}
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}
	epoch, err := s.handlers.Treasury.AdvanceEpoch(c.UserContext(), caller(c), req.Steps)
	if err != nil {
		return err
	}
	return c.JSON(EpochResponse{Epoch: epoch})
}

func (s *Server) conservation(c *fiber.Ctx) error {
	report, err := s.handlers.Treasury.ConservationReport(c.UserContext(), caller(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"report":      report,
		"balanced":    report.IsBalanced(),
		"discrepancy": report.Discrepancy(),
	})
}

func (s *Server) registerItem(c *fiber.Ctx) error {
	var req QualifyingItemRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	item := &entities.QualifyingItem{
		Owner:        req.Owner,
		CollectionID: req.CollectionID,
		ItemID:       req.ItemID,
	}
	if err := s.handlers.Accounts.RegisterQualifyingItem(c.UserContext(), caller(c), item); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusCreated)
}
