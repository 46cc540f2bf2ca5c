package api

import (
	"errors"

	"coinflip/domain/entities"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errorStatus = []struct {
	err    error
	status int
	code   string
}{
	{entities.ErrInvalidGuess, fiber.StatusBadRequest, "invalid_guess"},
	{entities.ErrStakeOutOfRange, fiber.StatusBadRequest, "stake_out_of_range"},
	{entities.ErrInvalidAmount, fiber.StatusBadRequest, "invalid_amount"},
	{entities.ErrInvalidIdentity, fiber.StatusBadRequest, "invalid_identity"},
	{entities.ErrInvalidStakeBounds, fiber.StatusBadRequest, "invalid_stake_bounds"},
	{entities.ErrInvalidVerificationKey, fiber.StatusBadRequest, "invalid_verification_key"},
	{entities.ErrRateTooHigh, fiber.StatusBadRequest, "rate_too_high"},
	{entities.ErrUnauthorized, fiber.StatusForbidden, "unauthorized"},
	{entities.ErrWagerNotFound, fiber.StatusNotFound, "wager_not_found"},
	{entities.ErrAccountNotFound, fiber.StatusNotFound, "account_not_found"},
	{entities.ErrTreasuryNotInitialized, fiber.StatusNotFound, "treasury_not_initialized"},
	{entities.ErrAlreadySettled, fiber.StatusConflict, "already_settled"},
	{entities.ErrTreasuryAlreadyInitialized, fiber.StatusConflict, "treasury_already_initialized"},
	{entities.ErrDisputeTooEarly, fiber.StatusConflict, "dispute_too_early"},
	{entities.ErrInsufficientHouseBalance, fiber.StatusUnprocessableEntity, "insufficient_house_balance"},
	{entities.ErrInsufficientPlayerBalance, fiber.StatusUnprocessableEntity, "insufficient_player_balance"},
	{entities.ErrInvalidProof, fiber.StatusUnprocessableEntity, "invalid_proof"},
}

// errorHandler maps domain errors to HTTP responses
func errorHandler(c *fiber.Ctx, err error) error {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return c.Status(e.status).JSON(ErrorResponse{Error: e.err.Error(), Code: e.code})
		}
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(ErrorResponse{Error: fiberErr.Message, Code: "request_error"})
	}

	log.WithFields(log.Fields{
		"method": c.Method(),
		"path":   c.Path(),
		"error":  err,
	}).Error("Request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "internal error", Code: "internal"})
}
