package entities

import "errors"

// Settlement errors. Every operation that returns one of these leaves the
// treasury, the wager and the ledger untouched.
var (
	ErrInvalidGuess              = errors.New("guess must be 0 or 1")
	ErrStakeOutOfRange           = errors.New("stake outside treasury bounds")
	ErrInsufficientHouseBalance  = errors.New("insufficient house balance to match stake")
	ErrInsufficientPlayerBalance = errors.New("insufficient player balance")
	ErrInvalidProof              = errors.New("randomness proof failed verification")
	ErrAlreadySettled            = errors.New("wager already settled")
	ErrDisputeTooEarly           = errors.New("dispute delay has not elapsed")
	ErrUnauthorized              = errors.New("caller is not the house")
	ErrRateTooHigh               = errors.New("fee rate exceeds 10000 basis points")
)

// Lookup and administration errors.
var (
	ErrWagerNotFound              = errors.New("wager not found")
	ErrAccountNotFound            = errors.New("account not found")
	ErrTreasuryNotInitialized     = errors.New("treasury not initialized")
	ErrTreasuryAlreadyInitialized = errors.New("treasury already initialized")
	ErrInvalidAmount              = errors.New("amount must be positive")
	ErrInvalidIdentity            = errors.New("identity cannot be empty")
	ErrInvalidStakeBounds         = errors.New("stake bounds must satisfy 0 < min <= max")
	ErrInvalidVerificationKey     = errors.New("verification key cannot be empty")
)
