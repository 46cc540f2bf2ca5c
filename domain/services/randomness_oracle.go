package services

import (
	"coinflip/domain/entities"
	"coinflip/domain/interfaces"

	"github.com/google/uuid"
)

// OutcomeDerivation selects how the outcome bit is read from a proof
type OutcomeDerivation string

const (
	// OutcomeDerivationHashed reads the low bit of the first digest byte
	OutcomeDerivationHashed OutcomeDerivation = "hashed"
	// OutcomeDerivationRaw reads the low bit of the first proof byte
	OutcomeDerivationRaw OutcomeDerivation = "raw"
)

// RandomnessOracle turns a house signature into a coin flip.
// It holds no state; the same inputs always give the same bit.
type RandomnessOracle struct {
	verifier   interfaces.SignatureVerifier
	digester   interfaces.Digester
	derivation OutcomeDerivation
}

// NewRandomnessOracle creates an oracle. An unknown derivation falls back to hashed.
func NewRandomnessOracle(verifier interfaces.SignatureVerifier, digester interfaces.Digester, derivation OutcomeDerivation) *RandomnessOracle {
	if derivation != OutcomeDerivationRaw {
		derivation = OutcomeDerivationHashed
	}
	return &RandomnessOracle{
		verifier:   verifier,
		digester:   digester,
		derivation: derivation,
	}
}

// Derivation returns the configured derivation mode
func (o *RandomnessOracle) Derivation() OutcomeDerivation {
	return o.derivation
}

// OutcomeBit verifies proof as a signature over wagerID ++ seed under key and
// derives the outcome bit from it. A proof that does not verify yields ErrInvalidProof.
func (o *RandomnessOracle) OutcomeBit(wagerID uuid.UUID, seed, proof, verificationKey []byte) (uint8, error) {
	if len(proof) == 0 || len(verificationKey) == 0 {
		return 0, entities.ErrInvalidProof
	}

	message := entities.RandomnessMessage(wagerID, seed)
	if !o.verifier.Verify(verificationKey, message, proof) {
		return 0, entities.ErrInvalidProof
	}

	return o.derive(proof), nil
}

func (o *RandomnessOracle) derive(proof []byte) uint8 {
	if o.derivation == OutcomeDerivationRaw {
		return proof[0] % 2
	}
	digest := o.digester.Digest(proof)
	return digest[0] % 2
}

// PlayerWins reports whether the guess matches the outcome bit
func PlayerWins(guess, outcomeBit uint8) bool {
	return guess == outcomeBit
}

// VerificationResult is the audit view of a proof check
type VerificationResult struct {
	Valid      bool  `json:"valid"`
	OutcomeBit uint8 `json:"outcome_bit"`
	PlayerWins bool  `json:"player_wins"`
}

// Verify recomputes an outcome without touching any state
func (o *RandomnessOracle) Verify(wagerID uuid.UUID, seed, proof, verificationKey []byte, guess uint8) VerificationResult {
	bit, err := o.OutcomeBit(wagerID, seed, proof, verificationKey)
	if err != nil {
		return VerificationResult{}
	}
	return VerificationResult{
		Valid:      true,
		OutcomeBit: bit,
		PlayerWins: PlayerWins(guess, bit),
	}
}
