package cmd

import (
	"crypto/rand"
	"fmt"
	"io"
	"math"

	"coinflip/domain/entities"
	"coinflip/domain/services"
	"coinflip/infrastructure/crypto"

	"github.com/google/uuid"
)

// chiSquaredCritical is the 1 degree of freedom critical value at p = 0.001
const chiSquaredCritical = 10.828

// FairnessReport summarizes simulated flips for one derivation mode
type FairnessReport struct {
	Derivation  services.OutcomeDerivation
	Trials      int
	Heads       int
	PlayerWins  int
	ChiSquared  float64
	Rejected    int
	WithinBound bool
}

// SimulateFlips signs trials fresh wagers with a throwaway house key and
// counts how often each side of the coin comes up
func SimulateFlips(derivation services.OutcomeDerivation, trials int) (*FairnessReport, error) {
	signer := crypto.GenerateBLSSigner()
	oracle := services.NewRandomnessOracle(crypto.NewBLSVerifier(), crypto.NewBlake2bDigester(), derivation)

	report := &FairnessReport{Derivation: oracle.Derivation(), Trials: trials}
	seed := make([]byte, 16)

	for i := 0; i < trials; i++ {
		if _, err := io.ReadFull(rand.Reader, seed); err != nil {
			return nil, fmt.Errorf("failed to read seed: %w", err)
		}
		wagerID := uuid.New()
		guess := uint8(i % 2)

		proof, err := signer.Sign(entities.RandomnessMessage(wagerID, seed))
		if err != nil {
			return nil, fmt.Errorf("failed to sign flip %d: %w", i, err)
		}

		result := oracle.Verify(wagerID, seed, proof, signer.PublicKey(), guess)
		if !result.Valid {
			report.Rejected++
			continue
		}
		if result.OutcomeBit == 1 {
			report.Heads++
		}
		if result.PlayerWins {
			report.PlayerWins++
		}
	}

	valid := float64(trials - report.Rejected)
	if valid > 0 {
		expected := valid / 2
		heads := float64(report.Heads)
		report.ChiSquared = math.Pow(heads-expected, 2)/expected + math.Pow(valid-heads-expected, 2)/expected
	}
	report.WithinBound = report.Rejected == 0 && report.ChiSquared <= chiSquaredCritical
	return report, nil
}

// String renders one line per report, in the shape of a test run
func (r *FairnessReport) String() string {
	status := "PASS"
	if !r.WithinBound {
		status = "FAIL"
	}
	rate := 0.0
	if r.Trials > 0 {
		rate = float64(r.Heads) / float64(r.Trials) * 100
	}
	return fmt.Sprintf("Derivation: %-6s | Trials: %d | Heads: %d (%.2f%%) | Player wins: %d | Rejected: %d | chi2: %.3f %s",
		r.Derivation, r.Trials, r.Heads, rate, r.PlayerWins, r.Rejected, r.ChiSquared, status)
}
