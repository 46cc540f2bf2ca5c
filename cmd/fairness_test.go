package cmd

import (
	"testing"

	"coinflip/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulateFlips_HashedIsBalanced(t *testing.T) {
	if testing.Short() {
		t.Skip("signs thousands of messages")
	}

	report, err := SimulateFlips(services.OutcomeDerivationHashed, 2000)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Rejected)
	assert.Equal(t, 2000, report.Trials)
	assert.InDelta(t, 1000, report.Heads, 150)
	assert.InDelta(t, 1000, report.PlayerWins, 150)
	assert.Contains(t, report.String(), "hashed")
}

func TestSimulateFlips_Small(t *testing.T) {
	report, err := SimulateFlips(services.OutcomeDerivationRaw, 20)
	require.NoError(t, err)

	assert.Equal(t, services.OutcomeDerivationRaw, report.Derivation)
	assert.Equal(t, 0, report.Rejected)
	assert.LessOrEqual(t, report.Heads, 20)
	assert.GreaterOrEqual(t, report.ChiSquared, 0.0)
}

func TestSimulateFlips_ZeroTrials(t *testing.T) {
	report, err := SimulateFlips(services.OutcomeDerivationHashed, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, report.ChiSquared)
	assert.True(t, report.WithinBound)
	assert.Contains(t, report.String(), "PASS")
}

func TestFairnessReport_String(t *testing.T) {
	r := &FairnessReport{Derivation: services.OutcomeDerivationRaw, Trials: 10, Heads: 9, ChiSquared: 6.4}
	assert.Contains(t, r.String(), "FAIL")
	assert.Contains(t, r.String(), "90.00%")
}
