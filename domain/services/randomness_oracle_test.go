package services

import (
	"bytes"
	"testing"

	"coinflip/domain/entities"
	"coinflip/domain/testhelpers"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRandomnessOracle_VerifiesIdentityAndSeed(t *testing.T) {
	wagerID := uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e")
	seed := []byte("seed")
	key := []byte("key")
	proof := []byte{0x10, 0x20}

	expectedMessage := append(append([]byte{}, wagerID[:]...), seed...)

	verifier := new(testhelpers.MockSignatureVerifier)
	digester := new(testhelpers.MockDigester)
	verifier.On("Verify", key, expectedMessage, proof).Return(true)
	digester.On("Digest", proof).Return(testhelpers.DigestWithFirstByte(0x07))

	oracle := NewRandomnessOracle(verifier, digester, OutcomeDerivationHashed)

	bit, err := oracle.OutcomeBit(wagerID, seed, proof, key)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), bit)
	verifier.AssertExpectations(t)
}

func TestRandomnessOracle_InvalidProof(t *testing.T) {
	verifier := new(testhelpers.MockSignatureVerifier)
	digester := new(testhelpers.MockDigester)
	verifier.On("Verify", mock.Anything, mock.Anything, mock.Anything).Return(false)

	oracle := NewRandomnessOracle(verifier, digester, OutcomeDerivationHashed)

	_, err := oracle.OutcomeBit(uuid.New(), []byte("seed"), []byte{0x01}, []byte("key"))
	assert.ErrorIs(t, err, entities.ErrInvalidProof)

	_, err = oracle.OutcomeBit(uuid.New(), []byte("seed"), nil, []byte("key"))
	assert.ErrorIs(t, err, entities.ErrInvalidProof)

	_, err = oracle.OutcomeBit(uuid.New(), []byte("seed"), []byte{0x01}, nil)
	assert.ErrorIs(t, err, entities.ErrInvalidProof)

	digester.AssertNotCalled(t, "Digest", mock.Anything)
}

func TestRandomnessOracle_RawDerivation(t *testing.T) {
	verifier := new(testhelpers.MockSignatureVerifier)
	digester := new(testhelpers.MockDigester)
	verifier.On("Verify", mock.Anything, mock.Anything, mock.Anything).Return(true)

	oracle := NewRandomnessOracle(verifier, digester, OutcomeDerivationRaw)
	assert.Equal(t, OutcomeDerivationRaw, oracle.Derivation())

	bit, err := oracle.OutcomeBit(uuid.New(), nil, []byte{0x04, 0xff}, []byte("key"))
	require.NoError(t, err)
	assert.Equal(t, uint8(0), bit)

	bit, err = oracle.OutcomeBit(uuid.New(), nil, []byte{0x05, 0x00}, []byte("key"))
	require.NoError(t, err)
	assert.Equal(t, uint8(1), bit)

	digester.AssertNotCalled(t, "Digest", mock.Anything)
}

func TestRandomnessOracle_UnknownDerivationDefaultsToHashed(t *testing.T) {
	oracle := NewRandomnessOracle(nil, nil, OutcomeDerivation("first_byte"))
	assert.Equal(t, OutcomeDerivationHashed, oracle.Derivation())
}

// xorDigester is a stable stand-in for a real hash in determinism checks
type xorDigester struct{}

func (xorDigester) Digest(data []byte) [32]byte {
	var out [32]byte
	for i, b := range data {
		out[i%32] ^= b
	}
	return out
}

type bytesEqualVerifier struct{}

func (bytesEqualVerifier) Verify(publicKey, message, signature []byte) bool {
	return bytes.HasPrefix(signature, publicKey)
}

func TestRandomnessOracle_Deterministic(t *testing.T) {
	oracle := NewRandomnessOracle(bytesEqualVerifier{}, xorDigester{}, OutcomeDerivationHashed)
	wagerID := uuid.New()
	seed := []byte("player-seed")
	key := []byte("pk")

	for i := 0; i < 32; i++ {
		proof := []byte{'p', 'k', byte(i), byte(i * 7)}
		first, err := oracle.OutcomeBit(wagerID, seed, proof, key)
		require.NoError(t, err)
		for j := 0; j < 5; j++ {
			again, err := oracle.OutcomeBit(wagerID, seed, proof, key)
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	}
}

func TestRandomnessOracle_Verify(t *testing.T) {
	oracle := NewRandomnessOracle(bytesEqualVerifier{}, xorDigester{}, OutcomeDerivationHashed)

	result := oracle.Verify(uuid.New(), nil, []byte("pk\x01"), []byte("pk"), 1)
	assert.True(t, result.Valid)

	invalid := oracle.Verify(uuid.New(), nil, []byte("zz"), []byte("pk"), 1)
	assert.False(t, invalid.Valid)
	assert.False(t, invalid.PlayerWins)
}

func TestPlayerWins(t *testing.T) {
	assert.True(t, PlayerWins(1, 1))
	assert.True(t, PlayerWins(0, 0))
	assert.False(t, PlayerWins(1, 0))
	assert.False(t, PlayerWins(0, 1))
}
