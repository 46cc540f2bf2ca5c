// Package crypto adapts the signature and digest libraries to the domain collaborators.
package crypto

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/pairing/bn256"
	"go.dedis.ch/kyber/v3/sign/bls"
	"go.dedis.ch/kyber/v3/util/random"
)

var suite = bn256.NewSuite()

// BLSVerifier checks BLS signatures on the bn256 curve.
// Public keys are G2 points, signatures G1 points, both in kyber's binary form.
type BLSVerifier struct{}

// NewBLSVerifier creates a verifier
func NewBLSVerifier() *BLSVerifier {
	return &BLSVerifier{}
}

// Verify reports whether signature is valid for message under publicKey.
// Malformed keys or signatures are simply invalid, and so is any encoding
// other than the canonical one, since the outcome is derived from the raw bytes.
func (v *BLSVerifier) Verify(publicKey, message, signature []byte) bool {
	pub, err := UnmarshalPublicKey(publicKey)
	if err != nil {
		return false
	}
	if !canonicalSignature(signature) {
		return false
	}
	return bls.Verify(suite, pub, message, signature) == nil
}

// canonicalSignature holds when signature is exactly the marshalled form of a G1 point
func canonicalSignature(signature []byte) bool {
	if len(signature) != suite.G1().PointLen() {
		return false
	}
	return canonicalPoint(suite.G1().Point(), signature)
}

// canonicalPoint decodes b into p and checks that re-encoding gives b back
func canonicalPoint(p kyber.Point, b []byte) bool {
	if err := p.UnmarshalBinary(b); err != nil {
		return false
	}
	encoded, err := p.MarshalBinary()
	if err != nil {
		return false
	}
	return bytes.Equal(encoded, b)
}

// ValidPublicKey reports whether key decodes to a curve point
func ValidPublicKey(key []byte) bool {
	_, err := UnmarshalPublicKey(key)
	return err == nil
}

// UnmarshalPublicKey decodes a G2 public key in its canonical encoding
func UnmarshalPublicKey(key []byte) (kyber.Point, error) {
	if len(key) != suite.G2().PointLen() {
		return nil, fmt.Errorf("public key must be %d bytes, got %d", suite.G2().PointLen(), len(key))
	}
	pub := suite.G2().Point()
	if !canonicalPoint(pub, key) {
		return nil, fmt.Errorf("failed to decode public key")
	}
	return pub, nil
}

// BLSSigner signs with a house private key. BLS signatures are deterministic,
// so a signature over a wager's randomness message is its randomness.
type BLSSigner struct {
	private kyber.Scalar
	public  kyber.Point
}

// NewBLSSigner loads a signer from a binary private scalar
func NewBLSSigner(privateKey []byte) (*BLSSigner, error) {
	if len(privateKey) == 0 {
		return nil, fmt.Errorf("empty private key")
	}
	private := suite.G2().Scalar()
	if err := private.UnmarshalBinary(privateKey); err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	return &BLSSigner{
		private: private,
		public:  suite.G2().Point().Mul(private, nil),
	}, nil
}

// GenerateBLSSigner creates a signer with a fresh random key pair
func GenerateBLSSigner() *BLSSigner {
	private, public := bls.NewKeyPair(suite, random.New())
	return &BLSSigner{private: private, public: public}
}

// Sign produces the signature over message
func (s *BLSSigner) Sign(message []byte) ([]byte, error) {
	sig, err := bls.Sign(suite, s.private, message)
	if err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}
	return sig, nil
}

// PublicKey returns the binary G2 public key
func (s *BLSSigner) PublicKey() []byte {
	b, err := s.public.MarshalBinary()
	if err != nil {
		// bn256 point marshalling does not fail
		panic(fmt.Sprintf("failed to marshal public key: %v", err))
	}
	return b
}

// PrivateKey returns the binary private scalar
func (s *BLSSigner) PrivateKey() []byte {
	b, err := s.private.MarshalBinary()
	if err != nil {
		panic(fmt.Sprintf("failed to marshal private key: %v", err))
	}
	return b
}

// KeyPairHex returns both keys hex encoded, for the keygen command
func (s *BLSSigner) KeyPairHex() (privateHex, publicHex string) {
	return hex.EncodeToString(s.PrivateKey()), hex.EncodeToString(s.PublicKey())
}
