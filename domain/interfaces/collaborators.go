package interfaces

import "context"

// SignatureVerifier checks a signature over message against a public key
type SignatureVerifier interface {
	Verify(publicKey, message, signature []byte) bool
}

// Signer produces signatures the matching SignatureVerifier accepts
type Signer interface {
	Sign(message []byte) ([]byte, error)
	PublicKey() []byte
}

// Digester maps arbitrary bytes to a fixed 32-byte digest
type Digester interface {
	Digest(data []byte) [32]byte
}

// OwnershipChecker answers whether an account holds an item from a collection
type OwnershipChecker interface {
	HasQualifyingItem(ctx context.Context, account, collectionID string) (bool, error)
}

// EpochClock reports the current logical epoch
type EpochClock interface {
	CurrentEpoch(ctx context.Context) (int64, error)
}
