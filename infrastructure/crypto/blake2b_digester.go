package crypto

import "golang.org/x/crypto/blake2b"

// Blake2bDigester hashes proofs with blake2b-256
type Blake2bDigester struct{}

// NewBlake2bDigester creates a digester
func NewBlake2bDigester() *Blake2bDigester {
	return &Blake2bDigester{}
}

func (d *Blake2bDigester) Digest(data []byte) [32]byte {
	return blake2b.Sum256(data)
}
