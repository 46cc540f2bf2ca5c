package testhelpers

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockSignatureVerifier is a mock implementation of SignatureVerifier
type MockSignatureVerifier struct {
	mock.Mock
}

func (m *MockSignatureVerifier) Verify(publicKey, message, signature []byte) bool {
	args := m.Called(publicKey, message, signature)
	return args.Bool(0)
}

// MockDigester is a mock implementation of Digester
type MockDigester struct {
	mock.Mock
}

func (m *MockDigester) Digest(data []byte) [32]byte {
	args := m.Called(data)
	return args.Get(0).([32]byte)
}

// MockOwnershipChecker is a mock implementation of OwnershipChecker
type MockOwnershipChecker struct {
	mock.Mock
}

func (m *MockOwnershipChecker) HasQualifyingItem(ctx context.Context, account, collectionID string) (bool, error) {
	args := m.Called(ctx, account, collectionID)
	return args.Bool(0), args.Error(1)
}

// DigestWithFirstByte returns a digest whose first byte is b, for steering outcome bits in tests
func DigestWithFirstByte(b byte) [32]byte {
	var d [32]byte
	d[0] = b
	return d
}
