package services

import (
	"github.com/stretchr/testify/mock"
)

type MockSealer struct {
	mock.Mock
}

func (m *MockSealer) Encrypt(plaintext string) (string, error) {
	args := m.Called(plaintext)
	return args.String(0), args.Error(1)
}

func (m *MockSealer) Decrypt(ciphertext string) (string, error) {
	args := m.Called(ciphertext)
	return args.String(0), args.Error(1)
}
