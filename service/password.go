package service

import (
	"modesta-resort-api/logger"

	"golang.org/x/crypto/bcrypt"
)

// IPasswordHasher hashes and verifies user passwords.
type IPasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

type PasswordHasher struct {
	cost int
}

// NewPasswordHasher falls back to bcrypt.DefaultCost when cost is out of range.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return string(bytes), nil
}

func (h *PasswordHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
