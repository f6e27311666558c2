package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// TestPasswordHasher_HashAndCompare ensures that password hashing and verification work correctly.
func TestPasswordHasher_HashAndCompare(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)
	password := "MySecret#123"

	hashed, err := hasher.Hash(password)
	require.NoError(t, err)
	assert.NotEqual(t, password, hashed)

	assert.True(t, hasher.Compare(hashed, password))
	assert.False(t, hasher.Compare(hashed, "notMyPassword"))
}

func TestNewPasswordHasher_OutOfRangeCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(99).cost)
	assert.Equal(t, 12, NewPasswordHasher(12).cost)
}
