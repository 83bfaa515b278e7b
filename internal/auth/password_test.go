package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	t.Parallel()
	hasher := BcryptHasher{Cost: bcrypt.MinCost}

	digest, err := hasher.Hash("123456")
	require.NoError(t, err)
	assert.NotEqual(t, "123456", digest)

	t.Run("correct password", func(t *testing.T) {
		t.Parallel()
		assert.True(t, hasher.Verify("123456", digest))
	})

	t.Run("incorrect password", func(t *testing.T) {
		t.Parallel()
		assert.False(t, hasher.Verify("1234567", digest))
		assert.False(t, hasher.Verify("", digest))
	})

	t.Run("salted", func(t *testing.T) {
		t.Parallel()
		again, err := hasher.Hash("123456")
		require.NoError(t, err)
		assert.NotEqual(t, digest, again)
	})

	t.Run("too long", func(t *testing.T) {
		t.Parallel()
		_, err := hasher.Hash(strings.Repeat("x", 73))
		require.Error(t, err)
	})
}

func TestNewBcryptHasher(t *testing.T) {
	t.Parallel()
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher().Cost)
}
