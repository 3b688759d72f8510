package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret1", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, CheckPasswordHash("secret1", hash))
	assert.False(t, CheckPasswordHash("secret2", hash))
	assert.False(t, CheckPasswordHash("secret1", "not-a-hash"))
}

func TestHashPasswordDefaultsCost(t *testing.T) {
	hash, err := HashPassword("secret1", 0)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, DefaultBcryptCost, cost)
}

func TestPasswordNeedsRehash(t *testing.T) {
	low, err := HashPassword("secret1", bcrypt.MinCost)
	require.NoError(t, err)
	high, err := HashPassword("secret1", bcrypt.MinCost+2)
	require.NoError(t, err)

	assert.True(t, PasswordNeedsRehash(low, bcrypt.MinCost+2))
	assert.False(t, PasswordNeedsRehash(high, bcrypt.MinCost+2))
	assert.False(t, PasswordNeedsRehash(high, bcrypt.MinCost), "higher cost than required is not outdated")
	assert.True(t, PasswordNeedsRehash("garbage", bcrypt.MinCost), "unparseable hash counts as outdated")
}
