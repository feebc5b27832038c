package v1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	h := NewPasswordHasher(4) // minimum cost keeps the test fast

	digest, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEmpty(t, digest)
	assert.NotEqual(t, "correct horse battery staple", digest)

	assert.True(t, h.Verify("correct horse battery staple", digest))
	assert.False(t, h.Verify("wrong password", digest))
	assert.False(t, h.Verify("", digest))
}

func TestPasswordHasher_DistinctSecretsDistinctDigests(t *testing.T) {
	h := NewPasswordHasher(4)

	d1, err := h.Hash("secret-one")
	require.NoError(t, err)
	d2, err := h.Hash("secret-two")
	require.NoError(t, err)

	assert.NotEqual(t, d1, d2)
	assert.False(t, h.Verify("secret-one", d2))
	assert.False(t, h.Verify("secret-two", d1))
}

func TestPasswordHasher_SaltedPerDigest(t *testing.T) {
	h := NewPasswordHasher(4)

	d1, err := h.Hash("same secret")
	require.NoError(t, err)
	d2, err := h.Hash("same secret")
	require.NoError(t, err)

	// Each digest carries its own salt, so the encodings differ while
	// both still verify.
	assert.NotEqual(t, d1, d2)
	assert.True(t, h.Verify("same secret", d1))
	assert.True(t, h.Verify("same secret", d2))
}

func TestPasswordHasher_DefaultCost(t *testing.T) {
	h := NewPasswordHasher(0)
	digest, err := h.Hash("pw")
	require.NoError(t, err)
	assert.True(t, h.Verify("pw", digest))
}
