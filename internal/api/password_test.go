package api

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	h1, err := HashPassword("Secreta$1")
	require.NoError(t, err)
	h2, err := HashPassword("Secreta$1")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(h1, "argon2id$"))
	assert.NotEqual(t, h1, h2, "salts differ")

	ok, err := VerifyPassword(h1, "Secreta$1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(h1, "Secreta$2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPasswordMalformed(t *testing.T) {
	tests := []string{
		"",
		"plain",
		"bcrypt$abc$def",
		"argon2id$!!$AAAA",
		"argon2id$AAAA$!!",
	}
	for _, hash := range tests {
		t.Run(hash, func(t *testing.T) {
			ok, err := VerifyPassword(hash, "x")
			assert.ErrorIs(t, err, errMalformedHash)
			assert.False(t, ok)
		})
	}
}
