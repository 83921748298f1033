package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=3,p=2$"))
	assert.Len(t, strings.Split(hash, "$"), 6)
}

func TestHashPassword_EmptyPassword(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", 1025))
	assert.Error(t, err)
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	hash1, err := HashPassword("same password")
	require.NoError(t, err)
	hash2, err := HashPassword("same password")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2)
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("sw0rdf1sh")
	require.NoError(t, err)

	ok, err := VerifyPassword(hash, "sw0rdf1sh")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(hash, "swordfish")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"garbage", "not-a-hash"},
		{"wrong algorithm", "$bcrypt$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA"},
		{"wrong version", "$argon2id$v=18$m=65536,t=3,p=2$c2FsdA$aGFzaA"},
		{"bad salt encoding", "$argon2id$v=19$m=65536,t=3,p=2$!!!$aGFzaA"},
		{"missing sections", "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := VerifyPassword(tt.hash, "password")
			assert.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestVerifyPassword_TooLongPassword(t *testing.T) {
	hash, err := HashPassword("normal")
	require.NoError(t, err)

	// Over-length candidates are rejected before any hashing happens.
	ok, err := VerifyPassword(hash, strings.Repeat("a", 2048))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPassword_TamperedParams(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)

	// Verification hashes with the parameters stored in the encoded form,
	// so altering them invalidates the digest without erroring.
	tampered := strings.Replace(hash, "t=3", "t=4", 1)
	ok, err := VerifyPassword(tampered, "pw")
	require.NoError(t, err)
	assert.False(t, ok)
}
