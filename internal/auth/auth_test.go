package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNormalizeEmail(t *testing.T) {
	got, err := NormalizeEmail("  Ada@Example.ORG ")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.org", got)

	for _, bad := range []string{"", "ada", "ada@", "@example.org"} {
		_, err := NormalizeEmail(bad)
		assert.ErrorIs(t, err, ErrInvalidEmail, bad)
	}
}

func TestHashPassword(t *testing.T) {
	_, err := HashPassword("short", bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = HashPassword(strings.Repeat("x", 73), bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrWeakPassword)

	hash, err := HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NoError(t, CheckPassword(hash, "correct horse"))
	assert.ErrorIs(t, CheckPassword(hash, "wrong horse"), ErrInvalidCredential)
	assert.ErrorIs(t, CheckPassword("", "anything"), ErrInvalidCredential)
}

func TestErrorIsMatchesByCode(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), &Error{Code: CodeInvalidToken, Message: "other text"})
	assert.ErrorIs(t, wrapped, ErrInvalidToken)
	assert.NotErrorIs(t, wrapped, ErrWeakPassword)
}

func TestNewToken(t *testing.T) {
	a, digestA, err := NewToken()
	require.NoError(t, err)
	b, _, err := NewToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
	assert.Equal(t, digestA, Digest(a))
	assert.NotEqual(t, a, digestA)
}

func TestMemoryMailer(t *testing.T) {
	var m MemoryMailer
	_, ok := m.Last()
	assert.False(t, ok)

	require.NoError(t, m.Send(context.Background(), Message{To: "a@b.c", Link: "x"}))
	last, ok := m.Last()
	require.True(t, ok)
	assert.Equal(t, "a@b.c", last.To)
	assert.Len(t, m.Sent(), 1)
}
