package crypto

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanjibattle/domain"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	t.Parallel()
	m := NewJWTManager("test-secret", time.Hour)

	token, err := m.Generate("user-42", time.Now())
	require.NoError(t, err)

	id, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", id)
}

func TestJWTManager_ExpiredToken(t *testing.T) {
	t.Parallel()
	m := NewJWTManager("test-secret", time.Hour)

	token, err := m.Generate("user-42", time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.ErrorIs(t, err, domain.ErrExpiredToken)
}

func TestJWTManager_WrongKey(t *testing.T) {
	t.Parallel()
	m := NewJWTManager("test-secret", time.Hour)
	other := NewJWTManager("other-secret", time.Hour)

	token, err := other.Generate("user-42", time.Now())
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.ErrorIs(t, err, domain.ErrInvalidTokenSignature)
}

func TestJWTManager_WrongSigningAlg(t *testing.T) {
	t.Parallel()
	m := NewJWTManager("test-secret", time.Hour)

	// alg: none, signed with the library's dedicated constant
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"id": "user-42"})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.ErrorIs(t, err, domain.ErrInvalidSigningAlg)
}

func TestJWTManager_GarbageToken(t *testing.T) {
	t.Parallel()
	m := NewJWTManager("test-secret", time.Hour)

	_, err := m.Verify("not.a.token")
	assert.ErrorIs(t, err, domain.ErrCorruptedToken)
}
