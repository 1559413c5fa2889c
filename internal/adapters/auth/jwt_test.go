package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pine_hotel/internal/domain"
)

const secret = "0123456789abcdef-test"

func TestJWT_RoundTrip(t *testing.T) {
	j, err := NewJWT(secret, time.Hour)
	require.NoError(t, err)

	tok, exp, err := j.Issue(domain.User{ID: 42, Email: "owner@pine.test", Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	p, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, domain.Principal{UserID: 42, Email: "owner@pine.test", Role: domain.RoleAdmin}, p)
}

func TestJWT_Rejects(t *testing.T) {
	j, err := NewJWT(secret, time.Hour)
	require.NoError(t, err)
	other, err := NewJWT("another-secret-0123456789", time.Hour)
	require.NoError(t, err)

	foreign, _, err := other.Issue(domain.User{ID: 1, Role: domain.RoleSuperAdmin})
	require.NoError(t, err)

	expired := &JWT{secret: []byte(secret), ttl: time.Minute, now: func() time.Time { return time.Now().Add(-time.Hour) }}
	old, _, err := expired.Issue(domain.User{ID: 1, Role: domain.RoleGuest})
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "1", "role": "superadmin", "iss": issuer}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	badRole, _, err := j.Issue(domain.User{ID: 1, Role: domain.Role("root")})
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"garbage":   "not.a.token",
		"foreign":   foreign,
		"expired":   old,
		"alg none":  none,
		"bad role":  badRole,
		"empty":     "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := j.Parse(tok)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}

func TestNewJWT_ShortSecret(t *testing.T) {
	_, err := NewJWT("short", time.Hour)
	assert.Error(t, err)
}
