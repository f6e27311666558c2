package service

import (
	"modesta-resort-api/config"
	"modesta-resort-api/model"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		AccessSecret:  "access-secret-for-tests",
		RefreshSecret: "refresh-secret-for-tests",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Issuer:        "modesta-resort",
	}
}

func testTokenUser() model.TokenUser {
	return model.TokenUser{UserID: 42, UUID: "uuid-42", Email: "guest@example.com", Role: model.RoleGuest, FirstName: "Ada", LastName: "Lovelace"}
}

func TestTokenIssuer_AccessRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(testJWTConfig())

	token, err := issuer.IssueAccessToken(testTokenUser())
	require.NoError(t, err)

	claims, err := issuer.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, model.RoleGuest, claims.Role)
	assert.Equal(t, "modesta-resort", claims.Issuer)
	assert.Equal(t, "uuid-42", claims.Subject)
}

func TestTokenIssuer_RefreshTokensAreUnique(t *testing.T) {
	issuer := NewTokenIssuer(testJWTConfig())
	fixed := time.Now()
	issuer.now = func() time.Time { return fixed }

	a, expA, err := issuer.IssueRefreshToken(testTokenUser())
	require.NoError(t, err)
	b, _, err := issuer.IssueRefreshToken(testTokenUser())
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.WithinDuration(t, fixed.Add(7*24*time.Hour), expA, time.Second)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer(testJWTConfig())
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := issuer.IssueAccessToken(testTokenUser())
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenIssuer_Rejections(t *testing.T) {
	cfg := testJWTConfig()
	issuer := NewTokenIssuer(cfg)

	access, err := issuer.IssueAccessToken(testTokenUser())
	require.NoError(t, err)
	refresh, _, err := issuer.IssueRefreshToken(testTokenUser())
	require.NoError(t, err)

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := issuer.VerifyRefreshToken(access)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		_, err := issuer.VerifyAccessToken(refresh)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.VerifyAccessToken("not.a.token")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("foreign issuer", func(t *testing.T) {
		other := cfg
		other.Issuer = "someone-else"
		foreign, err := NewTokenIssuer(other).IssueAccessToken(testTokenUser())
		require.NoError(t, err)

		_, err = issuer.VerifyAccessToken(foreign)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("alg none", func(t *testing.T) {
		claims := &model.AppClaims{
			TokenUser: testTokenUser(),
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    cfg.Issuer,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = issuer.VerifyAccessToken(unsigned)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}

func TestHashToken(t *testing.T) {
	h := HashToken("abc")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashToken("abc"))
	assert.NotEqual(t, h, HashToken("abd"))
}
