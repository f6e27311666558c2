package service

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"modesta-resort-api/config"
	"modesta-resort-api/logger"
	"modesta-resort-api/model"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ITokenIssuer signs and verifies access and refresh tokens.
type ITokenIssuer interface {
	IssueAccessToken(user model.TokenUser) (string, error)
	IssueRefreshToken(user model.TokenUser) (string, time.Time, error)
	VerifyAccessToken(token string) (*model.AppClaims, error)
	VerifyRefreshToken(token string) (*model.AppClaims, error)
}

// TokenIssuer signs HS256 tokens. Access and refresh tokens use different
// secrets so one can never be replayed as the other.
type TokenIssuer struct {
	cfg config.JWTConfig
	now func() time.Time
}

func NewTokenIssuer(cfg config.JWTConfig) *TokenIssuer {
	return &TokenIssuer{cfg: cfg, now: time.Now}
}

func (t *TokenIssuer) IssueAccessToken(user model.TokenUser) (string, error) {
	token, _, err := t.sign(user, []byte(t.cfg.AccessSecret), t.cfg.AccessTTL)
	return token, err
}

// IssueRefreshToken also returns the expiry so the caller can persist it.
func (t *TokenIssuer) IssueRefreshToken(user model.TokenUser) (string, time.Time, error) {
	return t.sign(user, []byte(t.cfg.RefreshSecret), t.cfg.RefreshTTL)
}

func (t *TokenIssuer) VerifyAccessToken(token string) (*model.AppClaims, error) {
	return t.verify(token, []byte(t.cfg.AccessSecret))
}

func (t *TokenIssuer) VerifyRefreshToken(token string) (*model.AppClaims, error) {
	return t.verify(token, []byte(t.cfg.RefreshSecret))
}

func (t *TokenIssuer) sign(user model.TokenUser, key []byte, ttl time.Duration) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(ttl)

	claims := &model.AppClaims{
		TokenUser: user,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.UUID,
			Issuer:    t.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", user.UserID).Error("Failed to sign JWT")
		return "", time.Time{}, fmt.Errorf("failed to sign token string: %w", err)
	}
	return signed, expiresAt, nil
}

func (t *TokenIssuer) verify(tokenString string, key []byte) (*model.AppClaims, error) {
	claims := &model.AppClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)

	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// HashToken is the SHA-256 hex digest under which opaque credentials are stored.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
