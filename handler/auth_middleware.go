package handler

import (
	"context"
	"errors"
	"modesta-resort-api/common"
	"modesta-resort-api/logger"
	"modesta-resort-api/model"
	"modesta-resort-api/service"
	"net/http"
	"strings"
)

type contextKey string

const UserKey contextKey = "user"

const (
	msgNoToken          = "Access denied. No token provided."
	msgInvalidToken     = "Invalid or expired token"
	msgAuthRequired     = "Authentication required."
	msgInsufficientRole = "Access denied. Insufficient permissions."
)

// TokenAuthenticator resolves a bearer token to an active user.
type TokenAuthenticator interface {
	AuthenticateAccessToken(ctx context.Context, token string) (*model.User, error)
}

type Authenticator struct {
	auth TokenAuthenticator
}

func NewAuthenticator(auth TokenAuthenticator) *Authenticator {
	return &Authenticator{auth: auth}
}

// WithUser attaches the authenticated user to ctx.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(UserKey).(*model.User)
	return user, ok && user != nil
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// Authenticate rejects requests without a valid access token belonging to an
// active user. Bad signatures, expiry and deactivated accounts all get the
// same message.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			common.NewAppError(http.StatusUnauthorized, msgNoToken, nil).Send(w)
			return
		}

		user, err := a.auth.AuthenticateAccessToken(r.Context(), token)
		if err != nil {
			if !isCredentialError(err) {
				common.NewAppError(http.StatusInternalServerError, "Could not authenticate request", err).Send(w)
				return
			}
			logger.Log.WithError(err).WithField("path", r.URL.Path).Debug("Rejected access token")
			common.NewAppError(http.StatusUnauthorized, msgInvalidToken, nil).Send(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// OptionalAuthenticate attaches the user when a valid token is present and
// otherwise lets the request through anonymously.
func (a *Authenticator) OptionalAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, ok := bearerToken(r); ok {
			user, err := a.auth.AuthenticateAccessToken(r.Context(), token)
			switch {
			case err == nil:
				r = r.WithContext(WithUser(r.Context(), user))
			case !isCredentialError(err):
				logger.Log.WithError(err).WithField("path", r.URL.Path).Warn("Could not resolve optional access token")
			}
		}
		next.ServeHTTP(w, r)
	})
}

// isCredentialError separates a bad or stale token from a failure to check it.
func isCredentialError(err error) bool {
	return errors.Is(err, service.ErrTokenExpired) ||
		errors.Is(err, service.ErrTokenInvalid) ||
		errors.Is(err, service.ErrUserNotFound)
}

// Authorize must run after Authenticate.
func Authorize(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				common.NewAppError(http.StatusUnauthorized, msgAuthRequired, nil).Send(w)
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			logger.Log.WithField("user_id", user.ID).Warn("Permission denied for role")
			common.NewAppError(http.StatusForbidden, msgInsufficientRole, nil).Send(w)
		})
	}
}
