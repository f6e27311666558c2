package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"modesta-resort-api/logger"
	"modesta-resort-api/model"
	"modesta-resort-api/repository"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AuthOptions carries the settings AuthService reads from configuration.
type AuthOptions struct {
	ResetTokenTTL time.Duration
	FrontendURL   string
}

// AuthService implements registration, sessions and password recovery.
type AuthService struct {
	db       *sql.DB
	users    repository.IUserRepository
	tokens   repository.ITokenRepository
	resets   repository.IResetRepository
	hasher   IPasswordHasher
	issuer   ITokenIssuer
	cache    ICacheClient
	notifier ResetNotifier
	opts     AuthOptions
}

func NewAuthService(
	db *sql.DB,
	users repository.IUserRepository,
	tokens repository.ITokenRepository,
	resets repository.IResetRepository,
	hasher IPasswordHasher,
	issuer ITokenIssuer,
	cache ICacheClient,
	notifier ResetNotifier,
	opts AuthOptions,
) *AuthService {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &AuthService{
		db:       db,
		users:    users,
		tokens:   tokens,
		resets:   resets,
		hasher:   hasher,
		issuer:   issuer,
		cache:    cache,
		notifier: notifier,
		opts:     opts,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a guest account and opens its first session. When the
// session cannot be opened the response carries only the user.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	email := normalizeEmail(req.Email)

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("could not hash password: %w", err)
	}

	user := &model.User{
		UUID:         uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        req.Phone,
		Role:         model.RoleGuest,
	}
	if err := s.users.CreateWithProfile(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	log := logger.Log.WithFields(logrus.Fields{"user_id": user.ID, "uuid": user.UUID})

	// The account is committed at this point; a retry would only get a 409.
	resp, err := s.openSession(ctx, user)
	if err != nil {
		log.WithError(err).Error("User registered but no session could be opened")
		return &model.AuthResponse{User: user}, nil
	}

	log.Info("New user registered")
	return resp, nil
}

// Login verifies credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Compare(user.PasswordHash, req.Password) {
		logger.Log.WithField("user_id", user.ID).Warn("Login failed: wrong password")
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID).Warn("Could not record last login")
	}

	resp, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}

	logger.Log.WithField("user_id", user.ID).Info("User logged in")
	return resp, nil
}

func (s *AuthService) openSession(ctx context.Context, user *model.User) (*model.AuthResponse, error) {
	tokenUser := model.NewTokenUser(user)

	access, err := s.issuer.IssueAccessToken(tokenUser)
	if err != nil {
		return nil, err
	}
	refresh, expiresAt, err := s.issuer.IssueRefreshToken(tokenUser)
	if err != nil {
		return nil, err
	}

	stored := &model.RefreshToken{UserID: user.ID, TokenHash: HashToken(refresh), ExpiresAt: expiresAt}
	if err := s.tokens.Create(ctx, stored); err != nil {
		return nil, fmt.Errorf("could not store refresh token: %w", err)
	}

	return &model.AuthResponse{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a stored, unexpired refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.issuer.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	stored, err := s.tokens.GetValidByHash(ctx, HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrInvalidRefreshToken
		}
		return "", err
	}
	if stored.UserID != claims.UserID {
		return "", ErrInvalidRefreshToken
	}

	user, err := s.users.GetActiveByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrInvalidRefreshToken
		}
		return "", err
	}

	return s.issuer.IssueAccessToken(model.NewTokenUser(user))
}

// Logout revokes the given refresh token, or every session of the user when
// allDevices is set or no token is supplied.
func (s *AuthService) Logout(ctx context.Context, userID int, req model.LogoutRequest) error {
	log := logger.Log.WithField("user_id", userID)

	if req.RefreshToken != "" && !req.AllDevices {
		n, err := s.tokens.DeleteByHashForUser(ctx, HashToken(req.RefreshToken), userID)
		if err != nil {
			return err
		}
		log.WithField("revoked", n).Info("User logged out")
	} else {
		if err := s.tokens.DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		log.Info("User logged out from all devices")
	}

	cacheDel(ctx, s.cache, userCacheKey(userID))
	return nil
}

// ForgotPassword never reports whether the address exists. Storage and
// delivery failures are logged only.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.Log.WithError(err).Error("Forgot password lookup failed")
		}
		return
	}
	if !user.IsActive {
		return
	}
	log := logger.Log.WithField("user_id", user.ID)

	token, err := randomToken()
	if err != nil {
		log.WithError(err).Error("Could not generate reset token")
		return
	}

	reset := &model.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: HashToken(token),
		ExpiresAt: time.Now().Add(s.opts.ResetTokenTTL),
	}
	if err := s.resets.Create(ctx, reset); err != nil {
		log.WithError(err).Error("Could not store reset token")
		return
	}

	resetURL := strings.TrimRight(s.opts.FrontendURL, "/") + "/reset-password?token=" + token
	if err := s.notifier.NotifyPasswordReset(ctx, user, resetURL); err != nil {
		log.WithError(err).Error("Could not deliver password reset notification")
		return
	}
	log.Info("Password reset requested")
}

// ResetPassword consumes the reset token, replaces the password and revokes
// every refresh token of the user in one transaction.
// The password is only hashed once the token has been accepted.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	userID, err := s.resets.ConsumeTx(ctx, tx, HashToken(token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidResetToken
		}
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("could not hash password: %w", err)
	}

	if err := s.users.UpdatePasswordTx(ctx, tx, userID, hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("could not update password: %w", err)
	}
	if err := s.tokens.DeleteByUserIDTx(ctx, tx, userID); err != nil {
		return fmt.Errorf("could not revoke sessions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	cacheDel(ctx, s.cache, userCacheKey(userID))
	logger.Log.WithField("user_id", userID).Info("Password reset completed")
	return nil
}

// Me returns the profile of the authenticated user, served from cache when possible.
func (s *AuthService) Me(ctx context.Context, userID int) (*model.UserProfile, error) {
	key := userCacheKey(userID)

	var cached model.UserProfile
	if cacheGet(ctx, s.cache, key, &cached) {
		return &cached, nil
	}

	profile, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	cacheSet(ctx, s.cache, key, profile, userCacheTTL)
	return profile, nil
}

// AuthenticateAccessToken resolves a bearer token to a currently active user.
func (s *AuthService) AuthenticateAccessToken(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.issuer.VerifyAccessToken(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetActiveByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
