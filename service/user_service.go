package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"modesta-resort-api/logger"
	"modesta-resort-api/repository"

	"github.com/sirupsen/logrus"
)

// UserService handles account administration.
type UserService struct {
	db     *sql.DB
	users  repository.IUserRepository
	tokens repository.ITokenRepository
	cache  ICacheClient
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, users repository.IUserRepository, tokens repository.ITokenRepository, cache ICacheClient) *UserService {
	return &UserService{db: db, users: users, tokens: tokens, cache: cache}
}

// Deactivate disables the account and revokes its sessions. Access tokens
// already issued stop working because authentication re-checks is_active.
func (s *UserService) Deactivate(ctx context.Context, actorID, userID int) error {
	log := logger.Log.WithFields(logrus.Fields{
		"actor_id": actorID,
		"user_id":  userID,
	})
	if actorID == userID {
		return ErrSelfDeactivation
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.users.SetActiveTx(ctx, tx, userID, false); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	if err := s.tokens.DeleteByUserIDTx(ctx, tx, userID); err != nil {
		return fmt.Errorf("could not revoke sessions: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	cacheDel(ctx, s.cache, userCacheKey(userID))
	log.Info("User deactivated")
	return nil
}
