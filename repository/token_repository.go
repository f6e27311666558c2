// file: repository/token_repository.go

package repository

import (
	"context"
	"database/sql"
	"errors"
	"modesta-resort-api/logger"
	"modesta-resort-api/model"

	"github.com/sirupsen/logrus"
)

// ITokenRepository defines the contract for refresh token database operations.
type ITokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	GetValidByHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	DeleteByHashForUser(ctx context.Context, tokenHash string, userID int) (int64, error)
	DeleteByUserID(ctx context.Context, userID int) error
	DeleteByUserIDTx(ctx context.Context, tx *sql.Tx, userID int) error
}

// TokenRepository implements ITokenRepository.
type TokenRepository struct {
	DB *sql.DB
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{DB: db}
}

// Create inserts a new refresh token record into the database.
func (r *TokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":    token.UserID,
		"expires_at": token.ExpiresAt,
	})
	log.Info("Executing query to create a new refresh token")

	query := `INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES ($1, $2, $3) RETURNING id, created_at`
	err := r.DB.QueryRowContext(ctx, query, token.UserID, token.TokenHash, token.ExpiresAt).Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create refresh token query")
		return err
	}
	return nil
}

// GetValidByHash retrieves an unexpired refresh token by its hashed value.
// Expired rows are treated as absent and yield sql.ErrNoRows.
func (r *TokenRepository) GetValidByHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	log := logger.Log
	log.Debug("Executing query to get refresh token by hash")

	token := &model.RefreshToken{}
	query := `SELECT id, user_id, token_hash, expires_at, created_at FROM refresh_tokens WHERE token_hash = $1 AND expires_at > NOW()`
	err := r.DB.QueryRowContext(ctx, query, tokenHash).Scan(&token.ID, &token.UserID, &token.TokenHash, &token.ExpiresAt, &token.CreatedAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.WithError(err).Error("Failed to execute get refresh token by hash query")
		}
		return nil, err
	}
	return token, nil
}

// DeleteByHashForUser removes a single session. The user id scopes the delete
// so one account cannot revoke another account's token.
func (r *TokenRepository) DeleteByHashForUser(ctx context.Context, tokenHash string, userID int) (int64, error) {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Executing query to delete a refresh token")

	res, err := r.DB.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token_hash = $1 AND user_id = $2`, tokenHash, userID)
	if err != nil {
		log.WithError(err).Error("Failed to execute delete refresh token query")
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteByUserID deletes all refresh tokens for a specific user.
// This is used for logging out from all sessions.
func (r *TokenRepository) DeleteByUserID(ctx context.Context, userID int) error {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Executing query to delete all refresh tokens for a user")

	_, err := r.DB.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	if err != nil {
		log.WithError(err).Error("Failed to execute delete refresh tokens query")
		return err
	}
	return nil
}

// DeleteByUserIDTx is DeleteByUserID inside a caller-owned transaction.
func (r *TokenRepository) DeleteByUserIDTx(ctx context.Context, tx *sql.Tx, userID int) error {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Executing query to revoke all refresh tokens for a user")

	_, err := tx.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	if err != nil {
		log.WithError(err).Error("Failed to execute revoke refresh tokens query")
		return err
	}
	return nil
}
