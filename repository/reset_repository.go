package repository

import (
	"context"
	"database/sql"
	"errors"
	"modesta-resort-api/logger"
	"modesta-resort-api/model"

	"github.com/sirupsen/logrus"
)

// IResetRepository stores single-use password reset tokens.
type IResetRepository interface {
	Create(ctx context.Context, token *model.PasswordResetToken) error
	ConsumeTx(ctx context.Context, tx *sql.Tx, tokenHash string) (int, error)
}

type ResetRepository struct {
	DB *sql.DB
}

func NewResetRepository(db *sql.DB) *ResetRepository {
	return &ResetRepository{DB: db}
}

func (r *ResetRepository) Create(ctx context.Context, token *model.PasswordResetToken) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":    token.UserID,
		"expires_at": token.ExpiresAt,
	})
	log.Info("Executing query to create a password reset token")

	query := `INSERT INTO password_resets (user_id, token_hash, expires_at) VALUES ($1, $2, $3) RETURNING id, used, created_at`
	err := r.DB.QueryRowContext(ctx, query, token.UserID, token.TokenHash, token.ExpiresAt).Scan(&token.ID, &token.Used, &token.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create password reset query")
		return err
	}
	return nil
}

// ConsumeTx marks the token used and returns its owner. The conditional update
// makes a second consumer see sql.ErrNoRows, as does an expired or unknown token.
func (r *ResetRepository) ConsumeTx(ctx context.Context, tx *sql.Tx, tokenHash string) (int, error) {
	log := logger.Log
	log.Info("Executing query to consume a password reset token")

	query := `UPDATE password_resets SET used = TRUE
		WHERE token_hash = $1 AND used = FALSE AND expires_at > NOW()
		RETURNING user_id`
	var userID int
	err := tx.QueryRowContext(ctx, query, tokenHash).Scan(&userID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.WithError(err).Error("Failed to execute consume password reset query")
		}
		return 0, err
	}
	return userID, nil
}
