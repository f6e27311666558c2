package service

import (
	"context"
	"modesta-resort-api/logger"
	"modesta-resort-api/model"

	"github.com/sirupsen/logrus"
)

// ResetNotifier delivers the password reset link to the account owner.
type ResetNotifier interface {
	NotifyPasswordReset(ctx context.Context, user *model.User, resetURL string) error
}

// LogNotifier is used when no message broker is configured. The link is only
// written at debug level.
type LogNotifier struct{}

func (LogNotifier) NotifyPasswordReset(_ context.Context, user *model.User, resetURL string) error {
	log := logger.Log.WithField("user_id", user.ID)
	log.Info("Password reset requested, no broker configured")
	log.WithFields(logrus.Fields{"reset_url": resetURL}).Debug("Password reset link")
	return nil
}
