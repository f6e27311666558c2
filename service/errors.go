package service

import "errors"

var (
	ErrEmailTaken           = errors.New("user with this email already exists")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrAccountInactive      = errors.New("account is deactivated")
	ErrInvalidRefreshToken  = errors.New("invalid or expired refresh token")
	ErrInvalidResetToken    = errors.New("invalid or expired reset token")
	ErrUserNotFound         = errors.New("user not found")
	ErrRoomCategoryNotFound = errors.New("room category not found")
	ErrInvalidStayDates     = errors.New("check-out date must be after check-in date")
	ErrTooManyGuests        = errors.New("number of guests exceeds room capacity")
	ErrSelfDeactivation     = errors.New("administrators cannot deactivate their own account")

	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)
