package handler

import (
	"errors"
	"modesta-resort-api/common"
	"modesta-resort-api/service"
	"net/http"
)

func ErrorHandlingMiddleware(next func(http.ResponseWriter, *http.Request) *common.AppError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := next(w, r); err != nil {
			err.Send(w)
		}
	}
}

// serviceError maps service sentinel errors to HTTP responses. Anything
// unrecognised becomes a 500 carrying fallback as its message.
func serviceError(err error, fallback string) *common.AppError {
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		return common.NewAppError(http.StatusConflict, "User with this email already exists", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		return common.NewAppError(http.StatusUnauthorized, "Invalid email or password", nil)
	case errors.Is(err, service.ErrAccountInactive):
		return common.NewAppError(http.StatusForbidden, "Account is deactivated. Please contact support.", nil)
	case errors.Is(err, service.ErrInvalidRefreshToken):
		return common.NewAppError(http.StatusUnauthorized, "Invalid or expired refresh token", nil)
	case errors.Is(err, service.ErrInvalidResetToken):
		return common.NewAppError(http.StatusBadRequest, "Invalid or expired reset token", nil)
	case errors.Is(err, service.ErrUserNotFound):
		return common.NewAppError(http.StatusNotFound, "User not found", nil)
	case errors.Is(err, service.ErrRoomCategoryNotFound):
		return common.NewAppError(http.StatusNotFound, "Room category not found", nil)
	case errors.Is(err, service.ErrInvalidStayDates):
		return common.NewAppError(http.StatusBadRequest, "Check-out date must be after check-in date", nil)
	case errors.Is(err, service.ErrTooManyGuests):
		return common.NewAppError(http.StatusBadRequest, "Number of guests exceeds room capacity", nil)
	case errors.Is(err, service.ErrSelfDeactivation):
		return common.NewAppError(http.StatusBadRequest, "You cannot deactivate your own account", nil)
	}
	return common.NewAppError(http.StatusInternalServerError, fallback, err)
}
