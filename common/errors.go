package common

import (
	"encoding/json"
	"modesta-resort-api/config"
	"modesta-resort-api/logger"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

const maskedServerErrorMessage = "An unexpected error occurred. Please try again later."

// FieldError describes one failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type AppError struct {
	Success bool         `json:"success"`
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	Err     error        `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewValidationError builds a 400 carrying per-field messages.
func NewValidationError(message string, fields []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
		Errors:  fields,
	}
}

func (e *AppError) Send(w http.ResponseWriter) {
	if e.Err != nil {
		logger.Log.WithFields(logrus.Fields{
			"status_code":    e.Code,
			"internal_error": e.Err.Error(),
		}).Error(e.Message)
	}

	body := *e
	if e.Code >= http.StatusInternalServerError {
		if e.Err != nil {
			sentry.CaptureException(e.Err)
		}
		if config.AppConfig.IsProduction() {
			body.Message = maskedServerErrorMessage
			body.Errors = nil
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.Code)
	json.NewEncoder(w).Encode(body)
}
