package common

import (
	"errors"
	"io"
	"modesta-resort-api/config"
	"modesta-resort-api/logger"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Send(t *testing.T) {
	logger.InitWithWriter(io.Discard)

	t.Run("client error keeps message", func(t *testing.T) {
		rr := httptest.NewRecorder()
		NewAppError(http.StatusConflict, "User with this email already exists", nil).Send(rr)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.JSONEq(t, `{"success":false,"code":409,"message":"User with this email already exists"}`, rr.Body.String())
	})

	t.Run("server error is masked in production", func(t *testing.T) {
		prev := config.AppConfig
		defer func() { config.AppConfig = prev }()
		config.AppConfig.Server.Env = "production"

		rr := httptest.NewRecorder()
		NewAppError(http.StatusInternalServerError, "pq: relation users does not exist", errors.New("boom")).Send(rr)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Contains(t, rr.Body.String(), maskedServerErrorMessage)
		assert.NotContains(t, rr.Body.String(), "relation")
	})

	t.Run("server error is visible outside production", func(t *testing.T) {
		prev := config.AppConfig
		defer func() { config.AppConfig = prev }()
		config.AppConfig.Server.Env = "development"

		rr := httptest.NewRecorder()
		NewAppError(http.StatusInternalServerError, "Could not load rooms", errors.New("boom")).Send(rr)

		assert.Contains(t, rr.Body.String(), "Could not load rooms")
	})
}
