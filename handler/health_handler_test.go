// handler/health_handler_test.go
package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	HealthCheck("v1").ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var body HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "Modesta Resort API is running", body.Message)
	assert.Equal(t, "v1", body.Version)
	assert.NotEmpty(t, body.Timestamp)
}
