package handler

import (
	"modesta-resort-api/common"
	"net/http"
	"time"
)

type HealthResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// HealthCheck godoc
// @Summary      Show the status of server
// @Description  get the status of server
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Router       /health [get]
func HealthCheck(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		common.WriteJSON(w, http.StatusOK, HealthResponse{
			Success:   true,
			Message:   "Modesta Resort API is running",
			Version:   version,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}
