package common

import (
	"encoding/json"
	"net/http"
)

// Envelope is the success body shared by every endpoint.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// Respond writes a success envelope.
func Respond(w http.ResponseWriter, status int, message string, data interface{}) {
	WriteJSON(w, status, Envelope{Success: true, Message: message, Data: data})
}
