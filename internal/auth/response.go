package auth

import (
	"encoding/json"
	"net/http"
)

// AlertType classifies messages returned to API clients.
type AlertType int

const (
	AlertError   AlertType = 1
	AlertInfo    AlertType = 2
	AlertSuccess AlertType = 3
)

// Alert carries user-facing messages in API responses.
type Alert struct {
	Messages  []string  `json:"messages"`
	AlertType AlertType `json:"alertType"`
}

// ErrorResponse is the structured error payload returned by the request
// preparation pipeline, the authentication gates, and route handlers.
// Response bodies never include stack traces or credential material.
type ErrorResponse struct {
	Alert Alert `json:"alert"`
}

// NewErrorResponse builds an error payload with a single message and
// Error severity.
func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Alert: Alert{Messages: []string{message}, AlertType: AlertError}}
}

// WriteError writes a JSON error payload with the given status code.
func WriteError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(NewErrorResponse(message))
}
