package middleware

import (
	"encoding/json"
	"net/http"
	"time"
)

const (
	contentTypeHeader = "Content-Type"
	applicationJSON   = "application/json"
)

type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// WriteJSONError writes the error body shared by middleware and handlers.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set(contentTypeHeader, applicationJSON)
	w.WriteHeader(statusCode)

	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
