package handlers

import (
	"encoding/json"
	"net/http"
)

// WriteJSON encodes data as the response body. The status line is only
// written explicitly for non-200 codes so Encode can still surface errors.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// ErrorResponse writes the {error, message} envelope every handler uses for
// failures. errorCode is a stable machine-readable tag, message is for humans.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}
