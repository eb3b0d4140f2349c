package middleware

import (
	"encoding/json"
	"net/http"
)

// errorEnvelope mirrors the handler package's response shape so middleware
// rejections look the same as handler errors to clients.
type errorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// writeJSONError writes a JSON-encoded error response with the correct Content-Type.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{Success: false, Message: msg})
}
