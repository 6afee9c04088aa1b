package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"spendsight/internal/forms"
	applog "spendsight/internal/log"
)

type errorResponse struct {
	Error string `json:"error"`
}

type fieldErrorResponse struct {
	Error  string                     `json:"error"`
	Fields map[string]forms.ErrorKind `json:"fields"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", applog.FieldError, err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeFieldErrors reports per-field validation failures as a 422 with the
// forms error kinds, so clients can highlight individual inputs.
func writeFieldErrors(w http.ResponseWriter, fields map[string]forms.ErrorKind) {
	writeJSON(w, http.StatusUnprocessableEntity, fieldErrorResponse{
		Error:  "validation failed",
		Fields: fields,
	})
}

// requireMethod writes a 405 when the method does not match, returning false.
func requireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	allow := ""
	for i, m := range methods {
		if i > 0 {
			allow += ", "
		}
		allow += m
	}
	w.Header().Set("Allow", allow)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	return false
}
