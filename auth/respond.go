// Shared helpers for writing JSON responses and standardized errors.
// Centralizing these keeps every handler's error path identical: classify via
// apperror, serialize the public message, never the wrapped cause.
package auth

import (
	"encoding/json"
	"net/http"

	"github.com/user/learnhub-go/apperror"
)

// WriteJSON serializes `data` to JSON and writes it with the given status.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Avoid writing nil, which would produce a literal "null" body.
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// If encoding fails the status line is already gone; best effort.
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}

// WriteError converts any error into a standardized error response.
// Errors that are not already an *apperror.AppError (plain Go errors escaping
// a service) are wrapped as internal errors, so the client always receives the
// same JSON shape and never raw error text from lower layers.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("an unexpected error occurred", err)
	}
	WriteJSON(w, appErr.StatusCode(), appErr.ToResponse())
}
