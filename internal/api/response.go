package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/libreshelf/libreshelf/internal/model"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// storeError maps the store's error taxonomy to an HTTP status and
// writes the error message. Unexpected errors are logged and hidden
// behind a generic storage-error message.
func storeError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrDuplicateKey),
		errors.Is(err, model.ErrConflict),
		errors.Is(err, model.ErrResourceBusy),
		errors.Is(err, model.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, model.ErrAuthFailure):
		status = http.StatusUnauthorized
	default:
		slog.Error("storage error", "error", err)
		jsonError(w, http.StatusInternalServerError, "storage error")
		return
	}
	jsonError(w, status, err.Error())
}
