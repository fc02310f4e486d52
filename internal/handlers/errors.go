package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/crucial707/screentime/internal/repo"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "internal server error"

// ErrMessageUnavailable is shown when the database cannot be reached.
const ErrMessageUnavailable = "database unavailable, please try again shortly"

// JSONError sends a JSON error response with a single "error" field.
func JSONError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// JSONValidationError sends a JSON error response with "error" and optional "fields" for field-level details.
// status is typically http.StatusBadRequest (400).
func JSONValidationError(w http.ResponseWriter, message string, fields map[string]string, status int) {
	out := map[string]interface{}{"error": message}
	if len(fields) > 0 {
		out["fields"] = fields
	}
	writeJSON(w, status, out)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// storeStatus maps a repository error to its HTTP status and client message.
func storeStatus(err error) (int, string) {
	if errors.Is(err, repo.ErrUnavailable) {
		return http.StatusServiceUnavailable, ErrMessageUnavailable
	}
	return http.StatusInternalServerError, ErrMessageInternal
}

// jsonStoreError logs err and answers 503 for an unreachable database, 500 otherwise.
func jsonStoreError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := storeStatus(err)
	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	JSONError(w, msg, status)
}

// pageStoreError is jsonStoreError for HTML pages.
func pageStoreError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := storeStatus(err)
	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	data := newPageData(r)
	data.Error = msg
	renderTemplate(w, status, "error.html", data)
}

// validationFields flattens validation errors to field -> failed rule.
func validationFields(err error) map[string]string {
	fields := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
	}
	return fields
}
