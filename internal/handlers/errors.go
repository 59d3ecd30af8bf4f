package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"pantrypal/internal/apperr"
)

// errorResponse is the JSON shape of every error reply
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeJSON writes v as a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			log.Printf("Failed to encode response: %v", err)
		}
	}
}

// writeError maps a service error onto an HTTP status via the error
// taxonomy: not-found 404, forbidden 403, conflicts 409, validation 400.
// Anything outside the taxonomy is an internal error; the detail is
// logged, not leaked.
func writeError(w http.ResponseWriter, err error) {
	code := apperr.CodeOf(err)

	var status int
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindForbidden:
		status = http.StatusForbidden
		if code == "invalid_credentials" {
			status = http.StatusUnauthorized
		}
	case apperr.KindConflict, apperr.KindStateConflict:
		status = http.StatusConflict
	case apperr.KindValidation:
		status = http.StatusBadRequest
	default:
		log.Printf("Internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}

// decodeJSON parses a request body into v
func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validation("invalid_json", "request body is not valid JSON")
	}
	return nil
}

// pathID parses the named path segment as an integer id
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid_id", "invalid "+name)
	}
	return id, nil
}
