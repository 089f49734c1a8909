package http

import (
	"encoding/json"
	"net/http"

	"moneywise/internal/apperr"
)

const maxBodyBytes = 1 << 20

// envelope is the uniform response wrapper. Data is omitted on errors.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}

var kindStatus = map[apperr.Kind]int{
	apperr.KindValidation:   http.StatusBadRequest,
	apperr.KindUnauthorized: http.StatusUnauthorized,
	apperr.KindForbidden:    http.StatusForbidden,
	apperr.KindNotFound:     http.StatusNotFound,
	// Duplicates report 400, matching the client's expectations.
	apperr.KindConflict: http.StatusBadRequest,
	apperr.KindInternal: http.StatusInternalServerError,
}

// writeServiceError maps a typed error to its HTTP status. Unclassified
// errors become opaque 500s.
func writeServiceError(w http.ResponseWriter, err error) {
	status, ok := kindStatus[apperr.KindOf(err)]
	if !ok {
		status = http.StatusInternalServerError
	}
	writeError(w, status, apperr.Message(err))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Corps de requête invalide")
		return false
	}
	return true
}
