// Package handler provides the HTTP handlers for the landing auth API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gwan-project/landing-auth/internal/auth"
	"github.com/gwan-project/landing-auth/internal/domain"
	"github.com/gwan-project/landing-auth/internal/service"
)

// response is the uniform API envelope.
type response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeSuccess writes a success envelope.
func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// writeError maps an error to its HTTP status and writes a failure envelope.
// Unrecognized errors are reported as a generic internal error so internals
// never leak to clients.
func writeError(w http.ResponseWriter, err error) {
	status, message := errorStatus(err)
	writeJSON(w, status, response{
		Success: false,
		Error:   message,
	})
}

// errorStatus resolves the HTTP status and client-facing message for an error.
func errorStatus(err error) (int, string) {
	switch {
	// Validation failures
	case errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrInvalidPhone),
		errors.Is(err, domain.ErrInvalidContact),
		errors.Is(err, domain.ErrInvalidCodeFormat),
		errors.Is(err, domain.ErrImageRequired),
		errors.Is(err, domain.ErrImageTypeNotAllowed),
		errors.Is(err, domain.ErrCharacterHasNoImage):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, domain.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge, err.Error()

	// Not found
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrCharacterNotFound):
		return http.StatusNotFound, err.Error()

	// Conflicts with existing data or lifecycle state
	case errors.Is(err, domain.ErrEmailAlreadyRegistered),
		errors.Is(err, domain.ErrPhoneAlreadyRegistered),
		errors.Is(err, domain.ErrAccountNotPending),
		errors.Is(err, domain.ErrAccountNotActivated),
		errors.Is(err, domain.ErrAccountNotReady):
		return http.StatusConflict, err.Error()

	// Code rejections during activation
	case errors.Is(err, domain.ErrNoCodeIssued),
		errors.Is(err, domain.ErrCodeExpired),
		errors.Is(err, domain.ErrCodeMismatch):
		return http.StatusBadRequest, err.Error()

	// Authentication
	case errors.Is(err, service.ErrLoginFailed),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrMissingAuthorizationHeader),
		errors.Is(err, auth.ErrInvalidAuthorizationHeader):
		return http.StatusUnauthorized, err.Error()

	// Upstream dependencies
	case errors.Is(err, service.ErrCodeDeliveryFailed):
		return http.StatusBadGateway, service.ErrCodeDeliveryFailed.Error()
	case errors.Is(err, service.ErrAnalysisFailed):
		return http.StatusBadGateway, service.ErrAnalysisFailed.Error()
	case errors.Is(err, service.ErrAnalysisDisabled):
		return http.StatusServiceUnavailable, service.ErrAnalysisDisabled.Error()

	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// decodeJSON decodes the request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
