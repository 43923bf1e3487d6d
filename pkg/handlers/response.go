// Package handlers exposes the market intelligence core over a thin HTTP
// surface. Auth and routing middleware are collaborator concerns; these
// handlers only decode requests, call services, and map errors to
// statuses.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/propfolio/market-engine/pkg/apperrors"
)

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// ServiceError maps a service-layer error to an HTTP error response.
func ServiceError(w http.ResponseWriter, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return ErrorResponse(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, apperrors.ErrMissingLocality):
		return ErrorResponse(w, http.StatusUnprocessableEntity, "missing_locality", err.Error())
	case errors.Is(err, apperrors.ErrNoComparableData):
		return ErrorResponse(w, http.StatusUnprocessableEntity, "no_comparable_data", err.Error())
	case errors.Is(err, apperrors.ErrMalformedAnalysis):
		return ErrorResponse(w, http.StatusBadGateway, "malformed_analysis", err.Error())
	case errors.Is(err, apperrors.ErrConflict):
		return ErrorResponse(w, http.StatusConflict, "conflict", err.Error())
	default:
		return ErrorResponse(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
