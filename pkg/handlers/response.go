// Package handlers implements the HTTP surface of cicerone-engine.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cerveza-fortuna/cicerone-engine/pkg/apperrors"
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

// WriteError maps an engine error to its HTTP status and error code.
func WriteError(w http.ResponseWriter, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return ErrorResponse(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, apperrors.ErrSessionNotFound):
		return ErrorResponse(w, http.StatusNotFound, "session_not_found", err.Error())
	case errors.Is(err, apperrors.ErrInsufficientData):
		return ErrorResponse(w, http.StatusConflict, "insufficient_data", err.Error())
	case errors.Is(err, apperrors.ErrAllTasted):
		return ErrorResponse(w, http.StatusConflict, "all_tasted", err.Error())
	case errors.Is(err, apperrors.ErrNoDataAvailable):
		return ErrorResponse(w, http.StatusServiceUnavailable, "no_data_available", err.Error())
	case errors.Is(err, apperrors.ErrFetchFailed):
		return ErrorResponse(w, http.StatusBadGateway, "fetch_failed", err.Error())
	case errors.Is(err, apperrors.ErrInvalidBeerRecord):
		return ErrorResponse(w, http.StatusUnprocessableEntity, "invalid_beer_record", err.Error())
	default:
		return ErrorResponse(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
