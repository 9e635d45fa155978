package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dtroode/authkeeper/internal/logger"
	"github.com/dtroode/authkeeper/internal/model"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// respondError is the single place service errors become HTTP responses.
// Unknown errors stay opaque: the detail goes to the log, not the caller.
func respondError(w http.ResponseWriter, l *logger.Logger, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		respond(w, apiErr.Status, errorResponse{Error: apiErr.Message, Field: apiErr.Field})
		return
	}

	switch {
	case errors.Is(err, model.ErrInvalidCredential):
		respond(w, http.StatusUnauthorized, errorResponse{Error: "invalid email or password"})
	case errors.Is(err, model.ErrInvalidRefreshToken),
		errors.Is(err, model.ErrTokenExpired),
		errors.Is(err, model.ErrTokenInvalid):
		respond(w, http.StatusUnauthorized, errorResponse{Error: "invalid or expired token"})
	case errors.Is(err, model.ErrNotFound):
		respond(w, http.StatusNotFound, errorResponse{Error: "record not found"})
	case errors.Is(err, model.ErrRateLimited):
		respond(w, http.StatusTooManyRequests, errorResponse{Error: "too many attempts, try again later"})
	case errors.Is(err, model.ErrStoreUnavailable):
		l.Error("handler: store unavailable", "error", err.Error())
		respond(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	default:
		l.Error("handler: unexpected error", "error", err.Error())
		respond(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
