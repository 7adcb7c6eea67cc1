package handler

import (
	"encoding/json"
	"net/http"

	"resume-redactor/internal/domain"
	apperrors "resume-redactor/pkg/errors"
)

type contextKey string

const (
	userContextKey  contextKey = "user"
	tokenContextKey contextKey = "token"
)

// GetUserFromContext extracts the authenticated user from request context
func GetUserFromContext(r *http.Request) (*domain.AuthUser, bool) {
	user, ok := r.Context().Value(userContextKey).(*domain.AuthUser)
	return user, ok
}

// GetTokenFromContext extracts the authentication token from request context
func GetTokenFromContext(r *http.Request) (string, bool) {
	token, ok := r.Context().Value(tokenContextKey).(string)
	return token, ok
}

// writeError writes an error response (helper function)
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeAppError maps an error to its status code and client-safe message.
func writeAppError(w http.ResponseWriter, logger domain.Logger, msg string, err error) {
	status := apperrors.GetStatusCode(err)
	if status >= http.StatusInternalServerError {
		logger.Error(msg, err, "status", status)
	} else {
		logger.Warn(msg, "status", status, "error", apperrors.PublicMessage(err))
	}
	writeError(w, status, apperrors.PublicMessage(err))
}
