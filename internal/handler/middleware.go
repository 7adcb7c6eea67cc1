package handler

import (
	"context"
	"net/http"
	"strings"

	"resume-redactor/internal/domain"
)

// AuthMiddleware validates bearer tokens. With a nil validator every request
// passes through unauthenticated.
type AuthMiddleware struct {
	validator domain.TokenValidator
	logger    domain.Logger
}

func NewAuthMiddleware(validator domain.TokenValidator, logger domain.Logger) *AuthMiddleware {
	return &AuthMiddleware{validator: validator, logger: logger}
}

func (m *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	if m.validator == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		// Extract token from "Bearer <token>" format
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		token := strings.TrimSpace(parts[1])
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Token required")
			return
		}

		user, err := m.validator.ValidateToken(token)
		if err != nil {
			m.logger.Warn("Token validation failed", "error", err)
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		ctx = context.WithValue(ctx, tokenContextKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
