package service

import (
	"fmt"
	"sync"
	"time"

	"resume-redactor/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenCacheTTL   = 30 * time.Second
	maxCachedTokens = 1024
)

// SupabaseClaims are the claims of a Supabase access token.
type SupabaseClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type tokenCacheEntry struct {
	user      *domain.AuthUser
	expiresAt time.Time
}

type authService struct {
	secret []byte
	logger domain.Logger
	now    func() time.Time

	cacheMu sync.RWMutex
	cache   map[string]tokenCacheEntry
}

// NewAuthService creates a validator for HS256 tokens signed with the
// project's JWT secret.
func NewAuthService(secret string, logger domain.Logger) *authService {
	return &authService{
		secret: []byte(secret),
		logger: logger,
		now:    time.Now,
		cache:  make(map[string]tokenCacheEntry),
	}
}

// ValidateToken verifies signature and expiry and returns the token subject.
// Valid tokens are cached briefly, never beyond their own expiry.
func (s *authService) ValidateToken(token string) (*domain.AuthUser, error) {
	now := s.now()
	s.cacheMu.RLock()
	entry, ok := s.cache[token]
	s.cacheMu.RUnlock()
	if ok && now.Before(entry.expiresAt) {
		return entry.user, nil
	}

	claims := &SupabaseClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		s.logger.Warn("Token rejected", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", domain.ErrInvalidToken)
	}

	user := &domain.AuthUser{ID: claims.Subject, Email: claims.Email, Role: claims.Role}

	expiresAt := now.Add(tokenCacheTTL)
	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(expiresAt) {
		expiresAt = claims.ExpiresAt.Time
	}
	s.cacheMu.Lock()
	if len(s.cache) >= maxCachedTokens {
		for k, e := range s.cache {
			if !now.Before(e.expiresAt) {
				delete(s.cache, k)
			}
		}
	}
	s.cache[token] = tokenCacheEntry{user: user, expiresAt: expiresAt}
	s.cacheMu.Unlock()

	return user, nil
}
