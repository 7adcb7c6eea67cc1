package service

import (
	"errors"
	"testing"
	"time"

	"resume-redactor/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims SupabaseClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func validClaims(now time.Time) SupabaseClaims {
	return SupabaseClaims{
		Email: "recruiter@example.com",
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func TestAuthService_ValidateToken(t *testing.T) {
	now := time.Now()
	svc := NewAuthService(testSecret, NewMockLogger())

	user, err := svc.ValidateToken(signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims(now)))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if user.ID != "user-123" || user.Email != "recruiter@example.com" || user.Role != "authenticated" {
		t.Errorf("Unexpected user: %+v", user)
	}
}

func TestAuthService_RejectsInvalidTokens(t *testing.T) {
	now := time.Now()

	expired := validClaims(now)
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))

	noSubject := validClaims(now)
	noSubject.Subject = ""

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-jwt"},
		{"wrong secret", signToken(t, jwt.SigningMethodHS256, []byte("another-secret"), validClaims(now))},
		{"wrong algorithm", signToken(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims(now))},
		{"unsigned", signToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, validClaims(now))},
		{"expired", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), expired)},
		{"missing subject", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), noSubject)},
	}

	svc := NewAuthService(testSecret, NewMockLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.ValidateToken(tt.token)
			if err == nil {
				t.Fatalf("Expected error, got user %+v", user)
			}
			if !errors.Is(err, domain.ErrInvalidToken) {
				t.Errorf("Expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestAuthService_CacheHonoursExpiry(t *testing.T) {
	now := time.Now()
	svc := NewAuthService(testSecret, NewMockLogger())
	svc.now = func() time.Time { return now }

	claims := validClaims(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(10 * time.Second))
	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), claims)

	if _, err := svc.ValidateToken(token); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, ok := svc.cache[token]; !ok {
		t.Fatalf("Expected token to be cached")
	}

	now = now.Add(20 * time.Second)
	if _, err := svc.ValidateToken(token); err == nil {
		t.Errorf("Expected expired token to be rejected after cache entry lapsed")
	}
}
