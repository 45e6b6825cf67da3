package auth

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, secret, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func request(token string) *http.Request {
	r, _ := http.NewRequest(http.MethodGet, "/v1/files", nil)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

func TestVerifyToken(t *testing.T) {
	Init("test-secret")

	ownerID, err := VerifyToken(request(signToken(t, "test-secret", "user-42")))
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if ownerID != "user-42" {
		t.Errorf("owner id: got %q, want %q", ownerID, "user-42")
	}
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	Init("test-secret")

	if _, err := VerifyToken(request(signToken(t, "other-secret", "user-42"))); err == nil {
		t.Fatal("token signed with a different secret must be rejected")
	}
}

func TestVerifyTokenMissingHeader(t *testing.T) {
	Init("test-secret")

	if _, err := VerifyToken(request("")); err == nil {
		t.Fatal("request without an authorization header must be rejected")
	}
}

func TestVerifyTokenExpired(t *testing.T) {
	Init("test-secret")

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := VerifyToken(request(signed)); err == nil {
		t.Fatal("expired token must be rejected")
	}
}

func TestVerifyTokenEmptySubject(t *testing.T) {
	Init("test-secret")

	if _, err := VerifyToken(request(signToken(t, "test-secret", ""))); err == nil {
		t.Fatal("token without a subject must be rejected")
	}
}
