// Package auth verifies the bearer tokens issued by the external identity
// service. Token issuance lives elsewhere; this side only checks the
// signature and extracts the owner id every authenticated call runs under.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var secret []byte

// Init sets the shared HMAC secret used to verify incoming tokens.
func Init(jwtSecret string) {
	secret = []byte(jwtSecret)
}

// Claims is the subset of the identity service's token payload we rely on.
type Claims struct {
	jwt.RegisteredClaims
}

// VerifyToken checks the request's bearer token and returns the owner id
// from its subject claim.
func VerifyToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errors.New("no authorization header")
	}

	tokenString := strings.TrimPrefix(header, "Bearer ")

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", errors.New("invalid token")
	}

	return claims.Subject, nil
}
