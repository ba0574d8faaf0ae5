package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenClaims represents the typed JWT issued to clients. The email
// claim is the principal identity; roles are resolved server-side on every
// request, never trusted from the token.
type AccessTokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}
