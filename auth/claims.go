package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/regulus-console/internal/errors"
	pkgerrors "github.com/pkg/errors"
)

// Claims is the display view of a bearer token. The signature is not verified;
// the server remains the authority on whether the token is valid.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ParseClaims reads the registered claims of a JWT bearer token.
func ParseClaims(token string) (*Claims, error) {
	registered := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, registered); err != nil {
		return nil, pkgerrors.Wrap(errors.ErrInvalidInput, "[ParseClaims] token is not a JWT: "+err.Error())
	}

	claims := &Claims{Subject: registered.Subject}
	if registered.IssuedAt != nil {
		claims.IssuedAt = registered.IssuedAt.Time
	}
	if registered.ExpiresAt != nil {
		claims.ExpiresAt = registered.ExpiresAt.Time
	}
	return claims, nil
}
