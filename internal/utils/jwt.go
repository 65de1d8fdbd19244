package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MKhiriev/drawer-sync/models"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidAuthorizationHeader is returned by ParseBearerToken when the
// header is not of the form "Bearer <token>".
var ErrInvalidAuthorizationHeader = errors.New("invalid authorization header")

// ParseBearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func ParseBearerToken(authorizationHeader string) (string, error) {
	parts := strings.Fields(strings.TrimSpace(authorizationHeader))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrInvalidAuthorizationHeader
	}
	return parts[1], nil
}

// ParseToken reads the subject and expiry of a signed JWT without verifying
// its signature. The client never holds the authority's signing key; the
// claims are only used to schedule a refresh before the token expires.
//
// Example usage:
//
//	token, err := utils.ParseToken(raw)
//	if err != nil {
//	    // token is malformed
//	}
//	refreshAt := token.ExpiresAt.Add(-time.Minute)
func ParseToken(signed string) (models.Token, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(signed, claims); err != nil {
		return models.Token{}, fmt.Errorf("error occurred parsing token: %w", err)
	}

	token := models.Token{SignedString: signed, Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		token.ExpiresAt = claims.ExpiresAt.Time
	}

	return token, nil
}
