package indexing

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Scope is the OAuth scope granting access to the Indexing API.
const Scope = "https://www.googleapis.com/auth/indexing"

// AssertionLifetime is how long a signed assertion stays valid.
const AssertionLifetime = time.Hour

// SignAssertion builds the RS256-signed JWT exchanged for an access token.
func SignAssertion(creds Credentials, audience string, now time.Time) (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(creds.PrivateKey))
	if err != nil {
		return "", fmt.Errorf("parse private key: %w", err)
	}
	iat := now.Unix()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":   creds.ClientEmail,
		"scope": Scope,
		"aud":   audience,
		"iat":   iat,
		"exp":   iat + int64(AssertionLifetime/time.Second),
	})
	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}
	return signed, nil
}
