// Package indexing notifies a search engine's Indexing API that a URL was
// updated or removed, authenticating as a service account.
package indexing

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMissingCredentials is returned when no service-account key was supplied.
var ErrMissingCredentials = errors.New("indexing credentials are not configured")

// Credentials is the subset of a service-account key file the notifier needs.
type Credentials struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// ParseCredentials decodes a service-account key file.
func ParseCredentials(raw string) (Credentials, error) {
	if strings.TrimSpace(raw) == "" {
		return Credentials{}, ErrMissingCredentials
	}
	var creds Credentials
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		return Credentials{}, fmt.Errorf("decode indexing credentials: %w", err)
	}
	if creds.ClientEmail == "" {
		return Credentials{}, fmt.Errorf("indexing credentials: client_email is missing")
	}
	if creds.PrivateKey == "" {
		return Credentials{}, fmt.Errorf("indexing credentials: private_key is missing")
	}
	return creds, nil
}
