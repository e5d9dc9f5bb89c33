// Package zclient provides the main entry point for creating zabuza clients.
package zclient

import (
	"strings"

	"github.com/okoye/zabuza/internal/client"
	"github.com/okoye/zabuza/pkg/zabuza"
)

// New creates a client from the config. The auth URL is normalized before
// the client is built; credentials are checked lazily on first use.
func New(config *zabuza.Config) (zabuza.Client, error) {
	if config == nil {
		return nil, zabuza.ErrConfigRequired
	}

	if config.AuthURL == "" {
		return nil, &zabuza.ConfigurationError{Field: "auth URL", Reason: zabuza.ErrAuthURLRequired}
	}

	config.AuthURL = normalizeAuthURL(config.AuthURL)

	return client.New(config)
}

// NewWithPassword creates a client that authenticates with a username and
// password scoped to a tenant.
func NewWithPassword(authURL, username, password, tenantName string) (zabuza.Client, error) {
	return New(&zabuza.Config{
		AuthURL:    authURL,
		Username:   username,
		Password:   password,
		TenantName: tenantName,
	})
}

// NewWithToken creates a client seeded with a previously issued token. The
// session starts without a service catalog, so compute operations require a
// re-authentication once the token expires.
func NewWithToken(authURL string, token *zabuza.Token) (zabuza.Client, error) {
	return New(&zabuza.Config{
		AuthURL: authURL,
		Token:   token,
	})
}

// normalizeAuthURL trims trailing slashes and defaults the scheme to https.
func normalizeAuthURL(authURL string) string {
	authURL = strings.TrimSuffix(authURL, "/")

	if !strings.HasPrefix(authURL, "http://") && !strings.HasPrefix(authURL, "https://") {
		authURL = "https://" + authURL
	}

	return authURL
}
