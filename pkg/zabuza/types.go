package zabuza

import (
	"fmt"
	"time"
)

// Tenant is the ownership scope a token is bound to.
type Tenant struct {
	ID      string `json:"id"      yaml:"id"`
	Name    string `json:"name"    yaml:"name"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

// Token is the time-bounded authentication artifact returned by the identity
// service. Tokens are immutable; a session replaces its token wholesale on
// every successful authentication.
type Token struct {
	ID       string    `json:"id"        yaml:"id"`
	IssuedAt time.Time `json:"issued_at" yaml:"issued_at"`
	Expires  time.Time `json:"expires"   yaml:"expires"`
	Tenant   Tenant    `json:"tenant"    yaml:"tenant"`
}

// Valid reports whether the token exists and its expiry is in the future
// relative to now. Both sides are normalized to UTC before comparison. A
// valid token may still have been revoked server-side; this is "believed
// valid", not "verified with the server".
func (t *Token) Valid(now time.Time) bool {
	if t == nil || t.ID == "" {
		return false
	}

	return t.Expires.UTC().After(now.UTC())
}

// Role is a single role granted to the authenticated identity.
type Role struct {
	ID   string `json:"id"   yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Identity describes the authenticated user as reported by the identity
// service. All fields are optional in the wire response.
type Identity struct {
	ID       string `json:"id"       yaml:"id"`
	Name     string `json:"name"     yaml:"name"`
	Username string `json:"username" yaml:"username"`
	Roles    []Role `json:"roles"    yaml:"roles"`
}

// timestampLayouts are the wire formats the identity and compute services
// emit. Keystone omits the timezone on issued_at, so zoneless layouts are
// accepted and interpreted as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses an ISO-8601 timestamp as used on the wire, with or
// without fractional seconds or a timezone. The result is normalized to UTC.
func ParseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}
