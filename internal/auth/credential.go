// Package auth implements the session state machine: credential handling,
// token exchange against the identity service, and the atomically swapped
// token/identity/catalog snapshot.
package auth

// Credential is an immutable username/password pair.
type Credential struct {
	username string
	password string
}

// NewCredential builds a credential. Validity is checked at use, not here.
func NewCredential(username, password string) Credential {
	return Credential{username: username, password: password}
}

// Username returns the username.
func (c Credential) Username() string {
	return c.username
}

// Password returns the password.
func (c Credential) Password() string {
	return c.password
}

// Valid reports whether both fields are set.
func (c Credential) Valid() bool {
	return c.username != "" && c.password != ""
}
