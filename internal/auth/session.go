package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/okoye/zabuza/pkg/zabuza"
	"golang.org/x/sync/singleflight"
)

// State is the session's authentication state.
type State int

const (
	// StateUnauthenticated means no token believed valid is held.
	StateUnauthenticated State = iota
	// StateAuthenticating means exactly one token exchange is in flight.
	StateAuthenticating
	// StateAuthenticated means a token believed valid is held.
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// snapshot is the immutable unit of session state. Token, identity and
// catalog always change together; readers observe either the previous
// snapshot or the next one, never a mix.
type snapshot struct {
	token    *zabuza.Token
	identity *zabuza.Identity
	catalog  *zabuza.ServiceCatalog
}

// Config configures a Session.
type Config struct {
	AuthURL    string
	TenantName string
	Credential Credential
	// Token is an optional pre-issued token seeding the session.
	Token     *zabuza.Token
	Transport zabuza.Transport
	Selector  zabuza.EndpointSelector
	Logger    zabuza.Logger
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Session owns authentication for one identity against one auth URL. Token,
// identity and service catalog are single-writer (Authenticate), multi-reader.
type Session struct {
	authURL    string
	tenantName string
	cred       Credential
	transport  zabuza.Transport
	selector   zabuza.EndpointSelector
	logger     zabuza.Logger
	now        func() time.Time

	snap     atomic.Pointer[snapshot]
	inflight atomic.Int32
	group    singleflight.Group
}

// NewSession validates the config and builds a session. A pre-issued token
// of the wrong shape is a ConfigurationError.
func NewSession(cfg Config) (*Session, error) {
	if cfg.AuthURL == "" {
		return nil, &zabuza.ConfigurationError{Field: "auth URL", Reason: zabuza.ErrAuthURLRequired}
	}

	if cfg.Transport == nil {
		return nil, &zabuza.ConfigurationError{Field: "transport", Reason: zabuza.ErrTransportRequired}
	}

	if cfg.Token != nil && cfg.Token.ID == "" {
		return nil, &zabuza.ConfigurationError{Field: "token", Reason: zabuza.ErrMissingTokenID}
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	session := &Session{
		authURL:    cfg.AuthURL,
		tenantName: cfg.TenantName,
		cred:       cfg.Credential,
		transport:  cfg.Transport,
		selector:   cfg.Selector,
		logger:     cfg.Logger,
		now:        now,
	}

	session.snap.Store(&snapshot{token: cfg.Token})

	return session, nil
}

// State derives the current state. Authenticating is transient: it holds
// only while the single in-flight token exchange runs.
func (s *Session) State() State {
	if s.inflight.Load() > 0 {
		return StateAuthenticating
	}

	if s.IsAuthenticated() {
		return StateAuthenticated
	}

	return StateUnauthenticated
}

// IsAuthenticated reports whether a token is held and its expiry is in the
// future. It never touches the network; a revoked-but-unexpired token still
// counts.
func (s *Session) IsAuthenticated() bool {
	return s.snap.Load().token.Valid(s.now())
}

// Token returns the current token, or nil.
func (s *Session) Token() *zabuza.Token {
	return s.snap.Load().token
}

// Identity returns the authenticated identity, or nil before the first
// successful authentication.
func (s *Session) Identity() *zabuza.Identity {
	return s.snap.Load().identity
}

// Catalog returns the current service catalog, or nil.
func (s *Session) Catalog() *zabuza.ServiceCatalog {
	return s.snap.Load().catalog
}

// EndpointFor resolves one endpoint of the given service type from the
// current catalog.
func (s *Session) EndpointFor(serviceType string) (zabuza.Endpoint, error) {
	catalog := s.snap.Load().catalog
	if catalog == nil {
		return zabuza.Endpoint{}, &zabuza.PreconditionError{Op: "resolve endpoint", Err: zabuza.ErrNoServiceCatalog}
	}

	return catalog.EndpointFor(serviceType)
}

// Authenticate exchanges the held token or credentials for a fresh token,
// identity and catalog, replacing the previous snapshot atomically. On any
// failure the previous snapshot is untouched. Concurrent callers are
// coalesced into a single round trip.
func (s *Session) Authenticate(ctx context.Context) error {
	_, err, _ := s.group.Do("authenticate", func() (interface{}, error) {
		return nil, s.authenticate(ctx)
	})

	return err
}

func (s *Session) authenticate(ctx context.Context) error {
	if err := s.checkPreconditions(); err != nil {
		return err
	}

	s.inflight.Add(1)
	defer s.inflight.Add(-1)

	if s.logger != nil {
		s.logger.Debug("authenticating", map[string]interface{}{
			"auth_url": s.authURL,
			"tenant":   s.tenantName,
		})
	}

	resp, err := s.transport.Do(ctx, &zabuza.Request{
		Method: http.MethodPost,
		URL:    s.authURL,
		Body:   s.buildAuthRequest(),
	})
	if err != nil {
		return fmt.Errorf("authenticating: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &zabuza.TransportError{
			Method:     http.MethodPost,
			URL:        s.authURL,
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
		}
	}

	next, err := parseAccess(resp.Body, s.selector)
	if err != nil {
		return err
	}

	s.snap.Store(next)

	return nil
}

// checkPreconditions enforces the authentication gate: a held token, or a
// valid credential plus tenant and auth URL. It runs before any network
// call.
func (s *Session) checkPreconditions() error {
	if s.snap.Load().token != nil {
		return nil
	}

	if !s.cred.Valid() {
		return &zabuza.PreconditionError{Op: "authenticate", Err: zabuza.ErrNoCredentials}
	}

	if s.tenantName == "" {
		return &zabuza.PreconditionError{Op: "authenticate", Err: zabuza.ErrTenantRequired}
	}

	if s.authURL == "" {
		return &zabuza.PreconditionError{Op: "authenticate", Err: zabuza.ErrAuthURLRequired}
	}

	return nil
}

func (s *Session) buildAuthRequest() *authRequest {
	req := &authRequest{}
	req.Auth.TenantName = s.tenantName

	if token := s.snap.Load().token; token != nil {
		req.Auth.Token = &tokenRef{ID: token.ID}

		return req
	}

	req.Auth.PasswordCredentials = &passwordCredentials{
		Username: s.cred.Username(),
		Password: s.cred.Password(),
	}

	return req
}

type authRequest struct {
	Auth struct {
		Token               *tokenRef            `json:"token,omitempty"`
		PasswordCredentials *passwordCredentials `json:"passwordCredentials,omitempty"`
		TenantName          string               `json:"tenantName"`
	} `json:"auth"`
}

type tokenRef struct {
	ID string `json:"id"`
}

type passwordCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
