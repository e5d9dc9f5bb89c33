// Package client implements the zabuza.Client interface on top of the
// session state machine and the HTTP transport.
package client

import (
	"context"
	"errors"
	"time"

	"github.com/okoye/zabuza/internal/auth"
	"github.com/okoye/zabuza/internal/transport"
	"github.com/okoye/zabuza/pkg/zabuza"
)

const defaultComputeType = "compute"

// Client implements zabuza.Client.
type Client struct {
	transport zabuza.Transport
	session   *auth.Session
	servers   *ServersClient
	diag      *DiagnosticLog
	logger    zabuza.Logger
}

// New builds a client from the config. The credentials themselves are not
// validated here; authentication preconditions are checked when the first
// operation (or an explicit Authenticate) needs them.
func New(config *zabuza.Config) (*Client, error) {
	if config == nil {
		return nil, zabuza.ErrConfigRequired
	}

	if config.AuthURL == "" {
		return nil, &zabuza.ConfigurationError{Field: "auth URL", Reason: zabuza.ErrAuthURLRequired}
	}

	httpTransport := config.Transport
	if httpTransport == nil {
		httpTransport = transport.NewClient(transportOptions(config)...)
	}

	session, err := auth.NewSession(auth.Config{
		AuthURL:    config.AuthURL,
		TenantName: config.TenantName,
		Credential: auth.NewCredential(config.Username, config.Password),
		Token:      config.Token,
		Transport:  httpTransport,
		Selector:   config.EndpointSelector,
		Logger:     config.Logger,
	})
	if err != nil {
		return nil, err
	}

	computeType := config.ComputeType
	if computeType == "" {
		computeType = defaultComputeType
	}

	client := &Client{
		transport: httpTransport,
		session:   session,
		diag:      NewDiagnosticLog(),
		logger:    config.Logger,
	}
	client.servers = NewServersClient(httpTransport, session, computeType, config.Logger)

	return client, nil
}

// transportOptions builds transport options from config.
func transportOptions(config *zabuza.Config) []transport.Option {
	var opts []transport.Option

	if config.Logger != nil {
		opts = append(opts, transport.WithLogger(config.Logger))
	}

	if config.Debug {
		opts = append(opts, transport.WithDebug(true))
	}

	if config.UserAgent != "" {
		opts = append(opts, transport.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		opts = append(opts, transport.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		waitMin := 1 * time.Second
		waitMax := 30 * time.Second

		if config.RetryWaitMin > 0 {
			waitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			waitMax = config.RetryWaitMax
		}

		opts = append(opts, transport.WithRetryConfig(config.RetryMax, waitMin, waitMax))
	}

	return opts
}

// Servers implements zabuza.Client.Servers.
func (c *Client) Servers() zabuza.ServersClient {
	return c.servers
}

// IsAuthenticated implements zabuza.Client.IsAuthenticated.
func (c *Client) IsAuthenticated() bool {
	return c.session.IsAuthenticated()
}

// Authenticate implements zabuza.Client.Authenticate.
func (c *Client) Authenticate(ctx context.Context) error {
	return c.session.Authenticate(ctx)
}

// Token implements zabuza.Client.Token.
func (c *Client) Token() *zabuza.Token {
	return c.session.Token()
}

// Identity implements zabuza.Client.Identity.
func (c *Client) Identity() *zabuza.Identity {
	return c.session.Identity()
}

// Catalog implements zabuza.Client.Catalog.
func (c *Client) Catalog() *zabuza.ServiceCatalog {
	return c.session.Catalog()
}

// Diagnostics implements zabuza.Client.Diagnostics.
func (c *Client) Diagnostics() []zabuza.DiagnosticEntry {
	return c.diag.Entries()
}

// VerifyCredentials implements zabuza.Client.VerifyCredentials. Failure to
// authenticate is expected input here, not an error: the typed cause lands
// in the result and the diagnostics log, and nothing propagates.
func (c *Client) VerifyCredentials(ctx context.Context) zabuza.VerifyResult {
	if c.session.IsAuthenticated() {
		return zabuza.VerifyResult{OK: true}
	}

	err := c.session.Authenticate(ctx)
	if err != nil {
		c.diag.Append(zabuza.DiagnosticEntry{
			Summary: errorKind(err),
			Detail:  err.Error(),
		})

		return zabuza.VerifyResult{OK: false, Err: err}
	}

	return zabuza.VerifyResult{OK: true}
}

// errorKind names the taxonomy bucket of an error for diagnostics.
func errorKind(err error) string {
	var (
		precondition  *zabuza.PreconditionError
		transportErr  *zabuza.TransportError
		parseErr      *zabuza.ParseError
		configErr     *zabuza.ConfigurationError
		unknownSvcErr *zabuza.UnknownServiceError
	)

	switch {
	case errors.As(err, &precondition):
		return "precondition"
	case errors.As(err, &transportErr):
		return "transport"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &configErr):
		return "configuration"
	case errors.As(err, &unknownSvcErr):
		return "unknown service"
	default:
		return "error"
	}
}

var _ zabuza.Client = (*Client)(nil)
