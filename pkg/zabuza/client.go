package zabuza

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Request is a single outbound API request handed to a Transport. The URL is
// absolute; endpoints are resolved from the service catalog before the
// transport is involved.
type Request struct {
	Method  string
	URL     string
	Query   url.Values
	Headers map[string]string
	Body    interface{}
}

// Response is what a Transport returns for any completed HTTP exchange,
// success or not. Status code policy belongs to the caller.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Transport sends requests. Implementations must honor the context's
// deadline and cancellation and return an error only for failures to
// complete the exchange, never for non-success status codes.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// ServersClient manages compute server resources. Every operation first
// ensures the session is authenticated, re-authenticating lazily when the
// token is missing or expired; a failure there aborts the operation.
type ServersClient interface {
	// Create provisions the server and mutates it in place from the
	// response, overwriting only fields the service reported.
	Create(ctx context.Context, server *Server, opts *ServerCreateOptions) error
	// Get fetches one server by reference into a new Server.
	Get(ctx context.Context, ref ServerRef) (*Server, error)
	// List fetches detailed records of all servers matching the filters.
	List(ctx context.Context, opts *ServerListOptions) ([]Server, error)
	// Delete removes one server. A missing server is a TransportError with
	// status 404, surfaced immediately and never retried.
	Delete(ctx context.Context, ref ServerRef) error
	// DeleteMany deletes servers one by one, stopping at the first failure.
	DeleteMany(ctx context.Context, refs ...ServerRef) error
}

// VerifyResult is the outcome of a credentials check. Err carries the typed
// failure when OK is false; it is informational, never raised.
type VerifyResult struct {
	OK  bool
	Err error
}

// DiagnosticEntry is one record in a client's append-only diagnostics log.
type DiagnosticEntry struct {
	Summary string
	Detail  string
}

// Client is the top-level API client: a session plus resource clients.
type Client interface {
	// Servers returns the compute server client.
	Servers() ServersClient

	// IsAuthenticated reports whether the session holds a token believed
	// valid at this instant. It never touches the network.
	IsAuthenticated() bool
	// Authenticate exchanges the configured credentials or token for a
	// fresh token, identity and service catalog, replacing all three
	// atomically. Concurrent calls share one round trip.
	Authenticate(ctx context.Context) error
	// VerifyCredentials checks that the session can authenticate, treating
	// failure as expected input: it returns a result instead of an error
	// and appends diagnostics to the client's log.
	VerifyCredentials(ctx context.Context) VerifyResult

	// Token returns the current token, or nil before authentication.
	Token() *Token
	// Identity returns the authenticated identity, or nil.
	Identity() *Identity
	// Catalog returns the current service catalog, or nil.
	Catalog() *ServiceCatalog
	// Diagnostics returns a copy of the append-only diagnostics log.
	Diagnostics() []DiagnosticEntry
}

// Config configures a client.
type Config struct {
	// AuthURL is the identity service's token endpoint, e.g.
	// "https://keystone.example.com/v2.0/tokens". Required.
	AuthURL string

	// Username and Password authenticate by password grant. Either both of
	// these plus TenantName, or a Token, must be provided.
	Username string
	Password string
	// TenantName scopes the authentication. Required with Username/Password.
	TenantName string
	// Token is a pre-issued token used in place of a password. It must
	// carry an id.
	Token *Token

	// ComputeType selects the compute service catalog entry, e.g.
	// "compute" or "computev3". Defaults to "compute".
	ComputeType string

	// EndpointSelector overrides the uniform-random endpoint choice, e.g.
	// with a deterministic strategy in tests.
	EndpointSelector EndpointSelector

	// Transport overrides the default HTTP transport.
	Transport Transport

	// HTTPTimeout bounds each HTTP exchange. Per-call deadlines should
	// come from the context; this is a backstop.
	HTTPTimeout time.Duration
	// RetryMax enables transport-level retries for transient failures
	// (>=500, 429, connection errors). 0 leaves the core fail-fast.
	RetryMax int
	// RetryWaitMin is the minimum backoff between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax is the maximum backoff between retries.
	RetryWaitMax time.Duration

	// Debug enables request/response logging when a Logger is set.
	Debug bool
	// Logger is the optional structured logger.
	Logger Logger
	// UserAgent overrides the default User-Agent header.
	UserAgent string
}
