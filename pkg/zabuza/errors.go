package zabuza

import (
	"errors"
	"fmt"
	"net/http"
)

// Static errors that can be wrapped with context.
var (
	ErrConfigRequired     = errors.New("config is required")
	ErrAuthURLRequired    = errors.New("auth URL is required")
	ErrTransportRequired  = errors.New("transport is required")
	ErrNoCredentials      = errors.New("either a token or a username/password pair must be provided")
	ErrTenantRequired     = errors.New("tenant name is required")
	ErrServerRefRequired  = errors.New("exactly one of a server object or a server id must be provided")
	ErrServerIDRequired   = errors.New("server id is required")
	ErrServerNameRequired = errors.New("server name is required")
	ErrImageRefRequired   = errors.New("image ref is required")
	ErrFlavorRefRequired  = errors.New("flavor ref is required")
	ErrNegativeLimit      = errors.New("limit must not be negative")
	ErrNoServiceCatalog   = errors.New("no service catalog available, authenticate first")
	ErrMissingTokenID     = errors.New("token is missing an id")
	ErrMissingCatalog     = errors.New("response is missing the service catalog")
	ErrMissingEndpointID  = errors.New("endpoint record is missing an id")
	ErrMissingServiceType = errors.New("service record is missing a type")
	ErrMissingServiceName = errors.New("service record is missing a name")
	ErrEmptyServiceEntry  = errors.New("service record has no endpoints")
	ErrUnsupportedUpdate  = errors.New("server update is not supported by the API")
)

// PreconditionError reports a check that failed locally before any network
// call was attempted: missing credentials, a missing identifier, or an
// invalid filter value.
type PreconditionError struct {
	Op  string
	Err error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: precondition failed: %v", e.Op, e.Err)
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// UnknownServiceError reports a service catalog miss for a requested
// service type.
type UnknownServiceError struct {
	ServiceType string
}

func (e *UnknownServiceError) Error() string {
	return fmt.Sprintf("unknown service type %q in catalog", e.ServiceType)
}

// TransportError reports a non-success HTTP status. It carries the status
// code and the raw response body.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s returned status %d: %s", e.Method, e.URL, e.StatusCode, string(e.Body))
}

// ParseError reports a malformed or incomplete response body.
type ParseError struct {
	Context string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Context, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ConfigurationError reports a caller-supplied configuration value of the
// wrong shape.
type ConfigurationError struct {
	Field  string
	Reason error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration for %s: %v", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Reason
}

// IsPrecondition checks if the error is a precondition failure.
func IsPrecondition(err error) bool {
	target := &PreconditionError{}

	return errors.As(err, &target)
}

// IsUnknownService checks if the error is a service catalog miss.
func IsUnknownService(err error) bool {
	target := &UnknownServiceError{}

	return errors.As(err, &target)
}

// AsTransportError returns the TransportError in err's chain, if any.
func AsTransportError(err error) (*TransportError, bool) {
	target := &TransportError{}
	if errors.As(err, &target) {
		return target, true
	}

	return nil, false
}

// IsNotFound checks if the error is a 404 transport error.
func IsNotFound(err error) bool {
	transportErr, ok := AsTransportError(err)

	return ok && transportErr.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error is a 401 transport error.
func IsUnauthorized(err error) bool {
	transportErr, ok := AsTransportError(err)

	return ok && transportErr.StatusCode == http.StatusUnauthorized
}
