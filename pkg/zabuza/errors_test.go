package zabuza

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	precondition := &PreconditionError{Op: "create server", Err: ErrServerNameRequired}
	assert.True(t, IsPrecondition(precondition))
	assert.True(t, IsPrecondition(fmt.Errorf("wrapped: %w", precondition)))
	assert.ErrorIs(t, precondition, ErrServerNameRequired)

	unknown := &UnknownServiceError{ServiceType: "volume"}
	assert.True(t, IsUnknownService(unknown))
	assert.False(t, IsUnknownService(precondition))

	notFound := &TransportError{Method: "GET", URL: "https://x/servers/1", StatusCode: http.StatusNotFound}
	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsUnauthorized(notFound))
	assert.True(t, IsUnauthorized(&TransportError{StatusCode: http.StatusUnauthorized}))
	assert.False(t, IsNotFound(precondition))

	transportErr, ok := AsTransportError(fmt.Errorf("deleting: %w", notFound))
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, transportErr.StatusCode)

	_, ok = AsTransportError(precondition)
	assert.False(t, ok)
}

func TestConfigurationError_Unwrap(t *testing.T) {
	t.Parallel()

	err := &ConfigurationError{Field: "auth URL", Reason: ErrAuthURLRequired}
	assert.ErrorIs(t, err, ErrAuthURLRequired)
	assert.Contains(t, err.Error(), "auth URL")
}
