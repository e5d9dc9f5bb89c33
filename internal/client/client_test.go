package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okoye/zabuza/pkg/zabuza"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, zabuza.ErrConfigRequired)

	_, err = New(&zabuza.Config{Username: "alice"})
	require.Error(t, err)
	assert.ErrorIs(t, err, zabuza.ErrAuthURLRequired)

	_, err = New(&zabuza.Config{
		AuthURL: "https://identity.example.com/v2.0/tokens",
		Token:   &zabuza.Token{},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, zabuza.ErrMissingTokenID)
}

func TestNew_MissingCredentialsIsDeferred(t *testing.T) {
	// Construction never validates credentials; the first operation does.
	client, err := New(&zabuza.Config{AuthURL: "https://identity.example.com/v2.0/tokens"})
	require.NoError(t, err)
	assert.False(t, client.IsAuthenticated())

	err = client.Authenticate(context.Background())
	require.Error(t, err)
	assert.True(t, zabuza.IsPrecondition(err))
	assert.ErrorIs(t, err, zabuza.ErrNoCredentials)
}

func TestClient_VerifyCredentials(t *testing.T) {
	env := newTestEnv(t)
	client := env.newClient(t)

	result := client.VerifyCredentials(context.Background())
	assert.True(t, result.OK)
	assert.NoError(t, result.Err)
	assert.Empty(t, client.Diagnostics())
	assert.True(t, client.IsAuthenticated())

	// A second check short-circuits on the valid token.
	result = client.VerifyCredentials(context.Background())
	assert.True(t, result.OK)
	assert.Equal(t, int32(1), env.authCalls.Load())
}

func TestClient_VerifyCredentials_BadPassword(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"unauthorized": {"message": "Invalid user / password"}}`))
	}))
	defer server.Close()

	client, err := New(&zabuza.Config{
		AuthURL:    server.URL + "/v2.0/tokens",
		Username:   "alice",
		Password:   "wrong",
		TenantName: "acme",
	})
	require.NoError(t, err)

	result := client.VerifyCredentials(context.Background())
	assert.False(t, result.OK)
	require.Error(t, result.Err)
	assert.True(t, zabuza.IsUnauthorized(result.Err))

	entries := client.Diagnostics()
	require.Len(t, entries, 1)
	assert.Equal(t, "transport", entries[0].Summary)
	assert.Contains(t, entries[0].Detail, "Invalid user / password")
}

func TestClient_VerifyCredentials_MissingCredentials(t *testing.T) {
	client, err := New(&zabuza.Config{AuthURL: "https://identity.example.com/v2.0/tokens"})
	require.NoError(t, err)

	result := client.VerifyCredentials(context.Background())
	assert.False(t, result.OK)
	assert.True(t, zabuza.IsPrecondition(result.Err))

	entries := client.Diagnostics()
	require.Len(t, entries, 1)
	assert.Equal(t, "precondition", entries[0].Summary)
}

func TestClient_DiagnosticsAccumulate(t *testing.T) {
	client, err := New(&zabuza.Config{AuthURL: "https://identity.example.com/v2.0/tokens"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		result := client.VerifyCredentials(context.Background())
		assert.False(t, result.OK)
	}

	entries := client.Diagnostics()
	assert.Len(t, entries, 3)

	// The returned slice is a copy; mutating it does not touch the log.
	entries[0].Summary = "mutated"
	assert.Equal(t, "precondition", client.Diagnostics()[0].Summary)
}

func TestClient_Accessors(t *testing.T) {
	env := newTestEnv(t)
	client := env.newClient(t)

	assert.Nil(t, client.Token())
	assert.Nil(t, client.Identity())
	assert.Nil(t, client.Catalog())

	require.NoError(t, client.Authenticate(context.Background()))

	require.NotNil(t, client.Token())
	assert.Equal(t, "tok-1", client.Token().ID)
	require.NotNil(t, client.Identity())
	assert.Equal(t, "alice", client.Identity().Username)
	require.NotNil(t, client.Catalog())
	assert.Equal(t, []string{"compute"}, client.Catalog().ServiceTypes())
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "precondition",
			err:      &zabuza.PreconditionError{Op: "authenticate", Err: zabuza.ErrNoCredentials},
			expected: "precondition",
		},
		{
			name:     "transport",
			err:      &zabuza.TransportError{StatusCode: http.StatusBadGateway},
			expected: "transport",
		},
		{
			name:     "parse",
			err:      &zabuza.ParseError{Context: "auth response"},
			expected: "parse",
		},
		{
			name:     "configuration",
			err:      &zabuza.ConfigurationError{Field: "token", Reason: zabuza.ErrMissingTokenID},
			expected: "configuration",
		},
		{
			name:     "unknown service",
			err:      &zabuza.UnknownServiceError{ServiceType: "volume"},
			expected: "unknown service",
		},
		{
			name:     "anything else",
			err:      context.Canceled,
			expected: "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, errorKind(tt.err))
		})
	}
}
