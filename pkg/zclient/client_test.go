package zclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okoye/zabuza/pkg/zabuza"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, zabuza.ErrConfigRequired)

	_, err = New(&zabuza.Config{})
	require.Error(t, err)
	assert.ErrorIs(t, err, zabuza.ErrAuthURLRequired)
}

func TestNormalizeAuthURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "already normalized",
			input:    "https://identity.example.com/v2.0/tokens",
			expected: "https://identity.example.com/v2.0/tokens",
		},
		{
			name:     "trailing slash",
			input:    "https://identity.example.com/v2.0/tokens/",
			expected: "https://identity.example.com/v2.0/tokens",
		},
		{
			name:     "no scheme defaults to https",
			input:    "identity.example.com/v2.0/tokens",
			expected: "https://identity.example.com/v2.0/tokens",
		},
		{
			name:     "http is preserved",
			input:    "http://identity.example.com/v2.0/tokens",
			expected: "http://identity.example.com/v2.0/tokens",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeAuthURL(tt.input))
		})
	}
}

func TestNewWithPassword(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2.0/tokens", r.URL.Path)

		var payload struct {
			Auth struct {
				PasswordCredentials struct {
					Username string `json:"username"`
					Password string `json:"password"`
				} `json:"passwordCredentials"`
				TenantName string `json:"tenantName"`
			} `json:"auth"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "alice", payload.Auth.PasswordCredentials.Username)
		assert.Equal(t, "acme", payload.Auth.TenantName)

		expires := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
		issued := time.Now().UTC().Format(time.RFC3339)
		_, _ = w.Write([]byte(`{
			"access": {
				"token": {"id": "tok-1", "expires": "` + expires + `", "issued_at": "` + issued + `"},
				"user": {"id": "u-1", "name": "alice"},
				"serviceCatalog": []
			}
		}`))
	}))
	defer server.Close()

	// A trailing slash on the auth URL is tolerated.
	client, err := NewWithPassword(server.URL+"/v2.0/tokens/", "alice", "hunter2", "acme")
	require.NoError(t, err)

	require.NoError(t, client.Authenticate(context.Background()))
	assert.True(t, client.IsAuthenticated())
	assert.Equal(t, "tok-1", client.Token().ID)
}

func TestNewWithToken(t *testing.T) {
	token := &zabuza.Token{ID: "tok-1", Expires: time.Now().Add(time.Hour)}

	client, err := New(&zabuza.Config{
		AuthURL: "identity.example.com/v2.0/tokens",
		Token:   token,
	})
	require.NoError(t, err)

	// The seeded token counts as authenticated until it expires.
	assert.True(t, client.IsAuthenticated())
	assert.Equal(t, "tok-1", client.Token().ID)

	// But there is no catalog until a real authentication happens.
	assert.Nil(t, client.Catalog())
}

func TestNewWithToken_RejectsTokenWithoutID(t *testing.T) {
	_, err := NewWithToken("identity.example.com/v2.0/tokens", &zabuza.Token{})
	require.Error(t, err)
	assert.ErrorIs(t, err, zabuza.ErrMissingTokenID)
}
