package zabuza

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerRef_Resolve(t *testing.T) {
	tests := []struct {
		name        string
		ref         ServerRef
		expectedID  string
		expectedErr error
	}{
		{
			name:       "by id",
			ref:        ByID("srv-1"),
			expectedID: "srv-1",
		},
		{
			name:       "by server",
			ref:        ByServer(&Server{ID: "srv-2"}),
			expectedID: "srv-2",
		},
		{
			name:        "by server without id",
			ref:         ByServer(&Server{Name: "unsaved"}),
			expectedErr: ErrServerIDRequired,
		},
		{
			name:        "empty ref",
			ref:         ServerRef{},
			expectedErr: ErrServerRefRequired,
		},
		{
			name:        "empty id",
			ref:         ByID(""),
			expectedErr: ErrServerRefRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := tt.ref.Resolve()

			if tt.expectedErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.True(t, IsPrecondition(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedID, id)
		})
	}
}

func TestServerListOptions_Values(t *testing.T) {
	opts := &ServerListOptions{
		Name:         "web",
		Flavor:       "2",
		Status:       "ACTIVE",
		Limit:        25,
		Marker:       "srv-9",
		ChangesSince: time.Date(2015, 6, 1, 6, 0, 0, 0, time.FixedZone("CST", -6*3600)),
	}

	values, err := opts.Values()
	require.NoError(t, err)

	assert.Equal(t, "web", values.Get("name"))
	assert.Equal(t, "2", values.Get("flavor"))
	assert.Equal(t, "ACTIVE", values.Get("status"))
	assert.Equal(t, "25", values.Get("limit"))
	assert.Equal(t, "srv-9", values.Get("marker"))
	assert.Equal(t, "2015-06-01T12:00:00Z", values.Get("changes-since"))
	assert.NotContains(t, values, "host")
}

func TestServerListOptions_Values_Empty(t *testing.T) {
	values, err := (&ServerListOptions{}).Values()
	require.NoError(t, err)
	assert.Empty(t, values)

	var opts *ServerListOptions

	values, err = opts.Values()
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestServerListOptions_Values_NegativeLimit(t *testing.T) {
	_, err := (&ServerListOptions{Limit: -1}).Values()
	require.Error(t, err)
	assert.True(t, IsPrecondition(err))
	assert.ErrorIs(t, err, ErrNegativeLimit)
}

func TestServerRecord_UnmarshalJSON(t *testing.T) {
	body := `{
		"id": "srv-1",
		"name": "web-1",
		"status": "BUILD",
		"adminPass": "s3cret",
		"tenant_id": "t-1",
		"hostId": "h-1",
		"accessIPv4": "10.0.0.5",
		"progress": 60,
		"metadata": {"role": "web"},
		"addresses": {"private": [{"addr": "10.0.0.5", "version": 4}]},
		"created": "2015-06-01T12:00:00Z",
		"image": {"id": "img-1", "links": []},
		"flavor": "2",
		"availability_zone": "nova"
	}`

	var record ServerRecord
	require.NoError(t, json.Unmarshal([]byte(body), &record))

	require.NotNil(t, record.ID)
	assert.Equal(t, "srv-1", *record.ID)
	assert.Equal(t, "web-1", *record.Name)
	assert.Equal(t, "BUILD", *record.Status)
	assert.Equal(t, "s3cret", *record.AdminPass)
	assert.Equal(t, "t-1", *record.TenantID)
	assert.Equal(t, "h-1", *record.HostID)
	assert.Equal(t, "10.0.0.5", *record.AccessIPv4)
	assert.Equal(t, 60, *record.Progress)
	assert.Equal(t, map[string]string{"role": "web"}, record.Metadata)
	assert.Equal(t, "img-1", *record.ImageRef)
	assert.Equal(t, "2", *record.FlavorRef)
	assert.Equal(t, "nova", *record.AvailabilityZone)
	require.NotNil(t, record.Created)
	assert.Equal(t, time.Date(2015, 6, 1, 12, 0, 0, 0, time.UTC), *record.Created)
	assert.Nil(t, record.Updated)
	assert.Nil(t, record.AccessIPv6)
}

func TestServerRecord_UnmarshalJSON_SnakeCaseWins(t *testing.T) {
	body := `{"id": "srv-1", "admin_pass": "snake", "adminPass": "camel"}`

	var record ServerRecord
	require.NoError(t, json.Unmarshal([]byte(body), &record))
	require.NotNil(t, record.AdminPass)
	assert.Equal(t, "snake", *record.AdminPass)
}

func TestServerRecord_UnmarshalJSON_BadTimestamp(t *testing.T) {
	var record ServerRecord
	err := json.Unmarshal([]byte(`{"id": "srv-1", "created": "yesterday"}`), &record)
	require.Error(t, err)
}

func TestServerRecord_Apply_Sparse(t *testing.T) {
	server := NewServerForDeployment("img-1", "2", "web-1")
	server.Metadata = map[string]string{"role": "web"}

	id := "srv-1"
	adminPass := "s3cret"
	record := &ServerRecord{ID: &id, AdminPass: &adminPass}

	record.Apply(server)

	assert.Equal(t, "srv-1", server.ID)
	assert.Equal(t, "s3cret", server.AdminPass)

	// Fields the record did not carry stay untouched.
	assert.Equal(t, "web-1", server.Name)
	assert.Equal(t, "img-1", server.ImageRef)
	assert.Equal(t, "2", server.FlavorRef)
	assert.Equal(t, map[string]string{"role": "web"}, server.Metadata)
}

func TestServerRecord_NewServer(t *testing.T) {
	id := "srv-1"
	name := "web-1"

	server, err := (&ServerRecord{ID: &id, Name: &name}).NewServer()
	require.NoError(t, err)
	assert.Equal(t, "srv-1", server.ID)
	assert.Equal(t, "web-1", server.Name)
}

func TestServerRecord_NewServer_MissingID(t *testing.T) {
	_, err := (&ServerRecord{}).NewServer()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServerIDRequired)

	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}
