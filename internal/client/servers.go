package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/okoye/zabuza/internal/auth"
	"github.com/okoye/zabuza/pkg/zabuza"
)

// ServersClient implements zabuza.ServersClient against the compute
// endpoint resolved from the service catalog.
type ServersClient struct {
	transport   zabuza.Transport
	session     *auth.Session
	computeType string
	logger      zabuza.Logger
}

// NewServersClient creates a compute servers client.
func NewServersClient(t zabuza.Transport, session *auth.Session, computeType string, logger zabuza.Logger) *ServersClient {
	return &ServersClient{
		transport:   t,
		session:     session,
		computeType: computeType,
		logger:      logger,
	}
}

// ensureAuthenticated re-authenticates when the current token is absent or
// expired, then resolves the compute endpoint and token for the request.
func (c *ServersClient) ensureAuthenticated(ctx context.Context) (zabuza.Endpoint, string, error) {
	if !c.session.IsAuthenticated() {
		if err := c.session.Authenticate(ctx); err != nil {
			return zabuza.Endpoint{}, "", err
		}
	}

	endpoint, err := c.session.EndpointFor(c.computeType)
	if err != nil {
		return zabuza.Endpoint{}, "", err
	}

	token := c.session.Token()
	if token == nil || token.ID == "" {
		return zabuza.Endpoint{}, "", &zabuza.PreconditionError{Op: "resolve token", Err: zabuza.ErrMissingTokenID}
	}

	return endpoint, token.ID, nil
}

// serverCreatePayload is the sparse wire shape for server creation. Only
// fields the caller set are serialized.
type serverCreatePayload struct {
	Name             string            `json:"name"`
	ImageRef         string            `json:"imageRef"`
	FlavorRef        string            `json:"flavorRef"`
	AvailabilityZone string            `json:"availability_zone,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	SecurityGroup    string            `json:"security_group,omitempty"`
	UserData         string            `json:"user_data,omitempty"`
	KeyName          string            `json:"key_name,omitempty"`
}

// Create implements zabuza.ServersClient.Create. On success the accepted
// server's generated fields (id, admin password) are merged back into the
// server the caller passed in.
func (c *ServersClient) Create(ctx context.Context, server *zabuza.Server, opts *zabuza.ServerCreateOptions) error {
	if server == nil {
		return &zabuza.PreconditionError{Op: "create server", Err: zabuza.ErrServerRefRequired}
	}

	if server.Name == "" {
		return &zabuza.PreconditionError{Op: "create server", Err: zabuza.ErrServerNameRequired}
	}

	if server.ImageRef == "" {
		return &zabuza.PreconditionError{Op: "create server", Err: zabuza.ErrImageRefRequired}
	}

	if server.FlavorRef == "" {
		return &zabuza.PreconditionError{Op: "create server", Err: zabuza.ErrFlavorRefRequired}
	}

	payload := serverCreatePayload{
		Name:             server.Name,
		ImageRef:         server.ImageRef,
		FlavorRef:        server.FlavorRef,
		AvailabilityZone: server.AvailabilityZone,
		Metadata:         server.Metadata,
		SecurityGroup:    server.SecurityGroup,
	}

	if opts != nil {
		if len(opts.UserData) > 0 {
			payload.UserData = base64.StdEncoding.EncodeToString(opts.UserData)
		}

		payload.KeyName = opts.KeyName
	}

	endpoint, tokenID, err := c.ensureAuthenticated(ctx)
	if err != nil {
		return err
	}

	resp, err := c.transport.Do(ctx, &zabuza.Request{
		Method:  http.MethodPost,
		URL:     endpoint.URL("servers"),
		Headers: authHeaders(tokenID),
		Body:    map[string]serverCreatePayload{"server": payload},
	})
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusAccepted {
		return transportError(http.MethodPost, endpoint.URL("servers"), resp)
	}

	var envelope struct {
		Server zabuza.ServerRecord `json:"server"`
	}

	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return &zabuza.ParseError{Context: "create server response", Err: err}
	}

	envelope.Server.Apply(server)

	if c.logger != nil {
		c.logger.Debug("server create accepted", map[string]interface{}{
			"id":   server.ID,
			"name": server.Name,
		})
	}

	return nil
}

// Get implements zabuza.ServersClient.Get.
func (c *ServersClient) Get(ctx context.Context, ref zabuza.ServerRef) (*zabuza.Server, error) {
	id, err := ref.Resolve()
	if err != nil {
		return nil, err
	}

	endpoint, tokenID, err := c.ensureAuthenticated(ctx)
	if err != nil {
		return nil, err
	}

	url := endpoint.URL("servers", id)

	resp, err := c.transport.Do(ctx, &zabuza.Request{
		Method:  http.MethodGet,
		URL:     url,
		Headers: authHeaders(tokenID),
	})
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, transportError(http.MethodGet, url, resp)
	}

	var envelope struct {
		Server zabuza.ServerRecord `json:"server"`
	}

	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return nil, &zabuza.ParseError{Context: "get server response", Err: err}
	}

	return envelope.Server.NewServer()
}

// List implements zabuza.ServersClient.List. Filter options are validated
// before any authentication or network activity.
func (c *ServersClient) List(ctx context.Context, opts *zabuza.ServerListOptions) ([]zabuza.Server, error) {
	query, err := opts.Values()
	if err != nil {
		return nil, err
	}

	endpoint, tokenID, err := c.ensureAuthenticated(ctx)
	if err != nil {
		return nil, err
	}

	url := endpoint.URL("servers", "detail")

	resp, err := c.transport.Do(ctx, &zabuza.Request{
		Method:  http.MethodGet,
		URL:     url,
		Query:   query,
		Headers: authHeaders(tokenID),
	})
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, transportError(http.MethodGet, url, resp)
	}

	var envelope struct {
		Servers []zabuza.ServerRecord `json:"servers"`
	}

	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return nil, &zabuza.ParseError{Context: "list servers response", Err: err}
	}

	servers := make([]zabuza.Server, 0, len(envelope.Servers))

	for i := range envelope.Servers {
		server, err := envelope.Servers[i].NewServer()
		if err != nil {
			return nil, err
		}

		servers = append(servers, *server)
	}

	return servers, nil
}

// Delete implements zabuza.ServersClient.Delete.
func (c *ServersClient) Delete(ctx context.Context, ref zabuza.ServerRef) error {
	id, err := ref.Resolve()
	if err != nil {
		return err
	}

	endpoint, tokenID, err := c.ensureAuthenticated(ctx)
	if err != nil {
		return err
	}

	url := endpoint.URL("servers", id)

	resp, err := c.transport.Do(ctx, &zabuza.Request{
		Method:  http.MethodDelete,
		URL:     url,
		Headers: authHeaders(tokenID),
	})
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusNoContent {
		return transportError(http.MethodDelete, url, resp)
	}

	return nil
}

// DeleteMany implements zabuza.ServersClient.DeleteMany. Deletion stops at
// the first failure; servers earlier in the slice stay deleted.
func (c *ServersClient) DeleteMany(ctx context.Context, refs ...zabuza.ServerRef) error {
	for i, ref := range refs {
		if err := c.Delete(ctx, ref); err != nil {
			return fmt.Errorf("deleting server %d of %d: %w", i+1, len(refs), err)
		}
	}

	return nil
}

func authHeaders(tokenID string) map[string]string {
	return map[string]string{"X-Auth-Token": tokenID}
}

func transportError(method, url string, resp *zabuza.Response) error {
	return &zabuza.TransportError{
		Method:     method,
		URL:        url,
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
	}
}

var _ zabuza.ServersClient = (*ServersClient)(nil)
