package zabuza

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Address is a single network address attached to a server.
type Address struct {
	Addr    string `json:"addr"    yaml:"addr"`
	Version int    `json:"version" yaml:"version"`
}

// Server is a compute instance. The service assigns ID on creation; every
// other field is sparse and stays at its zero value unless the service
// reported it.
type Server struct {
	ID               string               `json:"id"                yaml:"id"`
	Name             string               `json:"name"              yaml:"name"`
	ImageRef         string               `json:"image_ref"         yaml:"image_ref"`
	FlavorRef        string               `json:"flavor_ref"        yaml:"flavor_ref"`
	Status           string               `json:"status"            yaml:"status"`
	AdminPass        string               `json:"admin_pass"        yaml:"admin_pass"`
	HostID           string               `json:"host_id"           yaml:"host_id"`
	TenantID         string               `json:"tenant_id"         yaml:"tenant_id"`
	UserID           string               `json:"user_id"           yaml:"user_id"`
	AccessIPv4       string               `json:"access_ipv4"       yaml:"access_ipv4"`
	AccessIPv6       string               `json:"access_ipv6"       yaml:"access_ipv6"`
	Progress         int                  `json:"progress"          yaml:"progress"`
	Metadata         map[string]string    `json:"metadata"          yaml:"metadata"`
	Addresses        map[string][]Address `json:"addresses"         yaml:"addresses"`
	Created          *time.Time           `json:"created"           yaml:"created"`
	Updated          *time.Time           `json:"updated"           yaml:"updated"`
	AvailabilityZone string               `json:"availability_zone" yaml:"availability_zone"`
	SecurityGroup    string               `json:"security_group"    yaml:"security_group"`
}

// NewServerForDeployment builds a Server carrying the minimum the compute
// service requires for creation. The ID stays empty until Create succeeds.
func NewServerForDeployment(imageRef, flavorRef, name string) *Server {
	return &Server{
		Name:      name,
		ImageRef:  imageRef,
		FlavorRef: flavorRef,
	}
}

// ServerRef identifies a server for read and delete operations by exactly
// one of a server object or a raw id.
type ServerRef struct {
	server *Server
	id     string
}

// ByID references a server by its raw id.
func ByID(id string) ServerRef {
	return ServerRef{id: id}
}

// ByServer references a server by a previously obtained object.
func ByServer(server *Server) ServerRef {
	return ServerRef{server: server}
}

// Resolve returns the referenced server id. It fails with a
// PreconditionError unless exactly one of the object or the id was supplied,
// and the resulting id is non-empty.
func (r ServerRef) Resolve() (string, error) {
	switch {
	case r.server != nil && r.id != "":
		return "", &PreconditionError{Op: "resolve server ref", Err: ErrServerRefRequired}
	case r.server != nil:
		if r.server.ID == "" {
			return "", &PreconditionError{Op: "resolve server ref", Err: ErrServerIDRequired}
		}

		return r.server.ID, nil
	case r.id != "":
		return r.id, nil
	default:
		return "", &PreconditionError{Op: "resolve server ref", Err: ErrServerRefRequired}
	}
}

// ServerCreateOptions carries the optional extras of a create call that do
// not live on the Server itself.
type ServerCreateOptions struct {
	// UserData is raw cloud-init input; the client base64-encodes it into
	// the request payload.
	UserData []byte
	// KeyName names the SSH key to install for initial login.
	KeyName string
}

// ServerListOptions are the server list filters. Each filter is sent only
// when the caller supplies it.
type ServerListOptions struct {
	Name         string
	Flavor       string
	Status       string
	Host         string
	Marker       string
	Limit        int
	ChangesSince time.Time
}

// Values renders the filters as query parameters. A negative limit fails
// before any network call is attempted.
func (o *ServerListOptions) Values() (url.Values, error) {
	values := url.Values{}
	if o == nil {
		return values, nil
	}

	if o.Limit < 0 {
		return nil, &PreconditionError{Op: "list servers", Err: ErrNegativeLimit}
	}

	if o.Name != "" {
		values.Set("name", o.Name)
	}

	if o.Flavor != "" {
		values.Set("flavor", o.Flavor)
	}

	if o.Status != "" {
		values.Set("status", o.Status)
	}

	if o.Host != "" {
		values.Set("host", o.Host)
	}

	if o.Marker != "" {
		values.Set("marker", o.Marker)
	}

	if o.Limit > 0 {
		values.Set("limit", strconv.Itoa(o.Limit))
	}

	if !o.ChangesSince.IsZero() {
		values.Set("changes-since", o.ChangesSince.UTC().Format(time.RFC3339))
	}

	return values, nil
}

// ServerRecord is the wire form of a server in compute service responses.
// Fields are pointers so that a response can be applied to an existing
// Server without clobbering fields the response did not carry.
type ServerRecord struct {
	ID               *string
	Name             *string
	Status           *string
	AdminPass        *string
	HostID           *string
	TenantID         *string
	UserID           *string
	AccessIPv4       *string
	AccessIPv6       *string
	Progress         *int
	Metadata         map[string]string
	Addresses        map[string][]Address
	Created          *time.Time
	Updated          *time.Time
	ImageRef         *string
	FlavorRef        *string
	AvailabilityZone *string
	SecurityGroup    *string
}

// UnmarshalJSON reads a server record through the same explicit alias table
// used for endpoints: the snake_case key wins when both forms are present.
// Image and flavor refs may arrive as bare strings or as {"id": ...} objects.
func (r *ServerRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID                    *string              `json:"id"`
		Name                  *string              `json:"name"`
		Status                *string              `json:"status"`
		AdminPass             *string              `json:"admin_pass"`
		AdminPassCamel        *string              `json:"adminPass"`
		HostID                *string              `json:"host_id"`
		HostIDCamel           *string              `json:"hostId"`
		TenantID              *string              `json:"tenant_id"`
		TenantIDCamel         *string              `json:"tenantId"`
		UserID                *string              `json:"user_id"`
		UserIDCamel           *string              `json:"userId"`
		AccessIPv4            *string              `json:"access_ipv4"`
		AccessIPv4Camel       *string              `json:"accessIPv4"`
		AccessIPv6            *string              `json:"access_ipv6"`
		AccessIPv6Camel       *string              `json:"accessIPv6"`
		Progress              *int                 `json:"progress"`
		Metadata              map[string]string    `json:"metadata"`
		Addresses             map[string][]Address `json:"addresses"`
		Created               *string              `json:"created"`
		Updated               *string              `json:"updated"`
		Image                 json.RawMessage      `json:"image"`
		Flavor                json.RawMessage      `json:"flavor"`
		AvailabilityZone      *string              `json:"availability_zone"`
		AvailabilityZoneCamel *string              `json:"availabilityZone"`
		SecurityGroup         *string              `json:"security_group_name"`
		SecurityGroupCamel    *string              `json:"securityGroupName"`
	}

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return fmt.Errorf("unmarshaling server record: %w", err)
	}

	r.ID = raw.ID
	r.Name = raw.Name
	r.Status = raw.Status
	r.AdminPass = preferSnakePtr(raw.AdminPass, raw.AdminPassCamel)
	r.HostID = preferSnakePtr(raw.HostID, raw.HostIDCamel)
	r.TenantID = preferSnakePtr(raw.TenantID, raw.TenantIDCamel)
	r.UserID = preferSnakePtr(raw.UserID, raw.UserIDCamel)
	r.AccessIPv4 = preferSnakePtr(raw.AccessIPv4, raw.AccessIPv4Camel)
	r.AccessIPv6 = preferSnakePtr(raw.AccessIPv6, raw.AccessIPv6Camel)
	r.Progress = raw.Progress
	r.Metadata = raw.Metadata
	r.Addresses = raw.Addresses
	r.AvailabilityZone = preferSnakePtr(raw.AvailabilityZone, raw.AvailabilityZoneCamel)
	r.SecurityGroup = preferSnakePtr(raw.SecurityGroup, raw.SecurityGroupCamel)

	r.Created, err = parseOptionalTimestamp(raw.Created)
	if err != nil {
		return fmt.Errorf("unmarshaling server record created: %w", err)
	}

	r.Updated, err = parseOptionalTimestamp(raw.Updated)
	if err != nil {
		return fmt.Errorf("unmarshaling server record updated: %w", err)
	}

	r.ImageRef, err = parseResourceRef(raw.Image)
	if err != nil {
		return fmt.Errorf("unmarshaling server record image: %w", err)
	}

	r.FlavorRef, err = parseResourceRef(raw.Flavor)
	if err != nil {
		return fmt.Errorf("unmarshaling server record flavor: %w", err)
	}

	return nil
}

func preferSnakePtr(snake, camel *string) *string {
	if snake != nil {
		return snake
	}

	return camel
}

func parseOptionalTimestamp(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}

	parsed, err := ParseTimestamp(*value)
	if err != nil {
		return nil, err
	}

	return &parsed, nil
}

// parseResourceRef accepts either a bare string ref or an {"id": ...}
// object, as the compute service uses both forms.
func parseResourceRef(raw json.RawMessage) (*string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return &asString, nil
	}

	var asObject struct {
		ID string `json:"id"`
	}

	if err := json.Unmarshal(raw, &asObject); err != nil {
		return nil, fmt.Errorf("resource ref is neither a string nor an object: %w", err)
	}

	return &asObject.ID, nil
}

// Apply overwrites on server exactly the fields the record carries; fields
// absent from the response keep their existing values.
func (r *ServerRecord) Apply(server *Server) {
	if r.ID != nil {
		server.ID = *r.ID
	}

	if r.Name != nil {
		server.Name = *r.Name
	}

	if r.Status != nil {
		server.Status = *r.Status
	}

	if r.AdminPass != nil {
		server.AdminPass = *r.AdminPass
	}

	if r.HostID != nil {
		server.HostID = *r.HostID
	}

	if r.TenantID != nil {
		server.TenantID = *r.TenantID
	}

	if r.UserID != nil {
		server.UserID = *r.UserID
	}

	if r.AccessIPv4 != nil {
		server.AccessIPv4 = *r.AccessIPv4
	}

	if r.AccessIPv6 != nil {
		server.AccessIPv6 = *r.AccessIPv6
	}

	if r.Progress != nil {
		server.Progress = *r.Progress
	}

	if r.Metadata != nil {
		server.Metadata = r.Metadata
	}

	if r.Addresses != nil {
		server.Addresses = r.Addresses
	}

	if r.Created != nil {
		server.Created = r.Created
	}

	if r.Updated != nil {
		server.Updated = r.Updated
	}

	if r.ImageRef != nil {
		server.ImageRef = *r.ImageRef
	}

	if r.FlavorRef != nil {
		server.FlavorRef = *r.FlavorRef
	}

	if r.AvailabilityZone != nil {
		server.AvailabilityZone = *r.AvailabilityZone
	}

	if r.SecurityGroup != nil {
		server.SecurityGroup = *r.SecurityGroup
	}
}

// NewServer materializes a fresh Server from the record. The record must
// carry an id; everything else is sparse.
func (r *ServerRecord) NewServer() (*Server, error) {
	if r.ID == nil || *r.ID == "" {
		return nil, &ParseError{Context: "server record", Err: ErrServerIDRequired}
	}

	server := &Server{}
	r.Apply(server)

	return server, nil
}
