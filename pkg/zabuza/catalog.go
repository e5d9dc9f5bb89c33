package zabuza

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"strings"
)

// Endpoint is one network access point for a service. ID, Type and Name are
// always present; the URL fields are optional.
type Endpoint struct {
	ID          string `json:"id"           yaml:"id"`
	Type        string `json:"type"         yaml:"type"`
	Name        string `json:"name"         yaml:"name"`
	AdminURL    string `json:"admin_url"    yaml:"admin_url"`
	InternalURL string `json:"internal_url" yaml:"internal_url"`
	PublicURL   string `json:"public_url"   yaml:"public_url"`
	Region      string `json:"region"       yaml:"region"`
}

// Equal reports whether two endpoints refer to the same access point.
// Admin URL, region, internal URL, id and public URL must all match.
func (e Endpoint) Equal(other Endpoint) bool {
	return e.AdminURL == other.AdminURL &&
		e.Region == other.Region &&
		e.InternalURL == other.InternalURL &&
		e.ID == other.ID &&
		e.PublicURL == other.PublicURL
}

// URL joins the endpoint's public URL with the given ordered path segments,
// using exactly one separator between parts.
func (e Endpoint) URL(segments ...string) string {
	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, strings.TrimSuffix(e.PublicURL, "/"))
	parts = append(parts, segments...)

	return strings.Join(parts, "/")
}

// EndpointRecord is the wire form of a single endpoint. Each URL field is
// read through an explicit alias table: the snake_case key is preferred,
// the service's native camelCase key accepted. Unknown keys are ignored.
type EndpointRecord struct {
	ID          string
	Region      string
	AdminURL    string
	InternalURL string
	PublicURL   string
}

// UnmarshalJSON implements the tolerant alias table for endpoint records.
func (r *EndpointRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID               string  `json:"id"`
		Region           string  `json:"region"`
		AdminURL         *string `json:"admin_url"`
		AdminURLCamel    *string `json:"adminURL"`
		InternalURL      *string `json:"internal_url"`
		InternalURLCamel *string `json:"internalURL"`
		PublicURL        *string `json:"public_url"`
		PublicURLCamel   *string `json:"publicURL"`
	}

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return fmt.Errorf("unmarshaling endpoint record: %w", err)
	}

	r.ID = raw.ID
	r.Region = raw.Region
	r.AdminURL = preferSnake(raw.AdminURL, raw.AdminURLCamel)
	r.InternalURL = preferSnake(raw.InternalURL, raw.InternalURLCamel)
	r.PublicURL = preferSnake(raw.PublicURL, raw.PublicURLCamel)

	return nil
}

// preferSnake resolves an aliased field: snake_case wins when both keys are
// present, otherwise whichever is set, otherwise empty.
func preferSnake(snake, camel *string) string {
	if snake != nil {
		return *snake
	}

	if camel != nil {
		return *camel
	}

	return ""
}

// ServiceRecord is the wire form of one service descriptor in the catalog
// section of an authentication response.
type ServiceRecord struct {
	Type      string           `json:"type"`
	Name      string           `json:"name"`
	Endpoints []EndpointRecord `json:"endpoints"`
}

// EndpointSelector picks one endpoint from a non-empty list of redundant
// endpoints of the same service type.
type EndpointSelector func(endpoints []Endpoint) Endpoint

// RandomSelector returns the default selector: uniform random choice, a
// simple client-side load-spreading strategy across redundant endpoints.
func RandomSelector() EndpointSelector {
	return func(endpoints []Endpoint) Endpoint {
		return endpoints[rand.Intn(len(endpoints))]
	}
}

// ServiceCatalog maps a service type to the endpoints the authenticated
// identity may reach. A catalog is built fresh from each authentication
// response and never mutated afterwards.
type ServiceCatalog struct {
	endpoints map[string][]Endpoint
	selector  EndpointSelector
}

// NewServiceCatalog builds a catalog from service records, keyed by service
// type. A nil selector falls back to uniform random selection.
func NewServiceCatalog(services []ServiceRecord, selector EndpointSelector) (*ServiceCatalog, error) {
	if selector == nil {
		selector = RandomSelector()
	}

	catalog := &ServiceCatalog{
		endpoints: make(map[string][]Endpoint, len(services)),
		selector:  selector,
	}

	for _, service := range services {
		if service.Type == "" {
			return nil, &ParseError{Context: "service catalog", Err: ErrMissingServiceType}
		}

		if service.Name == "" {
			return nil, &ParseError{Context: "service catalog", Err: ErrMissingServiceName}
		}

		for _, record := range service.Endpoints {
			if record.ID == "" {
				return nil, &ParseError{Context: "service catalog", Err: ErrMissingEndpointID}
			}

			catalog.endpoints[service.Type] = append(catalog.endpoints[service.Type], Endpoint{
				ID:          record.ID,
				Type:        service.Type,
				Name:        service.Name,
				AdminURL:    record.AdminURL,
				InternalURL: record.InternalURL,
				PublicURL:   record.PublicURL,
				Region:      record.Region,
			})
		}
	}

	return catalog, nil
}

// EndpointFor returns one endpoint of the given service type, chosen by the
// catalog's selector. It fails with UnknownServiceError when the type has no
// entry; it never returns a default.
func (c *ServiceCatalog) EndpointFor(serviceType string) (Endpoint, error) {
	endpoints, ok := c.endpoints[serviceType]
	if !ok || len(endpoints) == 0 {
		return Endpoint{}, &UnknownServiceError{ServiceType: serviceType}
	}

	return c.selector(endpoints), nil
}

// EndpointsInRegion returns the endpoints of the given service type whose
// region matches. An empty result is not an error; a missing service type is.
func (c *ServiceCatalog) EndpointsInRegion(serviceType, region string) ([]Endpoint, error) {
	endpoints, ok := c.endpoints[serviceType]
	if !ok || len(endpoints) == 0 {
		return nil, &UnknownServiceError{ServiceType: serviceType}
	}

	matched := make([]Endpoint, 0, len(endpoints))

	for _, endpoint := range endpoints {
		if endpoint.Region == region {
			matched = append(matched, endpoint)
		}
	}

	return matched, nil
}

// ServiceTypes returns the catalog's service types in sorted order.
func (c *ServiceCatalog) ServiceTypes() []string {
	types := make([]string, 0, len(c.endpoints))
	for serviceType := range c.endpoints {
		types = append(types, serviceType)
	}

	sort.Strings(types)

	return types
}

// Endpoints returns all endpoints of the given service type, in catalog
// order. The returned slice is a copy.
func (c *ServiceCatalog) Endpoints(serviceType string) []Endpoint {
	endpoints := c.endpoints[serviceType]
	out := make([]Endpoint, len(endpoints))
	copy(out, endpoints)

	return out
}
