package auth

import (
	"encoding/json"

	"github.com/okoye/zabuza/pkg/zabuza"
)

// accessEnvelope is the wire shape of an identity service token response.
type accessEnvelope struct {
	Access struct {
		Token struct {
			ID       string        `json:"id"`
			Expires  string        `json:"expires"`
			IssuedAt string        `json:"issued_at"`
			Tenant   zabuza.Tenant `json:"tenant"`
		} `json:"token"`
		User struct {
			ID       string        `json:"id"`
			Name     string        `json:"name"`
			Username string        `json:"username"`
			Roles    []zabuza.Role `json:"roles"`
		} `json:"user"`
		ServiceCatalog []zabuza.ServiceRecord `json:"serviceCatalog"`
	} `json:"access"`
}

// parseAccess turns an authentication response into a complete snapshot.
// Token, identity and catalog are all materialized before anything is
// returned, so a parse failure can never yield partial state.
func parseAccess(body []byte, selector zabuza.EndpointSelector) (*snapshot, error) {
	var envelope accessEnvelope

	err := json.Unmarshal(body, &envelope)
	if err != nil {
		return nil, &zabuza.ParseError{Context: "auth response", Err: err}
	}

	wireToken := envelope.Access.Token
	if wireToken.ID == "" {
		return nil, &zabuza.ParseError{Context: "auth response", Err: zabuza.ErrMissingTokenID}
	}

	expires, err := zabuza.ParseTimestamp(wireToken.Expires)
	if err != nil {
		return nil, &zabuza.ParseError{Context: "auth response token expiry", Err: err}
	}

	issuedAt, err := zabuza.ParseTimestamp(wireToken.IssuedAt)
	if err != nil {
		return nil, &zabuza.ParseError{Context: "auth response token issue time", Err: err}
	}

	if envelope.Access.ServiceCatalog == nil {
		return nil, &zabuza.ParseError{Context: "auth response", Err: zabuza.ErrMissingCatalog}
	}

	catalog, err := zabuza.NewServiceCatalog(envelope.Access.ServiceCatalog, selector)
	if err != nil {
		return nil, err
	}

	return &snapshot{
		token: &zabuza.Token{
			ID:       wireToken.ID,
			IssuedAt: issuedAt,
			Expires:  expires,
			Tenant:   wireToken.Tenant,
		},
		identity: &zabuza.Identity{
			ID:       envelope.Access.User.ID,
			Name:     envelope.Access.User.Name,
			Username: envelope.Access.User.Username,
			Roles:    envelope.Access.User.Roles,
		},
		catalog: catalog,
	}, nil
}
