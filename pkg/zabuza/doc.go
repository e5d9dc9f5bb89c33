// Package zabuza provides the public API for the zabuza OpenStack client.
//
// The package defines the client interfaces, configuration, domain types, and
// error taxonomy. Concrete implementations live under internal/ and are wired
// together by the zclient package:
//
//	import (
//	    "github.com/okoye/zabuza/pkg/zabuza"
//	    "github.com/okoye/zabuza/pkg/zclient"
//	)
//
//	client, err := zclient.NewWithPassword("https://keystone.example.com/v2.0/tokens",
//	    "alice", "secret", "acme")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	servers, err := client.Servers().List(ctx, nil)
//
// # Authentication
//
// A client authenticates lazily: the first resource operation (or an explicit
// Authenticate call) exchanges the configured credentials or pre-issued token
// for a fresh token, identity, and service catalog. The three are updated
// atomically; concurrent operations that find the token expired share a
// single re-authentication round trip.
//
// # Service catalog
//
// Each authentication response carries a service catalog mapping service
// types ("compute", "volume", ...) to endpoints. The catalog is replaced
// wholesale on every authentication, never merged. Endpoint selection across
// redundant endpoints of one type is uniform random by default and can be
// overridden via Config.EndpointSelector.
//
// # Errors
//
// Operations fail fast with typed errors: PreconditionError before any
// network call, TransportError for unexpected HTTP statuses, ParseError for
// malformed response bodies, UnknownServiceError for catalog misses, and
// ConfigurationError for invalid client construction. Nothing is retried
// automatically unless retries are explicitly enabled on the Config.
package zabuza
