// Package registry publishes release artifacts to an OCI registry.
//
// The built artifact is pushed as a single-layer image tagged with the
// release version. Registries that already hold the version reject the
// publish; authentication uses an explicit token when configured and the
// ambient docker credential keychain otherwise.
package registry

import (
	"context"
	"errors"

	"github.com/jmgilman/relcut/internal/calver"
)

// Sentinel errors for registry operations.
var (
	// ErrDuplicateVersion is returned when the version is already published.
	ErrDuplicateVersion = errors.New("version already published")

	// ErrUnauthorized is returned when authentication fails.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidRef is returned when the repository reference is malformed.
	ErrInvalidRef = errors.New("invalid repository reference")
)

// PublisherConfig configures the Publisher.
type PublisherConfig struct {
	// Repository is the registry repository the artifact is pushed to
	// (e.g. "ghcr.io/acme/arf").
	Repository string

	// ArtifactPath is the built artifact file to publish.
	ArtifactPath string

	// Token is an optional bearer token. Empty falls back to the ambient
	// credential keychain.
	Token string

	// Insecure allows HTTP (non-TLS) connections to registries.
	Insecure bool
}

// Publisher publishes release artifacts.
type Publisher interface {
	// Publish pushes the configured artifact tagged with the version.
	// Returns ErrDuplicateVersion if the version already exists in the
	// registry.
	Publish(ctx context.Context, version calver.Version) error
}
