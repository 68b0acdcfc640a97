package registry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/google/go-containerregistry/pkg/v1/empty"
	"github.com/google/go-containerregistry/pkg/v1/mutate"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/google/go-containerregistry/pkg/v1/remote/transport"
	"github.com/google/go-containerregistry/pkg/v1/static"
	"github.com/google/go-containerregistry/pkg/v1/types"

	"github.com/jmgilman/relcut/internal/calver"
	"github.com/jmgilman/relcut/internal/slogger"
)

// artifactMediaType is the layer media type for published release artifacts.
const artifactMediaType = types.MediaType("application/octet-stream")

// versionAnnotation carries the release version on the pushed manifest.
const versionAnnotation = "org.opencontainers.image.version"

// ociPublisher implements Publisher using go-containerregistry.
type ociPublisher struct {
	config PublisherConfig
}

// NewPublisher creates a Publisher for the configured repository.
func NewPublisher(cfg PublisherConfig) Publisher {
	return &ociPublisher{config: cfg}
}

// Publish pushes the artifact as a single-layer image tagged v<version>.
func (p *ociPublisher) Publish(ctx context.Context, version calver.Version) error {
	ref, err := p.versionRef(version)
	if err != nil {
		return err
	}

	opts := p.remoteOptions(ctx)

	// A version that already exists in the registry is immutable; never
	// overwrite it.
	if _, err := remote.Head(ref, opts...); err == nil {
		return fmt.Errorf("%w: %s", ErrDuplicateVersion, ref)
	}

	img, err := p.artifactImage(version)
	if err != nil {
		return err
	}

	if err := remote.Write(ref, img, opts...); err != nil {
		return p.mapError(err)
	}

	slogger.FromContext(ctx).Info("published artifact",
		"ref", ref.String(), "artifact", filepath.Base(p.config.ArtifactPath))
	return nil
}

// versionRef builds the tagged reference for a version.
func (p *ociPublisher) versionRef(version calver.Version) (name.Reference, error) {
	var nameOpts []name.Option
	if p.config.Insecure {
		nameOpts = append(nameOpts, name.Insecure)
	}

	ref, err := name.ParseReference(p.config.Repository+":"+version.TagName(), nameOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRef, err)
	}
	return ref, nil
}

// remoteOptions builds the shared remote options (context and auth).
func (p *ociPublisher) remoteOptions(ctx context.Context) []remote.Option {
	opts := []remote.Option{remote.WithContext(ctx)}
	if p.config.Token != "" {
		opts = append(opts, remote.WithAuth(&authn.Bearer{Token: p.config.Token}))
	} else {
		opts = append(opts, remote.WithAuthFromKeychain(authn.DefaultKeychain))
	}
	return opts
}

// artifactImage wraps the artifact file in a single-layer image annotated
// with the release version.
func (p *ociPublisher) artifactImage(version calver.Version) (v1.Image, error) {
	data, err := os.ReadFile(p.config.ArtifactPath)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	img, err := mutate.AppendLayers(empty.Image, static.NewLayer(data, artifactMediaType))
	if err != nil {
		return nil, fmt.Errorf("build artifact image: %w", err)
	}

	annotated, ok := mutate.Annotations(img, map[string]string{
		versionAnnotation: version.String(),
	}).(v1.Image)
	if !ok {
		return nil, errors.New("annotate artifact image")
	}
	return annotated, nil
}

// mapError converts go-containerregistry transport errors to sentinels.
func (p *ociPublisher) mapError(err error) error {
	var transportErr *transport.Error
	if errors.As(err, &transportErr) {
		switch transportErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrUnauthorized, err)
		case http.StatusConflict:
			return fmt.Errorf("%w: %v", ErrDuplicateVersion, err)
		}
	}
	return fmt.Errorf("push artifact: %w", err)
}
