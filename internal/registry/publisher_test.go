package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	ggcr "github.com/google/go-containerregistry/pkg/registry"
	"github.com/google/go-containerregistry/pkg/v1/remote/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/relcut/internal/calver"
)

// testArtifact writes a small artifact file and returns its path.
func testArtifact(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arf.tar.gz")
	require.NoError(t, os.WriteFile(path, []byte("artifact-bytes"), 0644))
	return path
}

// testRegistry starts an in-process registry and returns its host.
func testRegistry(t *testing.T) string {
	t.Helper()
	server := httptest.NewServer(ggcr.New())
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	return u.Host
}

func TestPublisher_Publish(t *testing.T) {
	ctx := context.Background()
	version := calver.Version{Date: "20250601", Patch: 2}

	t.Run("publishes the artifact tagged with the version", func(t *testing.T) {
		host := testRegistry(t)
		pub := NewPublisher(PublisherConfig{
			Repository:   host + "/acme/arf",
			ArtifactPath: testArtifact(t),
			Insecure:     true,
		})

		require.NoError(t, pub.Publish(ctx, version))

		resp, err := http.Get("http://" + host + "/v2/acme/arf/manifests/v20250601.0.2")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("rejects an already-published version", func(t *testing.T) {
		host := testRegistry(t)
		pub := NewPublisher(PublisherConfig{
			Repository:   host + "/acme/arf",
			ArtifactPath: testArtifact(t),
			Insecure:     true,
		})
		require.NoError(t, pub.Publish(ctx, version))

		err := pub.Publish(ctx, version)

		assert.ErrorIs(t, err, ErrDuplicateVersion)
	})

	t.Run("rejects a malformed repository reference", func(t *testing.T) {
		pub := NewPublisher(PublisherConfig{
			Repository:   "UPPERCASE_IS_INVALID",
			ArtifactPath: testArtifact(t),
		})

		err := pub.Publish(ctx, version)

		assert.ErrorIs(t, err, ErrInvalidRef)
	})

	t.Run("fails when the artifact is missing", func(t *testing.T) {
		host := testRegistry(t)
		pub := NewPublisher(PublisherConfig{
			Repository:   host + "/acme/arf",
			ArtifactPath: filepath.Join(t.TempDir(), "missing.tar.gz"),
			Insecure:     true,
		})

		err := pub.Publish(ctx, version)

		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestMapError(t *testing.T) {
	p := &ociPublisher{}

	t.Run("401 maps to ErrUnauthorized", func(t *testing.T) {
		err := p.mapError(&transport.Error{StatusCode: http.StatusUnauthorized})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("409 maps to ErrDuplicateVersion", func(t *testing.T) {
		err := p.mapError(&transport.Error{StatusCode: http.StatusConflict})
		assert.ErrorIs(t, err, ErrDuplicateVersion)
	})

	t.Run("other statuses pass through", func(t *testing.T) {
		err := p.mapError(&transport.Error{StatusCode: http.StatusInternalServerError})
		assert.NotErrorIs(t, err, ErrUnauthorized)
		assert.NotErrorIs(t, err, ErrDuplicateVersion)
	})
}
