package manifest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/relcut/internal/calver"
	"github.com/jmgilman/relcut/internal/exec"
)

// fakeExecutor fails every run with the configured error.
type fakeExecutor struct {
	err error
}

func (f *fakeExecutor) Run(_ context.Context, _ exec.RunOptions) (*exec.Result, error) {
	return &exec.Result{ExitCode: 1}, f.err
}

func (f *fakeExecutor) LookPath(name string) (string, error) {
	return name, nil
}

const cargoManifest = `[package]
name = "arf"
version = "20250530.0.4"
edition = "2021"

[dependencies]
serde = { version = "1.0", features = ["derive"] }
`

// writeManifest writes content to a temp manifest and returns its dir and name.
func writeManifest(t *testing.T, content string) (dir, name string) {
	t.Helper()
	dir = t.TempDir()
	name = "Cargo.toml"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	return dir, name
}

func TestUpdater_Apply(t *testing.T) {
	ctx := context.Background()
	version := calver.Version{Date: "20250601", Patch: 2}

	t.Run("replaces only the version value", func(t *testing.T) {
		dir, name := writeManifest(t, cargoManifest)
		u := NewUpdater(UpdaterConfig{Path: name, Dir: dir}, nil)

		require.NoError(t, u.Apply(ctx, version))

		got, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		want := `[package]
name = "arf"
version = "20250601.0.2"
edition = "2021"

[dependencies]
serde = { version = "1.0", features = ["derive"] }
`
		assert.Equal(t, want, string(got))
	})

	t.Run("matches the key anchored, not as substring", func(t *testing.T) {
		content := "toolversion = \"9.9.9\"\nversion = \"20250530.0.0\"\n"
		dir, name := writeManifest(t, content)
		u := NewUpdater(UpdaterConfig{Path: name, Dir: dir}, nil)

		require.NoError(t, u.Apply(ctx, version))

		got, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, "toolversion = \"9.9.9\"\nversion = \"20250601.0.2\"\n", string(got))
	})

	t.Run("supports colon-separated manifests", func(t *testing.T) {
		content := "name: arf\nversion: 20250530.0.0\n"
		dir, name := writeManifest(t, content)
		u := NewUpdater(UpdaterConfig{Path: name, Dir: dir}, nil)

		require.NoError(t, u.Apply(ctx, version))

		got, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, "name: arf\nversion: 20250601.0.2\n", string(got))
	})

	t.Run("returns ErrVersionNotFound when the key is missing", func(t *testing.T) {
		dir, name := writeManifest(t, "name = \"arf\"\n")
		u := NewUpdater(UpdaterConfig{Path: name, Dir: dir}, nil)

		err := u.Apply(ctx, version)

		assert.ErrorIs(t, err, ErrVersionNotFound)
	})

	t.Run("propagates read failures", func(t *testing.T) {
		u := NewUpdater(UpdaterConfig{Path: "missing.toml", Dir: t.TempDir()}, nil)

		err := u.Apply(ctx, version)

		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrVersionNotFound)
	})

	t.Run("lock command failure is non-fatal", func(t *testing.T) {
		dir, name := writeManifest(t, cargoManifest)
		u := NewUpdater(UpdaterConfig{
			Path:        name,
			Dir:         dir,
			LockFile:    "Cargo.lock",
			LockCommand: []string{"false"},
		}, &fakeExecutor{err: assert.AnError})

		assert.NoError(t, u.Apply(ctx, version))
	})
}

func TestUpdater_ChangedFiles(t *testing.T) {
	t.Run("manifest only", func(t *testing.T) {
		u := NewUpdater(UpdaterConfig{Path: "Cargo.toml", Dir: t.TempDir()}, nil)
		assert.Equal(t, []string{"Cargo.toml"}, u.ChangedFiles())
	})

	t.Run("includes an existing lock file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.lock"), []byte("# lock\n"), 0644))
		u := NewUpdater(UpdaterConfig{Path: "Cargo.toml", LockFile: "Cargo.lock", Dir: dir}, nil)

		assert.Equal(t, []string{"Cargo.toml", "Cargo.lock"}, u.ChangedFiles())
	})

	t.Run("omits a missing lock file", func(t *testing.T) {
		u := NewUpdater(UpdaterConfig{Path: "Cargo.toml", LockFile: "Cargo.lock", Dir: t.TempDir()}, nil)

		assert.Equal(t, []string{"Cargo.toml"}, u.ChangedFiles())
	})
}
