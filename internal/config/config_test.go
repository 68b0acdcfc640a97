package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_Load(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := NewLoader(t.TempDir()).Load()

		require.NoError(t, err)
		assert.Equal(t, "main", cfg.Project.Trunk)
		assert.Equal(t, "origin", cfg.Project.Remote)
		assert.Equal(t, "Cargo.toml", cfg.Manifest.Path)
		assert.Equal(t, "version", cfg.Manifest.VersionKey)
		assert.Equal(t, []string{"cargo", "build", "--release"}, cfg.Commands.Build)
	})

	t.Run("file values override defaults", func(t *testing.T) {
		root := t.TempDir()
		content := `project:
  trunk: master
manifest:
  path: pyproject.toml
  lock_file: ""
registry:
  repository: ghcr.io/acme/arf
  artifact: dist/arf.tar.gz
`
		require.NoError(t, os.WriteFile(filepath.Join(root, DefaultConfigFile), []byte(content), 0644))

		cfg, err := NewLoader(root).Load()

		require.NoError(t, err)
		assert.Equal(t, "master", cfg.Project.Trunk)
		assert.Equal(t, "origin", cfg.Project.Remote) // default preserved
		assert.Equal(t, "pyproject.toml", cfg.Manifest.Path)
		assert.Empty(t, cfg.Manifest.LockFile)
		assert.Equal(t, "ghcr.io/acme/arf", cfg.Registry.Repository)
	})

	t.Run("invalid yaml fails", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, DefaultConfigFile), []byte(":\tnot yaml"), 0644))

		_, err := NewLoader(root).Load()

		assert.Error(t, err)
	})

	t.Run("empty trunk fails validation", func(t *testing.T) {
		root := t.TempDir()
		content := "project:\n  trunk: \"\"\n"
		require.NoError(t, os.WriteFile(filepath.Join(root, DefaultConfigFile), []byte(content), 0644))

		_, err := NewLoader(root).Load()

		assert.Error(t, err)
	})
}

func TestLoader_Init(t *testing.T) {
	t.Run("writes a loadable default config", func(t *testing.T) {
		root := t.TempDir()
		loader := NewLoader(root)

		require.NoError(t, loader.Init())

		assert.FileExists(t, loader.Path())
		cfg, err := NewLoader(root).Load()
		require.NoError(t, err)
		assert.Equal(t, "main", cfg.Project.Trunk)
	})

	t.Run("refuses to overwrite an existing config", func(t *testing.T) {
		root := t.TempDir()
		loader := NewLoader(root)
		require.NoError(t, loader.Init())

		err := loader.Init()

		assert.ErrorIs(t, err, ErrAlreadyInitialized)
	})
}
