// Package config provides project-local configuration for relcut.
//
// Configuration lives in .relcut.yaml at the repository root so the
// release recipe travels with the project it releases.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the config file name, relative to the repo root.
const DefaultConfigFile = ".relcut.yaml"

// ErrAlreadyInitialized is returned when Init finds an existing config file.
var ErrAlreadyInitialized = errors.New("config file already exists")

// validate is the shared validator instance.
var validate = validator.New()

// Config represents the full relcut configuration.
type Config struct {
	Project  ProjectConfig  `mapstructure:"project" validate:"required"`
	Manifest ManifestConfig `mapstructure:"manifest" validate:"required"`
	Registry RegistryConfig `mapstructure:"registry"`
	Commands CommandsConfig `mapstructure:"commands"`
}

// ProjectConfig holds repository-level settings.
type ProjectConfig struct {
	Trunk  string `mapstructure:"trunk" validate:"required"`
	Remote string `mapstructure:"remote" validate:"required"`
}

// ManifestConfig describes the project manifest and its lock artifact.
type ManifestConfig struct {
	Path        string   `mapstructure:"path" validate:"required"`
	VersionKey  string   `mapstructure:"version_key" validate:"required"`
	LockFile    string   `mapstructure:"lock_file"`
	LockCommand []string `mapstructure:"lock_command"`
}

// RegistryConfig describes where release artifacts are published.
type RegistryConfig struct {
	// Repository is the OCI repository (e.g. "ghcr.io/acme/arf").
	// Empty disables publishing unless --skip-publish is negated by config.
	Repository string `mapstructure:"repository"`

	// Artifact is the built artifact path pushed on publish.
	Artifact string `mapstructure:"artifact"`

	Insecure bool `mapstructure:"insecure"`
}

// CommandsConfig holds the passthrough commands relcut can run for the
// project. Each is an argv, first element the binary.
type CommandsConfig struct {
	Build []string `mapstructure:"build"`
	Test  []string `mapstructure:"test"`
	Lint  []string `mapstructure:"lint"`
	Clean []string `mapstructure:"clean"`
}

// Validate checks the configuration for errors using struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Loader provides configuration loading for a repository root.
type Loader struct {
	v    *viper.Viper
	root string
	path string
}

// NewLoader creates a configuration loader for the given repository root.
func NewLoader(root string) *Loader {
	path := filepath.Join(root, DefaultConfigFile)

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("RELCUT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	l := &Loader{v: v, root: root, path: path}
	l.setDefaults()
	return l
}

// setDefaults sets all default configuration values using Viper.
// Defaults target a cargo project since that is the common case.
func (l *Loader) setDefaults() {
	l.v.SetDefault("project.trunk", "main")
	l.v.SetDefault("project.remote", "origin")
	l.v.SetDefault("manifest.path", "Cargo.toml")
	l.v.SetDefault("manifest.version_key", "version")
	l.v.SetDefault("manifest.lock_file", "Cargo.lock")
	l.v.SetDefault("manifest.lock_command", []string{"cargo", "update", "--workspace"})
	l.v.SetDefault("registry.repository", "")
	l.v.SetDefault("registry.artifact", "")
	l.v.SetDefault("registry.insecure", false)
	l.v.SetDefault("commands.build", []string{"cargo", "build", "--release"})
	l.v.SetDefault("commands.test", []string{"cargo", "test"})
	l.v.SetDefault("commands.lint", []string{"cargo", "clippy", "--", "-D", "warnings"})
	l.v.SetDefault("commands.clean", []string{"cargo", "clean"})
}

// Load reads the configuration file. A missing file is not an error; the
// defaults (plus environment overrides) apply.
func (l *Loader) Load() (*Config, error) {
	if _, err := os.Stat(l.path); err == nil {
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Path returns the configuration file path.
func (l *Loader) Path() string {
	return l.path
}

// Init writes a config file populated with the defaults for editing.
// Returns ErrAlreadyInitialized if one exists.
func (l *Loader) Init() error {
	if _, err := os.Stat(l.path); err == nil {
		return fmt.Errorf("%w: %s", ErrAlreadyInitialized, l.path)
	}

	cfg, err := l.Load()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(defaultFileContent(cfg))
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(l.path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// defaultFileContent shapes a Config into the yaml layout of the file.
func defaultFileContent(cfg *Config) map[string]any {
	return map[string]any{
		"project": map[string]any{
			"trunk":  cfg.Project.Trunk,
			"remote": cfg.Project.Remote,
		},
		"manifest": map[string]any{
			"path":         cfg.Manifest.Path,
			"version_key":  cfg.Manifest.VersionKey,
			"lock_file":    cfg.Manifest.LockFile,
			"lock_command": cfg.Manifest.LockCommand,
		},
		"registry": map[string]any{
			"repository": cfg.Registry.Repository,
			"artifact":   cfg.Registry.Artifact,
			"insecure":   cfg.Registry.Insecure,
		},
		"commands": map[string]any{
			"build": cfg.Commands.Build,
			"test":  cfg.Commands.Test,
			"lint":  cfg.Commands.Lint,
			"clean": cfg.Commands.Clean,
		},
	}
}
