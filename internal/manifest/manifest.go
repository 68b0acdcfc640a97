// Package manifest rewrites the version field of a project manifest.
//
// The manifest format is opaque to this package: the updater matches a
// single version-declaring line by exact anchored key and replaces only
// the value, leaving every other byte of the file unchanged.
package manifest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/jmgilman/relcut/internal/calver"
	"github.com/jmgilman/relcut/internal/exec"
	"github.com/jmgilman/relcut/internal/slogger"
)

// Sentinel errors for manifest operations.
var (
	// ErrVersionNotFound is returned when the manifest has no version field.
	ErrVersionNotFound = errors.New("no version field found in manifest")
)

// UpdaterConfig configures the Updater.
type UpdaterConfig struct {
	// Path is the manifest file path, relative to the repository root.
	Path string

	// Key is the name of the version-declaring field (default "version").
	Key string

	// LockFile is the path of the dependent lock artifact, if any.
	// Empty means the project has no lock artifact.
	LockFile string

	// LockCommand regenerates the lock artifact after a version bump
	// (e.g. ["cargo", "update", "--workspace"]). Empty means skip.
	LockCommand []string

	// Dir is the repository root. File paths above are resolved against
	// it, and the lock command runs in it.
	Dir string
}

// Updater applies a version to the project manifest.
type Updater struct {
	config UpdaterConfig
	exec   exec.Executor
}

// NewUpdater creates an Updater. A nil executor disables lock regeneration.
func NewUpdater(cfg UpdaterConfig, e exec.Executor) *Updater {
	if cfg.Key == "" {
		cfg.Key = "version"
	}
	return &Updater{config: cfg, exec: e}
}

// ChangedFiles returns the manifest paths that Apply may modify, for
// staging. A configured lock file that does not exist is omitted.
func (u *Updater) ChangedFiles() []string {
	files := []string{u.config.Path}
	if u.config.LockFile != "" {
		if _, err := os.Stat(filepath.Join(u.config.Dir, u.config.LockFile)); err == nil {
			files = append(files, u.config.LockFile)
		}
	}
	return files
}

// Apply rewrites the manifest's version field to the given version and
// regenerates the lock artifact if one is configured.
//
// Lock regeneration is a convenience, not a correctness requirement of the
// bump: its failure is logged and swallowed.
func (u *Updater) Apply(ctx context.Context, version calver.Version) error {
	log := slogger.FromContext(ctx)

	if err := u.rewrite(version); err != nil {
		return err
	}
	log.Info("updated manifest version", "path", u.config.Path, "version", version.String())

	if len(u.config.LockCommand) > 0 && u.exec != nil {
		if err := u.regenerateLock(ctx); err != nil {
			log.Warn("lock regeneration failed; continuing",
				"command", u.config.LockCommand, "error", err)
		}
	}
	return nil
}

// manifestPath resolves the manifest path against the repository root.
func (u *Updater) manifestPath() string {
	return filepath.Join(u.config.Dir, u.config.Path)
}

// rewrite replaces the value of the version-declaring line in place.
func (u *Updater) rewrite(version calver.Version) error {
	path := u.manifestPath()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	pattern, err := versionLinePattern(u.config.Key)
	if err != nil {
		return err
	}

	loc := pattern.FindSubmatchIndex(data)
	if loc == nil {
		return fmt.Errorf("%w: key %q in %s", ErrVersionNotFound, u.config.Key, u.config.Path)
	}

	// Splice the new value between the captured prefix and suffix so the
	// rest of the file stays byte-identical.
	var out []byte
	out = append(out, data[:loc[3]]...)
	out = append(out, version.String()...)
	out = append(out, data[loc[4]:]...)

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat manifest: %w", err)
	}
	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// regenerateLock runs the configured lock command in the project directory.
func (u *Updater) regenerateLock(ctx context.Context) error {
	result, err := u.exec.Run(ctx, exec.RunOptions{
		Name: u.config.LockCommand[0],
		Args: u.config.LockCommand[1:],
		Dir:  u.config.Dir,
	})
	if err != nil {
		stderr := ""
		if result != nil {
			stderr = string(result.Stderr)
		}
		return fmt.Errorf("run lock command: %w (%s)", err, stderr)
	}
	return nil
}

// versionLinePattern builds an anchored pattern for a version-declaring line:
// optional indentation, the exact key, = or :, an optionally quoted value.
// Capture group 1 covers everything before the value, group 2 everything after.
func versionLinePattern(key string) (*regexp.Regexp, error) {
	expr := fmt.Sprintf(`(?m)^([ \t]*%s[ \t]*[:=][ \t]*["']?)[0-9A-Za-z.+-]+(["']?[ \t]*,?[ \t]*)$`,
		regexp.QuoteMeta(key))
	pattern, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile version pattern: %w", err)
	}
	return pattern, nil
}
