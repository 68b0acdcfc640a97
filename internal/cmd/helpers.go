package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jmgilman/relcut/internal/calver"
	"github.com/jmgilman/relcut/internal/config"
	"github.com/jmgilman/relcut/internal/exec"
	"github.com/jmgilman/relcut/internal/git"
	"github.com/jmgilman/relcut/internal/keychain"
	"github.com/jmgilman/relcut/internal/manifest"
	"github.com/jmgilman/relcut/internal/slogger"
)

// registryTokenAccount is the keychain account for the registry token.
const registryTokenAccount = "registry-token"

// registryTokenEnv overrides the keychain-stored registry token.
const registryTokenEnv = "RELCUT_REGISTRY_TOKEN"

// project bundles the collaborators every release command needs: the
// repository, its configuration, and an executor for external commands.
type project struct {
	repo git.Repository
	cfg  *config.Config
	exec exec.Executor
}

// openProject opens the repository containing the working directory and
// loads its configuration.
func openProject(ctx context.Context) (*project, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	executor := exec.New()
	repo, err := git.NewOpener(executor).Open(ctx, cwd)
	if err != nil {
		return nil, err
	}

	cfg, err := config.NewLoader(repo.Root()).Load()
	if err != nil {
		return nil, err
	}

	return &project{repo: repo, cfg: cfg, exec: executor}, nil
}

// updater builds the manifest updater for the project.
func (p *project) updater() *manifest.Updater {
	return manifest.NewUpdater(manifest.UpdaterConfig{
		Path:        p.cfg.Manifest.Path,
		Key:         p.cfg.Manifest.VersionKey,
		LockFile:    p.cfg.Manifest.LockFile,
		LockCommand: p.cfg.Manifest.LockCommand,
		Dir:         p.repo.Root(),
	}, p.exec)
}

// resolveVersion returns the version to release: the override parsed as-is
// when given, otherwise the next version computed from today's date and
// the repository's tags.
func (p *project) resolveVersion(ctx context.Context, override string) (calver.Version, error) {
	if override != "" {
		v, err := calver.Parse(override)
		if err != nil {
			return calver.Version{}, err
		}
		slogger.FromContext(ctx).Info("using version override", "version", v.String())
		return v, nil
	}

	tags, err := p.repo.ListTags(ctx)
	if err != nil {
		return calver.Version{}, fmt.Errorf("list tags: %w", err)
	}

	res := calver.Resolve(time.Now(), tags)
	if len(res.Skipped) > 0 {
		slogger.FromContext(ctx).Debug("skipped malformed release tags", "tags", res.Skipped)
	}
	return res.Version, nil
}

// registryToken finds the registry token: environment first, then the OS
// keychain. Empty means rely on the ambient credential keychain.
func registryToken(ctx context.Context) string {
	if token := os.Getenv(registryTokenEnv); token != "" {
		return token
	}

	kc, err := keychain.New()
	if err != nil {
		slogger.FromContext(ctx).Debug("keychain unavailable", "error", err)
		return ""
	}
	token, err := kc.Get(registryTokenAccount)
	if err != nil {
		return ""
	}
	return token
}
