package release

import (
	"context"
	"fmt"

	"github.com/jmgilman/relcut/internal/calver"
	"github.com/jmgilman/relcut/internal/git"
	"github.com/jmgilman/relcut/internal/slogger"
)

// manifestUpdater is the internal interface for manifest operations.
type manifestUpdater interface {
	Apply(ctx context.Context, version calver.Version) error
	ChangedFiles() []string
}

// Cutter creates the release branch holding the manifest version bump.
type Cutter struct {
	repo     git.Repository
	manifest manifestUpdater
	observe  func(name string)
}

// NewCutter creates a Cutter operating on the given repository.
func NewCutter(repo git.Repository, manifest manifestUpdater) *Cutter {
	return &Cutter{repo: repo, manifest: manifest}
}

// OnStep registers a callback notified as each step starts. Display only;
// a nil callback is fine.
func (c *Cutter) OnStep(fn func(name string)) {
	c.observe = fn
}

// commitMessage is the deterministic bump-commit message for a version.
func commitMessage(v calver.Version) string {
	return fmt.Sprintf("release: bump version to %s", v)
}

// Cut creates branch release/v<version> from the current HEAD, applies the
// version to the manifest, and commits the result on the new branch.
//
// An existing branch of the same name is fatal: a prior attempt may or may
// not have completed and this code never guesses. The repository is left
// checked out on the new branch; Integrate expects that.
func (c *Cutter) Cut(ctx context.Context, v calver.Version) (*Report, error) {
	branch := v.BranchName()
	report := &Report{
		Version: v.String(),
		Branch:  branch,
		Tag:     v.TagName(),
	}

	steps := []Step{
		{Name: "create-branch", Run: func(ctx context.Context) error {
			return c.repo.CreateBranch(ctx, branch)
		}},
		{Name: "bump-manifest", Run: func(ctx context.Context) error {
			return c.manifest.Apply(ctx, v)
		}},
		{Name: "stage", Run: func(ctx context.Context) error {
			return c.repo.Stage(ctx, c.manifest.ChangedFiles()...)
		}},
		{Name: "commit", Run: func(ctx context.Context) error {
			return c.repo.Commit(ctx, commitMessage(v))
		}},
	}

	results, err := runSteps(ctx, steps, c.observe)
	report.Steps = results
	if err != nil {
		return report, err
	}

	slogger.FromContext(ctx).Info("cut release branch", "branch", branch, "version", v.String())
	return report, nil
}
