package release

import (
	"context"
	"fmt"

	"github.com/jmgilman/relcut/internal/calver"
	"github.com/jmgilman/relcut/internal/git"
	"github.com/jmgilman/relcut/internal/slogger"
)

// publisher is the internal interface for registry publication.
type publisher interface {
	Publish(ctx context.Context, version calver.Version) error
}

// IntegratorConfig configures the Integrator.
type IntegratorConfig struct {
	// Trunk is the branch releases merge into (e.g. "main").
	Trunk string

	// Remote is the git remote pushed to (e.g. "origin").
	Remote string

	// SkipPublish stops the pipeline after the tag push, for projects
	// whose registry publication happens elsewhere (e.g. CI).
	SkipPublish bool
}

// Integrator merges a release branch into trunk, tags the merge, pushes
// both, and publishes the artifact.
type Integrator struct {
	repo     git.Repository
	registry publisher
	config   IntegratorConfig
	observe  func(name string)
}

// NewIntegrator creates an Integrator. The registry may be nil only when
// SkipPublish is set.
func NewIntegrator(repo git.Repository, registry publisher, cfg IntegratorConfig) *Integrator {
	return &Integrator{repo: repo, registry: registry, config: cfg}
}

// OnStep registers a callback notified as each step starts. Display only;
// a nil callback is fine.
func (i *Integrator) OnStep(fn func(name string)) {
	i.observe = fn
}

// mergeMessage is the deterministic merge-commit message for a release.
func mergeMessage(v calver.Version) string {
	return fmt.Sprintf("release: %s", v.TagName())
}

// tagMessage is the annotation message for a release tag.
func tagMessage(v calver.Version) string {
	return fmt.Sprintf("release %s", v)
}

// Integrate merges branch into trunk with an explicit merge commit, tags
// the result, pushes trunk then the tag, and publishes the artifact.
//
// Any failure halts the pipeline immediately. Completed steps are not
// undone: a merged trunk, existing tag, or pushed ref survives a later
// failure and must be resolved by a human. The returned report lists the
// outcome of every step that started, success or failure.
func (i *Integrator) Integrate(ctx context.Context, branch string, v calver.Version) (*Report, error) {
	report := &Report{
		Version: v.String(),
		Branch:  branch,
		Tag:     v.TagName(),
	}

	steps := []Step{
		{Name: "checkout-trunk", Run: func(ctx context.Context) error {
			return i.repo.Checkout(ctx, i.config.Trunk)
		}},
		{Name: "merge", Run: func(ctx context.Context) error {
			return i.repo.Merge(ctx, branch, mergeMessage(v))
		}},
		{Name: "tag", Run: func(ctx context.Context) error {
			return i.repo.CreateTag(ctx, v.TagName(), tagMessage(v))
		}},
		{Name: "push-trunk", Run: func(ctx context.Context) error {
			return i.repo.Push(ctx, i.config.Remote, i.config.Trunk)
		}},
		{Name: "push-tag", Run: func(ctx context.Context) error {
			return i.repo.Push(ctx, i.config.Remote, v.TagName())
		}},
	}

	if !i.config.SkipPublish {
		steps = append(steps, Step{Name: "publish", Run: func(ctx context.Context) error {
			return i.registry.Publish(ctx, v)
		}})
	}

	results, err := runSteps(ctx, steps, i.observe)
	report.Steps = results
	if err != nil {
		return report, err
	}

	slogger.FromContext(ctx).Info("release integrated",
		"version", v.String(), "tag", v.TagName(), "trunk", i.config.Trunk)
	return report, nil
}
