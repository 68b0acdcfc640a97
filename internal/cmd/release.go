package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmgilman/relcut/internal/calver"
	"github.com/jmgilman/relcut/internal/prompt"
	"github.com/jmgilman/relcut/internal/registry"
	"github.com/jmgilman/relcut/internal/release"
	"github.com/jmgilman/relcut/internal/spinner"
)

var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Run the full release pipeline",
	Long: `Cut, integrate, and publish a release.

The pipeline resolves the next version, cuts release/v<version> with the
manifest bump, merges it into trunk with an explicit merge commit, creates
an annotated tag, pushes trunk and the tag, and publishes the built
artifact to the configured registry.

Steps run strictly in order and the pipeline halts on the first failure.
Completed steps are never rolled back, and a failed release is not
resumable by re-running this command: the re-run stops at the first
already-done step (existing branch, tag, or published version). Use the
failure report to finish the remaining steps by hand.`,
	Example: `  # Release the next computed version
  relcut release

  # Release an explicit version without confirmation
  relcut release --version 20250601.0.2 --yes

  # Stop after pushing the tag; CI publishes the artifact
  relcut release --skip-publish`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		proj, err := openProject(ctx)
		if err != nil {
			return err
		}

		override, _ := cmd.Flags().GetString("version")
		v, err := proj.resolveVersion(ctx, override)
		if err != nil {
			return err
		}

		skipPublish, _ := cmd.Flags().GetBool("skip-publish")
		if !skipPublish {
			if proj.cfg.Registry.Repository == "" {
				return errors.New("registry.repository is not configured (set it in .relcut.yaml or pass --skip-publish)")
			}
			if proj.cfg.Registry.Artifact == "" {
				return errors.New("registry.artifact is not configured (set it in .relcut.yaml or pass --skip-publish)")
			}
		}

		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			confirmed, err := prompt.New().Confirm(
				fmt.Sprintf("Release %s?", v),
				fmt.Sprintf("merge %s into %s, tag %s, push, and publish", v.BranchName(), proj.cfg.Project.Trunk, v.TagName()),
			)
			if err != nil {
				return err
			}
			if !confirmed {
				return prompt.ErrCanceled
			}
		}

		report, err := runPipeline(ctx, proj, v, skipPublish)
		fmt.Print(report.Summary())
		if err != nil {
			return err
		}

		fmt.Printf("Released %s (tag %s on %s)\n", report.Version, report.Tag, proj.cfg.Project.Trunk)
		return nil
	},
}

// runPipeline cuts the release branch and integrates it, with step progress
// on a spinner when stderr is a terminal. The returned report covers every
// step that started across both stages.
func runPipeline(ctx context.Context, proj *project, v calver.Version, skipPublish bool) (*release.Report, error) {
	var observe func(string)
	if term.IsTerminal(int(os.Stderr.Fd())) {
		sp := spinner.New(nil)
		go sp.Start() //nolint:errcheck // Display only; a spinner error never fails a release
		defer sp.Stop()
		observe = sp.SetStep
	}

	cutter := release.NewCutter(proj.repo, proj.updater())
	cutter.OnStep(observe)

	report, err := cutter.Cut(ctx, v)
	if err != nil {
		return report, err
	}

	var publisher registry.Publisher
	if !skipPublish {
		publisher = registry.NewPublisher(registry.PublisherConfig{
			Repository:   proj.cfg.Registry.Repository,
			ArtifactPath: filepath.Join(proj.repo.Root(), proj.cfg.Registry.Artifact),
			Token:        registryToken(ctx),
			Insecure:     proj.cfg.Registry.Insecure,
		})
	}

	integrator := release.NewIntegrator(proj.repo, publisher, release.IntegratorConfig{
		Trunk:       proj.cfg.Project.Trunk,
		Remote:      proj.cfg.Project.Remote,
		SkipPublish: skipPublish,
	})
	integrator.OnStep(observe)

	integrateReport, err := integrator.Integrate(ctx, report.Branch, v)
	integrateReport.Steps = append(report.Steps, integrateReport.Steps...)
	return integrateReport, err
}

func init() {
	releaseCmd.Flags().String("version", "", "explicit version (YYYYMMDD.0.N), bypassing resolution")
	releaseCmd.Flags().Bool("yes", false, "skip the confirmation prompt")
	releaseCmd.Flags().Bool("skip-publish", false, "stop after pushing the tag")
	rootCmd.AddCommand(releaseCmd)
}
