package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmgilman/relcut/internal/git"
	"github.com/jmgilman/relcut/internal/release"
)

var bumpCmd = &cobra.Command{
	Use:   "version-bump",
	Short: "Cut a release branch with the next version",
	Long: `Compute the next release version and cut a release branch.

The next version is YYYYMMDD.0.N for today's date, where N is one more
than the highest patch among today's existing release tags (0 when none
exist). The command creates release/v<version>, bumps the manifest's
version field, regenerates the lock artifact, and commits the result on
the new branch. The repository is left checked out on that branch.`,
	Example: `  # Cut a branch for the next computed version
  relcut version-bump

  # Cut a branch for an explicit version, skipping resolution
  relcut version-bump --version 20250601.0.2`,
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

		report, err := release.NewCutter(proj.repo, proj.updater()).Cut(ctx, v)
		if err != nil {
			if errors.Is(err, git.ErrBranchExists) {
				return fmt.Errorf("branch %s already exists; inspect the prior attempt before retrying", report.Branch)
			}
			fmt.Print(report.Summary())
			return err
		}

		fmt.Printf("Cut %s for version %s\n", report.Branch, report.Version)
		return nil
	},
}

func init() {
	bumpCmd.Flags().String("version", "", "explicit version (YYYYMMDD.0.N), bypassing resolution")
	rootCmd.AddCommand(bumpCmd)
}
