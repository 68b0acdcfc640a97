package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmgilman/relcut/internal/config"
	"github.com/jmgilman/relcut/internal/exec"
	"github.com/jmgilman/relcut/internal/git"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .relcut.yaml",
	Long: `Write a default .relcut.yaml at the repository root.

The generated file carries the default cargo-flavored recipe; edit it to
match the project's manifest, commands, and registry.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}

		repo, err := git.NewOpener(exec.New()).Open(cmd.Context(), cwd)
		if err != nil {
			return err
		}

		loader := config.NewLoader(repo.Root())
		if err := loader.Init(); err != nil {
			return err
		}

		fmt.Printf("Wrote %s\n", loader.Path())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
