package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmgilman/relcut/internal/exec"
	"github.com/jmgilman/relcut/internal/spinner"
)

// passthroughs maps command names to their config lookup and summary.
var passthroughs = []struct {
	name    string
	short   string
	command func(p *project) []string
}{
	{"build", "Build the project", func(p *project) []string { return p.cfg.Commands.Build }},
	{"test", "Run the project's tests", func(p *project) []string { return p.cfg.Commands.Test }},
	{"lint", "Lint the project", func(p *project) []string { return p.cfg.Commands.Lint }},
	{"clean", "Remove build outputs", func(p *project) []string { return p.cfg.Commands.Clean }},
}

func init() {
	for _, pt := range passthroughs {
		command := pt.command
		rootCmd.AddCommand(&cobra.Command{
			Use:   pt.name,
			Short: pt.short,
			Long:  pt.short + " by running the command configured in .relcut.yaml.",
			Args:  cobra.ArbitraryArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				proj, err := openProject(cmd.Context())
				if err != nil {
					return err
				}

				argv := command(proj)
				if len(argv) == 0 {
					return fmt.Errorf("no %s command configured", cmd.Name())
				}

				return runPassthrough(cmd.Context(), proj, append(argv, args...))
			},
		})
	}
}

// runPassthrough runs argv in the repository root. On a terminal the
// output streams through a spinner ticker; otherwise it streams directly.
func runPassthrough(ctx context.Context, proj *project, argv []string) error {
	opts := exec.RunOptions{
		Name: argv[0],
		Args: argv[1:],
		Dir:  proj.repo.Root(),
	}

	if term.IsTerminal(int(os.Stderr.Fd())) {
		sp := spinner.New(nil)
		sp.SetStep(argv[0])
		go sp.Start() //nolint:errcheck // Display only
		defer sp.Stop()
		opts.Stdout = sp.Writer()
		opts.Stderr = sp.Writer()
	} else {
		opts.Stdout = os.Stdout
		opts.Stderr = os.Stderr
	}

	if _, err := proj.exec.Run(ctx, opts); err != nil {
		return fmt.Errorf("run %s: %w", argv[0], err)
	}
	return nil
}
