// Package cmd implements the relcut CLI commands using Cobra.
// It provides commands for computing the next release version, cutting a
// release branch, running the full release pipeline, and the project's
// build/test/lint/clean passthroughs.
package cmd

import (
	"errors"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/jmgilman/relcut/internal/slogger"
)

// baseDeps lists the external binaries that must always be available.
var baseDeps = []string{"git"}

// verbosity is the count of -v flags (0 = warnings, 1 = info, 2+ = debug).
var verbosity int

var rootCmd = &cobra.Command{
	Use:   "relcut",
	Short: "Cut date-versioned releases",
	Long: `relcut automates date-based release versioning and publication.

It computes the next YYYYMMDD.0.N version from the repository's release
tags, cuts a release branch carrying the manifest version bump, merges it
into trunk, tags, pushes, and publishes the built artifact to a registry.

A release that fails partway is never rolled back: the report names the
completed and failed steps so the remainder can be finished by hand.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := checkDependencies(); err != nil {
			return err
		}

		logger := slogger.New(slogger.Config{Verbosity: verbosity})
		cmd.SetContext(slogger.WithLogger(cmd.Context(), logger))

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase log verbosity (-v info, -vv debug)")
}

// checkDependencies verifies that all required external binaries are available.
func checkDependencies() error {
	var missing []string
	for _, dep := range baseDeps {
		if _, err := exec.LookPath(dep); err != nil {
			missing = append(missing, dep)
		}
	}
	if len(missing) > 0 {
		return errors.New("missing required dependencies: " + joinList(missing))
	}
	return nil
}

// joinList joins strings with commas and "and" before the last item.
func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		out := ""
		for i, item := range items {
			if i == len(items)-1 {
				out += "and " + item
			} else {
				out += item + ", "
			}
		}
		return out
	}
}
