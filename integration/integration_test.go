//go:build integration

// Package integration provides integration tests for the relcut CLI using testscript.
package integration

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/jmgilman/relcut/internal/cmd"
)

// TestMain registers the relcut command for testscript execution.
func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"relcut": relcutMain,
	}))
}

// relcutMain runs the CLI in-process for testscript's exec.
func relcutMain() int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

// TestScripts runs all testscript files in testdata/scripts.
func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/scripts",
		Setup: func(env *testscript.Env) error {
			// Commits need an identity; keep it out of the scripts.
			env.Setenv("GIT_AUTHOR_NAME", "Test User")
			env.Setenv("GIT_AUTHOR_EMAIL", "test@test.com")
			env.Setenv("GIT_COMMITTER_NAME", "Test User")
			env.Setenv("GIT_COMMITTER_EMAIL", "test@test.com")
			return nil
		},
	})
}
