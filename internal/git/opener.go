package git

import (
	"context"
	"strings"

	"github.com/jmgilman/relcut/internal/exec"
)

type opener struct {
	exec exec.Executor
}

// NewOpener creates a new Opener that uses the provided Executor.
func NewOpener(e exec.Executor) Opener {
	return &opener{exec: e}
}

func (o *opener) Open(ctx context.Context, path string) (Repository, error) {
	result, err := o.exec.Run(ctx, exec.RunOptions{
		Name: "git",
		Args: []string{"rev-parse", "--show-toplevel"},
		Dir:  path,
	})
	if err != nil {
		if result != nil && strings.Contains(string(result.Stderr), "not a git repository") {
			return nil, ErrNotRepository
		}
		return nil, gitError("get repository root", result, err)
	}

	return &repository{
		root: strings.TrimSpace(string(result.Stdout)),
		exec: o.exec,
	}, nil
}
