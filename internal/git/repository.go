package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmgilman/relcut/internal/exec"
)

type repository struct {
	root string
	exec exec.Executor
}

func (r *repository) Root() string {
	return r.root
}

// git runs a git subcommand in the repository root.
func (r *repository) git(ctx context.Context, args ...string) (*exec.Result, error) {
	return r.exec.Run(ctx, exec.RunOptions{
		Name: "git",
		Args: args,
		Dir:  r.root,
	})
}

// gitError formats a failed git command, preferring stderr when present.
func gitError(operation string, result *exec.Result, err error) error {
	if result != nil {
		stderr := strings.TrimSpace(string(result.Stderr))
		if stderr != "" {
			return fmt.Errorf("%s: %s", operation, stderr)
		}
	}
	return fmt.Errorf("%s: %w", operation, err)
}

func (r *repository) ListTags(ctx context.Context) ([]string, error) {
	result, err := r.git(ctx, "tag", "--list")
	if err != nil {
		return nil, gitError("list tags", result, err)
	}

	var tags []string
	for _, line := range strings.Split(string(result.Stdout), "\n") {
		if tag := strings.TrimSpace(line); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

func (r *repository) CurrentBranch(ctx context.Context) (string, error) {
	result, err := r.git(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", gitError("get current branch", result, err)
	}
	return strings.TrimSpace(string(result.Stdout)), nil
}

func (r *repository) CreateBranch(ctx context.Context, branch string) error {
	// Check first: `git switch -c` reports an existing branch on stderr,
	// but an explicit ref check keeps the failure mode unambiguous.
	exists, err := r.branchExists(ctx, branch)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrBranchExists, branch)
	}

	result, err := r.git(ctx, "switch", "-c", branch)
	if err != nil {
		if strings.Contains(string(result.Stderr), "already exists") {
			return fmt.Errorf("%w: %s", ErrBranchExists, branch)
		}
		return gitError("create branch", result, err)
	}
	return nil
}

// branchExists checks if a branch exists locally.
func (r *repository) branchExists(ctx context.Context, branch string) (bool, error) {
	result, err := r.git(ctx, "show-ref", "--verify", "--quiet", "refs/heads/"+branch)
	if err != nil {
		// Exit code 1 means the ref doesn't exist, which is not an error.
		if result != nil && result.ExitCode == 1 {
			return false, nil
		}
		return false, gitError("check branch", result, err)
	}
	return true, nil
}

func (r *repository) Checkout(ctx context.Context, branch string) error {
	result, err := r.git(ctx, "switch", branch)
	if err != nil {
		return gitError("checkout "+branch, result, err)
	}
	return nil
}

func (r *repository) Stage(ctx context.Context, paths ...string) error {
	args := append([]string{"add", "--"}, paths...)
	result, err := r.git(ctx, args...)
	if err != nil {
		return gitError("stage files", result, err)
	}
	return nil
}

func (r *repository) Commit(ctx context.Context, message string) error {
	result, err := r.git(ctx, "commit", "-m", message)
	if err != nil {
		out := string(result.Stdout) + string(result.Stderr)
		if strings.Contains(out, "nothing to commit") ||
			strings.Contains(out, "nothing added to commit") {
			return ErrEmptyCommit
		}
		return gitError("commit", result, err)
	}
	return nil
}

func (r *repository) Merge(ctx context.Context, branch, message string) error {
	result, err := r.git(ctx, "merge", "--no-ff", "-m", message, branch)
	if err != nil {
		out := string(result.Stdout) + string(result.Stderr)
		if strings.Contains(out, "CONFLICT") || strings.Contains(out, "Automatic merge failed") {
			// Leave the tree clean for the caller; the conflict itself is fatal.
			if abortResult, abortErr := r.git(ctx, "merge", "--abort"); abortErr != nil {
				return gitError("abort conflicted merge", abortResult, abortErr)
			}
			return fmt.Errorf("%w: merging %s", ErrMergeConflict, branch)
		}
		return gitError("merge "+branch, result, err)
	}
	return nil
}

func (r *repository) CreateTag(ctx context.Context, tag, message string) error {
	result, err := r.git(ctx, "tag", "-a", tag, "-m", message)
	if err != nil {
		if strings.Contains(string(result.Stderr), "already exists") {
			return fmt.Errorf("%w: %s", ErrTagExists, tag)
		}
		return gitError("create tag", result, err)
	}
	return nil
}

func (r *repository) Push(ctx context.Context, remote, ref string) error {
	result, err := r.git(ctx, "push", remote, ref)
	if err != nil {
		stderr := string(result.Stderr)
		if strings.Contains(stderr, "[rejected]") || strings.Contains(stderr, "failed to push") {
			return fmt.Errorf("%w: %s to %s", ErrPushRejected, ref, remote)
		}
		return gitError("push "+ref, result, err)
	}
	return nil
}
