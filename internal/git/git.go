// Package git provides an abstraction over the git operations the release
// pipeline needs: listing tags, branching, staging, committing, merging,
// tagging, and pushing.
package git

import (
	"context"
	"errors"
)

// Sentinel errors for git operations.
var (
	ErrNotRepository = errors.New("not a git repository")
	ErrBranchExists  = errors.New("branch already exists")
	ErrEmptyCommit   = errors.New("nothing staged to commit")
	ErrMergeConflict = errors.New("merge conflict")
	ErrTagExists     = errors.New("tag already exists")
	ErrPushRejected  = errors.New("push rejected by remote")
)

// Repository provides git operations for a repository.
//
// Every mutating call operates on the repository's single working tree and
// HEAD; callers must serialize access for the duration of a pipeline run.
type Repository interface {
	// Root returns the absolute path to the repository root.
	Root() string

	// ListTags returns all tag names in the repository.
	ListTags(ctx context.Context) ([]string, error)

	// CurrentBranch returns the branch HEAD points at.
	CurrentBranch(ctx context.Context) (string, error)

	// CreateBranch creates a new branch from HEAD and switches to it.
	// Returns ErrBranchExists if the branch already exists locally.
	CreateBranch(ctx context.Context, branch string) error

	// Checkout switches the working tree to an existing branch.
	Checkout(ctx context.Context, branch string) error

	// Stage adds the given paths (relative to the root) to the index.
	Stage(ctx context.Context, paths ...string) error

	// Commit records the staged changes with the given message.
	// Returns ErrEmptyCommit if nothing is staged.
	Commit(ctx context.Context, message string) error

	// Merge merges branch into the current branch with an explicit merge
	// commit (never fast-forward). Returns ErrMergeConflict on conflicts;
	// the merge is aborted before returning.
	Merge(ctx context.Context, branch, message string) error

	// CreateTag creates an annotated tag on HEAD.
	// Returns ErrTagExists if the tag already exists.
	CreateTag(ctx context.Context, tag, message string) error

	// Push pushes a ref (branch or tag name) to the named remote.
	// Returns ErrPushRejected if the remote refuses the update.
	Push(ctx context.Context, remote, ref string) error
}

// Opener opens git repositories.
type Opener interface {
	// Open opens the git repository containing the given path.
	// Returns ErrNotRepository if the path is not inside a git repository.
	Open(ctx context.Context, path string) (Repository, error)
}
