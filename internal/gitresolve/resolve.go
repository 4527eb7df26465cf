// Package gitresolve implements the auto_diff collaborator of spec.md §6:
// resolving the currently staged diff for a precommit review. Structured
// access (repository presence, staged-change detection) is done with
// go-git, the way the teacher's adapter/git.Engine does; the actual patch
// text is produced by shelling out to `git diff --staged`, mirroring the
// teacher's diffWithWorkingTree fallback for working-tree diffs that
// go-git's plumbing doesn't conveniently expose.
package gitresolve

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	goGit "github.com/go-git/go-git/v5"

	"github.com/reviewbridge/reviewbridge/internal/bridgeerr"
)

// Resolver resolves the staged diff of a repository on disk.
type Resolver struct {
	repoDir string
}

// NewResolver builds a Resolver rooted at repoDir.
func NewResolver(repoDir string) *Resolver {
	return &Resolver{repoDir: repoDir}
}

// StagedDiff returns the `git diff --staged` output for the repository.
// Returns CodeGitError wrapping bridgeerr.New(CodeGitError,...) sentinels
// for "not a git repository" and an empty-string, nil-error result when
// there are no staged changes (callers distinguish "no changes" from
// "error" by checking for a blank diff, per spec.md §6's NO_STAGED_CHANGES
// contract at the handler layer).
func (r *Resolver) StagedDiff(ctx context.Context) (string, error) {
	repo, err := goGit.PlainOpenWithOptions(r.repoDir, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", bridgeerr.New(bridgeerr.CodeGitError, "not a git repository: %v", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return "", bridgeerr.New(bridgeerr.CodeGitError, "cannot open worktree: %v", err)
	}

	status, err := wt.Status()
	if err != nil {
		return "", bridgeerr.New(bridgeerr.CodeGitError, "cannot read worktree status: %v", err)
	}

	hasStaged := false
	for _, s := range status {
		if s.Staging != goGit.Unmodified && s.Staging != goGit.Untracked {
			hasStaged = true
			break
		}
	}
	if !hasStaged {
		return "", nil
	}

	out, err := runGitCommand(ctx, r.repoDir, "diff", "--staged")
	if err != nil {
		return "", bridgeerr.New(bridgeerr.CodeGitError, "%v", err)
	}
	return out, nil
}

func runGitCommand(ctx context.Context, repoDir string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", repoDir}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("git %v: %w", args, ctx.Err())
		}
		if stderr.Len() > 0 {
			return "", fmt.Errorf("git %v: %s", args, strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("git %v: %w", args, err)
	}
	return stdout.String(), nil
}
