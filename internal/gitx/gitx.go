// Package gitx provides the git repository access changekit needs:
// repository root discovery, branch detection, and changed-file listing
// against a base branch. It uses go-git throughout, so a git CLI
// installation is not required.
package gitx

import (
	"fmt"
	"os"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// openRepo opens the repository containing path, traversing upward to
// find the .git directory. An empty path means the current directory.
func openRepo(path string) (*git.Repository, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}
	return repo, nil
}

// RepositoryRoot returns the absolute path of the repository root
// containing path.
func RepositoryRoot(path string) (string, error) {
	repo, err := openRepo(path)
	if err != nil {
		return "", err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("getting worktree: %w", err)
	}
	return worktree.Filesystem.Root(), nil
}

// CurrentBranch returns the current branch name, or empty string in
// detached HEAD state.
func CurrentBranch(path string) (string, error) {
	repo, err := openRepo(path)
	if err != nil {
		return "", err
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD reference: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", nil
	}
	return head.Name().Short(), nil
}

// IsRepository reports whether path is inside a git repository.
func IsRepository(path string) bool {
	_, err := openRepo(path)
	return err == nil
}

// ChangedFiles returns the paths (relative to the repository root)
// modified on the current branch relative to baseBranch: the diff from
// the merge base to HEAD, plus any staged or unstaged worktree changes.
// Paths are sorted and de-duplicated.
func ChangedFiles(path, baseBranch string) ([]string, error) {
	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}

	changed := make(map[string]bool)

	if err := collectCommittedChanges(repo, baseBranch, changed); err != nil {
		return nil, err
	}
	if err := collectWorktreeChanges(repo, changed); err != nil {
		return nil, err
	}

	files := make([]string, 0, len(changed))
	for f := range changed {
		files = append(files, f)
	}
	sort.Strings(files)
	return files, nil
}

// collectCommittedChanges adds files changed between the merge base with
// baseBranch and HEAD. A repository already on the base branch (or one
// where the base cannot be resolved locally or at origin) contributes
// nothing from commits.
func collectCommittedChanges(repo *git.Repository, baseBranch string, changed map[string]bool) error {
	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("getting HEAD reference: %w", err)
	}

	if head.Name().IsBranch() && head.Name().Short() == baseBranch {
		return nil
	}

	baseCommit, err := resolveBranchCommit(repo, baseBranch)
	if err != nil {
		return err
	}
	if baseCommit == nil {
		return nil
	}

	headCommit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return fmt.Errorf("getting HEAD commit: %w", err)
	}

	mergeBases, err := headCommit.MergeBase(baseCommit)
	if err != nil {
		return fmt.Errorf("finding merge base with %s: %w", baseBranch, err)
	}

	from := baseCommit
	if len(mergeBases) > 0 {
		from = mergeBases[0]
	}
	if from.Hash == headCommit.Hash {
		return nil
	}

	patch, err := from.Patch(headCommit)
	if err != nil {
		return fmt.Errorf("diffing against %s: %w", baseBranch, err)
	}

	for _, filePatch := range patch.FilePatches() {
		fromFile, toFile := filePatch.Files()
		if fromFile != nil {
			changed[fromFile.Path()] = true
		}
		if toFile != nil {
			changed[toFile.Path()] = true
		}
	}
	return nil
}

// resolveBranchCommit finds the commit a branch points at, checking the
// local branch first and falling back to origin. Returns nil with no
// error if neither exists.
func resolveBranchCommit(repo *git.Repository, branch string) (*object.Commit, error) {
	for _, name := range []plumbing.ReferenceName{
		plumbing.NewBranchReferenceName(branch),
		plumbing.NewRemoteReferenceName("origin", branch),
	} {
		ref, err := repo.Reference(name, true)
		if err != nil {
			continue
		}
		commit, err := repo.CommitObject(ref.Hash())
		if err != nil {
			return nil, fmt.Errorf("getting commit for %s: %w", name, err)
		}
		return commit, nil
	}
	return nil, nil
}

// collectWorktreeChanges adds staged and unstaged modifications.
func collectWorktreeChanges(repo *git.Repository, changed map[string]bool) error {
	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return fmt.Errorf("getting worktree status: %w", err)
	}

	for file, fileStatus := range status {
		if fileStatus.Staging == git.Unmodified && fileStatus.Worktree == git.Unmodified {
			continue
		}
		changed[file] = true
	}
	return nil
}
