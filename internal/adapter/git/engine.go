package git

import (
	"context"
	"fmt"
	"strings"

	goGit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/bkyoung/inspection-sync/internal/domain"
)

// Engine implements the GitEngine port backed by go-git.
type Engine struct {
	repoDir string
}

// NewEngine constructs a Git engine for the provided repository directory.
func NewEngine(repoDir string) *Engine {
	return &Engine{repoDir: repoDir}
}

// HeadSHA returns the hash of the checked-out commit.
func (e *Engine) HeadSHA(ctx context.Context) (string, error) {
	repo, err := e.open()
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// CurrentBranch returns the name of the checked-out branch.
func (e *Engine) CurrentBranch(ctx context.Context) (string, error) {
	repo, err := e.open()
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	name := head.Name()
	if name.IsBranch() {
		return name.Short(), nil
	}
	return "", fmt.Errorf("detached HEAD")
}

// ResolveDefaultBranch returns the branch origin/HEAD points at, which is
// the repository default branch for a normal clone. Repositories without
// an origin remote cannot answer this and return an error.
func (e *Engine) ResolveDefaultBranch(ctx context.Context) (string, error) {
	repo, err := e.open()
	if err != nil {
		return "", err
	}
	ref, err := repo.Reference(plumbing.ReferenceName("refs/remotes/origin/HEAD"), true)
	if err != nil {
		return "", fmt.Errorf("resolve origin HEAD: %w", err)
	}
	name := ref.Name().Short()
	return strings.TrimPrefix(name, "origin/"), nil
}

// CommitsBetween returns the commits reachable from toSHA but not from
// fromSHA, oldest first. An empty fromSHA yields only the commit at toSHA.
func (e *Engine) CommitsBetween(ctx context.Context, fromSHA, toSHA string) ([]domain.Commit, error) {
	repo, err := e.open()
	if err != nil {
		return nil, err
	}

	to, err := resolveCommit(repo, toSHA)
	if err != nil {
		return nil, fmt.Errorf("resolve to ref: %w", err)
	}

	if fromSHA == "" {
		return []domain.Commit{toDomain(to)}, nil
	}

	from, err := resolveCommit(repo, fromSHA)
	if err != nil {
		return nil, fmt.Errorf("resolve from ref: %w", err)
	}

	iter, err := repo.Log(&goGit.LogOptions{From: to.Hash})
	if err != nil {
		return nil, fmt.Errorf("walk history: %w", err)
	}
	defer iter.Close()

	var commits []domain.Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if c.Hash == from.Hash {
			return storer.ErrStop
		}
		commits = append(commits, toDomain(c))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk history: %w", err)
	}

	reverse(commits)
	return commits, nil
}

// Committers returns the deduplicated author names of the commits between
// the two refs, in commit order.
func (e *Engine) Committers(ctx context.Context, fromSHA, toSHA string) ([]string, error) {
	commits, err := e.CommitsBetween(ctx, fromSHA, toSHA)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(commits))
	var authors []string
	for _, c := range commits {
		if c.Author == "" || seen[c.Author] {
			continue
		}
		seen[c.Author] = true
		authors = append(authors, c.Author)
	}
	return authors, nil
}

func (e *Engine) open() (*goGit.Repository, error) {
	repo, err := goGit.PlainOpenWithOptions(e.repoDir, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repo: %w", err)
	}
	return repo, nil
}

func resolveCommit(repo *goGit.Repository, ref string) (*object.Commit, error) {
	candidates := []string{
		ref,
		fmt.Sprintf("refs/heads/%s", ref),
		fmt.Sprintf("refs/remotes/origin/%s", ref),
	}

	var lastErr error
	for _, candidate := range candidates {
		name := plumbing.Revision(candidate)
		hash, err := repo.ResolveRevision(name)
		if err != nil {
			lastErr = err
			continue
		}
		return repo.CommitObject(*hash)
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("unresolvable ref %q", ref)
}

func toDomain(c *object.Commit) domain.Commit {
	return domain.Commit{
		SHA:     c.Hash.String(),
		Message: c.Message,
		Author:  c.Author.Name,
	}
}

func reverse(commits []domain.Commit) {
	for i, j := 0, len(commits)-1; i < j; i, j = i+1, j-1 {
		commits[i], commits[j] = commits[j], commits[i]
	}
}
