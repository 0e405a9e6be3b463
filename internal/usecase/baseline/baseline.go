// Package baseline suppresses re-flagging of previously-seen findings.
// The first inspection of a project snapshots every reviewer's comments
// into a baseline file; later inspections drop any comment that exactly
// matches a baseline entry, so only new findings surface as issues.
package baseline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bkyoung/inspection-sync/internal/domain"
)

const (
	baselineDir      = ".atomist"
	baselineFileBase = "legacyIssues"
)

// Project locates the working copy a baseline belongs to.
type Project struct {
	Dir string
}

// Reviewer produces review comments for a project.
type Reviewer interface {
	Name() string
	Review(ctx context.Context, project Project) ([]domain.ReviewComment, error)
}

// FilePath returns the baseline file location for a reviewer. An empty
// name addresses the combined baseline covering all reviewers.
func FilePath(project Project, reviewerName string) string {
	name := baselineFileBase
	if reviewerName != "" {
		name += "_" + reviewerName
	}
	return filepath.Join(project.Dir, baselineDir, name+".json")
}

// Load reads the baseline for a reviewer, falling back to the combined
// baseline when no per-reviewer file exists. A missing file is an empty
// baseline; corrupt JSON is a hard error.
func Load(project Project, reviewerName string) ([]domain.ReviewComment, error) {
	for _, path := range []string{FilePath(project, reviewerName), FilePath(project, "")} {
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read baseline %s: %w", path, err)
		}
		var comments []domain.ReviewComment
		if err := json.Unmarshal(data, &comments); err != nil {
			return nil, fmt.Errorf("parse baseline %s: %w", path, err)
		}
		return comments, nil
	}
	return nil, nil
}

// Step creates the baseline for a project when none exists yet. It is
// meant to run as an autofix-style pre-inspection step.
type Step struct {
	// Reviewers are all registered reviewers; each runs exactly once
	// during baselining.
	Reviewers []Reviewer

	// Name optionally scopes the baseline file to a single reviewer.
	Name string
}

// Ensure writes the baseline when absent and reports whether it did.
// An existing baseline is left untouched; it is never refreshed
// automatically.
func (s *Step) Ensure(ctx context.Context, project Project) (bool, error) {
	path := FilePath(project, s.Name)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat baseline %s: %w", path, err)
	}

	var all []domain.ReviewComment
	for _, r := range s.Reviewers {
		comments, err := r.Review(ctx, project)
		if err != nil {
			return false, fmt.Errorf("baseline reviewer %s: %w", r.Name(), err)
		}
		all = append(all, comments...)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create baseline dir: %w", err)
	}
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return false, fmt.Errorf("encode baseline: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write baseline %s: %w", path, err)
	}
	return true, nil
}

// Filter removes every comment matching a baseline entry on category,
// subcategory, detail, and source location.
func Filter(comments, base []domain.ReviewComment) []domain.ReviewComment {
	if len(base) == 0 {
		return comments
	}
	var kept []domain.ReviewComment
	for _, c := range comments {
		if !containsComment(base, c) {
			kept = append(kept, c)
		}
	}
	return kept
}

func containsComment(base []domain.ReviewComment, c domain.ReviewComment) bool {
	for _, b := range base {
		if domain.CommentsEqual(b, c) {
			return true
		}
	}
	return false
}

// FilteringReviewer wraps a reviewer and excludes baseline findings from
// its results.
type FilteringReviewer struct {
	inner Reviewer
}

// Wrap returns a reviewer whose results are filtered against the baseline.
func Wrap(inner Reviewer) *FilteringReviewer {
	return &FilteringReviewer{inner: inner}
}

// Name returns the wrapped reviewer's name.
func (f *FilteringReviewer) Name() string {
	return f.inner.Name()
}

// Review runs the wrapped reviewer and drops baseline matches.
func (f *FilteringReviewer) Review(ctx context.Context, project Project) ([]domain.ReviewComment, error) {
	comments, err := f.inner.Review(ctx, project)
	if err != nil {
		return nil, err
	}
	base, err := Load(project, f.inner.Name())
	if err != nil {
		return nil, err
	}
	return Filter(comments, base), nil
}

// Delete removes the baseline for one reviewer, forcing re-baselining on
// the next run. Deleting an absent baseline is a no-op.
func Delete(project Project, reviewerName string) error {
	path := FilePath(project, reviewerName)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete baseline %s: %w", path, err)
	}
	return nil
}

// DeleteAll removes the combined baseline and every per-reviewer baseline.
func DeleteAll(project Project) error {
	pattern := filepath.Join(project.Dir, baselineDir, baselineFileBase+"*.json")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("glob baselines: %w", err)
	}
	for _, path := range matches {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("delete baseline %s: %w", path, err)
		}
	}
	return nil
}
