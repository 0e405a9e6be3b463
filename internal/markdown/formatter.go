// Package markdown renders review comments into the Markdown bodies of
// managed issues. Output is deterministic for a given comment set: the
// reconciler compares rendered bodies to decide whether an issue update
// is needed at all.
package markdown

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bkyoung/inspection-sync/internal/domain"
)

// DefaultSubcategory is the heading used for comments without a subcategory.
const DefaultSubcategory = "n/a"

// BodyFormatter renders a set of review comments into an issue body.
// The repo reference is optional; when present, source locations become
// deep links at the reference's commit SHA.
type BodyFormatter func(comments []domain.ReviewComment, ref *domain.RepoRef) string

// CommentToMarkdown renders one comment as a Markdown bullet.
func CommentToMarkdown(comment domain.ReviewComment, ref *domain.RepoRef) string {
	var loc string
	if comment.SourceLocation != nil && comment.SourceLocation.Path != "" {
		loc = locationFragment(*comment.SourceLocation, ref) + ": "
	}
	return fmt.Sprintf("- %s_(%s)_ %s\n", loc, comment.Severity, comment.Detail)
}

func locationFragment(sl domain.SourceLocation, ref *domain.RepoRef) string {
	text := "`" + sl.Path
	if sl.LineFrom1 > 0 {
		text += fmt.Sprintf(":%d", sl.LineFrom1)
	}
	text += "`"

	if ref == nil || ref.SHA == "" {
		return text
	}

	url := fmt.Sprintf("https://github.com/%s/%s/blob/%s/%s", ref.Owner, ref.Repo, ref.SHA, sl.Path)
	if sl.LineFrom1 > 0 {
		url += fmt.Sprintf("#L%d", sl.LineFrom1)
	}
	return fmt.Sprintf("[%s](%s)", text, url)
}

// SubCategorySortingBodyFormatter groups comments under "### subcategory"
// headings in alphabetical order, comments within each group in canonical
// order. Comments without a subcategory fall under DefaultSubcategory.
func SubCategorySortingBodyFormatter(comments []domain.ReviewComment, ref *domain.RepoRef) string {
	groups := groupBy(comments, func(c domain.ReviewComment) string {
		if c.Subcategory == "" {
			return DefaultSubcategory
		}
		return c.Subcategory
	})

	var builder strings.Builder
	for _, key := range sortedKeys(groups) {
		group := groups[key]
		domain.SortComments(group)
		builder.WriteString(fmt.Sprintf("### %s\n\n", key))
		for _, c := range group {
			builder.WriteString(CommentToMarkdown(c, ref))
		}
		builder.WriteString("\n")
	}
	return builder.String()
}

// CategorySortingBodyFormatter groups comments under "## category"
// headings in alphabetical order, delegating each group to the
// subcategory formatter. Empty input yields an empty body.
func CategorySortingBodyFormatter(comments []domain.ReviewComment, ref *domain.RepoRef) string {
	groups := groupBy(comments, func(c domain.ReviewComment) string {
		return c.Category
	})

	var builder strings.Builder
	for _, key := range sortedKeys(groups) {
		builder.WriteString(fmt.Sprintf("## %s\n\n", key))
		builder.WriteString(SubCategorySortingBodyFormatter(groups[key], ref))
	}
	return builder.String()
}

func groupBy(comments []domain.ReviewComment, key func(domain.ReviewComment) string) map[string][]domain.ReviewComment {
	groups := make(map[string][]domain.ReviewComment)
	for _, c := range comments {
		k := key(c)
		groups[k] = append(groups[k], c)
	}
	return groups
}

func sortedKeys(groups map[string][]domain.ReviewComment) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
