package markdown_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/inspection-sync/internal/domain"
	"github.com/bkyoung/inspection-sync/internal/markdown"
)

func TestCommentToMarkdown_NoLocation(t *testing.T) {
	comment := domain.ReviewComment{Severity: domain.SeverityInfo, Detail: "Stan Lee"}

	got := markdown.CommentToMarkdown(comment, nil)

	assert.Equal(t, "- _(info)_ Stan Lee\n", got)
}

func TestCommentToMarkdown_LocationWithoutRepoRef(t *testing.T) {
	comment := domain.ReviewComment{
		Severity:       domain.SeverityWarn,
		Detail:         "Stan Lee",
		SourceLocation: &domain.SourceLocation{Path: "ant-man.ts", LineFrom1: 1962},
	}

	got := markdown.CommentToMarkdown(comment, nil)

	assert.Equal(t, "- `ant-man.ts:1962`: _(warn)_ Stan Lee\n", got)
}

func TestCommentToMarkdown_LocationWithRepoRef(t *testing.T) {
	comment := domain.ReviewComment{
		Severity:       domain.SeverityWarn,
		Detail:         "Stan Lee",
		SourceLocation: &domain.SourceLocation{Path: "ant-man.ts", LineFrom1: 1962},
	}
	ref := &domain.RepoRef{Owner: "marvel", Repo: "heroes", SHA: "abc123"}

	got := markdown.CommentToMarkdown(comment, ref)

	assert.Equal(t,
		"- [`ant-man.ts:1962`](https://github.com/marvel/heroes/blob/abc123/ant-man.ts#L1962): _(warn)_ Stan Lee\n",
		got)
}

func TestCommentToMarkdown_LocationWithoutLine(t *testing.T) {
	comment := domain.ReviewComment{
		Severity:       domain.SeverityError,
		Detail:         "broken",
		SourceLocation: &domain.SourceLocation{Path: "main.go"},
	}

	got := markdown.CommentToMarkdown(comment, nil)

	assert.Equal(t, "- `main.go`: _(error)_ broken\n", got)
}

func TestCategorySortingBodyFormatter_Empty(t *testing.T) {
	assert.Equal(t, "", markdown.CategorySortingBodyFormatter(nil, nil))
}

func TestCategorySortingBodyFormatter_GroupsAndSorts(t *testing.T) {
	comments := []domain.ReviewComment{
		{Category: "style", Subcategory: "naming", Severity: domain.SeverityInfo, Detail: "rename"},
		{Category: "bugs", Severity: domain.SeverityError, Detail: "nil deref",
			SourceLocation: &domain.SourceLocation{Path: "b.go", LineFrom1: 3}},
		{Category: "bugs", Severity: domain.SeverityWarn, Detail: "leak",
			SourceLocation: &domain.SourceLocation{Path: "a.go", LineFrom1: 9}},
	}

	body := markdown.CategorySortingBodyFormatter(comments, nil)

	bugsIdx := strings.Index(body, "## bugs")
	styleIdx := strings.Index(body, "## style")
	require.GreaterOrEqual(t, bugsIdx, 0)
	require.Greater(t, styleIdx, bugsIdx, "categories must appear alphabetically")

	// Absent subcategory is rendered under the default heading.
	assert.Contains(t, body, "### n/a")
	assert.Contains(t, body, "### naming")

	// Within a subcategory, comments follow the canonical ordering (path first).
	leakIdx := strings.Index(body, "leak")
	derefIdx := strings.Index(body, "nil deref")
	assert.Less(t, leakIdx, derefIdx)
}

func TestCategorySortingBodyFormatter_Deterministic(t *testing.T) {
	comments := []domain.ReviewComment{
		{Category: "bugs", Subcategory: "nil", Severity: domain.SeverityError, Detail: "one"},
		{Category: "bugs", Subcategory: "leak", Severity: domain.SeverityWarn, Detail: "two"},
		{Category: "api", Severity: domain.SeverityInfo, Detail: "three"},
	}

	first := markdown.CategorySortingBodyFormatter(comments, nil)
	second := markdown.CategorySortingBodyFormatter(comments, nil)

	assert.Equal(t, first, second)
}
