package domain

import "sort"

// CompareComments defines the canonical ordering of review comments:
// category, then subcategory, then path, then line, then detail.
// Comments without a location sort before located ones in the same group.
func CompareComments(a, b ReviewComment) int {
	if c := compareStrings(a.Category, b.Category); c != 0 {
		return c
	}
	if c := compareStrings(a.Subcategory, b.Subcategory); c != 0 {
		return c
	}
	aPath, aLine := locationKey(a.SourceLocation)
	bPath, bLine := locationKey(b.SourceLocation)
	if c := compareStrings(aPath, bPath); c != 0 {
		return c
	}
	if aLine != bLine {
		if aLine < bLine {
			return -1
		}
		return 1
	}
	return compareStrings(a.Detail, b.Detail)
}

// SortComments sorts a slice of comments in place using the canonical ordering.
func SortComments(comments []ReviewComment) {
	sort.SliceStable(comments, func(i, j int) bool {
		return CompareComments(comments[i], comments[j]) < 0
	})
}

// CommentsEqual reports whether two comments denote the same finding.
// Locations compare equal when both are nil, when they are the same
// object, or when path and offset match.
func CommentsEqual(a, b ReviewComment) bool {
	if a.Category != b.Category || a.Subcategory != b.Subcategory || a.Detail != b.Detail {
		return false
	}
	return locationsEqual(a.SourceLocation, b.SourceLocation)
}

func locationsEqual(a, b *SourceLocation) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.Path == b.Path && a.Offset == b.Offset
}

func locationKey(loc *SourceLocation) (string, int) {
	if loc == nil {
		return "", 0
	}
	return loc.Path, loc.LineFrom1
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
