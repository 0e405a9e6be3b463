package github

import "strings"

const (
	// maxBodyLength is the hard issue/comment body limit imposed by GitHub.
	maxBodyLength = 65536

	// tagHeadroom is reserved below the hard limit so callers can still
	// append a correlation tag after truncation.
	tagHeadroom = 1000
)

// TruncationMarker terminates any body that had to be cut to fit the API limit.
const TruncationMarker = "\n_[body truncated]_\n"

// TruncateBody cuts bodies that would not leave room for a tag suffix
// under GitHub's length limit. The trailing partial line is dropped so the
// cut never splits Markdown mid-construct, then the truncation marker is
// appended. Shorter bodies pass through unchanged.
func TruncateBody(body string) string {
	limit := maxBodyLength - tagHeadroom
	if len(body) < limit {
		return body
	}

	cut := body[:limit]
	if idx := strings.LastIndex(cut, "\n"); idx >= 0 {
		cut = cut[:idx+1]
	}
	return cut + TruncationMarker
}

// ComposeBody truncates the body and then appends the correlation tag on
// its own trailing line. Appending after the cut keeps the tag verbatim in
// every body regardless of length; issue matching depends on it.
func ComposeBody(body, tag string) string {
	body = TruncateBody(body)
	if tag == "" {
		return body
	}
	return body + "\n\n" + tag
}
