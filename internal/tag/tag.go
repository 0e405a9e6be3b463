// Package tag builds and parses the correlation markers embedded in issue
// bodies. GitHub issues have no custom-key field, so a tag string in the
// body correlates an issue with the (source, branch) pair that manages it.
// All construction and parsing lives here so the encoding can change
// without touching callers.
package tag

import (
	"fmt"
	"regexp"
	"strings"
)

const prefix = "[atomist:code-inspection:"

var tagPattern = regexp.MustCompile(`\[atomist:code-inspection:([^=\]]*)=([^\]]*)\]`)

// Create returns the tag marking an issue as managed by the given source
// on the given branch. Branch and source are lowercased so matching is
// insensitive to how the event spelled them.
func Create(source, branch string) string {
	return fmt.Sprintf("%s%s=%s]", prefix, strings.ToLower(branch), strings.ToLower(source))
}

// BranchPrefix returns the leading portion of every tag for the given
// branch, regardless of source. Useful as a body-substring search term.
func BranchPrefix(branch string) string {
	return prefix + strings.ToLower(branch) + "="
}

// Parsed is one tag extracted from an issue body.
type Parsed struct {
	Branch string
	Source string
}

// Parse extracts all tags present in an issue body.
func Parse(body string) []Parsed {
	matches := tagPattern.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil
	}
	parsed := make([]Parsed, 0, len(matches))
	for _, m := range matches {
		parsed = append(parsed, Parsed{Branch: m[1], Source: m[2]})
	}
	return parsed
}
