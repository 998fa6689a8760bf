package knowledge

import (
	"regexp"
	"strings"
)

// minNormalizedLen is the minimum content length re-applied after
// normalization; stripping mentions and URLs can shrink a fragment below
// usefulness even when it passed the classifier.
const minNormalizedLen = 30

var (
	mentionPattern    = regexp.MustCompile(`@\w+`)
	urlPattern        = regexp.MustCompile(`https?://\S+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Normalize strips @name mentions and URL substrings, collapses whitespace
// runs to single spaces and trims. It is idempotent:
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(s string) string {
	s = mentionPattern.ReplaceAllString(s, "")
	s = urlPattern.ReplaceAllString(s, "")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Dedup normalizes candidate content and collapses near-duplicates. The
// dedup key is the normalized, lower-cased content; the first occurrence
// wins and later duplicates are dropped silently. Candidates that
// normalize below the minimum length are dropped even though they passed
// classification. Output order follows input order, and feeding the output
// back through Dedup is a no-op.
func Dedup(candidates []Candidate) []Candidate {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]Candidate, 0, len(candidates))

	for _, c := range candidates {
		content := Normalize(c.Content)
		if len(content) <= minNormalizedLen {
			continue
		}

		key := strings.ToLower(content)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		c.Content = content
		out = append(out, c)
	}

	return out
}
