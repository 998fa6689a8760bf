package knowledge

import (
	"sort"
	"strings"
	"unicode"
)

// minKeywordLen is the exclusive lower bound on keyword token length.
const minKeywordLen = 3

// keywordStopwords are common tokens that carry no matching signal.
var keywordStopwords = map[string]struct{}{
	"this": {}, "that": {}, "with": {}, "from": {}, "they": {},
	"have": {}, "been": {}, "were": {}, "will": {}, "your": {},
	"when": {}, "what": {}, "where": {}, "which": {}, "there": {},
	"their": {}, "them": {}, "then": {}, "than": {},
}

// ExtractKeywords derives the keyword set for a normalized content string:
// lower-case, non-word characters replaced with spaces, tokens longer than
// three characters kept, stopwords dropped, duplicates removed. The result
// is sorted so identical content always yields an identical slice; an empty
// result is valid for content made entirely of short or stop words.
func ExtractKeywords(content string) []string {
	var builder strings.Builder
	builder.Grow(len(content))
	for _, r := range strings.ToLower(content) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			builder.WriteRune(r)
		} else {
			builder.WriteRune(' ')
		}
	}

	seen := make(map[string]struct{})
	for _, token := range strings.Fields(builder.String()) {
		if len(token) <= minKeywordLen {
			continue
		}
		if _, stop := keywordStopwords[token]; stop {
			continue
		}
		seen[token] = struct{}{}
	}

	keywords := make([]string, 0, len(seen))
	for token := range seen {
		keywords = append(keywords, token)
	}
	sort.Strings(keywords)
	return keywords
}
