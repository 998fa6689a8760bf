package knowledge

import (
	"sort"
	"strings"
)

// Scoring weights for the full four-factor formula. Each query term
// contributes at most once per field test: scoring is presence-based, not
// frequency-based.
const (
	titleWeight    = 10
	contentWeight  = 5
	keywordWeight  = 3
	categoryWeight = 2
)

// DefaultLimit is the result count used when the caller passes no limit.
const DefaultLimit = 3

// minQueryTermLen is the exclusive lower bound on query term length.
const minQueryTermLen = 2

// Match is a ranked entry annotated with its score.
type Match struct {
	Entry
	Score int
}

// queryTerms lower-cases the query, splits on whitespace, drops tokens of
// two characters or fewer and removes duplicates. Deduplication keeps
// scoring presence-based: repeating a term in the query never inflates a
// score.
func queryTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	terms := fields[:0]
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if len(f) <= minQueryTermLen {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		terms = append(terms, f)
	}
	return terms
}

// Rank scores the query against every entry and returns the top limit
// matches. Scoring uses the full formula: +10 per term found in the title,
// +5 per term found in the content, +3 per (keyword, term) pair where
// either contains the other, and +2 per term found in the category name.
// Zero-score entries are excluded; ties keep insertion order. An empty term
// list yields an empty result, never a scan. Safe for concurrent use.
func (s *Store) Rank(query string, limit int) []Match {
	return s.rank(query, limit, scoreEntry)
}

// RankLegacy is the simplified title/content-only compatibility scorer kept
// for backward ranking-order comparisons against old snapshots. New callers
// should use Rank.
func (s *Store) RankLegacy(query string, limit int) []Match {
	return s.rank(query, limit, scoreEntryLegacy)
}

func (s *Store) rank(query string, limit int, score func(*Entry, []string) int) []Match {
	if limit <= 0 {
		limit = DefaultLimit
	}

	terms := queryTerms(query)
	if len(terms) == 0 {
		return nil
	}

	matches := make([]Match, 0, len(s.entries))
	for i := range s.entries {
		if sc := score(&s.entries[i], terms); sc > 0 {
			matches = append(matches, Match{Entry: s.entries[i], Score: sc})
		}
	}

	// Stable sort keeps insertion order on ties, which makes ranked output
	// reproducible.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func scoreEntry(e *Entry, terms []string) int {
	score := scoreEntryLegacy(e, terms)

	// Full cross-product, not a set intersection: one query term can match
	// several keywords and accumulate several increments.
	for _, keyword := range e.Keywords {
		for _, term := range terms {
			if strings.Contains(keyword, term) || strings.Contains(term, keyword) {
				score += keywordWeight
			}
		}
	}

	category := string(e.Category)
	for _, term := range terms {
		if strings.Contains(category, term) {
			score += categoryWeight
		}
	}

	return score
}

func scoreEntryLegacy(e *Entry, terms []string) int {
	title := strings.ToLower(e.Title)
	content := strings.ToLower(e.Content)

	score := 0
	for _, term := range terms {
		if strings.Contains(title, term) {
			score += titleWeight
		}
		if strings.Contains(content, term) {
			score += contentWeight
		}
	}
	return score
}
