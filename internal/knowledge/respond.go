package knowledge

import (
	"fmt"
	"strings"
)

// relatedExcerptLen is how much of a related entry's content is shown.
const relatedExcerptLen = 150

// maxRelated caps the related entries appended below the top match.
const maxRelated = 2

// Confidence buckets the top score into the discrete label shown to users
// instead of a raw number: score > 20 is high confidence, 10 < score <= 20
// a good match, anything positive below that merely relevant info.
func Confidence(score int) string {
	switch {
	case score > 20:
		return "High confidence"
	case score > 10:
		return "Good match"
	default:
		return "Relevant info"
	}
}

// Compose turns a ranking result into the final user-facing answer. An
// empty result yields the fixed fallback enumerating example topics; this
// is a terminal, non-failing outcome. Otherwise the answer leads with the
// top match's category and title, its full content, and up to two related
// entries rendered as short excerpts. Deterministic for identical input.
func Compose(username string, matches []Match) string {
	if username == "" {
		username = "there"
	}

	if len(matches) == 0 {
		return fmt.Sprintf("Hey %s! I don't have specific information about that in my knowledge base. "+
			"Try asking about weapons, gear sets, characters, PvP strategies, or guild requirements!", username)
	}

	best := matches[0]

	var b strings.Builder
	fmt.Fprintf(&b, "Hey %s! **%s - %s:**\n\n%s", username, best.Category.DisplayName(), best.Title, best.Content)

	if len(matches) > 1 {
		b.WriteString("\n\n**Related Information:**\n")
		related := matches[1:]
		if len(related) > maxRelated {
			related = related[:maxRelated]
		}
		for _, m := range related {
			fmt.Fprintf(&b, "• **%s:** %s\n", m.Title, excerpt(m.Content, relatedExcerptLen))
		}
	}

	fmt.Fprintf(&b, "\n\n%s | Found %d relevant entries from my Archero 2 knowledge base!",
		Confidence(best.Score), len(matches))

	return b.String()
}

// excerpt truncates s to at most n runes, appending an ellipsis when
// anything was cut.
func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
