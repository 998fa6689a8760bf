package knowledge

import (
	"strings"
	"unicode"
)

// Category is a topical bucket used both for classification and as a
// ranking signal. The set is closed at build time.
type Category string

const (
	CategoryWeapons    Category = "weapons"
	CategoryCharacters Category = "characters"
	CategoryRunes      Category = "runes"
	CategoryBuilds     Category = "builds"
	CategoryArena      Category = "arena"
	CategoryGuild      Category = "guild"
	CategoryMechanics  Category = "mechanics"
	CategoryStrategies Category = "strategies"
)

// Categories lists every known category. Order matters only for
// deterministic iteration; classification precedence lives in the
// classifier's rule table.
var Categories = []Category{
	CategoryWeapons,
	CategoryCharacters,
	CategoryRunes,
	CategoryBuilds,
	CategoryArena,
	CategoryGuild,
	CategoryMechanics,
	CategoryStrategies,
}

// ParseCategory returns the Category for name, or false if name is not a
// known category.
func ParseCategory(name string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == name {
			return c, true
		}
	}
	return "", false
}

// DisplayName returns the category name with its first letter upper-cased,
// as shown in composed answers.
func (c Category) DisplayName() string {
	s := string(c)
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// Entry is a canonical, deduplicated, categorized unit of knowledge.
// Entries are immutable after construction; Keywords is a cache derived
// from Content, never independent state.
type Entry struct {
	// ID is stable and unique within the store, formed as
	// "{category}_{contextLabel}" with a numeric suffix on collision.
	ID string `json:"id"`
	// Category is the topical bucket assigned by the classifier.
	Category Category `json:"category"`
	// Title is a short display-cased label derived from the originating key.
	Title string `json:"title"`
	// Content is the normalized prose string. Never empty.
	Content string `json:"content"`
	// Keywords is the normalized token set derived from Content.
	Keywords []string `json:"keywords"`
}

// Fragment is a raw candidate string pulled from an arbitrary position in a
// scraped source, together with a context label describing its origin.
type Fragment struct {
	Text  string
	Label string
}

// Candidate is a fragment that passed classification and carries its
// assigned category. Content is raw until the deduplicator normalizes it.
type Candidate struct {
	Category Category
	Content  string
	Label    string
}

// displayTitle turns an id-style key ("mixed_set") into a display-cased
// title ("Mixed Set").
func displayTitle(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// titleForID derives the display title from an entry id: the last
// non-numeric segment of the context label, display-cased. Numeric segments
// are array indices or collision suffixes, neither of which makes a label a
// human would recognize. The same rule runs at build time and at snapshot
// load time, so a reloaded store ranks exactly like the one that wrote the
// snapshot.
func titleForID(id string, c Category) string {
	key := strings.TrimPrefix(id, string(c)+"_")
	segments := strings.Split(key, "_")
	for i := len(segments) - 1; i >= 0; i-- {
		if !isNumeric(segments[i]) {
			return displayTitle(segments[i])
		}
	}
	return displayTitle(key)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
