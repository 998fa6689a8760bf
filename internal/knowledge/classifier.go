package knowledge

import "strings"

const (
	// minFragmentLen is the minimum raw fragment length the classifier
	// accepts; shorter fragments carry too little substance.
	minFragmentLen = 50
	// maxMentionRatio rejects fragments where too many tokens are
	// @-mentions, which marks chat logs rather than content.
	maxMentionRatio = 0.3
)

// noiseLexicon lists chat artifacts that disqualify a fragment outright.
// Presence of any noise token wins over any amount of domain signal.
var noiseLexicon = []string{
	"discord", "yesterday", "today", "click to see",
	"lol", "haha", "wtf", "omg", "noob", "pro",
	"username", "user", "member", "joined", "left",
	"attachment", "image", "screenshot", "photo",
	"opinion", "think", "believe", "feel", "guess",
	"maybe", "probably", "might", "could", "should",
	"idk", "dunno", "not sure", "unsure",
}

// domainLexicon lists game terms a fragment must mention at least once to
// be worth keeping.
var domainLexicon = []string{
	"damage", "attack", "health", "defense", "critical", "crit",
	"weapon", "character", "rune", "build", "arena", "pvp",
	"tier", "s-tier", "a-tier", "b-tier", "c-tier",
	"oracle", "griffin", "dragoon", "thor", "demon", "rolla",
	"staff", "crossbow", "claws", "bow", "sword",
	"mixed gear", "set bonus", "equipment", "gear",
	"resonance", "star", "upgrade", "enhance",
	"peak arena", "guild", "xyian", "requirements",
	"strategy", "meta", "optimal", "best", "recommended",
}

// categoryRule maps a keyword group to the category it selects.
type categoryRule struct {
	category Category
	keywords []string
}

// categoryRules is an ordered precedence list, not an alphabetical one: the
// first group that matches wins, so a sentence mentioning both "weapon" and
// "build" classifies as weapons. Fragments matching no group fall through
// to mechanics.
var categoryRules = []categoryRule{
	{CategoryWeapons, []string{"weapon", "staff", "crossbow", "claws"}},
	{CategoryCharacters, []string{"character", "dragoon", "oracle", "helix", "thor"}},
	{CategoryRunes, []string{"rune"}},
	{CategoryBuilds, []string{"build", "strategy"}},
	{CategoryArena, []string{"arena", "pvp"}},
	{CategoryGuild, []string{"guild", "xyian"}},
}

// Classify decides whether a raw fragment is worth keeping and assigns it a
// category. label describes the fragment's origin and is carried through to
// the resulting candidate. It is a pure function and never panics;
// unacceptable input simply returns ok=false.
func (f Fragment) Classify() (Candidate, bool) {
	text := f.Text
	if text == "" {
		return Candidate{}, false
	}

	lower := strings.ToLower(text)

	// Noise check precedes the domain check: a fragment containing both a
	// noise token and a domain token is discarded.
	for _, noise := range noiseLexicon {
		if strings.Contains(lower, noise) {
			return Candidate{}, false
		}
	}

	hasDomain := false
	for _, term := range domainLexicon {
		if strings.Contains(lower, term) {
			hasDomain = true
			break
		}
	}
	if !hasDomain {
		return Candidate{}, false
	}

	if len(text) < minFragmentLen {
		return Candidate{}, false
	}

	// Guard against chat logs masquerading as content.
	words := strings.Fields(text)
	mentions := 0
	for _, word := range words {
		if strings.HasPrefix(word, "@") {
			mentions++
		}
	}
	if len(words) > 0 && float64(mentions) > float64(len(words))*maxMentionRatio {
		return Candidate{}, false
	}

	return Candidate{
		Category: categorize(lower),
		Content:  text,
		Label:    f.Label,
	}, true
}

// categorize tests the ordered keyword groups against lower-cased content
// and returns the first match, defaulting to mechanics.
func categorize(lower string) Category {
	for _, rule := range categoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.category
			}
		}
	}
	return CategoryMechanics
}
