// Package tokenizer defines the part-of-speech segmentation capability
// consumed by the extraction engine. Implementations produce a sequence of
// (token, tag) pairs using the jieba-compatible tag set: nr (person name),
// ns (place name), nt (organization name), nz (other proper noun), v*
// (verbs), p (preposition), c (conjunction).
package tokenizer

import "strings"

// Part-of-speech tags relevant to entity and relation extraction.
const (
	PosPersonName  = "nr"
	PosPlaceName   = "ns"
	PosOrgName     = "nt"
	PosOtherProper = "nz"
	PosPreposition = "p"
	PosConjunction = "c"
	posVerbPrefix  = "v"
)

// Token is a segmented word together with its part-of-speech tag.
type Token struct {
	Text string
	Pos  string
}

// Segmenter produces part-of-speech tagged tokens for a text.
// Implementations must be safe for concurrent use and deterministic for
// identical input.
type Segmenter interface {
	Cut(text string) []Token
}

// IsProperNoun reports whether the tag marks a person, place, organization
// or other proper-noun token.
func IsProperNoun(pos string) bool {
	switch pos {
	case PosPersonName, PosPlaceName, PosOrgName, PosOtherProper:
		return true
	}
	return false
}

// IsVerb reports whether the tag belongs to the verb category (v, vn, vd, ...).
func IsVerb(pos string) bool {
	return strings.HasPrefix(pos, posVerbPrefix)
}

// IsConnective reports whether the tag marks a preposition or conjunction.
func IsConnective(pos string) bool {
	return pos == PosPreposition || pos == PosConjunction
}
