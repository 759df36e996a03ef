package kg

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/zhiwen/backend/pkg/tokenizer"
)

// Proper-noun tokens shorter than this many runes are discarded.
const minEntityRunes = 2

// ExtractEntities scans text for entity mentions and accumulates the
// corpus-wide frequency table. Custom dictionary terms are matched first as
// plain substrings, every occurrence counted, with one mention emitted per
// occurrence; a term that is a substring of a longer term is counted
// independently for both. Remaining entities come from part-of-speech
// tagging: proper-noun tokens of at least two runes that are not dictionary
// members. No normalization, stemming or case folding is applied.
//
// Calling ExtractEntities again on the same text adds to the frequency
// table again; accumulation is additive, not idempotent.
func (b *Builder) ExtractEntities(text string) []string {
	var mentions []string

	for _, term := range b.sortedCustomWords() {
		count := strings.Count(text, term)
		if count == 0 {
			continue
		}
		for range count {
			mentions = append(mentions, term)
		}
		b.frequency[term] += count
	}

	for _, tok := range b.segmenter.Cut(text) {
		if b.isCustomWord(tok.Text) {
			continue
		}
		if !tokenizer.IsProperNoun(tok.Pos) {
			continue
		}
		if utf8.RuneCountInString(tok.Text) < minEntityRunes {
			continue
		}
		mentions = append(mentions, tok.Text)
		b.frequency[tok.Text]++
	}

	return mentions
}

// Frequency returns the accumulated corpus-wide frequency of an entity.
func (b *Builder) Frequency(entity string) int {
	return b.frequency[entity]
}

func (b *Builder) sortedCustomWords() []string {
	words := make([]string, 0, len(b.customWords))
	for w := range b.customWords {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}
