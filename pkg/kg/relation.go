package kg

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/zhiwen/backend/pkg/tokenizer"
)

const (
	// Runes of surrounding text kept on each side of a pattern match.
	patternContextRunes = 20
	// Runes of the sentence kept as context for a co-occurrence relation.
	sentenceContextRunes = 50
	// Sentences shorter than this many runes are skipped by the fallback.
	minSentenceRunes = 5
	// Co-occurrence is only applied when a sentence holds between
	// minCooccurEntities and maxCooccurEntities known entities; more would
	// explode the relation count, fewer give no pair.
	minCooccurEntities = 2
	maxCooccurEntities = 5
	// A preposition or conjunction may only label a pair when the text
	// between the two entities is at most this many runes.
	maxConnectiveBetweenRunes = 3
	minVerbRunes              = 2
)

var sentenceSplitRe = regexp.MustCompile(`[。！？；\n]+`)

// ExtractRelations emits raw relation instances found in text. entities is
// the subset of known entities that literally occur in this document; a
// pattern match is only accepted when both captured spans are exact members
// of that set. Pattern rules run first, in their fixed order, then the
// sentence co-occurrence fallback. No deduplication happens here.
func (b *Builder) ExtractRelations(text string, entities []string) []RawRelation {
	entitySet := make(map[string]struct{}, len(entities))
	for _, e := range entities {
		entitySet[e] = struct{}{}
	}

	var relations []RawRelation
	relations = append(relations, b.patternRelations(text, entitySet)...)
	relations = append(relations, b.cooccurrenceRelations(text, entities)...)
	return relations
}

func (b *Builder) patternRelations(text string, entitySet map[string]struct{}) []RawRelation {
	var relations []RawRelation

	for _, rule := range b.rules {
		matches := rule.re.FindAllStringSubmatchIndex(text, -1)
		for _, m := range matches {
			// m[2:4] and m[4:6] are the first two capture groups.
			if len(m) < 6 || m[2] < 0 || m[4] < 0 {
				continue
			}
			entity1 := strings.TrimSpace(text[m[2]:m[3]])
			entity2 := strings.TrimSpace(text[m[4]:m[5]])

			if _, ok := entitySet[entity1]; !ok {
				continue
			}
			if _, ok := entitySet[entity2]; !ok {
				continue
			}

			relations = append(relations, RawRelation{
				Entity1: entity1,
				Label:   rule.label,
				Entity2: entity2,
				Context: contextWindow(text, m[0], m[1], patternContextRunes),
			})
		}
	}

	return relations
}

// cooccurrenceRelations connects consecutive members of the known-entity
// set within a sentence. The pairing follows the entity set's iteration
// order, not textual appearance order; the label comes from the first verb
// between the two occurrences, or from a preposition/conjunction when the
// between-text is very short.
func (b *Builder) cooccurrenceRelations(text string, entities []string) []RawRelation {
	var relations []RawRelation

	for _, sentence := range sentenceSplitRe.Split(text, -1) {
		if utf8.RuneCountInString(sentence) < minSentenceRunes {
			continue
		}

		var present []string
		for _, e := range entities {
			if strings.Contains(sentence, e) {
				present = append(present, e)
			}
		}
		if len(present) < minCooccurEntities || len(present) > maxCooccurEntities {
			continue
		}

		for i := 0; i < len(present)-1; i++ {
			entity1 := present[i]
			entity2 := present[i+1]

			start := strings.Index(sentence, entity1) + len(entity1)
			end := strings.Index(sentence, entity2)
			if start <= 0 || start >= end {
				continue
			}
			between := strings.TrimSpace(sentence[start:end])

			label, ok := b.relationLabel(between)
			if !ok {
				continue
			}

			relations = append(relations, RawRelation{
				Entity1: entity1,
				Label:   label,
				Entity2: entity2,
				Context: firstRunes(sentence, sentenceContextRunes),
			})
		}
	}

	return relations
}

// relationLabel picks the label for a co-occurring pair from the text
// between the two entities. Pairs without an identifiable connection are
// skipped entirely.
func (b *Builder) relationLabel(between string) (string, bool) {
	tokens := b.segmenter.Cut(between)

	for _, tok := range tokens {
		if tokenizer.IsVerb(tok.Pos) && utf8.RuneCountInString(tok.Text) >= minVerbRunes {
			return tok.Text, true
		}
	}

	if utf8.RuneCountInString(between) <= maxConnectiveBetweenRunes {
		for _, tok := range tokens {
			if tokenizer.IsConnective(tok.Pos) {
				return tok.Text, true
			}
		}
	}

	return "", false
}

// contextWindow returns the substring spanning n runes before start to n
// runes after end, with embedded line breaks collapsed to spaces. start and
// end are byte offsets into text.
func contextWindow(text string, start, end, n int) string {
	s := start
	for range n {
		if s <= 0 {
			break
		}
		_, size := utf8.DecodeLastRuneInString(text[:s])
		s -= size
	}
	e := end
	for range n {
		if e >= len(text) {
			break
		}
		_, size := utf8.DecodeRuneInString(text[e:])
		e += size
	}
	return strings.ReplaceAll(text[s:e], "\n", " ")
}

// firstRunes returns the first n runes of s.
func firstRunes(s string, n int) string {
	end := 0
	for range n {
		if end >= len(s) {
			break
		}
		_, size := utf8.DecodeRuneInString(s[end:])
		end += size
	}
	return s[:end]
}
