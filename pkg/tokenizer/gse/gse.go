// Package gse implements tokenizer.Segmenter on top of the go-ego/gse
// segmenter with its embedded Chinese dictionary.
package gse

import (
	"fmt"

	"github.com/zhiwen/backend/pkg/tokenizer"

	"github.com/go-ego/gse"
)

// Custom dictionary terms are registered with a high frequency so the
// segmenter never splits them into smaller tokens.
const customWordFrequency = 100000

// Tokenizer wraps a gse.Segmenter and adapts its output to tokenizer.Token.
type Tokenizer struct {
	seg gse.Segmenter
}

// NewTokenizerParams contains configuration for creating a Tokenizer.
//
// CustomWords are domain terms added to the dictionary before any
// segmentation happens. They are tagged as other proper nouns (nz).
type NewTokenizerParams struct {
	CustomWords []string
}

// NewTokenizer creates a Tokenizer with the default Chinese dictionary
// loaded and the given custom words registered.
func NewTokenizer(params NewTokenizerParams) (*Tokenizer, error) {
	t := &Tokenizer{}
	if err := t.seg.LoadDict(); err != nil {
		return nil, fmt.Errorf("failed to load segmenter dictionary: %w", err)
	}

	for _, word := range params.CustomWords {
		if word == "" {
			continue
		}
		if err := t.seg.AddToken(word, customWordFrequency, tokenizer.PosOtherProper); err != nil {
			return nil, fmt.Errorf("failed to add custom word %q: %w", word, err)
		}
	}

	return t, nil
}

// Cut segments text into part-of-speech tagged tokens.
func (t *Tokenizer) Cut(text string) []tokenizer.Token {
	segs := t.seg.Pos(text, true)
	tokens := make([]tokenizer.Token, 0, len(segs))
	for _, s := range segs {
		if s.Text == "" {
			continue
		}
		tokens = append(tokens, tokenizer.Token{Text: s.Text, Pos: s.Pos})
	}
	return tokens
}
