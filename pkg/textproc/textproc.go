// Package textproc splits Chinese text into retrieval chunks and filters
// tokens for downstream indexing.
package textproc

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/zhiwen/backend/pkg/tokenizer"
)

const (
	DefaultChunkSize    = 300
	DefaultChunkOverlap = 50
)

var sentenceDelimiters = regexp.MustCompile(`[。！？；\n]+`)

// chineseStopwords are function words dropped before indexing.
var chineseStopwords = map[string]struct{}{
	"的": {}, "了": {}, "在": {}, "是": {}, "我": {}, "有": {}, "和": {},
	"就": {}, "不": {}, "人": {}, "都": {}, "一": {}, "一个": {}, "上": {},
	"也": {}, "很": {}, "到": {}, "说": {}, "要": {}, "去": {}, "你": {},
	"会": {}, "着": {}, "没有": {}, "看": {}, "好": {}, "自己": {}, "这": {},
	"那": {}, "里": {}, "为": {}, "与": {}, "而": {}, "且": {}, "或": {},
	"但": {}, "因为": {}, "所以": {}, "如果": {}, "虽然": {}, "然而": {},
	"因此": {}, "于是": {}, "并且": {}, "以及": {}, "以": {}, "及": {},
	"等": {}, "等等": {}, "之": {}, "其": {}, "中": {}, "对": {}, "从": {},
	"把": {}, "被": {}, "让": {},
}

// Processor chunks text along sentence boundaries and tokenizes it with
// stopword filtering. Sizes and overlap are measured in runes.
type Processor struct {
	chunkSize    int
	chunkOverlap int
	segmenter    tokenizer.Segmenter
}

type NewProcessorParams struct {
	ChunkSize    int
	ChunkOverlap int
	Segmenter    tokenizer.Segmenter
}

func NewProcessor(params NewProcessorParams) *Processor {
	chunkSize := params.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	chunkOverlap := params.ChunkOverlap
	if chunkOverlap < 0 {
		chunkOverlap = DefaultChunkOverlap
	}
	return &Processor{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		segmenter:    params.Segmenter,
	}
}

// SplitIntoChunks splits text into chunks that never cut through a
// sentence. When a chunk fills up, the trailing sentences that cover at
// least the overlap length are carried into the next chunk.
func (p *Processor) SplitIntoChunks(text string) []string {
	var sentences []string
	for _, s := range sentenceDelimiters.Split(text, -1) {
		s = strings.TrimSpace(s)
		if s != "" {
			sentences = append(sentences, s)
		}
	}

	var chunks []string
	var current []string
	currentLength := 0

	for _, sentence := range sentences {
		sentenceLength := utf8.RuneCountInString(sentence)

		if currentLength+sentenceLength > p.chunkSize && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, ""))

			var overlap []string
			overlapLength := 0
			for i := len(current) - 1; i >= 0; i-- {
				overlap = append([]string{current[i]}, overlap...)
				overlapLength += utf8.RuneCountInString(current[i])
				if overlapLength >= p.chunkOverlap {
					break
				}
			}
			current = overlap
			currentLength = overlapLength
		}

		current = append(current, sentence)
		currentLength += sentenceLength
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, ""))
	}
	return chunks
}

// TokenizeAndFilter segments text and drops stopwords and tokens that
// carry neither Han characters nor alphanumerics.
func (p *Processor) TokenizeAndFilter(text string) []string {
	if p.segmenter == nil {
		return nil
	}

	var filtered []string
	for _, token := range p.segmenter.Cut(text) {
		if _, stop := chineseStopwords[token.Text]; stop {
			continue
		}
		if !isValidWord(token.Text) {
			continue
		}
		filtered = append(filtered, token.Text)
	}
	return filtered
}

func isValidWord(word string) bool {
	for _, r := range word {
		if unicode.Is(unicode.Han, r) || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
