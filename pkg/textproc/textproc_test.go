package textproc

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/zhiwen/backend/pkg/tokenizer"
)

type stubSegmenter struct {
	tokens []tokenizer.Token
}

func (s *stubSegmenter) Cut(text string) []tokenizer.Token {
	return s.tokens
}

func TestSplitIntoChunksKeepsSentencesWhole(t *testing.T) {
	p := NewProcessor(NewProcessorParams{ChunkSize: 10, ChunkOverlap: 4})

	chunks := p.SplitIntoChunks("唐三修炼玄天功。小舞陪在身边。两人一起前行。")

	want := []string{
		"唐三修炼玄天功",
		// Overlap carries the previous sentence into the next chunk.
		"唐三修炼玄天功小舞陪在身边",
		"小舞陪在身边两人一起前行",
	}
	if !reflect.DeepEqual(chunks, want) {
		t.Errorf("SplitIntoChunks() = %v, want %v", chunks, want)
	}
}

func TestSplitIntoChunksShortText(t *testing.T) {
	p := NewProcessor(NewProcessorParams{})

	chunks := p.SplitIntoChunks("只有一句话。")
	if !reflect.DeepEqual(chunks, []string{"只有一句话"}) {
		t.Errorf("SplitIntoChunks() = %v", chunks)
	}

	if got := p.SplitIntoChunks("   \n  "); got != nil {
		t.Errorf("SplitIntoChunks(blank) = %v, want nil", got)
	}
}

func TestSplitIntoChunksCountsRunes(t *testing.T) {
	p := NewProcessor(NewProcessorParams{ChunkSize: 6, ChunkOverlap: 0})

	// Each sentence is three runes but nine bytes; two fit per chunk only
	// when length is measured in runes. The carry-over loop always keeps
	// at least one trailing sentence, so chunks share a boundary sentence.
	text := strings.Repeat("三个字。", 4)
	chunks := p.SplitIntoChunks(text)

	want := []string{"三个字三个字", "三个字三个字", "三个字三个字"}
	if !reflect.DeepEqual(chunks, want) {
		t.Errorf("SplitIntoChunks() = %v, want %v", chunks, want)
	}
	for _, chunk := range chunks {
		if utf8.RuneCountInString(chunk) > 6 {
			t.Errorf("chunk %q exceeds rune budget", chunk)
		}
	}
}

func TestTokenizeAndFilter(t *testing.T) {
	seg := &stubSegmenter{tokens: []tokenizer.Token{
		{Text: "唐三", Pos: "nr"},
		{Text: "的", Pos: "uj"},
		{Text: "，", Pos: "x"},
		{Text: "魂力", Pos: "n"},
		{Text: "level99", Pos: "eng"},
		{Text: "因为", Pos: "c"},
	}}
	p := NewProcessor(NewProcessorParams{Segmenter: seg})

	got := p.TokenizeAndFilter("任意文本")
	want := []string{"唐三", "魂力", "level99"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TokenizeAndFilter() = %v, want %v", got, want)
	}
}

func TestTokenizeAndFilterWithoutSegmenter(t *testing.T) {
	p := NewProcessor(NewProcessorParams{})
	if got := p.TokenizeAndFilter("文本"); got != nil {
		t.Errorf("TokenizeAndFilter() = %v, want nil", got)
	}
}
