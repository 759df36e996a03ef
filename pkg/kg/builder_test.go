package kg

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/zhiwen/backend/pkg/tokenizer"
)

// fakeSegmenter returns pre-programmed tokens per input text. Unknown
// inputs yield no tokens.
type fakeSegmenter struct {
	tokens map[string][]tokenizer.Token
}

func (f *fakeSegmenter) Cut(text string) []tokenizer.Token {
	return f.tokens[text]
}

func newTestBuilder(t *testing.T, customWords []string, seg tokenizer.Segmenter) *Builder {
	t.Helper()
	if seg == nil {
		seg = &fakeSegmenter{}
	}
	b, err := NewBuilder(NewBuilderParams{
		Segmenter:   seg,
		CustomWords: customWords,
	})
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}
	return b
}

func TestNewBuilderRequiresSegmenter(t *testing.T) {
	_, err := NewBuilder(NewBuilderParams{})
	if err == nil {
		t.Fatal("NewBuilder() without segmenter should fail")
	}
}

func TestNewBuilderRejectsMalformedRules(t *testing.T) {
	tests := []struct {
		name  string
		rules []Rule
	}{
		{
			name:  "invalid regexp",
			rules: []Rule{{Pattern: `(.+?)是(.+`, Label: "身份"}},
		},
		{
			name:  "empty label",
			rules: []Rule{{Pattern: `(.+?)是(.+?)`, Label: ""}},
		},
		{
			name:  "too few capture groups",
			rules: []Rule{{Pattern: `(.+?)是`, Label: "身份"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBuilder(NewBuilderParams{
				Segmenter: &fakeSegmenter{},
				Rules:     tt.rules,
			})
			if err == nil {
				t.Fatal("NewBuilder() with malformed rules should fail")
			}
		})
	}
}

func TestExtractEntitiesDictionaryCounting(t *testing.T) {
	text := "张三是李四的老师。张三教导李四。"
	seg := &fakeSegmenter{tokens: map[string][]tokenizer.Token{
		text: {
			{Text: "张三", Pos: "nz"},
			{Text: "是", Pos: "v"},
			{Text: "李四", Pos: "nr"},
			{Text: "的", Pos: "uj"},
			{Text: "老师", Pos: "n"},
			{Text: "张三", Pos: "nz"},
			{Text: "教导", Pos: "v"},
			{Text: "李四", Pos: "nr"},
		},
	}}
	b := newTestBuilder(t, []string{"张三"}, seg)

	mentions := b.ExtractEntities(text)

	if got := b.Frequency("张三"); got != 2 {
		t.Errorf("frequency(张三) = %d, want 2", got)
	}
	if got := b.Frequency("李四"); got != 2 {
		t.Errorf("frequency(李四) = %d, want 2", got)
	}
	// Two dictionary mentions plus two tagged mentions.
	if len(mentions) != 4 {
		t.Errorf("len(mentions) = %d, want 4", len(mentions))
	}
}

func TestExtractEntitiesAccumulationIsAdditive(t *testing.T) {
	text := "唐门的唐门弟子"
	b := newTestBuilder(t, []string{"唐门"}, nil)

	b.ExtractEntities(text)
	first := b.Frequency("唐门")
	b.ExtractEntities(text)
	second := b.Frequency("唐门")

	if first != 2 {
		t.Errorf("first pass frequency = %d, want 2", first)
	}
	if second != 2*first {
		t.Errorf("second pass frequency = %d, want %d", second, 2*first)
	}
}

func TestExtractEntitiesSkipsShortAndDictionaryTokens(t *testing.T) {
	text := "某段文本"
	seg := &fakeSegmenter{tokens: map[string][]tokenizer.Token{
		text: {
			{Text: "魂", Pos: "nz"},   // single rune, skipped
			{Text: "唐门", Pos: "nz"},  // dictionary member, counted by substring pass only
			{Text: "史莱克", Pos: "nt"}, // kept
			{Text: "城市", Pos: "n"},   // not a proper noun
		},
	}}
	b := newTestBuilder(t, []string{"唐门"}, seg)

	mentions := b.ExtractEntities(text)

	want := []string{"史莱克"}
	if !reflect.DeepEqual(mentions, want) {
		t.Errorf("mentions = %v, want %v", mentions, want)
	}
}

func TestBuildFromDocumentsEmptyCorpus(t *testing.T) {
	b := newTestBuilder(t, []string{"张三"}, nil)

	if err := b.BuildFromDocuments(context.Background(), nil); err != nil {
		t.Fatalf("BuildFromDocuments() error = %v", err)
	}
	if b.State() != StateBuilt {
		t.Fatalf("state = %v, want StateBuilt", b.State())
	}

	stats, err := b.Statistics()
	if err != nil {
		t.Fatalf("Statistics() error = %v", err)
	}
	want := &Statistics{
		TotalEntities:  0,
		CustomEntities: 0,
		TotalRelations: 0,
		GraphNodes:     0,
		GraphEdges:     0,
		TopEntities:    []EntityCount{},
		RelationTypes:  0,
		AvgDegree:      0,
	}
	if !reflect.DeepEqual(stats, want) {
		t.Errorf("Statistics() = %+v, want %+v", stats, want)
	}
}

func TestQueriesBeforeBuildFail(t *testing.T) {
	b := newTestBuilder(t, nil, nil)

	if _, err := b.Neighbors("张三"); !errors.Is(err, ErrNotBuilt) {
		t.Errorf("Neighbors() error = %v, want ErrNotBuilt", err)
	}
	if _, err := b.Statistics(); !errors.Is(err, ErrNotBuilt) {
		t.Errorf("Statistics() error = %v, want ErrNotBuilt", err)
	}
	if _, err := b.Project(10); !errors.Is(err, ErrNotBuilt) {
		t.Errorf("Project() error = %v, want ErrNotBuilt", err)
	}
}

func TestBuildGraphWeightCountsDistinctTriples(t *testing.T) {
	// The identical accepted triple in two documents merges into one
	// triple key and one edge of weight 1; only a label-distinct triple
	// for the same ordered pair raises the weight.
	docs := []Document{
		{Title: "a", Content: "甲帮助乙"},
		{Title: "b", Content: "甲帮助乙"},
		{Title: "c", Content: "甲保护乙"},
	}
	b := newTestBuilder(t, []string{"甲", "乙"}, nil)

	if err := b.BuildFromDocuments(context.Background(), docs); err != nil {
		t.Fatalf("BuildFromDocuments() error = %v", err)
	}

	stats, err := b.Statistics()
	if err != nil {
		t.Fatalf("Statistics() error = %v", err)
	}
	if stats.TotalRelations != 2 {
		t.Errorf("TotalRelations = %d, want 2", stats.TotalRelations)
	}
	if stats.GraphEdges != 1 {
		t.Errorf("GraphEdges = %d, want 1", stats.GraphEdges)
	}

	neighbors, err := b.Neighbors("甲")
	if err != nil {
		t.Fatalf("Neighbors() error = %v", err)
	}
	if len(neighbors.Outgoing) != 1 {
		t.Fatalf("len(Outgoing) = %d, want 1", len(neighbors.Outgoing))
	}
	if got := neighbors.Outgoing[0].Weight; got != 2 {
		t.Errorf("edge weight = %d, want 2", got)
	}
	if got := neighbors.Outgoing[0].Relation; got != "帮助" {
		t.Errorf("primary relation = %q, want 帮助", got)
	}
}

func TestBuildGraphSingleTripleHasWeightOne(t *testing.T) {
	docs := []Document{
		{Title: "a", Content: "甲帮助乙"},
		{Title: "b", Content: "甲帮助乙"},
	}
	b := newTestBuilder(t, []string{"甲", "乙"}, nil)

	if err := b.BuildFromDocuments(context.Background(), docs); err != nil {
		t.Fatalf("BuildFromDocuments() error = %v", err)
	}

	neighbors, err := b.Neighbors("甲")
	if err != nil {
		t.Fatalf("Neighbors() error = %v", err)
	}
	if got := neighbors.Outgoing[0].Weight; got != 1 {
		t.Errorf("edge weight = %d, want 1", got)
	}
}

func TestEntitiesWithoutRelationsStayOffTheGraph(t *testing.T) {
	// 丙 occurs in the corpus but never takes part in a relation, so it
	// ranks by frequency yet never becomes a node.
	docs := []Document{
		{Title: "a", Content: "甲帮助乙"},
		{Title: "b", Content: "丙丙丙丙丙"},
	}
	b := newTestBuilder(t, []string{"甲", "乙", "丙"}, nil)

	if err := b.BuildFromDocuments(context.Background(), docs); err != nil {
		t.Fatalf("BuildFromDocuments() error = %v", err)
	}

	top := b.TopEntities(1)
	if len(top) != 1 || top[0].Entity != "丙" {
		t.Fatalf("TopEntities(1) = %v, want 丙 first", top)
	}

	if _, err := b.Neighbors("丙"); err == nil {
		t.Error("Neighbors(丙) should fail, entity has no relations")
	}

	stats, _ := b.Statistics()
	if stats.TotalEntities != 3 {
		t.Errorf("TotalEntities = %d, want 3", stats.TotalEntities)
	}
	if stats.GraphNodes != 2 {
		t.Errorf("GraphNodes = %d, want 2", stats.GraphNodes)
	}
}
