package kg

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func builtTestGraph(t *testing.T) *Builder {
	t.Helper()
	// 甲 -> 乙 (帮助, 保护), 乙 -> 丁 (跟随), frequency 甲 3, 乙 3, 丁 1.
	docs := []Document{
		{Title: "a", Content: "甲帮助乙"},
		{Title: "b", Content: "甲保护乙"},
		{Title: "c", Content: "甲独自上路"},
		{Title: "d", Content: "乙跟随丁"},
	}
	b := newTestBuilder(t, []string{"甲", "乙", "丁"}, nil)
	if err := b.BuildFromDocuments(context.Background(), docs); err != nil {
		t.Fatalf("BuildFromDocuments() error = %v", err)
	}
	return b
}

func TestTopEntities(t *testing.T) {
	b := builtTestGraph(t)

	tests := []struct {
		name string
		n    int
		want []EntityCount
	}{
		{
			name: "zero returns empty",
			n:    0,
			want: []EntityCount{},
		},
		{
			name: "negative returns empty",
			n:    -3,
			want: []EntityCount{},
		},
		{
			name: "ties broken by entity string ascending",
			n:    2,
			want: []EntityCount{{Entity: "乙", Frequency: 3}, {Entity: "甲", Frequency: 3}},
		},
		{
			name: "n larger than entity count returns all",
			n:    10,
			want: []EntityCount{
				{Entity: "乙", Frequency: 3},
				{Entity: "甲", Frequency: 3},
				{Entity: "丁", Frequency: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.TopEntities(tt.n)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TopEntities(%d) = %v, want %v", tt.n, got, tt.want)
			}
		})
	}
}

func TestTopEntitiesIsStableAcrossCalls(t *testing.T) {
	b := builtTestGraph(t)

	first := b.TopEntities(3)
	for range 10 {
		if got := b.TopEntities(3); !reflect.DeepEqual(got, first) {
			t.Fatalf("TopEntities reordered between calls: %v != %v", got, first)
		}
	}
}

func TestNeighbors(t *testing.T) {
	b := builtTestGraph(t)

	neighbors, err := b.Neighbors("乙")
	if err != nil {
		t.Fatalf("Neighbors() error = %v", err)
	}

	wantOut := []NeighborEdge{{Entity: "丁", Relation: "跟随", Weight: 1}}
	wantIn := []NeighborEdge{{Entity: "甲", Relation: "帮助", Weight: 2}}
	if !reflect.DeepEqual(neighbors.Outgoing, wantOut) {
		t.Errorf("Outgoing = %v, want %v", neighbors.Outgoing, wantOut)
	}
	if !reflect.DeepEqual(neighbors.Incoming, wantIn) {
		t.Errorf("Incoming = %v, want %v", neighbors.Incoming, wantIn)
	}
}

func TestNeighborsEntityNotFound(t *testing.T) {
	b := builtTestGraph(t)

	_, err := b.Neighbors("不存在的实体")
	var notFound *EntityNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Neighbors() error = %v, want *EntityNotFoundError", err)
	}
	if notFound.Name != "不存在的实体" {
		t.Errorf("error name = %q, want 不存在的实体", notFound.Name)
	}
}

func TestStatistics(t *testing.T) {
	b := builtTestGraph(t)

	stats, err := b.Statistics()
	if err != nil {
		t.Fatalf("Statistics() error = %v", err)
	}

	if stats.TotalEntities != 3 {
		t.Errorf("TotalEntities = %d, want 3", stats.TotalEntities)
	}
	if stats.CustomEntities != 3 {
		t.Errorf("CustomEntities = %d, want 3", stats.CustomEntities)
	}
	if stats.TotalRelations != 3 {
		t.Errorf("TotalRelations = %d, want 3", stats.TotalRelations)
	}
	if stats.GraphNodes != 3 {
		t.Errorf("GraphNodes = %d, want 3", stats.GraphNodes)
	}
	if stats.GraphEdges != 2 {
		t.Errorf("GraphEdges = %d, want 2", stats.GraphEdges)
	}
	if stats.RelationTypes != 3 {
		t.Errorf("RelationTypes = %d, want 3", stats.RelationTypes)
	}
	// Four degree endpoints over three nodes.
	if want := 4.0 / 3.0; stats.AvgDegree != want {
		t.Errorf("AvgDegree = %f, want %f", stats.AvgDegree, want)
	}
	// Edge count never exceeds distinct ordered pairs with relations.
	if stats.GraphEdges > stats.TotalRelations {
		t.Errorf("GraphEdges = %d exceeds TotalRelations = %d", stats.GraphEdges, stats.TotalRelations)
	}
}
