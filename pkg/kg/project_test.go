package kg

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestProjectRequiresBuiltGraph(t *testing.T) {
	b := newTestBuilder(t, []string{"甲"}, nil)
	if _, err := b.Project(100); !errors.Is(err, ErrNotBuilt) {
		t.Fatalf("Project() error = %v, want ErrNotBuilt", err)
	}
}

func TestProjectFullGraph(t *testing.T) {
	b := builtTestGraph(t)

	p, err := b.Project(100)
	if err != nil {
		t.Fatalf("Project(100) error = %v", err)
	}

	if p.DisplayCount != 3 || p.TotalEntities != 3 {
		t.Fatalf("counts = (%d, %d), want (3, 3)", p.DisplayCount, p.TotalEntities)
	}

	// Selection min/max frequency is 1..3, so both frequency-3 custom nodes
	// sit above the custom cutoff and 丁 stays below it.
	wantNodes := []ProjectedNode{
		{ID: "乙", Frequency: 3, Type: NodeTypeCustom, Size: 50, Color: "#8e44ad"},
		{ID: "甲", Frequency: 3, Type: NodeTypeCustom, Size: 50, Color: "#8e44ad"},
		{ID: "丁", Frequency: 1, Type: NodeTypeCustom, Size: 15 + float64(1)/float64(3)*35, Color: "#9b59b6"},
	}
	if !reflect.DeepEqual(p.Nodes, wantNodes) {
		t.Errorf("Nodes = %+v, want %+v", p.Nodes, wantNodes)
	}

	wantEdges := []ProjectedEdge{
		{
			Source:    "甲",
			Target:    "乙",
			Weight:    2,
			Relations: []string{"帮助", "保护"},
			Contexts:  []string{"甲帮助乙", "甲保护乙"},
		},
		{
			Source:    "乙",
			Target:    "丁",
			Weight:    1,
			Relations: []string{"跟随"},
			Contexts:  []string{"乙跟随丁"},
		},
	}
	if !reflect.DeepEqual(p.Edges, wantEdges) {
		t.Errorf("Edges = %+v, want %+v", p.Edges, wantEdges)
	}
}

func TestProjectDropsBoundaryEdges(t *testing.T) {
	b := builtTestGraph(t)

	// 34% of 3 entities floors to a single node, so every edge loses an
	// endpoint and is dropped rather than rewired.
	p, err := b.Project(34)
	if err != nil {
		t.Fatalf("Project(34) error = %v", err)
	}
	if p.DisplayCount != 1 {
		t.Fatalf("DisplayCount = %d, want 1", p.DisplayCount)
	}
	if len(p.Nodes) != 1 || p.Nodes[0].ID != "乙" {
		t.Errorf("Nodes = %+v, want only 乙", p.Nodes)
	}
	if len(p.Edges) != 0 {
		t.Errorf("Edges = %+v, want none", p.Edges)
	}
}

func TestProjectFloorsDisplayCount(t *testing.T) {
	b := builtTestGraph(t)

	p, err := b.Project(33)
	if err != nil {
		t.Fatalf("Project(33) error = %v", err)
	}
	if p.DisplayCount != 0 {
		t.Errorf("DisplayCount = %d, want 0", p.DisplayCount)
	}
	if len(p.Nodes) != 0 || len(p.Edges) != 0 {
		t.Errorf("projection = %+v, want empty nodes and edges", p)
	}
	if p.Nodes == nil || p.Edges == nil {
		t.Error("empty projection slices should be non-nil")
	}
}

func TestProjectSamplesEdgeContexts(t *testing.T) {
	// Four label-distinct triples on the same ordered pair merge into one
	// edge carrying four contexts; the projection keeps the first three.
	docs := []Document{
		{Title: "a", Content: "甲帮助乙"},
		{Title: "b", Content: "甲保护乙"},
		{Title: "c", Content: "甲教导乙"},
		{Title: "d", Content: "甲认识乙"},
	}
	b := newTestBuilder(t, []string{"甲", "乙"}, nil)
	if err := b.BuildFromDocuments(context.Background(), docs); err != nil {
		t.Fatalf("BuildFromDocuments() error = %v", err)
	}

	p, err := b.Project(100)
	if err != nil {
		t.Fatalf("Project(100) error = %v", err)
	}
	if len(p.Edges) != 1 {
		t.Fatalf("len(Edges) = %d, want 1", len(p.Edges))
	}
	edge := p.Edges[0]
	if edge.Weight != 4 {
		t.Errorf("Weight = %d, want 4", edge.Weight)
	}
	wantContexts := []string{"甲帮助乙", "甲保护乙", "甲教导乙"}
	if !reflect.DeepEqual(edge.Contexts, wantContexts) {
		t.Errorf("Contexts = %v, want %v", edge.Contexts, wantContexts)
	}
}

func TestNodeColor(t *testing.T) {
	tests := []struct {
		name    string
		node    Node
		minFreq int
		maxFreq int
		want    string
	}{
		{
			name:    "custom above cutoff",
			node:    Node{Frequency: 8, Type: NodeTypeCustom},
			minFreq: 1, maxFreq: 10,
			want: "#8e44ad",
		},
		{
			name:    "custom below cutoff",
			node:    Node{Frequency: 7, Type: NodeTypeCustom},
			minFreq: 1, maxFreq: 10,
			want: "#9b59b6",
		},
		{
			name:    "entity low frequency",
			node:    Node{Frequency: 2, Type: NodeTypeEntity},
			minFreq: 1, maxFreq: 10,
			want: "#3498db",
		},
		{
			name:    "entity mid frequency",
			node:    Node{Frequency: 6, Type: NodeTypeEntity},
			minFreq: 1, maxFreq: 10,
			want: "#f39c12",
		},
		{
			name:    "entity high frequency",
			node:    Node{Frequency: 10, Type: NodeTypeEntity},
			minFreq: 1, maxFreq: 10,
			want: "#e74c3c",
		},
		{
			name:    "uniform frequency maps to mid",
			node:    Node{Frequency: 4, Type: NodeTypeEntity},
			minFreq: 4, maxFreq: 4,
			want: "#f39c12",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nodeColor(tt.node, tt.minFreq, tt.maxFreq); got != tt.want {
				t.Errorf("nodeColor() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNodeSize(t *testing.T) {
	custom := Node{Frequency: 3, Type: NodeTypeCustom}
	if got := nodeSize(custom, 3); got != 50 {
		t.Errorf("custom nodeSize() = %v, want 50", got)
	}
	entity := Node{Frequency: 3, Type: NodeTypeEntity}
	if got := nodeSize(entity, 3); got != 45 {
		t.Errorf("entity nodeSize() = %v, want 45", got)
	}
}
