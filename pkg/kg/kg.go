// Package kg builds a knowledge graph from a corpus of Chinese free-text
// documents. Entities are recognized through a custom domain dictionary and
// part-of-speech tagging, relations through an ordered list of pattern rules
// with a sentence co-occurrence fallback, and the results are merged into a
// weighted, directed, attributed graph supporting frequency ranking,
// neighbor lookup, statistics and a bounded-size projection for rendering.
package kg

import (
	"errors"
	"fmt"
)

// State tracks the lifecycle of a Builder. A fresh builder is empty;
// extracting a corpus makes it extracted; assembling the graph makes it
// built. Queries are only valid once the builder is built. There is no
// backward transition; a new corpus requires a new builder.
type State int

const (
	StateEmpty State = iota
	StateExtracted
	StateBuilt
)

// NodeType distinguishes entities that came from the custom dictionary
// from entities recognized by part-of-speech tagging.
type NodeType string

const (
	NodeTypeCustom NodeType = "custom"
	NodeTypeEntity NodeType = "entity"
)

// Document is a single corpus record supplied by the ingestion layer.
type Document struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// RawRelation is a single relation instance as emitted by extraction,
// before deduplication. The same (Entity1, Label, Entity2) triple may be
// emitted many times with different contexts.
type RawRelation struct {
	Entity1 string `json:"entity1"`
	Label   string `json:"label"`
	Entity2 string `json:"entity2"`
	Context string `json:"context"`
}

// Triple is the deduplication key for merged relations.
type Triple struct {
	Entity1 string `json:"entity1"`
	Label   string `json:"label"`
	Entity2 string `json:"entity2"`
}

// Node is a graph node. Only entities that are an endpoint of at least one
// accepted relation triple become nodes; entities without relations stay in
// the frequency table but never enter the graph.
type Node struct {
	Name      string   `json:"name"`
	Frequency int      `json:"frequency"`
	Type      NodeType `json:"type"`
}

// Edge is a directed, aggregated connection between two entities. Edges are
// keyed by the ordered (Source, Target) pair only; Weight counts the
// distinct relation triples merged into the edge, not raw instances, so
// Relations may hold several labels.
type Edge struct {
	Source    string   `json:"source"`
	Target    string   `json:"target"`
	Weight    int      `json:"weight"`
	Relations []string `json:"relations"`
	Contexts  []string `json:"contexts"`
}

// EntityCount pairs an entity with its corpus-wide frequency.
type EntityCount struct {
	Entity    string `json:"entity"`
	Frequency int    `json:"frequency"`
}

// NeighborEdge describes one edge adjacent to a queried entity. Relation is
// the edge's first label even when the edge aggregates several labels.
type NeighborEdge struct {
	Entity   string `json:"entity"`
	Relation string `json:"relation"`
	Weight   int    `json:"weight"`
}

// Neighbors lists the outgoing and incoming edges of an entity.
type Neighbors struct {
	Entity   string         `json:"entity"`
	Outgoing []NeighborEdge `json:"outgoing"`
	Incoming []NeighborEdge `json:"incoming"`
}

// Statistics summarizes a built graph.
type Statistics struct {
	TotalEntities  int           `json:"total_entities"`
	CustomEntities int           `json:"custom_entities"`
	TotalRelations int           `json:"total_relations"`
	GraphNodes     int           `json:"graph_nodes"`
	GraphEdges     int           `json:"graph_edges"`
	TopEntities    []EntityCount `json:"top_entities"`
	RelationTypes  int           `json:"relation_types"`
	AvgDegree      float64       `json:"avg_degree"`
}

// ErrNotBuilt is returned when a query is issued before the graph has been
// assembled.
var ErrNotBuilt = errors.New("kg: graph not built")

// EntityNotFoundError is returned by Neighbors when the requested entity is
// not a node of the graph. It is a recoverable, caller-visible condition.
type EntityNotFoundError struct {
	Name string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("kg: entity %q is not in the graph", e.Name)
}
