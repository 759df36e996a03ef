package kg

import (
	"sort"
)

// TopEntities returns the n highest-frequency entities. Ties are broken by
// the entity string in ascending lexicographic order, so repeated calls
// always return the same sequence. n of zero or less returns an empty
// slice. Entities without relations are included; frequency ranking is
// independent of graph membership.
func (b *Builder) TopEntities(n int) []EntityCount {
	if n <= 0 {
		return []EntityCount{}
	}

	counts := make([]EntityCount, 0, len(b.frequency))
	for entity, freq := range b.frequency {
		counts = append(counts, EntityCount{Entity: entity, Frequency: freq})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Frequency != counts[j].Frequency {
			return counts[i].Frequency > counts[j].Frequency
		}
		return counts[i].Entity < counts[j].Entity
	})

	if n > len(counts) {
		n = len(counts)
	}
	return counts[:n]
}

// Neighbors returns the outgoing and incoming edges of an entity. Each
// adjacent edge is reported with its weight and its first relation label
// only, even when the edge aggregates several labels. The error is
// ErrNotBuilt before graph assembly and an *EntityNotFoundError when the
// entity is not a node.
func (b *Builder) Neighbors(entity string) (*Neighbors, error) {
	if b.state != StateBuilt {
		return nil, ErrNotBuilt
	}
	if _, ok := b.nodes[entity]; !ok {
		return nil, &EntityNotFoundError{Name: entity}
	}

	result := &Neighbors{
		Entity:   entity,
		Outgoing: []NeighborEdge{},
		Incoming: []NeighborEdge{},
	}

	for _, pair := range b.edgeOrder {
		edge := b.edges[pair]
		if pair[0] == entity {
			result.Outgoing = append(result.Outgoing, NeighborEdge{
				Entity:   pair[1],
				Relation: edge.Relations[0],
				Weight:   edge.Weight,
			})
		}
		if pair[1] == entity {
			result.Incoming = append(result.Incoming, NeighborEdge{
				Entity:   pair[0],
				Relation: edge.Relations[0],
				Weight:   edge.Weight,
			})
		}
	}

	sort.Slice(result.Outgoing, func(i, j int) bool {
		return result.Outgoing[i].Entity < result.Outgoing[j].Entity
	})
	sort.Slice(result.Incoming, func(i, j int) bool {
		return result.Incoming[i].Entity < result.Incoming[j].Entity
	})

	return result, nil
}

// Statistics summarizes the built graph. A zero-document corpus yields
// zero-valued statistics, not an error.
func (b *Builder) Statistics() (*Statistics, error) {
	if b.state != StateBuilt {
		return nil, ErrNotBuilt
	}

	customCount := 0
	for e := range b.entities {
		if b.isCustomWord(e) {
			customCount++
		}
	}

	labels := make(map[string]struct{})
	for _, key := range b.tripleOrder {
		labels[key.Label] = struct{}{}
	}

	// Every edge contributes one out-degree and one in-degree.
	degreeSum := 2 * len(b.edges)
	nodeCount := len(b.nodes)
	avgDegree := float64(degreeSum) / float64(max(nodeCount, 1))

	return &Statistics{
		TotalEntities:  len(b.entities),
		CustomEntities: customCount,
		TotalRelations: len(b.tripleOrder),
		GraphNodes:     nodeCount,
		GraphEdges:     len(b.edges),
		TopEntities:    b.TopEntities(10),
		RelationTypes:  len(labels),
		AvgDegree:      avgDegree,
	}, nil
}
