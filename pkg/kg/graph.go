package kg

import (
	"github.com/zhiwen/backend/pkg/logger"
)

// BuildGraph assembles the directed multigraph from the merged relation
// triples, moving the builder to the built state. For every distinct triple
// key, both endpoint entities become nodes (attributed with their current
// frequency and dictionary membership), and the ordered (entity1, entity2)
// pair gets an edge. An edge's weight counts the distinct triple keys
// merged into it: a triple seen in many documents raises the weight once,
// and only a label-distinct triple for the same pair raises it again.
func (b *Builder) BuildGraph() error {
	for _, key := range b.tripleOrder {
		b.ensureNode(key.Entity1)
		b.ensureNode(key.Entity2)

		pair := [2]string{key.Entity1, key.Entity2}
		contexts := b.tripleContexts[key]

		if edge, ok := b.edges[pair]; ok {
			edge.Weight++
			edge.Relations = append(edge.Relations, key.Label)
			edge.Contexts = append(edge.Contexts, contexts...)
			continue
		}

		b.edges[pair] = &Edge{
			Source:    key.Entity1,
			Target:    key.Entity2,
			Weight:    1,
			Relations: []string{key.Label},
			Contexts:  append([]string(nil), contexts...),
		}
		b.edgeOrder = append(b.edgeOrder, pair)
	}

	b.state = StateBuilt
	logger.Info("[KG] Graph built", "nodes", len(b.nodes), "edges", len(b.edges))
	return nil
}

func (b *Builder) ensureNode(entity string) {
	if _, ok := b.nodes[entity]; ok {
		return
	}
	nodeType := NodeTypeEntity
	if b.isCustomWord(entity) {
		nodeType = NodeTypeCustom
	}
	b.nodes[entity] = Node{
		Name:      entity,
		Frequency: b.frequency[entity],
		Type:      nodeType,
	}
}
