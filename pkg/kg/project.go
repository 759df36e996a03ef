package kg

// Visual encoding cut points. Normalized frequency below the low cutoff is
// a low-frequency node, below the high cutoff a mid-frequency node, and
// anything above a high-frequency node. Custom dictionary entities use
// their own cutoff against the selection's maximum frequency.
const (
	lowFrequencyCutoff    = 0.33
	highFrequencyCutoff   = 0.67
	customHighFreqCutoff  = 0.7
	baseNodeSizeCustom    = 15.0
	baseNodeSizeEntity    = 10.0
	nodeSizeFrequencySpan = 35.0
	maxContextSamples     = 3
)

// Node colors per frequency bucket.
const (
	colorCustomHigh = "#8e44ad"
	colorCustomLow  = "#9b59b6"
	colorLowFreq    = "#3498db"
	colorMidFreq    = "#f39c12"
	colorHighFreq   = "#e74c3c"
)

// ProjectedNode is a graph node prepared for rendering, with size and color
// computed from its frequency relative to the projected selection.
type ProjectedNode struct {
	ID        string   `json:"id"`
	Frequency int      `json:"frequency"`
	Type      NodeType `json:"type"`
	Size      float64  `json:"size"`
	Color     string   `json:"color"`
}

// ProjectedEdge is a graph edge prepared for rendering. Contexts holds at
// most a few samples of the merged context snippets.
type ProjectedEdge struct {
	Source    string   `json:"source"`
	Target    string   `json:"target"`
	Weight    int      `json:"weight"`
	Relations []string `json:"relations"`
	Contexts  []string `json:"contexts"`
}

// Projection is the bounded-size subgraph payload consumed by the external
// rendering component. It is an ephemeral derivative; producing one does
// not mutate the built graph.
type Projection struct {
	DisplayCount  int             `json:"display_count"`
	TotalEntities int             `json:"total_entities"`
	Nodes         []ProjectedNode `json:"nodes"`
	Edges         []ProjectedEdge `json:"edges"`
}

// Project selects the floor(percent * totalEntities / 100) highest-frequency
// entities (same tie rule as TopEntities) and induces the subgraph
// restricted to exactly those nodes: edges with an endpoint outside the
// selection are dropped, not rewired. Size and color encoding is computed
// from the min/max frequency within the selected subgraph only, recomputed
// on every call.
func (b *Builder) Project(percent int) (*Projection, error) {
	if b.state != StateBuilt {
		return nil, ErrNotBuilt
	}

	totalEntities := len(b.entities)
	displayCount := percent * totalEntities / 100

	selected := make(map[string]struct{}, displayCount)
	for _, ec := range b.TopEntities(displayCount) {
		selected[ec.Entity] = struct{}{}
	}

	projection := &Projection{
		DisplayCount:  displayCount,
		TotalEntities: totalEntities,
		Nodes:         []ProjectedNode{},
		Edges:         []ProjectedEdge{},
	}

	minFreq, maxFreq := 0, 0
	first := true
	for name := range selected {
		node, ok := b.nodes[name]
		if !ok {
			continue
		}
		if first || node.Frequency < minFreq {
			minFreq = node.Frequency
		}
		if first || node.Frequency > maxFreq {
			maxFreq = node.Frequency
		}
		first = false
	}
	if maxFreq < 1 {
		maxFreq = 1
	}

	for _, ec := range b.TopEntities(displayCount) {
		node, ok := b.nodes[ec.Entity]
		if !ok {
			continue
		}
		projection.Nodes = append(projection.Nodes, ProjectedNode{
			ID:        node.Name,
			Frequency: node.Frequency,
			Type:      node.Type,
			Size:      nodeSize(node, maxFreq),
			Color:     nodeColor(node, minFreq, maxFreq),
		})
	}

	for _, pair := range b.edgeOrder {
		if _, ok := selected[pair[0]]; !ok {
			continue
		}
		if _, ok := selected[pair[1]]; !ok {
			continue
		}
		edge := b.edges[pair]
		contexts := edge.Contexts
		if len(contexts) > maxContextSamples {
			contexts = contexts[:maxContextSamples]
		}
		projection.Edges = append(projection.Edges, ProjectedEdge{
			Source:    edge.Source,
			Target:    edge.Target,
			Weight:    edge.Weight,
			Relations: append([]string(nil), edge.Relations...),
			Contexts:  append([]string(nil), contexts...),
		})
	}

	return projection, nil
}

func nodeSize(node Node, maxFreq int) float64 {
	base := baseNodeSizeEntity
	if node.Type == NodeTypeCustom {
		base = baseNodeSizeCustom
	}
	return base + float64(node.Frequency)/float64(maxFreq)*nodeSizeFrequencySpan
}

func nodeColor(node Node, minFreq, maxFreq int) string {
	if node.Type == NodeTypeCustom {
		if float64(node.Frequency)/float64(maxFreq) > customHighFreqCutoff {
			return colorCustomHigh
		}
		return colorCustomLow
	}

	normalized := 0.5
	if maxFreq != minFreq {
		normalized = float64(node.Frequency-minFreq) / float64(maxFreq-minFreq)
	}

	switch {
	case normalized < lowFrequencyCutoff:
		return colorLowFreq
	case normalized < highFrequencyCutoff:
		return colorMidFreq
	default:
		return colorHighFreq
	}
}
