package kg

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/zhiwen/backend/pkg/logger"
	"github.com/zhiwen/backend/pkg/tokenizer"

	"golang.org/x/sync/errgroup"
)

const defaultParallelDocs = 4

// Builder owns all state accumulated during a corpus pass: the custom
// dictionary, the entity set, the corpus-wide frequency table, the merged
// relation triples and the assembled graph. It is not safe for concurrent
// use by multiple goroutines; a build is a single batch computation.
type Builder struct {
	segmenter    tokenizer.Segmenter
	customWords  map[string]struct{}
	rules        []compiledRule
	parallelDocs int

	state     State
	entities  map[string]struct{}
	frequency map[string]int

	// Distinct relation triples in first-seen order, with the contexts
	// accumulated from every raw instance sharing the triple key.
	tripleOrder    []Triple
	tripleContexts map[Triple][]string

	nodes     map[string]Node
	edges     map[[2]string]*Edge
	edgeOrder [][2]string
}

// NewBuilderParams contains configuration for creating a Builder.
//
// Segmenter is the part-of-speech tagging capability and is required.
// CustomWords is the domain dictionary; its terms take priority over
// generic entity recognition. Rules defaults to DefaultRules() when nil.
// ParallelDocs bounds per-document extraction parallelism.
type NewBuilderParams struct {
	Segmenter    tokenizer.Segmenter
	CustomWords  []string
	Rules        []Rule
	ParallelDocs int
}

// NewBuilder creates an empty Builder. Malformed pattern rules make the
// construction fail.
func NewBuilder(params NewBuilderParams) (*Builder, error) {
	if params.Segmenter == nil {
		return nil, fmt.Errorf("kg: segmenter is required")
	}

	rules := params.Rules
	if rules == nil {
		rules = DefaultRules()
	}
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, fmt.Errorf("kg: invalid rule set: %w", err)
	}

	parallel := params.ParallelDocs
	if parallel <= 0 {
		parallel = defaultParallelDocs
	}

	customWords := make(map[string]struct{}, len(params.CustomWords))
	for _, w := range params.CustomWords {
		if w != "" {
			customWords[w] = struct{}{}
		}
	}

	return &Builder{
		segmenter:      params.Segmenter,
		customWords:    customWords,
		rules:          compiled,
		parallelDocs:   parallel,
		state:          StateEmpty,
		entities:       make(map[string]struct{}),
		frequency:      make(map[string]int),
		tripleContexts: make(map[Triple][]string),
		nodes:          make(map[string]Node),
		edges:          make(map[[2]string]*Edge),
	}, nil
}

// State returns the builder's lifecycle state.
func (b *Builder) State() State {
	return b.state
}

// ExtractDocuments runs the entity pass and then the relation pass over the
// whole corpus, moving the builder to the extracted state. Entity
// frequencies accumulate additively across documents and across calls; they
// are never reset. The relation pass is parallelized per document, since
// documents have no cross-document dependency.
func (b *Builder) ExtractDocuments(ctx context.Context, docs []Document) error {
	logger.Info("[KG] Extracting entities", "documents", len(docs))

	for _, doc := range docs {
		mentions := b.ExtractEntities(doc.Content)
		for _, m := range mentions {
			b.entities[m] = struct{}{}
		}
	}

	logger.Info("[KG] Entities extracted", "unique_entities", len(b.entities))
	logger.Info("[KG] Extracting relations")

	known := b.knownEntities()

	perDoc := make([][]RawRelation, len(docs))
	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(b.parallelDocs)
	for i := range docs {
		idx := i
		content := docs[i].Content
		eg.Go(func() error {
			select {
			case <-gCtx.Done():
				return gCtx.Err()
			default:
			}
			docEntities := make([]string, 0)
			for _, e := range known {
				if strings.Contains(content, e) {
					docEntities = append(docEntities, e)
				}
			}
			perDoc[idx] = b.ExtractRelations(content, docEntities)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return fmt.Errorf("kg: relation extraction failed: %w", err)
	}

	total := 0
	for _, raws := range perDoc {
		for _, raw := range raws {
			b.addRawRelation(raw)
			total++
		}
	}

	logger.Info("[KG] Relations extracted",
		"raw_instances", total,
		"unique_triples", len(b.tripleOrder),
	)

	b.state = StateExtracted
	return nil
}

// BuildFromDocuments is the full corpus pass: extraction followed by graph
// assembly. A zero-document corpus yields a valid, empty built graph.
func (b *Builder) BuildFromDocuments(ctx context.Context, docs []Document) error {
	if err := b.ExtractDocuments(ctx, docs); err != nil {
		return err
	}
	return b.BuildGraph()
}

// addRawRelation folds a raw instance into its triple key. Structurally
// identical triples from any number of documents share one key; only their
// contexts accumulate.
func (b *Builder) addRawRelation(raw RawRelation) {
	key := Triple{Entity1: raw.Entity1, Label: raw.Label, Entity2: raw.Entity2}
	if _, seen := b.tripleContexts[key]; !seen {
		b.tripleOrder = append(b.tripleOrder, key)
	}
	b.tripleContexts[key] = append(b.tripleContexts[key], raw.Context)
}

// knownEntities returns the entity set in a stable lexicographic order.
// The co-occurrence fallback pairs entities in this iteration order, which
// deliberately does not track textual appearance order.
func (b *Builder) knownEntities() []string {
	known := make([]string, 0, len(b.entities))
	for e := range b.entities {
		known = append(known, e)
	}
	sort.Strings(known)
	return known
}

func (b *Builder) isCustomWord(entity string) bool {
	_, ok := b.customWords[entity]
	return ok
}
