package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/zhiwen/backend/pkg/ai"
	"github.com/zhiwen/backend/pkg/kg"
	"github.com/zhiwen/backend/pkg/logger"
	"github.com/zhiwen/backend/pkg/textproc"
)

const (
	defaultTopK       = 5
	defaultRerankTopK = 3
)

// QueryResult is the full outcome of one question: the chunks the answer
// was grounded on and optional follow-up suggestions.
type QueryResult struct {
	Query             string        `json:"query"`
	RetrievedChunks   []ScoredChunk `json:"retrieved_chunks"`
	Answer            string        `json:"answer"`
	FollowupQuestions []string      `json:"followup_questions,omitempty"`
	ProcessingTime    float64       `json:"processing_time"`
	FromCache         bool          `json:"from_cache,omitempty"`
}

// SystemStats summarizes the question answering pipeline state.
type SystemStats struct {
	Documents     int             `json:"documents"`
	Chunks        int             `json:"chunks"`
	CachedQueries int             `json:"cached_queries"`
	Retriever     RetrieverStats  `json:"retriever"`
	Model         ai.ModelMetrics `json:"model_metrics"`
}

// System wires retrieval, reranking and generation into one ask path.
type System struct {
	client    ai.Client
	retriever *Retriever
	reranker  *Reranker
	generator *Generator
	cache     *QueryCache

	documents  int
	topK       int
	rerankTopK int
}

type NewSystemParams struct {
	Client    ai.Client
	Processor *textproc.Processor
	Documents []kg.Document
	Cache     *QueryCache

	TopK       int
	RerankTopK int

	Generator NewGeneratorParams
}

// NewSystem chunks the corpus, embeds it and prepares the pipeline.
func NewSystem(ctx context.Context, params NewSystemParams) (*System, error) {
	if params.Client == nil {
		return nil, fmt.Errorf("rag: system requires an ai client")
	}
	if params.Processor == nil {
		return nil, fmt.Errorf("rag: system requires a text processor")
	}

	chunks, err := ChunkDocuments(params.Processor, params.Documents)
	if err != nil {
		return nil, fmt.Errorf("rag: chunk documents: %w", err)
	}
	logger.Info("[RAG] Corpus chunked", "documents", len(params.Documents), "chunks", len(chunks))

	retriever, err := NewRetriever(ctx, NewRetrieverParams{
		Client: params.Client,
		Chunks: chunks,
	})
	if err != nil {
		return nil, err
	}

	generatorParams := params.Generator
	generatorParams.Client = params.Client

	topK := params.TopK
	if topK <= 0 {
		topK = defaultTopK
	}
	rerankTopK := params.RerankTopK
	if rerankTopK <= 0 {
		rerankTopK = defaultRerankTopK
	}

	return &System{
		client:     params.Client,
		retriever:  retriever,
		reranker:   NewReranker(NewRerankerParams{Client: params.Client}),
		generator:  NewGenerator(generatorParams),
		cache:      params.Cache,
		documents:  len(params.Documents),
		topK:       topK,
		rerankTopK: rerankTopK,
	}, nil
}

// AskOptions tweak a single query.
type AskOptions struct {
	TopK              int
	CustomInstruction string
	EnableFollowup    bool
	ShowScoreDetails  bool
	SkipCache         bool
}

// Ask runs the full pipeline for one question: retrieve, rerank,
// generate. Cached answers are returned as-is with FromCache set.
func (s *System) Ask(ctx context.Context, query string, opts AskOptions) (*QueryResult, error) {
	if !opts.SkipCache && s.cache != nil {
		if cached := s.cache.Get(query); cached != nil {
			logger.Info("[RAG] Cache hit", "query", query)
			copied := *cached
			copied.FromCache = true
			return &copied, nil
		}
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = s.topK
	}

	start := time.Now()

	retrieved, err := s.retriever.Retrieve(ctx, query, topK, opts.ShowScoreDetails)
	if err != nil {
		return nil, err
	}

	if len(retrieved) == 0 {
		result := &QueryResult{
			Query:           query,
			RetrievedChunks: []ScoredChunk{},
			Answer:          s.generator.NoContextResponse(query),
			ProcessingTime:  time.Since(start).Seconds(),
		}
		if s.cache != nil {
			s.cache.Set(query, result)
		}
		return result, nil
	}

	reranked := s.reranker.Rerank(ctx, query, retrieved, s.rerankTopK)

	answer, err := s.generator.Generate(ctx, query, reranked, opts.CustomInstruction)
	if err != nil {
		return nil, err
	}

	var followups []string
	if opts.EnableFollowup {
		followups = s.generator.GenerateFollowupQuestions(ctx, query, reranked, answer)
	}

	result := &QueryResult{
		Query:             query,
		RetrievedChunks:   reranked,
		Answer:            answer,
		FollowupQuestions: followups,
		ProcessingTime:    time.Since(start).Seconds(),
	}
	if s.cache != nil {
		s.cache.Set(query, result)
	}

	logger.Info("[RAG] Query answered",
		"query", query,
		"chunks", len(reranked),
		"duration_s", result.ProcessingTime,
	)
	return result, nil
}

// ClearCache drops all cached query results.
func (s *System) ClearCache() {
	if s.cache != nil {
		s.cache.Clear()
	}
}

// CacheSize returns the number of cached queries.
func (s *System) CacheSize() int {
	if s.cache == nil {
		return 0
	}
	return s.cache.Size()
}

// Stats reports pipeline-wide statistics.
func (s *System) Stats() SystemStats {
	return SystemStats{
		Documents:     s.documents,
		Chunks:        len(s.retriever.chunks),
		CachedQueries: s.CacheSize(),
		Retriever:     s.retriever.Statistics(),
		Model:         s.client.GetMetrics(),
	}
}
