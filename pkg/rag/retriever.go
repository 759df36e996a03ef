package rag

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/zhiwen/backend/pkg/ai"
	"github.com/zhiwen/backend/pkg/logger"
)

// queryInstruction is the BGE-style retrieval prefix. It is prepended to
// queries only, never to indexed passages.
const queryInstruction = "为这个句子生成表示以用于检索相关文章："

const (
	defaultEmbedBatchSize = 32
	defaultEmbedParallel  = 4
	scoreTypeCosine       = "cosine_similarity"
	retrievalMethodLabel  = "Semantic Search (Cosine Similarity)"
)

// Retriever answers semantic queries over a fixed chunk index. All chunk
// embeddings are computed once at construction and normalized, so cosine
// similarity reduces to a dot product at query time.
type Retriever struct {
	client ai.Client
	chunks []Chunk

	embeddings [][]float32
	dimension  int
}

type NewRetrieverParams struct {
	Client ai.Client
	Chunks []Chunk

	// BatchSize bounds how many chunks go into a single embedding
	// request; Parallel bounds how many requests run at once.
	BatchSize int
	Parallel  int
}

// RetrieverStats describes the index for diagnostics endpoints.
type RetrieverStats struct {
	EmbeddingDimension int    `json:"embedding_dimension"`
	TotalChunks        int    `json:"total_chunks"`
	RetrievalMethod    string `json:"retrieval_method"`
}

// NewRetriever embeds every chunk and builds the in-memory index.
func NewRetriever(ctx context.Context, params NewRetrieverParams) (*Retriever, error) {
	if params.Client == nil {
		return nil, fmt.Errorf("rag: retriever requires an ai client")
	}

	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultEmbedBatchSize
	}
	parallel := params.Parallel
	if parallel <= 0 {
		parallel = defaultEmbedParallel
	}

	r := &Retriever{
		client: params.Client,
		chunks: params.Chunks,
	}
	if len(params.Chunks) == 0 {
		return r, nil
	}

	logger.Info("[RAG] Embedding chunks", "chunks", len(params.Chunks), "batch_size", batchSize)

	r.embeddings = make([][]float32, len(params.Chunks))
	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(parallel)

	for start := 0; start < len(params.Chunks); start += batchSize {
		end := min(start+batchSize, len(params.Chunks))
		offset := start
		batch := params.Chunks[start:end]
		eg.Go(func() error {
			inputs := make([][]byte, len(batch))
			for i, chunk := range batch {
				inputs[i] = []byte(chunk.Content)
			}
			vectors, err := r.client.GenerateEmbeddings(ectx, inputs)
			if err != nil {
				return fmt.Errorf("rag: embed chunks %d-%d: %w", offset, offset+len(batch)-1, err)
			}
			if len(vectors) != len(batch) {
				return fmt.Errorf("rag: embedding count mismatch: got %d want %d", len(vectors), len(batch))
			}
			for i, vec := range vectors {
				r.embeddings[offset+i] = normalize(vec)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	r.dimension = len(r.embeddings[0])
	logger.Info("[RAG] Chunk index ready", "chunks", len(r.chunks), "dimension", r.dimension)
	return r, nil
}

// Retrieve returns the topK most similar chunks for the query, sorted by
// descending score. With withDetails set, each result carries a score
// breakdown.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int, withDetails bool) ([]ScoredChunk, error) {
	if len(r.chunks) == 0 || topK <= 0 {
		return []ScoredChunk{}, nil
	}

	queryVec, err := r.client.GenerateEmbedding(ctx, []byte(queryInstruction+query))
	if err != nil {
		return nil, fmt.Errorf("rag: embed query: %w", err)
	}
	queryVec = normalize(queryVec)

	type scored struct {
		index int
		score float64
	}
	scores := make([]scored, len(r.chunks))
	for i, emb := range r.embeddings {
		scores[i] = scored{index: i, score: dot(queryVec, emb)}
	}
	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].score > scores[b].score
	})

	if topK > len(scores) {
		topK = len(scores)
	}
	results := make([]ScoredChunk, 0, topK)
	for _, s := range scores[:topK] {
		result := ScoredChunk{
			Chunk: r.chunks[s.index],
			Score: s.score,
		}
		if withDetails {
			result.ScoreDetails = &ScoreDetails{
				Score:      s.score,
				ScoreType:  scoreTypeCosine,
				ScoreRange: "[0, 1]",
				Explanation: fmt.Sprintf(
					"语义相似度: %.4f，分数越接近1表示语义越相关", s.score,
				),
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// Statistics describes the chunk index.
func (r *Retriever) Statistics() RetrieverStats {
	return RetrieverStats{
		EmbeddingDimension: r.dimension,
		TotalChunks:        len(r.chunks),
		RetrievalMethod:    retrievalMethodLabel,
	}
}

func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	norm := float32(math.Sqrt(sum))
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = v / norm
	}
	return out
}

func dot(a, b []float32) float64 {
	n := min(len(a), len(b))
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
