package rag

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/zhiwen/backend/pkg/ai"
	"github.com/zhiwen/backend/pkg/logger"
)

const rerankPreviewRunes = 200

// Reranker reorders retrieval results by asking the chat model to judge
// relevance. Failures fall back to the original retrieval order.
type Reranker struct {
	client ai.Client
}

type NewRerankerParams struct {
	Client ai.Client
}

func NewReranker(params NewRerankerParams) *Reranker {
	return &Reranker{client: params.Client}
}

// Rerank returns the topK results in model-judged relevance order. When
// the candidate set already fits in topK the model is not consulted.
func (r *Reranker) Rerank(ctx context.Context, query string, results []ScoredChunk, topK int) []ScoredChunk {
	if len(results) <= topK {
		return results
	}

	prompt := buildRerankPrompt(query, results)
	response, err := r.client.GenerateCompletion(ctx, prompt, ai.WithTemperature(0.0))
	if err != nil {
		logger.Warn("[RAG] Rerank failed, keeping retrieval order", "error", err)
		return results[:topK]
	}

	indices := parseRerankResponse(response, len(results))
	reranked := make([]ScoredChunk, 0, topK)
	for _, idx := range indices {
		if len(reranked) == topK {
			break
		}
		reranked = append(reranked, results[idx])
	}
	return reranked
}

func buildRerankPrompt(query string, results []ScoredChunk) string {
	var documentList strings.Builder
	for i, chunk := range results {
		preview := chunk.Content
		if runes := []rune(preview); len(runes) > rerankPreviewRunes {
			preview = string(runes[:rerankPreviewRunes]) + "..."
		}
		fmt.Fprintf(&documentList, "%d. %s\n", i, preview)
	}

	return fmt.Sprintf(`请根据与以下查询的相关性，对提供的文档块进行排序。
只返回排序后的索引（从0开始），用逗号分隔，不添加任何解释。

查询: %s

文档块:
%s
排序后的索引（从最相关到最不相关）:`, query, documentList.String())
}

// parseRerankResponse extracts valid, comma-separated indices from the
// model output. Indices the model skipped are appended in their original
// order so every candidate stays reachable.
func parseRerankResponse(response string, maxIndex int) []int {
	var indices []int
	seen := make(map[int]struct{})
	for _, part := range strings.Split(response, ",") {
		idx, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if idx < 0 || idx >= maxIndex {
			continue
		}
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		indices = append(indices, idx)
	}

	for i := 0; i < maxIndex; i++ {
		if _, ok := seen[i]; !ok {
			indices = append(indices, i)
		}
	}
	return indices
}
