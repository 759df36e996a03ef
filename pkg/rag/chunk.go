// Package rag implements the retrieval-augmented question answering
// pipeline: chunk embedding, semantic retrieval, model-based reranking
// and grounded answer generation.
package rag

import (
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/zhiwen/backend/pkg/kg"
	"github.com/zhiwen/backend/pkg/textproc"
)

// Chunk is one retrievable slice of a source document.
type Chunk struct {
	ID          string `json:"chunk_id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	ChunkIndex  int    `json:"chunk_index"`
	TotalChunks int    `json:"total_chunks"`
}

// ScoreDetails explains how a retrieval score was computed.
type ScoreDetails struct {
	Score       float64 `json:"score"`
	ScoreType   string  `json:"score_type"`
	ScoreRange  string  `json:"score_range"`
	Explanation string  `json:"explanation"`
}

// ScoredChunk is a chunk paired with its retrieval relevance.
type ScoredChunk struct {
	Chunk
	Score        float64       `json:"score"`
	ScoreDetails *ScoreDetails `json:"score_details,omitempty"`
}

// ChunkDocuments splits every document into chunks, assigning each one a
// random ID and its position within the source document.
func ChunkDocuments(processor *textproc.Processor, docs []kg.Document) ([]Chunk, error) {
	var chunks []Chunk
	for _, doc := range docs {
		parts := processor.SplitIntoChunks(doc.Content)
		for i, content := range parts {
			id, err := gonanoid.New()
			if err != nil {
				return nil, err
			}
			chunks = append(chunks, Chunk{
				ID:          id,
				Title:       doc.Title,
				Content:     content,
				ChunkIndex:  i,
				TotalChunks: len(parts),
			})
		}
	}
	return chunks, nil
}
