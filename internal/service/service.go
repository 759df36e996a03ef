// Package service owns the long-lived application state: the loaded
// corpus, the knowledge graph builder and the question answering
// pipeline. HTTP handlers go through it instead of holding state of
// their own.
package service

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zhiwen/backend/pkg/ai"
	"github.com/zhiwen/backend/pkg/kg"
	"github.com/zhiwen/backend/pkg/loader"
	"github.com/zhiwen/backend/pkg/logger"
	"github.com/zhiwen/backend/pkg/rag"
	"github.com/zhiwen/backend/pkg/textproc"
	"github.com/zhiwen/backend/pkg/tokenizer"
)

var ErrNoDocuments = fmt.Errorf("service: no documents loaded, upload documents first")

// Config carries the tunables the service reads at startup.
type Config struct {
	ChunkSize    int
	ChunkOverlap int
	TopK         int
	RerankTopK   int
	Temperature  float64
	CachePath    string
}

// Service coordinates corpus loading, graph building and question
// answering behind one mutex. Uploading or deleting a document
// invalidates the QA pipeline so the next question re-embeds the
// corpus; the built graph survives until the next explicit build.
type Service struct {
	loader      *loader.DocumentLoader
	segmenter   tokenizer.Segmenter
	processor   *textproc.Processor
	aiClient    ai.Client
	customWords []string
	config      Config

	mu        sync.Mutex
	documents []kg.Document
	graph     *kg.Builder
	qa        *rag.System
	cache     *rag.QueryCache
}

type NewServiceParams struct {
	Loader      *loader.DocumentLoader
	Segmenter   tokenizer.Segmenter
	AiClient    ai.Client
	CustomWords []string
	Config      Config
}

func NewService(params NewServiceParams) (*Service, error) {
	if params.Loader == nil {
		return nil, fmt.Errorf("service: loader is required")
	}
	if params.Segmenter == nil {
		return nil, fmt.Errorf("service: segmenter is required")
	}

	cache, err := rag.NewQueryCache(rag.NewQueryCacheParams{Path: params.Config.CachePath})
	if err != nil {
		return nil, err
	}

	return &Service{
		loader:    params.Loader,
		segmenter: params.Segmenter,
		processor: textproc.NewProcessor(textproc.NewProcessorParams{
			ChunkSize:    params.Config.ChunkSize,
			ChunkOverlap: params.Config.ChunkOverlap,
			Segmenter:    params.Segmenter,
		}),
		aiClient:    params.AiClient,
		customWords: params.CustomWords,
		config:      params.Config,
		cache:       cache,
	}, nil
}

// Loader exposes the documents directory for the file management routes.
func (s *Service) Loader() *loader.DocumentLoader {
	return s.loader
}

// ReloadDocuments re-reads the corpus from disk and drops the QA
// pipeline so it is rebuilt against the fresh corpus on next use.
func (s *Service) ReloadDocuments(ctx context.Context) (int, error) {
	docs, err := s.loader.LoadAll(ctx)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.documents = docs
	s.qa = nil
	s.mu.Unlock()

	logger.Info("[Service] Corpus reloaded", "documents", len(docs))
	return len(docs), nil
}

// BuildGraph constructs a fresh knowledge graph over the current corpus
// and returns a projection limited to the given percentage of entities,
// together with the full-graph statistics.
func (s *Service) BuildGraph(ctx context.Context, percent int) (*kg.Projection, *kg.Statistics, error) {
	s.mu.Lock()
	docs := s.documents
	s.mu.Unlock()

	if len(docs) == 0 {
		return nil, nil, ErrNoDocuments
	}

	builder, err := kg.NewBuilder(kg.NewBuilderParams{
		Segmenter:   s.segmenter,
		CustomWords: s.customWords,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := builder.BuildFromDocuments(ctx, docs); err != nil {
		return nil, nil, err
	}

	projection, err := builder.Project(percent)
	if err != nil {
		return nil, nil, err
	}
	stats, err := builder.Statistics()
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	s.graph = builder
	s.mu.Unlock()

	return projection, stats, nil
}

// Graph returns the current graph builder, or nil when no graph has
// been built yet.
func (s *Service) Graph() *kg.Builder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph
}

// QA returns the question answering pipeline, building it on first use
// after a corpus change. Construction embeds every chunk, so this call
// can take a while on large corpora.
func (s *Service) QA(ctx context.Context) (*rag.System, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.documents) == 0 {
		return nil, ErrNoDocuments
	}
	if s.qa != nil {
		return s.qa, nil
	}

	system, err := rag.NewSystem(ctx, rag.NewSystemParams{
		Client:     s.aiClient,
		Processor:  s.processor,
		Documents:  s.documents,
		Cache:      s.cache,
		TopK:       s.config.TopK,
		RerankTopK: s.config.RerankTopK,
		Generator: rag.NewGeneratorParams{
			Temperature: s.config.Temperature,
		},
	})
	if err != nil {
		return nil, err
	}
	s.qa = system
	return system, nil
}

// QAIfReady returns the question answering pipeline only if it has
// already been built, without triggering the expensive first build.
func (s *Service) QAIfReady() *rag.System {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.qa
}

// DocumentCount reports the size of the loaded corpus.
func (s *Service) DocumentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.documents)
}

// DocumentTitles lists the titles of the loaded corpus.
func (s *Service) DocumentTitles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	titles := make([]string, 0, len(s.documents))
	for _, doc := range s.documents {
		titles = append(titles, doc.Title)
	}
	return titles
}

// CustomWordCount reports the size of the custom dictionary.
func (s *Service) CustomWordCount() int {
	return len(s.customWords)
}

// Cache exposes the query cache for the cache management routes.
func (s *Service) Cache() *rag.QueryCache {
	return s.cache
}

// Config returns the startup configuration.
func (s *Service) Config() Config {
	return s.config
}

// LoadCustomWords reads a dictionary file with one term per line.
// Blank lines and lines starting with # are skipped. A missing file is
// not an error; it just means an empty custom dictionary.
func LoadCustomWords(path string) ([]string, error) {
	f, err := os.Open(filepath.Clean(path))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("service: open custom words file: %w", err)
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		words = append(words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("service: read custom words file: %w", err)
	}
	return words, nil
}
