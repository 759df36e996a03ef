package rag

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/zhiwen/backend/pkg/logger"
)

// QueryCache persists answered queries to a JSON file so repeated
// questions skip the whole pipeline. A corrupt cache file is discarded
// and rebuilt instead of failing startup.
type QueryCache struct {
	path string

	mu      sync.RWMutex
	entries map[string]*QueryResult
}

type NewQueryCacheParams struct {
	Path string
}

func NewQueryCache(params NewQueryCacheParams) (*QueryCache, error) {
	c := &QueryCache{
		path:    params.Path,
		entries: make(map[string]*QueryResult),
	}
	if err := os.MkdirAll(filepath.Dir(params.Path), 0o755); err != nil {
		return nil, fmt.Errorf("rag: create cache dir: %w", err)
	}

	raw, err := os.ReadFile(params.Path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("rag: read cache file: %w", err)
	}
	if err := json.Unmarshal(raw, &c.entries); err != nil {
		logger.Warn("[RAG] Cache file corrupt, starting fresh", "path", params.Path, "error", err)
		c.entries = make(map[string]*QueryResult)
		return c, nil
	}

	logger.Info("[RAG] Query cache loaded", "entries", len(c.entries))
	return c, nil
}

// Get returns the cached result for a query, or nil.
func (c *QueryCache) Get(query string) *QueryResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[query]
}

// Set stores a result and persists the cache.
func (c *QueryCache) Set(query string, result *QueryResult) {
	c.mu.Lock()
	c.entries[query] = result
	c.mu.Unlock()
	c.save()
}

// Clear drops all cached results and persists the empty cache.
func (c *QueryCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*QueryResult)
	c.mu.Unlock()
	c.save()
}

// Size returns the number of cached queries.
func (c *QueryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *QueryCache) save() {
	c.mu.RLock()
	raw, err := json.MarshalIndent(c.entries, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		logger.Warn("[RAG] Cache marshal failed", "error", err)
		return
	}
	if err := os.WriteFile(c.path, raw, 0o644); err != nil {
		logger.Warn("[RAG] Cache write failed", "path", c.path, "error", err)
	}
}
