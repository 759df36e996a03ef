// Package loader reads the plain-text document corpus from a local
// directory. Files are decoded tolerantly (UTF-8 first, then common
// Chinese encodings) so mixed-provenance corpora load without manual
// conversion.
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/zhiwen/backend/pkg/kg"
	"github.com/zhiwen/backend/pkg/logger"
)

// supportedExtensions lists the file types treated as loadable text.
var supportedExtensions = map[string]struct{}{
	".txt":  {},
	".md":   {},
	".py":   {},
	".json": {},
	".csv":  {},
	".log":  {},
}

var ErrInvalidFileName = errors.New("loader: invalid file name")

// FileInfo describes one file inside the documents directory.
type FileInfo struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// DocumentStats summarizes the documents directory without loading any
// file contents.
type DocumentStats struct {
	TotalFiles int            `json:"total_files"`
	TotalSize  int64          `json:"total_size"`
	FileTypes  map[string]int `json:"file_types"`
}

// DocumentLoader loads every supported text file under a documents
// directory into corpus documents titled by their relative path.
type DocumentLoader struct {
	documentsDir string
}

type NewDocumentLoaderParams struct {
	DocumentsDir string
}

// NewDocumentLoader creates a loader rooted at the given directory,
// creating the directory when it does not exist yet.
func NewDocumentLoader(params NewDocumentLoaderParams) (*DocumentLoader, error) {
	dir := params.DocumentsDir
	if dir == "" {
		dir = "documents"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("loader: create documents dir %q: %w", dir, err)
	}
	return &DocumentLoader{documentsDir: dir}, nil
}

// DocumentsDir returns the directory this loader reads from.
func (l *DocumentLoader) DocumentsDir() string {
	return l.documentsDir
}

// LoadAll walks the documents directory and returns every supported,
// non-empty file as a document. The title is the path relative to the
// documents directory, so nested corpora keep distinguishable titles.
func (l *DocumentLoader) LoadAll(ctx context.Context) ([]kg.Document, error) {
	paths, err := l.supportedFiles()
	if err != nil {
		return nil, err
	}

	logger.Info("[Loader] Loading documents", "count", len(paths), "dir", l.documentsDir)

	documents := make([]kg.Document, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		content, err := l.loadTextFile(path)
		if err != nil {
			logger.Warn("[Loader] Skipping unreadable file", "path", path, "error", err)
			continue
		}
		if strings.TrimSpace(content) == "" {
			continue
		}

		relative, err := filepath.Rel(l.documentsDir, path)
		if err != nil {
			relative = filepath.Base(path)
		}
		documents = append(documents, kg.Document{
			Title:   filepath.ToSlash(relative),
			Content: content,
		})
	}

	logger.Info("[Loader] Documents loaded", "loaded", len(documents))
	return documents, nil
}

// Stats reports file count, total size and a per-extension breakdown of
// everything under the documents directory, supported or not.
func (l *DocumentLoader) Stats() (DocumentStats, error) {
	stats := DocumentStats{FileTypes: map[string]int{}}

	err := filepath.WalkDir(l.documentsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		stats.TotalFiles++
		stats.TotalSize += info.Size()
		ext := strings.ToLower(filepath.Ext(path))
		if ext == "" {
			ext = "(none)"
		}
		stats.FileTypes[ext]++
		return nil
	})
	if err != nil {
		return DocumentStats{}, fmt.Errorf("loader: walk %q: %w", l.documentsDir, err)
	}
	return stats, nil
}

// ListFiles returns the supported files directly manageable through the
// file API, sorted by the walk order of the directory tree.
func (l *DocumentLoader) ListFiles() ([]FileInfo, error) {
	paths, err := l.supportedFiles()
	if err != nil {
		return nil, err
	}

	files := make([]FileInfo, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		relative, err := filepath.Rel(l.documentsDir, path)
		if err != nil {
			relative = filepath.Base(path)
		}
		files = append(files, FileInfo{
			Name:     filepath.ToSlash(relative),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}
	return files, nil
}

// SaveFile writes an uploaded document into the documents directory.
func (l *DocumentLoader) SaveFile(name string, content []byte) error {
	path, err := l.resolve(name)
	if err != nil {
		return err
	}
	if _, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]; !ok {
		return fmt.Errorf("loader: unsupported file type %q: %w", filepath.Ext(name), ErrInvalidFileName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("loader: create parent dir for %q: %w", name, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("loader: write %q: %w", name, err)
	}
	return nil
}

// DeleteFile removes a document from the documents directory.
func (l *DocumentLoader) DeleteFile(name string) error {
	path, err := l.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("loader: delete %q: %w", name, err)
	}
	return nil
}

// FilePath maps a document name onto its on-disk path, for handing the
// raw file to callers that serve it without decoding.
func (l *DocumentLoader) FilePath(name string) (string, error) {
	return l.resolve(name)
}

// ReadFile returns the decoded contents of a single document.
func (l *DocumentLoader) ReadFile(name string) (string, error) {
	path, err := l.resolve(name)
	if err != nil {
		return "", err
	}
	return l.loadTextFile(path)
}

// resolve maps an API-supplied name onto a path inside the documents
// directory, rejecting anything that would escape it.
func (l *DocumentLoader) resolve(name string) (string, error) {
	if name == "" {
		return "", ErrInvalidFileName
	}
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("loader: name %q escapes documents dir: %w", name, ErrInvalidFileName)
	}
	return filepath.Join(l.documentsDir, cleaned), nil
}

func (l *DocumentLoader) supportedFiles() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(l.documentsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]; ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loader: walk %q: %w", l.documentsDir, err)
	}
	return paths, nil
}

// loadTextFile reads one file and decodes it as UTF-8 when valid, then
// GBK, then GB18030, finally stripping invalid bytes as a last resort.
func (l *DocumentLoader) loadTextFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("loader: read %q: %w", path, err)
	}
	return decodeText(raw), nil
}

func decodeText(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	if decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(raw); err == nil && !bytes.ContainsRune(decoded, utf8.RuneError) {
		return string(decoded)
	}
	if decoded, err := simplifiedchinese.GB18030.NewDecoder().Bytes(raw); err == nil && !bytes.ContainsRune(decoded, utf8.RuneError) {
		return string(decoded)
	}
	return strings.ToValidUTF8(string(raw), "")
}
