package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/zhiwen/backend/pkg/kg"
)

func newTestLoader(t *testing.T) *DocumentLoader {
	t.Helper()
	l, err := NewDocumentLoader(NewDocumentLoaderParams{
		DocumentsDir: filepath.Join(t.TempDir(), "documents"),
	})
	if err != nil {
		t.Fatalf("NewDocumentLoader() error = %v", err)
	}
	return l
}

func writeFile(t *testing.T, l *DocumentLoader, name string, content []byte) {
	t.Helper()
	path := filepath.Join(l.DocumentsDir(), filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestNewDocumentLoaderCreatesDirectory(t *testing.T) {
	l := newTestLoader(t)
	info, err := os.Stat(l.DocumentsDir())
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if !info.IsDir() {
		t.Fatal("documents path is not a directory")
	}
}

func TestLoadAll(t *testing.T) {
	l := newTestLoader(t)
	writeFile(t, l, "a.txt", []byte("唐三修炼玄天功"))
	writeFile(t, l, "sub/b.md", []byte("# 笔记\n小舞是唐三的同伴"))
	writeFile(t, l, "c.exe", []byte("binary"))
	writeFile(t, l, "empty.txt", []byte("   \n"))

	docs, err := l.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}

	want := []kg.Document{
		{Title: "a.txt", Content: "唐三修炼玄天功"},
		{Title: "sub/b.md", Content: "# 笔记\n小舞是唐三的同伴"},
	}
	if !reflect.DeepEqual(docs, want) {
		t.Errorf("LoadAll() = %+v, want %+v", docs, want)
	}
}

func TestLoadAllDecodesGBK(t *testing.T) {
	l := newTestLoader(t)

	const text = "知识图谱由实体和关系构成"
	encoded, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte(text))
	if err != nil {
		t.Fatalf("GBK encode error = %v", err)
	}
	writeFile(t, l, "gbk.txt", encoded)

	docs, err := l.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(docs) != 1 || docs[0].Content != text {
		t.Errorf("LoadAll() = %+v, want one document with decoded GBK text", docs)
	}
}

func TestSaveFileRejectsEscapingNames(t *testing.T) {
	l := newTestLoader(t)

	tests := []struct {
		name     string
		fileName string
	}{
		{name: "parent traversal", fileName: "../evil.txt"},
		{name: "absolute path", fileName: "/tmp/evil.txt"},
		{name: "empty", fileName: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := l.SaveFile(tt.fileName, []byte("x"))
			if !errors.Is(err, ErrInvalidFileName) {
				t.Errorf("SaveFile(%q) error = %v, want ErrInvalidFileName", tt.fileName, err)
			}
		})
	}
}

func TestSaveFileRejectsUnsupportedTypes(t *testing.T) {
	l := newTestLoader(t)
	if err := l.SaveFile("payload.exe", []byte("x")); !errors.Is(err, ErrInvalidFileName) {
		t.Errorf("SaveFile() error = %v, want ErrInvalidFileName", err)
	}
}

func TestSaveReadDeleteRoundTrip(t *testing.T) {
	l := newTestLoader(t)

	if err := l.SaveFile("notes/roster.txt", []byte("戴沐白")); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}

	content, err := l.ReadFile("notes/roster.txt")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if content != "戴沐白" {
		t.Errorf("ReadFile() = %q, want 戴沐白", content)
	}

	files, err := l.ListFiles()
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}
	if len(files) != 1 || files[0].Name != "notes/roster.txt" {
		t.Errorf("ListFiles() = %+v, want only notes/roster.txt", files)
	}

	if err := l.DeleteFile("notes/roster.txt"); err != nil {
		t.Fatalf("DeleteFile() error = %v", err)
	}
	files, err = l.ListFiles()
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}
	if len(files) != 0 {
		t.Errorf("ListFiles() after delete = %+v, want empty", files)
	}
}

func TestStats(t *testing.T) {
	l := newTestLoader(t)
	writeFile(t, l, "a.txt", []byte("12345"))
	writeFile(t, l, "b.TXT", []byte("123"))
	writeFile(t, l, "c.bin", []byte("1"))

	stats, err := l.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalFiles != 3 {
		t.Errorf("TotalFiles = %d, want 3", stats.TotalFiles)
	}
	if stats.TotalSize != 9 {
		t.Errorf("TotalSize = %d, want 9", stats.TotalSize)
	}
	wantTypes := map[string]int{".txt": 2, ".bin": 1}
	if !reflect.DeepEqual(stats.FileTypes, wantTypes) {
		t.Errorf("FileTypes = %v, want %v", stats.FileTypes, wantTypes)
	}
}

func TestDecodeTextFallsBackToLossy(t *testing.T) {
	// 0xFF is invalid in UTF-8, GBK and GB18030 alike.
	got := decodeText([]byte{'a', 0xFF, 'b'})
	if got != "ab" {
		t.Errorf("decodeText() = %q, want %q", got, "ab")
	}
}
