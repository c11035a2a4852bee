package document_test

import (
	"errors"
	"testing"

	"github.com/spf13/afero"

	"github.com/poolhttpd/server/internal/document"
)

func memSource(t *testing.T, files map[string]string) *document.Source {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		if err := afero.WriteFile(fs, name, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return document.NewSource(fs, "hello.html", "404.html")
}

func TestSource_Root(t *testing.T) {
	src := memSource(t, map[string]string{"hello.html": "<p>hello</p>", "404.html": "<p>oops</p>"})

	b, err := src.Root()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(b) != "<p>hello</p>" {
		t.Errorf("expected root document, got %q", b)
	}

	b, err = src.NotFound()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(b) != "<p>oops</p>" {
		t.Errorf("expected not-found document, got %q", b)
	}
}

func TestSource_Missing(t *testing.T) {
	src := memSource(t, map[string]string{"hello.html": "x"})

	if _, err := src.NotFound(); !errors.Is(err, document.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := src.Check(); !errors.Is(err, document.ErrNotFound) {
		t.Errorf("expected Check to report ErrNotFound, got %v", err)
	}
}

func TestSource_Check(t *testing.T) {
	src := memSource(t, map[string]string{"hello.html": "x", "404.html": "y"})

	if err := src.Check(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
