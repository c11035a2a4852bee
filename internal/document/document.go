// Package document serves the static pages the router responds with.
package document

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/afero"
)

var ErrNotFound = errors.New("document not found")

// Source reads the root and not-found documents from a filesystem.
// Files are read on every call, so edits on disk show up without a restart.
type Source struct {
	fs       afero.Fs
	root     string
	notFound string
}

func NewSource(fsys afero.Fs, root, notFound string) *Source {
	return &Source{fs: fsys, root: root, notFound: notFound}
}

// NewOSSource reads documents from the host filesystem.
func NewOSSource(root, notFound string) *Source {
	return NewSource(afero.NewOsFs(), root, notFound)
}

// Root is the body of GET / and GET /sleep.
func (s *Source) Root() ([]byte, error) {
	return s.read(s.root)
}

// NotFound is the body of every unmatched path.
func (s *Source) NotFound() ([]byte, error) {
	return s.read(s.notFound)
}

func (s *Source) read(name string) ([]byte, error) {
	b, err := afero.ReadFile(s.fs, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", name, err)
	}
	return b, nil
}

// Check verifies both documents exist, so a misconfigured path is caught at
// startup rather than on the first request.
func (s *Source) Check() error {
	for _, name := range []string{s.root, s.notFound} {
		ok, err := afero.Exists(s.fs, name)
		if err != nil {
			return fmt.Errorf("stat document %s: %w", name, err)
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
	}
	return nil
}
