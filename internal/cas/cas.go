package cas

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// Store is a content-addressed archive of rendered pages. Extraction puts
// every page it writes, keyed by the same hash recorded in the index, so a
// page stays servable after its output tree has been moved or deleted.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// path shards by the first two hash characters: <dir>/<ab>/<rest>.md.zst
func (s *Store) path(hash string) string {
	return filepath.Join(s.dir, hash[:2], hash[2:]+".md.zst")
}

// Put archives a page, returning its SHA-256 hash. Storing content that is
// already archived is a no-op.
func (s *Store) Put(content string) (string, error) {
	hash := fmt.Sprintf("%x", sha256.Sum256([]byte(content)))

	p := s.path(hash)
	if _, err := os.Stat(p); err == nil {
		return hash, nil
	}

	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return "", fmt.Errorf("creating page store directory: %w", err)
	}

	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		return "", fmt.Errorf("creating zstd writer: %w", err)
	}
	if _, err := w.Write([]byte(content)); err != nil {
		w.Close()
		return "", fmt.Errorf("compressing page: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("closing zstd writer: %w", err)
	}

	if err := os.WriteFile(p, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("writing page archive: %w", err)
	}

	return hash, nil
}

// Get retrieves an archived page by hash.
func (s *Store) Get(hash string) (string, error) {
	if len(hash) < 3 {
		return "", fmt.Errorf("malformed page hash %q", hash)
	}

	f, err := os.Open(s.path(hash))
	if err != nil {
		return "", fmt.Errorf("opening archived page %s: %w", hash, err)
	}
	defer f.Close()

	r, err := zstd.NewReader(f)
	if err != nil {
		return "", fmt.Errorf("creating zstd reader: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("decompressing archived page %s: %w", hash, err)
	}
	return string(data), nil
}

// Has reports whether a page with the given hash is archived.
func (s *Store) Has(hash string) bool {
	if len(hash) < 3 {
		return false
	}
	_, err := os.Stat(s.path(hash))
	return err == nil
}
