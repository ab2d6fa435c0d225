package rustdoc

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

func cachePath(dir, name, version string) string {
	return filepath.Join(dir, name+"_"+version+".json.zst")
}

// SaveCache compresses and saves rustdoc JSON bytes under dir.
func SaveCache(dir string, data []byte, name, version string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating json cache dir: %w", err)
	}

	f, err := os.Create(cachePath(dir, name, version))
	if err != nil {
		return fmt.Errorf("creating cache file: %w", err)
	}
	defer f.Close()

	w, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("creating zstd writer: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("writing compressed data: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing zstd writer: %w", err)
	}
	return nil
}

// LoadCache loads and decompresses cached rustdoc JSON from dir.
func LoadCache(dir, name, version string) (*Crate, error) {
	f, err := os.Open(cachePath(dir, name, version))
	if err != nil {
		return nil, fmt.Errorf("opening cache file: %w", err)
	}
	defer f.Close()

	r, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("creating zstd reader: %w", err)
	}
	defer r.Close()

	crate, err := ReadCrate(r)
	if err != nil {
		return nil, fmt.Errorf("decoding cached rustdoc JSON: %w", err)
	}
	return crate, nil
}

// HasCache checks whether a cached rustdoc JSON file exists under dir.
func HasCache(dir, name, version string) bool {
	_, err := os.Stat(cachePath(dir, name, version))
	return err == nil
}
