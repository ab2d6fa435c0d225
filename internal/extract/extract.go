package extract

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jcdickinson/rustdown/internal/cas"
	"github.com/jcdickinson/rustdown/internal/config"
	"github.com/jcdickinson/rustdown/internal/docs"
	"github.com/jcdickinson/rustdown/internal/rustdoc"
)

// Page describes one written output file, for index recording.
type Page struct {
	Package     string
	Path        string // Rust path, "::"-joined
	Kind        string
	Caption     string
	File        string // path relative to the output root
	ContentHash string
}

// Collections is the extraction work list: a warmed item pool and every
// selected item, methods included.
type Collections struct {
	outputRoot string
	pool       *docs.Pool
	items      []*docs.CachedItem
	store      *cas.Store
}

// SetStore attaches a page archive; Extract then archives every page it
// writes under the content hash recorded in the index.
func (c *Collections) SetStore(store *cas.Store) {
	c.store = store
}

// FromConfig loads each package's documentation graph and collects the
// extraction set. The pool is fully warmed here: every item handle and every
// synthesized method path exists before rendering starts.
func FromConfig(cfg *config.Config) (*Collections, error) {
	pool := docs.NewPool()
	var items []*docs.CachedItem
	seen := make(map[docs.ItemID]bool)

	for _, pkg := range cfg.Packages {
		if !pool.HasCrate(pkg.Name) {
			crate, err := loadCrate(pkg)
			if err != nil {
				return nil, fmt.Errorf("loading %s: %w", pkg.Name, err)
			}
			pool.AddCrate(pkg.Name, crate)
		}

		selected := selectItems(pool, pkg)
		for _, item := range selected {
			if !seen[item.ID()] {
				seen[item.ID()] = true
				items = append(items, item)
			}
		}
		slog.Info("selected items", "package", pkg.Name, "kind", pkg.Kind, "items", len(selected))
	}

	return &Collections{
		outputRoot: cfg.OutputPath,
		pool:       pool,
		items:      items,
	}, nil
}

// loadCrate resolves a package's rustdoc JSON: a local file when json_path
// is set, else the on-disk cache, else a docs.rs fetch (cached afterwards).
func loadCrate(pkg config.Package) (*rustdoc.Crate, error) {
	if pkg.JSONPath != "" {
		data, err := os.ReadFile(pkg.JSONPath)
		if err != nil {
			return nil, fmt.Errorf("reading rustdoc JSON: %w", err)
		}
		return rustdoc.ParseCrate(data)
	}

	version := pkg.Version
	if version == "" {
		version = "latest"
	}

	cacheDir := config.JSONCacheDir()
	if rustdoc.HasCache(cacheDir, pkg.Name, version) {
		return rustdoc.LoadCache(cacheDir, pkg.Name, version)
	}

	data, err := rustdoc.FetchJSON(pkg.Name, version)
	if err != nil {
		return nil, err
	}
	if err := rustdoc.SaveCache(cacheDir, data, pkg.Name, version); err != nil {
		slog.Warn("caching rustdoc JSON failed", "package", pkg.Name, "error", err)
	}
	return rustdoc.ParseCrate(data)
}

// selectItems enumerates the public path entries matching the package's kind
// and module-path filter, in deterministic order, expanding each struct with
// its associated methods. Only items present in the local index qualify;
// path entries pointing at foreign re-exports are skipped.
func selectItems(pool *docs.Pool, pkg config.Package) []*docs.CachedItem {
	crate := pool.Crate(pkg.Name)

	var prefix []string
	if pkg.ModulePath != "" {
		prefix = strings.Split(pkg.ModulePath, "::")
	}

	ids := make([]string, 0, len(crate.Paths))
	for id := range crate.Paths {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var items []*docs.CachedItem
	for _, id := range ids {
		summ := crate.Paths[id]
		if summ.Kind != pkg.Kind {
			continue
		}
		if !hasPathPrefix(summ.Path, prefix) {
			continue
		}
		if _, ok := crate.Index[id]; !ok {
			continue
		}

		item := pool.Get(docs.NewItemID(pkg.Name, id))
		items = append(items, item.AssociatedMethods()...)
		items = append(items, item)
	}
	return items
}

func hasPathPrefix(path, prefix []string) bool {
	if len(prefix) > len(path) {
		return false
	}
	for i, seg := range prefix {
		if path[i] != seg {
			return false
		}
	}
	return true
}

// Extract renders every selected item and writes it into the mirrored output
// tree, overwriting existing files. Items are independent once the pool is
// warm, so rendering runs in parallel; any error aborts the run.
func (c *Collections) Extract(ctx context.Context) ([]Page, error) {
	pages := make([]Page, len(c.items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, item := range c.items {
		i, item := i, item
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			page, err := item.Render()
			if err != nil {
				return fmt.Errorf("rendering %s: %w", item.ID(), err)
			}

			path := item.Path()
			dirs := path[:len(path)-1]
			relFile := filepath.Join(append(append([]string{}, dirs...), item.Name()+".md")...)

			dir := filepath.Join(c.outputRoot, filepath.Join(dirs...))
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
			file := filepath.Join(c.outputRoot, relFile)
			if err := os.WriteFile(file, []byte(page), 0644); err != nil {
				return fmt.Errorf("writing %s: %w", file, err)
			}

			if c.store != nil {
				if _, err := c.store.Put(page); err != nil {
					return fmt.Errorf("archiving %s: %w", file, err)
				}
			}

			pages[i] = Page{
				Package:     item.ID().Pkg,
				Path:        strings.Join(path, "::"),
				Kind:        string(item.Kind()),
				Caption:     item.Caption(),
				File:        relFile,
				ContentHash: fmt.Sprintf("%x", sha256.Sum256([]byte(page))),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Info("extraction complete", "items", len(pages), "output", c.outputRoot)
	return pages, nil
}

// Items exposes the selected extraction set.
func (c *Collections) Items() []*docs.CachedItem {
	return c.items
}
