package docs

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/jcdickinson/rustdown/internal/rustdoc"
)

// ItemID names an item across every loaded package.
type ItemID struct {
	Pkg string
	ID  string
}

func NewItemID(pkg, id string) ItemID {
	return ItemID{Pkg: pkg, ID: id}
}

func (id ItemID) String() string {
	return id.Pkg + "/" + id.ID
}

// Pool owns the loaded crates and memoizes CachedItem handles: at most one
// CachedItem exists per ItemID for the pool's lifetime. Lookups never fail;
// an id absent from the graph yields an unresolvable handle that callers
// either treat as fatal (extraction roots) or degrade on (type references).
type Pool struct {
	crates map[string]*rustdoc.Crate

	mu     sync.Mutex
	cached map[ItemID]*CachedItem
}

func NewPool() *Pool {
	return &Pool{
		crates: make(map[string]*rustdoc.Crate),
		cached: make(map[ItemID]*CachedItem),
	}
}

// AddCrate registers a package's documentation graph. Not safe for use once
// rendering has started.
func (p *Pool) AddCrate(name string, crate *rustdoc.Crate) {
	p.crates[name] = crate
}

// Crate returns the graph for a package, or nil.
func (p *Pool) Crate(name string) *rustdoc.Crate {
	return p.crates[name]
}

// HasCrate reports whether a package's graph is loaded.
func (p *Pool) HasCrate(name string) bool {
	_, ok := p.crates[name]
	return ok
}

// Get returns the memoized handle for id, constructing it on first access.
func (p *Pool) Get(id ItemID) *CachedItem {
	return p.get(id, nil)
}

func (p *Pool) get(id ItemID, synthPath []string) *CachedItem {
	p.mu.Lock()
	defer p.mu.Unlock()

	if item, ok := p.cached[id]; ok {
		return item
	}
	item := &CachedItem{pool: p, id: id, synthPath: synthPath}
	p.cached[id] = item
	return item
}

// CachedItem is a memoized, path-resolved handle on one item. Immutable
// after construction.
type CachedItem struct {
	pool *Pool
	id   ItemID

	// synthPath is set for items without their own path entry (associated
	// methods); it is the parent's path plus the method name.
	synthPath []string
}

func (it *CachedItem) ID() ItemID { return it.id }

func (it *CachedItem) crate() *rustdoc.Crate {
	return it.pool.crates[it.id.Pkg]
}

// Item returns the full definition, or nil for items belonging to a
// compilation unit that is not locally indexed.
func (it *CachedItem) Item() *rustdoc.Item {
	crate := it.crate()
	if crate == nil {
		return nil
	}
	if item, ok := crate.Index[it.id.ID]; ok {
		return &item
	}
	return nil
}

// Summary returns the public path entry, or nil for items (such as
// associated methods) that are not indexed as top-level paths.
func (it *CachedItem) Summary() *rustdoc.ItemSummary {
	crate := it.crate()
	if crate == nil {
		return nil
	}
	if summ, ok := crate.Paths[it.id.ID]; ok {
		return &summ
	}
	return nil
}

// Kind returns the path entry's kind. Items without one are associated
// methods, which are functions.
func (it *CachedItem) Kind() rustdoc.ItemKind {
	if summ := it.Summary(); summ != nil {
		return summ.Kind
	}
	return rustdoc.KindFunction
}

// Name resolves the item's display name from the definition or, failing
// that, the last path segment. Empty only for unresolvable foreign items.
func (it *CachedItem) Name() string {
	if item := it.Item(); item != nil && item.Name != nil {
		return *item.Name
	}
	if summ := it.Summary(); summ != nil && len(summ.Path) > 0 {
		return summ.Path[len(summ.Path)-1]
	}
	return ""
}

// Path returns the item's module path, name included as the final segment.
// The authoritative path entry wins over a synthesized one.
func (it *CachedItem) Path() []string {
	if summ := it.Summary(); summ != nil {
		return summ.Path
	}
	return it.synthPath
}

// Resolvable reports whether the handle satisfies the cached-item invariant:
// a name and a module path are both available.
func (it *CachedItem) Resolvable() bool {
	return it.Name() != "" && len(it.Path()) > 0
}

// CrateVersion returns the owning package's recorded version.
func (it *CachedItem) CrateVersion() string {
	if crate := it.crate(); crate != nil {
		return crate.Version()
	}
	return "latest"
}

// Docs returns the cleaned documentation text (hidden code-block lines
// removed, rust fences normalized).
func (it *CachedItem) Docs() string {
	item := it.Item()
	if item == nil || item.Docs == nil {
		return ""
	}
	return HideCodeBlockLines(*item.Docs)
}

// Caption returns the first non-blank line of the raw documentation text.
func (it *CachedItem) Caption() string {
	item := it.Item()
	if item == nil || item.Docs == nil {
		return ""
	}
	return Caption(*item.Docs)
}

// AssociatedMethods returns the items of every inherent (trait-free) impl
// block attached to a struct, each with a synthesized path of the struct's
// path plus the method name. Empty for any other kind. Methods are not
// indexed as top-level paths, which is why the path must be synthesized.
func (it *CachedItem) AssociatedMethods() []*CachedItem {
	item := it.Item()
	crate := it.crate()
	if item == nil || crate == nil || item.Inner.Struct == nil {
		return nil
	}

	var methods []*CachedItem
	for _, implID := range item.Inner.Struct.Impls {
		implItem, ok := crate.Index[implID]
		if !ok || implItem.Inner.Impl == nil || implItem.Inner.Impl.Trait != nil {
			continue
		}
		for _, methodID := range implItem.Inner.Impl.Items {
			methodItem, ok := crate.Index[methodID]
			if !ok || methodItem.Name == nil {
				continue
			}
			path := append(append([]string{}, it.Path()...), *methodItem.Name)
			methods = append(methods, it.pool.get(NewItemID(it.id.Pkg, methodID), path))
		}
	}
	return methods
}

// urlPath joins the path's directory segments for use in documentation URLs.
func (it *CachedItem) urlPath() string {
	path := it.Path()
	if len(path) == 0 {
		return ""
	}
	return strings.Join(path[:len(path)-1], "/")
}

// htmlRootURL resolves the documentation host root for the item's origin
// crate: the recorded html_root_url when present, a versioned docs.rs URL
// for locally loaded packages, and a best-effort latest docs.rs URL for
// everything else.
func (it *CachedItem) htmlRootURL() string {
	crate := it.crate()
	if crate == nil {
		return ""
	}

	crateID := -1
	if item := it.Item(); item != nil {
		crateID = item.CrateID
	} else if summ := it.Summary(); summ != nil {
		crateID = summ.CrateID
	}

	if ext, ok := crate.ExternalCrates[strconv.Itoa(crateID)]; ok && ext.HTMLRootURL != nil {
		return *ext.HTMLRootURL
	}

	path := it.Path()
	if len(path) == 0 {
		return ""
	}
	pkg := path[0]
	if it.pool.HasCrate(pkg) {
		return fmt.Sprintf("https://docs.rs/%s/%s/", pkg, it.CrateVersion())
	}
	return fmt.Sprintf("https://docs.rs/%s/latest/", pkg)
}

// ExternalLink builds the documentation-host URL for the item. Returns ""
// when the item cannot be located at all; foreign documentation coverage is
// best-effort, never fatal.
func (it *CachedItem) ExternalLink() string {
	root := it.htmlRootURL()
	if root == "" {
		return ""
	}
	return fmt.Sprintf("%s%s/%s.%s.html", root, it.urlPath(), it.Kind(), it.Name())
}
