package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jcdickinson/rustdown/internal/cas"
	"github.com/jcdickinson/rustdown/internal/config"
	"github.com/jcdickinson/rustdown/internal/docs"
	"github.com/jcdickinson/rustdown/internal/rustdoc"
)

const demoCrate = `{
	"root": "0:0",
	"crate_version": "0.4.2",
	"format_version": 27,
	"index": {
		"0:1": {"id": "0:1", "crate_id": 0, "name": "add", "docs": "Adds two numbers.", "inner": {"function": {"decl": {"inputs": [["a", {"primitive": "i32"}], ["b", {"primitive": "i32"}]], "output": {"primitive": "i32"}}}}},
		"0:2": {"id": "0:2", "crate_id": 0, "name": "Client", "docs": "An HTTP client.", "inner": {"struct": {"impls": ["0:3"]}}},
		"0:3": {"id": "0:3", "crate_id": 0, "name": null, "inner": {"impl": {"trait": null, "for": {"resolved_path": {"name": "Client", "id": "0:2", "args": null}}, "items": ["0:4"]}}},
		"0:4": {"id": "0:4", "crate_id": 0, "name": "connect", "docs": "Opens a connection.", "inner": {"function": {"decl": {"inputs": [], "output": null}}}},
		"0:7": {"id": "0:7", "crate_id": 0, "name": "ping", "docs": "Sends a ping.", "inner": {"function": {"decl": {"inputs": [], "output": null}}}},
		"0:9": {"id": "0:9", "crate_id": 0, "name": "Color", "inner": {"enum": {"variants": []}}}
	},
	"paths": {
		"0:1": {"crate_id": 0, "path": ["demo", "math", "add"], "kind": "function"},
		"0:2": {"crate_id": 0, "path": ["demo", "net", "Client"], "kind": "struct"},
		"0:7": {"crate_id": 0, "path": ["demo", "ping"], "kind": "function"},
		"0:9": {"crate_id": 0, "path": ["demo", "Color"], "kind": "enum"}
	},
	"external_crates": {}
}`

func testConfig(t *testing.T, kind rustdoc.ItemKind, modulePath string) *config.Config {
	t.Helper()

	jsonPath := filepath.Join(t.TempDir(), "demo.json")
	if err := os.WriteFile(jsonPath, []byte(demoCrate), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	return &config.Config{
		OutputPath: filepath.Join(t.TempDir(), "out"),
		Packages: []config.Package{{
			Name:       "demo",
			JSONPath:   jsonPath,
			ModulePath: modulePath,
			Kind:       kind,
		}},
	}
}

func TestFromConfigSelectsByKind(t *testing.T) {
	t.Parallel()

	c, err := FromConfig(testConfig(t, rustdoc.KindFunction, ""))
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}

	var names []string
	for _, item := range c.Items() {
		names = append(names, item.Name())
	}
	if len(names) != 2 || names[0] != "add" || names[1] != "ping" {
		t.Errorf("selected %v, want [add ping]", names)
	}
}

func TestFromConfigModulePathFilter(t *testing.T) {
	t.Parallel()

	c, err := FromConfig(testConfig(t, rustdoc.KindFunction, "demo::math"))
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}

	items := c.Items()
	if len(items) != 1 || items[0].Name() != "add" {
		t.Fatalf("selected %d items, want only add", len(items))
	}
}

func TestExtractWritesTree(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, rustdoc.KindFunction, "")
	c, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}

	pages, err := c.Extract(context.Background())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("len(pages) = %d, want 2", len(pages))
	}

	add := pages[0]
	if add.Path != "demo::math::add" || add.Kind != "function" {
		t.Errorf("page = %+v", add)
	}
	if add.File != filepath.Join("demo", "math", "add.md") {
		t.Errorf("File = %q", add.File)
	}
	if add.Caption != "Adds two numbers." {
		t.Errorf("Caption = %q", add.Caption)
	}
	if len(add.ContentHash) != 64 {
		t.Errorf("ContentHash = %q, want a sha256 hex digest", add.ContentHash)
	}

	content, err := os.ReadFile(filepath.Join(cfg.OutputPath, "demo", "math", "add.md"))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !strings.HasPrefix(string(content), "# add\n") {
		t.Errorf("page does not open with its title:\n%s", content)
	}

	if _, err := os.Stat(filepath.Join(cfg.OutputPath, "demo", "ping.md")); err != nil {
		t.Errorf("ping page missing: %v", err)
	}
}

func TestExtractStructsIncludeMethods(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, rustdoc.KindStruct, "")
	c, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}

	pages, err := c.Extract(context.Background())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("len(pages) = %d, want struct plus method", len(pages))
	}

	byPath := make(map[string]Page)
	for _, p := range pages {
		byPath[p.Path] = p
	}

	method, ok := byPath["demo::net::Client::connect"]
	if !ok {
		t.Fatal("method page not extracted")
	}
	if method.File != filepath.Join("demo", "net", "Client", "connect.md") {
		t.Errorf("method File = %q", method.File)
	}

	structPage, err := os.ReadFile(filepath.Join(cfg.OutputPath, "demo", "net", "Client.md"))
	if err != nil {
		t.Fatalf("reading struct page: %v", err)
	}
	if !strings.Contains(string(structPage), "[connect](Client/connect.md)") {
		t.Errorf("struct page missing method cross-reference:\n%s", structPage)
	}
}

func TestExtractUnsupportedKind(t *testing.T) {
	t.Parallel()

	c, err := FromConfig(testConfig(t, rustdoc.KindEnum, ""))
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}

	if _, err := c.Extract(context.Background()); !errors.Is(err, docs.ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
}

func TestExtractArchivesPages(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, rustdoc.KindFunction, "")
	c, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	store := cas.NewStore(t.TempDir())
	c.SetStore(store)

	pages, err := c.Extract(context.Background())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	for _, p := range pages {
		if !store.Has(p.ContentHash) {
			t.Errorf("page %s not archived under its content hash", p.Path)
			continue
		}
		archived, err := store.Get(p.ContentHash)
		if err != nil {
			t.Errorf("reading archived %s: %v", p.Path, err)
			continue
		}
		written, err := os.ReadFile(filepath.Join(cfg.OutputPath, p.File))
		if err != nil {
			t.Fatalf("reading output: %v", err)
		}
		if archived != string(written) {
			t.Errorf("archived bytes for %s differ from the written page", p.Path)
		}
	}
}

func TestExtractOverwrites(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, rustdoc.KindFunction, "")
	c, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}

	if _, err := c.Extract(context.Background()); err != nil {
		t.Fatalf("first Extract: %v", err)
	}

	file := filepath.Join(cfg.OutputPath, "demo", "ping.md")
	first, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("reading first output: %v", err)
	}

	if err := os.WriteFile(file, []byte("stale"), 0644); err != nil {
		t.Fatalf("scribbling on output: %v", err)
	}

	if _, err := c.Extract(context.Background()); err != nil {
		t.Fatalf("second Extract: %v", err)
	}
	second, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("reading second output: %v", err)
	}
	if string(first) != string(second) {
		t.Error("second extraction did not reproduce the page")
	}
}
