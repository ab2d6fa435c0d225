package rustdoc

import (
	"encoding/json"
	"testing"
)

const crateFixture = `{
	"root": "0:0",
	"crate_version": "1.2.3",
	"format_version": 27,
	"index": {
		"0:1": {
			"id": "0:1",
			"crate_id": 0,
			"name": "add",
			"docs": "Adds two numbers.",
			"links": {},
			"inner": {
				"function": {
					"decl": {
						"inputs": [
							["a", {"primitive": "i32"}],
							["b", {"primitive": "i32"}]
						],
						"output": {"primitive": "i32"}
					}
				}
			}
		},
		"0:2": {
			"id": "0:2",
			"crate_id": 0,
			"name": "Client",
			"docs": "An HTTP client.",
			"inner": {
				"struct": {
					"impls": ["0:3"]
				}
			}
		},
		"0:3": {
			"id": "0:3",
			"crate_id": 0,
			"name": null,
			"inner": {
				"impl": {
					"trait": null,
					"for": {"resolved_path": {"name": "Client", "id": "0:2", "args": null}},
					"items": ["0:4"]
				}
			}
		},
		"0:9": {
			"id": "0:9",
			"crate_id": 0,
			"name": "Color",
			"inner": {
				"enum": {"variants": ["0:10", "0:11"]}
			}
		}
	},
	"paths": {
		"0:1": {"crate_id": 0, "path": ["demo", "math", "add"], "kind": "function"},
		"0:2": {"crate_id": 0, "path": ["demo", "net", "Client"], "kind": "struct"}
	},
	"external_crates": {
		"2": {"name": "alloc", "html_root_url": "https://doc.rust-lang.org/nightly/"}
	}
}`

func TestParseCrate(t *testing.T) {
	t.Parallel()

	crate, err := ParseCrate([]byte(crateFixture))
	if err != nil {
		t.Fatalf("ParseCrate: %v", err)
	}

	if crate.Root != "0:0" {
		t.Errorf("Root = %q, want %q", crate.Root, "0:0")
	}
	if got := crate.Version(); got != "1.2.3" {
		t.Errorf("Version() = %q, want %q", got, "1.2.3")
	}
	if len(crate.Index) != 4 {
		t.Errorf("len(Index) = %d, want 4", len(crate.Index))
	}

	summ, ok := crate.Paths["0:1"]
	if !ok {
		t.Fatal("paths entry 0:1 missing")
	}
	if summ.Kind != KindFunction {
		t.Errorf("Kind = %q, want %q", summ.Kind, KindFunction)
	}
	if len(summ.Path) != 3 || summ.Path[2] != "add" {
		t.Errorf("Path = %v, want [demo math add]", summ.Path)
	}

	ext, ok := crate.ExternalCrates["2"]
	if !ok {
		t.Fatal("external crate 2 missing")
	}
	if ext.Name != "alloc" || ext.HTMLRootURL == nil {
		t.Errorf("ExternalCrate = %+v, want alloc with html_root_url", ext)
	}
}

func TestItemInnerVariants(t *testing.T) {
	t.Parallel()

	crate, err := ParseCrate([]byte(crateFixture))
	if err != nil {
		t.Fatalf("ParseCrate: %v", err)
	}

	fn := crate.Index["0:1"]
	if fn.Inner.Variant != "function" || fn.Inner.Function == nil {
		t.Fatalf("function item decoded as %q", fn.Inner.Variant)
	}
	decl := fn.Inner.Function.Decl
	if len(decl.Inputs) != 2 {
		t.Fatalf("len(Inputs) = %d, want 2", len(decl.Inputs))
	}
	if decl.Inputs[0].Name != "a" || decl.Inputs[0].Type.Variant != "primitive" {
		t.Errorf("first input = %q %q", decl.Inputs[0].Name, decl.Inputs[0].Type.Variant)
	}
	if decl.Output == nil || decl.Output.Primitive != "i32" {
		t.Errorf("output not decoded: %+v", decl.Output)
	}

	st := crate.Index["0:2"]
	if st.Inner.Struct == nil || len(st.Inner.Struct.Impls) != 1 {
		t.Errorf("struct item not decoded: %+v", st.Inner)
	}

	impl := crate.Index["0:3"]
	if impl.Inner.Impl == nil {
		t.Fatal("impl item not decoded")
	}
	if impl.Inner.Impl.Trait != nil {
		t.Error("inherent impl decoded with a trait")
	}

	// Payloads outside the supported set keep only the variant name.
	enum := crate.Index["0:9"]
	if enum.Inner.Variant != "enum" {
		t.Errorf("unsupported payload variant = %q, want %q", enum.Inner.Variant, "enum")
	}
	if enum.Inner.Function != nil || enum.Inner.Struct != nil || enum.Inner.Impl != nil {
		t.Error("unsupported payload decoded a typed field")
	}
}

func TestFnParamRejectsBadPair(t *testing.T) {
	t.Parallel()

	var p FnParam
	if err := json.Unmarshal([]byte(`["only_name"]`), &p); err == nil {
		t.Error("expected error for 1-element pair")
	}
}

func TestCrateVersionDefault(t *testing.T) {
	t.Parallel()

	for _, doc := range []string{`{}`, `{"crate_version": null}`, `{"crate_version": ""}`} {
		crate, err := ParseCrate([]byte(doc))
		if err != nil {
			t.Fatalf("ParseCrate(%s): %v", doc, err)
		}
		if got := crate.Version(); got != "latest" {
			t.Errorf("Version() = %q for %s, want %q", got, doc, "latest")
		}
	}
}

func TestParseItemKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    ItemKind
		wantErr bool
	}{
		{in: "function", want: KindFunction},
		{in: "struct", want: KindStruct},
		{in: "macro", want: KindMacro},
		{in: "gadget", wantErr: true},
		{in: "", wantErr: true},
		{in: "Function", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseItemKind(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseItemKind(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseItemKind(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseItemKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
