package rustdoc

import (
	"encoding/json"
	"fmt"
	"io"
)

// Crate is the top-level structure of a rustdoc JSON document: an index of
// every item in the compilation unit, plus path summaries for the items that
// are reachable as public paths.
type Crate struct {
	Root           string                   `json:"root"`
	CrateVersion   *string                  `json:"crate_version"`
	Index          map[string]Item          `json:"index"`
	Paths          map[string]ItemSummary   `json:"paths"`
	ExternalCrates map[string]ExternalCrate `json:"external_crates"`
	FormatVersion  int                      `json:"format_version"`
}

// ExternalCrate identifies a dependency crate by name.
type ExternalCrate struct {
	Name        string  `json:"name"`
	HTMLRootURL *string `json:"html_root_url"`
}

// Item is a single item in the rustdoc index.
type Item struct {
	ID      string            `json:"id"`
	CrateID int               `json:"crate_id"`
	Name    *string           `json:"name"`
	Docs    *string           `json:"docs"`
	Links   map[string]string `json:"links"` // markdown target → item id
	Inner   ItemInner         `json:"inner"`
}

// ItemSummary provides the public path and kind for an item. The path
// includes the item's own name as its final segment.
type ItemSummary struct {
	CrateID int      `json:"crate_id"`
	Path    []string `json:"path"`
	Kind    ItemKind `json:"kind"`
}

// ItemKind is the kind tag rustdoc records for a path entry.
type ItemKind string

const (
	KindModule   ItemKind = "module"
	KindStruct   ItemKind = "struct"
	KindEnum     ItemKind = "enum"
	KindFunction ItemKind = "function"
	KindTrait    ItemKind = "trait"
	KindTypedef  ItemKind = "typedef"
	KindConstant ItemKind = "constant"
	KindStatic   ItemKind = "static"
	KindMacro    ItemKind = "macro"
	KindPrimitive ItemKind = "primitive"
)

var knownKinds = map[ItemKind]bool{
	KindModule:    true,
	KindStruct:    true,
	KindEnum:      true,
	KindFunction:  true,
	KindTrait:     true,
	KindTypedef:   true,
	KindConstant:  true,
	KindStatic:    true,
	KindMacro:     true,
	KindPrimitive: true,
}

// ParseItemKind validates a kind string from configuration or flags.
func ParseItemKind(s string) (ItemKind, error) {
	k := ItemKind(s)
	if !knownKinds[k] {
		return "", fmt.Errorf("unrecognized item kind %q", s)
	}
	return k, nil
}

// ItemInner is the kind-specific payload of an item. Exactly one of the typed
// fields is set; payloads outside the supported set keep only Variant so the
// renderer can report what it refused.
type ItemInner struct {
	Variant  string
	Function *Function
	Struct   *Struct
	Impl     *Impl
}

func (i *ItemInner) UnmarshalJSON(data []byte) error {
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(data, &outer); err != nil {
		return err
	}
	for variant, payload := range outer {
		i.Variant = variant
		switch variant {
		case "function":
			i.Function = new(Function)
			return json.Unmarshal(payload, i.Function)
		case "struct":
			i.Struct = new(Struct)
			return json.Unmarshal(payload, i.Struct)
		case "impl":
			i.Impl = new(Impl)
			return json.Unmarshal(payload, i.Impl)
		}
		return nil
	}
	return nil
}

// Function is the payload of a function item.
type Function struct {
	Decl FnDecl `json:"decl"`
}

// FnDecl is a function declaration: named inputs and an optional output.
// A nil Output is the unit type and is omitted from renderings.
type FnDecl struct {
	Inputs []FnParam `json:"inputs"`
	Output *Type     `json:"output"`
}

// FnParam is one (name, type) input pair. rustdoc serializes it as a
// two-element JSON array.
type FnParam struct {
	Name string
	Type Type
}

func (p *FnParam) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("function parameter: expected [name, type] pair, got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &p.Name); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &p.Type)
}

// Struct is the payload of a struct item. Impls lists the ids of every impl
// block attached to the struct, trait impls included.
type Struct struct {
	Impls []string `json:"impls"`
}

// Impl is the payload of an impl block. Trait is nil for inherent impls.
type Impl struct {
	Trait *Path    `json:"trait"`
	For   *Type    `json:"for"`
	Items []string `json:"items"`
}

// ParseCrate decodes a rustdoc JSON document.
func ParseCrate(data []byte) (*Crate, error) {
	var crate Crate
	if err := json.Unmarshal(data, &crate); err != nil {
		return nil, fmt.Errorf("unmarshaling rustdoc JSON: %w", err)
	}
	return &crate, nil
}

// ReadCrate decodes a rustdoc JSON document from a stream.
func ReadCrate(r io.Reader) (*Crate, error) {
	var crate Crate
	if err := json.NewDecoder(r).Decode(&crate); err != nil {
		return nil, fmt.Errorf("decoding rustdoc JSON: %w", err)
	}
	return &crate, nil
}

// Version returns the crate's version string, or "latest" when the document
// does not record one.
func (c *Crate) Version() string {
	if c.CrateVersion == nil || *c.CrateVersion == "" {
		return "latest"
	}
	return *c.CrateVersion
}
