package rustdoc

import "encoding/json"

// The type-expression grammar. rustdoc serializes each node as a single-key
// object naming the variant; every union here decodes that shape and keeps
// the variant name, so a construct outside the supported set survives
// decoding and is rejected by the renderer with the variant attached.

// Type is one node of a type expression.
type Type struct {
	Variant      string
	ResolvedPath *Path
	Primitive    string
	DynTrait     *DynTrait
	Generic      string
	BorrowedRef  *BorrowedRef
	Tuple        []Type
	Slice        *Type
	Array        *Array
	ImplTrait    []GenericBound
}

func (t *Type) UnmarshalJSON(data []byte) error {
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(data, &outer); err != nil {
		return err
	}
	for variant, payload := range outer {
		t.Variant = variant
		switch variant {
		case "resolved_path":
			t.ResolvedPath = new(Path)
			return json.Unmarshal(payload, t.ResolvedPath)
		case "primitive":
			return json.Unmarshal(payload, &t.Primitive)
		case "dyn_trait":
			t.DynTrait = new(DynTrait)
			return json.Unmarshal(payload, t.DynTrait)
		case "generic":
			return json.Unmarshal(payload, &t.Generic)
		case "borrowed_ref":
			t.BorrowedRef = new(BorrowedRef)
			return json.Unmarshal(payload, t.BorrowedRef)
		case "tuple":
			return json.Unmarshal(payload, &t.Tuple)
		case "slice":
			t.Slice = new(Type)
			return json.Unmarshal(payload, t.Slice)
		case "array":
			t.Array = new(Array)
			return json.Unmarshal(payload, t.Array)
		case "impl_trait":
			return json.Unmarshal(payload, &t.ImplTrait)
		}
		return nil
	}
	return nil
}

// Path is a reference to another item, possibly with generic arguments.
type Path struct {
	Name string       `json:"name"`
	ID   string       `json:"id"`
	Args *GenericArgs `json:"args"`
}

// DynTrait is a trait-object type: one or more trait bounds plus an optional
// lifetime bound.
type DynTrait struct {
	Traits   []PolyTrait `json:"traits"`
	Lifetime *string     `json:"lifetime"`
}

// PolyTrait is one constituent trait of a trait object. A non-empty
// GenericParams list means a higher-rank trait bound, which the renderer
// rejects.
type PolyTrait struct {
	Trait         Path              `json:"trait"`
	GenericParams []json.RawMessage `json:"generic_params"`
}

// BorrowedRef is a reference type.
type BorrowedRef struct {
	Lifetime *string `json:"lifetime"`
	Mutable  bool    `json:"mutable"`
	Type     Type    `json:"type"`
}

// Array is a fixed-size array; Len is the literal length expression.
type Array struct {
	Type Type   `json:"type"`
	Len  string `json:"len"`
}

// GenericArgs is an argument list attached to a path. Only the
// angle-bracketed form is supported.
type GenericArgs struct {
	Variant  string
	Args     []GenericArg
	Bindings []TypeBinding
}

func (g *GenericArgs) UnmarshalJSON(data []byte) error {
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(data, &outer); err != nil {
		return err
	}
	for variant, payload := range outer {
		g.Variant = variant
		if variant == "angle_bracketed" {
			var inner struct {
				Args     []GenericArg  `json:"args"`
				Bindings []TypeBinding `json:"bindings"`
			}
			if err := json.Unmarshal(payload, &inner); err != nil {
				return err
			}
			g.Args = inner.Args
			g.Bindings = inner.Bindings
		}
		return nil
	}
	return nil
}

// GenericArg is one entry of an argument list: a lifetime, a type, or a
// const (unsupported).
type GenericArg struct {
	Variant  string
	Lifetime string
	Type     *Type
}

func (a *GenericArg) UnmarshalJSON(data []byte) error {
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(data, &outer); err != nil {
		// "infer" serializes as a bare string
		var s string
		if err2 := json.Unmarshal(data, &s); err2 == nil {
			a.Variant = s
			return nil
		}
		return err
	}
	for variant, payload := range outer {
		a.Variant = variant
		switch variant {
		case "lifetime":
			return json.Unmarshal(payload, &a.Lifetime)
		case "type":
			a.Type = new(Type)
			return json.Unmarshal(payload, a.Type)
		}
		return nil
	}
	return nil
}

// GenericBound is a trait bound or a lifetime-outlives bound.
type GenericBound struct {
	Variant    string
	TraitBound *TraitBound
	Outlives   string
}

func (b *GenericBound) UnmarshalJSON(data []byte) error {
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(data, &outer); err != nil {
		return err
	}
	for variant, payload := range outer {
		b.Variant = variant
		switch variant {
		case "trait_bound":
			b.TraitBound = new(TraitBound)
			return json.Unmarshal(payload, b.TraitBound)
		case "outlives":
			return json.Unmarshal(payload, &b.Outlives)
		}
		return nil
	}
	return nil
}

// TraitBound is a trait reference with an optional modifier. Modifier is
// "none", "maybe" (relaxed, rendered as "?") or "maybe_const" (unsupported).
type TraitBound struct {
	Trait         Path              `json:"trait"`
	GenericParams []json.RawMessage `json:"generic_params"`
	Modifier      string            `json:"modifier"`
}

// TypeBinding is an associated-item constraint inside an argument list,
// e.g. `Item = u8`. Only equality bindings to a type are supported.
type TypeBinding struct {
	Name    string       `json:"name"`
	Args    *GenericArgs `json:"args"`
	Binding TermBinding  `json:"binding"`
}

// TermBinding is the right-hand side of a type binding.
type TermBinding struct {
	Variant  string
	Equality *Term
}

func (t *TermBinding) UnmarshalJSON(data []byte) error {
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(data, &outer); err != nil {
		return err
	}
	for variant, payload := range outer {
		t.Variant = variant
		if variant == "equality" {
			t.Equality = new(Term)
			return json.Unmarshal(payload, t.Equality)
		}
		return nil
	}
	return nil
}

// Term is the value of an equality binding: a type or a constant
// (unsupported).
type Term struct {
	Variant string
	Type    *Type
}

func (t *Term) UnmarshalJSON(data []byte) error {
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(data, &outer); err != nil {
		return err
	}
	for variant, payload := range outer {
		t.Variant = variant
		if variant == "type" {
			t.Type = new(Type)
			return json.Unmarshal(payload, t.Type)
		}
		return nil
	}
	return nil
}
