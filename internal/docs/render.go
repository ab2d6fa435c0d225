package docs

import (
	"fmt"
	"strings"

	"github.com/jcdickinson/rustdown/internal/markdown"
	"github.com/jcdickinson/rustdown/internal/rustdoc"
)

const functionPage = `# %s

<dl>
    <dt class="sig">
    <span class="sig-name">
        <span class="pre">%s</span>
    </span>
    %s
    </dt>
</dl>

%s
`

const methodsTableHeader = "# Methods\n| Method | Description |\n| --- | --- |\n"

// Render produces the full Markdown page for a function or struct item.
// Rendering is pure: all cache population happened while the extraction set
// was collected, so rendering the same item twice yields identical bytes.
func (it *CachedItem) Render() (string, error) {
	item := it.Item()
	if item == nil {
		return "", fmt.Errorf("%w: %s", ErrMissingItem, it.id)
	}

	switch kind := it.Kind(); kind {
	case rustdoc.KindFunction:
		sig, err := it.renderFunction(item)
		if err != nil {
			return "", err
		}
		name := it.Name()
		return fmt.Sprintf(functionPage, name, name, sig, it.renderedDocs(item)), nil

	case rustdoc.KindStruct:
		var rows []string
		for _, method := range it.AssociatedMethods() {
			rows = append(rows, fmt.Sprintf("| %s | %s |", it.CrossRefMarkdown(method), method.Caption()))
		}
		if len(rows) == 0 {
			return fmt.Sprintf("# %s\n\n%s", it.Name(), it.renderedDocs(item)), nil
		}
		return fmt.Sprintf("# %s\n\n%s\n\n%s%s",
			it.Name(), it.renderedDocs(item), methodsTableHeader, strings.Join(rows, "\n")), nil

	default:
		return "", fmt.Errorf("%w: item kind %q", ErrUnsupported, kind)
	}
}

// renderedDocs is the cleaned doc text with intra-doc links resolved to
// documentation-host URLs.
func (it *CachedItem) renderedDocs(item *rustdoc.Item) string {
	return markdown.RewriteLinks(it.Docs(), it.resolveDocLinks(item))
}

// resolveDocLinks maps each intra-doc link target recorded on the item to an
// external documentation URL. Targets that resolve to nothing are left
// untouched in the text.
func (it *CachedItem) resolveDocLinks(item *rustdoc.Item) map[string]string {
	if len(item.Links) == 0 {
		return nil
	}
	resolved := make(map[string]string, len(item.Links))
	for target, id := range item.Links {
		link := it.pool.Get(NewItemID(it.id.Pkg, id)).ExternalLink()
		if link == "" {
			continue
		}
		resolved[target] = link
	}
	return resolved
}

// renderFunction renders the signature block of a function item:
// parenthesized, comma-joined parameters and an arrow-prefixed return type.
// A nil output is the unit type and renders as nothing.
func (it *CachedItem) renderFunction(item *rustdoc.Item) (string, error) {
	fn := item.Inner.Function
	if fn == nil {
		return "", fmt.Errorf("%w: item payload %q", ErrUnsupported, item.Inner.Variant)
	}

	params := make([]string, 0, len(fn.Decl.Inputs))
	for _, in := range fn.Decl.Inputs {
		typ, err := it.renderType(&in.Type)
		if err != nil {
			return "", err
		}
		params = append(params, fmt.Sprintf("<em class=\"sig-param n\">\n    <span class=\"pre\">%s</span>: <span class=\"pre\">%s</span>\n</em>", in.Name, typ))
	}

	output := ""
	if fn.Decl.Output != nil {
		typ, err := it.renderType(fn.Decl.Output)
		if err != nil {
			return "", err
		}
		output = " → " + typ
	}

	return fmt.Sprintf("<span class=\"sig-paren\">(</span>\n%s\n<span class=\"sig-paren\">)</span>\n%s",
		strings.Join(params, ", "), output), nil
}

// renderType renders one node of the type grammar. The grammar is closed:
// anything outside it is an error, never placeholder text.
func (it *CachedItem) renderType(t *rustdoc.Type) (string, error) {
	switch t.Variant {
	case "primitive":
		return fmt.Sprintf("<a href=\"https://doc.rust-lang.org/std/primitive.%s.html\">%s</a>", t.Primitive, t.Primitive), nil

	case "resolved_path":
		return it.renderPath(t.ResolvedPath)

	case "dyn_trait":
		parts := make([]string, 0, len(t.DynTrait.Traits)+1)
		for _, poly := range t.DynTrait.Traits {
			if len(poly.GenericParams) > 0 {
				return "", fmt.Errorf("%w: higher-rank trait bounds", ErrUnsupported)
			}
			s, err := it.renderPath(&poly.Trait)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		if t.DynTrait.Lifetime != nil {
			parts = append(parts, *t.DynTrait.Lifetime)
		}
		return "dyn " + strings.Join(parts, " + "), nil

	case "generic":
		return t.Generic, nil

	case "borrowed_ref":
		ref := t.BorrowedRef
		inner, err := it.renderType(&ref.Type)
		if err != nil {
			return "", err
		}
		s := "&"
		if ref.Lifetime != nil {
			s += *ref.Lifetime + " "
		}
		if ref.Mutable {
			s += "mut "
		}
		return s + inner, nil

	case "tuple":
		parts := make([]string, 0, len(t.Tuple))
		for i := range t.Tuple {
			s, err := it.renderType(&t.Tuple[i])
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return "(" + strings.Join(parts, ", ") + ")", nil

	case "slice":
		inner, err := it.renderType(t.Slice)
		if err != nil {
			return "", err
		}
		return "[" + inner + "]", nil

	case "array":
		inner, err := it.renderType(&t.Array.Type)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("[%s: %s]", inner, t.Array.Len), nil

	case "impl_trait":
		parts := make([]string, 0, len(t.ImplTrait))
		for i := range t.ImplTrait {
			s, err := it.renderBound(&t.ImplTrait[i])
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return "impl " + strings.Join(parts, " + "), nil

	default:
		return "", fmt.Errorf("%w: type variant %q", ErrUnsupported, t.Variant)
	}
}

// renderPath renders a reference to another item as a hyperlink followed by
// its generic arguments. An item absent from the graph degrades to the path
// node's own name with an empty link target.
func (it *CachedItem) renderPath(p *rustdoc.Path) (string, error) {
	target := it.pool.Get(NewItemID(it.id.Pkg, p.ID))

	name := target.Name()
	if name == "" {
		name = p.Name
	}

	args := ""
	if p.Args != nil {
		var err error
		args, err = it.renderGenericArgs(p.Args)
		if err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("<a href=\"%s\">%s</a>%s", target.ExternalLink(), name, args), nil
}

// renderGenericArgs renders an angle-bracketed argument list. Empty lists
// render as the empty string, no brackets emitted.
func (it *CachedItem) renderGenericArgs(args *rustdoc.GenericArgs) (string, error) {
	if args.Variant != "angle_bracketed" {
		return "", fmt.Errorf("%w: generic arguments %q", ErrUnsupported, args.Variant)
	}
	if len(args.Args) == 0 && len(args.Bindings) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(args.Args)+len(args.Bindings))
	for i := range args.Args {
		arg := &args.Args[i]
		switch arg.Variant {
		case "lifetime":
			parts = append(parts, arg.Lifetime)
		case "type":
			s, err := it.renderType(arg.Type)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		default:
			return "", fmt.Errorf("%w: generic argument %q", ErrUnsupported, arg.Variant)
		}
	}
	for i := range args.Bindings {
		s, err := it.renderBinding(&args.Bindings[i])
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}

	return "&lt;" + strings.Join(parts, ", ") + "&gt;", nil
}

// renderBinding renders an equality constraint as name<args>=value.
// Constraint-style bindings and constant terms are outside the grammar.
func (it *CachedItem) renderBinding(b *rustdoc.TypeBinding) (string, error) {
	args := ""
	if b.Args != nil {
		var err error
		args, err = it.renderGenericArgs(b.Args)
		if err != nil {
			return "", err
		}
	}

	if b.Binding.Variant != "equality" {
		return "", fmt.Errorf("%w: binding %q", ErrUnsupported, b.Binding.Variant)
	}
	term := b.Binding.Equality
	if term == nil || term.Variant != "type" {
		variant := ""
		if term != nil {
			variant = term.Variant
		}
		return "", fmt.Errorf("%w: binding term %q", ErrUnsupported, variant)
	}
	value, err := it.renderType(term.Type)
	if err != nil {
		return "", err
	}

	return b.Name + args + "=" + value, nil
}

// renderBound renders one generic bound: a possibly-relaxed trait reference
// or a literal lifetime.
func (it *CachedItem) renderBound(b *rustdoc.GenericBound) (string, error) {
	switch b.Variant {
	case "trait_bound":
		tb := b.TraitBound
		if len(tb.GenericParams) > 0 {
			return "", fmt.Errorf("%w: higher-rank trait bounds", ErrUnsupported)
		}
		modifier := ""
		switch tb.Modifier {
		case "", "none":
		case "maybe":
			modifier = "?"
		default:
			return "", fmt.Errorf("%w: trait bound modifier %q", ErrUnsupported, tb.Modifier)
		}
		path, err := it.renderPath(&tb.Trait)
		if err != nil {
			return "", err
		}
		return modifier + path, nil

	case "outlives":
		return b.Outlives, nil

	default:
		return "", fmt.Errorf("%w: generic bound %q", ErrUnsupported, b.Variant)
	}
}
