package layout

import (
	"fmt"
	"go/types"

	"volgen/internal/diagnostic"
)

// Options configures Resolve.
type Options struct {
	// Sizes describes the target. Nil means gc on amd64.
	Sizes types.Sizes
}

// MaxAlign returns the largest alignment a Go type can have on the target.
func (o Options) MaxAlign() int64 {
	return o.sizes().Alignof(types.Typ[types.Uint64])
}

func (o Options) sizes() types.Sizes {
	if o.Sizes == nil {
		return types.SizesFor("gc", "amd64")
	}

	return o.Sizes
}

// Set is the resolved layout of a group of described structs.
type Set struct {
	Layouts []*Layout
	byName  map[string]*Layout
}

// Lookup returns the layout of the named struct.
func (s *Set) Lookup(name string) (*Layout, bool) {
	l, ok := s.byName[name]
	return l, ok
}

// Variant is a described struct reached through an enclosing packing bound
// tighter than its own alignment.
type Variant struct {
	Layout *Layout
	Bound  int64
}

// Variants returns every (struct, bound) pair reachable from the set that
// needs its own mirror, in discovery order.
func (s *Set) Variants() []Variant {
	var out []Variant

	seen := make(map[Variant]bool)

	var walk func(l *Layout, bound int64)

	walk = func(l *Layout, bound int64) {
		inner := bound
		if n, ok := l.Struct.Directive.Bound(); ok && (inner == 0 || n < inner) {
			inner = n
		}

		for _, f := range l.Fields {
			if f.Nested == nil {
				continue
			}

			next := inner
			if !f.Nested.NeedsVariant(next) {
				next = 0
			}

			v := Variant{Layout: f.Nested, Bound: next}
			if seen[v] {
				continue
			}

			seen[v] = true

			if next != 0 {
				out = append(out, v)
			}

			walk(f.Nested, next)
		}
	}

	for _, l := range s.Layouts {
		walk(l, 0)
	}

	return out
}

// Resolve lays out every struct and checks that each layout can be expressed
// in Go. Either every struct resolves and the returned Set is non-nil, or the
// diagnostics hold at least one error.
func Resolve(structs []*Struct, opts Options) (*Set, diagnostic.Diagnostics) {
	var diags diagnostic.Diagnostics

	calc := NewCalculator()
	set := &Set{byName: make(map[string]*Layout, len(structs))}
	maxAlign := opts.MaxAlign()

	for _, s := range structs {
		if _, dup := set.byName[s.Name]; dup {
			diags.Add(diagnostic.Diagnostic{
				Severity: diagnostic.DiagnosticError,
				Code:     "duplicate-struct",
				Message:  fmt.Sprintf("struct %s described twice", s.Name),
				Struct:   s.Name,
				Pos:      s.Pos,
			})

			continue
		}

		l, err := calc.Layout(s)
		if err != nil {
			diags.Add(Diagnostic(err))
			continue
		}

		if err := checkExpressible(l, maxAlign); err != nil {
			diags.Add(Diagnostic(err))
			continue
		}

		set.Layouts = append(set.Layouts, l)
		set.byName[s.Name] = l

		for _, leaf := range Flatten(l) {
			if leaf.Transport < leaf.Type.Align {
				diags.AddInfo("narrow-transport",
					fmt.Sprintf("%s at offset %d is moved in %d-byte units (%s)",
						leaf.Type.Name, leaf.Offset, leaf.Transport, leaf.Chain),
					s.Name, s.Name+"."+leaf.Path)
			}
		}
	}

	if diags.HasErrors() {
		diags.Sort()
		return nil, diags
	}

	return set, diags
}

func checkExpressible(l *Layout, maxAlign int64) error {
	s := l.Struct
	locate := func(field string, err error) *Error {
		return &Error{Struct: s.Name, Field: field, Directive: s.Directive.String(), Pos: s.Pos, Err: err}
	}

	if s.Directive.Kind == Aligned && s.Directive.N > maxAlign {
		return locate("", fmt.Errorf("%w: alignment %d exceeds the largest Go alignment %d",
			ErrNotExpressible, s.Directive.N, maxAlign))
	}

	n := s.Native
	if n == nil {
		return nil
	}

	for i, f := range l.Fields {
		if i < len(n.Offsets) && n.Offsets[i] != f.Offset {
			return locate(f.Field.Name, fmt.Errorf("%w: computed offset %d, Go places it at %d",
				ErrNotExpressible, f.Offset, n.Offsets[i]))
		}
	}

	if n.Size != l.Size || n.Align != l.Align {
		return locate("", fmt.Errorf("%w: computed size %d align %d, Go gives size %d align %d",
			ErrNotExpressible, l.Size, l.Align, n.Size, n.Align))
	}

	return nil
}
