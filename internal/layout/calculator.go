package layout

import (
	"fmt"
)

// Layout is the computed layout of one described struct.
type Layout struct {
	Struct *Struct
	Size   int64
	Align  int64
	Fields []FieldLayout
}

// FieldLayout places one field inside its struct.
type FieldLayout struct {
	Field  *Field
	Offset int64
	// Align is the effective alignment the field was placed with.
	Align int64
	// Nested is the layout of a described struct field.
	Nested *Layout
}

// Size returns the size of the field.
func (f FieldLayout) Size() int64 {
	if f.Nested != nil {
		return f.Nested.Size
	}

	return f.Field.Type.Size
}

// NaturalAlign returns the alignment the field would have outside any packed
// struct.
func (f FieldLayout) NaturalAlign() int64 {
	if f.Nested != nil {
		return f.Nested.Align
	}

	return f.Field.Type.Align
}

// Field returns the layout of the named field.
func (l *Layout) Field(name string) (FieldLayout, bool) {
	for _, f := range l.Fields {
		if f.Field.Name == name {
			return f, true
		}
	}

	return FieldLayout{}, false
}

// NeedsVariant reports whether accessing the struct under an enclosing
// packing bound changes how any of its cells are transported.
func (l *Layout) NeedsVariant(bound int64) bool {
	return bound > 0 && bound < l.Align
}

// Calculator computes and memoizes layouts.
type Calculator struct {
	cache  map[*Struct]*Layout
	active map[*Struct]bool
}

// NewCalculator returns an empty Calculator.
func NewCalculator() *Calculator {
	return &Calculator{
		cache:  make(map[*Struct]*Layout),
		active: make(map[*Struct]bool),
	}
}

// Layout returns the layout of s, computing the layouts of nested described
// structs first. Errors are *Error values wrapping one of the package
// sentinels.
func (c *Calculator) Layout(s *Struct) (*Layout, error) {
	if l, ok := c.cache[s]; ok {
		return l, nil
	}

	if c.active[s] {
		return nil, &Error{Struct: s.Name, Pos: s.Pos, Err: fmt.Errorf("%w: %s contains itself", ErrRecursiveStruct, s.Name)}
	}

	c.active[s] = true
	defer delete(c.active, s)

	if err := s.Directive.Validate(); err != nil {
		return nil, &Error{Struct: s.Name, Directive: s.Directive.String(), Pos: s.Pos, Err: err}
	}

	bound, _ := s.Directive.Bound()

	l := &Layout{Struct: s, Align: 1, Fields: make([]FieldLayout, 0, len(s.Fields))}

	var cursor int64

	seen := make(map[string]bool, len(s.Fields))

	for i := range s.Fields {
		f := &s.Fields[i]

		if err := checkField(f, seen); err != nil {
			return nil, &Error{Struct: s.Name, Field: f.Name, Pos: fieldPos(f, s), Err: err}
		}

		fl := FieldLayout{Field: f}

		if f.Type.IsStruct() {
			nested, err := c.Layout(f.Type.Struct)
			if err != nil {
				return nil, err
			}

			fl.Nested = nested
		}

		fl.Align = EffectiveAlign(fl.NaturalAlign(), bound)
		fl.Offset, cursor = Step(cursor, fl.Size(), fl.Align)
		l.Align = max(l.Align, fl.Align)
		l.Fields = append(l.Fields, fl)
	}

	if s.Directive.Kind == Aligned {
		l.Align = max(l.Align, s.Directive.N)
	}

	// gc gives a struct whose last field is zero-sized and not at offset 0
	// one byte of padding before rounding.
	if n := len(l.Fields); s.Native != nil && n > 0 && l.Fields[n-1].Size() == 0 && l.Fields[n-1].Offset > 0 {
		cursor++
	}

	l.Size = AlignUp(cursor, l.Align)
	c.cache[s] = l

	return l, nil
}

func checkField(f *Field, seen map[string]bool) error {
	switch {
	case f.IsMarker():
		if f.Type.IsStruct() || f.Type.Size != 0 {
			return fmt.Errorf("%w: blank field of size %d", ErrUnsupportedField, f.Type.Size)
		}

		return nil
	case f.Name == "":
		return fmt.Errorf("%w: unnamed field", ErrUnsupportedField)
	case seen[f.Name]:
		return fmt.Errorf("%w: duplicate field %q", ErrUnsupportedField, f.Name)
	case f.Type.IsStruct():
	case !IsPowerOfTwo(f.Type.Align):
		return fmt.Errorf("%w: %s has alignment %d", ErrUnsupportedField, f.Type.Name, f.Type.Align)
	case f.Type.Size < 0 || f.Type.Size%f.Type.Align != 0:
		return fmt.Errorf("%w: %s has size %d, not a multiple of its alignment %d",
			ErrUnsupportedField, f.Type.Name, f.Type.Size, f.Type.Align)
	}

	seen[f.Name] = true

	return nil
}

func fieldPos(f *Field, s *Struct) string {
	if f.Pos != "" {
		return f.Pos
	}

	return s.Pos
}
