package schema

import (
	"errors"
	"fmt"
	"go/token"
	"go/types"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"volgen/internal/common"
	"volgen/internal/diagnostic"
	"volgen/internal/layout"
	"volgen/internal/match"
	"volgen/primitive"
)

type describer struct {
	file    *File
	sizes   types.Sizes
	source  string
	structs []*layout.Struct
	byName  map[string]int
	calc    *layout.Calculator
	diags   diagnostic.Diagnostics
}

// Describe turns the schema into described structs, in the order they appear
// in the file. Every struct is marked for storage generation. source names
// the schema file in positions; sizes describes the target (nil means gc on
// amd64).
//
// Either all structs are returned, or none and the diagnostics hold at least
// one error.
func (f *File) Describe(sizes types.Sizes, source string) ([]*layout.Struct, diagnostic.Diagnostics) {
	if sizes == nil {
		sizes = types.SizesFor("gc", "amd64")
	}

	d := &describer{
		file:    f,
		sizes:   sizes,
		source:  filepath.Base(source),
		structs: make([]*layout.Struct, len(f.Structs)),
		byName:  make(map[string]int, len(f.Structs)),
		calc:    layout.NewCalculator(),
	}

	d.declare()

	order, err := common.TopoSort(len(f.Structs), d.deps)
	if err != nil {
		for _, i := range order {
			d.fail(i, "", fmt.Errorf("%w: %s is on or depends on a cycle of struct fields", layout.ErrRecursiveStruct, d.structs[i].Name))
		}

		return nil, d.result()
	}

	for _, i := range order {
		d.fields(i)
	}

	if d.diags.HasErrors() {
		return nil, d.result()
	}

	return d.structs, d.result()
}

func (d *describer) result() diagnostic.Diagnostics {
	d.diags.Sort()
	return d.diags
}

// declare creates a struct shell per definition so fields can refer to any
// struct of the file.
func (d *describer) declare() {
	for i, def := range d.file.Structs {
		s := &layout.Struct{Name: common.ExportName(def.Name), Pos: d.pos(def.Line), Doc: def.Doc, Storage: true}
		d.structs[i] = s

		if !token.IsIdentifier(s.Name) {
			d.fail(i, "", fmt.Errorf("%w: %q is not a valid struct name", layout.ErrUnsupportedField, def.Name))
			continue
		}

		if j, dup := d.byName[def.Name]; dup {
			d.diags.Add(diagnostic.Diagnostic{
				Severity: diagnostic.DiagnosticError,
				Code:     "duplicate-struct",
				Message:  fmt.Sprintf("struct %s already defined at %s", def.Name, d.structs[j].Pos),
				Struct:   s.Name,
				Pos:      s.Pos,
			})

			continue
		}

		d.byName[def.Name] = i

		if strings.TrimSpace(def.Layout) == "" {
			d.fail(i, "", fmt.Errorf("%w: add a layout: standard, packed(N) or align(N)", layout.ErrMissingDirective))
			continue
		}

		directive, err := layout.ParseDirective(def.Layout)
		if err != nil {
			d.failDirective(i, def.Layout, err)
			continue
		}

		s.Directive = directive
	}
}

// deps lists the structs the fields of struct i refer to.
func (d *describer) deps(i int) []int {
	var out []int

	for _, fd := range d.file.Structs[i].Fields {
		if j, ok := d.byName[elemName(fd.Type)]; ok && !slices.Contains(out, j) {
			out = append(out, j)
		}
	}

	return out
}

// fields resolves the field types of struct i. Structs it depends on have
// already been resolved.
func (d *describer) fields(i int) {
	def := d.file.Structs[i]
	s := d.structs[i]

	for _, fd := range def.Fields {
		name := common.ExportName(fd.Name)
		if !token.IsIdentifier(name) {
			d.fail(i, fd.Name, fmt.Errorf("%w: %q is not a valid field name", layout.ErrUnsupportedField, fd.Name))
			continue
		}

		t, err := d.parseType(strings.TrimSpace(fd.Type))
		if err != nil {
			d.failField(i, fd, err)
			continue
		}

		s.Fields = append(s.Fields, layout.Field{Name: fd.Name, Type: t, Pos: d.pos(fd.Line), Doc: fd.Doc})
	}
}

// parseType resolves a type expression: a primitive, a struct of the file or
// "[N]T".
func (d *describer) parseType(expr string) (layout.Type, error) {
	if rest, ok := strings.CutPrefix(expr, "["); ok {
		lenText, elemText, ok := strings.Cut(rest, "]")
		if !ok {
			return layout.Type{}, fmt.Errorf("%w: malformed array type %q", layout.ErrUnknownType, expr)
		}

		n, err := strconv.ParseInt(strings.TrimSpace(lenText), 10, 64)
		if err != nil || n < 0 {
			return layout.Type{}, fmt.Errorf("%w: bad array length in %q", layout.ErrUnknownType, expr)
		}

		elem, err := d.parseType(strings.TrimSpace(elemText))
		if err != nil {
			return layout.Type{}, err
		}

		if elem.IsStruct() {
			l, err := d.calc.Layout(elem.Struct)
			if err != nil {
				return layout.Type{}, err
			}

			elem = layout.Type{Name: elem.Name, Size: l.Size, Align: l.Align}
		}

		return layout.Type{Name: fmt.Sprintf("[%d]%s", n, elem.Name), Size: n * elem.Size, Align: elem.Align}, nil
	}

	if k, ok := primitive.Lookup(expr); ok {
		return layout.Type{Name: k.GoName(), Size: k.Size(d.sizes), Align: k.Align(d.sizes)}, nil
	}

	if j, ok := d.byName[expr]; ok {
		s := d.structs[j]
		return layout.Type{Name: s.Name, Struct: s}, nil
	}

	return layout.Type{}, &unknownTypeError{name: expr}
}

type unknownTypeError struct {
	name string
}

func (e *unknownTypeError) Error() string {
	return fmt.Sprintf("%s: %q", layout.ErrUnknownType, e.name)
}

func (e *unknownTypeError) Unwrap() error {
	return layout.ErrUnknownType
}

// elemName strips array prefixes from a type expression.
func elemName(expr string) string {
	expr = strings.TrimSpace(expr)

	for strings.HasPrefix(expr, "[") {
		_, rest, ok := strings.Cut(expr, "]")
		if !ok {
			return expr
		}

		expr = strings.TrimSpace(rest)
	}

	return expr
}

func (d *describer) pos(line int) string {
	if line == 0 {
		return d.source
	}

	return d.source + ":" + strconv.Itoa(line)
}

func (d *describer) fail(i int, field string, err error) {
	s := d.structs[i]
	d.diags.Add(layout.Diagnostic(&layout.Error{Struct: s.Name, Field: field, Pos: s.Pos, Err: err}))
}

func (d *describer) failDirective(i int, directive string, err error) {
	s := d.structs[i]
	d.diags.Add(layout.Diagnostic(&layout.Error{Struct: s.Name, Directive: directive, Pos: s.Pos, Err: err}))
}

func (d *describer) failField(i int, fd FieldDef, err error) {
	s := d.structs[i]
	diag := layout.Diagnostic(&layout.Error{Struct: s.Name, Field: fd.Name, Pos: d.pos(fd.Line), Err: err})

	var unknown *unknownTypeError
	if errors.As(err, &unknown) {
		candidates := primitive.Names()
		for _, def := range d.file.Structs {
			candidates = append(candidates, def.Name)
		}

		diag.Suggestions = match.Suggest(elemName(unknown.name), candidates, match.DefaultMaxSuggestions)
	}

	d.diags.Add(diag)
}
