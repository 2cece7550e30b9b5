package gen

import (
	"fmt"
	"strconv"

	"volgen/internal/common"
	"volgen/internal/diagnostic"
	"volgen/internal/layout"
)

// reserved lists the methods every mirror already has.
var reserved = map[string]bool{
	"Addr":  true,
	"Span":  true,
	"Split": true,
}

// MirrorName returns the name of the mirror of the named struct when reached
// under the given enclosing packing bound. A zero bound names the base mirror.
func MirrorName(structName string, bound int64) string {
	if bound == 0 {
		return structName + "Volatile"
	}

	return structName + "VolatilePacked" + strconv.FormatInt(bound, 10)
}

// AccessorName returns the method name of a field accessor.
func AccessorName(field string) string {
	return common.ExportName(field)
}

// Check reports accessor names that collide with each other or with the
// methods every mirror has, and package-level names the generated file
// would declare twice.
func Check(set *layout.Set) diagnostic.Diagnostics {
	var diags diagnostic.Diagnostics

	layouts := reachable(set)
	checkDecls(set, layouts, &diags)

	for _, l := range layouts {
		s := l.Struct
		seen := make(map[string]string, len(l.Fields))

		for _, f := range l.Fields {
			if f.Field.IsMarker() {
				continue
			}

			name := AccessorName(f.Field.Name)

			switch prev, dup := seen[name]; {
			case reserved[name]:
				diags.Add(collision(s, f.Field, fmt.Sprintf("accessor %s clashes with the mirror method of the same name", name)))
			case dup:
				diags.Add(collision(s, f.Field, fmt.Sprintf("accessor %s is also the accessor of field %s", name, prev)))
			default:
				seen[name] = f.Field.Name
			}
		}
	}

	diags.Sort()

	return diags
}

// checkDecls claims the name of every described struct and every
// package-level name the generated file declares.
func checkDecls(set *layout.Set, layouts []*layout.Layout, diags *diagnostic.Diagnostics) {
	owners := make(map[string]string)

	claim := func(s *layout.Struct, name, kind string) {
		what := kind + " " + name
		if s.Name != name {
			what += " of " + s.Name
		}

		if prev, dup := owners[name]; dup {
			diags.Add(diagnostic.Diagnostic{
				Severity:  diagnostic.DiagnosticError,
				Code:      "name-collision",
				Message:   fmt.Sprintf("%s clashes with %s", what, prev),
				Struct:    s.Name,
				Directive: s.Directive.String(),
				Pos:       s.Pos,
			})

			return
		}

		owners[name] = what
	}

	for _, l := range layouts {
		claim(l.Struct, l.Struct.Name, "struct")
	}

	for _, l := range layouts {
		mirror := MirrorName(l.Struct.Name, 0)

		claim(l.Struct, mirror, "mirror")
		claim(l.Struct, mirror+"Of", "constructor")
		claim(l.Struct, mirror+"At", "constructor")
		claim(l.Struct, mirror+"Fields", "field views")
	}

	for _, vt := range set.Variants() {
		mirror := MirrorName(vt.Layout.Struct.Name, vt.Bound)

		claim(vt.Layout.Struct, mirror, "mirror")
		claim(vt.Layout.Struct, mirror+"Fields", "field views")
	}
}

func collision(s *layout.Struct, f *layout.Field, msg string) diagnostic.Diagnostic {
	pos := f.Pos
	if pos == "" {
		pos = s.Pos
	}

	return diagnostic.Diagnostic{
		Severity:  diagnostic.DiagnosticError,
		Code:      "name-collision",
		Message:   msg,
		Struct:    s.Name,
		FieldPath: f.Name,
		Directive: s.Directive.String(),
		Pos:       pos,
	}
}

// reachable returns the layouts of the set and of every struct nested in
// them, dependencies first.
func reachable(set *layout.Set) []*layout.Layout {
	var all []*layout.Layout

	index := make(map[*layout.Layout]int)

	var add func(l *layout.Layout)

	add = func(l *layout.Layout) {
		if _, ok := index[l]; ok {
			return
		}

		index[l] = len(all)
		all = append(all, l)

		for _, f := range l.Fields {
			if f.Nested != nil {
				add(f.Nested)
			}
		}
	}

	for _, l := range set.Layouts {
		add(l)
	}

	order, err := common.TopoSort(len(all), func(i int) []int {
		var deps []int

		for _, f := range all[i].Fields {
			if f.Nested != nil {
				deps = append(deps, index[f.Nested])
			}
		}

		return deps
	})
	if err != nil {
		// Layouts are acyclic once resolved.
		return all
	}

	out := make([]*layout.Layout, len(order))
	for i, j := range order {
		out[i] = all[j]
	}

	return out
}
