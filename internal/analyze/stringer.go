package analyze

import (
	"go/types"
	"strings"
)

// TypePath builds a readable path string for a field.
// Examples:
//   - "Regs" for a struct
//   - "Regs.Ctrl" for a field
//   - "Regs.Slots[].Addr" for a field of an array element
type TypePath struct {
	parts []string
}

// NewTypePath creates a new TypePath from a root type name.
func NewTypePath(root string) *TypePath {
	return &TypePath{
		parts: []string{root},
	}
}

// Field appends a field name to the path.
func (p *TypePath) Field(name string) *TypePath {
	return &TypePath{
		parts: append(append([]string{}, p.parts...), name),
	}
}

// Elem marks the last element as an array element: "Slots" becomes "Slots[]".
func (p *TypePath) Elem() *TypePath {
	parts := append([]string{}, p.parts...)
	parts[len(parts)-1] += "[]"

	return &TypePath{parts: parts}
}

// String returns the full path string.
func (p *TypePath) String() string {
	return strings.Join(p.parts, ".")
}

// qualifier spells types of pkg unqualified and records every other package
// it is asked about in imports.
func qualifier(pkg *types.Package, imports map[string]string) types.Qualifier {
	return func(other *types.Package) string {
		if other == pkg {
			return ""
		}

		imports[other.Path()] = other.Name()

		return other.Name()
	}
}
