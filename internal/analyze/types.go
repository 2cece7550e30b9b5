package analyze

import (
	"volgen/internal/diagnostic"
	"volgen/internal/layout"
)

// TypeGraph holds every described struct found in the loaded packages.
type TypeGraph struct {
	// Packages lists the packages that declare at least one described struct,
	// in load order.
	Packages []*PackageInfo
	// Diagnostics collects marker and field problems. Structs with errors are
	// left out of Packages.
	Diagnostics diagnostic.Diagnostics
}

// Structs returns the described structs of every package.
func (g *TypeGraph) Structs() []*layout.Struct {
	var out []*layout.Struct
	for _, p := range g.Packages {
		out = append(out, p.Structs...)
	}

	return out
}

// PackageInfo holds the described structs of one package.
type PackageInfo struct {
	Path    string // Import path
	Name    string // Package name
	Dir     string // Directory of the package sources
	Structs []*layout.Struct
	// Imports maps the import path of every package referenced by a leaf
	// field type to its name.
	Imports map[string]string
}
