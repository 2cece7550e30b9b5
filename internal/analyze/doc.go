// Package analyze turns annotated Go structs into described structs.
//
// It loads packages with golang.org/x/tools/go/packages and looks for type
// declarations whose doc comment carries a volgen marker:
//
//	//volgen:struct            standard C layout
//	//volgen:struct align(8)   any directive layout.ParseDirective accepts
//
// Field sizes, alignments and the native offsets come from go/types for the
// target architecture, so a directive that disagrees with what the compiler
// does is caught before any code is generated.
//
// Key types:
//   - TypeGraph: described structs grouped by package, plus diagnostics
//   - PackageInfo: one package's described structs and the imports their
//     field types need
//   - TypePath: readable dotted paths for diagnostics
package analyze
