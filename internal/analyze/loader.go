package analyze

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"

	"volgen/internal/common"
	"volgen/internal/diagnostic"
	"volgen/internal/layout"
	"volgen/internal/logging"
	"volgen/primitive"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

const markerPrefix = "//volgen:"

// ErrUnknownMarker is reported for a //volgen: comment other than
// //volgen:struct.
var ErrUnknownMarker = errors.New("unknown volgen marker")

// Config selects where and for which target packages are loaded.
type Config struct {
	// Dir is the directory the go command runs in. Empty means the current
	// directory.
	Dir string
	// GOARCH is the target architecture. Empty means the host's.
	GOARCH string
}

// Analyzer loads Go packages and describes their annotated structs.
type Analyzer struct {
	cfg   Config
	sizes types.Sizes
}

// NewAnalyzer creates a new Analyzer. It fails for an architecture the gc
// compiler does not know.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	if cfg.GOARCH == "" {
		cfg.GOARCH = runtime.GOARCH
	}

	sizes := types.SizesFor("gc", cfg.GOARCH)
	if sizes == nil {
		return nil, fmt.Errorf("unknown GOARCH %q", cfg.GOARCH)
	}

	return &Analyzer{cfg: cfg, sizes: sizes}, nil
}

// Sizes returns the target's type sizes.
func (a *Analyzer) Sizes() types.Sizes {
	return a.sizes
}

// LoadPackages loads the packages matching patterns and describes their
// annotated structs. Load and type-check failures are returned as an error;
// problems with the annotations themselves end up in the graph's
// Diagnostics.
func (a *Analyzer) LoadPackages(patterns ...string) (*TypeGraph, error) {
	cfg := &packages.Config{
		Mode: LoadMode,
		Dir:  a.cfg.Dir,
		Env:  append(os.Environ(), "GOARCH="+a.cfg.GOARCH),
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var errs []error

	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	})

	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %w", errors.Join(errs...))
	}

	graph := &TypeGraph{}

	for _, pkg := range pkgs {
		info := a.DescribePackage(pkg.Fset, pkg.Syntax, pkg.Types, &graph.Diagnostics)
		if len(info.Structs) == 0 {
			continue
		}

		if len(pkg.GoFiles) > 0 {
			info.Dir = filepath.Dir(pkg.GoFiles[0])
		}

		graph.Packages = append(graph.Packages, info)

		logging.Logger().Debug("package described",
			zap.String("package", pkg.PkgPath),
			zap.Int("structs", len(info.Structs)))
	}

	return graph, nil
}

type candidate struct {
	obj *types.TypeName
	s   *layout.Struct
}

type describer struct {
	pkg       *types.Package
	fset      *token.FileSet
	sizes     types.Sizes
	described map[*types.TypeName]*layout.Struct
	imports   map[string]string
	diags     *diagnostic.Diagnostics
}

// DescribePackage describes the annotated structs of one type-checked
// package. Problems are added to diags and the offending structs left out.
func (a *Analyzer) DescribePackage(
	fset *token.FileSet, files []*ast.File, pkg *types.Package, diags *diagnostic.Diagnostics,
) *PackageInfo {
	d := &describer{
		pkg:       pkg,
		fset:      fset,
		sizes:     a.sizes,
		described: make(map[*types.TypeName]*layout.Struct),
		imports:   make(map[string]string),
		diags:     diags,
	}

	candidates := d.collect(files)

	info := &PackageInfo{Path: pkg.Path(), Name: pkg.Name(), Imports: d.imports}

	for _, c := range candidates {
		if d.describe(c) {
			info.Structs = append(info.Structs, c.s)
		}
	}

	return info
}

// collect finds the annotated type declarations of files. Every annotated
// name is registered before any field is examined so struct fields can
// refer to structs declared later in the package.
func (d *describer) collect(files []*ast.File) []candidate {
	var out []candidate

	for _, file := range files {
		for _, decl := range file.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}

			for _, spec := range gd.Specs {
				ts := spec.(*ast.TypeSpec)

				doc := ts.Doc
				if doc == nil && common.IsSingle(gd.Specs) {
					doc = gd.Doc
				}

				directive, annotated, err := parseMarkers(doc)
				if err != nil {
					d.fail(ts.Name.Name, "", "", d.pos(ts.Pos()), err)
					continue
				}

				if !annotated {
					continue
				}

				obj, _ := d.pkg.Scope().Lookup(ts.Name.Name).(*types.TypeName)
				if obj == nil {
					continue
				}

				s := &layout.Struct{Name: ts.Name.Name, Directive: directive, Pos: d.pos(ts.Pos())}
				d.described[obj] = s
				out = append(out, candidate{obj: obj, s: s})
			}
		}
	}

	return out
}

// parseMarkers reads the //volgen: markers of a doc comment.
func parseMarkers(doc *ast.CommentGroup) (layout.Directive, bool, error) {
	if doc == nil {
		return layout.Directive{}, false, nil
	}

	var (
		directive layout.Directive
		found     bool
	)

	for _, c := range doc.List {
		text, ok := strings.CutPrefix(c.Text, markerPrefix)
		if !ok {
			continue
		}

		name, arg, _ := strings.Cut(text, " ")
		if name != "struct" {
			return layout.Directive{}, false, fmt.Errorf("%w: %s%s", ErrUnknownMarker, markerPrefix, name)
		}

		if found {
			return layout.Directive{}, false, fmt.Errorf("%w: %sstruct given twice", layout.ErrConflictingDirective, markerPrefix)
		}

		d, err := layout.ParseDirective(strings.TrimSpace(arg))
		if err != nil {
			return layout.Directive{}, false, err
		}

		directive, found = d, true
	}

	return directive, found, nil
}

// describe fills in the fields and native layout of c.s.
func (d *describer) describe(c candidate) bool {
	named, _ := c.obj.Type().(*types.Named)
	if named != nil && named.TypeParams().Len() > 0 {
		d.fail(c.s.Name, "", "", c.s.Pos, fmt.Errorf("%w: generic type", layout.ErrUnsupportedField))
		return false
	}

	st, ok := c.obj.Type().Underlying().(*types.Struct)
	if !ok {
		d.fail(c.s.Name, "", "", c.s.Pos, fmt.Errorf("%w: %s is not a struct", layout.ErrUnsupportedField, c.s.Name))
		return false
	}

	valid := true
	vars := make([]*types.Var, st.NumFields())

	for i := range st.NumFields() {
		v := st.Field(i)
		vars[i] = v
		pos := d.pos(v.Pos())

		if v.Embedded() {
			d.fail(c.s.Name, v.Name(), "", pos, fmt.Errorf("%w: embedded field", layout.ErrUnsupportedField))
			valid = false

			continue
		}

		t, err := d.fieldType(v.Type(), NewTypePath(c.s.Name).Field(v.Name()))
		if err != nil {
			d.fail(c.s.Name, v.Name(), "", pos, err)
			valid = false

			continue
		}

		c.s.Fields = append(c.s.Fields, layout.Field{Name: v.Name(), Type: t, Pos: pos})
	}

	if !valid {
		return false
	}

	c.s.Native = &layout.NativeLayout{
		Size:    d.sizes.Sizeof(st),
		Align:   d.sizes.Alignof(st),
		Offsets: d.sizes.Offsetsof(vars),
	}

	return true
}

// fieldType describes the type of a field: a described struct of the same
// package, or a fixed-layout leaf.
func (d *describer) fieldType(t types.Type, path *TypePath) (layout.Type, error) {
	t = types.Unalias(t)

	if named, ok := t.(*types.Named); ok {
		if s, ok := d.described[named.Obj()]; ok {
			return layout.Type{Name: s.Name, Size: d.sizes.Sizeof(t), Align: d.sizes.Alignof(t), Struct: s}, nil
		}
	}

	if err := fixedLayout(t, path); err != nil {
		return layout.Type{}, err
	}

	return layout.Type{
		Name:  types.TypeString(t, qualifier(d.pkg, d.imports)),
		Size:  d.sizes.Sizeof(t),
		Align: d.sizes.Alignof(t),
	}, nil
}

// fixedLayout rejects types whose values hold references: pointers, slices,
// maps, strings, interfaces, channels, functions.
func fixedLayout(t types.Type, path *TypePath) error {
	switch u := t.Underlying().(type) {
	case *types.Basic:
		if primitive.FromBasicKind(u.Kind()) == 0 {
			return fmt.Errorf("%w: %s has type %s, which is not fixed-layout", layout.ErrUnsupportedField, path, t)
		}

		return nil
	case *types.Array:
		return fixedLayout(u.Elem(), path.Elem())
	case *types.Struct:
		for i := range u.NumFields() {
			f := u.Field(i)
			if err := fixedLayout(f.Type(), path.Field(f.Name())); err != nil {
				return err
			}
		}

		return nil
	default:
		return fmt.Errorf("%w: %s has type %s, which is not fixed-layout", layout.ErrUnsupportedField, path, t)
	}
}

func (d *describer) pos(p token.Pos) string {
	if !p.IsValid() || d.fset == nil {
		return ""
	}

	position := d.fset.Position(p)

	return fmt.Sprintf("%s:%d", filepath.Base(position.Filename), position.Line)
}

func (d *describer) fail(structName, field, directive, pos string, err error) {
	diag := layout.Diagnostic(&layout.Error{
		Struct:    structName,
		Field:     field,
		Directive: directive,
		Pos:       pos,
		Err:       err,
	})

	if errors.Is(err, ErrUnknownMarker) {
		diag.Code = "unknown-marker"
	}

	d.diags.Add(diag)
}
