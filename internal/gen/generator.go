package gen

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"sort"
	"strings"

	"go.uber.org/zap"

	"volgen/internal/common"
	"volgen/internal/layout"
	"volgen/internal/logging"
)

var (
	// ErrNothingToGenerate is returned by Generate for an empty layout set.
	ErrNothingToGenerate = errors.New("no described structs")
	// ErrNameCollision is returned by Generate when two accessors of a mirror
	// would share a name.
	ErrNameCollision = errors.New("accessor name collision")
)

// GeneratorConfig holds configuration for code generation.
type GeneratorConfig struct {
	// PackageName is the name of the generated package.
	PackageName string
	// OutputDir is the directory where generated files are written.
	OutputDir string
	// Filename is the name of the generated file.
	Filename string
	// VolatileImport is the import path of the volatile cell package.
	VolatileImport string
	// GenerateComments enables doc comments on generated declarations.
	GenerateComments bool
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		PackageName:      "regs",
		OutputDir:        ".",
		Filename:         "volatile_gen.go",
		VolatileImport:   "volgen/volatile",
		GenerateComments: true,
	}
}

// Generator generates volatile mirrors from resolved layouts.
type Generator struct {
	config GeneratorConfig
}

// NewGenerator creates a new Generator with the given configuration.
func NewGenerator(config GeneratorConfig) *Generator {
	def := DefaultGeneratorConfig()
	if config.Filename == "" {
		config.Filename = def.Filename
	}

	if config.VolatileImport == "" {
		config.VolatileImport = def.VolatileImport
	}

	return &Generator{config: config}
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// Filename is the name of the file (e.g., "volatile_gen.go").
	Filename string
	// Content is the formatted Go source code.
	Content []byte
}

// Input is what one generated file is built from.
type Input struct {
	Set *layout.Set
	// Imports maps the import path of every package a leaf field type refers
	// to, to its package name.
	Imports map[string]string
}

// Generate emits the mirrors of every layout in the input as one file.
// Accessor name collisions are reported before any code is produced.
func (g *Generator) Generate(in Input) (*GeneratedFile, error) {
	if in.Set == nil || len(in.Set.Layouts) == 0 {
		return nil, ErrNothingToGenerate
	}

	if diags := Check(in.Set); diags.HasErrors() {
		return nil, fmt.Errorf("%w: %w", ErrNameCollision, diags.Error())
	}

	data := g.buildTemplateData(in)

	var buf bytes.Buffer
	if err := mirrorTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		if g.config.OutputDir != "" {
			_ = writeDebugUnformatted(g.config.OutputDir, g.config.Filename, buf.Bytes())
		}

		return &GeneratedFile{
			Filename: g.config.Filename,
			Content:  buf.Bytes(),
		}, fmt.Errorf("formatting code: %w", err)
	}

	logging.Logger().Debug("mirrors generated",
		zap.String("package", g.config.PackageName),
		zap.String("file", g.config.Filename),
		zap.Int("mirrors", len(data.Mirrors)),
		zap.Int("storage", len(data.Storage)))

	return &GeneratedFile{
		Filename: g.config.Filename,
		Content:  formatted,
	}, nil
}

// templateData is the root object the mirror template renders.
type templateData struct {
	PackageName string
	StdImports  []string
	ExtImports  []string
	Storage     []storageData
	Mirrors     []mirrorData
	Asserts     []assertData
	// V qualifies identifiers of the volatile package.
	V string
}

type storageData struct {
	Doc    string
	Name   string
	Marker string // element type of the zero-length alignment field
	Size   int64
}

type mirrorData struct {
	Doc       string
	Type      string
	Struct    string
	Root      bool
	OfDoc     string
	AtDoc     string
	Align     int64
	Methods   []methodData
	Fields    []methodData
	FieldsDoc string
	SplitDoc  string
	Spans     string
}

type methodData struct {
	Doc    string
	Name   string
	Result string
	Expr   string
}

type assertData struct {
	Struct  string
	Mirror  string
	Size    int64
	Align   int64
	Offsets []offsetData
}

type offsetData struct {
	Field  string
	Offset int64
}

func (g *Generator) buildTemplateData(in Input) *templateData {
	v := common.PkgAlias(g.config.VolatileImport)
	data := &templateData{PackageName: g.config.PackageName, V: v}
	data.StdImports, data.ExtImports = g.imports(in.Imports)

	layouts := reachable(in.Set)

	for _, l := range layouts {
		s := l.Struct
		if s.Storage {
			data.Storage = append(data.Storage, storageData{
				Doc:    g.doc(fmt.Sprintf("%s holds the %d bytes of a register block with layout %s.", s.Name, l.Size, s.Directive), s.Doc),
				Name:   s.Name,
				Marker: alignMarker(l.Align),
				Size:   l.Size,
			})
		}

		data.Mirrors = append(data.Mirrors, g.buildMirror(l, 0, v))
		data.Asserts = append(data.Asserts, buildAssert(l))
	}

	for _, vt := range in.Set.Variants() {
		data.Mirrors = append(data.Mirrors, g.buildMirror(vt.Layout, vt.Bound, v))
	}

	return data
}

func (g *Generator) buildMirror(l *layout.Layout, bound int64, v string) mirrorData {
	s := l.Struct
	name := MirrorName(s.Name, bound)

	m := mirrorData{
		Type:      name,
		Struct:    s.Name,
		Root:      bound == 0,
		Align:     l.Align,
		FieldsDoc: g.doc(fmt.Sprintf("%sFields holds the views of every field of %s.", name, article(s.Name))),
		SplitDoc: g.doc(fmt.Sprintf("Split returns the views of every field of the %s. "+
			"The views are disjoint and may be used independently.", s.Name)),
	}

	if m.Root {
		m.Doc = g.doc(fmt.Sprintf("%s is a volatile view of %s.", name, article(s.Name)), s.Doc)
		m.OfDoc = g.doc(fmt.Sprintf("%sOf returns a volatile view of *p.", name))
		m.AtDoc = g.doc(fmt.Sprintf("%sAt returns a volatile view of the %d bytes at base, "+
			"which must be %d-byte aligned.", name, l.Size, l.Align))
	} else {
		m.Doc = g.doc(fmt.Sprintf("%s is a volatile view of %s inside a packed(%d) struct.", name, article(s.Name), bound))
	}

	m.Methods = append(m.Methods,
		methodData{
			Doc:    g.doc("Addr returns the address of the view."),
			Name:   "Addr",
			Result: "unsafe.Pointer",
			Expr:   "v.base",
		},
		methodData{
			Doc:    g.doc("Span returns the bytes the view covers."),
			Name:   "Span",
			Result: v + ".Span",
			Expr:   fmt.Sprintf("%s.SpanOf(v.base, %d)", v, l.Size),
		})

	inner := bound
	if n, ok := s.Directive.Bound(); ok && (inner == 0 || n < inner) {
		inner = n
	}

	spans := make([]string, 0, len(l.Fields))

	for _, f := range l.Fields {
		if f.Field.IsMarker() {
			continue
		}

		acc := methodData{Name: AccessorName(f.Field.Name)}

		if f.Nested != nil {
			next := inner
			if !f.Nested.NeedsVariant(next) {
				next = 0
			}

			acc.Result = MirrorName(f.Nested.Struct.Name, next)
			acc.Expr = fmt.Sprintf("%s{base: unsafe.Add(v.base, %d)}", acc.Result, f.Offset)
			acc.Doc = g.doc(fmt.Sprintf("%s returns the view of %s at offset %d.", acc.Name, f.Field.Name, f.Offset), f.Field.Doc)
		} else {
			t := f.Field.Type.Name
			acc.Result = fmt.Sprintf("%s.Cell[%s]", v, t)
			acc.Expr = fmt.Sprintf("%s.CellAt[%s](v.base, %d, %s)", v, t, f.Offset, carrierExpr(v, inner, f.Field.Type.Align))
			acc.Doc = g.doc(fmt.Sprintf("%s returns the cell of %s at offset %d.", acc.Name, f.Field.Name, f.Offset), f.Field.Doc)
		}

		m.Methods = append(m.Methods, acc)
		m.Fields = append(m.Fields, acc)
		spans = append(spans, "f."+acc.Name+".Span()")
	}

	m.Spans = strings.Join(spans, ", ")

	return m
}

// carrierExpr spells the carrier of a leaf of the given natural alignment
// under packing bound (0 for none).
func carrierExpr(v string, bound, natural int64) string {
	if bound == 0 || bound >= natural {
		return v + ".Natural"
	}

	return fmt.Sprintf("%s.Packed(%d)", v, bound)
}

func buildAssert(l *layout.Layout) assertData {
	s := l.Struct
	a := assertData{
		Struct: s.Name,
		Mirror: MirrorName(s.Name, 0),
		Size:   l.Size,
		Align:  l.Align,
	}

	if s.Storage {
		return a
	}

	for _, f := range l.Fields {
		if f.Field.IsMarker() {
			continue
		}

		a.Offsets = append(a.Offsets, offsetData{Field: f.Field.Name, Offset: f.Offset})
	}

	return a
}

// alignMarker returns the element type whose zero-length array gives a
// storage type the alignment align.
func alignMarker(align int64) string {
	switch align {
	case 2:
		return "uint16"
	case 4:
		return "uint32"
	case 8:
		return "uint64"
	default:
		return ""
	}
}

// imports returns the import specs of the file, standard library first.
func (g *Generator) imports(extra map[string]string) (std, ext []string) {
	specs := map[string]string{
		"unsafe":                "",
		g.config.VolatileImport: "",
	}

	for path, name := range extra {
		if name != common.PkgAlias(path) {
			specs[path] = name
		} else {
			specs[path] = ""
		}
	}

	paths := make([]string, 0, len(specs))
	for p := range specs {
		paths = append(paths, p)
	}

	sort.Strings(paths)

	local := firstElem(g.config.VolatileImport)

	for _, p := range paths {
		spec := fmt.Sprintf("%q", p)
		if alias := specs[p]; alias != "" {
			spec = alias + " " + spec
		}

		if isStd(p, local) {
			std = append(std, spec)
		} else {
			ext = append(ext, spec)
		}
	}

	return std, ext
}

// article prefixes name with "a" or "an".
func article(name string) string {
	if name != "" && strings.ContainsRune("AEIOUaeiou", rune(name[0])) {
		return "an " + name
	}

	return "a " + name
}

// isStd reports whether path looks like a standard library package: its first
// element has no dot and is not the first element of the module's own paths.
func isStd(path, local string) bool {
	first := firstElem(path)
	return !strings.Contains(first, ".") && first != local
}

func firstElem(path string) string {
	first, _, _ := strings.Cut(path, "/")
	return first
}

// doc joins paragraphs into a comment body, or returns "" when comments are
// disabled.
func (g *Generator) doc(paragraphs ...string) string {
	if !g.config.GenerateComments {
		return ""
	}

	var parts []string

	for _, p := range paragraphs {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	return strings.Join(parts, "\n\n")
}
