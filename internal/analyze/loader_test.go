package analyze

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volgen/internal/diagnostic"
	"volgen/internal/layout"
)

const regsSrc = `package regs

//volgen:struct
type Timer struct {
	Ctrl  uint32
	_     [0]uint64
	Count uint64
	Mode  Mode
	Slots [4]uint16
	Inner Inner
	Raw   Opaque
}

type Mode uint8

// Inner is described after its first use.
//
//volgen:struct C
type Inner struct {
	A uint16
}

//volgen:struct align(8)
type Wide struct {
	_ [0]uint64
	A uint16
}

type Opaque struct{ X, Y uint8 }

//volgen:struct
type Bad struct {
	Name string
	Next *Bad
}

//volgen:struct
type Embeds struct {
	Inner
}

//volgen:register
type Unknown struct{ A uint8 }

//volgen:struct packed(3)
type BadDirective struct{ A uint8 }

//volgen:struct
type NotStruct uint32

type Plain struct{ A uint8 }
`

func describeSource(t *testing.T, src string) (*PackageInfo, diagnostic.Diagnostics) {
	t.Helper()

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "regs.go", src, parser.ParseComments)
	require.NoError(t, err)

	pkg, err := (&types.Config{}).Check("example.com/regs", fset, []*ast.File{file}, nil)
	require.NoError(t, err)

	a, err := NewAnalyzer(Config{GOARCH: "amd64"})
	require.NoError(t, err)

	var diags diagnostic.Diagnostics
	info := a.DescribePackage(fset, []*ast.File{file}, pkg, &diags)

	return info, diags
}

func lookup(info *PackageInfo, name string) *layout.Struct {
	for _, s := range info.Structs {
		if s.Name == name {
			return s
		}
	}

	return nil
}

func TestDescribePackage(t *testing.T) {
	t.Parallel()

	info, _ := describeSource(t, regsSrc)

	require.Len(t, info.Structs, 3)
	assert.Equal(t, "example.com/regs", info.Path)
	assert.Equal(t, "regs", info.Name)

	timer := lookup(info, "Timer")
	require.NotNil(t, timer)
	assert.Equal(t, layout.Directive{}, timer.Directive)
	assert.Equal(t, "regs.go:4", timer.Pos)
	assert.False(t, timer.Storage)

	var names, typeNames []string
	for _, f := range timer.Fields {
		names = append(names, f.Name)
		typeNames = append(typeNames, f.Type.Name)
	}

	assert.Equal(t, []string{"Ctrl", "_", "Count", "Mode", "Slots", "Inner", "Raw"}, names)
	assert.Equal(t, []string{"uint32", "[0]uint64", "uint64", "Mode", "[4]uint16", "Inner", "Opaque"}, typeNames)

	assert.Same(t, lookup(info, "Inner"), timer.Fields[5].Type.Struct)
	assert.False(t, timer.Fields[6].Type.IsStruct())
	assert.Equal(t, int64(2), timer.Fields[6].Type.Size)

	require.NotNil(t, timer.Native)
	assert.Equal(t, []int64{0, 8, 8, 16, 18, 26, 28}, timer.Native.Offsets)
	assert.Equal(t, int64(32), timer.Native.Size)
	assert.Equal(t, int64(8), timer.Native.Align)

	assert.Equal(t, layout.AlignedTo(8), lookup(info, "Wide").Directive)
	assert.Nil(t, lookup(info, "Plain"))
	assert.Empty(t, info.Imports)
}

func TestDescribePackage_ResolvesNatively(t *testing.T) {
	t.Parallel()

	info, _ := describeSource(t, regsSrc)

	set, diags := layout.Resolve(info.Structs, layout.Options{Sizes: types.SizesFor("gc", "amd64")})
	require.True(t, diags.IsValid(), diags.Error())

	timer, ok := set.Lookup("Timer")
	require.True(t, ok)
	assert.Equal(t, int64(32), timer.Size)

	wide, ok := set.Lookup("Wide")
	require.True(t, ok)
	assert.Equal(t, int64(8), wide.Align)
}

func TestDescribePackage_TrailingZeroSizedField(t *testing.T) {
	t.Parallel()

	info, diags := describeSource(t, `package regs

//volgen:struct
type Tail struct {
	A uint32
	Z [0]uint64
}
`)
	require.True(t, diags.IsValid(), diags.Error())

	tail := lookup(info, "Tail")
	require.NotNil(t, tail)
	require.NotNil(t, tail.Native)
	assert.Equal(t, int64(16), tail.Native.Size)

	set, diags := layout.Resolve(info.Structs, layout.Options{Sizes: types.SizesFor("gc", "amd64")})
	require.True(t, diags.IsValid(), diags.Error())

	l, ok := set.Lookup("Tail")
	require.True(t, ok)
	assert.Equal(t, int64(16), l.Size)
}

func TestDescribePackage_Diagnostics(t *testing.T) {
	t.Parallel()

	_, diags := describeSource(t, regsSrc)
	diags.Sort()

	type found struct{ structName, field, code string }

	var got []found
	for _, d := range diags.Errors {
		got = append(got, found{d.Struct, d.FieldPath, d.Code})
	}

	assert.Equal(t, []found{
		{"Bad", "Bad.Name", "unsupported-field"},
		{"Bad", "Bad.Next", "unsupported-field"},
		{"BadDirective", "", "invalid-directive"},
		{"Embeds", "Embeds.Inner", "unsupported-field"},
		{"NotStruct", "", "unsupported-field"},
		{"Unknown", "", "unknown-marker"},
	}, got)

	assert.Contains(t, diags.Errors[0].Message, "Bad.Name has type string")
	assert.NotEmpty(t, diags.Errors[0].Pos)
}

func TestParseMarkers(t *testing.T) {
	t.Parallel()

	group := func(lines ...string) *ast.CommentGroup {
		g := &ast.CommentGroup{}
		for _, l := range lines {
			g.List = append(g.List, &ast.Comment{Text: l})
		}

		return g
	}

	tests := []struct {
		name      string
		doc       *ast.CommentGroup
		want      layout.Directive
		annotated bool
		wantErr   error
	}{
		{"no doc", nil, layout.Directive{}, false, nil},
		{"plain comment", group("// Timer block."), layout.Directive{}, false, nil},
		{"standard", group("// Timer block.", "//", "//volgen:struct"), layout.Directive{}, true, nil},
		{"packed", group("//volgen:struct packed"), layout.PackedTo(1), true, nil},
		{"packed C", group("//volgen:struct C, packed(2)"), layout.PackedTo(2), true, nil},
		{"align", group("//volgen:struct align(16)"), layout.AlignedTo(16), true, nil},
		{"unknown", group("//volgen:mirror"), layout.Directive{}, false, ErrUnknownMarker},
		{"twice", group("//volgen:struct", "//volgen:struct packed"), layout.Directive{}, false, layout.ErrConflictingDirective},
		{"conflict", group("//volgen:struct packed align(4)"), layout.Directive{}, false, layout.ErrConflictingDirective},
		{"spaced comment", group("// volgen:struct"), layout.Directive{}, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d, annotated, err := parseMarkers(tt.doc)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.annotated, annotated)
			assert.Equal(t, tt.want, d)
		})
	}
}

func TestNewAnalyzer(t *testing.T) {
	t.Parallel()

	a, err := NewAnalyzer(Config{GOARCH: "386"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), a.Sizes().Alignof(types.Typ[types.Uint64]))

	_, err = NewAnalyzer(Config{GOARCH: "z80"})
	require.Error(t, err)
}

func TestAnalyzer_LoadPackages(t *testing.T) {
	t.Parallel()

	a, err := NewAnalyzer(Config{})
	require.NoError(t, err)

	graph, err := a.LoadPackages("volgen/examples/parent")
	require.NoError(t, err)
	require.True(t, graph.Diagnostics.IsValid(), graph.Diagnostics.Error())

	require.Len(t, graph.Packages, 1)

	pkg := graph.Packages[0]
	assert.Equal(t, "volgen/examples/parent", pkg.Path)
	assert.Equal(t, "parent", pkg.Name)
	assert.NotEmpty(t, pkg.Dir)

	for _, name := range []string{"Parent", "Child1", "Child2"} {
		assert.NotNil(t, lookup(pkg, name), name)
	}

	assert.Len(t, graph.Structs(), len(pkg.Structs))
}

func TestTypePath(t *testing.T) {
	t.Parallel()

	p := NewTypePath("Regs")
	assert.Equal(t, "Regs", p.String())

	slots := p.Field("Slots")
	assert.Equal(t, "Regs.Slots", slots.String())
	assert.Equal(t, "Regs.Slots[].Addr", slots.Elem().Field("Addr").String())
	assert.Equal(t, "Regs.Slots", slots.String(), "paths are immutable")
}
