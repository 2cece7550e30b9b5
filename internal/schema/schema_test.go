package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volgen/internal/layout"
)

const blockYAML = `version: "1"
package: regs
structs:
  - name: block
    layout: packed(2)
    doc: Scratch block.
    fields:
      - {name: a, type: u8}
      - {name: b, type: u64}
      - {name: c, type: u8}
      - {name: d, type: u32}
      - e: u8
  - name: Outer
    layout: packed
    fields:
      - {name: tag, type: u8}
      - {name: inner, type: Inner}
      - {name: blocks, type: "[2]block"}
  - name: Inner
    layout: align(8)
    fields:
      - {name: x, type: uint32}
      - {name: y, type: u16}
`

func TestParse(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte(blockYAML))
	require.NoError(t, err)

	assert.Equal(t, "1", f.Version)
	assert.Equal(t, "regs", f.Package)
	require.Len(t, f.Structs, 3)

	block := f.Structs[0]
	assert.Equal(t, "block", block.Name)
	assert.Equal(t, "packed(2)", block.Layout)
	assert.Equal(t, "Scratch block.", block.Doc)
	assert.Equal(t, 4, block.Line)
	require.Len(t, block.Fields, 5)
	assert.Equal(t, FieldDef{Name: "e", Type: "u8", Line: 12}, block.Fields[4])
	assert.Equal(t, 8, block.Fields[0].Line)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`version: "2"`))
	require.ErrorContains(t, err, "unsupported schema version")

	_, err = Parse([]byte("structs: [{name: a, fields: [u8]}]"))
	require.ErrorContains(t, err, "expected field mapping")

	_, err = Parse([]byte("structs: {"))
	require.Error(t, err)

	f, err := Parse([]byte("structs: []"))
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, f.Version)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "regs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(blockYAML), 0o644))

	f, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, f.Structs, 3)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "failed to read schema file")
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte(blockYAML))
	require.NoError(t, err)

	structs, diags := f.Describe(nil, "testdata/regs.yaml")
	require.True(t, diags.IsValid(), diags.Error())
	require.Len(t, structs, 3)

	block, outer, inner := structs[0], structs[1], structs[2]

	assert.Equal(t, "Block", block.Name)
	assert.Equal(t, layout.PackedTo(2), block.Directive)
	assert.Equal(t, "regs.yaml:4", block.Pos)
	assert.True(t, block.Storage)
	assert.Nil(t, block.Native)
	assert.Equal(t, "uint64", block.Fields[1].Type.Name)
	assert.Equal(t, int64(8), block.Fields[1].Type.Size)

	assert.Equal(t, layout.PackedTo(1), outer.Directive)
	assert.Same(t, inner, outer.Fields[1].Type.Struct)

	blocks := outer.Fields[2].Type
	assert.Equal(t, "[2]Block", blocks.Name)
	assert.False(t, blocks.IsStruct())
	assert.Equal(t, int64(36), blocks.Size)
	assert.Equal(t, int64(2), blocks.Align)

	assert.Equal(t, layout.AlignedTo(8), inner.Directive)

	set, diags := layout.Resolve(structs, layout.Options{})
	require.True(t, diags.IsValid(), diags.Error())

	l, ok := set.Lookup("Block")
	require.True(t, ok)
	assert.Equal(t, int64(18), l.Size)
	assert.Equal(t, int64(2), l.Align)

	l, ok = set.Lookup("Outer")
	require.True(t, ok)
	// tag 0, inner 1..9, blocks 9..45
	assert.Equal(t, int64(45), l.Size)
}

func TestDescribe_Diagnostics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		yaml      string
		wantCode  string
		wantField string
		wantHint  []string
	}{
		{
			name:     "missing layout",
			yaml:     "structs: [{name: A, fields: [{a: u8}]}]",
			wantCode: "missing-directive",
		},
		{
			name:     "bad layout",
			yaml:     "structs: [{name: A, layout: packed(3), fields: [{a: u8}]}]",
			wantCode: "invalid-directive",
		},
		{
			name:     "conflicting layout",
			yaml:     "structs: [{name: A, layout: packed align(4), fields: [{a: u8}]}]",
			wantCode: "conflicting-directive",
		},
		{
			name:      "unknown type",
			yaml:      "structs: [{name: A, layout: C, fields: [{a: u33}]}]",
			wantCode:  "unknown-type",
			wantField: "A.a",
			wantHint:  []string{"u32"},
		},
		{
			name:      "unknown struct",
			yaml:      "structs: [{name: Timer, layout: C, fields: [{t: u8}]}, {name: B, layout: C, fields: [{x: \"[2]timer\"}]}]",
			wantCode:  "unknown-type",
			wantField: "B.x",
			wantHint:  []string{"Timer"},
		},
		{
			name:      "bad array",
			yaml:      "structs: [{name: A, layout: C, fields: [{a: \"[x]u8\"}]}]",
			wantCode:  "unknown-type",
			wantField: "A.a",
		},
		{
			name:      "bad field name",
			yaml:      "structs: [{name: A, layout: C, fields: [{name: \"a b\", type: u8}]}]",
			wantCode:  "unsupported-field",
			wantField: "A.a b",
		},
		{
			name:     "duplicate struct",
			yaml:     "structs: [{name: A, layout: C, fields: []}, {name: A, layout: C, fields: []}]",
			wantCode: "duplicate-struct",
		},
		{
			name:     "cycle",
			yaml:     "structs: [{name: A, layout: C, fields: [{b: B}]}, {name: B, layout: C, fields: [{a: \"[1]A\"}]}]",
			wantCode: "recursive-struct",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)

			structs, diags := f.Describe(nil, "regs.yaml")
			assert.Nil(t, structs)
			require.True(t, diags.HasErrors())

			d := diags.Errors[0]
			assert.Equal(t, tt.wantCode, d.Code, d.String())
			assert.Equal(t, tt.wantField, d.FieldPath)

			if tt.wantHint != nil {
				assert.Equal(t, tt.wantHint, d.Suggestions)
			}
		})
	}
}

func TestElemName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "u8", elemName("u8"))
	assert.Equal(t, "Block", elemName("[2]Block"))
	assert.Equal(t, "u16", elemName("[2][3] u16"))
	assert.Equal(t, "[4", elemName("[4"))
}
