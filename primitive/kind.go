package primitive

import (
	"go/types"
	"slices"
)

//go:generate go tool stringer -type=KindEnum -output=kind_string.go

// KindEnum is a scalar type usable as a leaf field of a register block.
type KindEnum int

const (
	_ KindEnum = iota // skip zero value, use it as a default (invalid) value for KindEnum

	KindInt
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindUintptr
	KindFloat32
	KindFloat64
	KindBool

	// KindTotal is a constant that represents the total number of kinds defined
	KindTotal = int(iota)
)

var basicKinds = map[KindEnum]types.BasicKind{
	KindInt:     types.Int,
	KindInt8:    types.Int8,
	KindInt16:   types.Int16,
	KindInt32:   types.Int32,
	KindInt64:   types.Int64,
	KindUint:    types.Uint,
	KindUint8:   types.Uint8,
	KindUint16:  types.Uint16,
	KindUint32:  types.Uint32,
	KindUint64:  types.Uint64,
	KindUintptr: types.Uintptr,
	KindFloat32: types.Float32,
	KindFloat64: types.Float64,
	KindBool:    types.Bool,
}

// schemaNames maps every accepted spelling to its kind. Short names follow
// the register-map convention, long names are the Go ones.
var schemaNames = map[string]KindEnum{
	"u8": KindUint8, "u16": KindUint16, "u32": KindUint32, "u64": KindUint64,
	"i8": KindInt8, "i16": KindInt16, "i32": KindInt32, "i64": KindInt64,
	"f32": KindFloat32, "f64": KindFloat64,
	"usize": KindUintptr, "isize": KindInt,

	"int": KindInt, "int8": KindInt8, "int16": KindInt16, "int32": KindInt32, "int64": KindInt64,
	"uint": KindUint, "uint8": KindUint8, "uint16": KindUint16, "uint32": KindUint32, "uint64": KindUint64,
	"uintptr": KindUintptr, "float32": KindFloat32, "float64": KindFloat64, "bool": KindBool,
	"byte": KindUint8, "rune": KindInt32,
}

// Lookup returns the kind spelled name in a schema file.
func Lookup(name string) (KindEnum, bool) {
	k, ok := schemaNames[name]
	return k, ok
}

// Names returns every accepted spelling, sorted.
func Names() []string {
	names := make([]string, 0, len(schemaNames))
	for name := range schemaNames {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// FromBasicKind returns the kind of a go/types basic type, or zero if the
// basic type cannot be a leaf field (strings, complex numbers, untyped).
func FromBasicKind(bk types.BasicKind) KindEnum {
	for k, v := range basicKinds {
		if v == bk {
			return k
		}
	}

	return 0
}

func (k KindEnum) IsValid() bool {
	_, ok := basicKinds[k]
	return ok
}

// BasicKind returns the go/types kind.
func (k KindEnum) BasicKind() types.BasicKind {
	return basicKinds[k]
}

// GoName returns the Go spelling of the kind, e.g. "uint32".
func (k KindEnum) GoName() string {
	if !k.IsValid() {
		return ""
	}

	return types.Typ[k.BasicKind()].Name()
}

// Size returns the size in bytes under sizes.
func (k KindEnum) Size(sizes types.Sizes) int64 {
	return sizes.Sizeof(types.Typ[k.BasicKind()])
}

// Align returns the natural alignment in bytes under sizes.
func (k KindEnum) Align(sizes types.Sizes) int64 {
	return sizes.Alignof(types.Typ[k.BasicKind()])
}
