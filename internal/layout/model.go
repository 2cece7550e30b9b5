package layout

// Type is the type of a field as the generator will spell it in Go.
type Type struct {
	// Name is the Go type expression, e.g. "uint32", "[4]uint16" or "Child1".
	Name  string
	Size  int64
	Align int64
	// Struct is set when the field's type is itself a described struct; its
	// accessor then yields a nested mirror instead of a cell.
	Struct *Struct
}

// IsStruct reports whether t is a described struct.
func (t Type) IsStruct() bool {
	return t.Struct != nil
}

// Field is one named field of a described struct.
type Field struct {
	Name string
	Type Type
	Pos  string
	Doc  string
}

// IsMarker reports whether f is a zero-sized blank field, kept only for the
// alignment it imposes. Markers get no accessor.
func (f Field) IsMarker() bool {
	return f.Name == "_"
}

// NativeLayout is the layout the Go compiler gives a declared struct.
type NativeLayout struct {
	Size    int64
	Align   int64
	Offsets []int64 // indexed like Struct.Fields
}

// Struct is a described struct.
type Struct struct {
	Name      string
	Directive Directive
	Fields    []Field
	Pos       string
	Doc       string

	// Native is set for structs declared in Go source; their computed layout
	// must match it.
	Native *NativeLayout

	// Storage is set when the struct has no Go declaration and the generator
	// must emit a storage type of the computed size and alignment.
	Storage bool
}
