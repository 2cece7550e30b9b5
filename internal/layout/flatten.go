package layout

// Leaf is one cell of a flattened layout.
type Leaf struct {
	Path      string // dotted field names from the root struct
	Type      Type
	Offset    int64 // from the start of the root struct
	Chain     Chain
	Transport int64
}

// Flatten lists every leaf field reachable from l, in declaration order.
func Flatten(l *Layout) []Leaf {
	var leaves []Leaf

	flatten(l, "", 0, Chain(nil).Extend(l.Struct.Directive), &leaves)

	return leaves
}

func flatten(l *Layout, prefix string, base int64, chain Chain, leaves *[]Leaf) {
	for _, f := range l.Fields {
		if f.Field.IsMarker() {
			continue
		}

		path := f.Field.Name
		if prefix != "" {
			path = prefix + "." + path
		}

		if f.Nested != nil {
			flatten(f.Nested, path, base+f.Offset, chain.Extend(f.Nested.Struct.Directive), leaves)
			continue
		}

		*leaves = append(*leaves, Leaf{
			Path:      path,
			Type:      f.Field.Type,
			Offset:    base + f.Offset,
			Chain:     chain,
			Transport: chain.Transport(f.Field.Type.Align),
		})
	}
}
