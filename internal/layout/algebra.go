package layout

// IsPowerOfTwo reports whether n is 1, 2, 4, ...
func IsPowerOfTwo(n int64) bool {
	return n > 0 && n&(n-1) == 0
}

// AlignUp rounds off up to a multiple of align, which must be a power of two.
func AlignUp(off, align int64) int64 {
	return (off + align - 1) &^ (align - 1)
}

// EffectiveAlign returns natural capped by every positive bound.
func EffectiveAlign(natural int64, bounds ...int64) int64 {
	eff := natural
	for _, b := range bounds {
		if b > 0 {
			eff = min(eff, b)
		}
	}

	return eff
}

// Step places a field of the given size and effective alignment after the
// running offset cursor. It returns the field's offset and the running offset
// past the field.
func Step(cursor, size, align int64) (offset, next int64) {
	offset = AlignUp(cursor, align)
	return offset, offset + size
}
