// Package layout computes C struct layout for described structs.
//
// A described struct is an ordered list of named fields, each with a size and
// natural alignment, plus one layout directive:
//
//	standard    fields at their natural alignment
//	packed(n)   every field's alignment capped at n
//	align(n)    struct alignment raised to at least n
//
// Offsets follow the usual rules: each field starts at the running offset
// rounded up to its effective alignment, the struct alignment is the largest
// effective field alignment (or n for align(n) if larger), and the size is
// the end of the last field rounded up to the struct alignment.
//
// Nested structs keep their own internal layout. Accessing them through an
// enclosing packed struct narrows the alignment their fields may be
// transported with; Chain records those bounds from the outermost struct
// inwards and the tightest one wins.
package layout
