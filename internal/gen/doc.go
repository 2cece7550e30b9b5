// Package gen emits volatile mirror views for resolved layouts.
//
// Generation uses text/template + go/format. For every described struct the
// output holds:
//   - a storage type, when the struct has no Go declaration
//   - the mirror <Name>Volatile with <Name>VolatileOf and <Name>VolatileAt
//   - one accessor per field: a volatile.Cell for leaves, a nested mirror for
//     described structs
//   - <Name>VolatilePacked<N> variants for structs reached through a tighter
//     enclosing packing bound
//   - Split, returning disjoint views of every field
//   - compile-time assertions pinning size, alignment and offsets
package gen
