package volatile

import "unsafe"

// Cell is a volatile accessor for a T stored at a fixed address.
//
// Cells are produced by generated mirror accessors from the mirror's base
// address plus a literal offset. A Cell owns nothing; it is valid for as long
// as the memory it was derived from.
type Cell[T any] struct {
	addr    unsafe.Pointer
	carrier Carrier
}

// CellAt returns the cell for the T at base+offset, transported with c.
// T must be a fixed-layout type: no pointers, slices, maps, strings,
// interfaces, channels or functions.
func CellAt[T any](base unsafe.Pointer, offset uintptr, c Carrier) Cell[T] {
	return Cell[T]{addr: unsafe.Add(base, offset), carrier: c}
}

// Addr returns the address of the cell.
func (c Cell[T]) Addr() unsafe.Pointer {
	return c.addr
}

// Carrier returns the carrier the cell transports its value with.
func (c Cell[T]) Carrier() Carrier {
	return c.carrier
}

// Width returns the width in bytes of each unit moved by Read and Write.
func (c Cell[T]) Width() uintptr {
	var v T
	return c.carrier.Transport(unsafe.Alignof(v))
}

// Span returns the bytes covered by the cell.
func (c Cell[T]) Span() Span {
	var v T
	return SpanOf(c.addr, unsafe.Sizeof(v))
}

// Read performs one volatile read of the cell.
func (c Cell[T]) Read() T {
	var v T
	readUnits(unsafe.Pointer(&v), c.addr, unsafe.Sizeof(v), c.carrier.Transport(unsafe.Alignof(v)))

	return v
}

// Write performs one volatile write of v to the cell.
func (c Cell[T]) Write(v T) {
	writeUnits(c.addr, unsafe.Pointer(&v), unsafe.Sizeof(v), c.carrier.Transport(unsafe.Alignof(v)))
}

// Update reads the cell, applies fn and writes the result back.
// The read and the write are two separate transfers.
func (c Cell[T]) Update(fn func(T) T) {
	c.Write(fn(c.Read()))
}
