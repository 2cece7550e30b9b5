package volatile

import (
	"sync/atomic"
	"unsafe"
)

// The 8 and 16 bit helpers must stay out of line: a call the compiler cannot
// see through is the only way gc keeps a plain access from being merged or
// dropped.

//go:noinline
func load8(p unsafe.Pointer) uint8 { return *(*uint8)(p) }

//go:noinline
func store8(p unsafe.Pointer, x uint8) { *(*uint8)(p) = x }

//go:noinline
func load16(p unsafe.Pointer) uint16 { return *(*uint16)(p) }

//go:noinline
func store16(p unsafe.Pointer, x uint16) { *(*uint16)(p) = x }

// loadUnit performs one volatile load of width bytes at p.
func loadUnit(p unsafe.Pointer, width uintptr) uint64 {
	switch width {
	case 1:
		return uint64(load8(p))
	case 2:
		return uint64(load16(p))
	case 4:
		return uint64(atomic.LoadUint32((*uint32)(p)))
	default:
		return atomic.LoadUint64((*uint64)(p))
	}
}

// storeUnit performs one volatile store of width bytes at p.
func storeUnit(p unsafe.Pointer, width uintptr, x uint64) {
	switch width {
	case 1:
		store8(p, uint8(x))
	case 2:
		store16(p, uint16(x))
	case 4:
		atomic.StoreUint32((*uint32)(p), uint32(x))
	default:
		atomic.StoreUint64((*uint64)(p), x)
	}
}

// getUnit and putUnit access Go-managed memory (the caller's copy of a value).
func getUnit(p unsafe.Pointer, width uintptr) uint64 {
	switch width {
	case 1:
		return uint64(*(*uint8)(p))
	case 2:
		return uint64(*(*uint16)(p))
	case 4:
		return uint64(*(*uint32)(p))
	default:
		return *(*uint64)(p)
	}
}

func putUnit(p unsafe.Pointer, width uintptr, x uint64) {
	switch width {
	case 1:
		*(*uint8)(p) = uint8(x)
	case 2:
		*(*uint16)(p) = uint16(x)
	case 4:
		*(*uint32)(p) = uint32(x)
	default:
		*(*uint64)(p) = x
	}
}

// readUnits copies size bytes from device memory at src into dst.
func readUnits(dst, src unsafe.Pointer, size, width uintptr) {
	for off := uintptr(0); off < size; off += width {
		putUnit(unsafe.Add(dst, off), width, loadUnit(unsafe.Add(src, off), width))
	}
}

// writeUnits copies size bytes from src into device memory at dst.
func writeUnits(dst, src unsafe.Pointer, size, width uintptr) {
	for off := uintptr(0); off < size; off += width {
		storeUnit(unsafe.Add(dst, off), width, getUnit(unsafe.Add(src, off), width))
	}
}
