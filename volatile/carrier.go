package volatile

import (
	"fmt"
	"unsafe"
)

// maxWidth is the widest single transfer issued by a Cell.
const maxWidth = unsafe.Sizeof(uint64(0))

// Carrier restricts the alignment a value is transported with.
//
// The zero value, Natural, transports a value with its own alignment. Any
// other value is a packing bound: the value moves in units no wider than the
// bound. Carriers compose by taking the tightest bound, so the order in which
// enclosing packed layouts are applied does not matter.
type Carrier uintptr

// Natural is the identity carrier.
const Natural Carrier = 0

// Bounded restricts inner to transport alignment n.
// It panics if n is not a power of two.
func Bounded(n uintptr, inner Carrier) Carrier {
	if n == 0 || n&(n-1) != 0 {
		panic(fmt.Sprintf("volatile: packing bound %d is not a power of two", n))
	}

	if inner != Natural && uintptr(inner) < n {
		return inner
	}

	return Carrier(n)
}

// Packed returns the carrier of a packed(n) layout.
func Packed(n uintptr) Carrier {
	return Bounded(n, Natural)
}

// Compose applies outer around inner.
func Compose(outer, inner Carrier) Carrier {
	if outer == Natural {
		return inner
	}

	return Bounded(uintptr(outer), inner)
}

// Limit returns the packing bound and whether there is one.
func (c Carrier) Limit() (uintptr, bool) {
	return uintptr(c), c != Natural
}

// Transport returns the unit width used to move a value whose natural
// alignment is natural.
func (c Carrier) Transport(natural uintptr) uintptr {
	w := natural
	if w == 0 {
		w = 1
	}

	if c != Natural && uintptr(c) < w {
		w = uintptr(c)
	}

	return min(w, maxWidth)
}

// String returns "natural" or "packed(n)".
func (c Carrier) String() string {
	if c == Natural {
		return "natural"
	}

	return fmt.Sprintf("packed(%d)", uintptr(c))
}
