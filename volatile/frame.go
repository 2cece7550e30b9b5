package volatile

import (
	"fmt"
	"unsafe"
)

// Frame is the carrier representation of a value: its bytes, in memory
// order, split into transport units of Width bytes. A frame adds no padding;
// its size is the size of the wrapped value.
type Frame struct {
	Width uintptr
	Units []uint64
}

// Size returns the number of bytes held by the frame.
func (f Frame) Size() uintptr {
	return f.Width * uintptr(len(f.Units))
}

// Wrap returns the representation of v under carrier c.
func Wrap[T any](c Carrier, v T) Frame {
	width := c.Transport(unsafe.Alignof(v))
	size := unsafe.Sizeof(v)

	f := Frame{Width: width, Units: make([]uint64, size/width)}

	p := unsafe.Pointer(&v)
	for i := range f.Units {
		f.Units[i] = getUnit(unsafe.Add(p, uintptr(i)*width), width)
	}

	return f
}

// Unwrap rebuilds a T from its representation under carrier c.
// It panics if f was not produced for a T under c.
func Unwrap[T any](c Carrier, f Frame) T {
	var v T

	width := c.Transport(unsafe.Alignof(v))
	if f.Width != width || f.Size() != unsafe.Sizeof(v) {
		panic(fmt.Sprintf("volatile: frame of %d bytes in %d-byte units does not hold a %T under %v",
			f.Size(), f.Width, v, c))
	}

	p := unsafe.Pointer(&v)
	for i, u := range f.Units {
		putUnit(unsafe.Add(p, uintptr(i)*width), width, u)
	}

	return v
}
