package volatile

import (
	"fmt"
	"slices"
	"unsafe"
)

// Span is a byte range [Start, Start+Size).
type Span struct {
	Start uintptr
	Size  uintptr
}

// SpanOf returns the span of size bytes at p.
func SpanOf(p unsafe.Pointer, size uintptr) Span {
	return Span{Start: uintptr(p), Size: size}
}

// End returns the first address past the span.
func (s Span) End() uintptr {
	return s.Start + s.Size
}

// Overlaps reports whether s and o share a byte. Empty spans overlap nothing.
func (s Span) Overlaps(o Span) bool {
	if s.Size == 0 || o.Size == 0 {
		return false
	}

	return s.Start < o.End() && o.Start < s.End()
}

// Contains reports whether o lies entirely inside s.
func (s Span) Contains(o Span) bool {
	return o.Start >= s.Start && o.End() <= s.End()
}

// String formats the span as [start, end).
func (s Span) String() string {
	return fmt.Sprintf("[%#x, %#x)", s.Start, s.End())
}

// Disjoint reports whether no two spans overlap.
func Disjoint(spans ...Span) bool {
	sorted := slices.Clone(spans)
	slices.SortFunc(sorted, func(a, b Span) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		default:
			return 0
		}
	})

	var prev *Span

	for i := range sorted {
		s := &sorted[i]
		if s.Size == 0 {
			continue
		}

		if prev != nil && prev.Overlaps(*s) {
			return false
		}

		prev = s
	}

	return true
}

// AssertDisjoint panics if any two spans overlap. It does nothing unless the
// package is built with the volatiledebug tag.
func AssertDisjoint(spans ...Span) {
	if !Debug {
		return
	}

	if !Disjoint(spans...) {
		panic(fmt.Sprintf("volatile: overlapping field views %v", spans))
	}
}

// CheckBase panics if base is nil or not aligned to align. It does nothing
// unless the package is built with the volatiledebug tag.
func CheckBase(base unsafe.Pointer, align uintptr) {
	if !Debug {
		return
	}

	if base == nil {
		panic("volatile: nil base address")
	}

	if align > 1 && uintptr(base)%align != 0 {
		panic(fmt.Sprintf("volatile: base address %p is not %d-byte aligned", base, align))
	}
}
