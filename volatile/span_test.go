package volatile_test

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"

	"volgen/volatile"
)

func TestSpan_Overlaps(t *testing.T) {
	t.Parallel()

	a := volatile.Span{Start: 0, Size: 4}
	b := volatile.Span{Start: 4, Size: 4}
	c := volatile.Span{Start: 2, Size: 4}
	empty := volatile.Span{Start: 2, Size: 0}

	assert.False(t, a.Overlaps(b))
	assert.True(t, a.Overlaps(c))
	assert.True(t, c.Overlaps(b))
	assert.False(t, a.Overlaps(empty))
	assert.True(t, volatile.Span{Start: 0, Size: 8}.Contains(c))
	assert.False(t, a.Contains(c))
	assert.Equal(t, "[0x4, 0x8)", b.String())
}

func TestDisjoint(t *testing.T) {
	t.Parallel()

	assert.True(t, volatile.Disjoint())
	assert.True(t, volatile.Disjoint(
		volatile.Span{Start: 16, Size: 12},
		volatile.Span{Start: 0, Size: 16},
	))
	assert.True(t, volatile.Disjoint(
		volatile.Span{Start: 0, Size: 8},
		volatile.Span{Start: 8, Size: 0},
		volatile.Span{Start: 8, Size: 8},
	))
	assert.False(t, volatile.Disjoint(
		volatile.Span{Start: 0, Size: 8},
		volatile.Span{Start: 12, Size: 4},
		volatile.Span{Start: 4, Size: 2},
	))
}

func TestAssertDisjoint(t *testing.T) {
	t.Parallel()

	overlapping := []volatile.Span{{Start: 0, Size: 8}, {Start: 4, Size: 8}}

	assert.NotPanics(t, func() { volatile.AssertDisjoint(volatile.Span{Start: 0, Size: 4}) })

	if volatile.Debug {
		assert.Panics(t, func() { volatile.AssertDisjoint(overlapping...) })
	} else {
		assert.NotPanics(t, func() { volatile.AssertDisjoint(overlapping...) })
	}
}

func TestCheckBase(t *testing.T) {
	t.Parallel()

	var buf [2]uint64

	base := unsafe.Pointer(&buf[0])
	assert.NotPanics(t, func() { volatile.CheckBase(base, 8) })

	odd := unsafe.Add(base, 1)

	if volatile.Debug {
		assert.Panics(t, func() { volatile.CheckBase(odd, 8) })
		assert.Panics(t, func() { volatile.CheckBase(nil, 1) })
	} else {
		assert.NotPanics(t, func() { volatile.CheckBase(odd, 8) })
	}
}
