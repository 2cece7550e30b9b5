package volatile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"volgen/volatile"
)

func TestCarrier_Transport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		c       volatile.Carrier
		natural uintptr
		want    uintptr
	}{
		{"natural u64", volatile.Natural, 8, 8},
		{"natural u8", volatile.Natural, 1, 1},
		{"natural zero", volatile.Natural, 0, 1},
		{"packed1 u64", volatile.Packed(1), 8, 1},
		{"packed2 u64", volatile.Packed(2), 8, 2},
		{"packed4 u16", volatile.Packed(4), 2, 2},
		{"packed16 u32", volatile.Packed(16), 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.c.Transport(tt.natural))
		})
	}
}

func TestCarrier_ComposesToMinimum(t *testing.T) {
	t.Parallel()

	bounds := []uintptr{1, 2, 4, 8}

	for _, a := range bounds {
		for _, b := range bounds {
			for _, c := range bounds {
				left := volatile.Bounded(a, volatile.Bounded(b, volatile.Packed(c)))
				right := volatile.Compose(volatile.Bounded(a, volatile.Packed(b)), volatile.Packed(c))
				swapped := volatile.Bounded(c, volatile.Bounded(a, volatile.Packed(b)))

				want := min(a, b, c)
				assert.Equal(t, want, left.Transport(8), "%d %d %d", a, b, c)
				assert.Equal(t, want, right.Transport(8), "%d %d %d", a, b, c)
				assert.Equal(t, want, swapped.Transport(8), "%d %d %d", a, b, c)
			}
		}
	}
}

func TestCarrier_Identity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, volatile.Packed(2), volatile.Compose(volatile.Natural, volatile.Packed(2)))
	assert.Equal(t, volatile.Packed(2), volatile.Bounded(2, volatile.Natural))

	_, limited := volatile.Natural.Limit()
	assert.False(t, limited)

	n, limited := volatile.Packed(4).Limit()
	assert.True(t, limited)
	assert.Equal(t, uintptr(4), n)

	assert.Equal(t, "natural", volatile.Natural.String())
	assert.Equal(t, "packed(1)", volatile.Packed(1).String())
}

func TestCarrier_InvalidBound(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { volatile.Packed(0) })
	assert.Panics(t, func() { volatile.Packed(3) })
	assert.Panics(t, func() { volatile.Bounded(12, volatile.Natural) })
}
