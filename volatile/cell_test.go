package volatile_test

import (
	"encoding/binary"
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volgen/volatile"
)

// region returns an 8-aligned scratch block and a byte view of it.
func region(t *testing.T, words int) (unsafe.Pointer, []byte) {
	t.Helper()

	buf := make([]uint64, words)
	base := unsafe.Pointer(&buf[0])

	return base, unsafe.Slice((*byte)(base), words*8)
}

func TestCell_ReadWrite(t *testing.T) {
	t.Parallel()

	base, _ := region(t, 2)

	c := volatile.CellAt[uint32](base, 4, volatile.Natural)
	c.Write(0xcafef00d)
	assert.Equal(t, uint32(0xcafef00d), c.Read())
	assert.Equal(t, uint32(0xcafef00d), *(*uint32)(unsafe.Add(base, 4)))
	assert.Zero(t, *(*uint32)(base))
}

func TestCell_UnderAlignedOffset(t *testing.T) {
	t.Parallel()

	base, raw := region(t, 3)

	// b sits at offset 2 of a packed(2) block.
	c := volatile.CellAt[uint64](base, 2, volatile.Packed(2))
	require.Equal(t, uintptr(2), c.Width())

	c.Write(0x0102030405060708)
	assert.Equal(t, uint64(0x0102030405060708), c.Read())
	assert.Equal(t, []byte{0, 0}, raw[:2])
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0}, raw[10:16])

	want := binary.NativeEndian.AppendUint64(nil, 0x0102030405060708)
	assert.Equal(t, want, raw[2:10])
}

func TestCell_Width(t *testing.T) {
	t.Parallel()

	base, _ := region(t, 1)

	assert.Equal(t, uintptr(8), volatile.CellAt[uint64](base, 0, volatile.Natural).Width())
	assert.Equal(t, uintptr(1), volatile.CellAt[uint32](base, 1, volatile.Packed(1)).Width())
	assert.Equal(t, uintptr(2), volatile.CellAt[[2]uint16](base, 0, volatile.Packed(8)).Width())
	assert.Equal(t, uintptr(1), volatile.CellAt[bool](base, 0, volatile.Natural).Width())
}

func TestCell_StructValue(t *testing.T) {
	t.Parallel()

	base, _ := region(t, 4)

	c := volatile.CellAt[sample](base, 0, volatile.Packed(4))
	v := sample{A: 9, B: 1 << 40, C: 3, D: 0.25}
	c.Write(v)
	assert.Equal(t, v, c.Read())
	assert.Equal(t, volatile.Packed(4), c.Carrier())
}

func TestCell_Update(t *testing.T) {
	t.Parallel()

	base, _ := region(t, 1)

	c := volatile.CellAt[uint16](base, 6, volatile.Natural)
	c.Write(0x00f0)
	c.Update(func(v uint16) uint16 { return v | 0x0f00 })
	assert.Equal(t, uint16(0x0ff0), c.Read())
}

func TestCell_AddrAndSpan(t *testing.T) {
	t.Parallel()

	base, _ := region(t, 2)

	c := volatile.CellAt[[3]uint16](base, 10, volatile.Natural)
	assert.Equal(t, unsafe.Add(base, 10), c.Addr())
	assert.Equal(t, volatile.Span{Start: uintptr(base) + 10, Size: 6}, c.Span())
}

func TestCell_ConcurrentDisjointWrites(t *testing.T) {
	t.Parallel()

	base, _ := region(t, 4)

	cells := []volatile.Cell[uint64]{
		volatile.CellAt[uint64](base, 0, volatile.Natural),
		volatile.CellAt[uint64](base, 8, volatile.Packed(2)),
		volatile.CellAt[uint64](base, 16, volatile.Packed(1)),
		volatile.CellAt[uint64](base, 24, volatile.Packed(4)),
	}

	var wg sync.WaitGroup

	for i, c := range cells {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for n := range uint64(1000) {
				c.Write(uint64(i)<<32 | n)
			}
		}()
	}

	wg.Wait()

	for i, c := range cells {
		assert.Equal(t, uint64(i)<<32|999, c.Read())
	}
}
