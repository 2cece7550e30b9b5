//go:build unix

package mmio

import (
	"errors"
	"fmt"
	"os"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"volgen/internal/logging"
)

var (
	// ErrInvalidRange is returned for a non-positive size or a negative offset.
	ErrInvalidRange = errors.New("invalid mapping range")
	// ErrClosed is returned by Close on a region that was already unmapped.
	ErrClosed = errors.New("region closed")
)

// Region is a mapped window of memory. The memory stays valid until Close.
type Region struct {
	mem  []byte // whole mapping, starting on a page boundary
	off  int    // start of the requested window in mem
	size int
	name string
}

// Open maps size bytes of the file at path, starting at offset, for reading
// and writing. The offset need not be page aligned.
func Open(path string, offset int64, size int) (*Region, error) {
	if size <= 0 || offset < 0 {
		return nil, fmt.Errorf("%w: offset %#x size %d", ErrInvalidRange, offset, size)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	page := int64(unix.Getpagesize())
	skip := offset % page

	mem, err := unix.Mmap(int(f.Fd()), offset-skip, int(skip)+size,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mapping %s at %#x: %w", path, offset, err)
	}

	r := &Region{mem: mem, off: int(skip), size: size, name: path}

	logging.Logger().Debug("region mapped",
		zap.String("path", path),
		zap.Int64("offset", offset),
		zap.Int("size", size))

	return r, nil
}

// Anonymous maps size bytes of zeroed private memory. The base is page
// aligned.
func Anonymous(size int) (*Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size %d", ErrInvalidRange, size)
	}

	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("mapping %d anonymous bytes: %w", size, err)
	}

	logging.Logger().Debug("region mapped", zap.String("path", "anonymous"), zap.Int("size", size))

	return &Region{mem: mem, size: size, name: "anonymous"}, nil
}

// Base returns the address of the first byte of the window.
func (r *Region) Base() unsafe.Pointer {
	return r.Pointer(0)
}

// Len returns the size of the window in bytes.
func (r *Region) Len() int {
	return r.size
}

// Pointer returns the address off bytes into the window. It panics if off is
// outside the window or the region is closed.
func (r *Region) Pointer(off uintptr) unsafe.Pointer {
	if r.mem == nil {
		panic("mmio: " + r.name + ": region closed")
	}

	if off >= uintptr(r.size) {
		panic(fmt.Sprintf("mmio: %s: offset %#x outside window of %#x bytes", r.name, off, r.size))
	}

	return unsafe.Pointer(&r.mem[r.off+int(off)])
}

// Close unmaps the region. Views derived from it must not be used afterwards.
func (r *Region) Close() error {
	if r.mem == nil {
		return ErrClosed
	}

	err := unix.Munmap(r.mem)
	r.mem = nil

	if err != nil {
		return fmt.Errorf("unmapping %s: %w", r.name, err)
	}

	logging.Logger().Debug("region unmapped", zap.String("path", r.name))

	return nil
}
