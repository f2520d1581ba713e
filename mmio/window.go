package mmio

import (
	"fmt"

	"github.com/gogpu/overlay"
)

// ErrOutOfRange is returned for register offsets outside a Window or not
// aligned to 4 bytes. It matches overlay.ErrInvalidParameter under errors.Is.
var ErrOutOfRange = fmt.Errorf("mmio: offset out of range: %w", overlay.ErrInvalidParameter)

// Window is a typed view over a mapped register range.
//
// Every access is checked against the mapped size, so a Window can never
// read or write outside the memory it was created for. The zero Window is
// unmapped: Valid reports false and every access fails.
type Window struct {
	io   RegisterIO
	base VirtAddr
	size int
}

// NewWindow returns a Window over size bytes at base.
func NewWindow(io RegisterIO, base VirtAddr, size int) Window {
	return Window{io: io, base: base, size: size}
}

// Valid reports whether the window is backed by a mapping.
func (w Window) Valid() bool {
	return w.io != nil && w.base != 0 && w.size > 0
}

// Base returns the virtual base address.
func (w Window) Base() VirtAddr { return w.base }

// Size returns the window size in bytes.
func (w Window) Size() int { return w.size }

func (w Window) check(off, n int) error {
	if !w.Valid() {
		return fmt.Errorf("mmio: window not mapped: %w", overlay.ErrDeviceNotReady)
	}
	if off < 0 || off%4 != 0 || n < 0 || off > w.size-n {
		return fmt.Errorf("%w: [%#x, %#x) in window of %#x", ErrOutOfRange, off, off+n, w.size)
	}
	return nil
}

// Read32 reads the 32-bit register at off.
func (w Window) Read32(off int) (uint32, error) {
	if err := w.check(off, 4); err != nil {
		return 0, err
	}
	return w.io.ReadRegister(w.base + VirtAddr(off)), nil
}

// Write32 writes v to the 32-bit register at off.
func (w Window) Write32(off int, v uint32) error {
	if err := w.check(off, 4); err != nil {
		return err
	}
	w.io.WriteRegister(w.base+VirtAddr(off), v)
	return nil
}

// Sub returns the window covering [off, off+size) of w.
func (w Window) Sub(off, size int) (Window, error) {
	if err := w.check(off, size); err != nil {
		return Window{}, err
	}
	return Window{io: w.io, base: w.base + VirtAddr(off), size: size}, nil
}
