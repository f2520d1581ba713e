package gpu

import (
	"fmt"

	"github.com/gogpu/overlay"
	"github.com/gogpu/overlay/mmio"
)

// Backend programs one vendor's display hardware.
//
// A backend instance is bound to exactly one Device by Init and holds the
// private register sub-windows it derives from the device's register window.
type Backend interface {
	// Name returns the backend name.
	Name() string

	// RegisterSpan returns the size of the register window the backend needs.
	RegisterSpan() int

	// Init prepares the hardware and programs d.Mode.
	Init(d *Device) error

	// Cleanup releases backend state. It must tolerate partial Init.
	Cleanup(d *Device)

	// SetMode programs the display mode registers.
	SetMode(d *Device, m Mode) error

	// DrawPrimitive draws vertices as independent line segments.
	DrawPrimitive(d *Device, vertices []overlay.Vertex) error
}

// newBackend returns a fresh backend for v.
func newBackend(v Vendor) (Backend, error) {
	switch v {
	case VendorNVIDIA:
		return &nvidiaBackend{}, nil
	case VendorAMD:
		return &amdBackend{}, nil
	case VendorIntel:
		return &intelBackend{}, nil
	case VendorUnknown:
		return nil, fmt.Errorf("gpu: no backend for vendor %v: %w", v, overlay.ErrNotSupported)
	default:
		return nil, fmt.Errorf("gpu: vendor %d: %w", uint8(v), overlay.ErrInvalidParameter)
	}
}

// registerSub derives a bounds-checked sub-window of the device registers.
func registerSub(d *Device, off, size int) (mmio.Window, error) {
	if !d.regs.Valid() {
		return mmio.Window{}, fmt.Errorf("gpu: registers of %v not mapped: %w", d, overlay.ErrDeviceNotReady)
	}
	w, err := d.regs.Sub(off, size)
	if err != nil {
		return mmio.Window{}, fmt.Errorf("gpu: register block %#x: %w", off, err)
	}
	return w, nil
}

// writeMode writes width, height and bpp at w+0, w+4 and w+8.
func writeMode(w mmio.Window, m Mode) error {
	for i, v := range [...]int{m.Width, m.Height, m.Bpp} {
		if err := w.Write32(i*4, uint32(v)); err != nil {
			return err
		}
	}
	return nil
}

func checkVertices(vertices []overlay.Vertex) error {
	if len(vertices) < 2 {
		return fmt.Errorf("gpu: draw %d vertices: %w", len(vertices), overlay.ErrInvalidParameter)
	}
	return nil
}
