package gpu

import (
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/overlay"
	"github.com/gogpu/overlay/mmio"
	"github.com/gogpu/overlay/raster"
)

// Mode is a display mode. Bpp must be 32.
type Mode struct {
	Width  int
	Height int
	Bpp    int
}

// DefaultMode is the mode Detect assigns to a new Device.
var DefaultMode = Mode{Width: 1920, Height: 1080, Bpp: 32}

// bytesPerPixel is the size of one frame-buffer word.
const bytesPerPixel = 4

func (m Mode) String() string {
	return fmt.Sprintf("%dx%dx%d", m.Width, m.Height, m.Bpp)
}

func (m Mode) validate() error {
	if m.Width <= 0 || m.Height <= 0 || m.Bpp != bytesPerPixel*8 {
		return fmt.Errorf("gpu: mode %v: %w", m, overlay.ErrInvalidParameter)
	}
	return nil
}

// FrameBufferSize returns the size in bytes of a frame buffer in mode m.
func (m Mode) FrameBufferSize() int {
	return m.Width * m.Height * bytesPerPixel
}

// Location is a PCI bus/device/function address.
type Location struct {
	Bus, Dev, Fn uint8
}

func (l Location) String() string {
	return fmt.Sprintf("%02x:%02x.%d", l.Bus, l.Dev, l.Fn)
}

// Device describes one display controller.
//
// The identity fields are filled in by Detect. Mode may be changed before
// Init; afterwards use SetMode. A Device is bound to at most one backend
// between Init and Cleanup.
type Device struct {
	Location        Location
	VendorID        uint16
	DeviceID        uint16
	Vendor          Vendor
	RegisterBase    mmio.PhysAddr
	FrameBufferBase mmio.PhysAddr
	Mode            Mode

	// mu is the device lock. It guards Mode, fb and surface after Init
	// and is taken by backends that serialize register access. Writes to
	// mapper and regs also happen under mu; backend Init reads regs without
	// it since Init must not overlap any other use of the Device.
	mu      sync.Mutex
	mapper  mmio.Mapper
	regs    mmio.Window
	fb      mmio.Window
	surface frameBuffer
	backend Backend
}

func (d *Device) String() string {
	return fmt.Sprintf("%v %04x:%04x at %v", d.Vendor, d.VendorID, d.DeviceID, d.Location)
}

// Registers returns the mapped register window. It is invalid before Init.
func (d *Device) Registers() mmio.Window {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.regs
}

// FrameBuffer returns the mapped frame-buffer window.
func (d *Device) FrameBuffer() mmio.Window {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fb
}

// Backend returns the bound backend, or nil before Init and after Cleanup.
func (d *Device) Backend() Backend {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.backend
}

// Initialized reports whether a backend is bound.
func (d *Device) Initialized() bool {
	return d.Backend() != nil
}

// CurrentMode returns the programmed display mode.
func (d *Device) CurrentMode() Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Mode
}

// DrawPrimitive draws vertices as line segments through the bound backend.
func (d *Device) DrawPrimitive(vertices []overlay.Vertex) error {
	b := d.Backend()
	if b == nil {
		return fmt.Errorf("gpu: draw on %v: %w", d, overlay.ErrDeviceNotReady)
	}
	return b.DrawPrimitive(d, vertices)
}

// SetMode reprograms the display mode of an initialized device.
//
// The frame-buffer mapping is sized at Init, so m must not need more
// memory than the mode the device was initialized with.
func (d *Device) SetMode(m Mode) error {
	b := d.Backend()
	if b == nil {
		return fmt.Errorf("gpu: set mode on %v: %w", d, overlay.ErrDeviceNotReady)
	}
	if err := m.validate(); err != nil {
		return err
	}
	if m.FrameBufferSize() > d.FrameBuffer().Size() {
		return fmt.Errorf("gpu: mode %v exceeds mapped frame buffer: %w", m, overlay.ErrInvalidParameter)
	}
	if err := b.SetMode(d, m); err != nil {
		return err
	}
	d.mu.Lock()
	d.Mode = m
	d.surface = frameBuffer{win: d.fb, width: m.Width, height: m.Height}
	d.mu.Unlock()
	overlay.Logger().Debug("gpu: mode set", "device", d.String(), "mode", m.String())
	return nil
}

// AdapterInfo describes the device in gputypes terms.
func (d *Device) AdapterInfo() gputypes.AdapterInfo {
	info := gputypes.AdapterInfo{
		Name:       fmt.Sprintf("%v display controller %04x", d.Vendor, d.DeviceID),
		Vendor:     d.Vendor.String(),
		VendorID:   uint32(d.VendorID),
		DeviceID:   uint32(d.DeviceID),
		DeviceType: d.Vendor.DeviceType(),
	}
	if b := d.Backend(); b != nil {
		info.Driver = b.Name()
	}
	return info
}

// AdapterType classifies the device as integrated or discrete.
func (d *Device) AdapterType() gpucontext.AdapterType {
	return d.Vendor.AdapterType()
}

// FrameBufferFormat is the texture format of the frame buffer words:
// a<<24|r<<16|g<<8|b stored little-endian is B, G, R, A in memory.
func (d *Device) FrameBufferFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatBGRA8Unorm
}

// Snapshot copies the frame buffer into an image.
func (d *Device) Snapshot() (*image.RGBA, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.fb.Valid() {
		return nil, fmt.Errorf("gpu: snapshot of %v: %w", d, overlay.ErrDeviceNotReady)
	}
	fb := d.surface
	return raster.WordsToImage(fb.width, fb.height, func(i int) uint32 {
		v, _ := fb.win.Read32(i * bytesPerPixel)
		return v
	}), nil
}

// Clear fills the visible frame buffer with c.
func (d *Device) Clear(c overlay.Color) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.fb.Valid() {
		return fmt.Errorf("gpu: clear %v: %w", d, overlay.ErrDeviceNotReady)
	}
	v := c.Pack()
	n := d.surface.width * d.surface.height
	for i := 0; i < n; i++ {
		if err := d.fb.Write32(i*bytesPerPixel, v); err != nil {
			return err
		}
	}
	return nil
}

// drawSurface returns the frame-buffer surface under the device lock.
func (d *Device) drawSurface() (frameBuffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.surfaceLocked()
}

// surfaceLocked is drawSurface for callers holding d.mu.
func (d *Device) surfaceLocked() (frameBuffer, error) {
	if !d.surface.win.Valid() {
		return frameBuffer{}, fmt.Errorf("gpu: %v has no frame-buffer mapping: %w", d, overlay.ErrInvalidParameter)
	}
	return d.surface, nil
}
