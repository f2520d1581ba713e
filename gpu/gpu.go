package gpu

import (
	"fmt"

	"github.com/gogpu/overlay"
	"github.com/gogpu/overlay/mmio"
)

// Hardware is the platform access Init needs: register I/O on mapped
// addresses and physical memory mapping.
type Hardware interface {
	mmio.RegisterIO
	mmio.Mapper
}

// Init maps the device registers, binds and initializes the vendor backend,
// then maps the frame buffer for d.Mode.
//
// On failure everything acquired so far is released and d is left
// uninitialized. Mapping failures match overlay.ErrUnsuccessful.
func Init(d *Device, hw Hardware) error {
	if d == nil || hw == nil {
		return fmt.Errorf("gpu: init: nil device or hardware: %w", overlay.ErrInvalidParameter)
	}
	if !d.Vendor.Valid() {
		return fmt.Errorf("gpu: init: vendor %d: %w", uint8(d.Vendor), overlay.ErrInvalidParameter)
	}
	if d.Initialized() {
		return fmt.Errorf("gpu: init %v: already initialized: %w", d, overlay.ErrInvalidParameter)
	}
	if err := d.Mode.validate(); err != nil {
		return err
	}
	b, err := newBackend(d.Vendor)
	if err != nil {
		return err
	}
	log := overlay.Logger()

	span := b.RegisterSpan()
	regs, err := hw.Map(d.RegisterBase, span)
	if err != nil {
		return fmt.Errorf("gpu: map registers at %v: %w: %w", d.RegisterBase, overlay.ErrUnsuccessful, err)
	}
	d.mu.Lock()
	d.mapper = hw
	d.regs = mmio.NewWindow(hw, regs, span)
	d.mu.Unlock()

	if err := b.Init(d); err != nil {
		log.Warn("gpu: backend init failed, unmapping", "backend", b.Name(), "err", err)
		b.Cleanup(d)
		unmapRegisters(d)
		return fmt.Errorf("gpu: %s init: %w", b.Name(), err)
	}

	fbSize := d.Mode.FrameBufferSize()
	fb, err := hw.Map(d.FrameBufferBase, fbSize)
	if err != nil {
		log.Warn("gpu: frame buffer map failed, unwinding", "backend", b.Name(), "err", err)
		b.Cleanup(d)
		unmapRegisters(d)
		return fmt.Errorf("gpu: map frame buffer at %v: %w: %w", d.FrameBufferBase, overlay.ErrUnsuccessful, err)
	}

	d.mu.Lock()
	d.fb = mmio.NewWindow(hw, fb, fbSize)
	d.surface = frameBuffer{win: d.fb, width: d.Mode.Width, height: d.Mode.Height}
	d.backend = b
	d.mu.Unlock()

	log.Info("gpu: adapter bound", "device", d.String(), "backend", b.Name(),
		"mode", d.Mode.String(), "type", d.AdapterType().String())
	return nil
}

// Cleanup runs backend cleanup and unmaps the frame buffer and registers.
// It is safe to call on a nil, uninitialized or already cleaned-up Device.
func Cleanup(d *Device) {
	if d == nil {
		return
	}
	if b := d.Backend(); b != nil {
		b.Cleanup(d)
	}

	d.mu.Lock()
	fb, hw := d.fb, d.mapper
	d.fb = mmio.Window{}
	d.surface = frameBuffer{}
	d.backend = nil
	d.mu.Unlock()

	if fb.Valid() && hw != nil {
		hw.Unmap(fb.Base(), fb.Size())
	}
	unmapRegisters(d)
}

func unmapRegisters(d *Device) {
	d.mu.Lock()
	regs, hw := d.regs, d.mapper
	d.regs = mmio.Window{}
	d.mu.Unlock()

	if regs.Valid() && hw != nil {
		hw.Unmap(regs.Base(), regs.Size())
	}
}
