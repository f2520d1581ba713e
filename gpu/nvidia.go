package gpu

import (
	"fmt"

	"github.com/gogpu/overlay"
	"github.com/gogpu/overlay/mmio"
	"github.com/gogpu/overlay/raster"
)

// NVIDIA register blocks, relative to BAR0.
const (
	nvPMCBoot0   = 0x000000
	nvPVideo     = 0x008000
	nvPCRTC      = 0x600000
	nvPRAMDAC    = 0x680000
	nvPFIFO      = 0x800000
	nvBlockSize  = 0x1000
	nvPFIFOSize  = 0x2000
	nvRegionSpan = 16 << 20
)

// nvidiaBackend serializes every draw under the device lock and the
// global protection lock.
type nvidiaBackend struct {
	pvideo  mmio.Window
	pcrtc   mmio.Window
	pramdac mmio.Window
	pfifo   mmio.Window

	mode        Mode
	initialized bool
}

func (b *nvidiaBackend) Name() string      { return "nvidia" }
func (b *nvidiaBackend) RegisterSpan() int { return nvRegionSpan }

func (b *nvidiaBackend) Init(d *Device) error {
	blocks := []struct {
		dst       *mmio.Window
		off, size int
	}{
		{&b.pvideo, nvPVideo, nvBlockSize},
		{&b.pcrtc, nvPCRTC, nvBlockSize},
		{&b.pramdac, nvPRAMDAC, nvBlockSize},
		{&b.pfifo, nvPFIFO, nvPFIFOSize},
	}
	for _, blk := range blocks {
		w, err := registerSub(d, blk.off, blk.size)
		if err != nil {
			return err
		}
		*blk.dst = w
	}

	// Enable memory access.
	if err := d.regs.Write32(nvPMCBoot0, 1); err != nil {
		return err
	}
	b.initialized = true
	return b.SetMode(d, d.Mode)
}

func (b *nvidiaBackend) Cleanup(d *Device) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if b.initialized && d.regs.Valid() {
		_ = d.regs.Write32(nvPMCBoot0, 0)
	}
	*b = nvidiaBackend{}
}

func (b *nvidiaBackend) SetMode(d *Device, m Mode) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !b.initialized {
		return fmt.Errorf("gpu: nvidia set mode: %w", overlay.ErrDeviceNotReady)
	}
	if err := writeMode(b.pcrtc, m); err != nil {
		return err
	}
	b.mode = m
	return nil
}

func (b *nvidiaBackend) DrawPrimitive(d *Device, vertices []overlay.Vertex) error {
	if err := checkVertices(vertices); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	protection.Lock()
	defer protection.Unlock()

	if !b.initialized {
		return fmt.Errorf("gpu: nvidia draw: %w", overlay.ErrDeviceNotReady)
	}
	fb, err := d.surfaceLocked()
	if err != nil {
		return err
	}
	return raster.DrawSegments(fb, vertices)
}
