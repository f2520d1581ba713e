package gpu

import (
	"github.com/gogpu/overlay"
	"github.com/gogpu/overlay/mmio"
	"github.com/gogpu/overlay/raster"
)

// AMD registers, relative to BAR0.
const (
	amdMCFBLocation  = 0x2180
	amdConfigMemsize = 0x5428
	amdDisplay       = 0x6000
	amdDisplaySize   = 0x1000
	amdRegionSpan    = 4 << 20
)

type amdBackend struct {
	display mmio.Window
	memSize uint32
}

func (b *amdBackend) Name() string      { return "amd" }
func (b *amdBackend) RegisterSpan() int { return amdRegionSpan }

func (b *amdBackend) Init(d *Device) error {
	display, err := registerSub(d, amdDisplay, amdDisplaySize)
	if err != nil {
		return err
	}
	b.display = display

	loc, err := d.regs.Read32(amdMCFBLocation)
	if err != nil {
		return err
	}
	if loc != 0 {
		d.FrameBufferBase = mmio.PhysAddr(uint64(loc&0xFFFF0000) << 8)
	}
	if b.memSize, err = d.regs.Read32(amdConfigMemsize); err != nil {
		return err
	}
	overlay.Logger().Debug("gpu: amd memory controller",
		"fb_location", loc, "fb_base", d.FrameBufferBase.String(), "memsize", b.memSize)

	return b.SetMode(d, d.Mode)
}

func (b *amdBackend) Cleanup(*Device) {
	*b = amdBackend{}
}

func (b *amdBackend) SetMode(_ *Device, m Mode) error {
	return writeMode(b.display, m)
}

func (b *amdBackend) DrawPrimitive(d *Device, vertices []overlay.Vertex) error {
	if err := checkVertices(vertices); err != nil {
		return err
	}
	fb, err := d.drawSurface()
	if err != nil {
		return err
	}
	return raster.DrawSegments(fb, vertices)
}
