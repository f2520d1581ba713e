package gpu

import (
	"github.com/gogpu/overlay"
	"github.com/gogpu/overlay/mmio"
	"github.com/gogpu/overlay/raster"
)

// Intel display registers, relative to BAR0.
const (
	intelPipeA       = 0x70000
	intelPipeB       = 0x71000
	intelPipeSize    = 0x1000
	intelGTT         = 0x800000
	intelGTTSize     = 0x800000
	intelRegionSpan  = 16 << 20
	intelPipeEnabled = 1 << 0
)

type intelBackend struct {
	pipeA mmio.Window
	pipeB mmio.Window
	gtt   mmio.Window

	primaryA bool
}

func (b *intelBackend) Name() string      { return "intel" }
func (b *intelBackend) RegisterSpan() int { return intelRegionSpan }

func (b *intelBackend) Init(d *Device) error {
	var err error
	if b.pipeA, err = registerSub(d, intelPipeA, intelPipeSize); err != nil {
		return err
	}
	if b.pipeB, err = registerSub(d, intelPipeB, intelPipeSize); err != nil {
		return err
	}
	if b.gtt, err = registerSub(d, intelGTT, intelGTTSize); err != nil {
		return err
	}

	statusA, err := b.pipeA.Read32(0)
	if err != nil {
		return err
	}
	statusB, err := b.pipeB.Read32(0)
	if err != nil {
		return err
	}
	b.primaryA = statusA&intelPipeEnabled != 0
	overlay.Logger().Debug("gpu: intel pipes",
		"pipe_a", statusA, "pipe_b", statusB, "primary", b.pipeName())

	return b.SetMode(d, d.Mode)
}

func (b *intelBackend) pipeName() string {
	if b.primaryA {
		return "A"
	}
	return "B"
}

// activePipe returns the register block of the primary pipe.
func (b *intelBackend) activePipe() mmio.Window {
	if b.primaryA {
		return b.pipeA
	}
	return b.pipeB
}

func (b *intelBackend) Cleanup(*Device) {
	*b = intelBackend{}
}

func (b *intelBackend) SetMode(_ *Device, m Mode) error {
	return writeMode(b.activePipe(), m)
}

func (b *intelBackend) DrawPrimitive(d *Device, vertices []overlay.Vertex) error {
	if err := checkVertices(vertices); err != nil {
		return err
	}
	fb, err := d.drawSurface()
	if err != nil {
		return err
	}
	return raster.DrawSegments(fb, vertices)
}
