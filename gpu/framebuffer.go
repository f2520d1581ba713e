package gpu

import (
	"github.com/gogpu/overlay/mmio"
	"github.com/gogpu/overlay/raster"
)

// frameBuffer is a raster.Surface over a mapped linear 32-bit frame buffer.
type frameBuffer struct {
	win           mmio.Window
	width, height int
}

func (f frameBuffer) Width() int  { return f.width }
func (f frameBuffer) Height() int { return f.height }

// SetPixel writes one word. The rasterizer clips to Width and Height, and
// the window bounds-checks the offset again.
func (f frameBuffer) SetPixel(x, y int, c uint32) {
	_ = f.win.Write32((y*f.width+x)*bytesPerPixel, c)
}

var _ raster.Surface = frameBuffer{}
