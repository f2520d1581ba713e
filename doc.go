// Package overlay provides the shared vocabulary of a minimal 2D overlay
// engine that draws vector primitives straight into a memory-mapped frame
// buffer.
//
// # Overview
//
// The engine is split into small packages, leaves first:
//
//   - mmio: contracts for the hardware collaborators (PCI configuration
//     space, register I/O, physical address mapping, non-pageable memory)
//     plus a bounds-checked register Window and a simulated machine.
//   - raster: Bresenham line scan-conversion onto a Surface.
//   - gpu: device detection, vendor backends (NVIDIA, AMD, Intel) and
//     the Init/Cleanup dispatch.
//   - render: the double-buffered Renderer and shape decomposition.
//
// This package holds the types every layer shares: Color, Vertex, Point,
// Rect, the error taxonomy and the logger.
//
// # Quick Start
//
//	sim := mmio.NewSim()
//	sim.AddDisplay(0, 2, 0, gpu.PCIVendorIntel, 0x3E92, 0xE000_0000, 0xC000_0000)
//
//	dev, err := gpu.Detect(sim)
//	if err != nil {
//		log.Fatal(err)
//	}
//	dev.Mode = gpu.Mode{Width: 640, Height: 480, Bpp: 32}
//	if err := gpu.Init(dev, sim); err != nil {
//		log.Fatal(err)
//	}
//	defer gpu.Cleanup(dev)
//
//	r, err := render.New(dev, render.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer r.Close()
//
//	_ = r.BeginFrame()
//	_ = r.DrawRect(overlay.Rect{X: 10, Y: 10, Width: 100, Height: 50}, overlay.Red, false)
//	_ = r.EndFrame()
//
// # Pixels
//
// Frame-buffer pixels are 32-bit words a<<24 | r<<16 | g<<8 | b. Colors are
// written verbatim; there is no blending and no anti-aliasing.
//
// # Coordinate System
//
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//   - Angles in radians, 0 is right
package overlay
