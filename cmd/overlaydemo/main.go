// Command overlaydemo draws a few frames of overlay shapes onto a display
// controller and saves the resulting frame buffer.
//
// By default it runs against a simulated machine with one display
// controller of the chosen vendor. With -hw it drives the real primary
// display through /dev/mem (Linux, root only).
package main

import (
	"fmt"
	"image"
	"log"
	"log/slog"
	"os"

	"golang.org/x/image/bmp"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/overlay"
	"github.com/gogpu/overlay/gpu"
	"github.com/gogpu/overlay/internal/platform"
	"github.com/gogpu/overlay/mmio"
	"github.com/gogpu/overlay/render"
)

// Simulated BAR addresses.
const (
	simRegisterBase    = mmio.PhysAddr(0xF600_0000)
	simFrameBufferBase = mmio.PhysAddr(0xE000_0000)
)

// machine is what the demo needs from the platform or the simulator.
type machine interface {
	mmio.ConfigSpace
	gpu.Hardware
}

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Verbose {
		overlay.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func openMachine(cfg config) (machine, func(), error) {
	if cfg.Hardware {
		m, err := platform.Open()
		if err != nil {
			return nil, nil, err
		}
		return m, func() { m.Close() }, nil
	}

	id, err := vendorID(cfg.Vendor)
	if err != nil {
		return nil, nil, err
	}
	sim := mmio.NewSim()
	sim.AddFunction(0, 0, 0, gpu.PCIVendorIntel, 0x3E30, 0x06) // host bridge
	sim.AddDisplay(0, 2, 0, id, 0x0001, simRegisterBase, simFrameBufferBase)
	return sim, func() {}, nil
}

func run(cfg config) error {
	m, closeMachine, err := openMachine(cfg)
	if err != nil {
		return err
	}
	defer closeMachine()

	dev, err := gpu.Detect(m)
	if err != nil {
		return err
	}
	dev.Mode = gpu.Mode{Width: cfg.Width, Height: cfg.Height, Bpp: 32}
	if err := gpu.Init(dev, m); err != nil {
		return err
	}
	defer gpu.Cleanup(dev)

	opts := []render.Option{}
	if a, ok := m.(mmio.Allocator); ok {
		opts = append(opts, render.WithAllocator(a))
	}
	r, err := render.New(dev, render.Config{
		EnableVSync:     cfg.VSync,
		DoubleBuffering: cfg.Double,
		MaxVertices:     cfg.MaxVertices,
		MaxPrimitives:   cfg.MaxPrimitives,
	}, opts...)
	if err != nil {
		return err
	}
	defer r.Close()

	for i := 0; i < cfg.Frames; i++ {
		if err := dev.Clear(overlay.Hex(cfg.Background)); err != nil {
			return err
		}
		if err := r.BeginFrame(); err != nil {
			return err
		}
		if err := drawScene(r, cfg.Width, cfg.Height, i); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		if err := r.EndFrame(); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}

	img, err := dev.Snapshot()
	if err != nil {
		return err
	}
	if cfg.Output != "" {
		if err := saveBMP(cfg.Output, img); err != nil {
			return err
		}
	}
	if cfg.Preview {
		printPreview(os.Stdout, img)
	}

	info := dev.AdapterInfo()
	st := r.Stats()
	p := message.NewPrinter(language.English)
	p.Printf("%s (%s, %s) %v: %d frames, %d vertices, %d dropped\n",
		info.Name, info.Driver, dev.AdapterType(), dev.CurrentMode(), st.Frames, st.Vertices, st.Dropped)
	return nil
}

func saveBMP(path string, img *image.RGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := bmp.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
