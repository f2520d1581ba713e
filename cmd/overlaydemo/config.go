package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/overlay/gpu"
)

// config is the demo configuration. Values come from defaults, then the
// TOML file given by -config, then explicitly set flags.
type config struct {
	Width         int    `toml:"width"`
	Height        int    `toml:"height"`
	Vendor        string `toml:"vendor"`
	Frames        int    `toml:"frames"`
	Double        bool   `toml:"double_buffering"`
	VSync         bool   `toml:"vsync"`
	MaxVertices   int    `toml:"max_vertices"`
	MaxPrimitives int    `toml:"max_primitives"`
	Background    string `toml:"background"`
	Output        string `toml:"output"`
	Preview       bool   `toml:"preview"`
	Hardware      bool   `toml:"hardware"`
	Verbose       bool   `toml:"verbose"`
}

// minSize keeps every shape of the scene non-degenerate.
const minSize = 64

func defaultConfig() config {
	return config{
		Width:       640,
		Height:      480,
		Vendor:      "intel",
		Frames:      3,
		Double:      true,
		VSync:       true,
		MaxVertices: 4096,
		Background:  "#101820",
		Output:      "overlay.bmp",
	}
}

// loadConfig decodes a TOML file over cfg. Unknown keys are an error.
func loadConfig(path string, cfg *config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return nil
}

// parseConfig resolves the configuration from args.
func parseConfig(args []string) (config, error) {
	cfg := defaultConfig()

	fs := flag.NewFlagSet("overlaydemo", flag.ContinueOnError)
	var (
		path    = fs.String("config", "", "TOML configuration file")
		width   = fs.Int("width", cfg.Width, "display width")
		height  = fs.Int("height", cfg.Height, "display height")
		vendor  = fs.String("vendor", cfg.Vendor, "simulated vendor: nvidia, amd or intel")
		frames  = fs.Int("frames", cfg.Frames, "number of frames to render")
		double  = fs.Bool("double", cfg.Double, "double-buffer vertex buffers")
		output  = fs.String("output", cfg.Output, "BMP snapshot path (empty to skip)")
		preview = fs.Bool("preview", cfg.Preview, "print a terminal preview")
		hw      = fs.Bool("hw", cfg.Hardware, "drive real hardware through /dev/mem")
		verbose = fs.Bool("v", cfg.Verbose, "debug logging")
	)
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if *path != "" {
		if err := loadConfig(*path, &cfg); err != nil {
			return cfg, err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "vendor":
			cfg.Vendor = *vendor
		case "frames":
			cfg.Frames = *frames
		case "double":
			cfg.Double = *double
		case "output":
			cfg.Output = *output
		case "preview":
			cfg.Preview = *preview
		case "hw":
			cfg.Hardware = *hw
		case "v":
			cfg.Verbose = *verbose
		}
	})

	if _, err := vendorID(cfg.Vendor); err != nil {
		return cfg, err
	}
	if cfg.Width < minSize || cfg.Height < minSize {
		return cfg, fmt.Errorf("display must be at least %dx%d, got %dx%d", minSize, minSize, cfg.Width, cfg.Height)
	}
	if cfg.Frames < 1 {
		return cfg, fmt.Errorf("frames must be positive, got %d", cfg.Frames)
	}
	return cfg, nil
}

func vendorID(name string) (uint16, error) {
	switch strings.ToLower(name) {
	case "nvidia":
		return gpu.PCIVendorNVIDIA, nil
	case "amd":
		return gpu.PCIVendorAMD, nil
	case "intel":
		return gpu.PCIVendorIntel, nil
	default:
		return 0, fmt.Errorf("unknown vendor %q", name)
	}
}
