// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/overlay"
	"github.com/gogpu/overlay/mmio"
)

// Config holds renderer settings.
type Config struct {
	// EnableVSync requests presentation synchronized to vertical blank.
	// Frames are submitted immediately; the flag is carried for devices
	// that can honour it.
	EnableVSync bool

	// DoubleBuffering allocates a second vertex buffer that is swapped in
	// at every BeginFrame.
	DoubleBuffering bool

	// MaxVertices is the capacity of each vertex buffer. At least 2.
	MaxVertices int

	// MaxPrimitives limits DrawVertices calls per frame. 0 means unlimited.
	MaxPrimitives int
}

// DefaultConfig returns the default renderer configuration.
func DefaultConfig() Config {
	return Config{
		EnableVSync:     true,
		DoubleBuffering: true,
		MaxVertices:     65536,
		MaxPrimitives:   0,
	}
}

func (c Config) validate() error {
	if c.MaxVertices < 2 {
		return fmt.Errorf("render: MaxVertices %d, need at least 2: %w", c.MaxVertices, overlay.ErrInvalidParameter)
	}
	if c.MaxPrimitives < 0 {
		return fmt.Errorf("render: MaxPrimitives %d: %w", c.MaxPrimitives, overlay.ErrInvalidParameter)
	}
	return nil
}

// buffers returns how many vertex buffers c calls for.
func (c Config) buffers() int {
	if c.DoubleBuffering {
		return 2
	}
	return 1
}

// Option configures a Renderer during creation.
//
// Example:
//
//	r, err := render.New(dev, render.DefaultConfig(),
//	    render.WithAllocator(sim),
//	    render.WithLogger(slog.Default()))
type Option func(*options)

type options struct {
	alloc  mmio.Allocator
	logger *slog.Logger
}

func defaultOptions() options {
	return options{
		alloc: mmio.HeapAllocator{},
	}
}

// WithAllocator sets the allocator vertex buffers come from.
// The default is mmio.HeapAllocator.
func WithAllocator(a mmio.Allocator) Option {
	return func(o *options) {
		if a != nil {
			o.alloc = a
		}
	}
}

// WithLogger sets a renderer-specific logger. By default the renderer logs
// through overlay.Logger at the time of each call.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
