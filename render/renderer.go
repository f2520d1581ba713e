// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/overlay"
	"github.com/gogpu/overlay/mmio"
)

// Submitter draws a vertex stream as independent line segments.
//
// *gpu.Device implements Submitter. The slice passed to DrawPrimitive
// aliases a renderer buffer and must not be retained.
type Submitter interface {
	DrawPrimitive(vertices []overlay.Vertex) error
}

// FrameStats counts renderer activity since New.
type FrameStats struct {
	// Frames is the number of frames ended with EndFrame.
	Frames uint64
	// Dropped is the number of frames abandoned by a BeginFrame.
	Dropped uint64
	// Vertices is the number of vertices successfully submitted.
	Vertices uint64
}

// Renderer records overlay primitives into vertex buffers and submits one
// buffer per frame.
type Renderer struct {
	mu sync.Mutex

	dev     Submitter
	cfg     Config
	alloc   mmio.Allocator
	logger  *slog.Logger
	buffers []*vertexBuffer
	current int
	back    int // -1 without double buffering
	ready   bool
	stats   FrameStats
}

// New allocates the vertex buffers described by cfg and returns a renderer
// submitting to dev.
//
// Allocation failures release whatever was allocated and match
// overlay.ErrInsufficientResources.
func New(dev Submitter, cfg Config, opts ...Option) (*Renderer, error) {
	if dev == nil {
		return nil, fmt.Errorf("render: nil device: %w", overlay.ErrInvalidParameter)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	r := &Renderer{
		dev:    dev,
		cfg:    cfg,
		alloc:  o.alloc,
		logger: o.logger,
		back:   -1,
	}
	log := r.log()

	for i := 0; i < cfg.buffers(); i++ {
		buf, err := newVertexBuffer(r.alloc, cfg.MaxVertices)
		if err != nil {
			log.Warn("render: buffer allocation failed, releasing", "buffer", i, "err", err)
			r.freeBuffers()
			return nil, fmt.Errorf("render: allocate buffer %d: %w: %w", i, overlay.ErrInsufficientResources, err)
		}
		r.buffers = append(r.buffers, buf)
		log.Debug("render: vertex buffer allocated", "buffer", i,
			"bytes", buf.block.Size(), "phys", buf.block.Phys.String())
	}
	if cfg.DoubleBuffering {
		r.back = 1
	}
	r.ready = true

	log.Info("render: renderer initialized", "buffers", len(r.buffers),
		"max_vertices", cfg.MaxVertices, "vsync", cfg.EnableVSync)
	return r, nil
}

func (r *Renderer) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return overlay.Logger()
}

// freeBuffers releases every buffer. Callers hold r.mu or own r exclusively.
func (r *Renderer) freeBuffers() {
	for _, b := range r.buffers {
		b.free(r.alloc)
	}
	r.buffers = nil
}

// Close releases the vertex buffers. Further frame operations fail with
// overlay.ErrDeviceNotReady. Close is idempotent.
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.ready {
		return nil
	}
	r.freeBuffers()
	r.ready = false
	r.current, r.back = 0, -1
	return nil
}

var errNoFrame = errors.New("render: no frame in progress")

// BeginFrame starts a new frame in a cleared buffer.
//
// With double buffering the current and back buffers swap first. A frame
// still in progress is abandoned without being submitted.
func (r *Renderer) BeginFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.ready {
		return fmt.Errorf("render: begin frame: %w", overlay.ErrDeviceNotReady)
	}

	if cur := r.buffers[r.current]; cur.inUse {
		cur.inUse = false
		r.stats.Dropped++
		r.log().Debug("render: unfinished frame dropped", "buffer", r.current, "vertices", cur.count)
	}
	if r.back >= 0 {
		r.current, r.back = r.back, r.current
	}
	cur := r.buffers[r.current]
	cur.reset()
	cur.inUse = true
	return nil
}

// DrawVertices appends vertices to the current frame.
//
// The frame is drawn as segments (v[0],v[1]), (v[2],v[3]), ... across all
// appended vertices, so a call with an odd count pairs its last vertex with
// the first vertex of the next call. A vertex that fails
// overlay.Vertex.InRange rejects the whole call.
func (r *Renderer) DrawVertices(vertices []overlay.Vertex) error {
	if len(vertices) == 0 {
		return fmt.Errorf("render: draw 0 vertices: %w", overlay.ErrInvalidParameter)
	}
	for i, v := range vertices {
		if !v.InRange() {
			return fmt.Errorf("render: vertex %d at (%v,%v) out of range: %w", i, v.X, v.Y, overlay.ErrInvalidParameter)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.ready {
		return fmt.Errorf("render: draw: %w", overlay.ErrDeviceNotReady)
	}
	cur := r.buffers[r.current]
	if !cur.inUse {
		return fmt.Errorf("render: draw: %w: %w", errNoFrame, overlay.ErrDeviceNotReady)
	}
	if !cur.room(len(vertices)) {
		return fmt.Errorf("render: draw %d vertices with %d of %d used: %w",
			len(vertices), cur.count, r.cfg.MaxVertices, overlay.ErrInsufficientResources)
	}
	if r.cfg.MaxPrimitives > 0 && cur.primitives >= r.cfg.MaxPrimitives {
		return fmt.Errorf("render: primitive limit %d reached: %w", r.cfg.MaxPrimitives, overlay.ErrInsufficientResources)
	}
	cur.append(vertices)
	return nil
}

// EndFrame submits the current frame to the device.
//
// An empty frame completes without touching the device. The buffer is
// released whether or not the submission succeeds.
func (r *Renderer) EndFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.ready {
		return fmt.Errorf("render: end frame: %w", overlay.ErrDeviceNotReady)
	}
	cur := r.buffers[r.current]
	if !cur.inUse {
		return fmt.Errorf("render: end frame: %w: %w", errNoFrame, overlay.ErrDeviceNotReady)
	}

	var err error
	if cur.count > 0 {
		err = r.dev.DrawPrimitive(cur.used())
	}
	cur.inUse = false
	r.stats.Frames++
	if err != nil {
		return fmt.Errorf("render: submit %d vertices: %w", cur.count, err)
	}
	r.stats.Vertices += uint64(cur.count)
	return nil
}

// Config returns the configuration the renderer was created with.
func (r *Renderer) Config() Config {
	return r.cfg
}

// Current returns the index of the current buffer.
func (r *Renderer) Current() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Back returns the index of the back buffer, or -1 without double buffering.
func (r *Renderer) Back() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.back
}

// Buffers returns the number of allocated vertex buffers.
func (r *Renderer) Buffers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buffers)
}

// InUse returns how many buffers hold a frame in progress: 0 or 1.
func (r *Renderer) InUse() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, b := range r.buffers {
		if b.inUse {
			n++
		}
	}
	return n
}

// Pending returns the number of vertices recorded in the current frame.
func (r *Renderer) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.ready {
		return 0
	}
	return r.buffers[r.current].count
}

// Stats returns frame counters.
func (r *Renderer) Stats() FrameStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}
