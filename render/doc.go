// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render batches overlay primitives into vertex buffers and submits
// them to a device one frame at a time.
//
// # Frames
//
// A frame is bracketed by BeginFrame and EndFrame. Between the two, shape
// calls (DrawLine, DrawRect, DrawCircle, DrawTriangle) and DrawVertices
// append to the current buffer. EndFrame hands the used part of the buffer
// to the Submitter, which draws it as independent line segments.
//
//	r, err := render.New(dev, render.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	if err := r.BeginFrame(); err != nil {
//	    return err
//	}
//	r.DrawRect(overlay.Rect{X: 10, Y: 10, Width: 200, Height: 40}, overlay.Red, false)
//	r.DrawCircle(overlay.Pt(320, 240), 50, overlay.Green, false)
//	if err := r.EndFrame(); err != nil {
//	    return err
//	}
//
// # Buffering
//
// With Config.DoubleBuffering the renderer owns two buffers and swaps them
// at each BeginFrame. At most one buffer is in use at any time. Starting a
// frame while another is unfinished abandons the unfinished one; it is
// counted in FrameStats.Dropped and never submitted.
//
// # Shapes
//
// Filled shapes are emitted as triangle vertex lists, which the segment
// rasterizer draws as the segments between consecutive vertex pairs. Outline
// rectangles and triangles are issued as separate lines and stop at the
// first failure without undoing earlier lines.
//
// # Thread Safety
//
// All Renderer methods are safe for concurrent use. EndFrame calls the
// Submitter while holding the renderer lock.
package render
