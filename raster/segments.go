// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"fmt"

	"github.com/gogpu/overlay"
)

// DrawSegments draws vertices as independent line segments: (v[0],v[1]),
// (v[2],v[3]), and so on. Each segment takes the color of its first vertex.
// A trailing unpaired vertex is ignored. Fewer than two vertices is an error.
//
// Float coordinates are truncated toward zero. A vertex that is not finite
// or does not fit in an int32 is an error and nothing is drawn.
func DrawSegments(s Surface, vertices []overlay.Vertex) error {
	if len(vertices) < 2 {
		return fmt.Errorf("raster: %d vertices, need at least 2: %w", len(vertices), overlay.ErrInvalidParameter)
	}
	for i, v := range vertices {
		if !v.InRange() {
			return fmt.Errorf("raster: vertex %d at (%v,%v) out of range: %w", i, v.X, v.Y, overlay.ErrInvalidParameter)
		}
	}
	for i := 0; i+1 < len(vertices); i += 2 {
		a, b := vertices[i], vertices[i+1]
		DrawLine(s, int(a.X), int(a.Y), int(b.X), int(b.Y), a.Color.Pack())
	}
	return nil
}

// Segments returns the number of segments DrawSegments draws for n vertices.
func Segments(n int) int {
	return n / 2
}
