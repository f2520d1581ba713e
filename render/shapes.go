// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"math"

	"github.com/gogpu/overlay"
)

// CircleSegments is the number of segments approximating a circle.
const CircleSegments = 32

func vertexAt(p overlay.Point, u, v float32, c overlay.Color) overlay.Vertex {
	return overlay.Vertex{X: float32(p.X), Y: float32(p.Y), U: u, V: v, Color: c}
}

// DrawLine records a line from start to end.
func (r *Renderer) DrawLine(start, end overlay.Point, c overlay.Color) error {
	return r.DrawVertices([]overlay.Vertex{
		vertexAt(start, 0, 0, c),
		vertexAt(end, 1, 1, c),
	})
}

// DrawRect records rect as two triangles when filled, otherwise as its four
// edges. The outline stops at the first edge that fails. A rect whose far
// corner does not fit in an int32 is rejected.
func (r *Renderer) DrawRect(rect overlay.Rect, c overlay.Color, filled bool) error {
	x2 := int64(rect.X) + int64(rect.Width)
	y2 := int64(rect.Y) + int64(rect.Height)
	if x2 != int64(int32(x2)) || y2 != int64(int32(y2)) {
		return fmt.Errorf("render: rect %+v overflows: %w", rect, overlay.ErrInvalidParameter)
	}

	tl := overlay.Pt(rect.X, rect.Y)
	tr := overlay.Pt(int32(x2), rect.Y)
	br := overlay.Pt(int32(x2), int32(y2))
	bl := overlay.Pt(rect.X, int32(y2))

	if !filled {
		return r.drawPolyline(c, tl, tr, br, bl, tl)
	}

	corners := [6]overlay.Point{tl, tr, bl, tr, br, bl}
	var v [6]overlay.Vertex
	for i, p := range corners {
		var u, w float32 = 1, 0
		if i%3 == 0 {
			u = 0
		}
		if i >= 3 {
			w = 1
		}
		v[i] = vertexAt(p, u, w, c)
	}
	return r.DrawVertices(v[:])
}

// DrawCircle records a circle of CircleSegments segments. Filled circles
// are a fan of triangles around the center; outlines are the closed ring of
// CircleSegments+1 perimeter points.
func (r *Renderer) DrawCircle(center overlay.Point, radius int32, c overlay.Color, filled bool) error {
	if radius <= 0 {
		return fmt.Errorf("render: circle radius %d: %w", radius, overlay.ErrInvalidParameter)
	}

	cx, cy := float64(center.X), float64(center.Y)
	rad := float64(radius)
	step := 2 * math.Pi / CircleSegments
	perimeter := func(i int) overlay.Vertex {
		a := float64(i) * step
		return overlay.Vertex{
			X:     float32(cx + math.Cos(a)*rad),
			Y:     float32(cy + math.Sin(a)*rad),
			Color: c,
		}
	}

	if !filled {
		v := make([]overlay.Vertex, 0, CircleSegments+1)
		for i := 0; i <= CircleSegments; i++ {
			v = append(v, perimeter(i))
		}
		return r.DrawVertices(v)
	}

	mid := overlay.Vertex{X: float32(cx), Y: float32(cy), Color: c}
	v := make([]overlay.Vertex, 0, CircleSegments*3)
	for i := 0; i < CircleSegments; i++ {
		v = append(v, mid, perimeter(i), perimeter(i+1))
	}
	return r.DrawVertices(v)
}

// DrawTriangle records the triangle p1, p2, p3.
func (r *Renderer) DrawTriangle(p1, p2, p3 overlay.Point, c overlay.Color, filled bool) error {
	if !filled {
		return r.drawPolyline(c, p1, p2, p3, p1)
	}
	return r.DrawVertices([]overlay.Vertex{
		vertexAt(p1, 0, 0, c),
		vertexAt(p2, 1, 0, c),
		vertexAt(p3, 0.5, 1, c),
	})
}

// drawPolyline draws a line between each pair of consecutive points.
func (r *Renderer) drawPolyline(c overlay.Color, pts ...overlay.Point) error {
	return polyline(pts, func(a, b overlay.Point) error {
		return r.DrawLine(a, b, c)
	})
}

// polyline calls line for each pair of consecutive points and stops at the
// first error.
func polyline(pts []overlay.Point, line func(a, b overlay.Point) error) error {
	for i := 0; i+1 < len(pts); i++ {
		if err := line(pts[i], pts[i+1]); err != nil {
			return err
		}
	}
	return nil
}
