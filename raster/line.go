// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

// Surface is a rectangular grid of 32-bit pixels.
//
// Pixel words are a<<24 | r<<16 | g<<8 | b (see overlay.Color.Pack).
// Callers only pass coordinates inside [0,Width)×[0,Height).
type Surface interface {
	Width() int
	Height() int
	SetPixel(x, y int, c uint32)
}

// Line visits every position of the Bresenham line from (x1,y1) to (x2,y2).
//
// Exactly max(|x2-x1|, |y2-y1|)+1 positions are visited, starting at
// (x1,y1) and ending at (x2,y2), and consecutive positions differ by at most
// one in each axis. No clipping is performed. Coordinates must fit in an
// int32.
func Line(x1, y1, x2, y2 int, visit func(x, y int)) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx := 1
	if x1 >= x2 {
		sx = -1
	}
	sy := 1
	if y1 >= y2 {
		sy = -1
	}
	err := dx - dy

	for {
		visit(x1, y1)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// DrawLine plots the line from (x1,y1) to (x2,y2) onto s with color c.
// Pixels outside the surface are silently clipped.
func DrawLine(s Surface, x1, y1, x2, y2 int, c uint32) {
	w, h := s.Width(), s.Height()
	Line(x1, y1, x2, y2, func(x, y int) {
		if x >= 0 && x < w && y >= 0 && y < h {
			s.SetPixel(x, y, c)
		}
	})
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
