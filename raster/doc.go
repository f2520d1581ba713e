// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package raster scan-converts overlay line segments into frame-buffer pixels.
//
// Line walks the integer Bresenham path between two endpoints. DrawLine
// plots that path onto a Surface, clipping pixels that fall outside it, and
// DrawSegments applies the vertex-pair rule used by every GPU backend:
// vertices (0,1), (2,3), ... each form one segment colored by their first
// vertex, and a trailing odd vertex is ignored.
//
// Usage:
//
//	pm := raster.NewPixmap(320, 240)
//	raster.DrawLine(pm, 0, 0, 319, 239, overlay.Red.Pack())
//	img := pm.ToImage()
package raster
