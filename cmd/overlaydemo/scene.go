package main

import (
	"math"

	"github.com/gogpu/overlay"
	"github.com/gogpu/overlay/render"
)

// drawScene records one frame of the demo overlay. Frame i shifts the
// moving parts so consecutive frames differ.
func drawScene(r *render.Renderer, w, h, frame int) error {
	fw, fh := int32(w), int32(h)
	pad := fw / 20

	// Frame border and crosshair.
	if err := r.DrawRect(overlay.Rect{X: pad, Y: pad, Width: fw - 2*pad, Height: fh - 2*pad}, overlay.White, false); err != nil {
		return err
	}
	if err := r.DrawLine(overlay.Pt(fw/2, pad), overlay.Pt(fw/2, fh-pad), overlay.Hex("#666")); err != nil {
		return err
	}
	if err := r.DrawLine(overlay.Pt(pad, fh/2), overlay.Pt(fw-pad, fh/2), overlay.Hex("#666")); err != nil {
		return err
	}

	if err := r.DrawCircle(overlay.Pt(fw/2, fh/2), fh/24, overlay.Yellow, true); err != nil {
		return err
	}

	// Corner markers.
	box := fw / 10
	if err := r.DrawRect(overlay.Rect{X: 2 * pad, Y: 2 * pad, Width: box, Height: box / 2}, overlay.Red, true); err != nil {
		return err
	}
	if err := r.DrawTriangle(
		overlay.Pt(fw-2*pad, fh-2*pad),
		overlay.Pt(fw-2*pad-box, fh-2*pad),
		overlay.Pt(fw-2*pad, fh-2*pad-box),
		overlay.Green, false); err != nil {
		return err
	}

	// The outline ring has an odd vertex count, so it goes last: its
	// closing vertex is left unpaired instead of shifting later pairs.
	a := float64(frame) * math.Pi / 6
	orbit := float64(min(fw, fh)) / 4
	c := overlay.Pt(fw/2+int32(math.Cos(a)*orbit), fh/2+int32(math.Sin(a)*orbit))
	return r.DrawCircle(c, fh/12, overlay.Cyan, false)
}
