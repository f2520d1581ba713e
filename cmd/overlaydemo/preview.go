package main

import (
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/gogpu/overlay"
)

// printPreview renders img to w with half-block characters, two image rows
// per terminal line, scaled to the terminal width.
func printPreview(w io.Writer, img *image.RGBA) {
	cols := 80
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil && tw > 0 {
			cols = tw
		}
	}
	b := img.Bounds()
	cols = min(cols, b.Dx())
	if cols <= 0 {
		return
	}
	scale := float64(b.Dx()) / float64(cols)
	rows := int(float64(b.Dy()) / scale)

	out := termenv.NewOutput(w)
	profile := out.ColorProfile()
	sample := func(x, y int) termenv.Color {
		px := b.Min.X + int(float64(x)*scale)
		py := b.Min.Y + int(float64(y)*scale)
		c := overlay.FromColor(img.RGBAAt(px, py))
		return profile.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
	}

	var sb strings.Builder
	for y := 0; y+1 < rows; y += 2 {
		for x := 0; x < cols; x++ {
			sb.WriteString(out.String("▀").Foreground(sample(x, y)).Background(sample(x, y+1)).String())
		}
		sb.WriteByte('\n')
	}
	io.WriteString(w, sb.String())
}
