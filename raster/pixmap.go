// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"image"
	"image/color"

	"github.com/gogpu/overlay"
)

// Pixmap is an in-memory Surface holding one packed word per pixel.
//
// It is the software stand-in for a mapped frame buffer: tests and
// tools rasterize into it and convert the result to an image.
type Pixmap struct {
	width  int
	height int
	data   []uint32
	writes int
}

// NewPixmap creates a new pixmap with the given dimensions.
func NewPixmap(width, height int) *Pixmap {
	return &Pixmap{
		width:  width,
		height: height,
		data:   make([]uint32, width*height),
	}
}

// Width returns the width of the pixmap.
func (p *Pixmap) Width() int {
	return p.width
}

// Height returns the height of the pixmap.
func (p *Pixmap) Height() int {
	return p.height
}

// Data returns the raw pixel words, row-major.
func (p *Pixmap) Data() []uint32 {
	return p.data
}

// SetPixel stores the packed word c at (x, y).
// Out-of-range coordinates are ignored.
func (p *Pixmap) SetPixel(x, y int, c uint32) {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return
	}
	p.data[y*p.width+x] = c
	p.writes++
}

// Pixel returns the packed word at (x, y), or 0 outside the pixmap.
func (p *Pixmap) Pixel(x, y int) uint32 {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return 0
	}
	return p.data[y*p.width+x]
}

// Writes returns how many pixels have been stored since creation or the
// last Clear.
func (p *Pixmap) Writes() int {
	return p.writes
}

// Clear fills the entire pixmap with a color.
func (p *Pixmap) Clear(c overlay.Color) {
	v := c.Pack()
	for i := range p.data {
		p.data[i] = v
	}
	p.writes = 0
}

// ToImage converts the pixmap to an image.RGBA.
func (p *Pixmap) ToImage() *image.RGBA {
	return WordsToImage(p.width, p.height, func(i int) uint32 { return p.data[i] })
}

// WordsToImage builds an image.RGBA from width×height packed words returned
// by word in row-major order. The alpha channel is copied as-is.
func WordsToImage(width, height int, word func(i int) uint32) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < width*height; i++ {
		c := overlay.Unpack(word(i))
		o := i * 4
		img.Pix[o+0] = c.R
		img.Pix[o+1] = c.G
		img.Pix[o+2] = c.B
		img.Pix[o+3] = c.A
	}
	return img
}

// At implements the image.Image interface.
func (p *Pixmap) At(x, y int) color.Color {
	return overlay.Unpack(p.Pixel(x, y))
}

// Bounds implements the image.Image interface.
func (p *Pixmap) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.width, p.height)
}

// ColorModel implements the image.Image interface.
func (p *Pixmap) ColorModel() color.Model {
	return color.NRGBAModel
}

var (
	_ Surface     = (*Pixmap)(nil)
	_ image.Image = (*Pixmap)(nil)
)
