// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"unsafe"

	"github.com/gogpu/overlay"
	"github.com/gogpu/overlay/mmio"
)

// vertexBuffer is a fixed-capacity vertex array laid over an allocated block.
type vertexBuffer struct {
	block      *mmio.Block
	vertices   []overlay.Vertex
	count      int
	primitives int
	inUse      bool
}

func newVertexBuffer(a mmio.Allocator, capacity int) (*vertexBuffer, error) {
	block, err := a.Allocate(capacity * overlay.VertexStride)
	if err != nil {
		return nil, err
	}
	return &vertexBuffer{
		block:    block,
		vertices: unsafe.Slice((*overlay.Vertex)(unsafe.Pointer(unsafe.SliceData(block.Data))), capacity),
	}, nil
}

// reset zeroes the storage and empties the buffer.
func (b *vertexBuffer) reset() {
	clear(b.block.Data)
	b.count = 0
	b.primitives = 0
}

func (b *vertexBuffer) free(a mmio.Allocator) {
	a.Free(b.block)
	b.block = nil
	b.vertices = nil
	b.count = 0
	b.inUse = false
}

// room reports whether n more vertices fit.
func (b *vertexBuffer) room(n int) bool {
	return n <= len(b.vertices)-b.count
}

func (b *vertexBuffer) append(v []overlay.Vertex) {
	b.count += copy(b.vertices[b.count:], v)
	b.primitives++
}

// used returns the filled prefix.
func (b *vertexBuffer) used() []overlay.Vertex {
	return b.vertices[:b.count]
}
