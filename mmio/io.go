package mmio

import (
	"fmt"

	"github.com/gogpu/overlay"
)

// PhysAddr is a physical bus address.
type PhysAddr uint64

// VirtAddr is a virtual address returned by a Mapper or an Allocator.
type VirtAddr uintptr

// String formats the address as hex.
func (a PhysAddr) String() string { return fmt.Sprintf("%#x", uint64(a)) }

// String formats the address as hex.
func (a VirtAddr) String() string { return fmt.Sprintf("%#x", uintptr(a)) }

// ConfigSpace reads PCI configuration space.
//
// Absent functions read as all ones, as on real hardware.
type ConfigSpace interface {
	ReadConfig(bus, dev, fn uint8, offset uint16) uint32
}

// RegisterIO performs raw 32-bit accesses at mapped virtual addresses.
type RegisterIO interface {
	ReadRegister(addr VirtAddr) uint32
	WriteRegister(addr VirtAddr, v uint32)
}

// Mapper maps physical address ranges into the virtual address space.
type Mapper interface {
	// Map returns the virtual base of a mapping of size bytes at phys.
	Map(phys PhysAddr, size int) (VirtAddr, error)
	// Unmap releases a mapping created by Map.
	Unmap(virt VirtAddr, size int)
}

// Block is a contiguous non-pageable memory block.
//
// Contents are not guaranteed to be zeroed on allocation.
type Block struct {
	Virt VirtAddr
	Phys PhysAddr
	Data []byte
}

// Size returns the block size in bytes.
func (b *Block) Size() int { return len(b.Data) }

// Allocator hands out non-pageable memory.
type Allocator interface {
	Allocate(size int) (*Block, error)
	Free(b *Block)
}

// HeapAllocator allocates blocks from the Go heap.
//
// Blocks are 8-byte aligned and carry no physical address.
type HeapAllocator struct{}

// Allocate returns a heap block of size bytes.
func (HeapAllocator) Allocate(size int) (*Block, error) {
	if size <= 0 {
		return nil, fmt.Errorf("mmio: allocate %d bytes: %w", size, overlay.ErrInvalidParameter)
	}
	words := make([]uint64, (size+7)/8)
	data := unsafeBytes(words, size)
	return &Block{Virt: VirtAddr(addrOf(data)), Data: data}, nil
}

// Free releases b. The heap reclaims the memory once unreferenced.
func (HeapAllocator) Free(b *Block) {
	if b != nil {
		b.Data = nil
	}
}
