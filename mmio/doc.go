// Package mmio defines the hardware collaborators consumed by the overlay
// core and a typed, bounds-checked view over mapped register memory.
//
// The collaborators:
//
//   - ConfigSpace reads PCI configuration dwords (device enumeration).
//   - RegisterIO reads and writes 32-bit words at mapped virtual addresses.
//   - Mapper maps and unmaps physical address ranges.
//   - Allocator hands out non-pageable memory blocks.
//
// Sim implements all four over simulated physical memory. It is used by the
// tests throughout the module and by the demo command.
package mmio
