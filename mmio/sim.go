package mmio

import (
	"fmt"
	"sync"

	"github.com/gogpu/overlay"
)

// Simulated aperture sizes for AddDisplay.
const (
	SimRegisterAperture    = 16 << 20
	SimFrameBufferAperture = 256 << 20
)

const (
	simVirtBase = 0x7F00_0000_0000
	simPageSize = 4096
)

type pciLoc struct {
	bus, dev, fn uint8
}

type simRange struct {
	phys PhysAddr
	size int
}

func (r simRange) contains(phys PhysAddr, size int) bool {
	return phys >= r.phys && uint64(phys)+uint64(size) <= uint64(r.phys)+uint64(r.size)
}

type simMapping struct {
	virt VirtAddr
	phys PhysAddr
	size int
}

// Sim is a simulated machine implementing ConfigSpace, RegisterIO, Mapper
// and Allocator.
//
// Physical memory is sparse: only words that were written are stored, so
// large apertures cost nothing until touched. Sim is safe for concurrent use.
type Sim struct {
	mu sync.Mutex

	config    map[pciLoc]map[uint16]uint32
	apertures []simRange
	mem       map[PhysAddr]uint32
	mappings  []simMapping
	nextVirt  VirtAddr

	failMap   map[PhysAddr]bool
	allocLeft int // remaining successful allocations; negative means unlimited
	live      map[*Block]struct{}
	nextPhys  PhysAddr

	reads  uint64
	writes uint64
}

// NewSim returns an empty simulated machine.
func NewSim() *Sim {
	return &Sim{
		config:    make(map[pciLoc]map[uint16]uint32),
		mem:       make(map[PhysAddr]uint32),
		nextVirt:  simVirtBase,
		failMap:   make(map[PhysAddr]bool),
		allocLeft: -1,
		live:      make(map[*Block]struct{}),
		nextPhys:  0x0010_0000,
	}
}

// AddFunction adds a PCI function with the given identity and class code.
func (s *Sim) AddFunction(bus, dev, fn uint8, vendorID, deviceID uint16, class uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config[pciLoc{bus, dev, fn}] = map[uint16]uint32{
		0x00: uint32(deviceID)<<16 | uint32(vendorID),
		0x08: uint32(class) << 24,
	}
}

// AddDisplay adds a display controller whose register window lives at
// regBase and whose frame-buffer aperture lives at fbBase. Both are exposed
// as 64-bit memory BARs (BAR0/1 and BAR2/3) and backed by simulated memory.
func (s *Sim) AddDisplay(bus, dev, fn uint8, vendorID, deviceID uint16, regBase, fbBase PhysAddr) {
	s.AddFunction(bus, dev, fn, vendorID, deviceID, 0x03)

	s.mu.Lock()
	cfg := s.config[pciLoc{bus, dev, fn}]
	cfg[0x10] = uint32(regBase)&^0xF | 0x4 // 64-bit, non-prefetchable
	cfg[0x14] = uint32(uint64(regBase) >> 32)
	cfg[0x18] = uint32(fbBase)&^0xF | 0xC // 64-bit, prefetchable
	cfg[0x1C] = uint32(uint64(fbBase) >> 32)
	s.mu.Unlock()

	s.AddMemory(regBase, SimRegisterAperture)
	s.AddMemory(fbBase, SimFrameBufferAperture)
}

// SetConfig overrides one configuration dword of an existing function.
func (s *Sim) SetConfig(bus, dev, fn uint8, offset uint16, v uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.config[pciLoc{bus, dev, fn}]
	if !ok {
		cfg = make(map[uint16]uint32)
		s.config[pciLoc{bus, dev, fn}] = cfg
	}
	cfg[offset] = v
}

// AddMemory makes [phys, phys+size) mappable.
func (s *Sim) AddMemory(phys PhysAddr, size int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apertures = append(s.apertures, simRange{phys: phys, size: size})
}

// FailMap makes every Map call at phys fail.
func (s *Sim) FailMap(phys PhysAddr) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failMap[phys] = true
}

// FailAllocAfter lets the next n allocations succeed and fails the rest.
// A negative n removes the limit.
func (s *Sim) FailAllocAfter(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allocLeft = n
}

// ReadConfig implements ConfigSpace.
func (s *Sim) ReadConfig(bus, dev, fn uint8, offset uint16) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.config[pciLoc{bus, dev, fn}]
	if !ok {
		return 0xFFFFFFFF
	}
	return cfg[offset&^3]
}

// Map implements Mapper.
func (s *Sim) Map(phys PhysAddr, size int) (VirtAddr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if size <= 0 {
		return 0, fmt.Errorf("mmio: map %d bytes: %w", size, overlay.ErrInvalidParameter)
	}
	if s.failMap[phys] {
		return 0, fmt.Errorf("mmio: map %v: %w", phys, overlay.ErrUnsuccessful)
	}
	backed := false
	for _, r := range s.apertures {
		if r.contains(phys, size) {
			backed = true
			break
		}
	}
	if !backed {
		return 0, fmt.Errorf("mmio: map [%v, +%#x): no memory: %w", phys, size, overlay.ErrUnsuccessful)
	}

	virt := s.nextVirt
	pages := (size + simPageSize - 1) / simPageSize
	s.nextVirt += VirtAddr((pages + 1) * simPageSize) // leave a guard page
	s.mappings = append(s.mappings, simMapping{virt: virt, phys: phys, size: size})
	return virt, nil
}

// Unmap implements Mapper. Unknown mappings are ignored.
func (s *Sim) Unmap(virt VirtAddr, size int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.mappings {
		if m.virt == virt && m.size == size {
			s.mappings = append(s.mappings[:i], s.mappings[i+1:]...)
			return
		}
	}
}

// translate resolves a mapped virtual address. Callers hold s.mu.
func (s *Sim) translate(addr VirtAddr) PhysAddr {
	for _, m := range s.mappings {
		if addr >= m.virt && addr+4 <= m.virt+VirtAddr(m.size) {
			return m.phys + PhysAddr(addr-m.virt)
		}
	}
	panic(fmt.Sprintf("mmio: access to unmapped address %v", addr))
}

// ReadRegister implements RegisterIO. Accessing an unmapped address panics,
// mirroring a page fault.
func (s *Sim) ReadRegister(addr VirtAddr) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	return s.mem[s.translate(addr)]
}

// WriteRegister implements RegisterIO.
func (s *Sim) WriteRegister(addr VirtAddr, v uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	s.mem[s.translate(addr)] = v
}

// Allocate implements Allocator. Blocks get distinct fake physical addresses.
func (s *Sim) Allocate(size int) (*Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.allocLeft == 0 {
		return nil, fmt.Errorf("mmio: allocate %d bytes: %w", size, overlay.ErrInsufficientResources)
	}
	b, err := HeapAllocator{}.Allocate(size)
	if err != nil {
		return nil, err
	}
	if s.allocLeft > 0 {
		s.allocLeft--
	}
	// Fill with garbage: allocation does not zero memory.
	for i := range b.Data {
		b.Data[i] = 0xA5
	}
	b.Phys = s.nextPhys
	s.nextPhys += PhysAddr((size + simPageSize - 1) / simPageSize * simPageSize)
	s.live[b] = struct{}{}
	return b, nil
}

// Free implements Allocator.
func (s *Sim) Free(b *Block) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.live, b)
	HeapAllocator{}.Free(b)
}

// Peek returns the simulated physical word at phys.
func (s *Sim) Peek(phys PhysAddr) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mem[phys]
}

// Poke stores v at phys without counting it as a register write.
func (s *Sim) Poke(phys PhysAddr, v uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mem[phys] = v
}

// Mappings returns the number of live mappings.
func (s *Sim) Mappings() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.mappings)
}

// Allocations returns the number of live allocated blocks.
func (s *Sim) Allocations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// Writes returns the number of register writes performed so far.
func (s *Sim) Writes() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Reads returns the number of register reads performed so far.
func (s *Sim) Reads() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

var (
	_ ConfigSpace = (*Sim)(nil)
	_ RegisterIO  = (*Sim)(nil)
	_ Mapper      = (*Sim)(nil)
	_ Allocator   = (*Sim)(nil)
)
