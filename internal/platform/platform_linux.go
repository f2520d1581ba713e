//go:build linux

package platform

import (
	"encoding/binary"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/gogpu/overlay"
	"github.com/gogpu/overlay/mmio"
)

type pciLoc struct {
	bus, dev, fn uint8
}

type mapping struct {
	virt mmio.VirtAddr
	page []byte // whole mmap'd region
	win  []byte // requested range within page
}

// Linux implements Machine with /dev/mem and sysfs.
type Linux struct {
	mu sync.Mutex

	mem    int
	sysfs  string
	config map[pciLoc]int
	maps   []mapping
	closed bool
}

// Open opens /dev/mem for mapping. It needs CAP_SYS_RAWIO and a kernel
// without strict /dev/mem restrictions on the target ranges.
func Open() (Machine, error) {
	return open(DevMem, SysfsPCI)
}

func open(memPath, sysfs string) (*Linux, error) {
	fd, err := unix.Open(memPath, unix.O_RDWR|unix.O_SYNC|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("platform: open %s: %w: %w", memPath, overlay.ErrDeviceNotReady, err)
	}
	return &Linux{
		mem:    fd,
		sysfs:  sysfs,
		config: make(map[pciLoc]int),
	}, nil
}

// ReadConfig implements mmio.ConfigSpace by reading the sysfs config file
// of the function. Absent functions and failed reads return all ones.
func (l *Linux) ReadConfig(bus, dev, fn uint8, offset uint16) uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0xFFFFFFFF
	}

	loc := pciLoc{bus, dev, fn}
	fd, ok := l.config[loc]
	if !ok {
		path := filepath.Join(l.sysfs, fmt.Sprintf("0000:%02x:%02x.%d", bus, dev, fn), "config")
		var err error
		fd, err = unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
		if err != nil {
			fd = -1
		}
		l.config[loc] = fd
	}
	if fd < 0 {
		return 0xFFFFFFFF
	}

	var buf [4]byte
	n, err := unix.Pread(fd, buf[:], int64(offset&^3))
	if err != nil || n != len(buf) {
		return 0xFFFFFFFF
	}
	return binary.LittleEndian.Uint32(buf[:])
}

// Map implements mmio.Mapper with a shared, uncached mapping of /dev/mem.
func (l *Linux) Map(phys mmio.PhysAddr, size int) (mmio.VirtAddr, error) {
	if size <= 0 {
		return 0, fmt.Errorf("platform: map %d bytes: %w", size, overlay.ErrInvalidParameter)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, fmt.Errorf("platform: map %v: %w", phys, overlay.ErrDeviceNotReady)
	}

	pageSize := unix.Getpagesize()
	base := int64(phys) &^ int64(pageSize-1)
	delta := int(int64(phys) - base)
	length := (delta + size + pageSize - 1) &^ (pageSize - 1)

	page, err := unix.Mmap(l.mem, base, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return 0, fmt.Errorf("platform: mmap [%v, +%#x): %w: %w", phys, size, overlay.ErrUnsuccessful, err)
	}
	win := page[delta : delta+size]
	m := mapping{
		virt: mmio.VirtAddr(uintptr(unsafe.Pointer(unsafe.SliceData(win)))),
		page: page,
		win:  win,
	}
	l.maps = append(l.maps, m)
	return m.virt, nil
}

// Unmap implements mmio.Mapper.
func (l *Linux) Unmap(virt mmio.VirtAddr, size int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, m := range l.maps {
		if m.virt == virt && len(m.win) == size {
			_ = unix.Munmap(m.page)
			l.maps = append(l.maps[:i], l.maps[i+1:]...)
			return
		}
	}
}

// word returns the register at addr. Accesses outside every mapping panic.
func (l *Linux) word(addr mmio.VirtAddr) *uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.maps {
		if addr >= m.virt && addr+4 <= m.virt+mmio.VirtAddr(len(m.win)) {
			return (*uint32)(unsafe.Pointer(&m.win[addr-m.virt]))
		}
	}
	panic(fmt.Sprintf("platform: access to unmapped address %v", addr))
}

// ReadRegister implements mmio.RegisterIO with a single 32-bit load.
func (l *Linux) ReadRegister(addr mmio.VirtAddr) uint32 {
	return atomic.LoadUint32(l.word(addr))
}

// WriteRegister implements mmio.RegisterIO with a single 32-bit store.
func (l *Linux) WriteRegister(addr mmio.VirtAddr, v uint32) {
	atomic.StoreUint32(l.word(addr), v)
}

// Close unmaps everything and closes the underlying files.
func (l *Linux) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true

	var errs []error
	for _, m := range l.maps {
		errs = append(errs, unix.Munmap(m.page))
	}
	l.maps = nil
	for _, fd := range l.config {
		if fd >= 0 {
			errs = append(errs, unix.Close(fd))
		}
	}
	errs = append(errs, unix.Close(l.mem))
	return errors.Join(errs...)
}
