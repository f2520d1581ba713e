// Package platform provides access to real display hardware: PCI
// configuration space, physical memory mapping and register I/O.
//
// Only Linux is supported, through sysfs and /dev/mem. Elsewhere Open
// returns overlay.ErrNotSupported.
package platform

import "github.com/gogpu/overlay/mmio"

// Machine is the hardware surface the overlay engine runs on.
type Machine interface {
	mmio.ConfigSpace
	mmio.RegisterIO
	mmio.Mapper
	Close() error
}

// Default locations of the kernel interfaces.
const (
	DevMem   = "/dev/mem"
	SysfsPCI = "/sys/bus/pci/devices"
)
