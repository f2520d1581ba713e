package gpu

import (
	"fmt"

	"github.com/gogpu/overlay"
	"github.com/gogpu/overlay/mmio"
)

// PCI configuration space layout.
const (
	pciID       = 0x00 // vendor ID in bits 15..0, device ID in bits 31..16
	pciClassRev = 0x08 // class code in bits 31..24
	pciBAR0     = 0x10
	pciBAR1     = 0x14
	pciBAR2     = 0x18
	pciBAR3     = 0x1C

	pciClassDisplay = 0x03
	pciNoVendor     = 0xFFFF
	pciBARAddrMask  = 0xF

	pciBuses     = 256
	pciDevices   = 32
	pciFunctions = 8
)

// Detect scans PCI configuration space in bus, device, function order and
// returns the first display controller from a supported vendor.
//
// Display controllers from other vendors are skipped. When none is found
// the error matches overlay.ErrDeviceNotFound.
func Detect(cfg mmio.ConfigSpace) (*Device, error) {
	if cfg == nil {
		return nil, fmt.Errorf("gpu: detect: nil config space: %w", overlay.ErrInvalidParameter)
	}
	log := overlay.Logger()

	for bus := 0; bus < pciBuses; bus++ {
		for dev := 0; dev < pciDevices; dev++ {
			for fn := 0; fn < pciFunctions; fn++ {
				loc := Location{Bus: uint8(bus), Dev: uint8(dev), Fn: uint8(fn)}
				read := func(off uint16) uint32 {
					return cfg.ReadConfig(loc.Bus, loc.Dev, loc.Fn, off)
				}

				id := read(pciID)
				vendorID := uint16(id)
				if vendorID == pciNoVendor {
					continue
				}
				if read(pciClassRev)>>24 != pciClassDisplay {
					continue
				}
				vendor := VendorFromPCI(vendorID)
				if vendor == VendorUnknown {
					log.Debug("gpu: skipping unsupported display controller",
						"location", loc.String(), "vendor_id", vendorID)
					continue
				}

				d := &Device{
					Location:        loc,
					VendorID:        vendorID,
					DeviceID:        uint16(id >> 16),
					Vendor:          vendor,
					RegisterBase:    barAddress(read(pciBAR0), read(pciBAR1)),
					FrameBufferBase: barAddress(read(pciBAR2), read(pciBAR3)),
					Mode:            DefaultMode,
				}
				log.Debug("gpu: detected display controller", "device", d.String(),
					"registers", d.RegisterBase.String(), "framebuffer", d.FrameBufferBase.String())
				return d, nil
			}
		}
	}
	return nil, fmt.Errorf("gpu: detect: %w", overlay.ErrDeviceNotFound)
}

// barAddress combines a 64-bit memory BAR pair, dropping the flag bits.
func barAddress(lo, hi uint32) mmio.PhysAddr {
	return mmio.PhysAddr(uint64(hi)<<32 | uint64(lo&^pciBARAddrMask))
}
