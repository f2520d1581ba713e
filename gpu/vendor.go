package gpu

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// PCI vendor identifiers.
const (
	PCIVendorNVIDIA uint16 = 0x10DE
	PCIVendorAMD    uint16 = 0x1002
	PCIVendorIntel  uint16 = 0x8086
)

// Vendor identifies the graphics hardware vendor of a Device.
type Vendor uint8

const (
	// VendorUnknown is a display controller from an unsupported vendor.
	VendorUnknown Vendor = iota
	// VendorNVIDIA is an NVIDIA display controller.
	VendorNVIDIA
	// VendorAMD is an AMD/ATI display controller.
	VendorAMD
	// VendorIntel is an Intel display controller.
	VendorIntel
)

// VendorFromPCI maps a PCI vendor identifier to a Vendor.
func VendorFromPCI(id uint16) Vendor {
	switch id {
	case PCIVendorNVIDIA:
		return VendorNVIDIA
	case PCIVendorAMD:
		return VendorAMD
	case PCIVendorIntel:
		return VendorIntel
	default:
		return VendorUnknown
	}
}

// String returns the vendor name.
func (v Vendor) String() string {
	switch v {
	case VendorUnknown:
		return "Unknown"
	case VendorNVIDIA:
		return "NVIDIA"
	case VendorAMD:
		return "AMD"
	case VendorIntel:
		return "Intel"
	default:
		return "Invalid"
	}
}

// PCIID returns the PCI vendor identifier, or 0 for VendorUnknown.
func (v Vendor) PCIID() uint16 {
	switch v {
	case VendorNVIDIA:
		return PCIVendorNVIDIA
	case VendorAMD:
		return PCIVendorAMD
	case VendorIntel:
		return PCIVendorIntel
	default:
		return 0
	}
}

// Valid reports whether v is one of the declared vendors, VendorUnknown included.
func (v Vendor) Valid() bool {
	return v <= VendorIntel
}

// DeviceType returns the typical device type for the vendor's display
// controllers: Intel parts are integrated, NVIDIA and AMD parts discrete.
func (v Vendor) DeviceType() gputypes.DeviceType {
	switch v {
	case VendorNVIDIA, VendorAMD:
		return gputypes.DeviceTypeDiscreteGPU
	case VendorIntel:
		return gputypes.DeviceTypeIntegratedGPU
	default:
		return gputypes.DeviceTypeOther
	}
}

// AdapterType is DeviceType expressed as a gpucontext adapter type.
func (v Vendor) AdapterType() gpucontext.AdapterType {
	switch v.DeviceType() {
	case gputypes.DeviceTypeDiscreteGPU:
		return gpucontext.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU:
		return gpucontext.AdapterTypeIntegrated
	default:
		return gpucontext.AdapterTypeUnknown
	}
}
