// Package gpu detects the primary display controller and binds it to a
// vendor backend that programs the display mode and draws overlay line
// segments straight into the mapped frame buffer.
//
// # Lifecycle
//
//	dev, err := gpu.Detect(cfg)     // scan PCI configuration space
//	dev.Mode = gpu.Mode{Width: 1280, Height: 720, Bpp: 32}
//	err = gpu.Init(dev, hw)         // map registers, init backend, map frame buffer
//	defer gpu.Cleanup(dev)          // backend cleanup, then unmap everything
//
// # Backends
//
// Three vendors are recognized: NVIDIA, AMD and Intel. Vendor is a closed
// set; the backend for a vendor is chosen by a single switch and the
// unknown vendor has no backend (ErrNotSupported).
//
// # Locking
//
// Each Device carries a device lock. The NVIDIA backend holds the device
// lock and then the global protection lock (ProtectionLock) for the whole of
// every draw call. The order is fixed: device lock first, protection lock
// second. Callers such as the renderer may hold their own lock around
// Device.DrawPrimitive, but a backend never calls back into its caller.
package gpu
