package gpu

import (
	"errors"
	"image/color"
	"testing"

	"github.com/gogpu/overlay"
	"github.com/gogpu/overlay/mmio"
)

const (
	testRegBase = mmio.PhysAddr(0xE000_0000)
	testFBBase  = mmio.PhysAddr(0xC000_0000)
)

var testMode = Mode{Width: 64, Height: 48, Bpp: 32}

var allVendors = []struct {
	name string
	id   uint16
}{
	{"nvidia", PCIVendorNVIDIA},
	{"amd", PCIVendorAMD},
	{"intel", PCIVendorIntel},
}

// newSimDevice returns a detected, uninitialized device on a fresh bus.
func newSimDevice(t *testing.T, vendorID uint16) (*mmio.Sim, *Device) {
	t.Helper()
	sim := mmio.NewSim()
	sim.AddDisplay(0, 2, 0, vendorID, 0x1234, testRegBase, testFBBase)
	d, err := Detect(sim)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	d.Mode = testMode
	return sim, d
}

// newInitDevice returns an initialized device cleaned up with the test.
func newInitDevice(t *testing.T, vendorID uint16) (*mmio.Sim, *Device) {
	t.Helper()
	sim, d := newSimDevice(t, vendorID)
	if err := Init(d, sim); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { Cleanup(d) })
	return sim, d
}

func fbWord(sim *mmio.Sim, d *Device, x, y int) uint32 {
	return sim.Peek(d.FrameBufferBase + mmio.PhysAddr((y*d.Mode.Width+x)*4))
}

func TestInitCleanup(t *testing.T) {
	for _, v := range allVendors {
		t.Run(v.name, func(t *testing.T) {
			sim, d := newSimDevice(t, v.id)

			if err := Init(d, sim); err != nil {
				t.Fatalf("Init() error = %v", err)
			}
			if !d.Initialized() {
				t.Error("Initialized() = false after Init")
			}
			if got := d.Backend().Name(); got != v.name {
				t.Errorf("Backend().Name() = %q, want %q", got, v.name)
			}
			if got := sim.Mappings(); got != 2 {
				t.Errorf("Mappings() = %d, want 2", got)
			}
			if got := d.FrameBuffer().Size(); got != testMode.FrameBufferSize() {
				t.Errorf("FrameBuffer().Size() = %d, want %d", got, testMode.FrameBufferSize())
			}

			Cleanup(d)
			if d.Initialized() {
				t.Error("Initialized() = true after Cleanup")
			}
			if got := sim.Mappings(); got != 0 {
				t.Errorf("Mappings() after Cleanup = %d, want 0", got)
			}
			Cleanup(d) // idempotent
		})
	}
	Cleanup(nil)
}

func TestInitRejects(t *testing.T) {
	sim := mmio.NewSim()
	tests := []struct {
		name string
		dev  *Device
		hw   Hardware
		want error
	}{
		{"nil device", nil, sim, overlay.ErrInvalidParameter},
		{"nil hardware", &Device{Vendor: VendorIntel, Mode: DefaultMode}, nil, overlay.ErrInvalidParameter},
		{"invalid vendor", &Device{Vendor: Vendor(7), Mode: DefaultMode}, sim, overlay.ErrInvalidParameter},
		{"unknown vendor", &Device{Vendor: VendorUnknown, Mode: DefaultMode}, sim, overlay.ErrNotSupported},
		{"zero width", &Device{Vendor: VendorIntel, Mode: Mode{Height: 10, Bpp: 32}}, sim, overlay.ErrInvalidParameter},
		{"16 bpp", &Device{Vendor: VendorIntel, Mode: Mode{Width: 10, Height: 10, Bpp: 16}}, sim, overlay.ErrInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Init(tt.dev, tt.hw)
			if !errors.Is(err, tt.want) {
				t.Errorf("Init() error = %v, want %v", err, tt.want)
			}
			if got := sim.Mappings(); got != 0 {
				t.Errorf("Mappings() = %d, want 0", got)
			}
		})
	}
}

func TestInitTwice(t *testing.T) {
	sim, d := newInitDevice(t, PCIVendorAMD)
	if err := Init(d, sim); !errors.Is(err, overlay.ErrInvalidParameter) {
		t.Errorf("second Init() error = %v, want ErrInvalidParameter", err)
	}
	if got := sim.Mappings(); got != 2 {
		t.Errorf("Mappings() = %d, want 2", got)
	}
}

func TestInitUnwinds(t *testing.T) {
	for _, v := range allVendors {
		for _, fail := range []struct {
			name string
			addr mmio.PhysAddr
		}{
			{"registers", testRegBase},
			{"frame buffer", testFBBase},
		} {
			t.Run(v.name+"/"+fail.name, func(t *testing.T) {
				sim, d := newSimDevice(t, v.id)
				sim.FailMap(fail.addr)

				err := Init(d, sim)
				if !errors.Is(err, overlay.ErrUnsuccessful) {
					t.Errorf("Init() error = %v, want ErrUnsuccessful", err)
				}
				if d.Initialized() {
					t.Error("Initialized() = true after failed Init")
				}
				if got := sim.Mappings(); got != 0 {
					t.Errorf("Mappings() = %d, want 0", got)
				}
				if d.Registers().Valid() {
					t.Error("register window still valid after failed Init")
				}
			})
		}
	}
}

func TestNVIDIARegisters(t *testing.T) {
	sim, d := newSimDevice(t, PCIVendorNVIDIA)
	if err := Init(d, sim); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if got := sim.Peek(testRegBase + nvPMCBoot0); got != 1 {
		t.Errorf("PMC_BOOT_0 = %d, want 1", got)
	}
	for i, want := range []uint32{64, 48, 32} {
		if got := sim.Peek(testRegBase + nvPCRTC + mmio.PhysAddr(i*4)); got != want {
			t.Errorf("PCRTC+%d = %d, want %d", i*4, got, want)
		}
	}

	Cleanup(d)
	if got := sim.Peek(testRegBase + nvPMCBoot0); got != 0 {
		t.Errorf("PMC_BOOT_0 after Cleanup = %d, want 0", got)
	}
}

func TestNVIDIAFrameBufferFailureDisablesMemoryAccess(t *testing.T) {
	sim, d := newSimDevice(t, PCIVendorNVIDIA)
	sim.FailMap(testFBBase)
	if err := Init(d, sim); err == nil {
		t.Fatal("Init() error = nil, want failure")
	}
	if got := sim.Peek(testRegBase + nvPMCBoot0); got != 0 {
		t.Errorf("PMC_BOOT_0 = %d, want 0 after unwinding", got)
	}
}

func TestAMDRegisters(t *testing.T) {
	sim, d := newInitDevice(t, PCIVendorAMD)

	for i, want := range []uint32{64, 48, 32} {
		if got := sim.Peek(testRegBase + amdDisplay + mmio.PhysAddr(i*4)); got != want {
			t.Errorf("DISPLAY+%d = %d, want %d", i*4, got, want)
		}
	}
	if d.FrameBufferBase != testFBBase {
		t.Errorf("FrameBufferBase = %v, want %v (MC_FB_LOCATION reads 0)", d.FrameBufferBase, testFBBase)
	}
	if got := d.Registers().Size(); got != amdRegionSpan {
		t.Errorf("register span = %#x, want %#x", got, amdRegionSpan)
	}
}

func TestAMDFrameBufferRelocation(t *testing.T) {
	sim, d := newSimDevice(t, PCIVendorAMD)
	sim.Poke(testRegBase+amdMCFBLocation, 0x00D0_1234)
	sim.AddMemory(0xD000_0000, 16<<20)

	if err := Init(d, sim); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer Cleanup(d)

	if d.FrameBufferBase != 0xD000_0000 {
		t.Fatalf("FrameBufferBase = %v, want 0xd0000000", d.FrameBufferBase)
	}
	line := []overlay.Vertex{{X: 0, Y: 0, Color: overlay.Green}, {X: 1, Y: 0, Color: overlay.Green}}
	if err := d.DrawPrimitive(line); err != nil {
		t.Fatalf("DrawPrimitive() error = %v", err)
	}
	if got := sim.Peek(0xD000_0004); got != overlay.Green.Pack() {
		t.Errorf("relocated pixel = %#08x, want %#08x", got, overlay.Green.Pack())
	}
	if got := sim.Peek(testFBBase); got != 0 {
		t.Errorf("BAR aperture pixel = %#08x, want untouched", got)
	}
}

func TestIntelPipeSelection(t *testing.T) {
	tests := []struct {
		name    string
		statusA uint32
		active  mmio.PhysAddr
		other   mmio.PhysAddr
	}{
		{"pipe A primary", 0x8000_0001, intelPipeA, intelPipeB},
		{"pipe B primary", 0x8000_0000, intelPipeB, intelPipeA},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim, d := newSimDevice(t, PCIVendorIntel)
			sim.Poke(testRegBase+intelPipeA, tt.statusA)
			if err := Init(d, sim); err != nil {
				t.Fatalf("Init() error = %v", err)
			}
			defer Cleanup(d)

			for i, want := range []uint32{64, 48, 32} {
				if got := sim.Peek(testRegBase + tt.active + mmio.PhysAddr(i*4)); got != want {
					t.Errorf("active pipe +%d = %d, want %d", i*4, got, want)
				}
			}
			if got := sim.Peek(testRegBase + tt.other + 8); got != 0 {
				t.Errorf("inactive pipe bpp = %d, want 0", got)
			}
		})
	}
}

func TestDrawPrimitive(t *testing.T) {
	for _, v := range allVendors {
		t.Run(v.name, func(t *testing.T) {
			sim, d := newInitDevice(t, v.id)

			vertices := []overlay.Vertex{
				{X: 1, Y: 1, Color: overlay.Red},
				{X: 4, Y: 1, Color: overlay.Blue}, // second vertex colour is ignored
				{X: 2, Y: 5, Color: overlay.White},
				{X: 2, Y: 3, Color: overlay.White},
				{X: 9, Y: 9, Color: overlay.Yellow}, // unpaired
			}
			if err := d.DrawPrimitive(vertices); err != nil {
				t.Fatalf("DrawPrimitive() error = %v", err)
			}

			for x := 1; x <= 4; x++ {
				if got := fbWord(sim, d, x, 1); got != overlay.Red.Pack() {
					t.Errorf("pixel (%d,1) = %#08x, want red", x, got)
				}
			}
			for y := 3; y <= 5; y++ {
				if got := fbWord(sim, d, 2, y); got != overlay.White.Pack() {
					t.Errorf("pixel (2,%d) = %#08x, want white", y, got)
				}
			}
			if got := fbWord(sim, d, 9, 9); got != 0 {
				t.Errorf("unpaired vertex drew pixel %#08x", got)
			}
		})
	}
}

func TestDrawPrimitiveClipsToMode(t *testing.T) {
	sim, d := newInitDevice(t, PCIVendorIntel)
	before := sim.Writes()

	err := d.DrawPrimitive([]overlay.Vertex{
		{X: -10, Y: 0, Color: overlay.Cyan},
		{X: 100, Y: 0, Color: overlay.Cyan},
	})
	if err != nil {
		t.Fatalf("DrawPrimitive() error = %v", err)
	}
	if got := sim.Writes() - before; got != uint64(testMode.Width) {
		t.Errorf("writes = %d, want %d (one per visible pixel)", got, testMode.Width)
	}
}

func TestDrawPrimitiveRejects(t *testing.T) {
	for _, v := range allVendors {
		t.Run(v.name, func(t *testing.T) {
			sim, d := newInitDevice(t, v.id)
			before := sim.Writes()

			for _, n := range []int{0, 1} {
				err := d.DrawPrimitive(make([]overlay.Vertex, n))
				if !errors.Is(err, overlay.ErrInvalidParameter) {
					t.Errorf("DrawPrimitive(%d vertices) error = %v, want ErrInvalidParameter", n, err)
				}
			}
			if sim.Writes() != before {
				t.Error("rejected draw wrote to hardware")
			}
		})
	}
}

func TestDrawPrimitiveNotInitialized(t *testing.T) {
	_, d := newSimDevice(t, PCIVendorNVIDIA)
	err := d.DrawPrimitive(make([]overlay.Vertex, 2))
	if !errors.Is(err, overlay.ErrDeviceNotReady) {
		t.Errorf("DrawPrimitive() error = %v, want ErrDeviceNotReady", err)
	}
}

func TestBackendDrawWithoutFrameBuffer(t *testing.T) {
	for _, v := range allVendors {
		t.Run(v.name, func(t *testing.T) {
			_, d := newSimDevice(t, v.id)
			b, err := newBackend(d.Vendor)
			if err != nil {
				t.Fatalf("newBackend() error = %v", err)
			}
			err = b.DrawPrimitive(d, make([]overlay.Vertex, 2))
			if err == nil {
				t.Error("DrawPrimitive() without mapping error = nil")
			}
		})
	}
}

func TestBackendInitWithoutRegisters(t *testing.T) {
	for _, v := range allVendors {
		t.Run(v.name, func(t *testing.T) {
			_, d := newSimDevice(t, v.id)
			b, _ := newBackend(d.Vendor)
			if err := b.Init(d); !errors.Is(err, overlay.ErrDeviceNotReady) {
				t.Errorf("Init() error = %v, want ErrDeviceNotReady", err)
			}
			b.Cleanup(d)
		})
	}
}

func TestSetMode(t *testing.T) {
	sim, d := newInitDevice(t, PCIVendorNVIDIA)

	small := Mode{Width: 32, Height: 24, Bpp: 32}
	if err := d.SetMode(small); err != nil {
		t.Fatalf("SetMode(%v) error = %v", small, err)
	}
	if got := d.CurrentMode(); got != small {
		t.Errorf("CurrentMode() = %v, want %v", got, small)
	}
	if got := sim.Peek(testRegBase + nvPCRTC); got != 32 {
		t.Errorf("PCRTC width = %d, want 32", got)
	}

	// Row stride follows the new width.
	line := []overlay.Vertex{{X: 0, Y: 1, Color: overlay.Red}, {X: 0, Y: 1, Color: overlay.Red}}
	if err := d.DrawPrimitive(line); err != nil {
		t.Fatalf("DrawPrimitive() error = %v", err)
	}
	if got := sim.Peek(testFBBase + 32*4); got != overlay.Red.Pack() {
		t.Errorf("pixel (0,1) = %#08x, want red at stride 32", got)
	}

	for _, m := range []Mode{
		{Width: 128, Height: 48, Bpp: 32},
		{Width: 32, Height: 24, Bpp: 24},
		{Width: 0, Height: 24, Bpp: 32},
	} {
		if err := d.SetMode(m); !errors.Is(err, overlay.ErrInvalidParameter) {
			t.Errorf("SetMode(%v) error = %v, want ErrInvalidParameter", m, err)
		}
	}
}

func TestSetModeNotInitialized(t *testing.T) {
	_, d := newSimDevice(t, PCIVendorAMD)
	if err := d.SetMode(testMode); !errors.Is(err, overlay.ErrDeviceNotReady) {
		t.Errorf("SetMode() error = %v, want ErrDeviceNotReady", err)
	}
}

func TestSnapshotAndClear(t *testing.T) {
	_, d := newInitDevice(t, PCIVendorIntel)

	if err := d.Clear(overlay.Blue); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	line := []overlay.Vertex{{X: 3, Y: 2, Color: overlay.Red}, {X: 5, Y: 2, Color: overlay.Red}}
	if err := d.DrawPrimitive(line); err != nil {
		t.Fatalf("DrawPrimitive() error = %v", err)
	}

	img, err := d.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if got := img.Bounds().Dx(); got != testMode.Width {
		t.Errorf("snapshot width = %d, want %d", got, testMode.Width)
	}
	if got := img.RGBAAt(4, 2); got != (color.RGBA{R: 0xFF, A: 0xFF}) {
		t.Errorf("snapshot (4,2) = %v, want red", got)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{B: 0xFF, A: 0xFF}) {
		t.Errorf("snapshot (0,0) = %v, want blue", got)
	}
}

func TestSnapshotNotInitialized(t *testing.T) {
	_, d := newSimDevice(t, PCIVendorIntel)
	if _, err := d.Snapshot(); !errors.Is(err, overlay.ErrDeviceNotReady) {
		t.Errorf("Snapshot() error = %v, want ErrDeviceNotReady", err)
	}
	if err := d.Clear(overlay.Black); !errors.Is(err, overlay.ErrDeviceNotReady) {
		t.Errorf("Clear() error = %v, want ErrDeviceNotReady", err)
	}
}

func TestAdapterInfo(t *testing.T) {
	_, d := newInitDevice(t, PCIVendorIntel)
	info := d.AdapterInfo()
	if info.VendorID != uint32(PCIVendorIntel) || info.DeviceID != 0x1234 {
		t.Errorf("AdapterInfo() IDs = %04x:%04x, want 8086:1234", info.VendorID, info.DeviceID)
	}
	if info.Vendor != "Intel" {
		t.Errorf("AdapterInfo().Vendor = %q, want Intel", info.Vendor)
	}
	if info.Driver != "intel" {
		t.Errorf("AdapterInfo().Driver = %q, want intel", info.Driver)
	}
	if info.DeviceType != VendorIntel.DeviceType() {
		t.Errorf("AdapterInfo().DeviceType = %v, want %v", info.DeviceType, VendorIntel.DeviceType())
	}
}
