//go:build linux

package platform

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/overlay"
	"github.com/gogpu/overlay/mmio"
)

// newTestMachine opens a regular file in place of /dev/mem and a temporary
// directory in place of sysfs.
func newTestMachine(t *testing.T, memSize int) (*Linux, string) {
	t.Helper()
	dir := t.TempDir()
	mem := filepath.Join(dir, "mem")
	if err := os.WriteFile(mem, make([]byte, memSize), 0o600); err != nil {
		t.Fatal(err)
	}
	sysfs := filepath.Join(dir, "devices")
	if err := os.MkdirAll(sysfs, 0o755); err != nil {
		t.Fatal(err)
	}
	l, err := open(mem, sysfs)
	if err != nil {
		t.Fatalf("open() error = %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l, sysfs
}

func writeConfig(t *testing.T, sysfs, name string, words map[int]uint32) {
	t.Helper()
	cfg := make([]byte, 256)
	for off, v := range words {
		binary.LittleEndian.PutUint32(cfg[off:], v)
	}
	dir := filepath.Join(sysfs, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config"), cfg, 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestReadConfig(t *testing.T) {
	l, sysfs := newTestMachine(t, 4096)
	writeConfig(t, sysfs, "0000:01:00.0", map[int]uint32{
		0x00: 0x2684_10DE,
		0x08: 0x0300_00A1,
		0x10: 0xF600_0000,
	})

	tests := []struct {
		name         string
		bus, dev, fn uint8
		offset       uint16
		want         uint32
	}{
		{"id", 1, 0, 0, 0x00, 0x2684_10DE},
		{"class", 1, 0, 0, 0x08, 0x0300_00A1},
		{"unaligned offset", 1, 0, 0, 0x0A, 0x0300_00A1},
		{"bar0", 1, 0, 0, 0x10, 0xF600_0000},
		{"absent function", 1, 0, 1, 0x00, 0xFFFF_FFFF},
		{"past end of file", 1, 0, 0, 0x1000, 0xFFFF_FFFF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.ReadConfig(tt.bus, tt.dev, tt.fn, tt.offset); got != tt.want {
				t.Errorf("ReadConfig() = %#08x, want %#08x", got, tt.want)
			}
		})
	}
}

func TestMapRegisterIO(t *testing.T) {
	l, _ := newTestMachine(t, 3*4096)

	// Unaligned physical address inside the second page.
	virt, err := l.Map(mmio.PhysAddr(4096+0x40), 64)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	w := mmio.NewWindow(l, virt, 64)
	if err := w.Write32(8, 0xCAFEF00D); err != nil {
		t.Fatal(err)
	}
	if got, _ := w.Read32(8); got != 0xCAFEF00D {
		t.Errorf("Read32(8) = %#08x, want 0xcafef00d", got)
	}

	// A second mapping of the same page sees the write.
	other, err := l.Map(4096, 4096)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	if got := l.ReadRegister(other + 0x48); got != 0xCAFEF00D {
		t.Errorf("aliased read = %#08x, want 0xcafef00d", got)
	}

	l.Unmap(virt, 64)
	l.Unmap(other, 4096)
	if got := len(l.maps); got != 0 {
		t.Errorf("mappings after Unmap = %d, want 0", got)
	}
}

func TestMapRejects(t *testing.T) {
	l, _ := newTestMachine(t, 4096)
	if _, err := l.Map(0, 0); !errors.Is(err, overlay.ErrInvalidParameter) {
		t.Errorf("Map(size 0) error = %v, want ErrInvalidParameter", err)
	}

	l.Close()
	if _, err := l.Map(0, 4); !errors.Is(err, overlay.ErrDeviceNotReady) {
		t.Errorf("Map() after Close error = %v, want ErrDeviceNotReady", err)
	}
	if got := l.ReadConfig(0, 0, 0, 0); got != 0xFFFFFFFF {
		t.Errorf("ReadConfig() after Close = %#08x, want all ones", got)
	}
}

func TestOpenMissingDevice(t *testing.T) {
	_, err := open(filepath.Join(t.TempDir(), "missing"), SysfsPCI)
	if !errors.Is(err, overlay.ErrDeviceNotReady) {
		t.Errorf("open() error = %v, want ErrDeviceNotReady", err)
	}
}
