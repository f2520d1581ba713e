package mmio

import (
	"errors"
	"testing"

	"github.com/gogpu/overlay"
)

func newTestWindow(t *testing.T, size int) (*Sim, Window) {
	t.Helper()
	s := NewSim()
	s.AddMemory(0x1000_0000, size)
	va, err := s.Map(0x1000_0000, size)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	return s, NewWindow(s, va, size)
}

func TestWindowReadWrite(t *testing.T) {
	_, w := newTestWindow(t, 0x100)

	if err := w.Write32(0x10, 0xCAFEBABE); err != nil {
		t.Fatalf("Write32() error = %v", err)
	}
	got, err := w.Read32(0x10)
	if err != nil {
		t.Fatalf("Read32() error = %v", err)
	}
	if got != 0xCAFEBABE {
		t.Errorf("Read32() = %#x, want 0xcafebabe", got)
	}
}

func TestWindowBounds(t *testing.T) {
	_, w := newTestWindow(t, 0x100)

	tests := []struct {
		name string
		off  int
		ok   bool
	}{
		{"first", 0, true},
		{"last", 0xFC, true},
		{"end", 0x100, false},
		{"straddle", 0xFE, false},
		{"misaligned", 0x2, false},
		{"negative", -4, false},
		{"far", 0x600000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := w.Write32(tt.off, 1)
			if tt.ok && err != nil {
				t.Errorf("Write32(%#x) error = %v, want nil", tt.off, err)
			}
			if !tt.ok {
				if !errors.Is(err, ErrOutOfRange) {
					t.Errorf("Write32(%#x) error = %v, want ErrOutOfRange", tt.off, err)
				}
				if !errors.Is(err, overlay.ErrInvalidParameter) {
					t.Errorf("Write32(%#x) error = %v, want ErrInvalidParameter", tt.off, err)
				}
			}
		})
	}
}

func TestWindowSub(t *testing.T) {
	s, w := newTestWindow(t, 0x1000)

	sub, err := w.Sub(0x800, 0x10)
	if err != nil {
		t.Fatalf("Sub() error = %v", err)
	}
	if sub.Size() != 0x10 {
		t.Errorf("Size() = %#x, want 0x10", sub.Size())
	}
	if err := sub.Write32(0x4, 7); err != nil {
		t.Fatalf("Write32() error = %v", err)
	}
	if got, _ := w.Read32(0x804); got != 7 {
		t.Errorf("parent Read32(0x804) = %d, want 7", got)
	}
	if err := sub.Write32(0x10, 1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("sub Write32(0x10) error = %v, want ErrOutOfRange", err)
	}
	if _, err := w.Sub(0xFF0, 0x20); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Sub(0xff0, 0x20) error = %v, want ErrOutOfRange", err)
	}
	if s.Writes() != 1 {
		t.Errorf("Writes() = %d, want 1", s.Writes())
	}
}

func TestWindowZero(t *testing.T) {
	var w Window
	if w.Valid() {
		t.Error("zero Window should not be valid")
	}
	if _, err := w.Read32(0); !errors.Is(err, overlay.ErrDeviceNotReady) {
		t.Errorf("Read32() on zero window error = %v, want ErrDeviceNotReady", err)
	}
}
