package mmio

import "unsafe"

// unsafeBytes reinterprets the first n bytes of words as a byte slice.
// Backing the slice with uint64 words guarantees 8-byte alignment.
func unsafeBytes(words []uint64, n int) []byte {
	if len(words) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), n)
}

// addrOf returns the address of the first byte of b.
func addrOf(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b[0]))
}
