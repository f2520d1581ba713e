package gpu

import "sync"

// protection serializes frame-buffer access across devices.
var protection sync.Mutex

// ProtectionLock returns the global protection lock.
//
// It is always acquired after a device lock and never the other way round.
func ProtectionLock() sync.Locker {
	return &protection
}
