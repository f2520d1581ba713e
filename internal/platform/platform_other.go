//go:build !linux

package platform

import (
	"fmt"
	"runtime"

	"github.com/gogpu/overlay"
)

// Open is only implemented on Linux.
func Open() (Machine, error) {
	return nil, fmt.Errorf("platform: %s: %w", runtime.GOOS, overlay.ErrNotSupported)
}
