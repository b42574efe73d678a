//go:build !linux

package memory

import "github.com/wippyai/foreign/errors"

// NewNative is only available on linux.
func NewNative(size uint64) (*Arena, error) {
	return nil, errors.InvalidInput(errors.PhaseMemory, "native memory requires linux")
}
