//go:build linux

package memory

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/wippyai/foreign"
	"github.com/wippyai/foreign/errors"
)

// NewNative maps size bytes of anonymous memory outside the Go heap.
// Addresses handed out are real process addresses, so slots holding
// satellite pointers can be passed to native code as is. Close unmaps.
func NewNative(size uint64) (*Arena, error) {
	if size == 0 {
		return nil, errors.InvalidInput(errors.PhaseMemory, "native arena size must be positive")
	}
	buf, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseMemory, errors.KindAllocation, err, "mmap")
	}
	base := foreign.Address(uintptr(unsafe.Pointer(&buf[0])))
	return newArenaOver(buf, base, func() error {
		return unix.Munmap(buf)
	}), nil
}
