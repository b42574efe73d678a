package memory

import (
	"sync"

	"github.com/wippyai/foreign"
)

// Allocation records one block obtained from a foreign.Allocator.
type Allocation struct {
	Addr  foreign.Address
	Size  uint64
	Align uint64
}

// AllocationList tracks allocations so they can be freed together.
type AllocationList struct {
	allocations []Allocation
}

var allocationListPool = sync.Pool{
	New: func() any {
		return &AllocationList{allocations: make([]Allocation, 0, 8)}
	},
}

func NewAllocationList() *AllocationList {
	return allocationListPool.Get().(*AllocationList)
}

const maxPooledAllocationCapacity = 128

// Release returns to pool. Must call after Free(); list invalid after Release.
func (al *AllocationList) Release() {
	if cap(al.allocations) > maxPooledAllocationCapacity {
		return
	}
	al.Reset()
	allocationListPool.Put(al)
}

func (al *AllocationList) FreeAndRelease(allocator foreign.Allocator) {
	al.Free(allocator)
	al.Release()
}

func (al *AllocationList) Add(addr foreign.Address, size, align uint64) {
	al.allocations = append(al.allocations, Allocation{
		Addr:  addr,
		Size:  size,
		Align: align,
	})
}

// Remove drops the most recent allocation at addr and reports whether one
// was found. The block itself is not freed.
func (al *AllocationList) Remove(addr foreign.Address) (Allocation, bool) {
	for i := len(al.allocations) - 1; i >= 0; i-- {
		if a := al.allocations[i]; a.Addr == addr {
			al.allocations = append(al.allocations[:i], al.allocations[i+1:]...)
			return a, true
		}
	}
	return Allocation{}, false
}

// Free releases every tracked block, newest first so bump allocators can
// reclaim them.
func (al *AllocationList) Free(allocator foreign.Allocator) {
	if allocator == nil {
		return
	}
	for i := len(al.allocations) - 1; i >= 0; i-- {
		if a := al.allocations[i]; a.Addr != 0 {
			allocator.Free(a.Addr, a.Size, a.Align)
		}
	}
}

func (al *AllocationList) Reset() {
	al.allocations = al.allocations[:0]
}

func (al *AllocationList) Count() int {
	return len(al.allocations)
}

// Bytes returns the total size of tracked allocations.
func (al *AllocationList) Bytes() uint64 {
	var n uint64
	for _, a := range al.allocations {
		n += a.Size
	}
	return n
}
