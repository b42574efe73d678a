package scope

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/foreign"
	"github.com/wippyai/foreign/errors"
	"github.com/wippyai/foreign/memory"
)

// Scope owns allocations made from a foreign.Allocator and controls how
// long segments over them may be used.
//
// Close invalidates the scope for good. Reset frees everything and bumps
// the generation: segments handed out before the reset fail with
// invalid_scope, while the scope itself keeps working.
type Scope struct {
	mem    foreign.Memory
	alloc  foreign.Allocator
	allocs *memory.AllocationList
	gen    atomic.Uint64
	mu     sync.RWMutex
	closed bool
}

// New creates a scope allocating from alloc in mem.
func New(mem foreign.Memory, alloc foreign.Allocator) *Scope {
	return &Scope{
		mem:    mem,
		alloc:  alloc,
		allocs: memory.NewAllocationList(),
	}
}

// NewArena creates a scope over a fresh heap arena of size bytes.
func NewArena(size uint64) *Scope {
	a := memory.NewArena(size)
	return New(a, a)
}

func (s *Scope) Memory() foreign.Memory { return s.mem }

// Generation returns the number of times the scope has been reset or closed.
func (s *Scope) Generation() uint64 { return s.gen.Load() }

func (s *Scope) IsValid() bool {
	return s.CheckValid() == nil
}

// CheckValid fails with invalid_scope once the scope is closed.
func (s *Scope) CheckValid() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errors.InvalidScope(errors.PhaseScope, "scope is closed")
	}
	return nil
}

// Handle returns a liveness token for the current generation.
func (s *Scope) Handle() Handle {
	return Handle{scope: s, gen: s.gen.Load()}
}

// Allocate returns a zeroed segment of size bytes owned by the current
// generation.
func (s *Scope) Allocate(size, align uint64) (memory.Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return memory.Segment{}, errors.InvalidScope(errors.PhaseScope, "scope is closed")
	}
	if s.mem == nil || s.alloc == nil {
		return memory.Segment{}, errors.NullArgument(errors.PhaseScope, nil, "scope memory")
	}

	addr, err := s.alloc.Alloc(size, align)
	if err != nil {
		Logger().Debug("scope allocation failed",
			zap.Uint64("size", size),
			zap.Uint64("align", align),
			zap.Error(err))
		return memory.Segment{}, err
	}
	if size > 0 {
		if err := s.mem.Write(addr, make([]byte, size)); err != nil {
			s.alloc.Free(addr, size, align)
			return memory.Segment{}, err
		}
	}
	s.allocs.Add(addr, size, align)

	h := Handle{scope: s, gen: s.gen.Load()}
	return memory.NewSegment(s.mem, addr, size, h), nil
}

// Release frees a segment previously returned by Allocate. Segments from
// another scope or from a generation before the last Reset are ignored.
func (s *Scope) Release(seg memory.Segment) {
	h, ok := seg.Owner().(Handle)
	if !ok || h.scope != s {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || h.gen != s.gen.Load() {
		return
	}
	if a, ok := s.allocs.Remove(seg.Address()); ok {
		s.alloc.Free(a.Addr, a.Size, a.Align)
	}
}

// Segment returns a view of size bytes at addr in the scope's memory,
// owned by the current generation. Nothing is allocated.
func (s *Scope) Segment(addr foreign.Address, size uint64) (memory.Segment, error) {
	if err := s.CheckValid(); err != nil {
		return memory.Segment{}, err
	}
	if addr == 0 {
		return memory.Segment{}, errors.NullArgument(errors.PhaseScope, nil, "segment address")
	}
	return memory.NewSegment(s.mem, addr, size, s.Handle()), nil
}

// Allocations returns the number of live allocations.
func (s *Scope) Allocations() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.allocs == nil {
		return 0
	}
	return s.allocs.Count()
}

// Reset frees every allocation and starts a new generation.
func (s *Scope) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.InvalidScope(errors.PhaseScope, "scope is closed")
	}
	n, bytes := s.allocs.Count(), s.allocs.Bytes()
	s.allocs.Free(s.alloc)
	s.allocs.Reset()
	gen := s.gen.Add(1)

	Logger().Debug("scope reset",
		zap.Int("allocations", n),
		zap.Uint64("bytes", bytes),
		zap.Uint64("generation", gen))
	return nil
}

// Close frees every allocation and invalidates the scope. Closing twice
// is a no-op.
func (s *Scope) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	n := s.allocs.Count()
	s.allocs.FreeAndRelease(s.alloc)
	s.allocs = nil
	s.closed = true
	s.gen.Add(1)

	Logger().Debug("scope closed", zap.Int("allocations", n))
	return nil
}

// Handle ties a segment to one generation of a scope.
type Handle struct {
	scope *Scope
	gen   uint64
}

func (h Handle) Scope() *Scope { return h.scope }

func (h Handle) IsValid() bool { return h.CheckValid() == nil }

// CheckValid fails with invalid_scope if the scope was closed or reset
// since the handle was issued.
func (h Handle) CheckValid() error {
	if h.scope == nil {
		return errors.InvalidScope(errors.PhaseScope, "no scope")
	}
	h.scope.mu.RLock()
	defer h.scope.mu.RUnlock()
	if h.scope.closed {
		return errors.InvalidScope(errors.PhaseScope, "scope is closed")
	}
	if h.scope.gen.Load() != h.gen {
		return errors.InvalidScope(errors.PhaseScope, "scope was reset")
	}
	return nil
}

var (
	_ memory.Liveness         = Handle{}
	_ memory.SegmentAllocator = (*Scope)(nil)
)
