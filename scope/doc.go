// Package scope bounds the lifetime of native allocations.
//
// A Scope allocates through a foreign.Allocator and records every block.
// Segments it hands out carry a Handle naming the scope and its current
// generation; every segment access validates that handle first.
//
//	s := scope.NewArena(64 << 10)
//	defer s.Close()
//
//	seg, err := s.Allocate(16, 8)
//	...
//	s.Reset()          // seg now fails with invalid_scope
//	s.Allocate(16, 8)  // the scope itself is still usable
//
// Scope is safe for concurrent use.
package scope
