// Package sysv builds and reads variadic argument lists in the ppc64le
// SysV layout.
//
// A list is one buffer of 8-byte slots in append order. Scalars are
// promoted into their slot, aggregates of at most 8 bytes are copied into
// it, and larger aggregates are copied to a satellite buffer whose address
// goes in the slot. Buffer and satellites come from a scope.Scope and die
// with it.
//
//	b, err := sysv.NewBuilder(s)
//	list, err := b.AddInt(42).AddStruct(pair, seg).Build()
//
//	n, err := list.NextInt()
//	p, err := list.NextStruct(pair, memory.HeapAllocator())
//
// Build is all or nothing: when it fails, everything it allocated is
// released. Building with no arguments returns Empty() and allocates
// nothing.
//
// Counters for builds, satellites and reads are registered with the
// default Prometheus registry.
package sysv
