// Package foreign provides the variadic-argument marshalling layer of a Go
// foreign-function runtime for the 64-bit little-endian PowerPC SysV ABI.
//
// Native functions declared with a C `...` signature read their variadic
// arguments from 8-byte doublewords of the parameter save area. This module
// builds that representation from Go values and reads it back in order.
//
// # Architecture Overview
//
//	foreign/              Root package with Address, Memory and Allocator
//	├── layout/           Memory layout descriptions (scalars, structs, unions)
//	├── memory/           Segments and memory backends (heap, mmap, wazero)
//	├── scope/            Scoped allocation with validity checks
//	├── abi/ppc64/        Type classification for the ppc64le ABI
//	├── abi/ppc64/sysv/   VaList builder and reader
//	├── config/           YAML call files
//	├── errors/           Structured error types
//	└── cmd/vadump/       Command line inspection tool
//
// # Quick Start
//
//	arena := memory.NewArena(64 << 10)
//	s := scope.New(arena, arena)
//	defer s.Close()
//
//	b, err := sysv.NewBuilder(s)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	b.AddInt(42).AddDouble(2.5)
//
//	list, err := b.Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	v, _ := list.NextInt() // 42
//
// # Slot Layout
//
// Every variadic argument occupies one 8-byte slot, in append order:
//
//	Argument                 Slot contents
//	─────────────────────────────────────────────────────
//	bool, char..int          sign/zero extended to 64 bits
//	float                    promoted to double
//	long, double, pointer    natural 64-bit encoding
//	struct <= 8 bytes        struct bytes, zero padded
//	struct > 8 bytes         pointer to a copy owned by the list
//
// # Thread Safety
//
// Builder is NOT thread-safe. A built VaList is immutable; copies obtained
// with VaList.Copy may be read from different goroutines while the owning
// scope stays open.
package foreign
