// Package ppc64 classifies arguments for the 64-bit little-endian PowerPC
// ELF v2 calling convention.
//
// Classification is pure: the same layout always yields the same TypeClass.
//
//	Primitive        bool, byte, char, short, int, long, float, double
//	Pointer          address
//	StructRegister   group of at most SlotSize bytes, stored in the slot
//	StructReference  larger group, stored elsewhere; the slot holds its address
//
// Scalars are promoted before they reach a variadic slot: integral types
// narrower than long become long (sign-extended, except char which is
// unsigned), and float becomes double. EncodeScalar and DecodeScalar
// implement the promotion in both directions, so writers and readers
// cannot disagree about a slot's contents.
package ppc64
