// Package layout describes the native memory shape of foreign values.
//
// A Layout is one of:
//
//	ValueLayout     scalar with a Carrier (bool, byte, char, short, int, long, float, double, address)
//	GroupLayout     struct or union of member layouts
//	PaddingLayout   unused bytes inside a struct
//	SequenceLayout  fixed-count repetition of an element
//
// The C data model for ppc64le is predeclared (CInt, CLong, CDouble, CPointer
// and friends). Struct pads members to their natural alignment; StructOf does
// not pad.
//
// Layouts can also be derived from WIT types with FromWIT, or from a short
// type expression with Parse:
//
//	l, err := layout.Parse("struct<char, tuple<int, int>>")
package layout
