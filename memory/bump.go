package memory

import "github.com/wippyai/foreign/layout"

// AlignTo rounds offset up to a multiple of align.
func AlignTo(offset, align uint64) uint64 {
	return layout.AlignTo(offset, align)
}

// bump is a region allocator over offsets [start, limit). Space is
// reclaimed in stack order: freeing the newest allocation rewinds to
// where it started, alignment gap included, and older blocks freed out of
// order are reclaimed once everything above them is gone.
type bump struct {
	marks []mark
	start uint64
	next  uint64
	limit uint64
}

// mark records one allocation and the offset before its alignment gap.
type mark struct {
	off   uint64
	prev  uint64
	freed bool
}

func newBump(start, limit uint64) bump {
	return bump{start: start, next: start, limit: limit}
}

func (b *bump) alloc(size, align uint64) (uint64, bool) {
	if align == 0 {
		align = 1
	}
	off := AlignTo(b.next, align)
	if off < b.next || off > b.limit || size > b.limit-off {
		return 0, false
	}
	b.marks = append(b.marks, mark{off: off, prev: b.next})
	b.next = off + size
	return off, true
}

func (b *bump) free(off uint64) {
	for i := len(b.marks) - 1; i >= 0; i-- {
		if b.marks[i].off == off && !b.marks[i].freed {
			b.marks[i].freed = true
			break
		}
	}
	for n := len(b.marks); n > 0 && b.marks[n-1].freed; n-- {
		b.next = b.marks[n-1].prev
		b.marks = b.marks[:n-1]
	}
}

func (b *bump) reset() {
	b.marks = b.marks[:0]
	b.next = b.start
}

func (b *bump) used() uint64 {
	return b.next - b.start
}
