package mem

import "unsafe"

/// Memory_t is the kernel's model of physical RAM: a flat array of
/// page-sized frames, indexed by physical page number. It plays the role
/// the teacher's Dmaplen/Pg2bytes direct-map helpers played for biscuit's
/// x86-64 four-level tables, reinterpreted for Sv32's two-level scheme:
/// a frame's bytes are addressed directly rather than through a separate
/// recursive or direct-map virtual slot, since this is a hosted
/// simulation rather than bare-metal code walking real page tables.
type Memory_t struct {
	pages [][PageSize]byte
}

/// NewMemory allocates backing storage for n physical frames (frame 0
/// through n-1).
func NewMemory(n int) *Memory_t {
	return &Memory_t{pages: make([][PageSize]byte, n)}
}

/// NumFrames reports how many frames this memory can back.
func (m *Memory_t) NumFrames() int { return len(m.pages) }

/// Bytes returns the raw 4096-byte contents of f, exactly as the
/// teacher's Pg2bytes reinterpreted a page of ints as a page of bytes.
func (m *Memory_t) Bytes(f Frame_t) *[PageSize]byte {
	ppn := int(f.Ppn())
	if ppn < 0 || ppn >= len(m.pages) {
		panic("mem: frame out of range")
	}
	return &m.pages[ppn]
}

/// Table reinterprets f's contents as a page table. Valid for any frame
/// currently in use as a directory or leaf table.
func (m *Memory_t) Table(f Frame_t) *PageTable_t {
	return (*PageTable_t)(unsafe.Pointer(m.Bytes(f)))
}
