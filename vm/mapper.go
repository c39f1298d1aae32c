// Package vm implements the Sv32 two-level virtual-memory mapper (spec
// §4.2), adapted from the teacher's Vm_t/Pmap_t handling in
// biscuit/src/vm/as.go — generalized from biscuit's four-level x86-64
// walk with a direct-mapped physical window down to Sv32's two-level
// walk with a single self-referential temporary window.
package vm

import (
	"rvkernel/defs"
	"rvkernel/mem"
)

/// Satp_t models the hart's address-space register: the physical page
/// number of the active directory, plus the paging-enable bit. There is
/// exactly one hart (spec Non-goals exclude SMP), so Hart below is the
/// single global copy of it.
type Satp_t struct {
	PagingOn bool
	Ppn      uint32
}

/// Hart is the hart-wide address-space register (spec §5: "the only
/// truly global register"). Every Mapper_t operation that must act as
/// a different address space than the one currently active saves and
/// restores it around the edit.
var Hart Satp_t

/// Mapper_t owns one address space's directory and scratch table and the
/// allocator/physical-memory pair used to grow it. Memory and Alloc are
/// shared across every process's Mapper_t; DirFrame/ScratchFrame are
/// private to this one.
type Mapper_t struct {
	Memory       *mem.Memory_t
	Alloc        *mem.Allocator_t
	DirFrame     mem.Frame_t
	ScratchFrame mem.Frame_t
}

/// NewMapper allocates a fresh directory and scratch table, zeroes both,
/// and cross-links them into the temporary window.
func NewMapper(memory *mem.Memory_t, alloc *mem.Allocator_t) (*Mapper_t, defs.Err_t) {
	dirFrame, err := alloc.Alloc()
	if err != 0 {
		return nil, err
	}
	scratchFrame, err := alloc.Alloc()
	if err != 0 {
		alloc.Dealloc(dirFrame)
		return nil, err
	}
	memory.Table(dirFrame).Zero()
	memory.Table(scratchFrame).Zero()
	m := &Mapper_t{Memory: memory, Alloc: alloc, DirFrame: dirFrame, ScratchFrame: scratchFrame}
	m.setupTmpWindow()
	return m, 0
}

// setupTmpWindow cross-links the directory and scratch table: the
// directory's last entry points at the scratch table, and the scratch
// table's last entry points back at the directory (spec §3).
func (m *Mapper_t) setupTmpWindow() {
	dir := m.Memory.Table(m.DirFrame)
	scratch := m.Memory.Table(m.ScratchFrame)
	dir.Entries[mem.TmpEntry].Set(m.ScratchFrame, mem.FlagValid|mem.FlagRead|mem.FlagWrite)
	scratch.Entries[mem.TmpEntry].Set(m.DirFrame, mem.FlagValid|mem.FlagRead|mem.FlagWrite)
}

// windowTable aliases frame through the scratch table's slot idx and
// returns the table reached that way. Apart from bootTable's pre-paging
// path, this is the only path by which an intermediate table other than
// the directory itself is addressed; it exists because real Sv32 hardware
// cannot dereference a physical frame without first installing a virtual
// alias to it, and every other Mapper_t walk below honors that even
// though the underlying Memory_t could be indexed directly.
func (m *Mapper_t) windowTable(idx uint32, frame mem.Frame_t) *mem.PageTable_t {
	scratch := m.Memory.Table(m.ScratchFrame)
	scratch.Entries[idx].Set(frame, mem.FlagValid|mem.FlagRead|mem.FlagWrite)
	return m.Memory.Table(frame)
}

// table returns the leaf table for vpn1, allocating and zeroing it first
// if create is true and none exists yet.
func (m *Mapper_t) table(vpn1 uint32, create bool) (*mem.PageTable_t, defs.Err_t) {
	dir := m.Memory.Table(m.DirFrame)
	e := &dir.Entries[vpn1]
	if !e.Present() {
		if !create {
			return nil, defs.EPageIsNotMapped
		}
		f, err := m.Alloc.Alloc()
		if err != 0 {
			return nil, err
		}
		m.Memory.Table(f).Zero()
		e.Set(f, mem.FlagValid)
	}
	return m.windowTable(vpn1&mem.EntryMask, e.Frame()), 0
}

// bootTable is table's boot-time counterpart: it accesses intermediate
// tables directly through Memory_t rather than the temporary window,
// since before paging is enabled there is no address-space register to
// bracket and the physical frame is the only address available (spec
// §4.2: boot_map "accesses intermediate tables through their physical
// address ... instead of through the temporary window").
func (m *Mapper_t) bootTable(vpn1 uint32, create bool) (*mem.PageTable_t, defs.Err_t) {
	dir := m.Memory.Table(m.DirFrame)
	e := &dir.Entries[vpn1]
	if !e.Present() {
		if !create {
			return nil, defs.EPageIsNotMapped
		}
		f, err := m.Alloc.Alloc()
		if err != 0 {
			return nil, err
		}
		m.Memory.Table(f).Zero()
		e.Set(f, mem.FlagValid)
	}
	return m.Memory.Table(e.Frame()), 0
}

/// Map ensures the intermediate table for page's directory index exists,
/// then writes the leaf entry with exactly the given flags. Overwriting
/// an existing entry is permitted.
func (m *Mapper_t) Map(page mem.VirtAddr, frame mem.Frame_t, flags mem.Flag_t) defs.Err_t {
	if !page.Aligned() || !frame.Addr.Aligned() {
		return defs.EInvalidAlignment
	}
	tbl, err := m.table(page.Vpn1(), true)
	if err != 0 {
		return err
	}
	tbl.Entries[page.Vpn0()].Set(frame, flags)
	return 0
}

/// BootMap is Map's pre-paging variant; see bootTable.
func (m *Mapper_t) BootMap(page mem.VirtAddr, frame mem.Frame_t, flags mem.Flag_t) defs.Err_t {
	if !page.Aligned() || !frame.Addr.Aligned() {
		return defs.EInvalidAlignment
	}
	tbl, err := m.bootTable(page.Vpn1(), true)
	if err != 0 {
		return err
	}
	tbl.Entries[page.Vpn0()].Set(frame, flags)
	return 0
}

/// Unmap clears page's leaf entry. Fails with EPageIsNotMapped if the
/// intermediate table is absent.
func (m *Mapper_t) Unmap(page mem.VirtAddr) defs.Err_t {
	tbl, err := m.table(page.Vpn1(), false)
	if err != 0 {
		return err
	}
	tbl.Entries[page.Vpn0()].Clear()
	return 0
}

/// Flag reads page's leaf flags.
func (m *Mapper_t) Flag(page mem.VirtAddr) (mem.Flag_t, defs.Err_t) {
	tbl, err := m.table(page.Vpn1(), false)
	if err != 0 {
		return 0, err
	}
	e := tbl.Entries[page.Vpn0()]
	if !e.Present() {
		return 0, defs.EPageIsNotMapped
	}
	return e.Flags(), 0
}

/// IdentityMap maps the virtual address numerically equal to frame's
/// physical address.
func (m *Mapper_t) IdentityMap(frame mem.Frame_t, flags mem.Flag_t) defs.Err_t {
	return m.Map(mem.VirtAddr(frame.Addr), frame, flags)
}

/// MapRegion maps [va, va+size) to consecutive frames starting at frame,
/// checking page alignment of both addresses.
func (m *Mapper_t) MapRegion(va mem.VirtAddr, frame mem.Frame_t, size uint32, flags mem.Flag_t) defs.Err_t {
	if !va.Aligned() || !frame.Addr.Aligned() || size%mem.PageSize != 0 {
		return defs.EInvalidAlignment
	}
	for off := uint32(0); off < size; off += mem.PageSize {
		f := mem.Frame_t{Addr: frame.Addr + mem.PhysAddr(off)}
		if err := m.Map(va+mem.VirtAddr(off), f, flags); err != 0 {
			return err
		}
	}
	return 0
}

/// BootMapRegion is MapRegion's pre-paging variant.
func (m *Mapper_t) BootMapRegion(va mem.VirtAddr, frame mem.Frame_t, size uint32, flags mem.Flag_t) defs.Err_t {
	if !va.Aligned() || !frame.Addr.Aligned() || size%mem.PageSize != 0 {
		return defs.EInvalidAlignment
	}
	for off := uint32(0); off < size; off += mem.PageSize {
		f := mem.Frame_t{Addr: frame.Addr + mem.PhysAddr(off)}
		if err := m.BootMap(va+mem.VirtAddr(off), f, flags); err != 0 {
			return err
		}
	}
	return 0
}

/// CloneDir copies every kernel-shared directory entry (every entry
/// except the user region and the temporary window) into other, used to
/// install the shared kernel mapping into a freshly created process.
func (m *Mapper_t) CloneDir(other *Mapper_t) {
	src := m.Memory.Table(m.DirFrame)
	dst := other.Memory.Table(other.DirFrame)
	for i := uint32(0); i < mem.UserEntry; i++ {
		dst.Entries[i] = src.Entries[i]
	}
}

/// withActive switches Hart to this mapper's directory for the duration
/// of fn, then restores whatever was active before.
func (m *Mapper_t) withActive(fn func()) {
	saved := Hart
	Hart = Satp_t{PagingOn: true, Ppn: m.DirFrame.Ppn()}
	fn()
	Hart = saved
}

/// CreateCowUserMemory iterates every present user-region leaf of m's
/// directory; a leaf with WRITE set first has WRITE stripped and COW
/// added in the parent. For every present leaf it then bumps the frame's
/// refcount and installs an identical entry (same frame, same flags)
/// into child. After return, parent and
/// child share every user frame and both fault on the next write.
func (m *Mapper_t) CreateCowUserMemory(child *Mapper_t) defs.Err_t {
	dir := m.Memory.Table(m.DirFrame)
	for vpn1 := mem.UserEntry; vpn1 < mem.EntriesPerTable-1; vpn1++ {
		de := &dir.Entries[vpn1]
		if !de.Present() {
			continue
		}
		tbl := m.windowTable(uint32(vpn1)&mem.EntryMask, de.Frame())
		for vpn0 := uint32(0); vpn0 < mem.EntriesPerTable; vpn0++ {
			le := &tbl.Entries[vpn0]
			if !le.Present() {
				continue
			}
			flags := le.Flags()
			frame := le.Frame()
			if flags&mem.FlagWrite != 0 {
				flags = flags&^mem.FlagWrite | mem.FlagCow
				le.Set(frame, flags)
			}
			m.Alloc.Retain(frame)
			page := mem.PageFromVpns(uint32(vpn1), vpn0)
			var err defs.Err_t
			child.withActive(func() {
				err = child.Map(page, frame, flags)
			})
			if err != 0 {
				return err
			}
		}
	}
	return 0
}

/// ClonePage resolves a write fault on a COW leaf: it allocates a fresh
/// frame, copies the faulting page's 4096 bytes into it, then remaps
/// page to the new frame with WRITE restored and COW cleared, releasing
/// this mapper's reference on the shared original.
func (m *Mapper_t) ClonePage(page mem.VirtAddr) defs.Err_t {
	tbl, err := m.table(page.Vpn1(), false)
	if err != 0 {
		return err
	}
	le := &tbl.Entries[page.Vpn0()]
	if !le.Present() || le.Flags()&mem.FlagCow == 0 {
		return defs.EInvalidArguments
	}
	old := le.Frame()
	flags := le.Flags()&^mem.FlagCow | mem.FlagWrite
	fresh, err := m.Alloc.Alloc()
	if err != 0 {
		return err
	}
	*m.Memory.Bytes(fresh) = *m.Memory.Bytes(old)
	le.Set(fresh, flags)
	return m.Alloc.Dealloc(old)
}

/// CheckPerm reports whether addr is mapped with at least the given
/// flags set.
func (m *Mapper_t) CheckPerm(addr mem.VirtAddr, flags mem.Flag_t) bool {
	got, err := m.Flag(addr)
	if err != 0 {
		return false
	}
	return got&flags == flags
}

/// Ppn is the physical page number of this mapper's directory, the value
/// written to SATP to make it active.
func (m *Mapper_t) Ppn() uint32 { return m.DirFrame.Ppn() }

/// Translate resolves addr to the frame and flags of its leaf mapping,
/// used by the user-memory copy helpers and by the MMAP and FREE
/// syscalls.
func (m *Mapper_t) Translate(addr mem.VirtAddr) (mem.Frame_t, mem.Flag_t, defs.Err_t) {
	tbl, err := m.table(addr.Vpn1(), false)
	if err != 0 {
		return mem.Frame_t{}, 0, err
	}
	e := tbl.Entries[addr.Vpn0()]
	if !e.Present() {
		return mem.Frame_t{}, 0, defs.EPageIsNotMapped
	}
	return e.Frame(), e.Flags(), 0
}
