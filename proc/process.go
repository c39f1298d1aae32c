// Package proc implements the process table, scheduler, and per-process
// runtime described in spec §4.3/§4.4, grounded on
// original_source/src/proc.rs's Process/ProcessManager shape and on the
// teacher's slot-table idiom (biscuit keeps no equivalent process table
// of its own — its scheduler walks a linked list — so the fixed-array,
// free-stack allocation pattern here follows proc.rs directly, adapted
// to Go value/pointer semantics).
package proc

import (
	"rvkernel/accnt"
	"rvkernel/circbuf"
	"rvkernel/defs"
	"rvkernel/elfload"
	"rvkernel/mem"
	"rvkernel/trap"
	"rvkernel/vm"
)

/// Status_t is the process lifecycle state (spec §3).
type Status_t int

const (
	Free Status_t = iota
	Running
	Runnable
	NotRunnable
	Zombie
)

func (s Status_t) String() string {
	switch s {
	case Free:
		return "free"
	case Running:
		return "running"
	case Runnable:
		return "runnable"
	case NotRunnable:
		return "not-runnable"
	case Zombie:
		return "zombie"
	default:
		return "unknown"
	}
}

/// Process_t is one process-table slot (spec §3).
type Process_t struct {
	ID       uint32
	ParentID uint32
	Status   Status_t

	Mapper    *vm.Mapper_t
	TrapFrame trap.TrapFrame_t
	Mailbox   *circbuf.Mailbox_t
	ExitCode  int32
	Accnt     accnt.Accnt_t

	/// UserBrk is the next unused user virtual address, used by ALLOC
	/// when the caller passes va=0 ("choose an address" per spec §4.6).
	UserBrk mem.VirtAddr
}

/// Create installs from's kernel-shared directory entries into a freshly
/// allocated mapper for this process (spec §4.4: "does not copy user
/// entries").
func (p *Process_t) Create(from *vm.Mapper_t, memory *mem.Memory_t, alloc *mem.Allocator_t) defs.Err_t {
	m, err := vm.NewMapper(memory, alloc)
	if err != 0 {
		return err
	}
	from.CloneDir(m)
	p.Mapper = m
	p.UserBrk = mem.UserMemoryBase
	return 0
}

/// RegionAlloc allocates and maps a fresh frame for every page in
/// [va, va+size) with the given flags. The process's address space must
/// already have a Mapper (spec §4.4).
func (p *Process_t) RegionAlloc(va mem.VirtAddr, size uint32, flags mem.Flag_t) defs.Err_t {
	for off := uint32(0); off < size; off += mem.PageSize {
		f, err := p.Mapper.Alloc.Alloc()
		if err != 0 {
			return err
		}
		if err := p.Mapper.Map(va+mem.VirtAddr(off), f, flags); err != 0 {
			return err
		}
	}
	return 0
}

/// LoadELF maps and populates every PT_LOAD segment of img, zero-filling
/// each segment out to its memory size, then maps the user stack just
/// below stackTop, and points the saved trap frame at the image's entry
/// (spec §4.4).
func (p *Process_t) LoadELF(img *elfload.Image, stackTop mem.VirtAddr, stackSize uint32) defs.Err_t {
	for _, seg := range img.Segments {
		flags := mem.FlagValid | mem.FlagUser | mem.FlagRead
		if seg.Flags&elfload.PFWrite != 0 {
			flags |= mem.FlagWrite
		}
		if seg.Flags&elfload.PFExec != 0 {
			flags |= mem.FlagExec
		}
		size := roundupPage(seg.MemSize)
		va := mem.VirtAddr(seg.VirtAddr)
		if !va.Aligned() {
			return defs.EInvalidAlignment
		}
		// Map writable while the image is copied in, then drop WRITE
		// again for segments that do not ask for it.
		if err := p.RegionAlloc(va, size, flags|mem.FlagWrite); err != 0 {
			return err
		}
		image := make([]byte, seg.MemSize)
		copy(image, seg.Data)
		if err := vm.CopyToUser(p.Mapper, va, image); err != 0 {
			return err
		}
		if flags&mem.FlagWrite == 0 {
			for off := uint32(0); off < size; off += mem.PageSize {
				f, _, err := p.Mapper.Translate(va + mem.VirtAddr(off))
				if err != 0 {
					return err
				}
				if err := p.Mapper.Map(va+mem.VirtAddr(off), f, flags); err != 0 {
					return err
				}
			}
		}
	}
	stackBase := stackTop - mem.VirtAddr(stackSize)
	if err := p.RegionAlloc(stackBase, stackSize, mem.FlagValid|mem.FlagUser|mem.FlagRead|mem.FlagWrite); err != 0 {
		return err
	}
	p.TrapFrame.PC = img.Entry
	p.TrapFrame.SP = uint32(stackTop)
	return 0
}

func roundupPage(n uint32) uint32 {
	if n%mem.PageSize == 0 {
		return n
	}
	return n - n%mem.PageSize + mem.PageSize
}

/// Run marks the process Running and activates its address space. A
/// real hart would now restore the saved trap frame's registers and
/// `sret`; see trap package doc comment for why that step stays a
/// described contract rather than emitted assembly here.
func (p *Process_t) Run() {
	vm.Hart = vm.Satp_t{PagingOn: true, Ppn: p.Mapper.Ppn()}
	p.Status = Running
}

/// Exit marks the process Zombie with the given exit code.
func (p *Process_t) Exit(code int32) {
	p.Status = Zombie
	p.ExitCode = code
}

/// EnqueueMessage appends a message to this process's mailbox.
func (p *Process_t) EnqueueMessage(sender uint32, data uint32) defs.Err_t {
	return p.Mailbox.Send(sender, data)
}

/// DequeueMessage removes the oldest message from this process's
/// mailbox.
func (p *Process_t) DequeueMessage() (sender uint32, data uint32, err defs.Err_t) {
	return p.Mailbox.Receive()
}
