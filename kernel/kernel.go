// Package kernel wires the frame allocator, Sv32 mapper, process table,
// console, and timer into the single handle spec §9 asks for in place of
// the teacher's package-level mutable globals ("avoid a Go kernel-wide
// mutable singleton; thread an explicit Kernel handle instead").
package kernel

import (
	"fmt"

	"rvkernel/caller"
	"rvkernel/console"
	"rvkernel/defs"
	"rvkernel/elfload"
	"rvkernel/files"
	"rvkernel/limits"
	"rvkernel/mem"
	"rvkernel/proc"
	"rvkernel/riscvtimer"
	"rvkernel/syscall"
	"rvkernel/trap"
	"rvkernel/vm"
)

/// Kernel bundles the physical memory, the frame allocator, the kernel's
/// own address space, the process table, and the two MMIO-backed devices
/// spec §6 names (console, timer). One Kernel models one hart.
type Kernel struct {
	Memory  *mem.Memory_t
	Alloc   *mem.Allocator_t
	Mapper  *vm.Mapper_t
	Table   *proc.ProcessTable_t
	Console *console.UART_t
	Timer   *riscvtimer.Timer_t
	Files   *files.Source

	Current *proc.Process_t
}

/// NewKernel builds the physical frame pool over numFrames frames (isUsed
/// marks the ones reserved for the kernel image and bookkeeping), the
/// kernel's own address space with every frame identity-mapped
/// READ|WRITE|EXEC, and an empty process table sized per limits.Limits.
func NewKernel(numFrames int, isUsed func(mem.PhysAddr) bool) (*Kernel, defs.Err_t) {
	memory := mem.NewMemory(numFrames)
	region := make([]mem.PhysAddr, numFrames)
	for i := range region {
		region[i] = mem.PhysAddr(i) << mem.PageShift
	}
	alloc := mem.NewAllocator(region, isUsed)

	kmapper, err := vm.NewMapper(memory, alloc)
	if err != 0 {
		return nil, err
	}
	flags := mem.FlagValid | mem.FlagRead | mem.FlagWrite | mem.FlagExec
	if err := kmapper.BootMapRegion(0, mem.Frame_t{Addr: 0}, uint32(numFrames)*mem.PageSize, flags); err != 0 {
		return nil, err
	}

	k := &Kernel{
		Memory:  memory,
		Alloc:   alloc,
		Mapper:  kmapper,
		Table:   proc.NewProcessTable(limits.Limits.NumProcesses, limits.Limits.MailboxDepth),
		Console: console.NewUART(),
		Timer:   &riscvtimer.Timer_t{},
		Files:   files.NewSource(),
	}
	return k, 0
}

/// Spawn loads the named program image fresh into a new process table slot
/// and marks it Runnable (spec §4.4's "process 0" bootstrap path, reused
/// for every later EXECVE-free process creation too, e.g. an init binary).
func (k *Kernel) Spawn(name string) (*proc.Process_t, defs.Err_t) {
	data, err := k.Files.Search(name)
	if err != 0 {
		return nil, err
	}
	img, err := elfload.Parse(data)
	if err != 0 {
		return nil, err
	}
	p, err := k.Table.Alloc()
	if err != 0 {
		return nil, err
	}
	if err := p.Create(k.Mapper, k.Memory, k.Alloc); err != 0 {
		return nil, err
	}
	if err := p.LoadELF(img, mem.UserAddressSpaceTop, uint32(limits.Limits.UserStackSize)); err != 0 {
		return nil, err
	}
	p.Status = proc.Runnable
	return p, 0
}

/// env builds the per-call syscall environment for the currently running
/// process.
func (k *Kernel) env() *syscall.Env {
	return &syscall.Env{
		Table:   k.Table,
		Memory:  k.Memory,
		Alloc:   k.Alloc,
		Console: k.Console,
		Files:   k.Files,
		Current: k.Current,
	}
}

/// Dispatch routes one trap for the running process p, given the raw
/// scause/stval a trap entry stub would have read out of the CSRs (spec
/// §4.5: "decode scause ... dispatch to the syscall handler, the page
/// fault handler, or panic").
func (k *Kernel) Dispatch(p *proc.Process_t, tf *trap.TrapFrame_t, scause, stval uint32) {
	k.Current = p
	cause := trap.DecodeCause(scause)

	if cause.IsInterrupt {
		switch cause.Interrupt {
		case trap.SupervisorTimer:
			k.Timer.SetInterval(10_000_000)
			p.Status = proc.Runnable
		default:
			k.Panicf("unhandled interrupt %s", cause)
		}
		return
	}

	switch cause.Exception {
	case trap.EnvironmentCallU:
		syscall.Dispatch(k.env(), tf)
	case trap.StorePageFault, trap.LoadPageFault, trap.InstructionPageFault:
		k.pageFault(p, mem.VirtAddr(stval))
	case trap.InstructionAccessFault, trap.LoadAccessFault, trap.StoreAccessFault:
		p.Exit(int32(defs.EIllegalAddress))
	case trap.IllegalInstruction:
		p.Exit(int32(defs.EInvalidArguments))
	default:
		k.Panicf("unhandled exception %s at pc=0x%x", cause, tf.PC)
	}
}

// pageFault resolves a page fault at addr for process p: a COW leaf is
// cloned via the mapper (spec §4.2 "a write fault on a COW page"); faults
// on any other unmapped or non-COW page are fatal to the faulting process
// (spec §9's second open question, resolved here: Load/Store/Instruction
// page faults share this one handler rather than three distinct ones,
// since a non-COW access to an unmapped page has no other legal
// resolution regardless of which kind of access triggered it).
func (k *Kernel) pageFault(p *proc.Process_t, addr mem.VirtAddr) {
	page := mem.VirtAddr(uint32(addr) &^ (mem.PageSize - 1))
	flags, err := p.Mapper.Flag(page)
	if err == 0 && flags&mem.FlagCow != 0 {
		if err := p.Mapper.ClonePage(page); err == 0 {
			return
		}
	}
	p.Exit(int32(defs.EIllegalAddress))
}

/// Panicf records a kernel-internal invariant violation: it dumps the call
/// stack (deduplicated per distinct call chain, see caller.DumpOnce),
/// prints the message, and panics with it, halting the hart. Spec §7:
/// "Kernel-internal invariant violations ... panic (this is a bug, not a
/// recoverable runtime error)".
func (k *Kernel) Panicf(format string, args ...any) {
	caller.DumpOnce(2)
	msg := fmt.Sprintf("kernel panic: "+format, args...)
	fmt.Println(msg)
	panic(msg)
}
