package kernel

import (
	"testing"

	"rvkernel/defs"
	"rvkernel/mem"
	"rvkernel/proc"
	"rvkernel/trap"
)

func newTestKernel(t *testing.T) *Kernel {
	t.Helper()
	k, err := NewKernel(64, func(mem.PhysAddr) bool { return false })
	if err != 0 {
		t.Fatalf("NewKernel failed: %v", err)
	}
	return k
}

// TestCowWriteFaultResolvesTransparently exercises the fork+CoW scenario
// end to end through Dispatch: a process forks, the child takes a write
// fault on an inherited COW page, and Dispatch resolves it by cloning the
// page rather than killing the process.
func TestCowWriteFaultResolvesTransparently(t *testing.T) {
	k := newTestKernel(t)

	parent, err := k.Table.Alloc()
	if err != 0 {
		t.Fatalf("Alloc failed: %v", err)
	}
	if err := parent.Create(k.Mapper, k.Memory, k.Alloc); err != 0 {
		t.Fatalf("Create failed: %v", err)
	}
	va := mem.UserMemoryBase
	f, err := k.Alloc.Alloc()
	if err != 0 {
		t.Fatalf("Alloc failed: %v", err)
	}
	if err := parent.Mapper.Map(va, f, mem.FlagValid|mem.FlagRead|mem.FlagWrite|mem.FlagUser); err != 0 {
		t.Fatalf("Map failed: %v", err)
	}

	child, err := k.Table.Alloc()
	if err != 0 {
		t.Fatalf("Alloc failed: %v", err)
	}
	if err := child.Create(k.Mapper, k.Memory, k.Alloc); err != 0 {
		t.Fatalf("Create failed: %v", err)
	}
	if err := parent.Mapper.CreateCowUserMemory(child.Mapper); err != 0 {
		t.Fatalf("CreateCowUserMemory failed: %v", err)
	}

	child.Status = proc.Running
	var tf trap.TrapFrame_t
	k.Dispatch(child, &tf, uint32(trap.StorePageFault), uint32(va))

	if child.Status == proc.Zombie {
		t.Fatal("a resolvable CoW fault should not kill the process")
	}
	_, flags, terr := child.Mapper.Translate(va)
	if terr != 0 {
		t.Fatalf("Translate after fault resolution failed: %v", terr)
	}
	if flags&mem.FlagCow != 0 {
		t.Error("child mapping should no longer be COW after the fault resolves")
	}
	if flags&mem.FlagWrite == 0 {
		t.Error("child mapping should regain WRITE after the fault resolves")
	}
}

func TestPageFaultOnUnmappedAddressKillsProcess(t *testing.T) {
	k := newTestKernel(t)
	p, err := k.Table.Alloc()
	if err != 0 {
		t.Fatalf("Alloc failed: %v", err)
	}
	if err := p.Create(k.Mapper, k.Memory, k.Alloc); err != 0 {
		t.Fatalf("Create failed: %v", err)
	}
	p.Status = proc.Running

	var tf trap.TrapFrame_t
	k.Dispatch(p, &tf, uint32(trap.LoadPageFault), uint32(mem.UserMemoryBase))

	if p.Status != proc.Zombie {
		t.Fatalf("Status = %v, want Zombie after an unresolvable page fault", p.Status)
	}
	if p.ExitCode != int32(defs.EIllegalAddress) {
		t.Fatalf("ExitCode = %d, want %d", p.ExitCode, defs.EIllegalAddress)
	}
}

func TestSpawnUnknownNameIsNotFound(t *testing.T) {
	k := newTestKernel(t)
	if _, err := k.Spawn("nonexistent"); err != defs.ENotFound {
		t.Fatalf("Spawn(nonexistent) = %v, want ENotFound", err)
	}
}
