package vm

import (
	"testing"

	"rvkernel/mem"
)

func newTestAlloc(n int) *mem.Allocator_t {
	region := make([]mem.PhysAddr, n)
	for i := range region {
		region[i] = mem.PhysAddr(i) << mem.PageShift
	}
	return mem.NewAllocator(region, func(mem.PhysAddr) bool { return false })
}

func TestMapUnmapRoundTrip(t *testing.T) {
	memory := mem.NewMemory(16)
	alloc := newTestAlloc(16)
	m, err := NewMapper(memory, alloc)
	if err != 0 {
		t.Fatalf("NewMapper failed: %v", err)
	}

	f, err := alloc.Alloc()
	if err != 0 {
		t.Fatalf("Alloc failed: %v", err)
	}
	va := mem.UserMemoryBase
	flags := mem.FlagValid | mem.FlagRead | mem.FlagWrite | mem.FlagUser
	if err := m.Map(va, f, flags); err != 0 {
		t.Fatalf("Map failed: %v", err)
	}

	got, _, err := m.Translate(va)
	if err != 0 {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != f {
		t.Fatalf("Translate() = %v, want %v", got, f)
	}

	if err := m.Unmap(va); err != 0 {
		t.Fatalf("Unmap failed: %v", err)
	}
	if _, _, err := m.Translate(va); err == 0 {
		t.Fatal("Translate after Unmap should fail")
	}
}

func TestCheckPerm(t *testing.T) {
	memory := mem.NewMemory(16)
	alloc := newTestAlloc(16)
	m, err := NewMapper(memory, alloc)
	if err != 0 {
		t.Fatalf("NewMapper failed: %v", err)
	}
	f, _ := alloc.Alloc()
	va := mem.UserMemoryBase
	if err := m.Map(va, f, mem.FlagValid|mem.FlagRead|mem.FlagUser); err != 0 {
		t.Fatalf("Map failed: %v", err)
	}
	if !m.CheckPerm(va, mem.FlagRead) {
		t.Error("CheckPerm(FlagRead) should hold")
	}
	if m.CheckPerm(va, mem.FlagWrite) {
		t.Error("CheckPerm(FlagWrite) should not hold on a read-only page")
	}
}

// TestCowForkSharesThenDiverges exercises the copy-on-write fork
// protocol end to end: after CreateCowUserMemory, parent and child share
// the same physical frame; a ClonePage on the child's copy gives it its
// own frame with the parent's contents preserved, and only the child
// observes the change.
func TestCowForkSharesThenDiverges(t *testing.T) {
	memory := mem.NewMemory(32)
	alloc := newTestAlloc(32)

	parent, err := NewMapper(memory, alloc)
	if err != 0 {
		t.Fatalf("NewMapper(parent) failed: %v", err)
	}
	child, err := NewMapper(memory, alloc)
	if err != 0 {
		t.Fatalf("NewMapper(child) failed: %v", err)
	}

	f, err := alloc.Alloc()
	if err != 0 {
		t.Fatalf("Alloc failed: %v", err)
	}
	va := mem.UserMemoryBase
	flags := mem.FlagValid | mem.FlagRead | mem.FlagWrite | mem.FlagUser
	if err := parent.Map(va, f, flags); err != 0 {
		t.Fatalf("Map failed: %v", err)
	}
	memory.Bytes(f)[0] = 0xAB

	if err := parent.CreateCowUserMemory(child); err != 0 {
		t.Fatalf("CreateCowUserMemory failed: %v", err)
	}

	parentFrame, parentFlags, err := parent.Translate(va)
	if err != 0 {
		t.Fatalf("parent.Translate failed: %v", err)
	}
	if parentFlags&mem.FlagWrite != 0 {
		t.Error("parent mapping should have lost WRITE after CoW fork")
	}
	if parentFlags&mem.FlagCow == 0 {
		t.Error("parent mapping should carry COW after CoW fork")
	}

	childFrame, childFlags, err := child.Translate(va)
	if err != 0 {
		t.Fatalf("child.Translate failed: %v", err)
	}
	if childFrame != parentFrame {
		t.Fatalf("child frame %v != parent frame %v before divergence", childFrame, parentFrame)
	}
	if childFlags&mem.FlagCow == 0 {
		t.Error("child mapping should carry COW right after fork")
	}

	if err := child.ClonePage(va); err != 0 {
		t.Fatalf("ClonePage failed: %v", err)
	}
	childFrame2, childFlags2, err := child.Translate(va)
	if err != 0 {
		t.Fatalf("child.Translate after ClonePage failed: %v", err)
	}
	if childFrame2 == parentFrame {
		t.Fatal("child should own a distinct frame after ClonePage")
	}
	if childFlags2&mem.FlagWrite == 0 || childFlags2&mem.FlagCow != 0 {
		t.Error("child mapping should have WRITE restored and COW cleared after ClonePage")
	}
	if memory.Bytes(childFrame2)[0] != 0xAB {
		t.Error("ClonePage should preserve the original page contents")
	}

	parentFrameAfter, _, err := parent.Translate(va)
	if err != 0 {
		t.Fatalf("parent.Translate after child ClonePage failed: %v", err)
	}
	if parentFrameAfter != parentFrame {
		t.Fatal("parent's mapping must be unaffected by the child's ClonePage")
	}
}
