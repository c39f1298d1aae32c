package mem

import (
	"testing"

	"golang.org/x/sync/errgroup"

	"rvkernel/defs"
)

func demoRegion(n int) []PhysAddr {
	region := make([]PhysAddr, n)
	for i := range region {
		region[i] = PhysAddr(i) << PageShift
	}
	return region
}

func TestAllocDeallocBalance(t *testing.T) {
	a := NewAllocator(demoRegion(8), func(PhysAddr) bool { return false })
	if got := a.FreeCount(); got != 8 {
		t.Fatalf("FreeCount() = %d, want 8", got)
	}
	var frames []Frame_t
	for i := 0; i < 8; i++ {
		f, err := a.Alloc()
		if err != 0 {
			t.Fatalf("Alloc() failed on frame %d: %v", i, err)
		}
		frames = append(frames, f)
	}
	if _, err := a.Alloc(); err != defs.EFailedToAllocMemory {
		t.Fatalf("Alloc() on exhausted pool = %v, want EFailedToAllocMemory", err)
	}
	for _, f := range frames {
		if err := a.Dealloc(f); err != 0 {
			t.Fatalf("Dealloc(%v) failed: %v", f, err)
		}
	}
	if got := a.FreeCount(); got != 8 {
		t.Fatalf("FreeCount() after full dealloc = %d, want 8", got)
	}
}

func TestAllocatorReservesUsedFrames(t *testing.T) {
	used := map[PhysAddr]bool{0: true, PageSize: true}
	a := NewAllocator(demoRegion(4), func(p PhysAddr) bool { return used[p] })
	if got := a.FreeCount(); got != 2 {
		t.Fatalf("FreeCount() = %d, want 2 (2 of 4 frames reserved)", got)
	}
}

// TestCowSharingKeepsFrameAlive exercises the refcount resolution of the
// FREE open question: a frame Retained by a second owner survives one
// Dealloc and is only returned to the pool once every owner has released
// it.
func TestCowSharingKeepsFrameAlive(t *testing.T) {
	a := NewAllocator(demoRegion(2), func(PhysAddr) bool { return false })
	f, err := a.Alloc()
	if err != 0 {
		t.Fatalf("Alloc() failed: %v", err)
	}
	a.Retain(f)
	if got := a.Refcount(f); got != 2 {
		t.Fatalf("Refcount() = %d, want 2 after Retain", got)
	}
	if err := a.Dealloc(f); err != 0 {
		t.Fatalf("Dealloc() failed: %v", err)
	}
	if got := a.FreeCount(); got != 1 {
		t.Fatalf("FreeCount() = %d, want 1 (frame still referenced)", got)
	}
	if err := a.Dealloc(f); err != 0 {
		t.Fatalf("Dealloc() failed: %v", err)
	}
	if got := a.FreeCount(); got != 2 {
		t.Fatalf("FreeCount() = %d, want 2 (last reference released)", got)
	}
}

func TestDeallocUnknownFrameIsProgramError(t *testing.T) {
	a := NewAllocator(demoRegion(1), func(PhysAddr) bool { return false })
	bogus := Frame_t{Addr: 0x1000000}
	if err := a.Dealloc(bogus); err != defs.EProgramError {
		t.Fatalf("Dealloc(unknown) = %v, want EProgramError", err)
	}
}

// TestConcurrentAllocDealloc hammers the allocator from many goroutines at
// once and checks the free stack is back at exactly its starting size
// afterwards, confirming the lock actually serializes free-stack/refcount
// edits.
func TestConcurrentAllocDealloc(t *testing.T) {
	const nframes = 64
	a := NewAllocator(demoRegion(nframes), func(PhysAddr) bool { return false })

	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			for j := 0; j < 100; j++ {
				f, err := a.Alloc()
				if err != 0 {
					continue
				}
				if err := a.Dealloc(f); err != 0 {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent alloc/dealloc failed: %v", err)
	}
	if got := a.FreeCount(); got != nframes {
		t.Fatalf("FreeCount() after concurrent churn = %d, want %d", got, nframes)
	}
}
