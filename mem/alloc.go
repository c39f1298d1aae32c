package mem

import (
	"sync"

	"rvkernel/defs"
	"rvkernel/limits"
)

/// Allocator_t is a stack-of-frames physical allocator (spec §4.1).
/// On construction it scans every frame-sized address in the supplied
/// region and pushes onto the free stack those for which isUsed reports
/// false (kernel image, bookkeeping pages, MMIO are skipped).
///
/// Resolving the §9 open question on FREE semantics: every frame carries
/// a reference count. Alloc hands out a frame with refcount 1. A COW
/// sharer calls Retain to bump it before installing a second mapping.
/// Dealloc decrements the count and only returns the frame to the free
/// stack when it reaches zero, so a FREE or exit on one CoW sharer never
/// invalidates the frame still mapped by another.
type Allocator_t struct {
	sync.Mutex
	free []Frame_t
	refs map[PhysAddr]int
}

/// NewAllocator builds the initial free stack for the given region.
/// region lists every frame-sized physical address under management;
/// isUsed reports true for addresses reserved by the kernel image,
/// bookkeeping structures, or the MMIO window.
func NewAllocator(region []PhysAddr, isUsed func(PhysAddr) bool) *Allocator_t {
	a := &Allocator_t{refs: make(map[PhysAddr]int)}
	for _, addr := range region {
		if isUsed(addr) {
			continue
		}
		a.free = append(a.free, Frame_t{Addr: addr})
	}
	limits.Limits.FreeFrames.Given(uint(len(a.free)))
	return a
}

/// Alloc pops a frame off the free stack with refcount 1. It never
/// returns a frame currently reachable through any live page-table entry
/// (callers are responsible for preserving that invariant when mapping,
/// per spec §4.1).
func (a *Allocator_t) Alloc() (Frame_t, defs.Err_t) {
	a.Lock()
	defer a.Unlock()
	n := len(a.free)
	if n == 0 {
		return Frame_t{}, defs.EFailedToAllocMemory
	}
	f := a.free[n-1]
	a.free = a.free[:n-1]
	a.refs[f.Addr] = 1
	limits.Limits.FreeFrames.Taken(1)
	return f, 0
}

/// Retain increments f's reference count without allocating; used when
/// installing a second mapping (e.g. a CoW child) onto a frame already
/// owned by a live entry.
func (a *Allocator_t) Retain(f Frame_t) {
	a.Lock()
	defer a.Unlock()
	a.refs[f.Addr]++
}

/// Dealloc decrements f's reference count and, once it reaches zero,
/// pushes it back onto the free stack. Dealloc of a frame this
/// allocator never handed out is a bug and returns EProgramError.
func (a *Allocator_t) Dealloc(f Frame_t) defs.Err_t {
	a.Lock()
	defer a.Unlock()
	n, ok := a.refs[f.Addr]
	if !ok || n <= 0 {
		return defs.EProgramError
	}
	n--
	if n == 0 {
		delete(a.refs, f.Addr)
		a.free = append(a.free, f)
		limits.Limits.FreeFrames.Given(1)
		return 0
	}
	a.refs[f.Addr] = n
	return 0
}

/// Refcount reports how many live mappings reference f (0 if free).
func (a *Allocator_t) Refcount(f Frame_t) int {
	a.Lock()
	defer a.Unlock()
	return a.refs[f.Addr]
}

/// FreeCount reports how many frames remain on the free stack.
func (a *Allocator_t) FreeCount() int {
	a.Lock()
	defer a.Unlock()
	return len(a.free)
}
