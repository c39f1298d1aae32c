// Package accnt tracks per-process CPU-time accounting, adapted from the
// teacher's Accnt_t (biscuit/src/accnt/accnt.go). The rusage byte-packing
// biscuit used to hand usage data back to a syscall caller has no
// counterpart here (this kernel's syscall surface has no getrusage);
// instead Snapshot feeds the D_PROF pprof profile built in profile.go.
package accnt

import (
	"sync"
	"sync/atomic"
)

/// Accnt_t accumulates one process's user/system time in nanoseconds.
/// The embedded mutex lets callers take a consistent snapshot while
/// another hart-side caller is still adding to the counters.
type Accnt_t struct {
	/// Nanoseconds of user time consumed.
	Userns int64
	/// Nanoseconds of system time consumed.
	Sysns int64
	sync.Mutex
}

/// Utadd adds delta nanoseconds to the user-time counter.
func (a *Accnt_t) Utadd(delta int64) {
	atomic.AddInt64(&a.Userns, delta)
}

/// Systadd adds delta nanoseconds to the system-time counter.
func (a *Accnt_t) Systadd(delta int64) {
	atomic.AddInt64(&a.Sysns, delta)
}

/// Add merges another accounting record into this one.
func (a *Accnt_t) Add(n *Accnt_t) {
	n.Lock()
	userns, sysns := n.Userns, n.Sysns
	n.Unlock()
	a.Lock()
	a.Userns += userns
	a.Sysns += sysns
	a.Unlock()
}

/// Snapshot_t is a lock-free, copyable view of an Accnt_t's counters.
type Snapshot_t struct {
	Userns int64
	Sysns  int64
}

/// Snapshot takes a consistent copy of the counters.
func (a *Accnt_t) Snapshot() Snapshot_t {
	a.Lock()
	defer a.Unlock()
	return Snapshot_t{Userns: a.Userns, Sysns: a.Sysns}
}
