package limits

import "sync/atomic"

/// Sysatomic_t is a numeric limit/budget that can be atomically given and
/// taken without a lock. Used here for the live physical-frame count, the
/// same role the teacher gives it for socket/pipe/vnode budgets.
type Sysatomic_t int64

func (s *Sysatomic_t) _aptr() *int64 {
	return (*int64)(s)
}

/// Given increases the budget by the provided amount.
func (s *Sysatomic_t) Given(_n uint) {
	n := int64(_n)
	atomic.AddInt64(s._aptr(), n)
}

/// Taken tries to decrement the budget by the provided amount, reporting
/// whether there was enough left. It never drives the counter negative.
func (s *Sysatomic_t) Taken(_n uint) bool {
	n := int64(_n)
	g := atomic.AddInt64(s._aptr(), -n)
	if g >= 0 {
		return true
	}
	atomic.AddInt64(s._aptr(), n)
	return false
}

/// Take decrements the budget by one and reports whether it succeeded.
func (s *Sysatomic_t) Take() bool {
	return s.Taken(1)
}

/// Give increments the budget by one.
func (s *Sysatomic_t) Give() {
	s.Given(1)
}

/// Read returns the current value of the budget.
func (s *Sysatomic_t) Read() int64 {
	return atomic.LoadInt64(s._aptr())
}

/// KernelLimits tracks the compile-time tunables that size the kernel's
/// fixed-capacity structures, mirroring the teacher's Syslimit_t but for
/// this kernel's process table, mailboxes, and address space layout rather
/// than sockets, pipes, and vnodes.
type KernelLimits struct {
	/// Number of slots in the process table (spec §4.3: "e.g., 1024").
	NumProcesses int
	/// Capacity of each process's mailbox ring buffer (spec §3: "capacity
	/// = small fixed constant").
	MailboxDepth int
	/// Bytes reserved for each process's user stack region.
	UserStackSize int
	/// Live physical frame count, given back to the pool on dealloc and
	/// taken on alloc; mirrors the allocator's own free-stack length so
	/// diagnostics (D_STAT, D_PROF) can read it without touching the
	/// allocator's lock.
	FreeFrames Sysatomic_t
}

/// DefaultLimits returns the kernel's standard configuration.
func DefaultLimits() *KernelLimits {
	return &KernelLimits{
		NumProcesses:  1024,
		MailboxDepth:  8,
		UserStackSize: 8192,
	}
}

/// Limits holds the process-wide configuration, analogous to the
/// teacher's package-level Syslimit variable.
var Limits = DefaultLimits()
