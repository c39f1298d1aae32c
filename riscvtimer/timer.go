// Package riscvtimer models the mtime/mtimecmp MMIO pair described in
// spec §6, grounded on original_source/src/csr/timer.rs's register
// layout and clock constant.
package riscvtimer

import "sync"

// MMIO addresses of the 64-bit time/compare register pairs, split into
// low/high halves as the privileged architecture requires on a 32-bit
// hart (osmium's csr/timer.rs).
const (
	MTimeLo    uint32 = 0x80001000
	MTimeHi    uint32 = 0x80001004
	MTimeCmpLo uint32 = 0x80001008
	MTimeCmpHi uint32 = 0x8000100c
	ClockHz    uint64 = 240_000_000
)

/// Timer_t is the kernel's view of the timer: a free-running counter and
/// a compare value that, once reached, should raise a timer interrupt.
type Timer_t struct {
	mu  sync.Mutex
	now uint64
	cmp uint64
}

/// SetInterval arms the compare register to fire ns nanoseconds from the
/// current counter value (osmium's `set_interval`).
func (t *Timer_t) SetInterval(ns uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cmp = t.now + ns*ClockHz/1_000_000_000
}

/// Advance moves the counter forward by ns nanoseconds and reports
/// whether the compare value has now been reached.
func (t *Timer_t) Advance(ns uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now += ns * ClockHz / 1_000_000_000
	return t.now >= t.cmp
}

/// Now returns the current free-running counter value.
func (t *Timer_t) Now() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.now
}
