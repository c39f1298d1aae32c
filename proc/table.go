package proc

import (
	"sync"

	"rvkernel/accnt"
	"rvkernel/circbuf"
	"rvkernel/defs"
)

/// ProcessTable_t is the fixed-size process table (spec §4.3): a slab of
/// slots, a free-list of indices kept as a stack, and a round-robin
/// cursor for the scheduler.
type ProcessTable_t struct {
	sync.Mutex
	slots        []Process_t
	freeStack    []int
	schedIndex   int
	mailboxDepth int
}

/// NewProcessTable builds a table of n slots, each with a mailbox of the
/// given capacity, and pushes every index onto the free stack.
func NewProcessTable(n, mailboxDepth int) *ProcessTable_t {
	t := &ProcessTable_t{
		slots:        make([]Process_t, n),
		freeStack:    make([]int, 0, n),
		mailboxDepth: mailboxDepth,
	}
	for i := n - 1; i >= 0; i-- {
		t.slots[i].Mailbox = circbuf.NewMailbox(mailboxDepth)
		t.freeStack = append(t.freeStack, i)
	}
	return t
}

/// Alloc pops a free slot and returns it with status Free; the caller is
/// responsible for setting its status once the process is ready to run.
func (t *ProcessTable_t) Alloc() (*Process_t, defs.Err_t) {
	t.Lock()
	defer t.Unlock()
	n := len(t.freeStack)
	if n == 0 {
		return nil, defs.EFailedToCreateProcess
	}
	idx := t.freeStack[n-1]
	t.freeStack = t.freeStack[:n-1]
	mailbox := t.slots[idx].Mailbox
	t.slots[idx] = Process_t{ID: uint32(idx), Status: Free, Mailbox: mailbox}
	return &t.slots[idx], 0
}

/// Dealloc marks p's slot Free and returns it to the free stack.
func (t *ProcessTable_t) Dealloc(p *Process_t) defs.Err_t {
	t.Lock()
	defer t.Unlock()
	idx := int(p.ID)
	if idx < 0 || idx >= len(t.slots) || &t.slots[idx] != p {
		return defs.EProgramError
	}
	t.slots[idx].Status = Free
	t.freeStack = append(t.freeStack, idx)
	return 0
}

/// ID2Proc looks up a live process by id. A process's id is its slot
/// index, so the lookup indexes the slot directly instead of searching.
func (t *ProcessTable_t) ID2Proc(id uint32) (*Process_t, defs.Err_t) {
	t.Lock()
	defer t.Unlock()
	if int(id) >= len(t.slots) {
		return nil, defs.ENoSuchProcess
	}
	p := &t.slots[id]
	if p.Status == Free {
		return nil, defs.ENoSuchProcess
	}
	return p, 0
}

/// Sched scans for the next Runnable process starting at schedIndex,
/// round-robin, advancing the cursor past whatever it returns. It
/// returns nil if no process is Runnable.
func (t *ProcessTable_t) Sched() *Process_t {
	t.Lock()
	defer t.Unlock()
	n := len(t.slots)
	for i := 0; i < n; i++ {
		idx := (t.schedIndex + i) % n
		if t.slots[idx].Status == Runnable {
			t.schedIndex = (idx + 1) % n
			return &t.slots[idx]
		}
	}
	return nil
}

/// Summary_t is a lock-free snapshot of one process's identity and
/// accounting, safe to copy and hold after the table lock is released.
type Summary_t struct {
	ID       uint32
	ParentID uint32
	Status   Status_t
	Accnt    accnt.Snapshot_t
}

/// Snapshot returns a summary of every non-Free slot, used by the
/// D_STAT/D_PROF diagnostics (spec §9 supplement).
func (t *ProcessTable_t) Snapshot() []Summary_t {
	t.Lock()
	defer t.Unlock()
	out := make([]Summary_t, 0, len(t.slots))
	for i := range t.slots {
		p := &t.slots[i]
		if p.Status != Free {
			out = append(out, Summary_t{ID: p.ID, ParentID: p.ParentID, Status: p.Status, Accnt: p.Accnt.Snapshot()})
		}
	}
	return out
}
