// Package stat formats the diagnostic snapshot exposed on the D_STAT
// device. The teacher's Stat_t (biscuit/src/stat/stat.go) packed Unix
// file metadata (dev, ino, mode, rdev, blocks) for a real filesystem;
// this kernel has no on-disk filesystem in scope (spec §1 Non-goals), so
// Stat_t is repurposed here as a per-process diagnostic record rather
// than overloading PROC_STATUS's syscall contract (spec §4.6), which
// already reports a single process's status word to its parent.
package stat

import "fmt"

/// Stat_t is one process's diagnostic snapshot.
type Stat_t struct {
	ID       uint32
	ParentID uint32
	Status   string
	Userns   int64
	Sysns    int64
}

/// String renders a single human-readable line, the format the console
/// driver writes to D_STAT.
func (s Stat_t) String() string {
	return fmt.Sprintf("pid=%d ppid=%d status=%s user=%dns sys=%dns",
		s.ID, s.ParentID, s.Status, s.Userns, s.Sysns)
}
