// Package syscall decodes trap frames into typed syscall variants and
// dispatches each to its per-call logic (spec §4.6), grounded on
// original_source/kernel/src/syscall.rs's Syscall enum and
// syscall_dispatch match.
package syscall

import "rvkernel/trap"

// Syscall numbers, stable across kernel and user code (spec §6). Exact
// values are implementation-defined; the ordering follows the table in
// spec §4.6.
const (
	SysUartWrite  uint32 = 1
	SysUartRead   uint32 = 2
	SysExit       uint32 = 3
	SysGetProcID  uint32 = 4
	SysYield      uint32 = 5
	SysFork       uint32 = 6
	SysExecve     uint32 = 7
	SysProcStatus uint32 = 8
	SysSend       uint32 = 9
	SysReceive    uint32 = 10
	SysMmap       uint32 = 11
	SysAlloc      uint32 = 12
	SysFree       uint32 = 13
)

/// Kind is the decoded syscall variant's tag.
type Kind int

const (
	KindInvalid Kind = iota
	KindUartWrite
	KindUartRead
	KindExit
	KindGetProcID
	KindYield
	KindFork
	KindExecve
	KindProcStatus
	KindSend
	KindReceive
	KindMmap
	KindAlloc
	KindFree
)

/// Syscall_t is a trap frame decoded into a tagged variant with its
/// register arguments (spec §9: "model them as tagged unions").
type Syscall_t struct {
	Kind           Kind
	A1, A2, A3, A4, A5 uint32
}

/// FromTrapFrame decodes tf's a0..a5 registers into a Syscall_t.
func FromTrapFrame(tf *trap.TrapFrame_t) Syscall_t {
	s := Syscall_t{
		A1: tf.Regs.A1(),
		A2: tf.Regs.A2(),
		A3: tf.Regs.A3(),
		A4: tf.Regs.A4(),
		A5: tf.Regs.A5(),
	}
	switch tf.Regs.A0() {
	case SysUartWrite:
		s.Kind = KindUartWrite
	case SysUartRead:
		s.Kind = KindUartRead
	case SysExit:
		s.Kind = KindExit
	case SysGetProcID:
		s.Kind = KindGetProcID
	case SysYield:
		s.Kind = KindYield
	case SysFork:
		s.Kind = KindFork
	case SysExecve:
		s.Kind = KindExecve
	case SysProcStatus:
		s.Kind = KindProcStatus
	case SysSend:
		s.Kind = KindSend
	case SysReceive:
		s.Kind = KindReceive
	case SysMmap:
		s.Kind = KindMmap
	case SysAlloc:
		s.Kind = KindAlloc
	case SysFree:
		s.Kind = KindFree
	default:
		s.Kind = KindInvalid
	}
	return s
}
