// Package trap decodes and routes RISC-V supervisor traps (spec §4.5).
//
// The teacher's hand-written x86-64 entry/exit assembly (there is no
// Go GOARCH for bare-metal riscv32) has no direct analogue we can ship
// through the Go toolchain; the register-frame save/restore and cause
// decode described in spec §4.5 are instead modeled as plain Go types
// and functions driven by a trap frame a real entry stub would have
// built. A production build would pair this package with a short
// hand-written assembly stub (csrrw sp,sscratch,sp; push 128 bytes;
// call into TrapFrame-based Go code) exactly as the spec's "Trap entry
// (assembly)" section describes; see DESIGN.md for why that stub is
// not included here.
package trap

import "fmt"

/// NumIntRegs is the number of general-purpose integer registers saved
/// in a trap frame.
const NumIntRegs = 32

/// Register_t holds the 32 integer registers and 32 (unused placeholder)
/// floating-point registers captured by a trap.
type Register_t struct {
	Int   [NumIntRegs]uint32
	Float [NumIntRegs]uint32
}

// RISC-V calling-convention accessors used by syscall argument decode.
func (r *Register_t) A0() uint32 { return r.Int[10] }
func (r *Register_t) A1() uint32 { return r.Int[11] }
func (r *Register_t) A2() uint32 { return r.Int[12] }
func (r *Register_t) A3() uint32 { return r.Int[13] }
func (r *Register_t) A4() uint32 { return r.Int[14] }
func (r *Register_t) A5() uint32 { return r.Int[15] }

/// SetA0 writes the syscall return value register.
func (r *Register_t) SetA0(v uint32) { r.Int[10] = v }

/// TrapFrame_t is the saved CPU context across a trap (spec §6: "32
/// integer registers, 32 reserved FP slots, plus pc and sp").
type TrapFrame_t struct {
	PC   uint32
	SP   uint32
	Regs Register_t
}

/// Interruption_t enumerates the asynchronous trap causes (scause with
/// the interrupt bit set), numbered exactly as RISC-V privileged ISA
/// defines them.
type Interruption_t uint32

const (
	UserSoftware       Interruption_t = 0
	SupervisorSoftware Interruption_t = 1
	MachineSoftware    Interruption_t = 3
	UserTimer          Interruption_t = 4
	SupervisorTimer    Interruption_t = 5
	MachineTimer       Interruption_t = 7
	UserExternal       Interruption_t = 8
	SupervisorExternal Interruption_t = 9
	MachineExternal    Interruption_t = 11
)

/// Exception_t enumerates the synchronous trap causes.
type Exception_t uint32

const (
	InstructionAddressMisaligned Exception_t = 0
	InstructionAccessFault       Exception_t = 1
	IllegalInstruction           Exception_t = 2
	Breakpoint                   Exception_t = 3
	LoadAccessMisaligned         Exception_t = 4
	LoadAccessFault              Exception_t = 5
	StoreAddressMisaligned       Exception_t = 6
	StoreAccessFault             Exception_t = 7
	EnvironmentCallU             Exception_t = 8
	EnvironmentCallS             Exception_t = 9
	EnvironmentCallM             Exception_t = 11
	InstructionPageFault         Exception_t = 12
	LoadPageFault                Exception_t = 13
	StorePageFault               Exception_t = 15
)

/// Cause_t is the decoded form of scause: either an Interruption_t or an
/// Exception_t, modeled as a closed sum type per spec §9's note that
/// "Trap, Exception, Interruption ... are naturally closed sum types."
type Cause_t struct {
	IsInterrupt bool
	Interrupt   Interruption_t
	Exception   Exception_t
}

const interruptBit uint32 = 1 << 31

/// DecodeCause splits a raw scause value into a Cause_t.
func DecodeCause(scause uint32) Cause_t {
	if scause&interruptBit != 0 {
		return Cause_t{IsInterrupt: true, Interrupt: Interruption_t(scause &^ interruptBit)}
	}
	return Cause_t{Exception: Exception_t(scause)}
}

func (c Cause_t) String() string {
	if c.IsInterrupt {
		return fmt.Sprintf("interrupt(%d)", c.Interrupt)
	}
	return fmt.Sprintf("exception(%d)", c.Exception)
}
