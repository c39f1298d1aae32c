package defs

import "fmt"

/// Err_t is the kernel-wide error code: zero means success, a negative
/// value names a failure from the taxonomy below. Syscall dispatch maps
/// every Err_t to the small-negative-integer convention returned in a0.
type Err_t int

const (
	/// Memory subsystem.
	EFailedToAllocMemory Err_t = -1
	EPageIsNotMapped     Err_t = -2
	EAlreadyMapped       Err_t = -3
	EIllegalAddress      Err_t = -4
	EInvalidAlignment    Err_t = -5

	/// Process subsystem.
	EFailedToCreateProcess Err_t = -6
	ENoSuchProcess         Err_t = -7

	/// IPC / mailbox.
	EQueueIsEmpty Err_t = -8
	EQueueIsFull  Err_t = -9

	/// Syscall dispatch.
	EInvalidSyscallNumber Err_t = -10
	EInvalidArguments     Err_t = -11
	ETooManyProcess       Err_t = -12
	ENoMemorySpace        Err_t = -13
	EIllegalFile          Err_t = -14
	ENotFound             Err_t = -15
	EPermissionDenied     Err_t = -16
	EInternalError        Err_t = -17

	/// ProgramError marks a kernel-internal invariant violation. Callers
	/// that receive it should panic rather than propagate it to a syscall
	/// return value.
	EProgramError Err_t = -18
)

var names = map[Err_t]string{
	EFailedToAllocMemory:   "failed to allocate memory",
	EPageIsNotMapped:       "page is not mapped",
	EAlreadyMapped:         "page already mapped",
	EIllegalAddress:        "illegal address",
	EInvalidAlignment:      "invalid alignment",
	EFailedToCreateProcess: "failed to create process",
	ENoSuchProcess:         "no such process",
	EQueueIsEmpty:          "queue is empty",
	EQueueIsFull:           "queue is full",
	EInvalidSyscallNumber:  "invalid syscall number",
	EInvalidArguments:      "invalid arguments",
	ETooManyProcess:        "too many processes",
	ENoMemorySpace:         "no memory space",
	EIllegalFile:           "illegal file",
	ENotFound:              "not found",
	EPermissionDenied:      "permission denied",
	EInternalError:         "internal error",
	EProgramError:          "program error (bug)",
}

/// Error satisfies the standard error interface so Err_t can be used
/// anywhere Go idiom expects one (tests, host-side tools), while kernel
/// code keeps comparing it directly against the constants above.
func (e Err_t) Error() string {
	if s, ok := names[e]; ok {
		return s
	}
	return fmt.Sprintf("err_t(%d)", int(e))
}

/// Ok reports whether e represents success.
func (e Err_t) Ok() bool { return e == 0 }
