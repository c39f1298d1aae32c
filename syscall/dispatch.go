package syscall

import (
	"encoding/binary"

	"github.com/Masterminds/semver/v3"

	"rvkernel/console"
	"rvkernel/defs"
	"rvkernel/elfload"
	"rvkernel/files"
	"rvkernel/limits"
	"rvkernel/mem"
	"rvkernel/proc"
	"rvkernel/trap"
	"rvkernel/util"
	"rvkernel/vm"
)

// abiConstraint is the range of user-binary ABI versions this kernel's
// syscall table accepts (spec §9 supplement: EXECVE rejects a binary
// built against an incompatible ABI rather than faulting unpredictably
// partway through a syscall).
var abiConstraint, _ = semver.NewConstraint("^" + elfload.DefaultABI)

/// Env bundles everything a syscall implementation needs to reach: the
/// shared process table, physical memory and allocator, the console and
/// file source, and the process that made the call.
type Env struct {
	Table   *proc.ProcessTable_t
	Memory  *mem.Memory_t
	Alloc   *mem.Allocator_t
	Console console.Device
	Files   *files.Source
	Current *proc.Process_t
}

/// Dispatch decodes tf's syscall and runs it, writing the result into
/// tf.Regs.A0 per the ABI in spec §6 ("a0 ≥ 0 on success, small negative
/// integer on error"). EXIT is the one call that does not return a
/// result into a dead process's register file.
func Dispatch(env *Env, tf *trap.TrapFrame_t) {
	call := FromTrapFrame(tf)
	var ret int32
	switch call.Kind {
	case KindUartWrite:
		ret = uartWrite(env, call)
	case KindUartRead:
		ret = uartRead(env, call)
	case KindExit:
		env.Current.Exit(int32(call.A1))
		return
	case KindGetProcID:
		ret = int32(env.Current.ID)
	case KindYield:
		env.Current.Status = proc.Runnable
		ret = 0
	case KindFork:
		ret = fork(env)
	case KindExecve:
		ret = execve(env, call)
	case KindProcStatus:
		ret = procStatus(env, call)
	case KindSend:
		ret = send(env, call)
	case KindReceive:
		ret = receive(env, call)
	case KindMmap:
		ret = mmap(env, call)
	case KindAlloc:
		ret = allocCall(env, call)
	case KindFree:
		ret = freeCall(env, call)
	default:
		ret = int32(defs.EInvalidSyscallNumber)
	}
	tf.Regs.SetA0(uint32(ret))
}

func uartWrite(env *Env, call Syscall_t) int32 {
	data, err := vm.CopyFromUser(env.Current.Mapper, mem.VirtAddr(call.A1), call.A2)
	if err != 0 {
		return int32(err)
	}
	for _, b := range data {
		env.Console.WriteByte(b)
	}
	return int32(len(data))
}

func uartRead(env *Env, call Syscall_t) int32 {
	n := call.A2
	buf := make([]byte, 0, n)
	for uint32(len(buf)) < n {
		b, ok := env.Console.ReadByte()
		if !ok {
			break
		}
		buf = append(buf, b)
	}
	if err := vm.CopyToUser(env.Current.Mapper, mem.VirtAddr(call.A1), buf); err != 0 {
		return int32(err)
	}
	return int32(len(buf))
}

func fork(env *Env) int32 {
	child, err := env.Table.Alloc()
	if err != 0 {
		return int32(err)
	}
	if err := child.Create(env.Current.Mapper, env.Memory, env.Alloc); err != 0 {
		return int32(err)
	}
	if err := env.Current.Mapper.CreateCowUserMemory(child.Mapper); err != 0 {
		return int32(err)
	}
	child.TrapFrame = env.Current.TrapFrame
	child.TrapFrame.Regs.SetA0(0)
	child.ParentID = env.Current.ID
	child.Status = proc.Runnable
	return int32(child.ID)
}

func execve(env *Env, call Syscall_t) int32 {
	name, err := vm.CopyFromUser(env.Current.Mapper, mem.VirtAddr(call.A1), call.A2)
	if err != 0 {
		return int32(err)
	}
	data, ferr := env.Files.Search(string(name))
	if ferr != 0 {
		return int32(ferr)
	}
	img, ierr := elfload.Parse(data)
	if ierr != 0 {
		return int32(ierr)
	}
	if aerr := elfload.CheckABI(img, abiConstraint); aerr != 0 {
		return int32(aerr)
	}
	if lerr := env.Current.LoadELF(img, mem.UserAddressSpaceTop, uint32(limits.Limits.UserStackSize)); lerr != 0 {
		return int32(lerr)
	}
	return 0
}

func procStatus(env *Env, call Syscall_t) int32 {
	target, err := env.Table.ID2Proc(call.A1)
	if err != 0 {
		return int32(err)
	}
	if target.ParentID != env.Current.ID {
		return int32(defs.EInvalidArguments)
	}
	return int32(target.Status)
}

func send(env *Env, call Syscall_t) int32 {
	target, err := env.Table.ID2Proc(call.A1)
	if err != 0 {
		return int32(err)
	}
	if serr := target.EnqueueMessage(env.Current.ID, call.A2); serr != 0 {
		return int32(serr)
	}
	return 0
}

func receive(env *Env, call Syscall_t) int32 {
	sender, data, err := env.Current.DequeueMessage()
	if err != 0 {
		return int32(err)
	}
	if call.A1 != 0 {
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], data)
		if werr := vm.CopyToUser(env.Current.Mapper, mem.VirtAddr(call.A1), buf[:]); werr != 0 {
			return int32(werr)
		}
	}
	return int32(sender)
}

func mmap(env *Env, call Syscall_t) int32 {
	src, err := env.Table.ID2Proc(call.A1)
	if err != 0 {
		return int32(err)
	}
	dst, err2 := env.Table.ID2Proc(call.A3)
	if err2 != 0 {
		return int32(err2)
	}
	srcVA := mem.VirtAddr(call.A2)
	dstVA := mem.VirtAddr(call.A4)
	perm := mem.Flag_t(call.A5)
	if !srcVA.Aligned() || !dstVA.Aligned() {
		return int32(defs.EInvalidAlignment)
	}
	if !src.Mapper.CheckPerm(srcVA, perm) {
		return int32(defs.EPermissionDenied)
	}
	frame, _, terr := src.Mapper.Translate(srcVA)
	if terr != 0 {
		return int32(terr)
	}
	env.Alloc.Retain(frame)
	if merr := dst.Mapper.Map(dstVA, frame, perm|mem.FlagUser|mem.FlagValid); merr != 0 {
		return int32(merr)
	}
	return 0
}

func allocCall(env *Env, call Syscall_t) int32 {
	size := util.Roundup(call.A2, uint32(mem.PageSize))
	va := mem.VirtAddr(call.A1)
	if va == 0 {
		va = env.Current.UserBrk
		env.Current.UserBrk += mem.VirtAddr(size)
	}
	perm := mem.Flag_t(call.A3) | mem.FlagValid | mem.FlagUser
	if err := env.Current.RegionAlloc(va, size, perm); err != 0 {
		return int32(err)
	}
	return int32(va)
}

// freeCall resolves the spec §9 open question left unimplemented by the
// source: FREE unmaps every page in the range and decrements each
// frame's allocator refcount, returning it to the free stack only once
// no mapping (including a CoW sibling) still references it.
func freeCall(env *Env, call Syscall_t) int32 {
	size := util.Roundup(call.A2, uint32(mem.PageSize))
	va := mem.VirtAddr(call.A1)
	for off := uint32(0); off < size; off += uint32(mem.PageSize) {
		page := va + mem.VirtAddr(off)
		frame, _, terr := env.Current.Mapper.Translate(page)
		if terr != 0 {
			continue
		}
		env.Current.Mapper.Unmap(page)
		env.Alloc.Dealloc(frame)
	}
	return 0
}
