package vm

import (
	"rvkernel/defs"
	"rvkernel/mem"
)

/// CopyFromUser copies n bytes starting at the user virtual address va
/// out of the given address space, crossing page boundaries as needed.
/// Every touched page must be present and readable or the copy fails
/// with EIllegalAddress, mirroring the teacher's Userdmap8_inner fault
/// check in biscuit/src/vm/as.go.
func CopyFromUser(m *Mapper_t, va mem.VirtAddr, n uint32) ([]byte, defs.Err_t) {
	out := make([]byte, 0, n)
	for n > 0 {
		frame, flags, err := m.Translate(va)
		if err != 0 || flags&mem.FlagRead == 0 {
			return nil, defs.EIllegalAddress
		}
		off := va.Offset()
		chunk := uint32(mem.PageSize) - off
		if chunk > n {
			chunk = n
		}
		page := m.Memory.Bytes(frame)
		out = append(out, page[off:off+chunk]...)
		va += mem.VirtAddr(chunk)
		n -= chunk
	}
	return out, 0
}

/// CopyToUser writes data into the user address space starting at va.
/// Every touched page must be present and writable.
func CopyToUser(m *Mapper_t, va mem.VirtAddr, data []byte) defs.Err_t {
	for len(data) > 0 {
		frame, flags, err := m.Translate(va)
		if err != 0 || flags&mem.FlagWrite == 0 {
			return defs.EIllegalAddress
		}
		off := va.Offset()
		chunk := uint32(mem.PageSize) - off
		if chunk > uint32(len(data)) {
			chunk = uint32(len(data))
		}
		page := m.Memory.Bytes(frame)
		copy(page[off:off+chunk], data[:chunk])
		va += mem.VirtAddr(chunk)
		data = data[chunk:]
	}
	return 0
}
