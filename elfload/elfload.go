// Package elfload parses the 32-bit little-endian ELF images the
// process runtime loads (spec §4.4, §6), grounded on the teacher's own
// use of the standard library's debug/elf in
// biscuit/src/kernel/chentry.go rather than a hand-rolled header parser.
package elfload

import (
	"bytes"
	"debug/elf"
	"io"
	"regexp"

	"github.com/Masterminds/semver/v3"

	"rvkernel/defs"
)

// Program-header flag bits, named independently of debug/elf's own
// elf.ProgFlag so callers outside this package don't need to import
// debug/elf themselves.
const (
	PFExec  = uint32(elf.PF_X)
	PFWrite = uint32(elf.PF_W)
	PFRead  = uint32(elf.PF_R)
)

/// Segment is one PT_LOAD program header's image: the virtual address
/// range to map and the file bytes to copy into its front ([0, FileSize)
/// of MemSize, the rest zero-filled per spec §4.4).
type Segment struct {
	VirtAddr uint32
	MemSize  uint32
	FileSize uint32
	Flags    uint32
	Data     []byte
}

/// Image is a parsed, ready-to-load ELF executable.
type Image struct {
	Entry    uint32
	Segments []Segment
	/// ABI is the kernel-ABI version note embedded in the binary, or the
	/// kernel's own default when the binary carries none.
	ABI string
}

/// DefaultABI is used for binaries built without an explicit ABI note.
const DefaultABI = "1.0.0"

var abiNote = regexp.MustCompile(`\d+\.\d+\.\d+`)

/// Parse validates the ELF header (32-bit, little-endian, executable,
/// RISC-V) and extracts every PT_LOAD segment plus an optional ABI note
/// from a PT_NOTE segment.
func Parse(raw []byte) (*Image, defs.Err_t) {
	f, err := elf.NewFile(bytes.NewReader(raw))
	if err != nil {
		return nil, defs.EIllegalFile
	}
	if f.Class != elf.ELFCLASS32 || f.Data != elf.ELFDATA2LSB {
		return nil, defs.EIllegalFile
	}
	if f.Type != elf.ET_EXEC {
		return nil, defs.EIllegalFile
	}
	if f.Machine != elf.EM_RISCV {
		return nil, defs.EIllegalFile
	}

	img := &Image{Entry: uint32(f.Entry), ABI: DefaultABI}
	for _, prog := range f.Progs {
		switch prog.Type {
		case elf.PT_LOAD:
			data := make([]byte, prog.Filesz)
			if _, err := io.ReadFull(prog.Open(), data); err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
				return nil, defs.EIllegalFile
			}
			img.Segments = append(img.Segments, Segment{
				VirtAddr: uint32(prog.Vaddr),
				MemSize:  uint32(prog.Memsz),
				FileSize: uint32(prog.Filesz),
				Flags:    uint32(prog.Flags),
				Data:     data,
			})
		case elf.PT_NOTE:
			note := make([]byte, prog.Filesz)
			if _, err := io.ReadFull(prog.Open(), note); err == nil {
				if m := abiNote.Find(note); m != nil {
					img.ABI = string(m)
				}
			}
		}
	}
	if len(img.Segments) == 0 {
		return nil, defs.EIllegalFile
	}
	return img, 0
}

/// CheckABI validates img's ABI note against the kernel's supported
/// syscall-ABI range, so a binary built against an incompatible syscall
/// table is rejected at EXECVE rather than faulting unpredictably later.
func CheckABI(img *Image, constraint *semver.Constraints) defs.Err_t {
	v, err := semver.NewVersion(img.ABI)
	if err != nil {
		return defs.EIllegalFile
	}
	if !constraint.Check(v) {
		return defs.EIllegalFile
	}
	return 0
}
