package elfload

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/Masterminds/semver/v3"

	"rvkernel/defs"
)

// buildELF32 hand-assembles a minimal valid 32-bit little-endian RISC-V
// ET_EXEC image with a single PT_LOAD segment, exercising Parse without
// depending on any real toolchain output.
func buildELF32(t *testing.T, entry uint32, segData []byte, memSize uint32) []byte {
	t.Helper()
	const ehdrSize = 52
	const phdrSize = 32

	var buf bytes.Buffer

	ident := make([]byte, 16)
	ident[0], ident[1], ident[2], ident[3] = 0x7f, 'E', 'L', 'F'
	ident[4] = 1 // ELFCLASS32
	ident[5] = 1 // ELFDATA2LSB
	ident[6] = 1 // EV_CURRENT
	buf.Write(ident)

	write16 := func(v uint16) { binary.Write(&buf, binary.LittleEndian, v) }
	write32 := func(v uint32) { binary.Write(&buf, binary.LittleEndian, v) }

	write16(2)      // e_type = ET_EXEC
	write16(243)    // e_machine = EM_RISCV
	write32(1)      // e_version
	write32(entry)  // e_entry
	write32(ehdrSize) // e_phoff
	write32(0)      // e_shoff
	write32(0)      // e_flags
	write16(ehdrSize)
	write16(phdrSize)
	write16(1) // e_phnum
	write16(0) // e_shentsize
	write16(0) // e_shnum
	write16(0) // e_shstrndx

	dataOffset := uint32(ehdrSize + phdrSize)
	write32(1)                   // p_type = PT_LOAD
	write32(dataOffset)          // p_offset
	write32(entry)               // p_vaddr
	write32(entry)               // p_paddr
	write32(uint32(len(segData))) // p_filesz
	write32(memSize)             // p_memsz
	write32(5)                   // p_flags = R|X
	write32(4096)                // p_align

	buf.Write(segData)
	return buf.Bytes()
}

func TestParseValidImage(t *testing.T) {
	raw := buildELF32(t, 0x80400000, []byte{0x01, 0x02, 0x03, 0x04}, 4096)
	img, err := Parse(raw)
	if err != 0 {
		t.Fatalf("Parse failed: %v", err)
	}
	if img.Entry != 0x80400000 {
		t.Fatalf("Entry = 0x%x, want 0x80400000", img.Entry)
	}
	if len(img.Segments) != 1 {
		t.Fatalf("Segments = %d, want 1", len(img.Segments))
	}
	seg := img.Segments[0]
	if seg.MemSize != 4096 {
		t.Fatalf("MemSize = %d, want 4096", seg.MemSize)
	}
	if !bytes.Equal(seg.Data, []byte{0x01, 0x02, 0x03, 0x04}) {
		t.Fatalf("Data = %v, want {1,2,3,4}", seg.Data)
	}
	if img.ABI != DefaultABI {
		t.Fatalf("ABI = %q, want default %q", img.ABI, DefaultABI)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse([]byte("not an elf")); err != defs.EIllegalFile {
		t.Fatalf("Parse(garbage) = %v, want EIllegalFile", err)
	}
}

func TestCheckABIRange(t *testing.T) {
	img := &Image{ABI: "1.0.0"}
	constraint, cerr := semver.NewConstraint("^1.0.0")
	if cerr != nil {
		t.Fatalf("NewConstraint failed: %v", cerr)
	}
	if err := CheckABI(img, constraint); err != 0 {
		t.Fatalf("CheckABI(1.0.0 in ^1.0.0) = %v, want success", err)
	}
	img.ABI = "2.0.0"
	if err := CheckABI(img, constraint); err == 0 {
		t.Fatal("CheckABI(2.0.0 against ^1.0.0) should fail")
	}
}
