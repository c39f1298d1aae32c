// Package files resolves a user-program name to its byte image, the
// toy in-memory "filesystem" spec §1 calls a collaborator rather than
// core scope. Grounded on original_source/src/files.rs's
// MemoryDirectory/search, adapted from Rust's linker-embedded symbols to
// Go's embed.FS (cmd/fsgen keeps bin/ in sync with built user binaries).
package files

import (
	"embed"

	"rvkernel/defs"
)

//go:embed bin/*
var images embed.FS

/// Source resolves names to embedded program images.
type Source struct {
	fs  embed.FS
	dir string
}

/// NewSource returns the default source backed by the kernel's own
/// embedded bin/ directory.
func NewSource() *Source {
	return &Source{fs: images, dir: "bin"}
}

/// Search returns the named image's bytes, or ENotFound.
func (s *Source) Search(name string) ([]byte, defs.Err_t) {
	data, err := s.fs.ReadFile(s.dir + "/" + name)
	if err != nil {
		return nil, defs.ENotFound
	}
	return data, 0
}
