// Command fsgen keeps files/bin/ in sync with the user program sources it
// is built from, the Go-native replacement for the original
// linker-embedded files.rs symbol table (spec's files collaborator is
// expected to serve prebuilt images, not compile them on demand). It
// watches the source tree with fsnotify and re-links on every change, so
// files.Source.Search always returns an up-to-date image during
// development without a manual rebuild step.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

func main() {
	srcDir := flag.String("src", "userland", "directory of user program sources")
	outDir := flag.String("out", "files/bin", "directory fsgen writes linked images into")
	watch := flag.Bool("watch", false, "keep watching -src and relink on change")
	flag.Parse()

	if err := buildAll(*srcDir, *outDir); err != nil {
		log.Fatalf("fsgen: %v", err)
	}
	if !*watch {
		return
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		log.Fatalf("fsgen: %v", err)
	}
	defer w.Close()
	if err := w.Add(*srcDir); err != nil {
		log.Fatalf("fsgen: watch %s: %v", *srcDir, err)
	}

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			fmt.Printf("fsgen: %s changed, relinking\n", ev.Name)
			if err := buildAll(*srcDir, *outDir); err != nil {
				fmt.Fprintf(os.Stderr, "fsgen: rebuild failed: %v\n", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "fsgen: watcher error: %v\n", err)
		}
	}
}

// buildAll compiles every *.S/*.c program under srcDir with the riscv32
// cross toolchain (the same ABI version note elfload.CheckABI expects is
// expected to be baked in by the program's own link script) and copies
// the resulting ELF binaries into outDir, one file per program name.
func buildAll(srcDir, outDir string) error {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return fmt.Errorf("read %s: %w", srcDir, err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".S" && ext != ".c") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ext)
		src := filepath.Join(srcDir, e.Name())
		dst := filepath.Join(outDir, name+".bin")
		cmd := exec.Command("riscv32-unknown-elf-gcc", "-nostdlib", "-static", "-o", dst, src)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("link %s: %w", name, err)
		}
	}
	return nil
}
