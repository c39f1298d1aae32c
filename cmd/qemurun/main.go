// Command qemurun launches qemu-system-riscv32 against a built kernel
// image, the host-side counterpart of the teacher's own bochs/qemu
// launch scripts (biscuit kept these as shell, not Go; this one is Go so
// it can set Pdeathsig and reap qemu cleanly when the harness driving it
// exits or is killed).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

func main() {
	kernel := flag.String("kernel", "", "path to the kernel ELF image")
	machine := flag.String("machine", "virt", "qemu -M machine type")
	mem := flag.String("mem", "128M", "qemu -m memory size")
	extra := flag.String("qemu-args", "", "extra arguments appended verbatim to the qemu command line")
	flag.Parse()

	if *kernel == "" {
		fmt.Fprintln(os.Stderr, "qemurun: -kernel is required")
		os.Exit(2)
	}

	args := []string{
		"-M", *machine,
		"-m", *mem,
		"-nographic",
		"-bios", "none",
		"-kernel", *kernel,
	}
	if *extra != "" {
		args = append(args, *extra)
	}

	cmd := exec.Command("qemu-system-riscv32", args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	// Pdeathsig ensures qemu is killed if this process dies first, the
	// same guarantee biscuit's launch tooling got for free from a shell
	// trap but Go must ask the kernel for explicitly via SysProcAttr.
	cmd.SysProcAttr = &syscall.SysProcAttr{Pdeathsig: syscall.Signal(unix.SIGKILL)}

	if err := cmd.Run(); err != nil {
		log.Fatalf("qemurun: %v", err)
	}
}
