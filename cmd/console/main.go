// Command console attaches the local terminal to a running kernel's UART
// over a TCP socket (the transport qemu's "-serial tcp:host:port" exposes),
// putting the terminal into raw mode so individual keystrokes reach
// UART_READ without line buffering or local echo getting in the way —
// the same raw-mode contract the teacher's own interactive tools expect
// from a real serial console.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"

	"golang.org/x/term"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:4444", "address of the kernel's serial socket")
	flag.Parse()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		log.Fatalf("console: dial %s: %v", *addr, err)
	}
	defer conn.Close()

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			log.Fatalf("console: MakeRaw: %v", err)
		}
		defer term.Restore(fd, oldState)
	}

	fmt.Fprintf(os.Stderr, "connected to %s (ctrl-] to quit)\r\n", *addr)

	done := make(chan struct{})
	go func() {
		io.Copy(os.Stdout, conn)
		close(done)
	}()

	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		if buf[0] == 0x1d { // ctrl-]
			return
		}
		if _, err := conn.Write(buf[:n]); err != nil {
			return
		}
		select {
		case <-done:
			return
		default:
		}
	}
}
