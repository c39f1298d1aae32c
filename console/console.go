// Package console models the two-register UART described in spec §6.
// Real Sv32 hardware exposes RX/TX as fixed physical addresses in the
// identity-mapped IO region; this is a hosted Go kernel with no physical
// bus to poke, so UART_t backs those two registers with in-memory
// queues instead of unsafe.Pointer MMIO, the same substitution the
// teacher's own console driver makes between bare-metal and its fake
// console used under the Go race detector and in tests.
package console

import "sync"

// Fixed physical addresses of the two console registers (spec §6),
// identity-mapped with READ|WRITE|EXEC|VALID but no USER into every
// address space.
const (
	RxAddr uint32 = 0x80000000
	TxAddr uint32 = 0x80000004
)

/// Device is the byte-at-a-time console contract UART_WRITE/UART_READ
/// dispatch against.
type Device interface {
	ReadByte() (b byte, ok bool)
	WriteByte(b byte)
}

/// UART_t is the kernel's console device: bytes written by UART_WRITE
/// accumulate on Tx for a host harness to drain; bytes fed onto Rx by a
/// host harness are what UART_READ consumes.
type UART_t struct {
	mu sync.Mutex
	rx []byte
	tx []byte
}

/// NewUART returns an empty console.
func NewUART() *UART_t { return &UART_t{} }

/// ReadByte pops the oldest pending input byte, if any.
func (u *UART_t) ReadByte() (byte, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.rx) == 0 {
		return 0, false
	}
	b := u.rx[0]
	u.rx = u.rx[1:]
	return b, true
}

/// WriteByte appends b to the output queue.
func (u *UART_t) WriteByte(b byte) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.tx = append(u.tx, b)
}

/// Feed makes data available to the next ReadByte calls, standing in for
/// a human typing at a real serial terminal.
func (u *UART_t) Feed(data []byte) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.rx = append(u.rx, data...)
}

/// Drain returns and clears everything written so far.
func (u *UART_t) Drain() []byte {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := u.tx
	u.tx = nil
	return out
}
