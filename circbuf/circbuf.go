// Package circbuf implements the kernel's bounded ring buffer (spec
// §4.7), generalized from the teacher's Circbuf_t — which backed a
// single daemon's page-sized byte stream — into a small fixed-capacity
// FIFO over any value type, used here as each process's mailbox of
// (sender_id, data) pairs (spec §3, §4.4).
package circbuf

import (
	"sync"

	"rvkernel/defs"
)

/// RingBuffer_t is a fixed-capacity FIFO with one slot sacrificed to
/// distinguish empty from full (spec §3: "full iff next(in) == out").
type RingBuffer_t[T any] struct {
	sync.Mutex
	buf []T
	in  int
	out int
}

/// NewRingBuffer returns a ring buffer able to hold capacity-1 live
/// elements.
func NewRingBuffer[T any](capacity int) *RingBuffer_t[T] {
	if capacity < 2 {
		panic("circbuf: capacity must be at least 2")
	}
	return &RingBuffer_t[T]{buf: make([]T, capacity)}
}

func (r *RingBuffer_t[T]) next(i int) int {
	i++
	if i == len(r.buf) {
		return 0
	}
	return i
}

/// IsEmpty reports whether the buffer holds no elements.
func (r *RingBuffer_t[T]) IsEmpty() bool {
	r.Lock()
	defer r.Unlock()
	return r.in == r.out
}

/// IsFull reports whether the buffer cannot accept another Enqueue.
func (r *RingBuffer_t[T]) IsFull() bool {
	r.Lock()
	defer r.Unlock()
	return r.next(r.in) == r.out
}

/// Len returns the number of live elements.
func (r *RingBuffer_t[T]) Len() int {
	r.Lock()
	defer r.Unlock()
	return r._len()
}

func (r *RingBuffer_t[T]) _len() int {
	if r.in >= r.out {
		return r.in - r.out
	}
	return len(r.buf) - r.out + r.in
}

/// Enqueue appends v, returning EQueueIsFull if the buffer has no room.
func (r *RingBuffer_t[T]) Enqueue(v T) defs.Err_t {
	r.Lock()
	defer r.Unlock()
	if r.next(r.in) == r.out {
		return defs.EQueueIsFull
	}
	r.buf[r.in] = v
	r.in = r.next(r.in)
	return 0
}

/// Dequeue removes and returns the oldest element, or EQueueIsEmpty.
func (r *RingBuffer_t[T]) Dequeue() (T, defs.Err_t) {
	r.Lock()
	defer r.Unlock()
	var zero T
	if r.in == r.out {
		return zero, defs.EQueueIsEmpty
	}
	v := r.buf[r.out]
	r.buf[r.out] = zero
	r.out = r.next(r.out)
	return v, 0
}

/// Message_t is one mailbox entry: the sending process's id and a single
/// word of data (spec §3: "bounded FIFO of (sender_id, u32 data) pairs").
type Message_t struct {
	SenderID uint32
	Data     uint32
}

/// Mailbox_t is a process's inbox, a RingBuffer_t specialized to
/// Message_t.
type Mailbox_t struct {
	*RingBuffer_t[Message_t]
}

/// NewMailbox returns an empty mailbox of the given capacity.
func NewMailbox(capacity int) *Mailbox_t {
	return &Mailbox_t{RingBuffer_t: NewRingBuffer[Message_t](capacity)}
}

/// Send enqueues a message from sender.
func (mb *Mailbox_t) Send(sender uint32, data uint32) defs.Err_t {
	return mb.Enqueue(Message_t{SenderID: sender, Data: data})
}

/// Receive dequeues the oldest message, reporting its sender and data.
func (mb *Mailbox_t) Receive() (sender uint32, data uint32, err defs.Err_t) {
	m, err := mb.Dequeue()
	return m.SenderID, m.Data, err
}
