package circbuf

import (
	"testing"

	"rvkernel/defs"
)

func TestRingBufferFullEmpty(t *testing.T) {
	rb := NewRingBuffer[int](4)
	if !rb.IsEmpty() {
		t.Fatal("fresh ring buffer should be empty")
	}
	for i := 0; i < 3; i++ {
		if err := rb.Enqueue(i); err != 0 {
			t.Fatalf("Enqueue(%d) = %v, want success", i, err)
		}
	}
	if !rb.IsFull() {
		t.Fatal("buffer of capacity 4 should be full after 3 enqueues")
	}
	if err := rb.Enqueue(99); err != defs.EQueueIsFull {
		t.Fatalf("Enqueue on full buffer = %v, want EQueueIsFull", err)
	}
	for i := 0; i < 3; i++ {
		v, err := rb.Dequeue()
		if err != 0 {
			t.Fatalf("Dequeue() = %v, want success", err)
		}
		if v != i {
			t.Fatalf("Dequeue() = %d, want %d (FIFO order)", v, i)
		}
	}
	if !rb.IsEmpty() {
		t.Fatal("buffer should be empty after draining")
	}
	if _, err := rb.Dequeue(); err != defs.EQueueIsEmpty {
		t.Fatalf("Dequeue on empty buffer = %v, want EQueueIsEmpty", err)
	}
}

func TestRingBufferWraps(t *testing.T) {
	rb := NewRingBuffer[int](3)
	for round := 0; round < 5; round++ {
		if err := rb.Enqueue(round); err != 0 {
			t.Fatalf("round %d: Enqueue failed: %v", round, err)
		}
		v, err := rb.Dequeue()
		if err != 0 || v != round {
			t.Fatalf("round %d: Dequeue() = (%d, %v), want (%d, nil)", round, v, err, round)
		}
	}
}

func TestMailboxOrdering(t *testing.T) {
	mb := NewMailbox(4)
	if err := mb.Send(1, 10); err != 0 {
		t.Fatalf("Send failed: %v", err)
	}
	if err := mb.Send(2, 20); err != 0 {
		t.Fatalf("Send failed: %v", err)
	}
	sender, data, err := mb.Receive()
	if err != 0 || sender != 1 || data != 10 {
		t.Fatalf("Receive() = (%d, %d, %v), want (1, 10, nil)", sender, data, err)
	}
	sender, data, err = mb.Receive()
	if err != 0 || sender != 2 || data != 20 {
		t.Fatalf("Receive() = (%d, %d, %v), want (2, 20, nil)", sender, data, err)
	}
	if _, _, err := mb.Receive(); err != defs.EQueueIsEmpty {
		t.Fatalf("Receive on empty mailbox = %v, want EQueueIsEmpty", err)
	}
}
