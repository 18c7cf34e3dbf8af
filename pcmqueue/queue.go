// Package pcmqueue provides a mutex-guarded byte FIFO for staging raw PCM
// between capture and playback paths. A recorder callback pushes captured
// buffers; a player callback pops them back out in the same order.
package pcmqueue

import "sync"

// Queue is an unbounded FIFO of PCM bytes. All methods are safe for
// concurrent use, including from audio callbacks.
type Queue struct {
	mu  sync.Mutex
	buf []byte
}

func New() *Queue {
	return &Queue{}
}

// Push appends a copy of p to the tail of the queue.
func (q *Queue) Push(p []byte) {
	if len(p) == 0 {
		return
	}
	q.mu.Lock()
	q.buf = append(q.buf, p...)
	q.mu.Unlock()
}

// Pop removes and returns up to n bytes from the head of the queue. It
// returns nil when the queue is empty or n is not positive.
func (q *Queue) Pop(n int) []byte {
	q.mu.Lock()
	defer q.mu.Unlock()

	if n <= 0 || len(q.buf) == 0 {
		return nil
	}
	if n > len(q.buf) {
		n = len(q.buf)
	}
	out := make([]byte, n)
	copy(out, q.buf)
	q.buf = q.buf[n:]
	return out
}

// PopAll removes and returns everything queued, or nil when empty.
func (q *Queue) PopAll() []byte {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.buf) == 0 {
		return nil
	}
	out := make([]byte, len(q.buf))
	copy(out, q.buf)
	q.buf = q.buf[:0]
	return out
}

// PopInto removes up to len(dst) bytes from the head of the queue into
// dst and returns the number of bytes copied. It does not allocate, which
// makes it suitable for player callbacks.
func (q *Queue) PopInto(dst []byte) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := copy(dst, q.buf)
	q.buf = q.buf[n:]
	return n
}

// Len returns the number of bytes currently queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}
