// Package ring implements lock-free ring buffers used to hand market-data
// and execution events between producer and consumer goroutines without
// blocking. The SPSC variant is tuned for the single session-reader /
// single sequencer pairing each venue connection uses; the MPSC variant
// backs the shared queue multiple session readers feed into the
// sequencer thread.
//
// SPSC uses the classic head/tail ring buffer with one slot permanently
// reserved to tell full from empty apart: a ring of size capacity holds
// at most capacity-1 items. MPSC instead gives every slot its own
// sequence stamp, which lets concurrent producers claim a slot with a
// CAS instead of serializing on a shared head counter; both separate
// producer and consumer cursors onto distinct cache lines to avoid
// false sharing.
package ring

import "sync/atomic"

// cacheLinePad reserves space so the fields that follow it land on a
// fresh cache line from whatever precedes it.
type cacheLinePad [64]byte

// slot couples a sequence stamp with one buffered value.
type slot[T any] struct {
	seq uint64
	val T
}

// SPSC is a fixed-capacity ring buffer dedicated to one producer and one
// consumer goroutine. size must be a power of two; one slot is always
// kept empty to distinguish a full ring from an empty one, so at most
// size-1 items are ever buffered at once.
type SPSC[T any] struct {
	_    cacheLinePad
	head uint64 // next index the consumer will read
	_    cacheLinePad
	tail uint64 // next index the producer will write
	_    cacheLinePad
	mask uint64
	buf  []T
}

// NewSPSC allocates an SPSC ring of the given size, which must be a
// power of two. It panics otherwise so mask arithmetic stays valid.
func NewSPSC[T any](size int) *SPSC[T] {
	if size <= 0 || size&(size-1) != 0 {
		panic("ring: size must be >0 and a power of two")
	}
	return &SPSC[T]{
		mask: uint64(size - 1),
		buf:  make([]T, size),
	}
}

// Push enqueues v, returning false if the buffer is full (size-1 items
// already buffered).
func (r *SPSC[T]) Push(v T) bool {
	tail := atomic.LoadUint64(&r.tail)
	next := (tail + 1) & r.mask
	if next == atomic.LoadUint64(&r.head) {
		return false
	}
	r.buf[tail] = v
	atomic.StoreUint64(&r.tail, next)
	return true
}

// Pop dequeues one value. ok is false if the buffer was empty.
func (r *SPSC[T]) Pop() (v T, ok bool) {
	head := atomic.LoadUint64(&r.head)
	if head == atomic.LoadUint64(&r.tail) {
		return v, false
	}
	v = r.buf[head]
	atomic.StoreUint64(&r.head, (head+1)&r.mask)
	return v, true
}

// Len reports an instantaneous, possibly stale occupancy count. Safe to
// call from either side; intended for metrics, not control flow.
func (r *SPSC[T]) Len() int {
	tail := atomic.LoadUint64(&r.tail)
	head := atomic.LoadUint64(&r.head)
	return int((tail - head + uint64(len(r.buf))) & r.mask)
}

// MPSC is a fixed-capacity ring buffer supporting multiple concurrent
// producers and a single consumer. size must be a power of two.
type MPSC[T any] struct {
	_    cacheLinePad
	head uint64
	_    cacheLinePad
	tail uint64
	_    cacheLinePad
	mask uint64
	buf  []slot[T]
}

// NewMPSC allocates an MPSC ring of the given size, which must be a
// power of two.
func NewMPSC[T any](size int) *MPSC[T] {
	if size <= 0 || size&(size-1) != 0 {
		panic("ring: size must be >0 and a power of two")
	}
	r := &MPSC[T]{
		mask: uint64(size - 1),
		buf:  make([]slot[T], size),
	}
	for i := range r.buf {
		r.buf[i].seq = uint64(i)
	}
	return r
}

// Push enqueues v from any number of concurrent producer goroutines. It
// returns false if the buffer is full.
func (r *MPSC[T]) Push(v T) bool {
	for {
		t := atomic.LoadUint64(&r.tail)
		s := &r.buf[t&r.mask]
		seq := atomic.LoadUint64(&s.seq)
		diff := int64(seq) - int64(t)
		switch {
		case diff == 0:
			if atomic.CompareAndSwapUint64(&r.tail, t, t+1) {
				s.val = v
				atomic.StoreUint64(&s.seq, t+1)
				return true
			}
		case diff < 0:
			return false
		}
	}
}

// Pop dequeues one value on the single consumer goroutine. ok is false
// if the buffer was empty.
func (r *MPSC[T]) Pop() (v T, ok bool) {
	h := r.head
	s := &r.buf[h&r.mask]
	if atomic.LoadUint64(&s.seq) != h+1 {
		return v, false
	}
	v = s.val
	atomic.StoreUint64(&s.seq, h+uint64(len(r.buf)))
	r.head = h + 1
	return v, true
}

// PopWait busy-spins with runtime.Gosched back-off until a value is
// available.
func (r *MPSC[T]) PopWait() T {
	for {
		if v, ok := r.Pop(); ok {
			return v
		}
		gosched()
	}
}

// PopWait busy-spins with runtime.Gosched back-off until a value is
// available.
func (r *SPSC[T]) PopWait() T {
	for {
		if v, ok := r.Pop(); ok {
			return v
		}
		gosched()
	}
}
