package gostreams

import "sync/atomic"

// ringQueue is a bounded single-producer, single-consumer FIFO queue.
// Capacity is rounded up to the next power of two. The producer and the
// consumer may run on different goroutines, but there must be at most one
// of each at any time.
type ringQueue[T any] struct {
	items []T
	mask  uint64

	// producerIndex and consumerIndex grow monotonically; the element count
	// is their difference.
	producerIndex atomic.Uint64
	consumerIndex atomic.Uint64
}

func newRingQueue[T any](capacity int) *ringQueue[T] {
	size := uint64(1)
	for size < uint64(capacity) {
		size <<= 1
	}

	return &ringQueue[T]{
		items: make([]T, size),
		mask:  size - 1,
	}
}

// offer appends elem, returning false if the queue is full.
func (q *ringQueue[T]) offer(elem T) bool {
	pi := q.producerIndex.Load()
	if pi-q.consumerIndex.Load() > q.mask {
		return false
	}

	q.items[pi&q.mask] = elem
	q.producerIndex.Store(pi + 1)

	return true
}

// poll removes and returns the oldest element, if any.
func (q *ringQueue[T]) poll() (T, bool) {
	var zero T

	ci := q.consumerIndex.Load()
	if ci == q.producerIndex.Load() {
		return zero, false
	}

	elem := q.items[ci&q.mask]
	q.items[ci&q.mask] = zero
	q.consumerIndex.Store(ci + 1)

	return elem, true
}

// isEmpty returns true if the queue holds no elements.
func (q *ringQueue[T]) isEmpty() bool {
	return q.consumerIndex.Load() == q.producerIndex.Load()
}

type linkedNode[T any] struct {
	elem T
	next atomic.Pointer[linkedNode[T]]
}

// linkedQueue is an unbounded single-producer, single-consumer FIFO queue of
// linked nodes. offer never fails.
type linkedQueue[T any] struct {
	// head is owned by the consumer and points at the last polled node;
	// tail is owned by the producer.
	head *linkedQueueNodeRef[T]
	tail *linkedNode[T]
}

// linkedQueueNodeRef wraps the consumer-side node pointer so that isEmpty,
// which may be called while the consumer advances, reads it atomically.
type linkedQueueNodeRef[T any] struct {
	node atomic.Pointer[linkedNode[T]]
}

func newLinkedQueue[T any]() *linkedQueue[T] {
	n := &linkedNode[T]{}

	q := &linkedQueue[T]{
		head: &linkedQueueNodeRef[T]{},
		tail: n,
	}
	q.head.node.Store(n)

	return q
}

// offer appends elem. It always succeeds.
func (q *linkedQueue[T]) offer(elem T) bool {
	n := &linkedNode[T]{elem: elem}

	q.tail.next.Store(n)
	q.tail = n

	return true
}

// poll removes and returns the oldest element, if any.
func (q *linkedQueue[T]) poll() (T, bool) {
	var zero T

	head := q.head.node.Load()

	n := head.next.Load()
	if n == nil {
		return zero, false
	}

	elem := n.elem
	n.elem = zero
	q.head.node.Store(n)

	return elem, true
}

// isEmpty returns true if the queue holds no elements.
func (q *linkedQueue[T]) isEmpty() bool {
	return q.head.node.Load().next.Load() == nil
}
