package gostreams

import "sync/atomic"

// innerHost is the coordinator-side surface an inner slot reports its
// nested stream's signals to.
type innerHost[U any] interface {
	innerNext(inner *innerSubscriber[U], elem U)
	innerError(inner *innerSubscriber[U], err error)
	innerComplete(inner *innerSubscriber[U])
}

// innerSubscriber bridges one nested stream's push signals into a buffered,
// pull-style view for the drain loop. It requests prefetch elements up
// front, and one more per element the drain loop consumes, keeping a steady
// look-ahead window of size prefetch.
type innerSubscriber[U any] struct {
	host     innerHost[U]
	buffer   *ringQueue[U]
	prefetch uint64
	upstream subscriptionSlot
	done     atomic.Bool
}

func newInnerSubscriber[U any](host innerHost[U], prefetch int) *innerSubscriber[U] {
	return &innerSubscriber[U]{
		host:     host,
		buffer:   newRingQueue[U](prefetch),
		prefetch: uint64(prefetch),
	}
}

// OnSubscribe implements Subscriber.
func (s *innerSubscriber[U]) OnSubscribe(sub Subscription) {
	if s.upstream.set(sub) {
		sub.Request(s.prefetch)
	}
}

// OnNext implements Subscriber.
func (s *innerSubscriber[U]) OnNext(elem U) {
	s.host.innerNext(s, elem)
}

// OnError implements Subscriber.
func (s *innerSubscriber[U]) OnError(err error) {
	s.host.innerError(s, err)
}

// OnComplete implements Subscriber.
func (s *innerSubscriber[U]) OnComplete() {
	s.host.innerComplete(s)
}

// setDone marks the nested stream finished. Buffered elements may remain.
func (s *innerSubscriber[U]) setDone() {
	s.done.Store(true)
}

// isDone returns true once the nested stream has completed or failed.
func (s *innerSubscriber[U]) isDone() bool {
	return s.done.Load()
}

// requestOne replenishes the nested producer's credit for one consumed
// element.
func (s *innerSubscriber[U]) requestOne() {
	s.upstream.request(1)
}

// cancel stops the nested producer. Buffered elements are discarded when
// the slot is dropped.
func (s *innerSubscriber[U]) cancel() {
	s.upstream.cancel()
}
