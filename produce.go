package gostreams

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Publish returns a publisher that produces the elements of the given
// slices, in order, respecting the subscriber's granted credit. Elements are
// emitted on whichever goroutine grants the credit; no goroutine is started.
func Publish[T any](slices ...[]T) PublisherFunc[T] {
	return func(sub Subscriber[T]) {
		sub.OnSubscribe(&sliceSubscription[T]{
			id:     uuid.New(),
			sub:    sub,
			slices: slices,
		})
	}
}

// sliceSubscription emits slice elements under the subscriber's credit. The
// emit loop is guarded by a work counter, so a Request issued from within
// OnNext continues the running loop instead of recursing.
type sliceSubscription[T any] struct {
	id  uuid.UUID
	sub Subscriber[T]

	// slices, slice and index are only touched by the active emit loop.
	slices [][]T
	slice  int
	index  int

	requested credit
	wip       atomic.Int64
	cancelled atomic.Bool
}

// Request implements Subscription.
func (s *sliceSubscription[T]) Request(n uint64) {
	if n == 0 {
		reportFallback(s.id, errNonPositiveRequest)
		return
	}

	s.requested.add(n)
	s.emit()
}

// Cancel implements Subscription.
func (s *sliceSubscription[T]) Cancel() {
	s.cancelled.Store(true)
}

func (s *sliceSubscription[T]) emit() {
	if s.wip.Add(1) != 1 {
		return
	}

	missed := int64(1)

	for {
		r := s.requested.get()
		emitted := uint64(0)

		for emitted != r {
			if s.cancelled.Load() {
				return
			}

			elem, ok := s.next()
			if !ok {
				s.sub.OnComplete()
				return
			}

			s.sub.OnNext(elem)

			emitted++
		}

		if s.cancelled.Load() {
			return
		}

		if !s.hasNext() {
			s.sub.OnComplete()
			return
		}

		if emitted != 0 && r != Unbounded {
			s.requested.produced(emitted)
		}

		missed = s.wip.Add(-missed)
		if missed == 0 {
			return
		}
	}
}

func (s *sliceSubscription[T]) next() (T, bool) {
	var zero T

	if !s.hasNext() {
		return zero, false
	}

	elem := s.slices[s.slice][s.index]
	s.index++

	return elem, true
}

func (s *sliceSubscription[T]) hasNext() bool {
	for s.slice < len(s.slices) && s.index >= len(s.slices[s.slice]) {
		s.slice++
		s.index = 0
	}

	return s.slice < len(s.slices)
}

// PublishChannel returns a publisher that produces the elements received
// through the given channels, in order. It starts one pump goroutine per
// subscriber, which waits for credit before receiving, and stops once all
// channels are closed or the subscription is cancelled.
func PublishChannel[T any](channels ...<-chan T) PublisherFunc[T] {
	return func(sub Subscriber[T]) {
		p := &channelSubscription[T]{
			id:   uuid.New(),
			sub:  sub,
			wake: make(chan struct{}, 1),
			halt: make(chan struct{}),
		}

		sub.OnSubscribe(p)

		go p.pump(channels)
	}
}

type channelSubscription[T any] struct {
	id  uuid.UUID
	sub Subscriber[T]

	requested credit
	wake      chan struct{}
	halt      chan struct{}
	cancelled atomic.Bool
}

// Request implements Subscription.
func (p *channelSubscription[T]) Request(n uint64) {
	if n == 0 {
		reportFallback(p.id, errNonPositiveRequest)
		return
	}

	p.requested.add(n)

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Cancel implements Subscription.
func (p *channelSubscription[T]) Cancel() {
	if !p.cancelled.Swap(true) {
		close(p.halt)
	}
}

func (p *channelSubscription[T]) pump(channels []<-chan T) {
	for _, ch := range channels {
		for {
			for p.requested.get() == 0 {
				select {
				case <-p.wake:

				case <-p.halt:
					return
				}
			}

			var elem T
			var ok bool

			select {
			case elem, ok = <-ch:

			case <-p.halt:
				return
			}

			if !ok {
				break
			}

			p.sub.OnNext(elem)

			p.requested.produced(1)
		}
	}

	if !p.cancelled.Load() {
		p.sub.OnComplete()
	}
}

// emptySubscription is the subscription of a publisher that only ever
// delivers a terminal signal.
type emptySubscription struct{}

// Request implements Subscription.
func (emptySubscription) Request(uint64) {}

// Cancel implements Subscription.
func (emptySubscription) Cancel() {}

// PublishError returns a publisher that produces no elements and fails
// with err.
func PublishError[T any](err error) PublisherFunc[T] {
	return func(sub Subscriber[T]) {
		sub.OnSubscribe(emptySubscription{})
		sub.OnError(err)
	}
}

// PublishEmpty returns a publisher that produces no elements and completes
// immediately.
func PublishEmpty[T any]() PublisherFunc[T] {
	return func(sub Subscriber[T]) {
		sub.OnSubscribe(emptySubscription{})
		sub.OnComplete()
	}
}
