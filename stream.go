package gostreams

import (
	"math"
	"sync/atomic"
)

// Unbounded is the credit value that removes the emission limit entirely.
// Adding credit to an unbounded counter keeps it unbounded.
const Unbounded uint64 = math.MaxUint64

// PublisherFunc subscribes sub to a stream of elements.
//
// A publisher must deliver signals to sub serially: OnSubscribe exactly once
// and first, then any number of OnNext calls, then at most one OnError or
// OnComplete. It must not emit more elements than sub has requested, and must
// stop signaling once it has observed a cancellation.
type PublisherFunc[T any] func(sub Subscriber[T])

// Subscriber receives the signals of a push-based stream.
type Subscriber[T any] interface {
	// OnSubscribe hands the subscriber the subscription controlling the
	// stream's flow. No elements arrive before the subscriber grants credit.
	OnSubscribe(sub Subscription)

	// OnNext delivers the next element.
	OnNext(elem T)

	// OnError terminates the stream with err. No further signals follow.
	OnError(err error)

	// OnComplete terminates the stream normally. No further signals follow.
	OnComplete()
}

// Subscription controls the flow of elements from a producer to a subscriber.
type Subscription interface {
	// Request grants the producer credit to emit up to n more elements.
	// Passing Unbounded removes the limit. n must be positive.
	Request(n uint64)

	// Cancel terminates the stream. It is idempotent, and safe to call
	// concurrently with the producer's signals.
	Cancel()
}

// cancelledSubscription is the sticky terminal state of a subscriptionSlot.
type cancelledSubscription struct{}

func (cancelledSubscription) Request(uint64) {}

func (cancelledSubscription) Cancel() {}

var subscriptionCancelled Subscription = cancelledSubscription{}

// subscriptionSlot holds a stream's upstream subscription. The subscription
// is set at most once, and the slot can be cancelled from any goroutine,
// before or after it is set.
type subscriptionSlot struct {
	sub atomic.Pointer[Subscription]
}

// set stores sub. It returns false if the slot was already set or cancelled,
// in which case sub is cancelled instead.
func (s *subscriptionSlot) set(sub Subscription) bool {
	if s.sub.CompareAndSwap(nil, &sub) {
		return true
	}

	sub.Cancel()

	return false
}

// request forwards credit to the subscription. Credit requested before the
// subscription is set, or after the slot is cancelled, is dropped.
func (s *subscriptionSlot) request(n uint64) {
	if p := s.sub.Load(); p != nil {
		(*p).Request(n)
	}
}

// cancel cancels the subscription, now or as soon as it is set.
func (s *subscriptionSlot) cancel() {
	p := s.sub.Load()
	if p != nil && *p == subscriptionCancelled {
		return
	}

	old := s.sub.Swap(&subscriptionCancelled)
	if old != nil && *old != subscriptionCancelled {
		(*old).Cancel()
	}
}
