package gostreams

import "context"

// Each subscribes to prod with unbounded credit and calls each for every
// element, blocking until the stream terminates. It returns the stream's
// terminal error, if any. If ctx is done first, it cancels the subscription
// and returns the cause of the cancelation.
func Each[T any](ctx context.Context, prod PublisherFunc[T], each func(elem T)) error {
	s := &eachSubscriber[T]{
		each:       each,
		terminated: make(chan struct{}),
	}

	prod(s)

	select {
	case <-s.terminated:
		return s.err

	case <-ctx.Done():
		s.upstream.cancel()
		return context.Cause(ctx)
	}
}

// Collect subscribes to prod with unbounded credit and collects all elements
// into a slice, blocking until the stream terminates. If the stream fails,
// it returns the elements received so far, and the terminal error. If ctx is
// done before the stream terminates, the returned slice is undefined.
func Collect[T any](ctx context.Context, prod PublisherFunc[T]) ([]T, error) {
	result := []T{}

	err := Each(ctx, prod, func(elem T) {
		result = append(result, elem)
	})

	return result, err
}

// eachSubscriber consumes a stream to exhaustion under unbounded credit.
type eachSubscriber[T any] struct {
	each     func(elem T)
	upstream subscriptionSlot

	// err is written before terminated is closed, never after.
	err        error
	terminated chan struct{}
}

// OnSubscribe implements Subscriber.
func (s *eachSubscriber[T]) OnSubscribe(sub Subscription) {
	if s.upstream.set(sub) {
		sub.Request(Unbounded)
	}
}

// OnNext implements Subscriber.
func (s *eachSubscriber[T]) OnNext(elem T) {
	s.each(elem)
}

// OnError implements Subscriber.
func (s *eachSubscriber[T]) OnError(err error) {
	s.err = err
	close(s.terminated)
}

// OnComplete implements Subscriber.
func (s *eachSubscriber[T]) OnComplete() {
	close(s.terminated)
}
