package gostreams

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// FlatMapperFunc maps element elem to a nested stream of elements of type U.
// It may fail with an error instead of producing a stream.
type FlatMapperFunc[T any, U any] func(elem T) (PublisherFunc[U], error)

// ConcatMapEager returns a publisher that maps each element produced by prod
// to a nested stream, subscribes to up to WithMaxConcurrency nested streams
// at once, and produces their elements downstream strictly in the order the
// outer elements arrived. Nested streams are subscribed to eagerly, so their
// production overlaps, but elements of nested stream k+1 are never produced
// before the last element of nested stream k.
//
// Each nested stream buffers up to WithPrefetch elements ahead of its turn.
// Failures are aggregated and surfaced according to WithErrorMode.
//
// ConcatMapEager starts no goroutines; all work runs on whichever goroutine
// delivers a signal.
func ConcatMapEager[T any, U any](prod PublisherFunc[T], mapp FlatMapperFunc[T, U], opts ...Option) PublisherFunc[U] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.maxConcurrency < 1 {
		panic("gostreams: max concurrency must be at least 1")
	}
	if cfg.prefetch < 1 {
		panic("gostreams: prefetch must be at least 1")
	}

	return func(sub Subscriber[U]) {
		prod(&concatMapEager[T, U]{
			actual:  sub,
			mapp:    mapp,
			cfg:     cfg,
			id:      uuid.New(),
			pending: newLinkedQueue[*innerSubscriber[U]](),
		})
	}
}

// concatMapEager coordinates the outer stream, up to maxConcurrency inner
// slots, and the downstream subscriber. It is the outer stream's subscriber
// and the downstream's subscription at once. All downstream signals are
// produced by drain, which runs on at most one goroutine at a time.
type concatMapEager[T any, U any] struct {
	actual Subscriber[U]
	mapp   FlatMapperFunc[T, U]
	cfg    config
	id     uuid.UUID

	// pending holds the inner slots awaiting their turn, in outer arrival
	// order. Only the drain worker polls it.
	pending *linkedQueue[*innerSubscriber[U]]

	// current is the one slot being drained, nil between slots. Written
	// only under the drain guard.
	current atomic.Pointer[innerSubscriber[U]]

	requested credit
	errs      errorCell
	upstream  subscriptionSlot

	cancelled atomic.Bool
	done      atomic.Bool

	// wip serializes drain: the caller that raises it from zero drains
	// until it falls back to zero, every other caller just raises it.
	wip atomic.Int64
}

// OnSubscribe implements Subscriber. It signals readiness downstream, then
// eagerly requests maxConcurrency outer elements so that as many nested
// streams start producing at once.
func (c *concatMapEager[T, U]) OnSubscribe(sub Subscription) {
	if !c.upstream.set(sub) {
		return
	}

	c.actual.OnSubscribe(c)

	c.upstream.request(c.cfg.maxConcurrency)
}

// OnNext implements Subscriber. It maps the outer element to a nested
// stream, enqueues a new slot for it, and subscribes the slot eagerly.
func (c *concatMapEager[T, U]) OnNext(elem T) {
	nested, err := c.mapp(elem)
	if err == nil && nested == nil {
		err = errNilNestedStream
	}
	if err != nil {
		c.upstream.cancel()
		c.OnError(&MapperError[T]{Element: elem, Err: err})
		return
	}

	inner := newInnerSubscriber[U](c, c.cfg.prefetch)

	if c.cancelled.Load() {
		return
	}

	c.pending.offer(inner)

	if c.cancelled.Load() {
		return
	}

	nested(inner)

	if c.cancelled.Load() {
		inner.cancel()
		c.drainAndCancel()
	}
}

// OnError implements Subscriber.
func (c *concatMapEager[T, U]) OnError(err error) {
	if !c.errs.add(err) {
		reportFallback(c.id, err)
		return
	}

	c.done.Store(true)
	c.drain()
}

// OnComplete implements Subscriber.
func (c *concatMapEager[T, U]) OnComplete() {
	c.done.Store(true)
	c.drain()
}

// Request implements Subscription.
func (c *concatMapEager[T, U]) Request(n uint64) {
	if n == 0 {
		reportFallback(c.id, errNonPositiveRequest)
		return
	}

	c.requested.add(n)
	c.drain()
}

// Cancel implements Subscription. It is idempotent: it stops the outer
// stream and sweeps every outstanding slot.
func (c *concatMapEager[T, U]) Cancel() {
	if c.cancelled.Swap(true) {
		return
	}

	c.upstream.cancel()

	c.drainAndCancel()
}

// drainAndCancel sweeps the slots under the drain guard, so that the sweep
// never races an active drain pass.
func (c *concatMapEager[T, U]) drainAndCancel() {
	if c.wip.Add(1) != 1 {
		return
	}

	for {
		c.cancelAll()

		if c.wip.Add(-1) == 0 {
			return
		}
	}
}

// cancelAll cancels the current slot and every pending slot. It must only
// run under the drain guard.
func (c *concatMapEager[T, U]) cancelAll() {
	if inner := c.current.Swap(nil); inner != nil {
		inner.cancel()
	}

	for {
		inner, ok := c.pending.poll()
		if !ok {
			return
		}

		inner.cancel()
	}
}

// innerNext implements innerHost. A full buffer means the nested producer
// exceeded its granted credit.
func (c *concatMapEager[T, U]) innerNext(inner *innerSubscriber[U], elem U) {
	if !inner.buffer.offer(elem) {
		inner.cancel()
		c.innerError(inner, ErrBufferOverflow)
		return
	}

	c.drain()
}

// innerError implements innerHost. Unless failures are delayed to the end,
// the outer stream is cancelled so that no new outer elements are admitted;
// slots already admitted keep draining.
func (c *concatMapEager[T, U]) innerError(inner *innerSubscriber[U], err error) {
	if !c.errs.add(err) {
		reportFallback(c.id, err)
		return
	}

	inner.setDone()

	if c.cfg.errorMode != ErrorModeEnd {
		c.upstream.cancel()
	}

	c.drain()
}

// innerComplete implements innerHost.
func (c *concatMapEager[T, U]) innerComplete(inner *innerSubscriber[U]) {
	inner.setDone()
	c.drain()
}

// drain is the serialized emission loop. Any caller that finds it already
// running raises wip and returns; the active pass keeps looping until wip
// falls back to zero, so no wake-up is missed and exactly one goroutine
// emits downstream. Terminal paths return without lowering wip, which keeps
// every later signal out.
func (c *concatMapEager[T, U]) drain() {
	if c.wip.Add(1) != 1 {
		return
	}

	missed := int64(1)
	inner := c.current.Load()
	r := c.requested.get()
	emitted := uint64(0)

	for {
		if inner == nil {
			if c.cfg.errorMode != ErrorModeEnd {
				if c.errs.get() != nil {
					c.cancelAll()

					c.actual.OnError(c.errs.terminate())
					return
				}
			}

			outerDone := c.done.Load()

			inner, _ = c.pending.poll()

			if outerDone && inner == nil {
				if err := c.errs.terminate(); err != nil {
					c.actual.OnError(err)
				} else {
					c.actual.OnComplete()
				}
				return
			}

			if inner != nil {
				c.current.Store(inner)
			}
		}

		if inner != nil {
			exhausted := false

			for emitted != r {
				if c.cancelled.Load() {
					c.cancelAll()
					return
				}

				if c.cfg.errorMode == ErrorModeImmediate {
					if c.errs.get() != nil {
						c.current.Store(nil)
						inner.cancel()
						c.cancelAll()

						c.actual.OnError(c.errs.terminate())
						return
					}
				}

				done := inner.isDone()

				elem, ok := inner.buffer.poll()

				if done && !ok {
					// slot exhausted: admit one more outer element and
					// move on to the next slot within the same pass
					inner = nil
					c.current.Store(nil)
					c.upstream.request(1)
					exhausted = true
					break
				}

				if !ok {
					// wait for the nested producer
					break
				}

				c.actual.OnNext(elem)

				emitted++

				inner.requestOne()
			}

			if exhausted {
				continue
			}

			if inner != nil && emitted == r {
				if c.cancelled.Load() {
					c.cancelAll()
					return
				}

				if c.cfg.errorMode == ErrorModeImmediate {
					if c.errs.get() != nil {
						c.current.Store(nil)
						inner.cancel()
						c.cancelAll()

						c.actual.OnError(c.errs.terminate())
						return
					}
				}

				// re-check exhaustion so a fully drained slot is not left
				// stuck as current when credit ran out on its last element
				if inner.isDone() && inner.buffer.isEmpty() {
					inner = nil
					c.current.Store(nil)
					c.upstream.request(1)
					continue
				}
			}
		}

		if emitted != 0 && r != Unbounded {
			r = c.requested.produced(emitted)
			emitted = 0
		}

		missed = c.wip.Add(-missed)
		if missed == 0 {
			return
		}

		// a request may have arrived during this pass; snapshot the credit
		// again before the next one
		r = c.requested.get()
	}
}
