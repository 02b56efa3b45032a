// Package gostreams provides an order-preserving, eagerly-concurrent
// flat-mapping operator for push-based streams under credit-based flow control.
//
// Streams are push-based: a PublisherFunc delivers elements to a Subscriber,
// but only up to the credit the subscriber has granted through its
// Subscription. A subscriber grants credit with Request, and terminates the
// stream with Cancel. A producer never emits more elements than granted,
// never signals after observing a cancellation, and delivers at most one
// terminal signal (error or completion).
//
// ConcatMapEager maps each element of an outer stream to a nested stream,
// subscribes to up to WithMaxConcurrency nested streams at once so that their
// production overlaps, and produces their elements downstream strictly in the
// order the outer elements arrived. Elements of nested stream k+1 are never
// produced before the last element of nested stream k, no matter which nested
// stream produces first.
//
// Failures from the outer stream, any nested stream, or the mapper are
// aggregated and surfaced according to WithErrorMode. An error that arrives
// after the terminal signal has already been delivered cannot be signaled
// anymore; it is passed to a process-wide fallback handler instead, which can
// be replaced with SetFallbackErrorHandler.
//
// Publish, PublishChannel, PublishError and PublishEmpty construct publishers
// from slices, channels, and terminal signals. Each and Collect consume a
// stream to exhaustion.
package gostreams
