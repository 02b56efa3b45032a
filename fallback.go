package gostreams

import (
	"os"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// FallbackErrorHandler receives errors that have no live terminal signal to
// carry them, such as failures arriving after a stream has already
// terminated, or usage errors like a non-positive Request. stream identifies
// the subscription the error belongs to.
type FallbackErrorHandler func(stream uuid.UUID, err error)

var fallbackHandler atomic.Pointer[FallbackErrorHandler]

func init() {
	SetFallbackErrorHandler(nil)
}

// SetFallbackErrorHandler replaces the process-wide sink for errors that
// cannot be delivered through a stream anymore. Passing nil restores the
// default handler, which logs the error and continues.
func SetFallbackErrorHandler(handler FallbackErrorHandler) {
	if handler == nil {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

		handler = func(stream uuid.UUID, err error) {
			logger.Error().Stringer("stream", stream).Err(err).Msg("orphaned stream error")
		}
	}

	fallbackHandler.Store(&handler)
}

// reportFallback routes err to the process-wide fallback handler.
func reportFallback(stream uuid.UUID, err error) {
	(*fallbackHandler.Load())(stream, err)
}
