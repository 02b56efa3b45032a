package gostreams

import "sync/atomic"

// credit is a saturating, non-negative counter of downstream-granted
// emission credit. It is safe for concurrent additions racing against
// subtractions. Once it reaches Unbounded it stays Unbounded.
type credit struct {
	n atomic.Uint64
}

// add increases the counter by n, saturating at Unbounded, and returns the
// new value.
func (c *credit) add(n uint64) uint64 {
	for {
		cur := c.n.Load()
		if cur == Unbounded {
			return Unbounded
		}

		next := cur + n
		if next < cur {
			// overflow
			next = Unbounded
		}

		if c.n.CompareAndSwap(cur, next) {
			return next
		}
	}
}

// produced decreases the counter by n emitted elements, never underflowing
// below zero, and returns the new value. An Unbounded counter is unchanged.
func (c *credit) produced(n uint64) uint64 {
	for {
		cur := c.n.Load()
		if cur == Unbounded {
			return Unbounded
		}

		next := uint64(0)
		if cur > n {
			next = cur - n
		}

		if c.n.CompareAndSwap(cur, next) {
			return next
		}
	}
}

// get returns the current counter value.
func (c *credit) get() uint64 {
	return c.n.Load()
}
