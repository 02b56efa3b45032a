package gostreams

import (
	"errors"
	"sync/atomic"
)

// errTerminated marks an errorCell whose composite has already been
// delivered as a terminal signal.
var errTerminated = errors.New("stream terminated")

// errorCell aggregates failures from multiple concurrent sources into one
// composite error, delivered at most once. After terminate, further add
// calls fail and the caller must route the error to the fallback reporter.
type errorCell struct {
	err atomic.Pointer[error]
}

// add merges err into the cell's composite. It returns false if the cell
// has been sealed by terminate.
func (c *errorCell) add(err error) bool {
	for {
		cur := c.err.Load()
		if cur == &errTerminated {
			return false
		}

		next := err
		if cur != nil {
			next = errors.Join(*cur, err)
		}

		if c.err.CompareAndSwap(cur, &next) {
			return true
		}
	}
}

// get returns the composite so far, or nil. It does not seal the cell.
func (c *errorCell) get() error {
	cur := c.err.Load()
	if cur == nil || cur == &errTerminated {
		return nil
	}

	return *cur
}

// terminate seals the cell and returns the composite so far, or nil.
// Sealing is permanent; at most one caller ever receives the composite.
func (c *errorCell) terminate() error {
	for {
		cur := c.err.Load()
		if cur == &errTerminated {
			return nil
		}

		if c.err.CompareAndSwap(cur, &errTerminated) {
			if cur == nil {
				return nil
			}
			return *cur
		}
	}
}
