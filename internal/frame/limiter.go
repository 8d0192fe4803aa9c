// Package frame paces the demo loop.
package frame

import (
	"context"
	"time"
)

// Limiter caps the frame rate.
type Limiter struct {
	limit int
	next  time.Time
	count uint64
}

// NewLimiter creates a limiter for limit frames per second. A limit of zero
// or less disables pacing.
func NewLimiter(limit int) *Limiter {
	return &Limiter{limit: limit}
}

// Frame returns the number of completed Wait calls.
func (f *Limiter) Frame() uint64 { return f.count }

// Wait blocks until the next frame is due or ctx is done. It sleeps most of
// the interval and spins for the last few hundred microseconds.
func (f *Limiter) Wait(ctx context.Context) error {
	f.count++
	if f.limit <= 0 {
		f.next = time.Time{}
		return ctx.Err()
	}

	target := time.Second / time.Duration(f.limit)
	if f.next.IsZero() {
		f.next = time.Now().Add(target)
	} else {
		f.next = f.next.Add(target)
	}

	for {
		remaining := time.Until(f.next)
		if remaining <= 0 {
			break
		}
		if remaining > 200*time.Microsecond {
			t := time.NewTimer(remaining - 200*time.Microsecond)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}
		if time.Until(f.next) <= 0 {
			break
		}
	}

	// late by more than a frame: resync instead of bursting to catch up
	if late := -time.Until(f.next); late > target {
		f.next = time.Now().Add(target)
	}
	return ctx.Err()
}
