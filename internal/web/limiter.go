package web

// limiter.go bounds the number of clean requests processed at once.
//
// Each request holds a slot for the whole run. When every slot is taken a
// request waits up to maxWait and then fails with ErrTooManyRequests, which
// maps to UPL003. WaitForDrain lets shutdown finish in-flight runs.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyRequests is returned when no slot frees up within the wait time.
var ErrTooManyRequests = errors.New("too many requests, please try again later")

const (
	defaultMaxConcurrent = 4
	defaultMaxWait       = 10 * time.Second
)

// Limiter is a counting semaphore for clean runs.
type Limiter struct {
	slots   chan struct{}
	maxWait time.Duration

	mu     sync.Mutex
	active int
	drain  chan struct{} // closed when active drops to zero
}

// NewLimiter allows at most maxConcurrent runs; non-positive values fall
// back to defaults.
func NewLimiter(maxConcurrent int, maxWait time.Duration) *Limiter {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	if maxWait <= 0 {
		maxWait = defaultMaxWait
	}
	return &Limiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting at most the configured time.
// The caller must Release a slot it acquired.
func (l *Limiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil
	case <-timer.C:
		return ErrTooManyRequests
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot.
func (l *Limiter) Release() {
	l.mu.Lock()
	l.active--
	if l.active == 0 && l.drain != nil {
		close(l.drain)
		l.drain = nil
	}
	l.mu.Unlock()

	<-l.slots
}

// Status is a snapshot of slot usage.
type Status struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status reports current slot usage.
func (l *Limiter) Status() Status {
	l.mu.Lock()
	active := l.active
	l.mu.Unlock()

	return Status{
		Active:        active,
		Available:     cap(l.slots) - active,
		MaxConcurrent: cap(l.slots),
	}
}

// WaitForDrain blocks until no run holds a slot or ctx is done.
func (l *Limiter) WaitForDrain(ctx context.Context) error {
	l.mu.Lock()
	if l.active == 0 {
		l.mu.Unlock()
		return nil
	}
	if l.drain == nil {
		l.drain = make(chan struct{})
	}
	done := l.drain
	l.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
