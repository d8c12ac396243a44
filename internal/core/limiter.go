package core

// limiter.go bounds how many document analyses run at once.
//
// Sniffing, schema inference and ingest hold whole documents in memory, so
// the HTTP layer acquires a slot before reading a body. When every slot is
// taken a request waits up to maxWait, then fails with ErrTooManyAnalyses.
// WaitForDrain lets shutdown wait for in-flight work.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManyAnalyses is returned when no analysis slot frees up in time.
var ErrTooManyAnalyses = errors.New("too many concurrent analyses, please try again later")

// DefaultMaxConcurrentAnalyses is the default slot count.
const DefaultMaxConcurrentAnalyses = 8

// DefaultMaxWaitTime is how long Acquire waits for a slot.
const DefaultMaxWaitTime = 10 * time.Second

// AnalysisLimiter is a counting semaphore over document analyses.
type AnalysisLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int64
	total   atomic.Int64
	reject  atomic.Int64
}

// NewAnalysisLimiter allows at most maxConcurrent analyses; callers wait at
// most maxWait for a slot.
func NewAnalysisLimiter(maxConcurrent int, maxWait time.Duration) *AnalysisLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentAnalyses
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &AnalysisLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot. The caller must Release it (use defer).
func (l *AnalysisLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		l.total.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		l.reject.Add(1)
		return ErrTooManyAnalyses
	}
}

// TryAcquire takes a slot without waiting.
func (l *AnalysisLimiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		l.total.Add(1)
		return true
	default:
		return false
	}
}

// Release returns a slot taken by Acquire or TryAcquire.
func (l *AnalysisLimiter) Release() {
	l.active.Add(-1)
	<-l.slots
}

// ActiveCount returns the number of analyses in flight.
func (l *AnalysisLimiter) ActiveCount() int {
	return int(l.active.Load())
}

// MaxConcurrent returns the slot count.
func (l *AnalysisLimiter) MaxConcurrent() int {
	return cap(l.slots)
}

// Available returns the number of free slots.
func (l *AnalysisLimiter) Available() int {
	return cap(l.slots) - len(l.slots)
}

// WaitForDrain blocks until no analysis is active or ctx is done.
func (l *AnalysisLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for l.ActiveCount() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// LimiterStatus is a snapshot for health checks.
type LimiterStatus struct {
	Active        int   `json:"active"`
	Available     int   `json:"available"`
	MaxConcurrent int   `json:"max_concurrent"`
	Accepted      int64 `json:"accepted_total"`
	Rejected      int64 `json:"rejected_total"`
}

// Status returns the current limiter state.
func (l *AnalysisLimiter) Status() LimiterStatus {
	return LimiterStatus{
		Active:        l.ActiveCount(),
		Available:     l.Available(),
		MaxConcurrent: cap(l.slots),
		Accepted:      l.total.Load(),
		Rejected:      l.reject.Load(),
	}
}
