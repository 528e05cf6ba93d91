package fetch

import (
	"context"
	"sync"
	"time"

	"animix/internal/metrics"
)

// Limiter is a sliding-window admission controller for outbound calls to
// the rate-limited upstream. The window state is shared process-wide: the
// limiter is constructed once and injected into every fetch call site.
type Limiter struct {
	mu         sync.Mutex
	limit      int
	window     time.Duration
	enabled    bool
	timestamps []time.Time

	// injectable for tests
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Admission describes one granted slot, including how long the caller
// waited for it. Forwarded to clients as response headers.
type Admission struct {
	Wait   time.Duration
	Used   int
	Limit  int
	Window time.Duration
}

// Snapshot is the externally visible rate-limit state.
type Snapshot struct {
	Enabled   bool  `json:"enabled"`
	Used      int   `json:"used"`
	Limit     int   `json:"limit"`
	WindowMS  int64 `json:"windowMs"`
	ResetAt   int64 `json:"resetAt"`
	ResetInMS int64 `json:"resetInMs"`
}

// NewLimiter creates a limiter admitting at most limit calls per window.
func NewLimiter(limit int, window time.Duration, enabled bool) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  window,
		enabled: enabled,
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

// Enabled reports whether admission control applies at all.
func (l *Limiter) Enabled() bool { return l.enabled }

// Acquire blocks until an admission slot is free, then records it.
// A non-positive limit disables admission entirely.
//
// The wait is a loop, not a single computed sleep: after sleeping we
// re-check the window, so bursts drain FIFO as old admissions expire.
func (l *Limiter) Acquire(ctx context.Context) (Admission, error) {
	if l.limit <= 0 {
		return Admission{Limit: l.limit, Window: l.window}, nil
	}

	var waited time.Duration
	for {
		l.mu.Lock()
		now := l.now()
		l.prune(now)
		if len(l.timestamps) < l.limit {
			l.timestamps = append(l.timestamps, now)
			used := len(l.timestamps)
			l.mu.Unlock()
			metrics.RateLimitUsed.Set(float64(used))
			metrics.RateLimitWaitSeconds.Observe(waited.Seconds())
			return Admission{
				Wait:   waited,
				Used:   used,
				Limit:  l.limit,
				Window: l.window,
			}, nil
		}
		oldest := l.timestamps[0]
		l.mu.Unlock()

		wait := l.window - now.Sub(oldest) + 5*time.Millisecond
		if wait < 50*time.Millisecond {
			wait = 50 * time.Millisecond
		}
		if err := l.sleep(ctx, wait); err != nil {
			return Admission{}, err
		}
		waited += wait
	}
}

// Snapshot returns the current window usage without admitting anything.
func (l *Limiter) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	used := len(l.timestamps)
	resetIn := l.window
	if used > 0 {
		resetIn = l.window - now.Sub(l.timestamps[0])
		if resetIn < 0 {
			resetIn = 0
		}
	}
	return Snapshot{
		Enabled:   l.enabled,
		Used:      used,
		Limit:     l.limit,
		WindowMS:  l.window.Milliseconds(),
		ResetAt:   now.Add(resetIn).UnixMilli(),
		ResetInMS: resetIn.Milliseconds(),
	}
}

// prune drops timestamps older than the window. Callers hold the lock.
func (l *Limiter) prune(now time.Time) {
	cut := 0
	for cut < len(l.timestamps) && now.Sub(l.timestamps[cut]) >= l.window {
		cut++
	}
	if cut > 0 {
		l.timestamps = append(l.timestamps[:0], l.timestamps[cut:]...)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
