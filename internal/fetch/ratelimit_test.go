package fetch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives a limiter deterministically: sleeps advance the clock
// instead of blocking.
type fakeClock struct {
	now     time.Time
	slept   []time.Duration
	limiter *Limiter
}

func newFakeClock(l *Limiter) *fakeClock {
	fc := &fakeClock{now: time.Unix(1_700_000_000, 0), limiter: l}
	l.now = func() time.Time { return fc.now }
	l.sleep = func(_ context.Context, d time.Duration) error {
		fc.slept = append(fc.slept, d)
		fc.now = fc.now.Add(d)
		return nil
	}
	return fc
}

func TestLimiterAdmitsUnderLimit(t *testing.T) {
	l := NewLimiter(3, time.Minute, true)
	fc := newFakeClock(l)

	for i := 1; i <= 3; i++ {
		adm, err := l.Acquire(context.Background())
		require.NoError(t, err)
		assert.Equal(t, time.Duration(0), adm.Wait)
		assert.Equal(t, i, adm.Used)
		assert.Equal(t, 3, adm.Limit)
	}
	assert.Empty(t, fc.slept)
}

func TestLimiterDelaysOverLimit(t *testing.T) {
	// three calls in a 1s window: the fourth waits roughly a full window
	l := NewLimiter(3, time.Second, true)
	fc := newFakeClock(l)

	for i := 0; i < 3; i++ {
		_, err := l.Acquire(context.Background())
		require.NoError(t, err)
	}

	adm, err := l.Acquire(context.Background())
	require.NoError(t, err)
	require.Len(t, fc.slept, 1)
	assert.Equal(t, time.Second+5*time.Millisecond, fc.slept[0])
	assert.Equal(t, adm.Wait, fc.slept[0])
	assert.Equal(t, 1, adm.Used)
}

func TestLimiterNoDelayWhenSpacedOut(t *testing.T) {
	l := NewLimiter(2, time.Second, true)
	fc := newFakeClock(l)

	for i := 0; i < 5; i++ {
		adm, err := l.Acquire(context.Background())
		require.NoError(t, err)
		assert.Equal(t, time.Duration(0), adm.Wait)
		fc.now = fc.now.Add(2 * time.Second)
	}
	assert.Empty(t, fc.slept)
}

func TestLimiterMinimumSleep(t *testing.T) {
	l := NewLimiter(1, 40*time.Millisecond, true)
	fc := newFakeClock(l)

	_, err := l.Acquire(context.Background())
	require.NoError(t, err)
	_, err = l.Acquire(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, fc.slept)
	assert.GreaterOrEqual(t, fc.slept[0], 50*time.Millisecond)
}

func TestLimiterNonPositiveLimitBypasses(t *testing.T) {
	l := NewLimiter(0, time.Minute, true)
	newFakeClock(l)

	adm, err := l.Acquire(context.Background())
	require.NoError(t, err)
	assert.Zero(t, adm.Used)
}

func TestLimiterAcquireCancelled(t *testing.T) {
	l := NewLimiter(1, time.Minute, true)
	newFakeClock(l)
	l.sleep = func(ctx context.Context, _ time.Duration) error {
		return context.Canceled
	}

	_, err := l.Acquire(context.Background())
	require.NoError(t, err)
	_, err = l.Acquire(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSnapshotReportsWindowUsage(t *testing.T) {
	l := NewLimiter(5, time.Minute, true)
	fc := newFakeClock(l)

	for i := 0; i < 2; i++ {
		_, err := l.Acquire(context.Background())
		require.NoError(t, err)
	}

	snap := l.Snapshot()
	assert.True(t, snap.Enabled)
	assert.Equal(t, 2, snap.Used)
	assert.Equal(t, 5, snap.Limit)
	assert.Equal(t, int64(60_000), snap.WindowMS)
	assert.Equal(t, int64(60_000), snap.ResetInMS)

	// past the window the counters reset
	fc.now = fc.now.Add(61 * time.Second)
	snap = l.Snapshot()
	assert.Equal(t, 0, snap.Used)
	assert.Equal(t, int64(60_000), snap.ResetInMS)
}

func TestSnapshotNeverAdmits(t *testing.T) {
	l := NewLimiter(1, time.Minute, true)
	newFakeClock(l)

	for i := 0; i < 10; i++ {
		l.Snapshot()
	}
	adm, err := l.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, adm.Used)
}
