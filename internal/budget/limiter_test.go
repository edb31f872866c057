package budget

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterNilIsInert(t *testing.T) {
	var l *Limiter

	assert.NoError(t, l.TryAcquire(1<<20))
	assert.NotPanics(t, func() { l.Release(1 << 20) })
	assert.True(t, l.AllowReserve())
	assert.Equal(t, int64(0), l.Used())
	assert.Equal(t, int64(0), l.HeapMax())
}

func TestLimiterHeapCeiling(t *testing.T) {
	l := New(Config{HeapMaxBytes: 100})

	require.NoError(t, l.TryAcquire(60))
	require.NoError(t, l.TryAcquire(40))
	assert.Equal(t, int64(100), l.Used())

	err := l.TryAcquire(1)
	assert.True(t, errors.Is(err, ErrHeapLimitExceeded))

	l.Release(40)
	assert.Equal(t, int64(60), l.Used())
	require.NoError(t, l.TryAcquire(40))
}

func TestLimiterUnlimitedByDefault(t *testing.T) {
	l := New(Config{})
	require.NoError(t, l.TryAcquire(1<<40))
	assert.Equal(t, int64(1<<40), l.Used())
}

func TestLimiterAllowReserveThrottlesBurst(t *testing.T) {
	l := New(Config{MaxReservationsPerSec: 1})

	assert.True(t, l.AllowReserve(), "first call consumes the burst token")
	assert.False(t, l.AllowReserve(), "immediate second call exceeds the rate")
}
