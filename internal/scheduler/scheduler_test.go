package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context) error { return nil }

func TestValidateCronSchedule(t *testing.T) {
	assert.NoError(t, ValidateCronSchedule("30 3 * * *"))
	assert.NoError(t, ValidateCronSchedule("*/5 * * * *"))
	assert.Error(t, ValidateCronSchedule("every day"))
	assert.Error(t, ValidateCronSchedule("0 30 3 * * *"), "seconds field is not accepted")
}

func TestNextRunTime(t *testing.T) {
	from := time.Date(2024, time.March, 1, 2, 0, 0, 0, time.UTC)

	next, err := NextRunTime("30 3 * * *", from)

	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.March, 1, 3, 30, 0, 0, time.UTC), next)
}

func TestScheduler_Add(t *testing.T) {
	s := New()

	require.NoError(t, s.Add("audit-cleanup", "30 3 * * *", noop))
	require.NoError(t, s.Add("catalog-stats", "", noop), "empty schedule disables the job")
	assert.Error(t, s.Add("audit-cleanup", "0 4 * * *", noop), "names are unique")
	assert.Error(t, s.Add("broken", "not a schedule", noop))
}

func TestScheduler_StartStop(t *testing.T) {
	s := New()
	require.NoError(t, s.Add("audit-cleanup", "30 3 * * *", noop))

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	require.NoError(t, s.Start(context.Background()), "second start is a no-op")

	s.Stop()
	assert.False(t, s.IsRunning())
	s.Stop()
}

func TestScheduler_StopsWithContext(t *testing.T) {
	s := New()
	require.NoError(t, s.Add("audit-cleanup", "30 3 * * *", noop))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !s.IsRunning() }, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_RunNow(t *testing.T) {
	var calls atomic.Int32
	s := New()
	require.NoError(t, s.Add("catalog-stats", "", func(context.Context) error {
		calls.Add(1)
		return nil
	}))
	require.NoError(t, s.Add("failing", "", func(context.Context) error { return errors.New("boom") }))

	require.NoError(t, s.RunNow(context.Background(), "catalog-stats"))
	assert.Equal(t, int32(1), calls.Load())
	assert.EqualError(t, s.RunNow(context.Background(), "failing"), "boom")
	assert.Error(t, s.RunNow(context.Background(), "missing"))
}
