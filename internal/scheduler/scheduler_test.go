package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/qchess/internal/cache"
)

type countingJob struct {
	runs atomic.Int64
	err  error
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run() error {
	j.runs.Add(1)
	return j.err
}

func TestAddJobRejectsBadSpec(t *testing.T) {
	s := New(zerolog.Nop())
	err := s.AddJob("not a cron spec", &countingJob{})
	assert.Error(t, err)
}

func TestRunNow(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{}

	require.NoError(t, s.RunNow(job))
	assert.Equal(t, int64(1), job.runs.Load())

	job.err = errors.New("boom")
	assert.Error(t, s.RunNow(job))
}

func TestScheduledExecution(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{}
	require.NoError(t, s.AddJob("@every 10ms", job))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return job.runs.Load() >= 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCacheSweepJob(t *testing.T) {
	c := cache.New(time.Minute)
	require.NoError(t, c.Set("stale", 1, time.Nanosecond))
	require.NoError(t, c.Set("fresh", 2, time.Hour))
	time.Sleep(time.Millisecond)

	job := NewCacheSweep(c, zerolog.Nop())
	assert.Equal(t, "cache-sweep", job.Name())
	require.NoError(t, job.Run())
	assert.Equal(t, 1, c.Len())
}
