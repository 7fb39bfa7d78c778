package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueTracksSuccessfulJob(t *testing.T) {
	q := NewQueue("timetables", func(ctx context.Context, job Job) (interface{}, error) {
		return job.Payload.(string) + "-done", nil
	}, QueueConfig{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "job-1", Type: "generate", Payload: "grid"}))

	require.Eventually(t, func() bool {
		rec, ok := q.Lookup("job-1")
		return ok && rec.Finished()
	}, time.Second, 5*time.Millisecond)

	rec, _ := q.Lookup("job-1")
	assert.Equal(t, StatusSucceeded, rec.Status)
	assert.Equal(t, "grid-done", rec.Result)
	assert.Empty(t, rec.Error)
	assert.False(t, rec.Enqueued.IsZero())
}

func TestQueueRetriesThenFails(t *testing.T) {
	var calls int32
	q := NewQueue("timetables", func(ctx context.Context, job Job) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return nil, errors.New("exhausted")
	}, QueueConfig{MaxRetries: 1, RetryDelay: time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "job-2", Type: "generate"}))

	require.Eventually(t, func() bool {
		rec, ok := q.Lookup("job-2")
		return ok && rec.Status == StatusFailed
	}, time.Second, 5*time.Millisecond)

	rec, _ := q.Lookup("job-2")
	assert.Equal(t, "exhausted", rec.Error)
	assert.Equal(t, 1, rec.Attempt)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestQueueRejectsBeforeStart(t *testing.T) {
	q := NewQueue("timetables", func(context.Context, Job) (interface{}, error) { return nil, nil }, QueueConfig{})

	err := q.Enqueue(Job{ID: "job-3"})

	assert.Error(t, err)
	_, ok := q.Lookup("job-3")
	assert.False(t, ok)
}

func TestQueuePrunesFinishedRecords(t *testing.T) {
	q := NewQueue("timetables", func(context.Context, Job) (interface{}, error) { return nil, nil }, QueueConfig{RecordTTL: time.Minute})
	clock := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	q.now = func() time.Time { return clock }

	q.track(Job{ID: "old"}, StatusSucceeded, nil, nil)
	clock = clock.Add(2 * time.Minute)
	q.track(Job{ID: "new"}, StatusQueued, nil, nil)

	_, ok := q.Lookup("old")
	assert.False(t, ok)
	_, ok = q.Lookup("new")
	assert.True(t, ok)
}
