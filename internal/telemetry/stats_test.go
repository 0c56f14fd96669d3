package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsFoldEventLog(t *testing.T) {
	repo := NewMemoryRepository()
	require.NoError(t, repo.RecordEvent(EventTaskCreated, EventMetadata{"userId": "u1"}))
	require.NoError(t, repo.RecordEvent(EventTaskCreated, EventMetadata{"userId": "u1"}))
	require.NoError(t, repo.RecordEvent(EventTaskScheduled, EventMetadata{"userId": "u1", "day": "2022-03-07"}))
	require.NoError(t, repo.RecordEvent(EventTaskDeferred, EventMetadata{"userId": "u1"}))
	require.NoError(t, repo.RecordEvent(EventTaskCompleted, EventMetadata{"userId": "u1"}))
	require.NoError(t, repo.RecordEvent(EventBucketCreated, EventMetadata{"userId": "u1", "name": "Errands"}))

	since := time.Now().Add(-time.Hour)
	events, err := repo.GetEvents(since, nil)
	require.NoError(t, err)
	require.Len(t, events, 6)

	stats, err := CalculateStats(events, since)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TaskCreations)
	assert.Equal(t, 1, stats.TaskCompletions)
	assert.Equal(t, 1, stats.TasksScheduled)
	assert.Equal(t, 1, stats.TasksDeferred)
	assert.InDelta(t, 1.0, stats.MovesPerTask, 0.001)
	assert.Equal(t, 1, stats.BucketsByName["Errands"])
}

func TestGetEventsFiltersByType(t *testing.T) {
	repo := NewMemoryRepository()
	require.NoError(t, repo.RecordEvent(EventTaskCreated, nil))
	require.NoError(t, repo.RecordEvent(EventTaskDeleted, nil))

	events, err := repo.GetEvents(time.Time{}, []EventType{EventTaskDeleted})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventTaskDeleted, events[0].Type)
}
