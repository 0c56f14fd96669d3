package action

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planner/internal/bucket"
	"planner/internal/task"
)

type fixture struct {
	tasks   *task.MemoryRepo
	buckets *bucket.MemoryRepo
	d       *Dispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tasks := task.NewMemoryRepo()
	buckets := bucket.NewMemoryRepo()
	buckets.SetCascade(tasks.ClearBucketRefs)
	return &fixture{tasks: tasks, buckets: buckets, d: NewDispatcher(tasks, buckets)}
}

func (f *fixture) dispatch(t *testing.T, userID string, p Payload, routeDay string) Result {
	t.Helper()
	cmd, err := Parse(p, routeDay)
	require.NoError(t, err)
	res, err := f.d.Dispatch(context.Background(), userID, cmd)
	require.NoError(t, err)
	return res
}

func TestCreateTaskIsIdempotentByID(t *testing.T) {
	f := newFixture(t)

	p := Payload{Field: string(CreateTask), "id": "t1", "name": "write tests"}
	first := f.dispatch(t, "u1", p, "")
	second := f.dispatch(t, "u1", p, "")

	require.NotNil(t, first.Task)
	assert.Equal(t, first.Task.ID, second.Task.ID)
	assert.Equal(t, first.Task.CreatedAt, second.Task.CreatedAt)

	backlog, err := f.tasks.Backlog(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, backlog, 1)
}

func TestUpdateTaskNamePreservesPlacement(t *testing.T) {
	f := newFixture(t)

	f.dispatch(t, "u1", Payload{Field: string(CreateTask), "id": "t1", "name": "draft", "date": "2022-03-07"}, "")
	res := f.dispatch(t, "u1", Payload{Field: string(UpdateTaskName), "id": "t1", "name": "final"}, "")

	require.NotNil(t, res.Task)
	assert.Equal(t, "final", res.Task.Name)
	require.NotNil(t, res.Task.Date)
	assert.Equal(t, "2022-03-07", *res.Task.Date)
}

func TestMoveTaskToDayTakesDayFromRoute(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, "u1", Payload{Field: string(CreateTask), "id": "t1", "name": "n"}, "")

	res := f.dispatch(t, "u1", Payload{Field: string(MoveTaskToDay), "id": "t1"}, "2022-03-07")
	require.NotNil(t, res.Task.Date)
	assert.Equal(t, "2022-03-07", *res.Task.Date)

	res = f.dispatch(t, "u1", Payload{Field: string(MoveTaskToBacklog), "id": "t1"}, "")
	assert.Nil(t, res.Task.Date)
}

func TestMoveTaskToDayRequiresRouteDay(t *testing.T) {
	_, err := Parse(Payload{Field: string(MoveTaskToDay), "id": "t1"}, "")
	assert.ErrorIs(t, err, ErrInvariant)

	_, err = Parse(Payload{Field: string(MoveTaskToDay), "id": "t1"}, "not-a-day")
	assert.ErrorIs(t, err, ErrInvariant)
}

func TestPlacementAxesAreIndependent(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, "u1", Payload{Field: string(CreateBucket), "id": "b1", "name": "Errands"}, "")
	f.dispatch(t, "u1", Payload{Field: string(CreateTask), "id": "t1", "name": "n"}, "")

	f.dispatch(t, "u1", Payload{Field: string(MoveTaskToDay), "id": "t1"}, "2022-03-07")
	res := f.dispatch(t, "u1", Payload{Field: string(MoveTaskToBucket), "id": "t1", "bucketId": "b1"}, "")

	require.NotNil(t, res.Task.Date)
	assert.Equal(t, "2022-03-07", *res.Task.Date)
	require.NotNil(t, res.Task.BucketID)
	assert.Equal(t, "b1", *res.Task.BucketID)

	res = f.dispatch(t, "u1", Payload{Field: string(UnassignTask), "id": "t1"}, "")
	assert.Nil(t, res.Task.BucketID)
	require.NotNil(t, res.Task.Date)
}

func TestPlacementMovesAdvanceSortKey(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2022, 3, 5, 9, 0, 0, 0, time.UTC)
	f.tasks.SetClock(func() time.Time { return now })

	f.dispatch(t, "u1", Payload{Field: string(CreateTask), "id": "t1", "name": "n"}, "")

	var prev time.Time
	for _, p := range []struct {
		payload Payload
		day     string
	}{
		{Payload{Field: string(MoveTaskToDay), "id": "t1"}, "2022-03-07"},
		{Payload{Field: string(MoveTaskToBacklog), "id": "t1"}, ""},
		{Payload{Field: string(MoveTaskToDay), "id": "t1"}, "2022-03-08"},
	} {
		res := f.dispatch(t, "u1", p.payload, p.day)
		assert.True(t, res.Task.SortKey.After(prev), "sort key must strictly advance")
		prev = res.Task.SortKey
	}
}

func TestMarkCompleteAndIncomplete(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, "u1", Payload{Field: string(CreateTask), "id": "t1", "name": "n"}, "")

	res := f.dispatch(t, "u1", Payload{Field: string(MarkComplete), "id": "t1"}, "")
	assert.True(t, res.Task.Complete)

	res = f.dispatch(t, "u1", Payload{Field: string(MarkIncomplete), "id": "t1"}, "")
	assert.False(t, res.Task.Complete)
}

func TestDeleteTaskReturnsDeletedID(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, "u1", Payload{Field: string(CreateTask), "id": "t1", "name": "n"}, "")

	res := f.dispatch(t, "u1", Payload{Field: string(DeleteTask), "id": "t1"}, "")
	assert.Equal(t, "t1", res.DeletedID)
	assert.Nil(t, res.Task)

	_, err := f.tasks.Get(context.Background(), "u1", "t1")
	assert.ErrorIs(t, err, task.ErrNotFound)
}

func TestUnknownActionMutatesNothing(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, "u1", Payload{Field: string(CreateTask), "id": "t1", "name": "before"}, "")

	_, err := Parse(Payload{Field: "EXPLODE_TASK", "id": "t1"}, "")
	assert.ErrorIs(t, err, ErrUnknownAction)

	got, err := f.tasks.Get(context.Background(), "u1", "t1")
	require.NoError(t, err)
	assert.Equal(t, "before", got.Name)
}

func TestMissingIDFailsPrecondition(t *testing.T) {
	for _, name := range []Name{
		CreateTask, UpdateTaskName, MarkComplete, MarkIncomplete,
		MoveTaskToBacklog, MoveTaskToBucket, UnassignTask, DeleteTask,
		CreateBucket, DeleteBucket, RenameBucket,
	} {
		_, err := Parse(Payload{Field: string(name)}, "")
		assert.ErrorIs(t, err, ErrInvariant, string(name))
	}
}

func TestMutationOnForeignUserIsNotFound(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, "u1", Payload{Field: string(CreateTask), "id": "t1", "name": "n"}, "")

	cmd, err := Parse(Payload{Field: string(DeleteTask), "id": "t1"}, "")
	require.NoError(t, err)
	_, err = f.d.Dispatch(context.Background(), "u2", cmd)
	assert.ErrorIs(t, err, task.ErrNotFound)
}

func TestRenameBucketRedirectsViewer(t *testing.T) {
	f := newFixture(t)
	created := f.dispatch(t, "u1", Payload{Field: string(CreateBucket), "id": "b1", "name": "Old Name"}, "")
	require.Equal(t, "old-name", created.Bucket.Slug)

	// The client viewing the renamed bucket follows it to the new slug.
	res := f.dispatch(t, "u1", Payload{
		Field: string(RenameBucket), "id": "b1", "name": "New Name", "slug": "old-name",
	}, "")
	assert.Equal(t, "new-name", res.Bucket.Slug)
	assert.Equal(t, "/buckets/new-name", res.RedirectTo)

	// A client viewing some other bucket stays put.
	res = f.dispatch(t, "u1", Payload{
		Field: string(RenameBucket), "id": "b1", "name": "Third Name", "slug": "elsewhere",
	}, "")
	assert.Equal(t, "third-name", res.Bucket.Slug)
	assert.Empty(t, res.RedirectTo)
}

func TestDeleteBucketUnassignsItsTasks(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, "u1", Payload{Field: string(CreateBucket), "id": "b1", "name": "Errands"}, "")
	f.dispatch(t, "u1", Payload{Field: string(CreateTask), "id": "t1", "name": "n", "bucketId": "b1"}, "")

	res := f.dispatch(t, "u1", Payload{Field: string(DeleteBucket), "id": "b1"}, "")
	assert.Equal(t, "b1", res.DeletedID)

	got, err := f.tasks.Get(context.Background(), "u1", "t1")
	require.NoError(t, err)
	assert.Nil(t, got.BucketID, "tasks survive their bucket, unassigned")
}
