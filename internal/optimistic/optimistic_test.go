package optimistic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planner/internal/action"
	"planner/internal/task"
)

func mkTask(id string, sortAt time.Time) task.Task {
	return task.Task{ID: id, UserID: "u1", Name: "task " + id, SortKey: sortAt, CreatedAt: sortAt}
}

func ids(tasks []task.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func renderedIDs(rows []Rendered) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Task.ID)
	}
	return out
}

func TestPlaceholderAppearsUntilConfirmed(t *testing.T) {
	base := time.Date(2022, 3, 5, 9, 0, 0, 0, time.UTC)
	saved := []task.Task{mkTask("t1", base)}

	pending := NewPendingSet()
	pending.Add("new1")

	rows := pending.Render(saved)
	require.Equal(t, []string{"t1", "new1"}, renderedIDs(rows))
	assert.True(t, rows[1].IsNew)
	assert.Equal(t, "", rows[1].Task.Name)

	// Render again before confirmation: still exactly one placeholder.
	rows = pending.Render(saved)
	assert.Equal(t, []string{"t1", "new1"}, renderedIDs(rows))
}

func TestPlaceholderRetiresWhenRealTaskArrives(t *testing.T) {
	base := time.Date(2022, 3, 5, 9, 0, 0, 0, time.UTC)

	pending := NewPendingSet()
	pending.Add("new1")

	// The create round-tripped: the authoritative list now has the id.
	saved := []task.Task{mkTask("t1", base), mkTask("new1", base.Add(time.Second))}
	rows := pending.Render(saved)

	// The real task shows exactly once and the pending id is gone.
	require.Equal(t, []string{"t1", "new1"}, renderedIDs(rows))
	assert.False(t, rows[1].IsNew)
	assert.Empty(t, pending.IDs())
}

func TestReconcileReportsRetiredIDs(t *testing.T) {
	pending := NewPendingSet()
	pending.Add("a")
	pending.Add("b")
	pending.Add("c")

	retired := pending.Reconcile([]task.Task{{ID: "b"}})
	assert.Equal(t, []string{"b"}, retired)
	assert.Equal(t, []string{"a", "c"}, pending.IDs())
}

func TestAddIsIdempotent(t *testing.T) {
	pending := NewPendingSet()
	pending.Add("x")
	pending.Add("x")
	assert.Equal(t, []string{"x"}, pending.IDs())
}

func TestInFlightMoveShowsTaskInExactlyOneList(t *testing.T) {
	base := time.Date(2022, 3, 5, 9, 0, 0, 0, time.UTC)
	backlog := []task.Task{mkTask("t1", base), mkTask("t2", base.Add(time.Second))}
	dayTasks := []task.Task{mkTask("t3", base.Add(2 * time.Second))}

	inflight := []Command{{
		Action: action.MoveTaskToDay,
		ID:     "t1",
		Fields: map[string]string{"day": "2022-03-07"},
	}}

	dayOut, backlogOut := DayView("2022-03-07", dayTasks, backlog, inflight)

	assert.Equal(t, []string{"t1", "t3"}, ids(dayOut), "moving task appears in destination")
	assert.Equal(t, []string{"t2"}, ids(backlogOut), "moving task hidden from source")

	// After the mutation lands the authoritative lists reflect the
	// move and the in-flight command is gone: both sides equal their
	// authoritative counterparts again.
	moved := mkTask("t1", base.Add(3*time.Second))
	dayTasks = []task.Task{dayTasks[0], moved}
	backlog = []task.Task{backlog[1]}

	dayOut, backlogOut = DayView("2022-03-07", dayTasks, backlog, nil)
	assert.Equal(t, []string{"t3", "t1"}, ids(dayOut))
	assert.Equal(t, []string{"t2"}, ids(backlogOut))
}

func TestMoveToOtherDayDoesNotImmigrateHere(t *testing.T) {
	base := time.Date(2022, 3, 5, 9, 0, 0, 0, time.UTC)
	backlog := []task.Task{mkTask("t1", base)}

	inflight := []Command{{
		Action: action.MoveTaskToDay,
		ID:     "t1",
		Fields: map[string]string{"day": "2022-03-09"},
	}}

	dayOut, backlogOut := DayView("2022-03-07", nil, backlog, inflight)
	assert.Empty(t, ids(dayOut))
	// Still hidden from the backlog: it is leaving, just not for here.
	assert.Empty(t, ids(backlogOut))
}

func TestMoveToBacklogIsSymmetric(t *testing.T) {
	base := time.Date(2022, 3, 5, 9, 0, 0, 0, time.UTC)
	dayTasks := []task.Task{mkTask("t1", base)}

	inflight := []Command{{Action: action.MoveTaskToBacklog, ID: "t1"}}

	dayOut, backlogOut := DayView("2022-03-07", dayTasks, nil, inflight)
	assert.Empty(t, ids(dayOut))
	assert.Equal(t, []string{"t1"}, ids(backlogOut))
}

func TestDeleteHidesFromBothSides(t *testing.T) {
	base := time.Date(2022, 3, 5, 9, 0, 0, 0, time.UTC)
	dayTasks := []task.Task{mkTask("t1", base)}
	backlog := []task.Task{mkTask("t2", base)}

	inflight := []Command{
		{Action: action.DeleteTask, ID: "t1"},
		{Action: action.DeleteTask, ID: "t2"},
	}

	dayOut, backlogOut := DayView("2022-03-07", dayTasks, backlog, inflight)
	assert.Empty(t, ids(dayOut))
	assert.Empty(t, ids(backlogOut))
}

func TestBucketViewProjectsAssignments(t *testing.T) {
	base := time.Date(2022, 3, 5, 9, 0, 0, 0, time.UTC)
	unassigned := []task.Task{mkTask("t1", base), mkTask("t2", base.Add(time.Second))}
	bucketTasks := []task.Task{mkTask("t3", base.Add(2 * time.Second))}

	inflight := []Command{
		{Action: action.MoveTaskToBucket, ID: "t1", Fields: map[string]string{"bucketId": "b1"}},
		{Action: action.MoveTaskToBucket, ID: "t2", Fields: map[string]string{"bucketId": "other"}},
		{Action: action.UnassignTask, ID: "t3"},
	}

	bucketOut, unassignedOut := BucketView("b1", bucketTasks, unassigned, inflight)
	assert.Equal(t, []string{"t1"}, ids(bucketOut))
	assert.Equal(t, []string{"t3"}, ids(unassignedOut))
}

func TestRenderedListsSortBySortKey(t *testing.T) {
	base := time.Date(2022, 3, 5, 9, 0, 0, 0, time.UTC)
	// Recently moved tasks sort after older ones regardless of slice order.
	tasks := []task.Task{
		mkTask("late", base.Add(time.Hour)),
		mkTask("early", base),
	}

	out, _ := DayView("2022-03-07", tasks, nil, nil)
	assert.Equal(t, []string{"early", "late"}, ids(out))
}

func TestProjectComplete(t *testing.T) {
	done := task.Task{ID: "t1", Complete: true}
	todo := task.Task{ID: "t2"}

	inflight := []Command{
		{Action: action.MarkIncomplete, ID: "t1"},
		{Action: action.MarkComplete, ID: "t2"},
	}

	assert.False(t, ProjectComplete(inflight, done))
	assert.True(t, ProjectComplete(inflight, todo))
	assert.True(t, ProjectComplete(nil, done))
}
