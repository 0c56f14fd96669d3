package task

import "context"

// Upsert carries the write side of CREATE_TASK / UPDATE_TASK_NAME. Nil
// pointer fields mean "not supplied": a create leaves the placement
// empty, an update leaves the existing placement alone.
type Upsert struct {
	ID       string
	Name     string
	Date     *string
	BucketID *string
}

// Counts maps a day key to the number of matching tasks on that day.
type Counts map[string]int

// CountFilter selects which tasks a CountsByDay query aggregates.
type CountFilter struct {
	// Start and End bound the day keys, exclusive on both ends, the
	// way the calendar window queries them.
	Start string
	End   string
	// IncompleteOnly restricts the count to incomplete tasks.
	IncompleteOnly bool
}

// Repo is the task store. Every operation is scoped to a user and
// touches a single row; callers never need cross-call transactions.
type Repo interface {
	// Upsert creates the task when the id is unseen and otherwise
	// updates its name plus any supplied placement fields in place.
	Upsert(ctx context.Context, userID string, u Upsert) (Task, error)
	Get(ctx context.Context, userID, id string) (Task, error)
	SetComplete(ctx context.Context, userID, id string, complete bool) (Task, error)

	// Placement mutations. Each refreshes SortKey.
	SetDate(ctx context.Context, userID, id, day string) (Task, error)
	ClearDate(ctx context.Context, userID, id string) (Task, error)
	SetBucket(ctx context.Context, userID, id, bucketID string) (Task, error)
	ClearBucket(ctx context.Context, userID, id string) (Task, error)

	Delete(ctx context.Context, userID, id string) error

	// List queries, each returned in SortKey order.
	Backlog(ctx context.Context, userID string) ([]Task, error)
	ForDay(ctx context.Context, userID, day string) ([]Task, error)
	ForBucket(ctx context.Context, userID, bucketID string) ([]Task, error)
	Unassigned(ctx context.Context, userID string) ([]Task, error)

	// CountsByDay runs one grouped count over the window.
	CountsByDay(ctx context.Context, userID string, f CountFilter) (Counts, error)
}
