package task

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("task not found")

// Task is a single planner item. Placement is two independent axes: a
// task sits either on a calendar day (Date set) or in the backlog (Date
// nil), and either in a bucket (BucketID set) or unassigned (BucketID
// nil).
//
// IDs are generated by the client so a task can be rendered and edited
// before the create round-trips; the store upserts by id, which makes a
// retried create idempotent.
type Task struct {
	ID       string  `db:"id" json:"id"`
	UserID   string  `db:"user_id" json:"userId"`
	Name     string  `db:"name" json:"name"`
	Complete bool    `db:"complete" json:"complete"`
	Date     *string `db:"date" json:"date"`
	BucketID *string `db:"bucket_id" json:"bucketId"`

	// SortKey orders a list by recency of movement rather than
	// creation. It is refreshed on every placement change and only
	// ever advances.
	SortKey   time.Time `db:"sort_key" json:"sortKey"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Scheduled reports whether the task sits on a calendar day.
func (t Task) Scheduled() bool {
	return t.Date != nil && *t.Date != ""
}

// InBucket reports whether the task is assigned to a bucket.
func (t Task) InBucket() bool {
	return t.BucketID != nil && *t.BucketID != ""
}

// nextSortKey advances a sort key past prev even when the clock has not
// moved since the last mutation.
func nextSortKey(now, prev time.Time) time.Time {
	if now.After(prev) {
		return now
	}
	return prev.Add(time.Millisecond)
}
