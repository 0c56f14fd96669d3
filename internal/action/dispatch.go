package action

import (
	"context"
	"fmt"

	"planner/internal/bucket"
	"planner/internal/task"
	"planner/internal/telemetry"
)

// Result is what a command hands back: the mutated entity, or a path
// the client should navigate to. Exactly one of the entity fields is
// set for entity-returning commands; deletes set neither.
type Result struct {
	Task       *task.Task     `json:"task,omitempty"`
	Bucket     *bucket.Bucket `json:"bucket,omitempty"`
	DeletedID  string         `json:"deletedId,omitempty"`
	RedirectTo string         `json:"redirectTo,omitempty"`
}

// Dispatcher applies exactly one store mutation per command. It holds
// no state of its own; concurrent dispatches against different
// entities are independent, and same-entity races resolve
// last-write-wins at the store.
type Dispatcher struct {
	tasks   task.Repo
	buckets bucket.Repo
	events  telemetry.Repository
}

func NewDispatcher(tasks task.Repo, buckets bucket.Repo) *Dispatcher {
	return &Dispatcher{tasks: tasks, buckets: buckets}
}

// SetRecorder turns on telemetry for successful mutations. Recording
// failures never fail the mutation itself.
func (d *Dispatcher) SetRecorder(events telemetry.Repository) {
	d.events = events
}

func (d *Dispatcher) Dispatch(ctx context.Context, userID string, cmd Command) (Result, error) {
	res, err := d.dispatch(ctx, userID, cmd)
	if err == nil {
		d.record(userID, cmd)
	}
	return res, err
}

func (d *Dispatcher) record(userID string, cmd Command) {
	if d.events == nil {
		return
	}
	meta := telemetry.EventMetadata{"userId": userID}
	var kind telemetry.EventType
	switch c := cmd.(type) {
	case UpsertTaskCmd:
		kind = telemetry.EventTaskCreated
		if c.Action == UpdateTaskName {
			kind = telemetry.EventTaskRenamed
		}
	case SetCompleteCmd:
		kind = telemetry.EventTaskReopened
		if c.Complete {
			kind = telemetry.EventTaskCompleted
		}
	case MoveToDayCmd:
		kind = telemetry.EventTaskScheduled
		meta["day"] = c.Day
	case MoveToBacklogCmd:
		kind = telemetry.EventTaskDeferred
	case AssignBucketCmd:
		kind = telemetry.EventTaskAssigned
	case UnassignCmd:
		kind = telemetry.EventTaskUnassigned
	case DeleteTaskCmd:
		kind = telemetry.EventTaskDeleted
	case CreateBucketCmd:
		kind = telemetry.EventBucketCreated
		meta["name"] = c.BucketName
	case DeleteBucketCmd:
		kind = telemetry.EventBucketDeleted
	case RenameBucketCmd:
		kind = telemetry.EventBucketRenamed
	default:
		return
	}
	_ = d.events.RecordEvent(kind, meta)
}

func (d *Dispatcher) dispatch(ctx context.Context, userID string, cmd Command) (Result, error) {
	switch c := cmd.(type) {
	case UpsertTaskCmd:
		t, err := d.tasks.Upsert(ctx, userID, task.Upsert{
			ID:       c.ID,
			Name:     c.TaskName,
			Date:     c.Date,
			BucketID: c.BucketID,
		})
		if err != nil {
			return Result{}, err
		}
		return Result{Task: &t}, nil

	case SetCompleteCmd:
		t, err := d.tasks.SetComplete(ctx, userID, c.ID, c.Complete)
		if err != nil {
			return Result{}, err
		}
		return Result{Task: &t}, nil

	case MoveToDayCmd:
		t, err := d.tasks.SetDate(ctx, userID, c.ID, c.Day)
		if err != nil {
			return Result{}, err
		}
		return Result{Task: &t}, nil

	case MoveToBacklogCmd:
		t, err := d.tasks.ClearDate(ctx, userID, c.ID)
		if err != nil {
			return Result{}, err
		}
		return Result{Task: &t}, nil

	case AssignBucketCmd:
		t, err := d.tasks.SetBucket(ctx, userID, c.ID, c.BucketID)
		if err != nil {
			return Result{}, err
		}
		return Result{Task: &t}, nil

	case UnassignCmd:
		t, err := d.tasks.ClearBucket(ctx, userID, c.ID)
		if err != nil {
			return Result{}, err
		}
		return Result{Task: &t}, nil

	case DeleteTaskCmd:
		if err := d.tasks.Delete(ctx, userID, c.ID); err != nil {
			return Result{}, err
		}
		return Result{DeletedID: c.ID}, nil

	case CreateBucketCmd:
		b, err := d.buckets.Create(ctx, userID, c.ID, c.BucketName)
		if err != nil {
			return Result{}, err
		}
		return Result{Bucket: &b}, nil

	case DeleteBucketCmd:
		if err := d.buckets.Delete(ctx, userID, c.ID); err != nil {
			return Result{}, err
		}
		return Result{DeletedID: c.ID}, nil

	case RenameBucketCmd:
		// The viewed slug decides whether the client is looking at the
		// bucket it just renamed; if so it must follow the rename to
		// the new URL or the page 404s on the next load.
		old, err := d.buckets.Get(ctx, userID, c.ID)
		if err != nil {
			return Result{}, err
		}
		b, err := d.buckets.Rename(ctx, userID, c.ID, c.BucketName)
		if err != nil {
			return Result{}, err
		}
		if c.ViewedSlug == old.Slug && b.Slug != old.Slug {
			return Result{Bucket: &b, RedirectTo: "/buckets/" + b.Slug}, nil
		}
		return Result{Bucket: &b}, nil

	default:
		return Result{}, fmt.Errorf("%w: %T", ErrUnknownAction, cmd)
	}
}
