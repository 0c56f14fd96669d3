package task

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo keeps tasks in a map. It backs tests and local hacking;
// the Postgres repo is the real store.
type MemoryRepo struct {
	mu    sync.RWMutex
	tasks map[string]Task
	now   func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{tasks: map[string]Task{}, now: time.Now}
}

// SetClock overrides the repo clock for tests.
func (r *MemoryRepo) SetClock(now func() time.Time) {
	r.now = now
}

func (r *MemoryRepo) Upsert(_ context.Context, userID string, u Upsert) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	t, ok := r.tasks[u.ID]
	if ok && t.UserID != userID {
		// The id belongs to someone else; same outcome as the SQL
		// upsert's user_id guard.
		return Task{}, ErrNotFound
	}
	if !ok {
		t = Task{
			ID:        u.ID,
			UserID:    userID,
			Name:      u.Name,
			Date:      u.Date,
			BucketID:  u.BucketID,
			SortKey:   now,
			CreatedAt: now,
			UpdatedAt: now,
		}
		r.tasks[u.ID] = t
		return t, nil
	}

	t.Name = u.Name
	if u.Date != nil {
		t.Date = u.Date
		t.SortKey = nextSortKey(now, t.SortKey)
	}
	if u.BucketID != nil {
		t.BucketID = u.BucketID
		t.SortKey = nextSortKey(now, t.SortKey)
	}
	t.UpdatedAt = now
	r.tasks[u.ID] = t
	return t, nil
}

func (r *MemoryRepo) Get(_ context.Context, userID, id string) (Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return Task{}, ErrNotFound
	}
	return t, nil
}

func (r *MemoryRepo) mutate(userID, id string, fn func(*Task)) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return Task{}, ErrNotFound
	}
	fn(&t)
	t.UpdatedAt = r.now()
	r.tasks[id] = t
	return t, nil
}

func (r *MemoryRepo) SetComplete(_ context.Context, userID, id string, complete bool) (Task, error) {
	return r.mutate(userID, id, func(t *Task) {
		t.Complete = complete
	})
}

func (r *MemoryRepo) SetDate(_ context.Context, userID, id, day string) (Task, error) {
	return r.mutate(userID, id, func(t *Task) {
		d := day
		t.Date = &d
		t.SortKey = nextSortKey(r.now(), t.SortKey)
	})
}

func (r *MemoryRepo) ClearDate(_ context.Context, userID, id string) (Task, error) {
	return r.mutate(userID, id, func(t *Task) {
		t.Date = nil
		t.SortKey = nextSortKey(r.now(), t.SortKey)
	})
}

func (r *MemoryRepo) SetBucket(_ context.Context, userID, id, bucketID string) (Task, error) {
	return r.mutate(userID, id, func(t *Task) {
		b := bucketID
		t.BucketID = &b
		t.SortKey = nextSortKey(r.now(), t.SortKey)
	})
}

func (r *MemoryRepo) ClearBucket(_ context.Context, userID, id string) (Task, error) {
	return r.mutate(userID, id, func(t *Task) {
		t.BucketID = nil
		t.SortKey = nextSortKey(r.now(), t.SortKey)
	})
}

func (r *MemoryRepo) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *MemoryRepo) list(userID string, match func(Task) bool) []Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Task, 0)
	for _, t := range r.tasks {
		if t.UserID == userID && match(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SortKey.Equal(out[j].SortKey) {
			return out[i].SortKey.Before(out[j].SortKey)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *MemoryRepo) Backlog(_ context.Context, userID string) ([]Task, error) {
	return r.list(userID, func(t Task) bool { return !t.Scheduled() }), nil
}

func (r *MemoryRepo) ForDay(_ context.Context, userID, day string) ([]Task, error) {
	return r.list(userID, func(t Task) bool {
		return t.Date != nil && *t.Date == day
	}), nil
}

func (r *MemoryRepo) ForBucket(_ context.Context, userID, bucketID string) ([]Task, error) {
	return r.list(userID, func(t Task) bool {
		return t.BucketID != nil && *t.BucketID == bucketID
	}), nil
}

func (r *MemoryRepo) Unassigned(_ context.Context, userID string) ([]Task, error) {
	return r.list(userID, func(t Task) bool { return !t.InBucket() }), nil
}

func (r *MemoryRepo) CountsByDay(_ context.Context, userID string, f CountFilter) (Counts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := Counts{}
	for _, t := range r.tasks {
		if t.UserID != userID || t.Date == nil {
			continue
		}
		d := *t.Date
		if d <= f.Start || d >= f.End {
			continue
		}
		if f.IncompleteOnly && t.Complete {
			continue
		}
		counts[d]++
	}
	return counts, nil
}

// ClearBucketRefs detaches every task pointing at a deleted bucket.
func (r *MemoryRepo) ClearBucketRefs(_ context.Context, userID, bucketID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, t := range r.tasks {
		if t.UserID == userID && t.BucketID != nil && *t.BucketID == bucketID {
			t.BucketID = nil
			t.UpdatedAt = r.now()
			r.tasks[id] = t
		}
	}
	return nil
}
