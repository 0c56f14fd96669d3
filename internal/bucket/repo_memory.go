package bucket

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu      sync.RWMutex
	buckets map[string]Bucket
	now     func() time.Time

	// cascade detaches tasks from a deleted bucket, standing in for
	// the ON DELETE SET NULL constraint the Postgres store carries.
	cascade func(ctx context.Context, userID, bucketID string) error
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{buckets: map[string]Bucket{}, now: time.Now}
}

func (r *MemoryRepo) SetClock(now func() time.Time) {
	r.now = now
}

func (r *MemoryRepo) SetCascade(fn func(ctx context.Context, userID, bucketID string) error) {
	r.cascade = fn
}

func (r *MemoryRepo) Create(_ context.Context, userID, id, name string) (Bucket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.buckets[id]; taken {
		// Mirrors the primary key: ids are unique across all users.
		return Bucket{}, ErrExists
	}

	now := r.now()
	b := Bucket{
		ID:        id,
		UserID:    userID,
		Name:      name,
		Slug:      Slugify(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.buckets[id] = b
	return b, nil
}

func (r *MemoryRepo) Get(_ context.Context, userID, id string) (Bucket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.buckets[id]
	if !ok || b.UserID != userID {
		return Bucket{}, ErrNotFound
	}
	return b, nil
}

func (r *MemoryRepo) BySlug(_ context.Context, userID, slug string) (Bucket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// First match in creation order, like findFirst against the store.
	var match *Bucket
	for _, b := range r.buckets {
		if b.UserID != userID || b.Slug != slug {
			continue
		}
		if match == nil || b.CreatedAt.Before(match.CreatedAt) {
			bb := b
			match = &bb
		}
	}
	if match == nil {
		return Bucket{}, ErrNotFound
	}
	return *match, nil
}

func (r *MemoryRepo) List(_ context.Context, userID string) ([]Bucket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Bucket, 0)
	for _, b := range r.buckets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.Before(out[j].UpdatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) Recent(ctx context.Context, userID string) (Bucket, error) {
	all, err := r.List(ctx, userID)
	if err != nil {
		return Bucket{}, err
	}
	if len(all) == 0 {
		return Bucket{}, ErrNotFound
	}
	return all[len(all)-1], nil
}

func (r *MemoryRepo) Rename(_ context.Context, userID, id, name string) (Bucket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.buckets[id]
	if !ok || b.UserID != userID {
		return Bucket{}, ErrNotFound
	}
	b.Name = name
	b.Slug = Slugify(name)
	b.UpdatedAt = r.now()
	r.buckets[id] = b
	return b, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	b, ok := r.buckets[id]
	if !ok || b.UserID != userID {
		r.mu.Unlock()
		return ErrNotFound
	}
	delete(r.buckets, id)
	r.mu.Unlock()

	if r.cascade != nil {
		return r.cascade(ctx, userID, id)
	}
	return nil
}
