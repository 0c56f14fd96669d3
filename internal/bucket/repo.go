package bucket

import "context"

type Repo interface {
	// Create inserts a bucket with a client-generated id and a slug
	// derived from name.
	Create(ctx context.Context, userID, id, name string) (Bucket, error)
	Get(ctx context.Context, userID, id string) (Bucket, error)
	// BySlug returns the first bucket matching the slug.
	BySlug(ctx context.Context, userID, slug string) (Bucket, error)
	// List returns the user's buckets, least recently updated first.
	List(ctx context.Context, userID string) ([]Bucket, error)
	// Recent returns the most recently updated bucket.
	Recent(ctx context.Context, userID string) (Bucket, error)
	// Rename updates the name and regenerates the slug.
	Rename(ctx context.Context, userID, id, name string) (Bucket, error)
	// Delete removes the bucket; detaching its tasks is the store's
	// concern, not the caller's.
	Delete(ctx context.Context, userID, id string) error
}
