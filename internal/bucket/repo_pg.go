package bucket

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

const bucketColumns = "id, user_id, name, slug, created_at, updated_at"

type PGRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewPGRepo(db *sqlx.DB) *PGRepo {
	return &PGRepo{db: db, now: time.Now}
}

func (r *PGRepo) Create(ctx context.Context, userID, id, name string) (Bucket, error) {
	const q = `
		INSERT INTO buckets (id, user_id, name, slug, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING ` + bucketColumns

	var b Bucket
	if err := r.db.GetContext(ctx, &b, q, id, userID, name, Slugify(name), r.now()); err != nil {
		if isUniqueViolation(err) {
			return Bucket{}, ErrExists
		}
		return Bucket{}, fmt.Errorf("create bucket: %w", err)
	}
	return b, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *PGRepo) Get(ctx context.Context, userID, id string) (Bucket, error) {
	const q = `SELECT ` + bucketColumns + ` FROM buckets WHERE id = $1 AND user_id = $2`
	return r.one(ctx, "get bucket", q, id, userID)
}

func (r *PGRepo) BySlug(ctx context.Context, userID, slug string) (Bucket, error) {
	// First match; slug collisions are not guarded against.
	const q = `
		SELECT ` + bucketColumns + ` FROM buckets
		WHERE user_id = $1 AND slug = $2
		ORDER BY created_at ASC
		LIMIT 1`
	return r.one(ctx, "bucket by slug", q, userID, slug)
}

func (r *PGRepo) List(ctx context.Context, userID string) ([]Bucket, error) {
	const q = `
		SELECT ` + bucketColumns + ` FROM buckets
		WHERE user_id = $1
		ORDER BY updated_at ASC`

	out := []Bucket{}
	if err := r.db.SelectContext(ctx, &out, q, userID); err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}
	return out, nil
}

func (r *PGRepo) Recent(ctx context.Context, userID string) (Bucket, error) {
	const q = `
		SELECT ` + bucketColumns + ` FROM buckets
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT 1`
	return r.one(ctx, "recent bucket", q, userID)
}

func (r *PGRepo) Rename(ctx context.Context, userID, id, name string) (Bucket, error) {
	const q = `
		UPDATE buckets SET name = $3, slug = $4, updated_at = $5
		WHERE id = $1 AND user_id = $2
		RETURNING ` + bucketColumns
	return r.one(ctx, "rename bucket", q, id, userID, name, Slugify(name), r.now())
}

func (r *PGRepo) Delete(ctx context.Context, userID, id string) error {
	// tasks.bucket_id has ON DELETE SET NULL, so the detach cascade
	// lives in the schema.
	const q = `DELETE FROM buckets WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return fmt.Errorf("delete bucket: %w", err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) one(ctx context.Context, op, q string, args ...any) (Bucket, error) {
	var b Bucket
	if err := r.db.GetContext(ctx, &b, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Bucket{}, ErrNotFound
		}
		return Bucket{}, fmt.Errorf("%s: %w", op, err)
	}
	return b, nil
}
