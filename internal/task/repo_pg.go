package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const taskColumns = "id, user_id, name, complete, date, bucket_id, sort_key, created_at, updated_at"

// PGRepo stores tasks in Postgres. All mutations are single statements,
// so the single-row-atomic contract holds without transactions.
type PGRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewPGRepo(db *sqlx.DB) *PGRepo {
	return &PGRepo{db: db, now: time.Now}
}

func (r *PGRepo) Upsert(ctx context.Context, userID string, u Upsert) (Task, error) {
	const q = `
		INSERT INTO tasks (id, user_id, name, complete, date, bucket_id, sort_key, created_at, updated_at)
		VALUES ($1, $2, $3, false, $4, $5, $6, $6, $6)
		ON CONFLICT (id) DO UPDATE SET
			name       = EXCLUDED.name,
			date       = CASE WHEN $7 THEN EXCLUDED.date ELSE tasks.date END,
			bucket_id  = CASE WHEN $8 THEN EXCLUDED.bucket_id ELSE tasks.bucket_id END,
			sort_key   = CASE WHEN ($7 OR $8)
			             THEN GREATEST(EXCLUDED.sort_key, tasks.sort_key + interval '1 millisecond')
			             ELSE tasks.sort_key END,
			updated_at = EXCLUDED.updated_at
		WHERE tasks.user_id = EXCLUDED.user_id
		RETURNING ` + taskColumns

	now := r.now()
	var t Task
	err := r.db.GetContext(ctx, &t, q,
		u.ID, userID, u.Name, u.Date, u.BucketID, now,
		u.Date != nil, u.BucketID != nil,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Conflict row belongs to someone else.
			return Task{}, ErrNotFound
		}
		return Task{}, fmt.Errorf("upsert task: %w", err)
	}
	return t, nil
}

func (r *PGRepo) Get(ctx context.Context, userID, id string) (Task, error) {
	const q = `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`

	var t Task
	if err := r.db.GetContext(ctx, &t, q, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Task{}, ErrNotFound
		}
		return Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (r *PGRepo) SetComplete(ctx context.Context, userID, id string, complete bool) (Task, error) {
	const q = `
		UPDATE tasks SET complete = $3, updated_at = $4
		WHERE id = $1 AND user_id = $2
		RETURNING ` + taskColumns
	return r.one(ctx, "set complete", q, id, userID, complete, r.now())
}

func (r *PGRepo) SetDate(ctx context.Context, userID, id, day string) (Task, error) {
	const q = `
		UPDATE tasks SET
			date       = $3,
			sort_key   = GREATEST($4, sort_key + interval '1 millisecond'),
			updated_at = $4
		WHERE id = $1 AND user_id = $2
		RETURNING ` + taskColumns
	return r.one(ctx, "set date", q, id, userID, day, r.now())
}

func (r *PGRepo) ClearDate(ctx context.Context, userID, id string) (Task, error) {
	const q = `
		UPDATE tasks SET
			date       = NULL,
			sort_key   = GREATEST($3, sort_key + interval '1 millisecond'),
			updated_at = $3
		WHERE id = $1 AND user_id = $2
		RETURNING ` + taskColumns
	return r.one(ctx, "clear date", q, id, userID, r.now())
}

func (r *PGRepo) SetBucket(ctx context.Context, userID, id, bucketID string) (Task, error) {
	const q = `
		UPDATE tasks SET
			bucket_id  = $3,
			sort_key   = GREATEST($4, sort_key + interval '1 millisecond'),
			updated_at = $4
		WHERE id = $1 AND user_id = $2
		RETURNING ` + taskColumns
	return r.one(ctx, "set bucket", q, id, userID, bucketID, r.now())
}

func (r *PGRepo) ClearBucket(ctx context.Context, userID, id string) (Task, error) {
	const q = `
		UPDATE tasks SET
			bucket_id  = NULL,
			sort_key   = GREATEST($3, sort_key + interval '1 millisecond'),
			updated_at = $3
		WHERE id = $1 AND user_id = $2
		RETURNING ` + taskColumns
	return r.one(ctx, "clear bucket", q, id, userID, r.now())
}

func (r *PGRepo) one(ctx context.Context, op, q string, args ...any) (Task, error) {
	var t Task
	if err := r.db.GetContext(ctx, &t, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Task{}, ErrNotFound
		}
		return Task{}, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

func (r *PGRepo) Delete(ctx context.Context, userID, id string) error {
	const q = `DELETE FROM tasks WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Backlog(ctx context.Context, userID string) ([]Task, error) {
	const q = `
		SELECT ` + taskColumns + ` FROM tasks
		WHERE user_id = $1 AND date IS NULL
		ORDER BY sort_key ASC, created_at ASC`
	return r.many(ctx, "list backlog", q, userID)
}

func (r *PGRepo) ForDay(ctx context.Context, userID, day string) ([]Task, error) {
	const q = `
		SELECT ` + taskColumns + ` FROM tasks
		WHERE user_id = $1 AND date = $2
		ORDER BY sort_key ASC, created_at ASC`
	return r.many(ctx, "list day", q, userID, day)
}

func (r *PGRepo) ForBucket(ctx context.Context, userID, bucketID string) ([]Task, error) {
	const q = `
		SELECT ` + taskColumns + ` FROM tasks
		WHERE user_id = $1 AND bucket_id = $2
		ORDER BY sort_key ASC, created_at ASC`
	return r.many(ctx, "list bucket", q, userID, bucketID)
}

func (r *PGRepo) Unassigned(ctx context.Context, userID string) ([]Task, error) {
	const q = `
		SELECT ` + taskColumns + ` FROM tasks
		WHERE user_id = $1 AND bucket_id IS NULL
		ORDER BY sort_key ASC, created_at ASC`
	return r.many(ctx, "list unassigned", q, userID)
}

func (r *PGRepo) many(ctx context.Context, op, q string, args ...any) ([]Task, error) {
	out := []Task{}
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func (r *PGRepo) CountsByDay(ctx context.Context, userID string, f CountFilter) (Counts, error) {
	q := `
		SELECT date, count(*) AS n FROM tasks
		WHERE user_id = $1 AND date > $2 AND date < $3`
	if f.IncompleteOnly {
		q += ` AND complete = false`
	}
	q += ` GROUP BY date ORDER BY date ASC`

	rows := []struct {
		Date string `db:"date"`
		N    int    `db:"n"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, q, userID, f.Start, f.End); err != nil {
		return nil, fmt.Errorf("counts by day: %w", err)
	}

	counts := Counts{}
	for _, row := range rows {
		counts[row.Date] = row.N
	}
	return counts, nil
}
