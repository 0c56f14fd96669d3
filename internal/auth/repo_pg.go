package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type PGRepo struct {
	db *sqlx.DB
}

func NewPGRepo(db *sqlx.DB) *PGRepo {
	return &PGRepo{db: db}
}

func (r *PGRepo) GetOrCreateUser(ctx context.Context, email string, now time.Time) (User, bool, error) {
	// Upsert on email so two concurrent first logins do not race.
	const q = `
		INSERT INTO users (id, email, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING id, email, created_at`

	var u User
	if err := r.db.GetContext(ctx, &u, q, newID("user"), email, now); err != nil {
		return User{}, false, fmt.Errorf("get or create user: %w", err)
	}
	return u, u.CreatedAt.Equal(now), nil
}

func (r *PGRepo) GetUserByID(ctx context.Context, id string) (User, bool, error) {
	const q = `SELECT id, email, created_at FROM users WHERE id = $1`

	var u User
	if err := r.db.GetContext(ctx, &u, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, false, nil
		}
		return User{}, false, fmt.Errorf("get user: %w", err)
	}
	return u, true, nil
}

func (r *PGRepo) PutLoginToken(ctx context.Context, t LoginToken) error {
	const q = `
		INSERT INTO login_tokens (id, email, token_hash, device_hash, landing_page, requested_at, expires_at)
		VALUES (:id, :email, :token_hash, :device_hash, :landing_page, :requested_at, :expires_at)`

	if _, err := r.db.NamedExecContext(ctx, q, t); err != nil {
		return fmt.Errorf("put login token: %w", err)
	}
	return nil
}

func (r *PGRepo) GetLoginTokenByHash(ctx context.Context, tokenHash string) (LoginToken, bool, error) {
	const q = `
		SELECT id, email, token_hash, device_hash, landing_page, requested_at, expires_at
		FROM login_tokens WHERE token_hash = $1`

	var t LoginToken
	if err := r.db.GetContext(ctx, &t, q, tokenHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LoginToken{}, false, nil
		}
		return LoginToken{}, false, fmt.Errorf("get login token: %w", err)
	}
	return t, true, nil
}

func (r *PGRepo) DeleteLoginToken(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM login_tokens WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete login token: %w", err)
	}
	return nil
}

func (r *PGRepo) CreateSession(ctx context.Context, s Session) error {
	const q = `
		INSERT INTO sessions (id, user_id, token_hash, created_at, last_seen, expires_at)
		VALUES (:id, :user_id, :token_hash, :created_at, :last_seen, :expires_at)`

	if _, err := r.db.NamedExecContext(ctx, q, s); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *PGRepo) GetSessionByTokenHash(ctx context.Context, tokenHash string) (Session, bool, error) {
	const q = `
		SELECT id, user_id, token_hash, created_at, last_seen, expires_at
		FROM sessions WHERE token_hash = $1`

	var s Session
	if err := r.db.GetContext(ctx, &s, q, tokenHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, false, nil
		}
		return Session{}, false, fmt.Errorf("get session: %w", err)
	}
	return s, true, nil
}

func (r *PGRepo) TouchSession(ctx context.Context, id string, seen time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE sessions SET last_seen = $2 WHERE id = $1`, id, seen); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

func (r *PGRepo) DeleteSessionByID(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *PGRepo) DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash); err != nil {
		return fmt.Errorf("delete session by token: %w", err)
	}
	return nil
}

func (r *PGRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	var total int64
	for _, q := range []string{
		`DELETE FROM login_tokens WHERE expires_at < $1`,
		`DELETE FROM sessions WHERE expires_at < $1`,
	} {
		res, err := r.db.ExecContext(ctx, q, now)
		if err != nil {
			return total, fmt.Errorf("purge expired: %w", err)
		}
		aff, _ := res.RowsAffected()
		total += aff
	}
	return total, nil
}
