package auth

import (
	"context"
	"time"
)

// Repo persists users, pending login tokens and sessions. The ok return
// distinguishes "not there" from a store failure.
type Repo interface {
	GetOrCreateUser(ctx context.Context, email string, now time.Time) (u User, created bool, err error)
	GetUserByID(ctx context.Context, id string) (User, bool, error)

	PutLoginToken(ctx context.Context, t LoginToken) error
	GetLoginTokenByHash(ctx context.Context, tokenHash string) (LoginToken, bool, error)
	DeleteLoginToken(ctx context.Context, id string) error

	CreateSession(ctx context.Context, s Session) error
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (Session, bool, error)
	TouchSession(ctx context.Context, id string, seen time.Time) error
	DeleteSessionByID(ctx context.Context, id string) error
	DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error

	// PurgeExpired removes login tokens and sessions past their
	// expiry. Returns how many rows went away; used by the ops CLI.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
