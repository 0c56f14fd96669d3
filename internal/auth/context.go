package auth

import "context"

type ctxKey string

const (
	userContextKey    ctxKey = "planner.auth.user"
	sessionContextKey ctxKey = "planner.auth.session"
)

// WithUser injects an authenticated user into the context. The
// middleware does this for every authenticated request; tests use it
// to stand in for the middleware.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

func UserFromContext(ctx context.Context) (User, bool) {
	v := ctx.Value(userContextKey)
	u, ok := v.(User)
	return u, ok
}

func SessionFromContext(ctx context.Context) (Session, bool) {
	v := ctx.Value(sessionContextKey)
	s, ok := v.(Session)
	return s, ok
}
