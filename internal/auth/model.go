package auth

import "time"

type User struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// LoginToken is a pending magic-link login. The raw token only ever
// lives in the emailed link; the store keeps its hash. DeviceHash binds
// the link to the browser that requested it, so a forwarded email does
// not log someone else in.
type LoginToken struct {
	ID          string    `db:"id" json:"id"`
	Email       string    `db:"email" json:"email"`
	TokenHash   string    `db:"token_hash" json:"tokenHash"`
	DeviceHash  string    `db:"device_hash" json:"deviceHash"`
	LandingPage string    `db:"landing_page" json:"landingPage"`
	RequestedAt time.Time `db:"requested_at" json:"requestedAt"`
	ExpiresAt   time.Time `db:"expires_at" json:"expiresAt"`
}

type Session struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	TokenHash string    `db:"token_hash" json:"tokenHash"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	LastSeen  time.Time `db:"last_seen" json:"lastSeen"`
	ExpiresAt time.Time `db:"expires_at" json:"expiresAt"`
}
