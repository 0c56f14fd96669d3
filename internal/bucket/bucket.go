// Package bucket holds the user-defined project groupings a task can
// optionally belong to. Buckets are addressed by a URL slug derived
// from their name.
package bucket

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/gosimple/slug"
)

var (
	ErrNotFound = errors.New("bucket not found")
	ErrExists   = errors.New("bucket id already exists")
)

type Bucket struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Slugify derives the URL-safe slug for a bucket name. Uniqueness is
// not enforced anywhere; lookup is first-match, so two buckets slugging
// to the same value leave one unreachable by URL. Known gap.
func Slugify(name string) string {
	return slug.Make(name)
}

func newID(prefix string) string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return prefix + "_" + hex.EncodeToString(b[:])
}
