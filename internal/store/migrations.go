package store

import (
	_ "embed"
	"fmt"
)

//go:embed migrations/01_create_users.up.sql
var createUsersUp string

//go:embed migrations/02_create_buckets.up.sql
var createBucketsUp string

//go:embed migrations/03_create_tasks.up.sql
var createTasksUp string

//go:embed migrations/04_create_auth_tokens.up.sql
var createAuthTokensUp string

// Migrate applies the schema in order. Every statement is idempotent
// (CREATE ... IF NOT EXISTS) so re-running on an up-to-date database
// is a no-op.
func (s *Store) Migrate() error {
	steps := []struct {
		name string
		sql  string
	}{
		{"users", createUsersUp},
		{"buckets", createBucketsUp},
		{"tasks", createTasksUp},
		{"auth_tokens", createAuthTokensUp},
	}
	for _, step := range steps {
		s.log.Printf("applying %s migration", step.name)
		if _, err := s.DB.Exec(step.sql); err != nil {
			return fmt.Errorf("apply %s migration: %w", step.name, err)
		}
	}
	return nil
}
