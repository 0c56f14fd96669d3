// Package store owns the Postgres connection and schema. Repos in the
// other packages borrow its *sqlx.DB; nothing else touches the driver.
package store

import (
	"context"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

type Store struct {
	DB  *sqlx.DB
	log *log.Logger
}

// Open connects to Postgres over the pgx stdlib driver and verifies
// the connection before handing it out.
func Open(dsn string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.Default()
	}
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{DB: db, log: logger}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}
