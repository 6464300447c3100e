package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

// Store owns the offers database. A sidecar flock serializes writers across
// processes (a scheduled run overlapping a manual one); within a process all
// writes are sequential.
type Store struct {
	Pool *sql.DB
	lock *flock.Flock
}

func Open(path string) (*Store, error) {
	// modernc sqlite DSN: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	pool.SetMaxOpenConns(1) // sqlite wants a single writer
	pool.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}

	return &Store{
		Pool: pool,
		lock: flock.New(path + ".lock"),
	}, nil
}

func (s *Store) Close() error {
	if s == nil || s.Pool == nil {
		return nil
	}
	return s.Pool.Close()
}

// withWriteLock runs fn while holding the cross-process writer lock.
func (s *Store) withWriteLock(fn func() error) error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("acquire db lock: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()
	return fn()
}
