package library

import (
	"database/sql"
	"strings"
	"sync"
)

// Store provides access to records and settings.
type Store struct {
	db *sql.DB

	// nameLocks serializes the read-then-write upsert per title name so
	// two concurrent generations for the same name cannot race.
	mu        sync.Mutex
	nameLocks map[string]*sync.Mutex
}

// NewStore creates a new store over an open database.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:        db,
		nameLocks: make(map[string]*sync.Mutex),
	}
}

// lockName acquires the per-name mutex and returns its unlock func.
func (s *Store) lockName(name string) func() {
	s.mu.Lock()
	l, ok := s.nameLocks[name]
	if !ok {
		l = &sync.Mutex{}
		s.nameLocks[name] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// mapSQLiteError converts SQLite errors to package error types.
// modernc.org/sqlite wraps errors, so constraint violations are detected
// by message.
func mapSQLiteError(err error) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	errStr := err.Error()
	if strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "PRIMARY KEY constraint failed") {
		return ErrDuplicate
	}
	return err
}
