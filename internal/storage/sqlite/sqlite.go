// Package sqlite is the single choke-point for all reads and writes of the
// maintenance datastore: one SQLite file in WAL mode, owned by exactly one
// process at a time.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/brunte71/mymaintlog/internal/storage"
)

const defaultBusyTimeout = 5 * time.Second

// dbtx is satisfied by both *sql.DB and *sql.Tx so every entity operation
// works identically inside and outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type ops struct {
	c dbtx
}

// Store is the owned handle to the datastore. Construct with Open, pass
// explicitly to every component; there is no ambient global connection.
type Store struct {
	ops
	db   *sql.DB
	lock *os.File
}

// Tx exposes the same entity operations as Store, scoped to one
// transaction. Obtained only through Store.WithTx.
type Tx struct {
	ops
}

// Open opens or creates the datastore at path, enables WAL mode and runs
// any pending schema migrations. File-backed stores take an exclusive
// advisory lock on a .lock sidecar so a second process fails fast with
// ErrStorageUnavailable instead of corrupting state. Memory DSNs (used by
// tests) skip the lock.
func Open(path string, busyTimeout time.Duration) (*Store, error) {
	if busyTimeout <= 0 {
		busyTimeout = defaultBusyTimeout
	}
	var lock *os.File
	if fileBacked(path) {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("%w: create data dir: %v", storage.ErrStorageUnavailable, err)
			}
		}
		l, err := acquireLock(path + ".lock")
		if err != nil {
			return nil, err
		}
		lock = l
	}
	db, err := sql.Open("sqlite", dsn(path, busyTimeout))
	if err != nil {
		releaseLock(lock)
		return nil, fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}
	if err := migrate(context.Background(), db); err != nil {
		_ = db.Close()
		releaseLock(lock)
		return nil, fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}
	return &Store{ops: ops{c: db}, db: db, lock: lock}, nil
}

// Close closes the underlying pool and releases the single-writer lock.
func (s *Store) Close() error {
	err := s.db.Close()
	releaseLock(s.lock)
	return err
}

// SchemaVersion reports the schema version stored in the datastore itself.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, mapError(err)
	}
	return v, nil
}

// WithTx runs fn with all-or-nothing semantics: any error returned by fn
// rolls back every operation performed so far; on success all effects
// become visible atomically. Context cancellation mid-body rolls back.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(err)
	}
	if err := fn(&Tx{ops{c: tx}}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return mapError(err)
	}
	return nil
}

func fileBacked(path string) bool {
	return path != ":memory:" &&
		!strings.Contains(path, ":memory:") &&
		!strings.Contains(path, "mode=memory")
}

func dsn(path string, busyTimeout time.Duration) string {
	base := path
	if !strings.HasPrefix(base, "file:") {
		base = "file:" + base
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep +
		"_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=foreign_keys(1)" +
		fmt.Sprintf("&_pragma=busy_timeout(%d)", busyTimeout.Milliseconds())
}

func acquireLock(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: open lock file: %v", storage.ErrStorageUnavailable, err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s held by another process", storage.ErrStorageUnavailable, path)
	}
	return f, nil
}

func releaseLock(f *os.File) {
	if f == nil {
		return
	}
	_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
	_ = f.Close()
}

// mapError translates driver-level failures into the storage taxonomy.
// Primary key and unique violations become ErrDuplicateKey; busy/locked
// after the busy timeout become ErrWriteTimeout; everything else passes
// through untouched.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT,
			sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY,
			sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return fmt.Errorf("%w: %v", storage.ErrDuplicateKey, err)
		}
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return fmt.Errorf("%w: %v", storage.ErrWriteTimeout, err)
		}
	}
	return err
}

func whereClause(clauses []string) string {
	if len(clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(clauses, " AND ")
}
