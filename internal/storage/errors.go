package storage

import "errors"

// Error taxonomy shared by every component that talks to the store.
// Callers match with errors.Is; the sqlite layer wraps driver errors into
// these before they leave the package.
var (
	// ErrStorageUnavailable means the datastore file could not be opened,
	// created or migrated. Fatal: callers must not proceed against a
	// partially-open store.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrDuplicateKey means an insert hit an existing primary key. The
	// importer relies on this as ordinary control flow to skip rows that
	// were already migrated.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrNotFound means an update or delete targeted a missing row.
	ErrNotFound = errors.New("not found")

	// ErrWriteTimeout means writer contention exceeded the configured
	// busy timeout. Recoverable: the caller may retry.
	ErrWriteTimeout = errors.New("write timeout")
)
