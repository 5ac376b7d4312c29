// Package store persists whole collections under string keys.
//
// Every Put replaces the value stored under the key; there is no partial
// update. Values are JSON encoded. Three backends are available: sqlite (one
// table in a modernc.org/sqlite database), file (one JSON file per key) and
// memory.
package store

import (
	"context"
	"fmt"
	"regexp"
)

// Collection keys.
const (
	KeySavedImages = "saved_images"
	KeyPresets     = "presets"
	KeyUsage       = "usage"
)

// Backend names.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// KV is a key-value store of JSON-encoded collections.
type KV interface {
	// Get decodes the value under key into dst. It reports false, with no
	// error, when the key has never been written.
	Get(ctx context.Context, key string, dst any) (bool, error)
	// Put replaces the value under key.
	Put(ctx context.Context, key string, value any) error
	Close() error
}

var keyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

func checkKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("invalid store key %q", key)
	}
	return nil
}

// Open opens the named backend. path is the database file for sqlite and the
// directory for file; memory ignores it.
func Open(backend, path string) (KV, error) {
	switch backend {
	case BackendSQLite:
		return OpenSQLite(path)
	case BackendFile:
		return OpenFile(path)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", backend)
	}
}
