// Package store provides the key-value blob storage that backs articles,
// preferences and the share inbox.
package store

import (
	"errors"
	"regexp"
)

var (
	// ErrNotFound is returned by Get when a key has never been written or
	// has been deleted.
	ErrNotFound = errors.New("key not found")

	// ErrInvalidKey is returned for keys outside [A-Za-z0-9._-].
	ErrInvalidKey = errors.New("invalid key")
)

// Store persists opaque values under string keys.
type Store interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidKey reports whether key can be used with every backend.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key) && key != "." && key != ".."
}
