// Package storage implements the durable key-value store behind preferences
// and the offline weather cache. Every backend keeps one slot per key and
// overwrites it on Set.
package storage

import "errors"

// ErrEmptyKey is returned for operations on an empty key
var ErrEmptyKey = errors.New("storage key cannot be empty")
