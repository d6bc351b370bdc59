package domain

import "errors"

// Sentinel errors for cache and storage operations
var (
	// ErrFileUnreadable indicates the cache file exists but could not be read or parsed
	ErrFileUnreadable = errors.New("cache file is unreadable")

	// ErrFileUnwritable indicates the cache file could not be written
	ErrFileUnwritable = errors.New("cache file is unwritable")

	// ErrStaleFormat indicates a persisted record was written by an older cache format
	ErrStaleFormat = errors.New("cache record has a stale format version")

	// ErrExpired indicates a persisted record outlived its lifetime
	ErrExpired = errors.New("cache record expired")

	// ErrInvalidName indicates an empty key or flag name, or one containing a comma
	ErrInvalidName = errors.New("invalid cache key or flag name")

	// ErrRegistryClosed indicates the session registry was used after Close
	ErrRegistryClosed = errors.New("session registry is closed")
)
