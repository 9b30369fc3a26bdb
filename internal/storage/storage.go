// Package storage provides the key-value backends behind the booking store:
// a durable SQLite store with a size quota, Redis, and an in-memory session store.
package storage

import "errors"

// ErrQuotaExceeded is returned when a write would exceed the configured quota.
var ErrQuotaExceeded = errors.New("storage quota exceeded")
