// Package revision keeps a monotonically increasing counter per cached
// entity. A cache entry stamped with an older revision than the current
// one is stale and must not be served.
package revision

import (
	"context"
	"time"
)

// Store abstracts where revisions live.
// Use Local for a single process, Redis to share revisions across replicas.
type Store interface {
	// Snapshot returns the current revision; missing => 0.
	Snapshot(ctx context.Context, key string) (uint64, error)
	// SnapshotMany returns revisions for many keys; missing => 0.
	SnapshotMany(ctx context.Context, keys []string) (map[string]uint64, error)
	// Bump atomically increments and returns the new revision.
	Bump(ctx context.Context, key string) (uint64, error)
	// Cleanup prunes revisions untouched for longer than retention
	// (no-op where the backend expires them itself).
	Cleanup(retention time.Duration)
	// Close releases resources (no-op ok).
	Close(context.Context) error
}
