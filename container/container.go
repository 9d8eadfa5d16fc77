// Package container maps collection semantics onto the store's native
// commands. Each container holds only its key and the executor it issues
// commands through; nothing is cached locally.
//
// Containers are cheap values. Bind the same container to a pipeline with
// With to batch several commands:
//
//	pipe := rdb.Pipeline()
//	l.With(pipe).Append(ctx, "a")
//	l.With(pipe).Append(ctx, "b")
//	_, err := pipe.Exec(ctx)
//
// Reads issued through a pipeline return zero values until Exec runs.
package container

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/redcoll/conn"
)

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrNotMember       = errors.New("value is not a member")
	ErrNotFound        = errors.New("value not found")
)

// IndexError reports an index outside the collection's current bounds.
type IndexError struct {
	Key   string
	Index int64
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("container %q: index %d out of range", e.Key, e.Index)
}

func (e *IndexError) Is(target error) bool { return target == ErrIndexOutOfRange }

type base struct {
	key  string
	exec conn.Executor
}

// Key returns the key the container is stored at.
func (b base) Key() string { return b.key }

// Clear removes the whole collection from the store.
func (b base) Clear(ctx context.Context) error {
	return b.exec.Del(ctx, b.key).Err()
}

// optional turns a nil reply into ok=false.
func optional(cmd *redis.StringCmd) (string, bool, error) {
	v, err := cmd.Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func isRangeErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "index out of range") || strings.Contains(msg, "no such key")
}

// Normalize applies slice bounds semantics (negative counts from the end,
// clamped to [0, n]) and reports whether the half-open range is non-empty.
func Normalize(start, stop, n int64) (int64, int64, bool) {
	clamp := func(i int64) int64 {
		if i < 0 {
			i += n
			if i < 0 {
				i = 0
			}
		}
		if i > n {
			i = n
		}
		return i
	}
	start, stop = clamp(start), clamp(stop)
	return start, stop, start < stop
}
