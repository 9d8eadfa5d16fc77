package container

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/redcoll/conn"
)

// List is a list stored in the store.
type List struct{ base }

func NewList(key string, exec conn.Executor) *List {
	return &List{base{key: key, exec: exec}}
}

// With returns the same list bound to exec.
func (l *List) With(exec conn.Executor) *List { return NewList(l.key, exec) }

// All returns every element in order.
func (l *List) All(ctx context.Context) ([]string, error) {
	return l.exec.LRange(ctx, l.key, 0, -1).Result()
}

func (l *List) Len(ctx context.Context) (int64, error) {
	return l.exec.LLen(ctx, l.key).Result()
}

// Index returns the element at i. Negative i counts from the tail.
func (l *List) Index(ctx context.Context, i int64) (string, error) {
	v, err := l.exec.LIndex(ctx, l.key, i).Result()
	if errors.Is(err, redis.Nil) {
		return "", &IndexError{Key: l.key, Index: i}
	}
	return v, err
}

// Range returns elements start..stop inclusive, with the store's own
// clamping rules.
func (l *List) Range(ctx context.Context, start, stop int64) ([]string, error) {
	return l.exec.LRange(ctx, l.key, start, stop).Result()
}

// Slice returns elements in the half-open range [start, stop). Bounds are
// normalized against the current length, so it costs two commands.
func (l *List) Slice(ctx context.Context, start, stop int64) ([]string, error) {
	n, err := l.Len(ctx)
	if err != nil {
		return nil, err
	}
	start, stop, ok := Normalize(start, stop, n)
	if !ok {
		return []string{}, nil
	}
	return l.Range(ctx, start, stop-1)
}

// SetAt replaces the element at i.
func (l *List) SetAt(ctx context.Context, i int64, v any) error {
	err := l.exec.LSet(ctx, l.key, i, v).Err()
	if isRangeErr(err) {
		return &IndexError{Key: l.key, Index: i}
	}
	return err
}

// Append adds v to the tail.
func (l *List) Append(ctx context.Context, v any) error {
	return l.exec.RPush(ctx, l.key, v).Err()
}

// Extend appends vs in order with a single command.
func (l *List) Extend(ctx context.Context, vs []any) error {
	if len(vs) == 0 {
		return nil
	}
	return l.exec.RPush(ctx, l.key, vs...).Err()
}

// Count returns the number of occurrences of v.
func (l *List) Count(ctx context.Context, v string) (int, error) {
	all, err := l.All(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range all {
		if e == v {
			n++
		}
	}
	return n, nil
}

// IndexOf returns the first position of v or ErrNotFound.
func (l *List) IndexOf(ctx context.Context, v string) (int64, error) {
	all, err := l.All(ctx)
	if err != nil {
		return -1, err
	}
	for i, e := range all {
		if e == v {
			return int64(i), nil
		}
	}
	return -1, fmt.Errorf("list %q: %w: %q", l.key, ErrNotFound, v)
}

// Pop removes and returns the last element; ok is false on an empty list.
func (l *List) Pop(ctx context.Context) (v string, ok bool, err error) {
	return optional(l.exec.RPop(ctx, l.key))
}

// Shift removes and returns the first element.
func (l *List) Shift(ctx context.Context) (v string, ok bool, err error) {
	return optional(l.exec.LPop(ctx, l.key))
}

// Unshift adds v at the head.
func (l *List) Unshift(ctx context.Context, v any) error {
	return l.exec.LPush(ctx, l.key, v).Err()
}

// PopOnto atomically moves the last element to the head of the list at dest.
func (l *List) PopOnto(ctx context.Context, dest string) (v string, ok bool, err error) {
	return optional(l.exec.RPopLPush(ctx, l.key, dest))
}

// Remove deletes up to n occurrences of v (n == 0 removes all, n < 0
// scans from the tail) and returns how many were removed.
func (l *List) Remove(ctx context.Context, v any, n int64) (int64, error) {
	return l.exec.LRem(ctx, l.key, n, v).Result()
}

// Reverse reverses the list. It reads, clears and rewrites the list, so it
// is only atomic when l is bound to a transaction.
func (l *List) Reverse(ctx context.Context) error {
	all, err := l.All(ctx)
	if err != nil {
		return err
	}
	rev := make([]any, len(all))
	for i, v := range all {
		rev[len(all)-1-i] = v
	}
	if err := l.Clear(ctx); err != nil {
		return err
	}
	return l.Extend(ctx, rev)
}

// Copy replaces the list at dest with the contents of l.
func (l *List) Copy(ctx context.Context, dest string) (*List, error) {
	all, err := l.All(ctx)
	if err != nil {
		return nil, err
	}
	cp := NewList(dest, l.exec)
	if err := cp.Clear(ctx); err != nil {
		return nil, err
	}
	vs := make([]any, len(all))
	for i, v := range all {
		vs[i] = v
	}
	if err := cp.Extend(ctx, vs); err != nil {
		return nil, err
	}
	return cp, nil
}

// Trim keeps only elements start..stop inclusive.
func (l *List) Trim(ctx context.Context, start, stop int64) error {
	return l.exec.LTrim(ctx, l.key, start, stop).Err()
}

func (l *List) Repr(ctx context.Context) (string, error) {
	all, err := l.All(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("<List %q %q>", l.key, all), nil
}
