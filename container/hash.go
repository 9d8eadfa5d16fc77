package container

import (
	"context"
	"fmt"
	"sort"

	"github.com/unkn0wn-root/redcoll/conn"
)

// Hash is a field/value map stored in the store.
type Hash struct{ base }

func NewHash(key string, exec conn.Executor) *Hash {
	return &Hash{base{key: key, exec: exec}}
}

func (h *Hash) With(exec conn.Executor) *Hash { return NewHash(h.key, exec) }

// Get returns the value of field; ok is false when the field is absent.
func (h *Hash) Get(ctx context.Context, field string) (string, bool, error) {
	return optional(h.exec.HGet(ctx, h.key, field))
}

func (h *Hash) Set(ctx context.Context, field string, v any) error {
	return h.exec.HSet(ctx, h.key, field, v).Err()
}

// Del removes fields and returns how many existed.
func (h *Hash) Del(ctx context.Context, fields ...string) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}
	return h.exec.HDel(ctx, h.key, fields...).Result()
}

func (h *Hash) Len(ctx context.Context) (int64, error) {
	return h.exec.HLen(ctx, h.key).Result()
}

func (h *Hash) Keys(ctx context.Context) ([]string, error) {
	return h.exec.HKeys(ctx, h.key).Result()
}

func (h *Hash) Values(ctx context.Context) ([]string, error) {
	return h.exec.HVals(ctx, h.key).Result()
}

// All returns the whole hash.
func (h *Hash) All(ctx context.Context) (map[string]string, error) {
	return h.exec.HGetAll(ctx, h.key).Result()
}

func (h *Hash) Contains(ctx context.Context, field string) (bool, error) {
	return h.exec.HExists(ctx, h.key, field).Result()
}

// IncrBy adds n to the integer stored at field and returns the result.
func (h *Hash) IncrBy(ctx context.Context, field string, n int64) (int64, error) {
	return h.exec.HIncrBy(ctx, h.key, field, n).Result()
}

// MGet returns the requested fields that exist.
func (h *Hash) MGet(ctx context.Context, fields ...string) (map[string]string, error) {
	out := make(map[string]string, len(fields))
	if len(fields) == 0 {
		return out, nil
	}
	vals, err := h.exec.HMGet(ctx, h.key, fields...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		if v == nil || i >= len(fields) {
			continue
		}
		out[fields[i]] = fmt.Sprint(v)
	}
	return out, nil
}

// Update sets every field in m.
func (h *Hash) Update(ctx context.Context, m map[string]any) error {
	if len(m) == 0 {
		return nil
	}
	return h.exec.HSet(ctx, h.key, m).Err()
}

// Replace clears the hash and stores m in its place.
func (h *Hash) Replace(ctx context.Context, m map[string]any) error {
	if err := h.Clear(ctx); err != nil {
		return err
	}
	return h.Update(ctx, m)
}

func (h *Hash) Repr(ctx context.Context) (string, error) {
	all, err := h.All(ctx)
	if err != nil {
		return "", err
	}
	fields := make([]string, 0, len(all))
	for f := range all {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	pairs := make([]string, len(fields))
	for i, f := range fields {
		pairs[i] = fmt.Sprintf("%q:%q", f, all[f])
	}
	return fmt.Sprintf("<Hash %q %v>", h.key, pairs), nil
}
