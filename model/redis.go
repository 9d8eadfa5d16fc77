package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/redcoll/codec"
	"github.com/unkn0wn-root/redcoll/conn"
)

// RedisRepository keeps each entity as one encoded string value at
// "<namespace>:<id>".
type RedisRepository[T Entity] struct {
	exec  conn.Executor
	ns    string
	codec codec.Codec[T]
	ttl   time.Duration
}

var _ BatchRepository[Entity] = (*RedisRepository[Entity])(nil)

type RedisOptions[T Entity] struct {
	Namespace string // required, e.g. "user"
	Executor  conn.Executor
	Codec     codec.Codec[T]
	TTL       time.Duration // 0 => no expiry
}

func NewRedisRepository[T Entity](opts RedisOptions[T]) (*RedisRepository[T], error) {
	if opts.Namespace == "" {
		return nil, errors.New("model: namespace is required")
	}
	if opts.Executor == nil {
		return nil, errors.New("model: executor is required")
	}
	if opts.Codec == nil {
		return nil, errors.New("model: codec is required")
	}
	return &RedisRepository[T]{exec: opts.Executor, ns: opts.Namespace, codec: opts.Codec, ttl: opts.TTL}, nil
}

func (r *RedisRepository[T]) key(id string) string { return r.ns + ":" + id }

// Namespace returns the key prefix entities are stored under.
func (r *RedisRepository[T]) Namespace() string { return r.ns }

func (r *RedisRepository[T]) Save(ctx context.Context, v T) error {
	id := v.EntityID()
	if id == "" {
		return fmt.Errorf("model %s: entity has empty id", r.ns)
	}
	b, err := r.codec.Encode(v)
	if err != nil {
		return fmt.Errorf("model %s: encode %q: %w", r.ns, id, err)
	}
	return r.exec.Set(ctx, r.key(id), b, r.ttl).Err()
}

func (r *RedisRepository[T]) GetByID(ctx context.Context, id string) (T, bool, error) {
	var zero T
	s, err := r.exec.Get(ctx, r.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}
	v, err := r.codec.Decode([]byte(s))
	if err != nil {
		return zero, false, fmt.Errorf("model %s: decode %q: %w", r.ns, id, err)
	}
	return v, true, nil
}

// GetManyByID fetches ids with a single MGET.
func (r *RedisRepository[T]) GetManyByID(ctx context.Context, ids []string) (map[string]T, error) {
	out := make(map[string]T, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.key(id)
	}
	vals, err := r.exec.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, raw := range vals {
		var b []byte
		switch x := raw.(type) {
		case nil:
			continue
		case string:
			b = []byte(x)
		case []byte:
			b = x
		default:
			b = []byte(fmt.Sprint(x))
		}
		v, err := r.codec.Decode(b)
		if err != nil {
			return nil, fmt.Errorf("model %s: decode %q: %w", r.ns, ids[i], err)
		}
		out[ids[i]] = v
	}
	return out, nil
}

// Delete removes the entity; deleting a missing id is not an error.
func (r *RedisRepository[T]) Delete(ctx context.Context, id string) error {
	return r.exec.Del(ctx, r.key(id)).Err()
}
