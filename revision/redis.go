package revision

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/redcoll/conn"
)

// Redis shares revisions across processes and survives restarts.
// With a TTL, idle revision keys expire; readers then observe revision 0
// and cached entries stamped with a higher revision self-heal.
type Redis struct {
	exec conn.Executor
	ns   string        // should match the cache namespace
	ttl  time.Duration // 0 disables expiry
}

var _ Store = (*Redis)(nil)

// NewRedis returns a store issuing commands through exec. If ttl <= 0,
// keys do not expire.
func NewRedis(exec conn.Executor, namespace string, ttl time.Duration) *Redis {
	return &Redis{exec: exec, ns: namespace, ttl: ttl}
}

func (s *Redis) key(k string) string { return "rev:" + s.ns + ":" + k }

func (s *Redis) Snapshot(ctx context.Context, k string) (uint64, error) {
	res, err := s.exec.Get(ctx, s.key(k)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	u, err := strconv.ParseUint(res, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("revision parse %s: %w", k, err)
	}
	return u, nil
}

func (s *Redis) SnapshotMany(ctx context.Context, ks []string) (map[string]uint64, error) {
	out := make(map[string]uint64, len(ks))
	if len(ks) == 0 {
		return out, nil
	}
	keys := make([]string, len(ks))
	for i, k := range ks {
		keys[i] = s.key(k)
	}
	vals, err := s.exec.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		if i >= len(ks) {
			break
		}
		var raw string
		switch vv := v.(type) {
		case nil:
			out[ks[i]] = 0
			continue
		case string:
			raw = vv
		case []byte:
			raw = string(vv)
		default:
			raw = fmt.Sprint(vv)
		}
		u, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("revision parse %s: %w", ks[i], err)
		}
		out[ks[i]] = u
	}
	return out, nil
}

// Bump increments the revision and, with a TTL, refreshes its expiry.
// Bind the store to a transaction pipeline if INCR and EXPIRE must land
// together.
func (s *Redis) Bump(ctx context.Context, k string) (uint64, error) {
	key := s.key(k)
	v, err := s.exec.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if s.ttl > 0 {
		if err := s.exec.Expire(ctx, key, s.ttl).Err(); err != nil {
			return uint64(v), err
		}
	}
	return uint64(v), nil
}

// Cleanup is a no-op; expiry is left to the store.
func (s *Redis) Cleanup(time.Duration) {}

// Close is a no-op; the executor belongs to the caller.
func (s *Redis) Close(context.Context) error { return nil }
