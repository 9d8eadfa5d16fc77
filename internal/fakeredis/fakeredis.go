// Package fakeredis is an in-memory conn.Executor for tests.
// It follows the store's reply semantics for the commands the module issues
// (nil replies, negative indexes, empty-key removal, WRONGTYPE) closely
// enough for container and typed-list tests. It is not a server.
package fakeredis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/redcoll/conn"
)

var (
	ErrWrongType     = errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")
	ErrIndexRange    = errors.New("ERR index out of range")
	ErrNoSuchKey     = errors.New("ERR no such key")
	ErrNotInteger    = errors.New("ERR value is not an integer or out of range")
	ErrMinMaxFloat   = errors.New("ERR min or max is not a float")
	errOddHSetValues = errors.New("ERR wrong number of arguments for 'hset' command")
)

type zset map[string]float64

// Store is safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	data   map[string]any // []string | map[string]struct{} | zset | map[string]string | string
	ttl    map[string]time.Duration
	calls  map[string]int
	failOn map[string]error
}

var _ conn.Executor = (*Store)(nil)

func New() *Store {
	return &Store{
		data:   make(map[string]any),
		ttl:    make(map[string]time.Duration),
		calls:  make(map[string]int),
		failOn: make(map[string]error),
	}
}

// FailOn makes every future call of cmd (e.g. "lrange") return err.
// A nil err clears the failure.
func (s *Store) FailOn(cmd string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cmd = strings.ToLower(cmd)
	if err == nil {
		delete(s.failOn, cmd)
		return
	}
	s.failOn[cmd] = err
}

// Calls reports how many times cmd was issued.
func (s *Store) Calls(cmd string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[strings.ToLower(cmd)]
}

// ResetCalls zeroes all command counters.
func (s *Store) ResetCalls() {
	s.mu.Lock()
	s.calls = make(map[string]int)
	s.mu.Unlock()
}

// Exists reports whether key holds any value.
func (s *Store) Exists(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

// TTL returns the last expiration set on key.
func (s *Store) TTL(key string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ttl[key]
}

// enter locks the store and records the call. The caller must unlock.
func (s *Store) enter(cmd string) error {
	s.mu.Lock()
	s.calls[cmd]++
	return s.failOn[cmd]
}

func str(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "1"
		}
		return "0"
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

// drop removes empty collections, matching the store's behavior.
func (s *Store) drop(key string) {
	switch v := s.data[key].(type) {
	case []string:
		if len(v) == 0 {
			delete(s.data, key)
		}
	case map[string]struct{}:
		if len(v) == 0 {
			delete(s.data, key)
		}
	case zset:
		if len(v) == 0 {
			delete(s.data, key)
		}
	case map[string]string:
		if len(v) == 0 {
			delete(s.data, key)
		}
	}
}

func (s *Store) list(key string) ([]string, error) {
	v, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	l, ok := v.([]string)
	if !ok {
		return nil, ErrWrongType
	}
	return l, nil
}

func (s *Store) set(key string) (map[string]struct{}, error) {
	v, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	m, ok := v.(map[string]struct{})
	if !ok {
		return nil, ErrWrongType
	}
	return m, nil
}

func (s *Store) zset(key string) (zset, error) {
	v, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	z, ok := v.(zset)
	if !ok {
		return nil, ErrWrongType
	}
	return z, nil
}

func (s *Store) hash(key string) (map[string]string, error) {
	v, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	h, ok := v.(map[string]string)
	if !ok {
		return nil, ErrWrongType
	}
	return h, nil
}

// span normalizes an inclusive [start, stop] range over n elements.
func span(start, stop int64, n int) (int, int, bool) {
	ln := int64(n)
	if start < 0 {
		start += ln
	}
	if stop < 0 {
		stop += ln
	}
	if start < 0 {
		start = 0
	}
	if stop >= ln {
		stop = ln - 1
	}
	if start > stop || start >= ln {
		return 0, 0, false
	}
	return int(start), int(stop), true
}

// ---- keys / strings

func (s *Store) Del(_ context.Context, keys ...string) *redis.IntCmd {
	if err := s.enter("del"); err != nil {
		s.mu.Unlock()
		return redis.NewIntResult(0, err)
	}
	defer s.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := s.data[k]; ok {
			delete(s.data, k)
			delete(s.ttl, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (s *Store) Get(_ context.Context, key string) *redis.StringCmd {
	if err := s.enter("get"); err != nil {
		s.mu.Unlock()
		return redis.NewStringResult("", err)
	}
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	sv, ok := v.(string)
	if !ok {
		return redis.NewStringResult("", ErrWrongType)
	}
	return redis.NewStringResult(sv, nil)
}

func (s *Store) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if err := s.enter("set"); err != nil {
		s.mu.Unlock()
		return redis.NewStatusResult("", err)
	}
	defer s.mu.Unlock()
	s.data[key] = str(value)
	if expiration > 0 {
		s.ttl[key] = expiration
	} else {
		delete(s.ttl, key)
	}
	return redis.NewStatusResult("OK", nil)
}

func (s *Store) MGet(_ context.Context, keys ...string) *redis.SliceCmd {
	if err := s.enter("mget"); err != nil {
		s.mu.Unlock()
		return redis.NewSliceResult(nil, err)
	}
	defer s.mu.Unlock()
	out := make([]interface{}, len(keys))
	for i, k := range keys {
		if sv, ok := s.data[k].(string); ok {
			out[i] = sv
		}
	}
	return redis.NewSliceResult(out, nil)
}

func (s *Store) Incr(_ context.Context, key string) *redis.IntCmd {
	if err := s.enter("incr"); err != nil {
		s.mu.Unlock()
		return redis.NewIntResult(0, err)
	}
	defer s.mu.Unlock()
	var cur int64
	if v, ok := s.data[key]; ok {
		sv, ok := v.(string)
		if !ok {
			return redis.NewIntResult(0, ErrWrongType)
		}
		n, err := strconv.ParseInt(sv, 10, 64)
		if err != nil {
			return redis.NewIntResult(0, ErrNotInteger)
		}
		cur = n
	}
	cur++
	s.data[key] = strconv.FormatInt(cur, 10)
	return redis.NewIntResult(cur, nil)
}

func (s *Store) Expire(_ context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	if err := s.enter("expire"); err != nil {
		s.mu.Unlock()
		return redis.NewBoolResult(false, err)
	}
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return redis.NewBoolResult(false, nil)
	}
	s.ttl[key] = expiration
	return redis.NewBoolResult(true, nil)
}

// ---- lists

func (s *Store) LRange(_ context.Context, key string, start, stop int64) *redis.StringSliceCmd {
	if err := s.enter("lrange"); err != nil {
		s.mu.Unlock()
		return redis.NewStringSliceResult(nil, err)
	}
	defer s.mu.Unlock()
	l, err := s.list(key)
	if err != nil {
		return redis.NewStringSliceResult(nil, err)
	}
	i, j, ok := span(start, stop, len(l))
	if !ok {
		return redis.NewStringSliceResult([]string{}, nil)
	}
	out := make([]string, j-i+1)
	copy(out, l[i:j+1])
	return redis.NewStringSliceResult(out, nil)
}

func (s *Store) LLen(_ context.Context, key string) *redis.IntCmd {
	if err := s.enter("llen"); err != nil {
		s.mu.Unlock()
		return redis.NewIntResult(0, err)
	}
	defer s.mu.Unlock()
	l, err := s.list(key)
	return redis.NewIntResult(int64(len(l)), err)
}

func (s *Store) LIndex(_ context.Context, key string, index int64) *redis.StringCmd {
	if err := s.enter("lindex"); err != nil {
		s.mu.Unlock()
		return redis.NewStringResult("", err)
	}
	defer s.mu.Unlock()
	l, err := s.list(key)
	if err != nil {
		return redis.NewStringResult("", err)
	}
	if index < 0 {
		index += int64(len(l))
	}
	if index < 0 || index >= int64(len(l)) {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(l[index], nil)
}

func (s *Store) LSet(_ context.Context, key string, index int64, value interface{}) *redis.StatusCmd {
	if err := s.enter("lset"); err != nil {
		s.mu.Unlock()
		return redis.NewStatusResult("", err)
	}
	defer s.mu.Unlock()
	l, err := s.list(key)
	if err != nil {
		return redis.NewStatusResult("", err)
	}
	if l == nil {
		return redis.NewStatusResult("", ErrNoSuchKey)
	}
	if index < 0 {
		index += int64(len(l))
	}
	if index < 0 || index >= int64(len(l)) {
		return redis.NewStatusResult("", ErrIndexRange)
	}
	l[index] = str(value)
	return redis.NewStatusResult("OK", nil)
}

func (s *Store) push(cmd, key string, head bool, values []interface{}) *redis.IntCmd {
	if err := s.enter(cmd); err != nil {
		s.mu.Unlock()
		return redis.NewIntResult(0, err)
	}
	defer s.mu.Unlock()
	l, err := s.list(key)
	if err != nil {
		return redis.NewIntResult(0, err)
	}
	for _, v := range values {
		if head {
			l = append([]string{str(v)}, l...)
		} else {
			l = append(l, str(v))
		}
	}
	s.data[key] = l
	s.drop(key)
	return redis.NewIntResult(int64(len(l)), nil)
}

func (s *Store) LPush(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	return s.push("lpush", key, true, values)
}

func (s *Store) RPush(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	return s.push("rpush", key, false, values)
}

func (s *Store) pop(cmd, key string, head bool) *redis.StringCmd {
	if err := s.enter(cmd); err != nil {
		s.mu.Unlock()
		return redis.NewStringResult("", err)
	}
	defer s.mu.Unlock()
	l, err := s.list(key)
	if err != nil {
		return redis.NewStringResult("", err)
	}
	if len(l) == 0 {
		return redis.NewStringResult("", redis.Nil)
	}
	var v string
	if head {
		v, l = l[0], l[1:]
	} else {
		v, l = l[len(l)-1], l[:len(l)-1]
	}
	s.data[key] = l
	s.drop(key)
	return redis.NewStringResult(v, nil)
}

func (s *Store) LPop(_ context.Context, key string) *redis.StringCmd { return s.pop("lpop", key, true) }
func (s *Store) RPop(_ context.Context, key string) *redis.StringCmd { return s.pop("rpop", key, false) }

func (s *Store) LRem(_ context.Context, key string, count int64, value interface{}) *redis.IntCmd {
	if err := s.enter("lrem"); err != nil {
		s.mu.Unlock()
		return redis.NewIntResult(0, err)
	}
	defer s.mu.Unlock()
	l, err := s.list(key)
	if err != nil {
		return redis.NewIntResult(0, err)
	}
	target := str(value)
	limit := count
	if limit < 0 {
		limit = -limit
	}
	keep := make([]bool, len(l))
	var removed int64
	visit := func(i int) {
		if l[i] == target && (limit == 0 || removed < limit) {
			removed++
			return
		}
		keep[i] = true
	}
	if count >= 0 {
		for i := range l {
			visit(i)
		}
	} else {
		for i := len(l) - 1; i >= 0; i-- {
			visit(i)
		}
	}
	out := make([]string, 0, len(l))
	for i, v := range l {
		if keep[i] {
			out = append(out, v)
		}
	}
	if l != nil {
		s.data[key] = out
		s.drop(key)
	}
	return redis.NewIntResult(removed, nil)
}

func (s *Store) LTrim(_ context.Context, key string, start, stop int64) *redis.StatusCmd {
	if err := s.enter("ltrim"); err != nil {
		s.mu.Unlock()
		return redis.NewStatusResult("", err)
	}
	defer s.mu.Unlock()
	l, err := s.list(key)
	if err != nil {
		return redis.NewStatusResult("", err)
	}
	if l == nil {
		return redis.NewStatusResult("OK", nil)
	}
	i, j, ok := span(start, stop, len(l))
	if !ok {
		delete(s.data, key)
		return redis.NewStatusResult("OK", nil)
	}
	s.data[key] = append([]string(nil), l[i:j+1]...)
	return redis.NewStatusResult("OK", nil)
}

func (s *Store) RPopLPush(_ context.Context, source, destination string) *redis.StringCmd {
	if err := s.enter("rpoplpush"); err != nil {
		s.mu.Unlock()
		return redis.NewStringResult("", err)
	}
	defer s.mu.Unlock()
	src, err := s.list(source)
	if err != nil {
		return redis.NewStringResult("", err)
	}
	dst, err := s.list(destination)
	if err != nil {
		return redis.NewStringResult("", err)
	}
	if len(src) == 0 {
		return redis.NewStringResult("", redis.Nil)
	}
	v, rest := src[len(src)-1], src[:len(src)-1]
	if source == destination {
		dst = rest
	} else {
		s.data[source] = rest
		s.drop(source)
	}
	s.data[destination] = append([]string{v}, dst...)
	return redis.NewStringResult(v, nil)
}

// ---- sets

func (s *Store) SAdd(_ context.Context, key string, members ...interface{}) *redis.IntCmd {
	if err := s.enter("sadd"); err != nil {
		s.mu.Unlock()
		return redis.NewIntResult(0, err)
	}
	defer s.mu.Unlock()
	m, err := s.set(key)
	if err != nil {
		return redis.NewIntResult(0, err)
	}
	if m == nil {
		m = make(map[string]struct{})
	}
	var n int64
	for _, v := range flatten(members) {
		if _, ok := m[v]; !ok {
			m[v] = struct{}{}
			n++
		}
	}
	s.data[key] = m
	s.drop(key)
	return redis.NewIntResult(n, nil)
}

// flatten expands []string arguments the way the client does.
func flatten(vs []interface{}) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		switch x := v.(type) {
		case []string:
			out = append(out, x...)
		case []interface{}:
			out = append(out, flatten(x)...)
		default:
			out = append(out, str(x))
		}
	}
	return out
}

func (s *Store) SRem(_ context.Context, key string, members ...interface{}) *redis.IntCmd {
	if err := s.enter("srem"); err != nil {
		s.mu.Unlock()
		return redis.NewIntResult(0, err)
	}
	defer s.mu.Unlock()
	m, err := s.set(key)
	if err != nil {
		return redis.NewIntResult(0, err)
	}
	var n int64
	for _, v := range flatten(members) {
		if _, ok := m[v]; ok {
			delete(m, v)
			n++
		}
	}
	s.drop(key)
	return redis.NewIntResult(n, nil)
}

func sortedMembers(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s *Store) SPop(_ context.Context, key string) *redis.StringCmd {
	if err := s.enter("spop"); err != nil {
		s.mu.Unlock()
		return redis.NewStringResult("", err)
	}
	defer s.mu.Unlock()
	m, err := s.set(key)
	if err != nil {
		return redis.NewStringResult("", err)
	}
	if len(m) == 0 {
		return redis.NewStringResult("", redis.Nil)
	}
	v := sortedMembers(m)[0]
	delete(m, v)
	s.drop(key)
	return redis.NewStringResult(v, nil)
}

func (s *Store) SMembers(_ context.Context, key string) *redis.StringSliceCmd {
	if err := s.enter("smembers"); err != nil {
		s.mu.Unlock()
		return redis.NewStringSliceResult(nil, err)
	}
	defer s.mu.Unlock()
	m, err := s.set(key)
	if err != nil {
		return redis.NewStringSliceResult(nil, err)
	}
	return redis.NewStringSliceResult(sortedMembers(m), nil)
}

func (s *Store) SCard(_ context.Context, key string) *redis.IntCmd {
	if err := s.enter("scard"); err != nil {
		s.mu.Unlock()
		return redis.NewIntResult(0, err)
	}
	defer s.mu.Unlock()
	m, err := s.set(key)
	return redis.NewIntResult(int64(len(m)), err)
}

func (s *Store) SIsMember(_ context.Context, key string, member interface{}) *redis.BoolCmd {
	if err := s.enter("sismember"); err != nil {
		s.mu.Unlock()
		return redis.NewBoolResult(false, err)
	}
	defer s.mu.Unlock()
	m, err := s.set(key)
	if err != nil {
		return redis.NewBoolResult(false, err)
	}
	_, ok := m[str(member)]
	return redis.NewBoolResult(ok, nil)
}

func (s *Store) SRandMember(_ context.Context, key string) *redis.StringCmd {
	if err := s.enter("srandmember"); err != nil {
		s.mu.Unlock()
		return redis.NewStringResult("", err)
	}
	defer s.mu.Unlock()
	m, err := s.set(key)
	if err != nil {
		return redis.NewStringResult("", err)
	}
	if len(m) == 0 {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(sortedMembers(m)[0], nil)
}

type setOp int

const (
	opInter setOp = iota
	opUnion
	opDiff
)

func (s *Store) combine(op setOp, keys []string) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	for i, k := range keys {
		m, err := s.set(k)
		if err != nil {
			return nil, err
		}
		switch {
		case i == 0:
			for v := range m {
				out[v] = struct{}{}
			}
		case op == opUnion:
			for v := range m {
				out[v] = struct{}{}
			}
		case op == opInter:
			for v := range out {
				if _, ok := m[v]; !ok {
					delete(out, v)
				}
			}
		case op == opDiff:
			for v := range m {
				delete(out, v)
			}
		}
	}
	return out, nil
}

func (s *Store) setRead(cmd string, op setOp, keys []string) *redis.StringSliceCmd {
	if err := s.enter(cmd); err != nil {
		s.mu.Unlock()
		return redis.NewStringSliceResult(nil, err)
	}
	defer s.mu.Unlock()
	m, err := s.combine(op, keys)
	if err != nil {
		return redis.NewStringSliceResult(nil, err)
	}
	return redis.NewStringSliceResult(sortedMembers(m), nil)
}

func (s *Store) setStore(cmd string, op setOp, dest string, keys []string) *redis.IntCmd {
	if err := s.enter(cmd); err != nil {
		s.mu.Unlock()
		return redis.NewIntResult(0, err)
	}
	defer s.mu.Unlock()
	m, err := s.combine(op, keys)
	if err != nil {
		return redis.NewIntResult(0, err)
	}
	s.data[dest] = m
	s.drop(dest)
	return redis.NewIntResult(int64(len(m)), nil)
}

func (s *Store) SInter(_ context.Context, keys ...string) *redis.StringSliceCmd {
	return s.setRead("sinter", opInter, keys)
}

func (s *Store) SUnion(_ context.Context, keys ...string) *redis.StringSliceCmd {
	return s.setRead("sunion", opUnion, keys)
}

func (s *Store) SDiff(_ context.Context, keys ...string) *redis.StringSliceCmd {
	return s.setRead("sdiff", opDiff, keys)
}

func (s *Store) SInterStore(_ context.Context, destination string, keys ...string) *redis.IntCmd {
	return s.setStore("sinterstore", opInter, destination, keys)
}

func (s *Store) SUnionStore(_ context.Context, destination string, keys ...string) *redis.IntCmd {
	return s.setStore("sunionstore", opUnion, destination, keys)
}

func (s *Store) SDiffStore(_ context.Context, destination string, keys ...string) *redis.IntCmd {
	return s.setStore("sdiffstore", opDiff, destination, keys)
}

// ---- sorted sets

func (z zset) ordered() []string {
	out := make([]string, 0, len(z))
	for m := range z {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if z[out[i]] != z[out[j]] {
			return z[out[i]] < z[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}

func (s *Store) ZAdd(_ context.Context, key string, members ...redis.Z) *redis.IntCmd {
	if err := s.enter("zadd"); err != nil {
		s.mu.Unlock()
		return redis.NewIntResult(0, err)
	}
	defer s.mu.Unlock()
	z, err := s.zset(key)
	if err != nil {
		return redis.NewIntResult(0, err)
	}
	if z == nil {
		z = make(zset)
	}
	var n int64
	for _, m := range members {
		k := str(m.Member)
		if _, ok := z[k]; !ok {
			n++
		}
		z[k] = m.Score
	}
	s.data[key] = z
	s.drop(key)
	return redis.NewIntResult(n, nil)
}

func (s *Store) ZRem(_ context.Context, key string, members ...interface{}) *redis.IntCmd {
	if err := s.enter("zrem"); err != nil {
		s.mu.Unlock()
		return redis.NewIntResult(0, err)
	}
	defer s.mu.Unlock()
	z, err := s.zset(key)
	if err != nil {
		return redis.NewIntResult(0, err)
	}
	var n int64
	for _, m := range flatten(members) {
		if _, ok := z[m]; ok {
			delete(z, m)
			n++
		}
	}
	s.drop(key)
	return redis.NewIntResult(n, nil)
}

func (s *Store) ZIncrBy(_ context.Context, key string, increment float64, member string) *redis.FloatCmd {
	if err := s.enter("zincrby"); err != nil {
		s.mu.Unlock()
		return redis.NewFloatResult(0, err)
	}
	defer s.mu.Unlock()
	z, err := s.zset(key)
	if err != nil {
		return redis.NewFloatResult(0, err)
	}
	if z == nil {
		z = make(zset)
		s.data[key] = z
	}
	z[member] += increment
	return redis.NewFloatResult(z[member], nil)
}

func (s *Store) rank(cmd, key, member string, rev bool) *redis.IntCmd {
	if err := s.enter(cmd); err != nil {
		s.mu.Unlock()
		return redis.NewIntResult(0, err)
	}
	defer s.mu.Unlock()
	z, err := s.zset(key)
	if err != nil {
		return redis.NewIntResult(0, err)
	}
	ord := z.ordered()
	for i, m := range ord {
		if m == member {
			if rev {
				return redis.NewIntResult(int64(len(ord)-1-i), nil)
			}
			return redis.NewIntResult(int64(i), nil)
		}
	}
	return redis.NewIntResult(0, redis.Nil)
}

func (s *Store) ZRank(_ context.Context, key, member string) *redis.IntCmd {
	return s.rank("zrank", key, member, false)
}

func (s *Store) ZRevRank(_ context.Context, key, member string) *redis.IntCmd {
	return s.rank("zrevrank", key, member, true)
}

func (s *Store) zrange(cmd, key string, start, stop int64, rev bool) *redis.StringSliceCmd {
	if err := s.enter(cmd); err != nil {
		s.mu.Unlock()
		return redis.NewStringSliceResult(nil, err)
	}
	defer s.mu.Unlock()
	z, err := s.zset(key)
	if err != nil {
		return redis.NewStringSliceResult(nil, err)
	}
	ord := z.ordered()
	if rev {
		for i, j := 0, len(ord)-1; i < j; i, j = i+1, j-1 {
			ord[i], ord[j] = ord[j], ord[i]
		}
	}
	i, j, ok := span(start, stop, len(ord))
	if !ok {
		return redis.NewStringSliceResult([]string{}, nil)
	}
	return redis.NewStringSliceResult(ord[i:j+1], nil)
}

func (s *Store) ZRange(_ context.Context, key string, start, stop int64) *redis.StringSliceCmd {
	return s.zrange("zrange", key, start, stop, false)
}

func (s *Store) ZRevRange(_ context.Context, key string, start, stop int64) *redis.StringSliceCmd {
	return s.zrange("zrevrange", key, start, stop, true)
}

type bound struct {
	v    float64
	excl bool
}

func parseBound(b string) (bound, error) {
	switch b {
	case "-inf":
		return bound{v: math.Inf(-1)}, nil
	case "+inf", "inf":
		return bound{v: math.Inf(1)}, nil
	}
	excl := strings.HasPrefix(b, "(")
	f, err := strconv.ParseFloat(strings.TrimPrefix(b, "("), 64)
	if err != nil {
		return bound{}, ErrMinMaxFloat
	}
	return bound{v: f, excl: excl}, nil
}

func (b bound) above(f float64) bool { // f satisfies lower bound b
	if b.excl {
		return f > b.v
	}
	return f >= b.v
}

func (b bound) below(f float64) bool { // f satisfies upper bound b
	if b.excl {
		return f < b.v
	}
	return f <= b.v
}

func (z zset) byScore(min, max string) ([]string, error) {
	lo, err := parseBound(min)
	if err != nil {
		return nil, err
	}
	hi, err := parseBound(max)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, m := range z.ordered() {
		if lo.above(z[m]) && hi.below(z[m]) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Store) ZRangeByScore(_ context.Context, key string, opt *redis.ZRangeBy) *redis.StringSliceCmd {
	if err := s.enter("zrangebyscore"); err != nil {
		s.mu.Unlock()
		return redis.NewStringSliceResult(nil, err)
	}
	defer s.mu.Unlock()
	z, err := s.zset(key)
	if err != nil {
		return redis.NewStringSliceResult(nil, err)
	}
	out, err := z.byScore(opt.Min, opt.Max)
	if err != nil {
		return redis.NewStringSliceResult(nil, err)
	}
	if opt.Offset != 0 || opt.Count != 0 {
		off := int(opt.Offset)
		if off > len(out) {
			off = len(out)
		}
		out = out[off:]
		if opt.Count >= 0 && int(opt.Count) < len(out) {
			out = out[:opt.Count]
		}
	}
	if out == nil {
		out = []string{}
	}
	return redis.NewStringSliceResult(out, nil)
}

func (s *Store) ZCard(_ context.Context, key string) *redis.IntCmd {
	if err := s.enter("zcard"); err != nil {
		s.mu.Unlock()
		return redis.NewIntResult(0, err)
	}
	defer s.mu.Unlock()
	z, err := s.zset(key)
	return redis.NewIntResult(int64(len(z)), err)
}

func (s *Store) ZScore(_ context.Context, key, member string) *redis.FloatCmd {
	if err := s.enter("zscore"); err != nil {
		s.mu.Unlock()
		return redis.NewFloatResult(0, err)
	}
	defer s.mu.Unlock()
	z, err := s.zset(key)
	if err != nil {
		return redis.NewFloatResult(0, err)
	}
	f, ok := z[member]
	if !ok {
		return redis.NewFloatResult(0, redis.Nil)
	}
	return redis.NewFloatResult(f, nil)
}

func (s *Store) ZRemRangeByRank(_ context.Context, key string, start, stop int64) *redis.IntCmd {
	if err := s.enter("zremrangebyrank"); err != nil {
		s.mu.Unlock()
		return redis.NewIntResult(0, err)
	}
	defer s.mu.Unlock()
	z, err := s.zset(key)
	if err != nil {
		return redis.NewIntResult(0, err)
	}
	ord := z.ordered()
	i, j, ok := span(start, stop, len(ord))
	if !ok {
		return redis.NewIntResult(0, nil)
	}
	for _, m := range ord[i : j+1] {
		delete(z, m)
	}
	s.drop(key)
	return redis.NewIntResult(int64(j-i+1), nil)
}

func (s *Store) ZRemRangeByScore(_ context.Context, key, min, max string) *redis.IntCmd {
	if err := s.enter("zremrangebyscore"); err != nil {
		s.mu.Unlock()
		return redis.NewIntResult(0, err)
	}
	defer s.mu.Unlock()
	z, err := s.zset(key)
	if err != nil {
		return redis.NewIntResult(0, err)
	}
	ms, err := z.byScore(min, max)
	if err != nil {
		return redis.NewIntResult(0, err)
	}
	for _, m := range ms {
		delete(z, m)
	}
	s.drop(key)
	return redis.NewIntResult(int64(len(ms)), nil)
}

// ---- hashes

func (s *Store) HLen(_ context.Context, key string) *redis.IntCmd {
	if err := s.enter("hlen"); err != nil {
		s.mu.Unlock()
		return redis.NewIntResult(0, err)
	}
	defer s.mu.Unlock()
	h, err := s.hash(key)
	return redis.NewIntResult(int64(len(h)), err)
}

// pairs accepts field/value pairs or a single map, like the client.
func pairs(values []interface{}) ([][2]string, error) {
	if len(values) == 1 {
		switch m := values[0].(type) {
		case map[string]interface{}:
			out := make([][2]string, 0, len(m))
			for k, v := range m {
				out = append(out, [2]string{k, str(v)})
			}
			return out, nil
		case map[string]string:
			out := make([][2]string, 0, len(m))
			for k, v := range m {
				out = append(out, [2]string{k, v})
			}
			return out, nil
		}
	}
	flat := flatten(values)
	if len(flat)%2 != 0 {
		return nil, errOddHSetValues
	}
	out := make([][2]string, 0, len(flat)/2)
	for i := 0; i < len(flat); i += 2 {
		out = append(out, [2]string{flat[i], flat[i+1]})
	}
	return out, nil
}

func (s *Store) HSet(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	if err := s.enter("hset"); err != nil {
		s.mu.Unlock()
		return redis.NewIntResult(0, err)
	}
	defer s.mu.Unlock()
	h, err := s.hash(key)
	if err != nil {
		return redis.NewIntResult(0, err)
	}
	ps, err := pairs(values)
	if err != nil {
		return redis.NewIntResult(0, err)
	}
	if h == nil {
		h = make(map[string]string)
	}
	var n int64
	for _, p := range ps {
		if _, ok := h[p[0]]; !ok {
			n++
		}
		h[p[0]] = p[1]
	}
	s.data[key] = h
	s.drop(key)
	return redis.NewIntResult(n, nil)
}

func (s *Store) HDel(_ context.Context, key string, fields ...string) *redis.IntCmd {
	if err := s.enter("hdel"); err != nil {
		s.mu.Unlock()
		return redis.NewIntResult(0, err)
	}
	defer s.mu.Unlock()
	h, err := s.hash(key)
	if err != nil {
		return redis.NewIntResult(0, err)
	}
	var n int64
	for _, f := range fields {
		if _, ok := h[f]; ok {
			delete(h, f)
			n++
		}
	}
	s.drop(key)
	return redis.NewIntResult(n, nil)
}

func (s *Store) sortedFields(h map[string]string) []string {
	out := make([]string, 0, len(h))
	for k := range h {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s *Store) HKeys(_ context.Context, key string) *redis.StringSliceCmd {
	if err := s.enter("hkeys"); err != nil {
		s.mu.Unlock()
		return redis.NewStringSliceResult(nil, err)
	}
	defer s.mu.Unlock()
	h, err := s.hash(key)
	if err != nil {
		return redis.NewStringSliceResult(nil, err)
	}
	return redis.NewStringSliceResult(s.sortedFields(h), nil)
}

func (s *Store) HVals(_ context.Context, key string) *redis.StringSliceCmd {
	if err := s.enter("hvals"); err != nil {
		s.mu.Unlock()
		return redis.NewStringSliceResult(nil, err)
	}
	defer s.mu.Unlock()
	h, err := s.hash(key)
	if err != nil {
		return redis.NewStringSliceResult(nil, err)
	}
	fs := s.sortedFields(h)
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = h[f]
	}
	return redis.NewStringSliceResult(out, nil)
}

func (s *Store) HGetAll(_ context.Context, key string) *redis.MapStringStringCmd {
	if err := s.enter("hgetall"); err != nil {
		s.mu.Unlock()
		return redis.NewMapStringStringResult(nil, err)
	}
	defer s.mu.Unlock()
	h, err := s.hash(key)
	if err != nil {
		return redis.NewMapStringStringResult(nil, err)
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return redis.NewMapStringStringResult(out, nil)
}

func (s *Store) HGet(_ context.Context, key, field string) *redis.StringCmd {
	if err := s.enter("hget"); err != nil {
		s.mu.Unlock()
		return redis.NewStringResult("", err)
	}
	defer s.mu.Unlock()
	h, err := s.hash(key)
	if err != nil {
		return redis.NewStringResult("", err)
	}
	v, ok := h[field]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (s *Store) HExists(_ context.Context, key, field string) *redis.BoolCmd {
	if err := s.enter("hexists"); err != nil {
		s.mu.Unlock()
		return redis.NewBoolResult(false, err)
	}
	defer s.mu.Unlock()
	h, err := s.hash(key)
	if err != nil {
		return redis.NewBoolResult(false, err)
	}
	_, ok := h[field]
	return redis.NewBoolResult(ok, nil)
}

func (s *Store) HIncrBy(_ context.Context, key, field string, incr int64) *redis.IntCmd {
	if err := s.enter("hincrby"); err != nil {
		s.mu.Unlock()
		return redis.NewIntResult(0, err)
	}
	defer s.mu.Unlock()
	h, err := s.hash(key)
	if err != nil {
		return redis.NewIntResult(0, err)
	}
	if h == nil {
		h = make(map[string]string)
		s.data[key] = h
	}
	var cur int64
	if v, ok := h[field]; ok {
		cur, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return redis.NewIntResult(0, ErrNotInteger)
		}
	}
	cur += incr
	h[field] = strconv.FormatInt(cur, 10)
	return redis.NewIntResult(cur, nil)
}

func (s *Store) HMGet(_ context.Context, key string, fields ...string) *redis.SliceCmd {
	if err := s.enter("hmget"); err != nil {
		s.mu.Unlock()
		return redis.NewSliceResult(nil, err)
	}
	defer s.mu.Unlock()
	h, err := s.hash(key)
	if err != nil {
		return redis.NewSliceResult(nil, err)
	}
	out := make([]interface{}, len(fields))
	for i, f := range fields {
		if v, ok := h[f]; ok {
			out[i] = v
		}
	}
	return redis.NewSliceResult(out, nil)
}
