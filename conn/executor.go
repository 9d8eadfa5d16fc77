// Package conn resolves the execution context used by containers.
//
// An Executor is either a direct client (redis.UniversalClient) or a batched
// context (redis.Pipeliner). Both satisfy the interface, so containers issue
// commands the same way and the caller decides when a pipeline is executed.
//
// Precedence when picking an executor:
//
//	pipeline > client > process-wide default (SetDefault)
//
// The default is meant for the application's composition root only.
// Libraries should accept an Executor explicitly.
package conn

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrNoExecutor = errors.New("conn: no executor (pipeline, client or default) available")

// Executor lists every remote command the containers issue.
// One method per command; both *redis.Client and redis.Pipeliner satisfy it.
type Executor interface {
	// keys / strings
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd

	// lists
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	LLen(ctx context.Context, key string) *redis.IntCmd
	LIndex(ctx context.Context, key string, index int64) *redis.StringCmd
	LSet(ctx context.Context, key string, index int64, value interface{}) *redis.StatusCmd
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	LPop(ctx context.Context, key string) *redis.StringCmd
	RPop(ctx context.Context, key string) *redis.StringCmd
	LRem(ctx context.Context, key string, count int64, value interface{}) *redis.IntCmd
	LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd
	RPopLPush(ctx context.Context, source, destination string) *redis.StringCmd

	// sets
	SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SPop(ctx context.Context, key string) *redis.StringCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
	SCard(ctx context.Context, key string) *redis.IntCmd
	SIsMember(ctx context.Context, key string, member interface{}) *redis.BoolCmd
	SRandMember(ctx context.Context, key string) *redis.StringCmd
	SInter(ctx context.Context, keys ...string) *redis.StringSliceCmd
	SUnion(ctx context.Context, keys ...string) *redis.StringSliceCmd
	SDiff(ctx context.Context, keys ...string) *redis.StringSliceCmd
	SInterStore(ctx context.Context, destination string, keys ...string) *redis.IntCmd
	SUnionStore(ctx context.Context, destination string, keys ...string) *redis.IntCmd
	SDiffStore(ctx context.Context, destination string, keys ...string) *redis.IntCmd

	// sorted sets
	ZAdd(ctx context.Context, key string, members ...redis.Z) *redis.IntCmd
	ZRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	ZIncrBy(ctx context.Context, key string, increment float64, member string) *redis.FloatCmd
	ZRank(ctx context.Context, key, member string) *redis.IntCmd
	ZRevRank(ctx context.Context, key, member string) *redis.IntCmd
	ZRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	ZRevRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	ZRangeByScore(ctx context.Context, key string, opt *redis.ZRangeBy) *redis.StringSliceCmd
	ZCard(ctx context.Context, key string) *redis.IntCmd
	ZScore(ctx context.Context, key, member string) *redis.FloatCmd
	ZRemRangeByRank(ctx context.Context, key string, start, stop int64) *redis.IntCmd
	ZRemRangeByScore(ctx context.Context, key, min, max string) *redis.IntCmd

	// hashes
	HLen(ctx context.Context, key string) *redis.IntCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	HDel(ctx context.Context, key string, fields ...string) *redis.IntCmd
	HKeys(ctx context.Context, key string) *redis.StringSliceCmd
	HVals(ctx context.Context, key string) *redis.StringSliceCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	HGet(ctx context.Context, key, field string) *redis.StringCmd
	HExists(ctx context.Context, key, field string) *redis.BoolCmd
	HIncrBy(ctx context.Context, key, field string, incr int64) *redis.IntCmd
	HMGet(ctx context.Context, key string, fields ...string) *redis.SliceCmd
}

var (
	_ Executor = (redis.UniversalClient)(nil)
	_ Executor = (redis.Pipeliner)(nil)
)

// Pick applies the precedence pipeline > client > default.
func Pick(pipeline, client Executor) (Executor, error) {
	if pipeline != nil {
		return pipeline, nil
	}
	if client != nil {
		return client, nil
	}
	if d := Default(); d != nil {
		return d, nil
	}
	return nil, ErrNoExecutor
}
