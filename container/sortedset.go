package container

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/redcoll/conn"
)

// Page limits a score query. A zero Count means no limit.
type Page struct {
	Offset int64
	Count  int64
}

// SortedSet is a set ordered by score.
type SortedSet struct{ base }

func NewSortedSet(key string, exec conn.Executor) *SortedSet {
	return &SortedSet{base{key: key, exec: exec}}
}

func (z *SortedSet) With(exec conn.Executor) *SortedSet { return NewSortedSet(z.key, exec) }

func (z *SortedSet) Add(ctx context.Context, member any, score float64) error {
	return z.exec.ZAdd(ctx, z.key, redis.Z{Score: score, Member: member}).Err()
}

func (z *SortedSet) Remove(ctx context.Context, members ...any) error {
	if len(members) == 0 {
		return nil
	}
	return z.exec.ZRem(ctx, z.key, members...).Err()
}

// IncrBy adds by to member's score and returns the new score.
func (z *SortedSet) IncrBy(ctx context.Context, member string, by float64) (float64, error) {
	return z.exec.ZIncrBy(ctx, z.key, by, member).Result()
}

// Rank returns member's position by ascending score.
func (z *SortedSet) Rank(ctx context.Context, member string) (int64, bool, error) {
	return optionalInt(z.exec.ZRank(ctx, z.key, member))
}

// RevRank returns member's position by descending score.
func (z *SortedSet) RevRank(ctx context.Context, member string) (int64, bool, error) {
	return optionalInt(z.exec.ZRevRank(ctx, z.key, member))
}

// Score returns member's score; ok is false when member is absent.
func (z *SortedSet) Score(ctx context.Context, member string) (float64, bool, error) {
	f, err := z.exec.ZScore(ctx, z.key, member).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return f, true, nil
}

// At returns the member at rank i. Negative i counts from the highest score.
func (z *SortedSet) At(ctx context.Context, i int64) (string, error) {
	ms, err := z.exec.ZRange(ctx, z.key, i, i).Result()
	if err != nil {
		return "", err
	}
	if len(ms) == 0 {
		return "", &IndexError{Key: z.key, Index: i}
	}
	return ms[0], nil
}

// Range returns members with rank start..stop inclusive.
func (z *SortedSet) Range(ctx context.Context, start, stop int64) ([]string, error) {
	return z.exec.ZRange(ctx, z.key, start, stop).Result()
}

func (z *SortedSet) Len(ctx context.Context) (int64, error) {
	return z.exec.ZCard(ctx, z.key).Result()
}

func (z *SortedSet) Contains(ctx context.Context, member string) (bool, error) {
	_, ok, err := z.Score(ctx, member)
	return ok, err
}

// Members returns all members by ascending score.
func (z *SortedSet) Members(ctx context.Context) ([]string, error) {
	return z.Range(ctx, 0, -1)
}

// RevMembers returns all members by descending score.
func (z *SortedSet) RevMembers(ctx context.Context) ([]string, error) {
	return z.exec.ZRevRange(ctx, z.key, 0, -1).Result()
}

// MinScore returns the lowest score; ok is false on an empty set.
func (z *SortedSet) MinScore(ctx context.Context) (float64, bool, error) {
	return z.scoreAt(ctx, 0)
}

// MaxScore returns the highest score; ok is false on an empty set.
func (z *SortedSet) MaxScore(ctx context.Context) (float64, bool, error) {
	return z.scoreAt(ctx, -1)
}

func (z *SortedSet) scoreAt(ctx context.Context, i int64) (float64, bool, error) {
	m, err := z.At(ctx, i)
	if errors.Is(err, ErrIndexOutOfRange) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return z.Score(ctx, m)
}

func score(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func exclusive(f float64) string { return "(" + score(f) }

func (z *SortedSet) byScore(ctx context.Context, min, max string, p Page) ([]string, error) {
	opt := &redis.ZRangeBy{Min: min, Max: max, Offset: p.Offset, Count: p.Count}
	if p.Count == 0 && p.Offset != 0 {
		opt.Count = -1
	}
	return z.exec.ZRangeByScore(ctx, z.key, opt).Result()
}

// LT returns members with score < v.
func (z *SortedSet) LT(ctx context.Context, v float64, p Page) ([]string, error) {
	return z.byScore(ctx, "-inf", exclusive(v), p)
}

// LE returns members with score <= v.
func (z *SortedSet) LE(ctx context.Context, v float64, p Page) ([]string, error) {
	return z.byScore(ctx, "-inf", score(v), p)
}

// GT returns members with score > v.
func (z *SortedSet) GT(ctx context.Context, v float64, p Page) ([]string, error) {
	return z.byScore(ctx, exclusive(v), "+inf", p)
}

// GE returns members with score >= v.
func (z *SortedSet) GE(ctx context.Context, v float64, p Page) ([]string, error) {
	return z.byScore(ctx, score(v), "+inf", p)
}

// Between returns members with min <= score <= max.
func (z *SortedSet) Between(ctx context.Context, min, max float64, p Page) ([]string, error) {
	return z.byScore(ctx, score(min), score(max), p)
}

// Eq returns members whose score is exactly v.
func (z *SortedSet) Eq(ctx context.Context, v float64) ([]string, error) {
	return z.byScore(ctx, score(v), score(v), Page{})
}

// RemoveRangeByRank removes members with rank start..stop inclusive.
func (z *SortedSet) RemoveRangeByRank(ctx context.Context, start, stop int64) (int64, error) {
	return z.exec.ZRemRangeByRank(ctx, z.key, start, stop).Result()
}

// RemoveRangeByScore removes members with min <= score <= max.
func (z *SortedSet) RemoveRangeByScore(ctx context.Context, min, max float64) (int64, error) {
	return z.exec.ZRemRangeByScore(ctx, z.key, score(min), score(max)).Result()
}

func (z *SortedSet) Repr(ctx context.Context) (string, error) {
	ms, err := z.Members(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("<SortedSet %q %q>", z.key, ms), nil
}

func optionalInt(cmd *redis.IntCmd) (int64, bool, error) {
	v, err := cmd.Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}
