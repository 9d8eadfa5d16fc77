package container

import (
	"context"
	"fmt"

	"github.com/unkn0wn-root/redcoll/conn"
)

// Set is an unordered set of strings stored in the store.
// Set algebra runs server-side; results are stored under a new key or
// returned raw.
type Set struct{ base }

func NewSet(key string, exec conn.Executor) *Set {
	return &Set{base{key: key, exec: exec}}
}

func (s *Set) With(exec conn.Executor) *Set { return NewSet(s.key, exec) }

// Add adds members and returns how many were new.
func (s *Set) Add(ctx context.Context, members ...any) (int64, error) {
	if len(members) == 0 {
		return 0, nil
	}
	return s.exec.SAdd(ctx, s.key, members...).Result()
}

// Remove deletes v or returns ErrNotMember when it was absent.
func (s *Set) Remove(ctx context.Context, v any) error {
	n, err := s.exec.SRem(ctx, s.key, v).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("set %q: %w: %v", s.key, ErrNotMember, v)
	}
	return nil
}

// Discard deletes v if present.
func (s *Set) Discard(ctx context.Context, v any) error {
	return s.exec.SRem(ctx, s.key, v).Err()
}

// Pop removes and returns a random member; ok is false on an empty set.
func (s *Set) Pop(ctx context.Context) (v string, ok bool, err error) {
	return optional(s.exec.SPop(ctx, s.key))
}

// RandomMember returns a random member without removing it.
func (s *Set) RandomMember(ctx context.Context) (v string, ok bool, err error) {
	return optional(s.exec.SRandMember(ctx, s.key))
}

func (s *Set) Len(ctx context.Context) (int64, error) {
	return s.exec.SCard(ctx, s.key).Result()
}

func (s *Set) Contains(ctx context.Context, v any) (bool, error) {
	return s.exec.SIsMember(ctx, s.key, v).Result()
}

func (s *Set) Members(ctx context.Context) ([]string, error) {
	return s.exec.SMembers(ctx, s.key).Result()
}

// IsDisjoint reports whether s and other share no member.
func (s *Set) IsDisjoint(ctx context.Context, other *Set) (bool, error) {
	common, err := s.exec.SInter(ctx, s.key, other.key).Result()
	if err != nil {
		return false, err
	}
	return len(common) == 0, nil
}

// IsSubset reports whether every member of s is in other.
func (s *Set) IsSubset(ctx context.Context, other *Set) (bool, error) {
	common, err := s.exec.SInter(ctx, s.key, other.key).Result()
	if err != nil {
		return false, err
	}
	n, err := s.Len(ctx)
	if err != nil {
		return false, err
	}
	return int64(len(common)) == n, nil
}

// IsSuperset reports whether every member of other is in s.
func (s *Set) IsSuperset(ctx context.Context, other *Set) (bool, error) {
	return other.IsSubset(ctx, s)
}

// Equal compares keys first, then cardinality, then members.
func (s *Set) Equal(ctx context.Context, other *Set) (bool, error) {
	if s.key == other.key {
		return true, nil
	}
	n, err := s.Len(ctx)
	if err != nil {
		return false, err
	}
	m, err := other.Len(ctx)
	if err != nil {
		return false, err
	}
	if n != m {
		return false, nil
	}
	return s.IsSubset(ctx, other)
}

func (s *Set) IsProperSubset(ctx context.Context, other *Set) (bool, error) {
	return s.proper(ctx, other, s.IsSubset)
}

func (s *Set) IsProperSuperset(ctx context.Context, other *Set) (bool, error) {
	return s.proper(ctx, other, s.IsSuperset)
}

func (s *Set) proper(ctx context.Context, other *Set, rel func(context.Context, *Set) (bool, error)) (bool, error) {
	ok, err := rel(ctx, other)
	if err != nil || !ok {
		return false, err
	}
	eq, err := s.Equal(ctx, other)
	if err != nil {
		return false, err
	}
	return !eq, nil
}

func (s *Set) keys(others []*Set) []string {
	ks := make([]string, 0, len(others)+1)
	ks = append(ks, s.key)
	for _, o := range others {
		ks = append(ks, o.key)
	}
	return ks
}

// Union stores the union of s and others at dest and returns that set.
func (s *Set) Union(ctx context.Context, dest string, others ...*Set) (*Set, error) {
	if err := s.exec.SUnionStore(ctx, dest, s.keys(others)...).Err(); err != nil {
		return nil, err
	}
	return NewSet(dest, s.exec), nil
}

// Intersection stores the intersection of s and others at dest.
func (s *Set) Intersection(ctx context.Context, dest string, others ...*Set) (*Set, error) {
	if err := s.exec.SInterStore(ctx, dest, s.keys(others)...).Err(); err != nil {
		return nil, err
	}
	return NewSet(dest, s.exec), nil
}

// Difference stores s minus others at dest.
func (s *Set) Difference(ctx context.Context, dest string, others ...*Set) (*Set, error) {
	if err := s.exec.SDiffStore(ctx, dest, s.keys(others)...).Err(); err != nil {
		return nil, err
	}
	return NewSet(dest, s.exec), nil
}

// Update adds the members of others to s.
func (s *Set) Update(ctx context.Context, others ...*Set) error {
	return s.exec.SUnionStore(ctx, s.key, s.keys(others)...).Err()
}

// IntersectionUpdate keeps only members found in s and all of others.
func (s *Set) IntersectionUpdate(ctx context.Context, others ...*Set) error {
	return s.exec.SInterStore(ctx, s.key, s.keys(others)...).Err()
}

// DifferenceUpdate removes members found in any of others.
func (s *Set) DifferenceUpdate(ctx context.Context, others ...*Set) error {
	return s.exec.SDiffStore(ctx, s.key, s.keys(others)...).Err()
}

// InterMembers returns the raw intersection without storing it.
func (s *Set) InterMembers(ctx context.Context, others ...*Set) ([]string, error) {
	return s.exec.SInter(ctx, s.keys(others)...).Result()
}

// UnionMembers returns the raw union without storing it.
func (s *Set) UnionMembers(ctx context.Context, others ...*Set) ([]string, error) {
	return s.exec.SUnion(ctx, s.keys(others)...).Result()
}

// DiffMembers returns the raw difference without storing it.
func (s *Set) DiffMembers(ctx context.Context, others ...*Set) ([]string, error) {
	return s.exec.SDiff(ctx, s.keys(others)...).Result()
}

// Copy overwrites dest with the members of s.
func (s *Set) Copy(ctx context.Context, dest string) (*Set, error) {
	return s.Union(ctx, dest)
}

func (s *Set) Repr(ctx context.Context) (string, error) {
	ms, err := s.Members(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("<Set %q %q>", s.key, ms), nil
}
