package container

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/unkn0wn-root/redcoll/internal/fakeredis"
)

func seedSets(t *testing.T) (a, b *Set, st *fakeredis.Store) {
	t.Helper()
	ctx := context.Background()
	st = fakeredis.New()
	a = NewSet("a", st)
	b = NewSet("b", st)
	if _, err := a.Add(ctx, "1", "2", "3"); err != nil {
		t.Fatalf("seed a: %v", err)
	}
	if _, err := b.Add(ctx, "3", "4"); err != nil {
		t.Fatalf("seed b: %v", err)
	}
	return a, b, st
}

func TestSetMembership(t *testing.T) {
	ctx := context.Background()
	a, _, _ := seedSets(t)

	if n, err := a.Len(ctx); err != nil || n != 3 {
		t.Fatalf("Len=%d err=%v", n, err)
	}
	if ok, _ := a.Contains(ctx, "2"); !ok {
		t.Fatalf("expected 2 in a")
	}
	if err := a.Remove(ctx, "2"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := a.Remove(ctx, "2"); !errors.Is(err, ErrNotMember) {
		t.Fatalf("Remove absent err=%v", err)
	}
	if err := a.Discard(ctx, "2"); err != nil {
		t.Fatalf("Discard absent: %v", err)
	}
	if v, ok, err := a.Pop(ctx); err != nil || !ok || v == "" {
		t.Fatalf("Pop=%q ok=%v err=%v", v, ok, err)
	}
	if n, _ := a.Add(ctx); n != 0 {
		t.Fatalf("Add() with no members should be a no-op")
	}
}

func TestSetRelations(t *testing.T) {
	ctx := context.Background()
	a, b, st := seedSets(t)
	sub := NewSet("sub", st)
	_, _ = sub.Add(ctx, "1", "3")

	if ok, _ := a.IsDisjoint(ctx, b); ok {
		t.Fatalf("a and b share 3")
	}
	if ok, _ := sub.IsSubset(ctx, a); !ok {
		t.Fatalf("sub should be subset of a")
	}
	if ok, _ := a.IsSuperset(ctx, sub); !ok {
		t.Fatalf("a should be superset of sub")
	}
	if ok, _ := sub.IsProperSubset(ctx, a); !ok {
		t.Fatalf("sub should be a proper subset of a")
	}
	if ok, _ := a.IsProperSubset(ctx, a); ok {
		t.Fatalf("a is not a proper subset of itself")
	}
	if ok, _ := a.IsProperSuperset(ctx, sub); !ok {
		t.Fatalf("a should be a proper superset of sub")
	}

	same := NewSet("same", st)
	_, _ = same.Add(ctx, "3", "2", "1")
	if ok, _ := a.Equal(ctx, same); !ok {
		t.Fatalf("equal members under different keys should compare equal")
	}
	if ok, _ := a.Equal(ctx, b); ok {
		t.Fatalf("a != b")
	}
}

func TestSetAlgebraStores(t *testing.T) {
	ctx := context.Background()
	a, b, _ := seedSets(t)

	u, err := a.Union(ctx, "u", b)
	if err != nil {
		t.Fatalf("Union: %v", err)
	}
	if got, _ := u.Members(ctx); !reflect.DeepEqual(got, []string{"1", "2", "3", "4"}) {
		t.Fatalf("union=%v", got)
	}
	if u.Key() != "u" {
		t.Fatalf("union key=%q", u.Key())
	}

	i, _ := a.Intersection(ctx, "i", b)
	if got, _ := i.Members(ctx); !reflect.DeepEqual(got, []string{"3"}) {
		t.Fatalf("intersection=%v", got)
	}

	d, _ := a.Difference(ctx, "d", b)
	if got, _ := d.Members(ctx); !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Fatalf("difference=%v", got)
	}

	raw, _ := a.InterMembers(ctx, b)
	if !reflect.DeepEqual(raw, []string{"3"}) {
		t.Fatalf("InterMembers=%v", raw)
	}
	raw, _ = a.UnionMembers(ctx, b)
	if len(raw) != 4 {
		t.Fatalf("UnionMembers=%v", raw)
	}
	raw, _ = a.DiffMembers(ctx, b)
	if !reflect.DeepEqual(raw, []string{"1", "2"}) {
		t.Fatalf("DiffMembers=%v", raw)
	}
}

func TestSetInPlaceUpdates(t *testing.T) {
	ctx := context.Background()
	a, b, st := seedSets(t)

	if err := a.Update(ctx, b); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if n, _ := a.Len(ctx); n != 4 {
		t.Fatalf("after Update len=%d", n)
	}
	if err := a.IntersectionUpdate(ctx, b); err != nil {
		t.Fatalf("IntersectionUpdate: %v", err)
	}
	if got, _ := a.Members(ctx); !reflect.DeepEqual(got, []string{"3", "4"}) {
		t.Fatalf("after IntersectionUpdate=%v", got)
	}

	c := NewSet("c", st)
	_, _ = c.Add(ctx, "3")
	if err := a.DifferenceUpdate(ctx, c); err != nil {
		t.Fatalf("DifferenceUpdate: %v", err)
	}
	if got, _ := a.Members(ctx); !reflect.DeepEqual(got, []string{"4"}) {
		t.Fatalf("after DifferenceUpdate=%v", got)
	}

	cp, err := b.Copy(ctx, "bcopy")
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if ok, _ := cp.Equal(ctx, b); !ok {
		t.Fatalf("copy should equal source")
	}
}
