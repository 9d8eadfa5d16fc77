package revision

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/unkn0wn-root/redcoll/internal/fakeredis"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()
	l := NewLocal(0, 0)
	t.Cleanup(func() { _ = l.Close(ctx) })
	return map[string]Store{
		"local": l,
		"redis": NewRedis(fakeredis.New(), "user", 0),
	}
}

func TestSnapshotManyIncludesAllAndZeroForMissing(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		for i := 0; i < 2; i++ {
			if _, err := s.Bump(ctx, "b"); err != nil {
				t.Fatalf("%s: Bump: %v", name, err)
			}
		}
		got, err := s.SnapshotMany(ctx, []string{"a", "b", "c"})
		if err != nil {
			t.Fatalf("%s: SnapshotMany: %v", name, err)
		}
		if got["a"] != 0 || got["b"] != 2 || got["c"] != 0 || len(got) != 3 {
			t.Fatalf("%s: got=%v want a=0,b=2,c=0", name, got)
		}
		if g, _ := s.Snapshot(ctx, "b"); g != 2 {
			t.Fatalf("%s: Snapshot(b)=%d", name, g)
		}
		if g, _ := s.SnapshotMany(ctx, nil); len(g) != 0 {
			t.Fatalf("%s: SnapshotMany(nil)=%v", name, g)
		}
	}
}

func TestLocalBumpIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(0, 0)
	t.Cleanup(func() { _ = s.Close(ctx) })

	const n = 64
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, _ = s.Bump(ctx, "k")
		}()
	}
	wg.Wait()
	if g, _ := s.Snapshot(ctx, "k"); g != n {
		t.Fatalf("rev=%d want %d", g, n)
	}
}

func TestLocalCleanupPrunesOld(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(0, 0)
	t.Cleanup(func() { _ = s.Close(ctx) })

	if _, err := s.Bump(ctx, "old"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := s.Bump(ctx, "fresh"); err != nil {
		t.Fatal(err)
	}
	s.Cleanup(10 * time.Millisecond)

	if g, _ := s.Snapshot(ctx, "old"); g != 0 {
		t.Fatalf("expected pruned -> 0, got %d", g)
	}
	if g, _ := s.Snapshot(ctx, "fresh"); g != 1 {
		t.Fatalf("fresh rev pruned, got %d", g)
	}
	if s.Len() != 1 {
		t.Fatalf("Len=%d want 1", s.Len())
	}
}

func TestLocalCloseIsIdempotent(t *testing.T) {
	s := NewLocal(time.Millisecond, time.Hour)
	if err := s.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestRedisBumpSetsTTL(t *testing.T) {
	ctx := context.Background()
	st := fakeredis.New()
	s := NewRedis(st, "user", time.Minute)

	if g, err := s.Bump(ctx, "42"); err != nil || g != 1 {
		t.Fatalf("Bump=%d err=%v", g, err)
	}
	if ttl := st.TTL("rev:user:42"); ttl != time.Minute {
		t.Fatalf("ttl=%v want 1m", ttl)
	}
}

func TestRedisErrors(t *testing.T) {
	ctx := context.Background()
	st := fakeredis.New()
	s := NewRedis(st, "user", 0)
	boom := errors.New("down")

	st.FailOn("incr", boom)
	if _, err := s.Bump(ctx, "k"); !errors.Is(err, boom) {
		t.Fatalf("Bump err=%v", err)
	}
	_ = st.Set(ctx, "rev:user:bad", "nope", 0).Err()
	if _, err := s.Snapshot(ctx, "bad"); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := s.SnapshotMany(ctx, []string{"bad"}); err == nil {
		t.Fatalf("expected parse error")
	}
}
