package redcoll

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/unkn0wn-root/redcoll/codec"
	"github.com/unkn0wn-root/redcoll/internal/envelope"
	"github.com/unkn0wn-root/redcoll/internal/fakeredis"
	"github.com/unkn0wn-root/redcoll/model"
	pr "github.com/unkn0wn-root/redcoll/provider"
	"github.com/unkn0wn-root/redcoll/revision"
)

type memEntry struct {
	v   []byte
	exp time.Time // zero => no TTL
}

type memProvider struct {
	mu     sync.Mutex
	m      map[string]memEntry
	reject bool
}

var _ pr.Provider = (*memProvider)(nil)

func newMemProvider() *memProvider { return &memProvider{m: make(map[string]memEntry)} }

func (p *memProvider) Get(_ context.Context, key string) ([]byte, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.m[key]
	if !ok {
		return nil, false, nil
	}
	if !e.exp.IsZero() && time.Now().After(e.exp) {
		delete(p.m, key)
		return nil, false, nil
	}
	return e.v, true, nil
}

func (p *memProvider) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.reject {
		return false, nil
	}
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	p.m[key] = memEntry{v: value, exp: exp}
	return true, nil
}

func (p *memProvider) Del(_ context.Context, key string) error {
	p.mu.Lock()
	delete(p.m, key)
	p.mu.Unlock()
	return nil
}

func (p *memProvider) Close(_ context.Context) error { return nil }

func (p *memProvider) put(key string, v []byte) {
	p.mu.Lock()
	p.m[key] = memEntry{v: v}
	p.mu.Unlock()
}

type healHooks struct {
	NopHooks
	mu       sync.Mutex
	reasons  []string
	rejected int
	outages  int
}

func (h *healHooks) SelfHeal(_, reason string) {
	h.mu.Lock()
	h.reasons = append(h.reasons, reason)
	h.mu.Unlock()
}

func (h *healHooks) ProviderSetRejected(string) {
	h.mu.Lock()
	h.rejected++
	h.mu.Unlock()
}

func (h *healHooks) InvalidateOutage(string, error, error) {
	h.mu.Lock()
	h.outages++
	h.mu.Unlock()
}

func newTestCache(t *testing.T, src model.Repository[member], mp pr.Provider, optsOpt func(*CacheOptions[member])) *CachedRepository[member] {
	t.Helper()
	opts := CacheOptions[member]{
		Namespace: "member",
		Source:    src,
		Provider:  mp,
		Codec:     codec.JSON[member]{},
	}
	if optsOpt != nil {
		optsOpt(&opts)
	}
	c, err := NewCachedRepository(opts)
	if err != nil {
		t.Fatalf("NewCachedRepository: %v", err)
	}
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return c
}

// ==============================
// Read-through
// ==============================

func TestCacheReadThroughAndInvalidate(t *testing.T) {
	ctx := context.Background()
	src := newMemRepo(e1)
	c := newTestCache(t, src, newMemProvider(), nil)

	for i := 0; i < 3; i++ {
		v, ok, err := c.GetByID(ctx, "a")
		if err != nil || !ok || v != e1 {
			t.Fatalf("GetByID=%v ok=%v err=%v", v, ok, err)
		}
	}
	if src.calls() != 1 {
		t.Fatalf("source calls=%d want 1", src.calls())
	}

	updated := member{ID: "a", Name: "E1 v2"}
	src.mu.Lock()
	src.m["a"] = updated
	src.mu.Unlock()
	if err := c.Invalidate(ctx, "a"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if v, _, _ := c.GetByID(ctx, "a"); v != updated {
		t.Fatalf("after Invalidate got %v want %v", v, updated)
	}
	if src.calls() != 2 {
		t.Fatalf("source calls=%d want 2", src.calls())
	}
}

func TestCacheMissIsNotCached(t *testing.T) {
	ctx := context.Background()
	src := newMemRepo()
	mp := newMemProvider()
	c := newTestCache(t, src, mp, nil)

	if _, ok, err := c.GetByID(ctx, "nope"); ok || err != nil {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if len(mp.m) != 0 {
		t.Fatalf("negative lookups should not be cached")
	}
}

func TestCacheDisabledPassesThrough(t *testing.T) {
	ctx := context.Background()
	src := newMemRepo(e1)
	mp := newMemProvider()
	c := newTestCache(t, src, mp, func(o *CacheOptions[member]) { o.Disabled = true })

	_, _, _ = c.GetByID(ctx, "a")
	_, _, _ = c.GetByID(ctx, "a")
	if src.calls() != 2 || len(mp.m) != 0 {
		t.Fatalf("disabled cache touched provider: calls=%d entries=%d", src.calls(), len(mp.m))
	}
}

// ==============================
// Self-heal
// ==============================

func TestCacheSelfHeal(t *testing.T) {
	ctx := context.Background()
	src := newMemRepo(e1)
	mp := newMemProvider()
	h := &healHooks{}
	revs := revision.NewLocal(0, 0)
	c := newTestCache(t, src, mp, func(o *CacheOptions[member]) {
		o.Hooks = h
		o.Revisions = revs
	})
	k := c.storageKey("a")

	mp.put(k, []byte("not-an-envelope"))
	if v, ok, _ := c.GetByID(ctx, "a"); !ok || v != e1 {
		t.Fatalf("corrupt entry should fall back to source, got %v ok=%v", v, ok)
	}

	// entry stamped under another id
	raw, _ := envelope.Encode(envelope.Entry{ID: "zzz", Revision: 0, Payload: []byte(`{"id":"zzz"}`)})
	mp.put(k, raw)
	_, _, _ = c.GetByID(ctx, "a")

	// entry older than the current revision
	raw, _ = envelope.Encode(envelope.Entry{ID: "a", Revision: 0, Payload: []byte(`{"id":"a","name":"old"}`)})
	mp.put(k, raw)
	_, _ = revs.Bump(ctx, k)
	if v, _, _ := c.GetByID(ctx, "a"); v != e1 {
		t.Fatalf("stale entry served: %v", v)
	}

	// payload that does not decode
	cur, _ := revs.Snapshot(ctx, k)
	raw, _ = envelope.Encode(envelope.Entry{ID: "a", Revision: cur, Payload: []byte("{")})
	mp.put(k, raw)
	_, _, _ = c.GetByID(ctx, "a")

	want := []string{"corrupt", "corrupt", "revision_mismatch", "value_decode"}
	if !reflect.DeepEqual(h.reasons, want) {
		t.Fatalf("heal reasons=%v want %v", h.reasons, want)
	}
}

func TestCacheSkipsWriteWhenRevisionMoves(t *testing.T) {
	ctx := context.Background()
	mp := newMemProvider()
	revs := revision.NewLocal(0, 0)

	var c *CachedRepository[member]
	// source that races with an invalidation
	src := &racingRepo{memRepo: newMemRepo(e1), during: func() { _ = c.Invalidate(ctx, "a") }}
	c = newTestCache(t, src, mp, func(o *CacheOptions[member]) { o.Revisions = revs })

	if _, ok, _ := c.GetByID(ctx, "a"); !ok {
		t.Fatalf("expected source hit")
	}
	if _, ok, _ := mp.Get(ctx, c.storageKey("a")); ok {
		t.Fatalf("value read before an invalidation must not be cached")
	}
}

type racingRepo struct {
	*memRepo
	during func()
}

func (r *racingRepo) GetByID(ctx context.Context, id string) (member, bool, error) {
	v, ok, err := r.memRepo.GetByID(ctx, id)
	if r.during != nil {
		f := r.during
		r.during = nil
		f()
	}
	return v, ok, err
}

func TestCacheProviderRejectionReported(t *testing.T) {
	ctx := context.Background()
	mp := newMemProvider()
	mp.reject = true
	h := &healHooks{}
	c := newTestCache(t, newMemRepo(e1), mp, func(o *CacheOptions[member]) { o.Hooks = h })

	if _, ok, _ := c.GetByID(ctx, "a"); !ok {
		t.Fatalf("expected hit from source")
	}
	if h.rejected != 1 {
		t.Fatalf("rejected=%d want 1", h.rejected)
	}
}

// ==============================
// Batch reads
// ==============================

func TestCacheGetManyUsesBatchSourceForMisses(t *testing.T) {
	ctx := context.Background()
	st := fakeredis.New()
	src, _ := model.NewRedisRepository(model.RedisOptions[member]{
		Namespace: "member", Executor: st, Codec: codec.JSON[member]{},
	})
	_ = src.Save(ctx, e1)
	_ = src.Save(ctx, e3)
	c := newTestCache(t, src, newMemProvider(), nil)

	if _, ok, _ := c.GetByID(ctx, "a"); !ok {
		t.Fatalf("warmup failed")
	}
	st.ResetCalls()

	got, err := c.GetManyByID(ctx, []string{"a", "b", "c", "a"})
	if err != nil {
		t.Fatalf("GetManyByID: %v", err)
	}
	if want := map[string]member{"a": e1, "c": e3}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if st.Calls("mget") != 1 || st.Calls("get") != 0 {
		t.Fatalf("mget=%d get=%d; want one MGET for the misses", st.Calls("mget"), st.Calls("get"))
	}

	st.ResetCalls()
	_, _ = c.GetManyByID(ctx, []string{"a", "c"})
	if st.Calls("mget") != 0 {
		t.Fatalf("fully cached batch should not reach the source")
	}
}

func TestCacheBacksTypedList(t *testing.T) {
	ctx := context.Background()
	st := fakeredis.New()
	reg := model.NewRegistry()
	c := newTestCache(t, newMemRepo(e1, e3), newMemProvider(), nil)
	model.Register[member](reg, "Member", c)

	tl, err := NewTypedList(Options[member]{Key: "refs", Type: Named[member]("Member"), Client: st, Registry: reg})
	if err != nil {
		t.Fatalf("NewTypedList: %v", err)
	}
	_ = tl.Extend(ctx, []member{e1, {ID: "b"}, e3})
	got, err := tl.All(ctx)
	if err != nil || !reflect.DeepEqual(got, []member{e1, e3}) {
		t.Fatalf("All=%v err=%v", got, err)
	}
}

// ==============================
// Invalidate failures
// ==============================

type failingRevisions struct {
	revision.Store
	bumpErr error
}

func (s *failingRevisions) Snapshot(context.Context, string) (uint64, error) { return 0, nil }
func (s *failingRevisions) Bump(context.Context, string) (uint64, error)     { return 0, s.bumpErr }
func (s *failingRevisions) Close(context.Context) error                      { return nil }

type delErrProvider struct {
	*memProvider
	err error
}

func (p *delErrProvider) Del(context.Context, string) error { return p.err }

func TestInvalidateBothFailReturnsError(t *testing.T) {
	ctx := context.Background()
	delErr := errors.New("del failed")
	bumpErr := errors.New("bump failed")
	h := &healHooks{}

	c := newTestCache(t, newMemRepo(), &delErrProvider{memProvider: newMemProvider(), err: delErr},
		func(o *CacheOptions[member]) {
			o.Revisions = &failingRevisions{bumpErr: bumpErr}
			o.Hooks = h
		})

	err := c.Invalidate(ctx, "k1")
	var ie *InvalidateError
	if !errors.As(err, &ie) {
		t.Fatalf("expected InvalidateError, got %T: %v", err, err)
	}
	if !errors.Is(err, delErr) || !errors.Is(err, bumpErr) {
		t.Fatalf("Unwrap should expose both causes: %v", err)
	}
	if h.outages != 1 {
		t.Fatalf("outages=%d want 1", h.outages)
	}
}

func TestInvalidateSingleFailureIsTolerated(t *testing.T) {
	ctx := context.Background()

	c := newTestCache(t, newMemRepo(), newMemProvider(), func(o *CacheOptions[member]) {
		o.Revisions = &failingRevisions{bumpErr: errors.New("bump failed")}
	})
	if err := c.Invalidate(ctx, "k2"); err != nil {
		t.Fatalf("bump failure alone: %v", err)
	}

	c = newTestCache(t, newMemRepo(), &delErrProvider{memProvider: newMemProvider(), err: errors.New("del")}, nil)
	if err := c.Invalidate(ctx, "k3"); err != nil {
		t.Fatalf("delete failure alone: %v", err)
	}
}

func TestNewCachedRepositoryValidation(t *testing.T) {
	base := CacheOptions[member]{Namespace: "m", Source: newMemRepo(), Provider: newMemProvider(), Codec: codec.JSON[member]{}}
	mutations := []func(*CacheOptions[member]){
		func(o *CacheOptions[member]) { o.Namespace = "" },
		func(o *CacheOptions[member]) { o.Source = nil },
		func(o *CacheOptions[member]) { o.Provider = nil },
		func(o *CacheOptions[member]) { o.Codec = nil },
	}
	for i, m := range mutations {
		o := base
		m(&o)
		if _, err := NewCachedRepository(o); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}
