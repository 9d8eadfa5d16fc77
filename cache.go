package redcoll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/unkn0wn-root/redcoll/codec"
	"github.com/unkn0wn-root/redcoll/internal/envelope"
	"github.com/unkn0wn-root/redcoll/model"
	pr "github.com/unkn0wn-root/redcoll/provider"
	"github.com/unkn0wn-root/redcoll/revision"
)

// CachedRepository is a read-through cache in front of a repository.
//
// Every cached entry carries the revision of its id observed before the
// source read. Invalidate bumps the revision, so an entry written by a
// read that raced with an update is rejected (and deleted) on the next
// read instead of being served.
//
// It implements model.BatchRepository, so it can back typed lists directly.
type CachedRepository[T model.Entity] struct {
	ns       string
	source   model.Repository[T]
	provider pr.Provider
	codec    codec.Codec[T]
	log      Logger
	hooks    Hooks
	enabled  bool
	ttl      time.Duration
	cost     SetCostFunc
	revs     revision.Store
	ownRevs  bool
}

var _ model.BatchRepository[model.Entity] = (*CachedRepository[model.Entity])(nil)

func newCachedRepository[T model.Entity](opts CacheOptions[T]) (*CachedRepository[T], error) {
	if opts.Source == nil {
		return nil, errors.New("redcoll: cache source is required")
	}
	if opts.Provider == nil {
		return nil, errors.New("redcoll: cache provider is required")
	}
	if opts.Codec == nil {
		return nil, errors.New("redcoll: cache codec is required")
	}
	if opts.Namespace == "" {
		return nil, errors.New("redcoll: cache namespace is required")
	}

	c := &CachedRepository[T]{
		ns:       opts.Namespace,
		source:   opts.Source,
		provider: opts.Provider,
		codec:    opts.Codec,
		enabled:  !opts.Disabled,
	}

	// defaults
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	c.ttl = coalesce[time.Duration](opts.TTL, defaultCacheTTL)

	if opts.ComputeSetCost != nil {
		c.cost = opts.ComputeSetCost
	} else {
		c.cost = func(_ string, raw []byte) int64 { return int64(len(raw)) }
	}

	if opts.Revisions != nil {
		c.revs = opts.Revisions
	} else {
		c.revs = revision.NewLocal(
			coalesce[time.Duration](opts.CleanupInterval, defaultSweep),
			coalesce[time.Duration](opts.RevisionRetention, defaultRevisionRetention),
		)
		c.ownRevs = true
	}
	return c, nil
}

func (c *CachedRepository[T]) Enabled() bool { return c.enabled }

// Close releases the provider and, when the cache created it, the
// revision store.
func (c *CachedRepository[T]) Close(ctx context.Context) error {
	if c.ownRevs {
		_ = c.revs.Close(ctx)
	}
	return c.provider.Close(ctx)
}

// GetByID serves id from the cache when the cached revision is current,
// otherwise from the source, caching what it finds.
func (c *CachedRepository[T]) GetByID(ctx context.Context, id string) (T, bool, error) {
	if !c.enabled {
		return c.source.GetByID(ctx, id)
	}
	k := c.storageKey(id)
	rev, revOK := c.snapshot(ctx, k)
	if revOK {
		if v, ok := c.lookup(ctx, id, k, rev); ok {
			return v, true, nil
		}
	}

	v, ok, err := c.source.GetByID(ctx, id)
	if err != nil || !ok {
		return v, ok, err
	}
	if revOK {
		c.store(ctx, id, k, v, rev)
	}
	return v, true, nil
}

// GetManyByID resolves ids from the cache where possible and fetches the
// rest from the source, in one call when the source supports batches.
func (c *CachedRepository[T]) GetManyByID(ctx context.Context, ids []string) (map[string]T, error) {
	out := make(map[string]T, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	if !c.enabled {
		return c.fetch(ctx, ids)
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.storageKey(id)
	}
	revs, err := c.revs.SnapshotMany(ctx, keys)
	if err != nil {
		c.hooks.RevisionSnapshotError(len(keys), err)
		c.log.Warn("revision snapshot error", Fields{"count": len(keys), "err": err})
		return c.fetch(ctx, ids)
	}

	var missing []string
	seen := make(map[string]struct{}, len(ids))
	for i, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if v, ok := c.lookup(ctx, id, keys[i], revs[keys[i]]); ok {
			out[id] = v
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return out, nil
	}

	found, err := c.fetch(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, v := range found {
		out[id] = v
		k := c.storageKey(id)
		c.store(ctx, id, k, v, revs[k])
	}
	return out, nil
}

// Invalidate bumps id's revision and drops its cached entry. It returns
// *InvalidateError only when both steps failed; either one alone is
// enough to stop the stale entry from being served.
func (c *CachedRepository[T]) Invalidate(ctx context.Context, id string) error {
	if !c.enabled {
		return nil
	}
	k := c.storageKey(id)
	rev, bumpErr := c.revs.Bump(ctx, k)
	if bumpErr != nil {
		c.hooks.RevisionBumpError(k, bumpErr)
		c.log.Error("revision bump error", Fields{"key": k, "err": bumpErr})
	}
	delErr := c.provider.Del(ctx, k)

	if bumpErr != nil && delErr != nil {
		c.hooks.InvalidateOutage(id, bumpErr, delErr)
		return &InvalidateError{ID: id, BumpErr: bumpErr, DelErr: delErr}
	}
	c.log.Debug("invalidated entity", Fields{"ns": c.ns, "id": id, "rev": rev})
	return nil
}

func (c *CachedRepository[T]) fetch(ctx context.Context, ids []string) (map[string]T, error) {
	if b, ok := c.source.(model.BatchRepository[T]); ok {
		return b.GetManyByID(ctx, ids)
	}
	out := make(map[string]T, len(ids))
	for _, id := range ids {
		v, ok, err := c.source.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			out[id] = v
		}
	}
	return out, nil
}

// lookup returns the cached value for id if it was stamped with rev.
// Anything else found under k is deleted.
func (c *CachedRepository[T]) lookup(ctx context.Context, id, k string, rev uint64) (T, bool) {
	var zero T
	raw, ok, err := c.provider.Get(ctx, k)
	if err != nil {
		c.log.Warn("cache get error", Fields{"key": k, "err": err})
		return zero, false
	}
	if !ok {
		return zero, false
	}
	e, err := envelope.Decode(raw)
	if err != nil || e.ID != id {
		c.heal(ctx, k, "corrupt")
		return zero, false
	}
	if e.Revision != rev {
		c.heal(ctx, k, "revision_mismatch")
		return zero, false
	}
	v, err := c.codec.Decode(e.Payload)
	if err != nil {
		c.heal(ctx, k, "value_decode")
		return zero, false
	}
	return v, true
}

func (c *CachedRepository[T]) store(ctx context.Context, id, k string, v T, observed uint64) {
	if cur, ok := c.snapshot(ctx, k); !ok || cur != observed {
		c.log.Debug("cache write skipped (revision moved)", Fields{"key": k, "obs": observed})
		return
	}
	payload, err := c.codec.Encode(v)
	if err != nil {
		c.log.Warn("cache encode error", Fields{"key": k, "err": err})
		return
	}
	raw, err := envelope.Encode(envelope.Entry{ID: id, Revision: observed, Payload: payload})
	if err != nil {
		c.log.Warn("cache envelope error", Fields{"key": k, "err": err})
		return
	}
	ok, err := c.provider.Set(ctx, k, raw, c.cost(k, raw), c.ttl)
	if err != nil {
		c.log.Warn("cache set error", Fields{"key": k, "err": err})
		return
	}
	if !ok {
		c.hooks.ProviderSetRejected(k)
		c.log.Debug("cache set rejected by provider (pressure)", Fields{"key": k})
	}
}

func (c *CachedRepository[T]) heal(ctx context.Context, k, reason string) {
	_ = c.provider.Del(ctx, k)
	c.hooks.SelfHeal(k, reason)
	c.log.Debug("cache entry dropped", Fields{"key": k, "reason": reason})
}

// snapshot reports ok=false when the revision is unknown; callers then
// neither serve nor write cached entries.
func (c *CachedRepository[T]) snapshot(ctx context.Context, k string) (uint64, bool) {
	r, err := c.revs.Snapshot(ctx, k)
	if err != nil {
		c.hooks.RevisionSnapshotError(1, err)
		c.log.Warn("revision snapshot error", Fields{"key": k, "err": err})
		return 0, false
	}
	return r, true
}

func (c *CachedRepository[T]) storageKey(id string) string {
	return fmt.Sprintf("ent:%s:%s", c.ns, id)
}
