package redcoll

import (
	"time"

	"github.com/unkn0wn-root/redcoll/codec"
	"github.com/unkn0wn-root/redcoll/model"
	pr "github.com/unkn0wn-root/redcoll/provider"
	"github.com/unkn0wn-root/redcoll/revision"
)

// SetCostFunc weighs a cache entry for providers that account cost.
type SetCostFunc func(storageKey string, raw []byte) int64

// CacheOptions tune a CachedRepository.
// Namespace, Source, Provider and Codec are required.
type CacheOptions[T model.Entity] struct {
	Namespace string // e.g. "user"; isolates storage and revision keys
	Source    model.Repository[T]
	Provider  pr.Provider
	Codec     codec.Codec[T]

	Logger            Logger         // nil => NopLogger
	Hooks             Hooks          // nil => NopHooks
	TTL               time.Duration  // 0 => 10m
	CleanupInterval   time.Duration  // local revision sweep; 0 => 1h
	RevisionRetention time.Duration  // 0 => 30d
	Revisions         revision.Store // nil => revision.Local (in-process)
	ComputeSetCost    SetCostFunc    // nil => len(raw)
	Disabled          bool           // pass every read straight to Source
}

// NewCachedRepository wraps opts.Source with a revision-checked cache.
func NewCachedRepository[T model.Entity](opts CacheOptions[T]) (*CachedRepository[T], error) {
	return newCachedRepository(opts)
}
