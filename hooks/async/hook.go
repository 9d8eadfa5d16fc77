// Package asynchook moves hook calls off the read path.
//
//	raw := sloghook.New(slog.Default(), sloghook.Options{StaleEvery: 10})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	users, _ := redcoll.NewTypedList(redcoll.Options[User]{
//	    Key:   "team:7:members",
//	    Type:  redcoll.Named[User]("User"),
//	    Hooks: hooks, // or `raw` if you don't want async
//	})
//
// Events are dropped when the queue is full.
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/redcoll"
)

type Hooks struct {
	inner   redcoll.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

var _ redcoll.Hooks = (*Hooks)(nil)

func New(inner redcoll.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events sent after
// Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) StaleReference(k, id string) { h.try(func() { h.inner.StaleReference(k, id) }) }
func (h *Hooks) SelfHeal(k, r string)        { h.try(func() { h.inner.SelfHeal(k, r) }) }
func (h *Hooks) ProviderSetRejected(k string) {
	h.try(func() { h.inner.ProviderSetRejected(k) })
}
func (h *Hooks) CastFailed(k string, i int64, err error) {
	h.try(func() { h.inner.CastFailed(k, i, err) })
}
func (h *Hooks) RevisionSnapshotError(n int, err error) {
	h.try(func() { h.inner.RevisionSnapshotError(n, err) })
}
func (h *Hooks) RevisionBumpError(k string, err error) {
	h.try(func() { h.inner.RevisionBumpError(k, err) })
}
func (h *Hooks) InvalidateOutage(id string, be, de error) {
	h.try(func() { h.inner.InvalidateOutage(id, be, de) })
}
