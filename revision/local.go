package revision

import (
	"context"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

type localEntry struct {
	Rev       uint64
	UpdatedAt time.Time
}

// Local keeps revisions in-process. An optional background loop prunes
// entries that have not been bumped within the retention window.
type Local struct {
	revs   *xsync.MapOf[string, localEntry]
	ticker *time.Ticker
	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

var _ Store = (*Local)(nil)

// NewLocal returns a Local store. The cleanup loop only runs when both
// cleanupInterval and retention are positive.
func NewLocal(cleanupInterval, retention time.Duration) *Local {
	s := &Local{revs: xsync.NewMapOf[string, localEntry]()}
	if cleanupInterval > 0 && retention > 0 {
		s.ticker = time.NewTicker(cleanupInterval)
		s.stopCh = make(chan struct{})
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-s.ticker.C:
					s.Cleanup(retention)
				case <-s.stopCh:
					return
				}
			}
		}()
	}
	return s
}

func (s *Local) Snapshot(_ context.Context, k string) (uint64, error) {
	e, _ := s.revs.Load(k)
	return e.Rev, nil
}

func (s *Local) SnapshotMany(_ context.Context, ks []string) (map[string]uint64, error) {
	out := make(map[string]uint64, len(ks))
	for _, k := range ks {
		e, _ := s.revs.Load(k)
		out[k] = e.Rev
	}
	return out, nil
}

func (s *Local) Bump(_ context.Context, k string) (uint64, error) {
	now := time.Now()
	e, _ := s.revs.Compute(k, func(old localEntry, _ bool) (localEntry, bool) {
		return localEntry{Rev: old.Rev + 1, UpdatedAt: now}, false
	})
	return e.Rev, nil
}

func (s *Local) Cleanup(retention time.Duration) {
	if retention <= 0 {
		return
	}
	cutoff := time.Now().Add(-retention)
	s.revs.Range(func(k string, e localEntry) bool {
		if e.UpdatedAt.Before(cutoff) {
			s.revs.Delete(k)
		}
		return true
	})
}

// Len reports how many revisions are tracked.
func (s *Local) Len() int { return s.revs.Size() }

func (s *Local) Close(_ context.Context) error {
	s.once.Do(func() {
		if s.stopCh != nil {
			s.ticker.Stop()
			close(s.stopCh)
			s.wg.Wait()
		}
	})
	return nil
}
