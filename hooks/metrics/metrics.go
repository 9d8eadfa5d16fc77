// Package metricshook counts redcoll events with VictoriaMetrics counters.
//
//	set := metrics.NewSet()
//	h := metricshook.New(set, "app")
//	http.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
//	    set.WritePrometheus(w)
//	})
package metricshook

import (
	"fmt"

	"github.com/VictoriaMetrics/metrics"

	"github.com/unkn0wn-root/redcoll"
)

var healReasons = []string{"corrupt", "revision_mismatch", "value_decode"}

type Hooks struct {
	set    *metrics.Set
	prefix string

	stale         *metrics.Counter
	castFailed    *metrics.Counter
	heal          map[string]*metrics.Counter
	healOther     *metrics.Counter
	setRejected   *metrics.Counter
	snapshotErr   *metrics.Counter
	bumpErr       *metrics.Counter
	invalidateOut *metrics.Counter
}

var _ redcoll.Hooks = (*Hooks)(nil)

// New registers counters in set (metrics.NewSet() when nil). Names are
// prefixed with prefix + "_" when prefix is not empty.
func New(set *metrics.Set, prefix string) *Hooks {
	if set == nil {
		set = metrics.NewSet()
	}
	h := &Hooks{set: set, prefix: prefix, heal: make(map[string]*metrics.Counter, len(healReasons))}
	h.stale = set.GetOrCreateCounter(h.name("redcoll_stale_references_total"))
	h.castFailed = set.GetOrCreateCounter(h.name("redcoll_cast_failures_total"))
	for _, r := range healReasons {
		h.heal[r] = set.GetOrCreateCounter(h.name(fmt.Sprintf(`redcoll_cache_self_heals_total{reason=%q}`, r)))
	}
	h.healOther = set.GetOrCreateCounter(h.name(`redcoll_cache_self_heals_total{reason="other"}`))
	h.setRejected = set.GetOrCreateCounter(h.name("redcoll_cache_set_rejected_total"))
	h.snapshotErr = set.GetOrCreateCounter(h.name("redcoll_revision_snapshot_errors_total"))
	h.bumpErr = set.GetOrCreateCounter(h.name("redcoll_revision_bump_errors_total"))
	h.invalidateOut = set.GetOrCreateCounter(h.name("redcoll_invalidate_outages_total"))
	return h
}

func (h *Hooks) name(n string) string {
	if h.prefix == "" {
		return n
	}
	return h.prefix + "_" + n
}

// Set returns the metric set the counters live in.
func (h *Hooks) Set() *metrics.Set { return h.set }

func (h *Hooks) StaleReference(string, string)    { h.stale.Inc() }
func (h *Hooks) CastFailed(string, int64, error)  { h.castFailed.Inc() }
func (h *Hooks) ProviderSetRejected(string)       { h.setRejected.Inc() }
func (h *Hooks) RevisionSnapshotError(int, error) { h.snapshotErr.Inc() }
func (h *Hooks) RevisionBumpError(string, error)  { h.bumpErr.Inc() }
func (h *Hooks) InvalidateOutage(string, error, error) {
	h.invalidateOut.Inc()
}

func (h *Hooks) SelfHeal(_ string, reason string) {
	if c, ok := h.heal[reason]; ok {
		c.Inc()
		return
	}
	h.healOther.Inc()
}
