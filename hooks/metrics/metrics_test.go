package metricshook

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/VictoriaMetrics/metrics"
)

func TestCountersAndExposition(t *testing.T) {
	set := metrics.NewSet()
	h := New(set, "app")

	h.StaleReference("refs", "b")
	h.StaleReference("refs", "c")
	h.SelfHeal("ent:user:1", "corrupt")
	h.SelfHeal("ent:user:1", "weird")
	h.InvalidateOutage("1", errors.New("a"), errors.New("b"))

	if h.stale.Get() != 2 {
		t.Fatalf("stale=%d", h.stale.Get())
	}
	if h.heal["corrupt"].Get() != 1 || h.healOther.Get() != 1 {
		t.Fatalf("heal counters off")
	}

	var buf bytes.Buffer
	set.WritePrometheus(&buf)
	out := buf.String()
	for _, want := range []string{
		"app_redcoll_stale_references_total 2",
		`app_redcoll_cache_self_heals_total{reason="corrupt"} 1`,
		"app_redcoll_invalidate_outages_total 1",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestNilSet(t *testing.T) {
	h := New(nil, "")
	h.CastFailed("k", 0, errors.New("x"))
	if h.Set() == nil || h.castFailed.Get() != 1 {
		t.Fatalf("nil set should get a private set")
	}
}
