// Package sloghook reports redcoll events through log/slog.
package sloghook

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/redcoll"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	StaleEvery    uint64
	SelfHealEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	staleCtr    atomic.Uint64
	selfHealCtr atomic.Uint64
}

var _ redcoll.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) StaleReference(listKey, id string) {
	if h.l == nil || !sample(h.opts.StaleEvery, &h.staleCtr) {
		return
	}
	h.l.Debug("redcoll.stale_reference",
		"list", listKey,
		"id", h.redact(id))
}

func (h *Hooks) CastFailed(listKey string, index int64, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("redcoll.cast_failed",
		"list", listKey,
		"index", index,
		"err", err)
}

func (h *Hooks) SelfHeal(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("redcoll.self_heal",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) ProviderSetRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("redcoll.provider_set_rejected",
		"key", h.redact(storageKey))
}

func (h *Hooks) RevisionSnapshotError(count int, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("redcoll.revision_snapshot_error",
		"count", count,
		"err", err)
}

func (h *Hooks) RevisionBumpError(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("redcoll.revision_bump_error",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) InvalidateOutage(id string, bumpErr, delErr error) {
	if h.l == nil {
		return
	}
	h.l.Error("redcoll.invalidate_outage",
		"id", h.redact(id),
		"bump_err", bumpErr,
		"del_err", delErr)
}
